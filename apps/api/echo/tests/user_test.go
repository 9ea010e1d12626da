package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/vsip/core/user"
	testutil "github.com/trezcool/vsip/tests"
)

func Test_userApi_login(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Login User", "login@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	testutil.CreateUser(t, usrRepo, "Inactive", "inactive@test.in", "Str0ngPwd!", user.RoleTeacher, false)

	authFailed := marshalObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "ok", body: []byte(`{"email":"login@test.in","password":"Str0ngPwd!"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "email is case-insensitive", body: []byte(`{"email":"LOGIN@Test.IN","password":"Str0ngPwd!"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "unknown email", body: []byte(`{"email":"nope@test.in","password":"Str0ngPwd!"}`),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong password", body: []byte(`{"email":"login@test.in","password":"nope"}`),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "deactivated account", body: []byte(`{"email":"inactive@test.in","password":"Str0ngPwd!"}`),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "missing fields", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.Token == "" {
					t.Error("login returned an empty token")
				}
			}
		})
	}

	// successful login stamps LastLogin
	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if refreshed.LastLogin.IsZero() {
		t.Error("LastLogin not set after login")
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Refresh User", "refresh@test.in", "Str0ngPwd!", user.RoleHead, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Token == "" {
		t.Error("refresh returned an empty token")
	}
}

func Test_userApi_adminOnly(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.in", "Str0ngPwd!", user.RoleAdmin, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "admin ok", path: "/v1/users", token: getToken(t, admin), wantCode: http.StatusOK},
		{
			name: "roles listing", path: "/v1/users/roles", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marshalObj(t, user.Roles),
		},
		{
			name: "roles listing is admin-only", path: "/v1/users/roles", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil && rec.Code == tt.wantCode && tt.wantCode == http.StatusOK {
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detailAccess(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Self", "self@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	admin := testutil.CreateUser(t, usrRepo, "Boss", "boss@test.in", "Str0ngPwd!", user.RoleAdmin, true)

	tests := []httpTest{
		{name: "own profile", path: "/v1/users/" + usr.ID, token: getToken(t, usr), wantCode: http.StatusOK},
		{
			name: "someone else's profile", path: "/v1/users/" + other.ID, token: getToken(t, usr),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
		{name: "admin can read anyone", path: "/v1/users/" + other.ID, token: getToken(t, admin), wantCode: http.StatusOK},
		{
			name: "unknown id", path: "/v1/users/nope", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
