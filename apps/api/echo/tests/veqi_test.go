package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
	"github.com/trezcool/vsip/core/veqi"
	testutil "github.com/trezcool/vsip/tests"
)

func Test_veqiApi_calculate(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "V Teacher", "vteacher@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	head := testutil.CreateUser(t, usrRepo, "V Head", "vhead@test.in", "Str0ngPwd!", user.RoleHead, true)

	sch := testutil.CreateSchool(t, schoolRepo, "GPS Veqi", "21180100201")
	cls := testutil.CreateClass(t, schoolRepo, sch.ID, 3, "A")
	std := testutil.CreateStudent(t, schoolRepo, cls.ID, 1, "Asha")
	testutil.CreateSession(t, schoolRepo, cls.ID, time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), 35)
	testutil.CreateAssessment(t, schoolRepo, std.ID, cls.ID, school.AssessmentReading,
		time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), school.BandR2)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/veqi/calculate/" + sch.ID + "?quarter=2025-Q2",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "head teacher role required", path: "/v1/veqi/calculate/" + sch.ID + "?quarter=2025-Q2",
			token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "unknown school", path: "/v1/veqi/calculate/nope?quarter=2025-Q2",
			token: getToken(t, head), wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: school.ErrNotFound.Error()}),
		},
		{
			name: "bad quarter", path: "/v1/veqi/calculate/" + sch.ID + "?quarter=2025-Q9",
			token: getToken(t, head), wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: veqi.ErrInvalidQuarter.Error()}),
		},
		{
			name: "ok", path: "/v1/veqi/calculate/" + sch.ID + "?quarter=2025-Q2",
			token: getToken(t, head), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}

			var got veqi.Record
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshalling record: %v", err)
			}
			if got.SchoolID != sch.ID || got.Quarter != "2025-Q2" {
				t.Errorf("record keyed (%s, %s), want (%s, 2025-Q2)", got.SchoolID, got.Quarter, sch.ID)
			}
			if got.ComponentScores.TimeOnTask != 100 {
				t.Errorf("TimeOnTask = %v, want 100", got.ComponentScores.TimeOnTask)
			}
			if len(got.PlanActions) == 0 {
				t.Error("expected remediation actions for failing components")
			}
		})
	}
}

func Test_veqiApi_retrieve(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "V Reader", "vreader@test.in", "Str0ngPwd!", user.RoleTeacher, true)
	head := testutil.CreateUser(t, usrRepo, "V Head 2", "vhead2@test.in", "Str0ngPwd!", user.RoleHead, true)

	sch := testutil.CreateSchool(t, schoolRepo, "GPS Veqi 2", "21180100202")
	token := getToken(t, head)

	for _, quarter := range []string{"2024-Q4", "2025-Q1"} {
		req, rec := newAuthRequest(http.MethodPost, "/v1/veqi/calculate/"+sch.ID+"?quarter="+quarter, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("calculate(%s) code = %v; body %s", quarter, rec.Code, rec.Body.String())
		}
	}

	t.Run("history, newest quarter first", func(t *testing.T) {
		// any authenticated role can read
		req, rec := newAuthRequest(http.MethodGet, "/v1/veqi/"+sch.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		var recs []veqi.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
			t.Fatalf("unmarshalling records: %v", err)
		}
		want := []string{"2025-Q1", "2024-Q4"}
		if len(recs) != len(want) {
			t.Fatalf("got %d records, want %d", len(recs), len(want))
		}
		for i, r := range recs {
			if r.Quarter != want[i] {
				t.Errorf("recs[%d].Quarter = %q, want %q", i, r.Quarter, want[i])
			}
		}
	})

	t.Run("single quarter materializes on read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/veqi/"+sch.ID+"?quarter=2025-Q2", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		var r veqi.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
			t.Fatalf("unmarshalling record: %v", err)
		}
		if r.Quarter != "2025-Q2" || r.ID == "" {
			t.Errorf("record = %+v, want materialized 2025-Q2", r)
		}
	})

	t.Run("unknown school on single-quarter read", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: school.ErrNotFound.Error()}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/veqi/nope?quarter=2025-Q2", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
