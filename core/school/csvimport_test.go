package school_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core"
	"github.com/trezcool/vsip/core/school"
	testutil "github.com/trezcool/vsip/tests"
)

func TestService_ImportStudents(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")

	tests := []struct {
		name     string
		csv      string
		wantLen  int
		wantVErr bool
	}{
		{name: "with header", csv: "roll,name\n1,Asha\n2,Bina\n", wantLen: 2},
		{name: "without header", csv: "1,Asha\n2,Bina\n3,Chitra\n", wantLen: 3},
		{name: "leading spaces", csv: "1, Asha\n", wantLen: 1},
		{name: "empty file", csv: "", wantVErr: true},
		{name: "header only", csv: "roll,name\n", wantVErr: true},
		{name: "bad roll", csv: "one,Asha\n", wantVErr: true},
		{name: "empty name", csv: "1,  \n", wantVErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stds, err := svc.ImportStudents(ctx, cls.ID, strings.NewReader(tt.csv))
			if tt.wantVErr {
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("ImportStudents() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImportStudents() failed: %v", err)
			}
			if len(stds) != tt.wantLen {
				t.Fatalf("imported %d students, want %d", len(stds), tt.wantLen)
			}
			for _, std := range stds {
				if std.ID == "" || !std.Active || std.ClassID != cls.ID || std.SchoolID != sch.ID {
					t.Errorf("bad imported student: %+v", std)
				}
				if std.ReadingBand != "" || std.MathBand != "" {
					t.Errorf("imported student must be unassessed, got %q/%q", std.ReadingBand, std.MathBand)
				}
			}
		})
	}

	if _, err := svc.ImportStudents(ctx, "nope", strings.NewReader("1,Asha\n")); err != school.ErrClassNotFound {
		t.Errorf("ImportStudents(unknown class) error = %v, want ErrClassNotFound", err)
	}
}
