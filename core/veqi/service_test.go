package veqi_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/vsip/core"
	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/veqi"
	inmemdb "github.com/trezcool/vsip/storage/database/inmem"
	testutil "github.com/trezcool/vsip/tests"
)

func setup(t *testing.T) (*veqi.Service, school.Repository, school.School) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	schoolRepo := inmemdb.NewSchoolRepository(db)
	conf := &core.Config{VEQI: core.VEQIConfig{ReferenceGrade: 3}}
	svc := veqi.NewService(school.NewService(schoolRepo), inmemdb.NewVEQIRepository(db), conf)

	sch := testutil.CreateSchool(t, schoolRepo, "GPS Demo", "21180100101")
	return svc, schoolRepo, sch
}

func TestService_Calculate(t *testing.T) {
	svc, schoolRepo, sch := setup(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, sch.ID, 3, "A")
	std := testutil.CreateStudent(t, schoolRepo, cls.ID, 1, "Asha")
	testutil.CreateStudent(t, schoolRepo, cls.ID, 2, "Bina")
	testutil.CreateSession(t, schoolRepo, cls.ID, time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), 35)
	testutil.CreateAssessment(t, schoolRepo, std.ID, cls.ID, school.AssessmentReading,
		time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), school.BandR2)

	rec, err := svc.Calculate(ctx, sch.ID, "2025-Q2")
	if err != nil {
		t.Fatalf("Calculate() failed: %v", err)
	}

	if rec.ID == "" {
		t.Error("Calculate() did not assign an ID")
	}
	if rec.SchoolID != sch.ID || rec.Quarter != "2025-Q2" {
		t.Errorf("record keyed (%s, %s), want (%s, 2025-Q2)", rec.SchoolID, rec.Quarter, sch.ID)
	}
	// 1 of 2 students reads at R2, no math mastery: (50 + 0) / 2
	if rec.ComponentScores.Foundational != 25 {
		t.Errorf("Foundational = %v, want 25", rec.ComponentScores.Foundational)
	}
	if rec.ComponentScores.TimeOnTask != 100 {
		t.Errorf("TimeOnTask = %v, want 100", rec.ComponentScores.TimeOnTask)
	}
	if rec.TotalScore != rec.ComponentScores.Total() {
		t.Errorf("TotalScore = %v, want %v", rec.TotalScore, rec.ComponentScores.Total())
	}
	if len(rec.PlanActions) == 0 {
		t.Error("expected remediation actions for failing components")
	}
}

func TestService_Calculate_recomputeKeepsIdentity(t *testing.T) {
	svc, schoolRepo, sch := setup(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, sch.ID, 3, "A")
	testutil.CreateStudent(t, schoolRepo, cls.ID, 1, "Asha")

	orig, err := svc.Calculate(ctx, sch.ID, "2025-Q2")
	if err != nil {
		t.Fatalf("Calculate() failed: %v", err)
	}

	// new data lands, same quarter is recomputed
	testutil.CreateSession(t, schoolRepo, cls.ID, time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), 35)

	recomputed, err := svc.Calculate(ctx, sch.ID, "2025-Q2")
	if err != nil {
		t.Fatalf("Calculate() recompute failed: %v", err)
	}

	if recomputed.ID != orig.ID {
		t.Errorf("recompute changed ID: %s -> %s", orig.ID, recomputed.ID)
	}
	if !recomputed.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("recompute changed CreatedAt: %v -> %v", orig.CreatedAt, recomputed.CreatedAt)
	}
	if recomputed.ComponentScores.TimeOnTask != 100 {
		t.Errorf("TimeOnTask = %v, want 100 after new session", recomputed.ComponentScores.TimeOnTask)
	}

	recs, err := svc.GetAll(ctx, sch.ID)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("GetAll() returned %d records, want 1 (recompute must not duplicate)", len(recs))
	}
}

func TestService_Calculate_fatalErrors(t *testing.T) {
	svc, _, sch := setup(t)
	ctx := context.Background()

	if _, err := svc.Calculate(ctx, "nope", "2025-Q2"); err != school.ErrNotFound {
		t.Errorf("Calculate(unknown school) error = %v, want school.ErrNotFound", err)
	}
	if _, err := svc.Calculate(ctx, sch.ID, "2025-Q7"); err != veqi.ErrInvalidQuarter {
		t.Errorf("Calculate(bad quarter) error = %v, want ErrInvalidQuarter", err)
	}
}

func TestService_Calculate_defaultQuarter(t *testing.T) {
	svc, _, sch := setup(t)

	rec, err := svc.Calculate(context.Background(), sch.ID, "")
	if err != nil {
		t.Fatalf("Calculate() failed: %v", err)
	}
	if rec.Quarter != veqi.CurrentQuarter() {
		t.Errorf("Quarter = %q, want current quarter %q", rec.Quarter, veqi.CurrentQuarter())
	}
}

func TestService_Get_materializesMissingRecord(t *testing.T) {
	svc, _, sch := setup(t)
	ctx := context.Background()

	rec, err := svc.Get(ctx, sch.ID, "2025-Q1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Get() did not materialize a record")
	}

	again, err := svc.Get(ctx, sch.ID, "2025-Q1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if again.ID != rec.ID {
		t.Errorf("second Get() returned a different record: %s != %s", again.ID, rec.ID)
	}
}

func TestService_GetAll_ordering(t *testing.T) {
	svc, _, sch := setup(t)
	ctx := context.Background()

	for _, quarter := range []string{"2024-Q4", "2025-Q2", "2025-Q1"} {
		if _, err := svc.Calculate(ctx, sch.ID, quarter); err != nil {
			t.Fatalf("Calculate(%s) failed: %v", quarter, err)
		}
	}

	recs, err := svc.GetAll(ctx, sch.ID)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}

	want := []string{"2025-Q2", "2025-Q1", "2024-Q4"}
	if len(recs) != len(want) {
		t.Fatalf("GetAll() returned %d records, want %d", len(recs), len(want))
	}
	for i, rec := range recs {
		if rec.Quarter != want[i] {
			t.Errorf("recs[%d].Quarter = %q, want %q", i, rec.Quarter, want[i])
		}
	}
}
