package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/vsip/core/school"
	inmemdb "github.com/trezcool/vsip/storage/database/inmem"
	testutil "github.com/trezcool/vsip/tests"
)

func setup(t *testing.T) (*school.Service, school.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewSchoolRepository(db)
	return school.NewService(repo), repo
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_CreateClass(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")

	cls, err := svc.CreateClass(ctx, school.NewClass{SchoolID: sch.ID, Grade: 3, Section: "A"})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	if cls.ID == "" {
		t.Error("CreateClass() did not assign an ID")
	}

	if _, err = svc.CreateClass(ctx, school.NewClass{SchoolID: sch.ID, Grade: 3, Section: "A"}); err != school.ErrClassExists {
		t.Errorf("CreateClass(duplicate) error = %v, want ErrClassExists", err)
	}
	if _, err = svc.CreateClass(ctx, school.NewClass{SchoolID: "nope", Grade: 3, Section: "A"}); err != school.ErrNotFound {
		t.Errorf("CreateClass(unknown school) error = %v, want ErrNotFound", err)
	}

	// same grade, different section is fine
	if _, err = svc.CreateClass(ctx, school.NewClass{SchoolID: sch.ID, Grade: 3, Section: "B"}); err != nil {
		t.Errorf("CreateClass(section B) failed: %v", err)
	}
}

func TestService_CreateAssessment_updatesBand(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")
	std := testutil.CreateStudent(t, repo, cls.ID, 1, "Asha")

	if std.ReadingBand != "" || std.MathBand != "" {
		t.Fatalf("new student should be unassessed, got %q/%q", std.ReadingBand, std.MathBand)
	}

	wpm := 42.0
	ass, err := svc.CreateAssessment(ctx, school.NewAssessment{
		StudentID:  std.ID,
		ClassID:    cls.ID,
		Type:       school.AssessmentReading,
		Date:       day(2025, time.May, 10),
		ResultBand: school.BandR2,
		WpmOrScore: &wpm,
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	if ass.ID == "" {
		t.Error("CreateAssessment() did not assign an ID")
	}

	refreshed, err := svc.GetStudent(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetStudent() failed: %v", err)
	}
	if refreshed.ReadingBand != school.BandR2 {
		t.Errorf("ReadingBand = %q, want R2", refreshed.ReadingBand)
	}
	if refreshed.MathBand != "" {
		t.Errorf("MathBand = %q, want unchanged", refreshed.MathBand)
	}

	// math assessment moves the math band only
	if _, err = svc.CreateAssessment(ctx, school.NewAssessment{
		StudentID:  std.ID,
		ClassID:    cls.ID,
		Type:       school.AssessmentMath,
		Date:       day(2025, time.May, 11),
		ResultBand: school.BandA1,
	}); err != nil {
		t.Fatalf("CreateAssessment(math) failed: %v", err)
	}
	refreshed, _ = svc.GetStudent(ctx, std.ID)
	if refreshed.ReadingBand != school.BandR2 || refreshed.MathBand != school.BandA1 {
		t.Errorf("bands = %q/%q, want R2/A1", refreshed.ReadingBand, refreshed.MathBand)
	}
}

func TestService_CreateAssessment_wrongClass(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")
	other := testutil.CreateClass(t, repo, sch.ID, 4, "A")
	std := testutil.CreateStudent(t, repo, cls.ID, 1, "Asha")

	_, err := svc.CreateAssessment(ctx, school.NewAssessment{
		StudentID:  std.ID,
		ClassID:    other.ID,
		Type:       school.AssessmentReading,
		ResultBand: school.BandR1,
	})
	if err != school.ErrStudentNotInClass {
		t.Errorf("CreateAssessment() error = %v, want ErrStudentNotInClass", err)
	}
}

func TestService_GetSessionStats(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")

	testutil.CreateSession(t, repo, cls.ID, day(2025, time.April, 7), 30)
	testutil.CreateSession(t, repo, cls.ID, day(2025, time.April, 14), 40)
	testutil.CreateSession(t, repo, cls.ID, day(2025, time.May, 5), 20)

	stats, err := svc.GetSessionStats(ctx, cls.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetSessionStats() failed: %v", err)
	}
	if stats.TotalSessions != 3 || stats.TotalMinutes != 90 || stats.AvgMinutes != 30 {
		t.Errorf("stats = %+v, want 3 sessions, 90 min, avg 30", stats)
	}

	// bounds are inclusive
	stats, err = svc.GetSessionStats(ctx, cls.ID, day(2025, time.April, 7), day(2025, time.April, 14))
	if err != nil {
		t.Fatalf("GetSessionStats() failed: %v", err)
	}
	if stats.TotalSessions != 2 || stats.TotalMinutes != 70 || stats.AvgMinutes != 35 {
		t.Errorf("stats = %+v, want 2 sessions, 70 min, avg 35", stats)
	}

	stats, err = svc.GetSessionStats(ctx, cls.ID, day(2026, time.January, 1), time.Time{})
	if err != nil {
		t.Fatalf("GetSessionStats() failed: %v", err)
	}
	if stats.TotalSessions != 0 || stats.AvgMinutes != 0 {
		t.Errorf("stats = %+v, want empty range to yield zeros", stats)
	}

	if _, err = svc.GetSessionStats(ctx, "nope", time.Time{}, time.Time{}); err != school.ErrClassNotFound {
		t.Errorf("GetSessionStats(unknown class) error = %v, want ErrClassNotFound", err)
	}
}

func TestService_RecordUsage_unknownClass(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.RecordUsage(context.Background(), school.NewUsageLog{ClassID: "nope", Minutes: 10})
	if err != school.ErrClassNotFound {
		t.Errorf("RecordUsage() error = %v, want ErrClassNotFound", err)
	}
}

func TestService_LoadSnapshot(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")
	testutil.CreateStudent(t, repo, cls.ID, 1, "Asha")
	inactive := testutil.CreateStudent(t, repo, cls.ID, 2, "Bina")
	active := false
	if _, err := svc.UpdateStudent(ctx, inactive.ID, school.UpdateStudent{Active: &active}); err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}
	testutil.CreateSession(t, repo, cls.ID, day(2025, time.May, 5), 35)
	testutil.CreateUsageLog(t, repo, cls.ID, day(2025, time.May, 6), 15)
	testutil.CreateComplianceRecord(t, repo, sch.ID, school.CompliancePoshan, day(2025, time.May, 1), school.StatusPass)

	snap, err := svc.LoadSnapshot(ctx, sch.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}

	if snap.School.ID != sch.ID {
		t.Errorf("School.ID = %s, want %s", snap.School.ID, sch.ID)
	}
	if len(snap.Classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(snap.Classes))
	}
	if got := len(snap.Classes[0].Students); got != 1 {
		t.Errorf("got %d students, want 1 (inactive excluded)", got)
	}
	if got := len(snap.Classes[0].Sessions); got != 1 {
		t.Errorf("got %d sessions, want 1", got)
	}
	if got := len(snap.UsageLogs); got != 1 {
		t.Errorf("got %d usage logs, want 1", got)
	}
	if got := len(snap.Compliance); got != 1 {
		t.Errorf("got %d compliance records, want 1", got)
	}

	if _, err = svc.LoadSnapshot(ctx, "nope"); err != school.ErrNotFound {
		t.Errorf("LoadSnapshot(unknown school) error = %v, want ErrNotFound", err)
	}
}
