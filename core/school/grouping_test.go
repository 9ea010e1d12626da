package school_test

import (
	"context"
	"testing"

	"github.com/trezcool/vsip/core/school"
	testutil "github.com/trezcool/vsip/tests"
)

func TestService_GroupStudentsByBand(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, repo, "GPS Demo", "21180100101")
	cls := testutil.CreateClass(t, repo, sch.ID, 3, "A")

	asha := testutil.CreateStudent(t, repo, cls.ID, 1, "Asha", school.BandR2, school.BandA1)
	bina := testutil.CreateStudent(t, repo, cls.ID, 2, "Bina", school.BandR2, school.BandA0)
	chitra := testutil.CreateStudent(t, repo, cls.ID, 3, "Chitra") // unassessed

	// inactive students are left out
	inactive := testutil.CreateStudent(t, repo, cls.ID, 4, "Deepa", school.BandR3)
	active := false
	if _, err := svc.UpdateStudent(ctx, inactive.ID, school.UpdateStudent{Active: &active}); err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}

	grp, err := svc.GroupStudentsByBand(ctx, cls.ID)
	if err != nil {
		t.Fatalf("GroupStudentsByBand() failed: %v", err)
	}

	if grp.ClassID != cls.ID {
		t.Errorf("ClassID = %s, want %s", grp.ClassID, cls.ID)
	}

	ids := func(group []school.GroupedStudent) []string {
		out := make([]string, len(group))
		for i, gs := range group {
			out[i] = gs.ID
		}
		return out
	}
	assertGroup := func(name string, got []school.GroupedStudent, want ...string) {
		t.Helper()
		if len(got) != len(want) {
			t.Errorf("%s = %v, want %v", name, ids(got), want)
			return
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("%s = %v, want %v", name, ids(got), want)
				return
			}
		}
	}

	assertGroup("ReadingGroups[R2]", grp.ReadingGroups[school.BandR2], asha.ID, bina.ID)
	assertGroup("ReadingGroups[R0]", grp.ReadingGroups[school.BandR0], chitra.ID) // unassessed lands in the lowest band
	assertGroup("ReadingGroups[R3]", grp.ReadingGroups[school.BandR3])
	assertGroup("MathGroups[A1]", grp.MathGroups[school.BandA1], asha.ID)
	assertGroup("MathGroups[A0]", grp.MathGroups[school.BandA0], bina.ID, chitra.ID)

	if _, err = svc.GroupStudentsByBand(ctx, "nope"); err != school.ErrClassNotFound {
		t.Errorf("GroupStudentsByBand(unknown class) error = %v, want ErrClassNotFound", err)
	}
}
