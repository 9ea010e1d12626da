package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSchool(t *testing.T, repo school.Repository, name, code string) school.School {
	t.Helper()

	sch, err := repo.CreateSchool(context.Background(), school.School{
		Name:    name,
		Code:    code,
		Mediums: []string{"en"},
		Grades:  []int{1, 2, 3, 4, 5},
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateClass(t *testing.T, repo school.Repository, schoolID string, grade int, section string) school.Class {
	t.Helper()

	cls, err := repo.CreateClass(context.Background(), school.Class{
		SchoolID: schoolID,
		Grade:    grade,
		Section:  section,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, repo school.Repository, classID string, roll int, name string, bands ...school.Band) school.Student {
	t.Helper()

	stu := school.Student{
		ClassID: classID,
		Roll:    roll,
		Name:    name,
		Active:  true,
	}
	if len(bands) > 0 {
		stu.ReadingBand = bands[0]
	}
	if len(bands) > 1 {
		stu.MathBand = bands[1]
	}
	stu, err := repo.CreateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateSession(t *testing.T, repo school.Repository, classID string, date time.Time, activeMinutes int) school.Session {
	t.Helper()

	ses, err := repo.CreateSession(context.Background(), school.Session{
		ClassID:       classID,
		Date:          date,
		ActiveMinutes: activeMinutes,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return ses
}

func CreateAssessment(
	t *testing.T,
	repo school.Repository,
	studentID, classID, typ string,
	date time.Time,
	resultBand school.Band,
) school.Assessment {
	t.Helper()

	asm, err := repo.CreateAssessment(context.Background(), school.Assessment{
		StudentID:  studentID,
		ClassID:    classID,
		Type:       typ,
		Date:       date,
		ResultBand: resultBand,
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return asm
}

func CreateUsageLog(t *testing.T, repo school.Repository, classID string, date time.Time, minutes int) school.UsageLog {
	t.Helper()

	ul, err := repo.CreateUsageLog(context.Background(), school.UsageLog{
		ClassID: classID,
		Date:    date,
		Minutes: minutes,
	})
	if err != nil {
		t.Fatalf("CreateUsageLog() failed: %v", err)
	}
	return ul
}

func CreateComplianceRecord(
	t *testing.T,
	repo school.Repository,
	schoolID, typ string,
	date time.Time,
	status string,
) school.ComplianceRecord {
	t.Helper()

	rec, err := repo.CreateComplianceRecord(context.Background(), school.ComplianceRecord{
		SchoolID: schoolID,
		Type:     typ,
		Date:     date,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("CreateComplianceRecord() failed: %v", err)
	}
	return rec
}
