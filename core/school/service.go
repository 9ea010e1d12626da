package school

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/vsip/core"
)

var (
	// errors
	ErrNotFound           = errors.New("school not found")
	ErrCodeExists         = errors.New("a school with this UDISE code already exists")
	ErrClassNotFound      = errors.New("class not found")
	ErrClassExists        = errors.New("a class with this grade and section already exists")
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentNotInClass  = errors.New("student does not belong to this class")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
)

type (
	// AssessmentFilter applies AND operation on available fields.
	AssessmentFilter struct {
		StudentID string `query:"student"`
		ClassID   string `query:"class"`
		Type      string `query:"type"`
	}

	ComplianceFilter struct {
		SchoolID string `query:"school"`
		Type     string `query:"type"`
	}

	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excluded ...School) error
		CreateSchool(ctx context.Context, sch School) (School, error)
		QueryAllSchools(ctx context.Context) ([]School, error) // newest first
		GetSchoolByID(ctx context.Context, id string) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchoolsByID(ctx context.Context, ids ...string) error

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		GetClassByKey(ctx context.Context, schoolID string, grade int, section string) (Class, error)
		QueryClasses(ctx context.Context, schoolID string) ([]Class, error) // all when schoolID is empty
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) error

		CreateStudent(ctx context.Context, std Student) (Student, error)
		CreateStudents(ctx context.Context, stds []Student) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, classID string) ([]Student, error) // roll order
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		CreateSession(ctx context.Context, ses Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		QuerySessions(ctx context.Context, classID string) ([]Session, error) // most recent first
		UpdateSession(ctx context.Context, ses Session) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error

		CreateAssessment(ctx context.Context, ass Assessment) (Assessment, error)
		GetAssessmentByID(ctx context.Context, id string) (Assessment, error)
		FilterAssessments(ctx context.Context, filter AssessmentFilter) ([]Assessment, error)

		CreateUsageLog(ctx context.Context, ul UsageLog) (UsageLog, error)
		QueryUsageLogs(ctx context.Context, classID string, from, to time.Time) ([]UsageLog, error)

		CreateComplianceRecord(ctx context.Context, rec ComplianceRecord) (ComplianceRecord, error)
		FilterComplianceRecords(ctx context.Context, filter ComplianceFilter) ([]ComplianceRecord, error)

		// LoadSnapshot returns the aggregate graph of one school: classes with
		// nested active students, sessions and assessments, plus school-wide
		// usage logs and compliance records. Returns ErrNotFound if the school
		// does not exist.
		LoadSnapshot(ctx context.Context, schoolID string) (Snapshot, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Schools

func (svc *Service) CheckCodeUniqueness(ctx context.Context, code string, excluded ...School) error {
	if code == "" {
		return nil
	}
	if err := svc.repo.CheckCodeUniqueness(ctx, code, excluded...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateSchool(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:            ns.Name,
		Code:            ns.Code,
		Mediums:         ns.Mediums,
		Grades:          ns.Grades,
		FacilitiesFlags: ns.FacilitiesFlags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if sch.FacilitiesFlags == nil {
		sch.FacilitiesFlags = make(map[string]bool)
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) QueryAllSchools(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *Service) GetSchool(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *Service) UpdateSchool(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.Code != "" && us.Code != sch.Code {
		if err := svc.CheckCodeUniqueness(ctx, us.Code, sch); err != nil {
			return School{}, err
		}
		sch.Code = us.Code
	}
	if us.Mediums != nil {
		sch.Mediums = us.Mediums
	}
	if us.Grades != nil {
		sch.Grades = us.Grades
	}
	if us.FacilitiesFlags != nil {
		sch.FacilitiesFlags = us.FacilitiesFlags
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *Service) DeleteSchools(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSchoolsByID(ctx, ids...)
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if _, err := svc.repo.GetSchoolByID(ctx, nc.SchoolID); err != nil {
		return Class{}, err
	}
	if _, err := svc.repo.GetClassByKey(ctx, nc.SchoolID, nc.Grade, nc.Section); err == nil {
		return Class{}, ErrClassExists
	} else if err != ErrClassNotFound {
		return Class{}, err
	}

	now := time.Now().UTC()
	cls := Class{
		SchoolID:  nc.SchoolID,
		Grade:     nc.Grade,
		Section:   nc.Section,
		TeacherID: nc.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context, schoolID string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, schoolID)
}

func (svc *Service) UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Section != "" && uc.Section != cls.Section {
		if _, err := svc.repo.GetClassByKey(ctx, cls.SchoolID, cls.Grade, uc.Section); err == nil {
			return Class{}, ErrClassExists
		} else if err != ErrClassNotFound {
			return Class{}, err
		}
		cls.Section = uc.Section
	}
	if uc.TeacherID != "" {
		cls.TeacherID = uc.TeacherID
	}
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) DeleteClasses(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassesByID(ctx, ids...)
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	cls, err := svc.repo.GetClassByID(ctx, ns.ClassID)
	if err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	std := Student{
		SchoolID:  cls.SchoolID,
		ClassID:   cls.ID,
		Roll:      ns.Roll,
		Name:      ns.Name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) QueryStudents(ctx context.Context, classID string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, classID)
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		std.Name = us.Name
	}
	if us.ReadingBand != "" {
		std.ReadingBand = us.ReadingBand
	}
	if us.MathBand != "" {
		std.MathBand = us.MathBand
	}
	if us.Active != nil {
		std.Active = *us.Active
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) DeleteStudents(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// Sessions

func (svc *Service) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	if _, err := svc.repo.GetClassByID(ctx, ns.ClassID); err != nil {
		return Session{}, err
	}
	date := ns.Date
	if date.IsZero() {
		date = today()
	}
	ses := Session{
		ClassID:       ns.ClassID,
		Date:          date,
		ActivityIDs:   ns.ActivityIDs,
		ActiveMinutes: ns.ActiveMinutes,
		Notes:         ns.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateSession(ctx, ses)
}

func (svc *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) QuerySessions(ctx context.Context, classID string) ([]Session, error) {
	return svc.repo.QuerySessions(ctx, classID)
}

func (svc *Service) UpdateSession(ctx context.Context, id string, us UpdateSession) (Session, error) {
	ses, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if us.ActivityIDs != nil {
		ses.ActivityIDs = us.ActivityIDs
	}
	if us.ActiveMinutes != nil {
		ses.ActiveMinutes = *us.ActiveMinutes
	}
	if us.Notes != "" {
		ses.Notes = us.Notes
	}
	return svc.repo.UpdateSession(ctx, ses)
}

func (svc *Service) DeleteSessions(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSessionsByID(ctx, ids...)
}

// SessionStats summarizes teaching intensity for a class over an optional
// inclusive date range.
type SessionStats struct {
	TotalSessions int     `json:"total_sessions"`
	TotalMinutes  int     `json:"total_minutes"`
	AvgMinutes    float64 `json:"avg_minutes"`
}

func (svc *Service) GetSessionStats(ctx context.Context, classID string, from, to time.Time) (SessionStats, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return SessionStats{}, err
	}
	sessions, err := svc.repo.QuerySessions(ctx, classID)
	if err != nil {
		return SessionStats{}, err
	}

	var stats SessionStats
	for _, ses := range sessions {
		if !from.IsZero() && ses.Date.Before(from) {
			continue
		}
		if !to.IsZero() && ses.Date.After(to) {
			continue
		}
		stats.TotalSessions++
		stats.TotalMinutes += ses.ActiveMinutes
	}
	if stats.TotalSessions > 0 {
		stats.AvgMinutes = float64(stats.TotalMinutes) / float64(stats.TotalSessions)
	}
	return stats, nil
}

// Assessments

// CreateAssessment records an assessment and moves the student's current band
// of that type to the assessed band.
func (svc *Service) CreateAssessment(ctx context.Context, na NewAssessment) (Assessment, error) {
	std, err := svc.repo.GetStudentByID(ctx, na.StudentID)
	if err != nil {
		return Assessment{}, err
	}
	if std.ClassID != na.ClassID {
		return Assessment{}, ErrStudentNotInClass
	}

	date := na.Date
	if date.IsZero() {
		date = today()
	}
	ass := Assessment{
		StudentID:  na.StudentID,
		ClassID:    na.ClassID,
		Type:       na.Type,
		Date:       date,
		ResultBand: na.ResultBand,
		WpmOrScore: na.WpmOrScore,
		CreatedAt:  time.Now().UTC(),
	}
	ass, err = svc.repo.CreateAssessment(ctx, ass)
	if err != nil {
		return Assessment{}, err
	}

	switch na.Type {
	case AssessmentReading:
		std.ReadingBand = na.ResultBand
	case AssessmentMath:
		std.MathBand = na.ResultBand
	}
	std.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return Assessment{}, err
	}
	return ass, nil
}

func (svc *Service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessmentByID(ctx, id)
}

func (svc *Service) FilterAssessments(ctx context.Context, filter AssessmentFilter) ([]Assessment, error) {
	return svc.repo.FilterAssessments(ctx, filter)
}

// Usage logs

func (svc *Service) RecordUsage(ctx context.Context, nu NewUsageLog) (UsageLog, error) {
	if _, err := svc.repo.GetClassByID(ctx, nu.ClassID); err != nil {
		return UsageLog{}, err
	}
	date := nu.Date
	if date.IsZero() {
		date = today()
	}
	ul := UsageLog{
		ClassID:   nu.ClassID,
		Date:      date,
		Minutes:   nu.Minutes,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateUsageLog(ctx, ul)
}

func (svc *Service) QueryUsageLogs(ctx context.Context, classID string, from, to time.Time) ([]UsageLog, error) {
	return svc.repo.QueryUsageLogs(ctx, classID, from, to)
}

// Compliance

func (svc *Service) CreateComplianceRecord(ctx context.Context, nc NewComplianceRecord) (ComplianceRecord, error) {
	if _, err := svc.repo.GetSchoolByID(ctx, nc.SchoolID); err != nil {
		return ComplianceRecord{}, err
	}
	date := nc.Date
	if date.IsZero() {
		date = today()
	}
	rec := ComplianceRecord{
		SchoolID:  nc.SchoolID,
		Type:      nc.Type,
		Date:      date,
		Status:    nc.Status,
		Remarks:   nc.Remarks,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateComplianceRecord(ctx, rec)
}

func (svc *Service) FilterComplianceRecords(ctx context.Context, filter ComplianceFilter) ([]ComplianceRecord, error) {
	return svc.repo.FilterComplianceRecords(ctx, filter)
}

// Snapshot

func (svc *Service) LoadSnapshot(ctx context.Context, schoolID string) (Snapshot, error) {
	return svc.repo.LoadSnapshot(ctx, schoolID)
}

// today returns the current calendar date (midnight UTC).
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
