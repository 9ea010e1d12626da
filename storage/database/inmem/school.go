package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/vsip/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school}
}

// Schools

func (repo *schoolRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...school.School) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make(map[string]bool, len(excluded))
	for _, sch := range excluded {
		exclIDs[sch.ID] = true
	}

	for _, sch := range repo.db.schools {
		if sch.Code == code && !exclIDs[sch.ID] {
			return school.ErrCodeExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sch.ID = uuid.New().String()
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	schools := make([]school.School, 0, len(repo.db.schools))
	for _, sch := range repo.db.schools {
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].CreatedAt.After(schools[j].CreatedAt) })
	return schools, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.getSchool(id)
}

func (repo *schoolRepository) getSchool(id string) (school.School, error) {
	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return school.School{}, school.ErrNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) DeleteSchoolsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.schools, id)
		for cid, cls := range repo.db.classes {
			if cls.SchoolID == id {
				repo.deleteClass(cid)
			}
		}
		for rid, rec := range repo.db.compliance {
			if rec.SchoolID == id {
				delete(repo.db.compliance, rid)
			}
		}
	}
	return nil
}

// Classes

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) GetClassByKey(ctx context.Context, schoolID string, grade int, section string) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cls := range repo.db.classes {
		if cls.SchoolID == schoolID && cls.Grade == grade && cls.Section == section {
			return *cls, nil
		}
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryClasses(schoolID), nil
}

func (repo *schoolRepository) queryClasses(schoolID string) []school.Class {
	classes := make([]school.Class, 0)
	for _, cls := range repo.db.classes {
		if schoolID == "" || cls.SchoolID == schoolID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Grade != classes[j].Grade {
			return classes[i].Grade < classes[j].Grade
		}
		return classes[i].Section < classes[j].Section
	})
	return classes
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[cls.ID]; !ok {
		return school.Class{}, school.ErrClassNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) DeleteClassesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		repo.deleteClass(id)
	}
	return nil
}

// deleteClass cascades to the class' students, sessions, assessments and
// usage logs. Caller must hold the write lock.
func (repo *schoolRepository) deleteClass(id string) {
	delete(repo.db.classes, id)
	for sid, std := range repo.db.students {
		if std.ClassID == id {
			delete(repo.db.students, sid)
		}
	}
	for sid, ses := range repo.db.sessions {
		if ses.ClassID == id {
			delete(repo.db.sessions, sid)
		}
	}
	for aid, ass := range repo.db.assessments {
		if ass.ClassID == id {
			delete(repo.db.assessments, aid)
		}
	}
	for uid, ul := range repo.db.usageLogs {
		if ul.ClassID == id {
			delete(repo.db.usageLogs, uid)
		}
	}
}

// Students

func (repo *schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) CreateStudents(ctx context.Context, stds []school.Student) ([]school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]school.Student, 0, len(stds))
	for _, std := range stds {
		std := std
		std.ID = uuid.New().String()
		repo.db.students[std.ID] = &std
		created = append(created, std)
	}
	return created, nil
}

func (repo *schoolRepository) GetStudentByID(ctx context.Context, id string) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) QueryStudents(ctx context.Context, classID string) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryStudents(classID, false), nil
}

func (repo *schoolRepository) queryStudents(classID string, activeOnly bool) []school.Student {
	students := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.ClassID != classID {
			continue
		}
		if activeOnly && !std.Active {
			continue
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Roll < students[j].Roll })
	return students
}

func (repo *schoolRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return school.Student{}, school.ErrStudentNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}

// Sessions

func (repo *schoolRepository) CreateSession(ctx context.Context, ses school.Session) (school.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ses.ID = uuid.New().String()
	repo.db.sessions[ses.ID] = &ses
	return ses, nil
}

func (repo *schoolRepository) GetSessionByID(ctx context.Context, id string) (school.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ses, ok := repo.db.sessions[id]; ok {
		return *ses, nil
	}
	return school.Session{}, school.ErrSessionNotFound
}

func (repo *schoolRepository) QuerySessions(ctx context.Context, classID string) ([]school.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.querySessions(classID), nil
}

func (repo *schoolRepository) querySessions(classID string) []school.Session {
	sessions := make([]school.Session, 0)
	for _, ses := range repo.db.sessions {
		if ses.ClassID == classID {
			sessions = append(sessions, *ses)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	return sessions
}

func (repo *schoolRepository) UpdateSession(ctx context.Context, ses school.Session) (school.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[ses.ID]; !ok {
		return school.Session{}, school.ErrSessionNotFound
	}
	repo.db.sessions[ses.ID] = &ses
	return ses, nil
}

func (repo *schoolRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.sessions, id)
	}
	return nil
}

// Assessments

func (repo *schoolRepository) CreateAssessment(ctx context.Context, ass school.Assessment) (school.Assessment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ass.ID = uuid.New().String()
	repo.db.assessments[ass.ID] = &ass
	return ass, nil
}

func (repo *schoolRepository) GetAssessmentByID(ctx context.Context, id string) (school.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ass, ok := repo.db.assessments[id]; ok {
		return *ass, nil
	}
	return school.Assessment{}, school.ErrAssessmentNotFound
}

func (repo *schoolRepository) FilterAssessments(ctx context.Context, filter school.AssessmentFilter) ([]school.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assessments := make([]school.Assessment, 0)
	for _, ass := range repo.db.assessments {
		if filter.StudentID != "" && ass.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && ass.ClassID != filter.ClassID {
			continue
		}
		if filter.Type != "" && ass.Type != filter.Type {
			continue
		}
		assessments = append(assessments, *ass)
	}
	sort.Slice(assessments, func(i, j int) bool { return assessments[i].Date.After(assessments[j].Date) })
	return assessments, nil
}

// Usage logs

func (repo *schoolRepository) CreateUsageLog(ctx context.Context, ul school.UsageLog) (school.UsageLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ul.ID = uuid.New().String()
	repo.db.usageLogs[ul.ID] = &ul
	return ul, nil
}

func (repo *schoolRepository) QueryUsageLogs(ctx context.Context, classID string, from, to time.Time) ([]school.UsageLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	logs := make([]school.UsageLog, 0)
	for _, ul := range repo.db.usageLogs {
		if ul.ClassID != classID {
			continue
		}
		if !from.IsZero() && ul.Date.Before(from) {
			continue
		}
		if !to.IsZero() && ul.Date.After(to) {
			continue
		}
		logs = append(logs, *ul)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.After(logs[j].Date) })
	return logs, nil
}

// Compliance

func (repo *schoolRepository) CreateComplianceRecord(ctx context.Context, rec school.ComplianceRecord) (school.ComplianceRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.compliance[rec.ID] = &rec
	return rec, nil
}

func (repo *schoolRepository) FilterComplianceRecords(ctx context.Context, filter school.ComplianceFilter) ([]school.ComplianceRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]school.ComplianceRecord, 0)
	for _, rec := range repo.db.compliance {
		if filter.SchoolID != "" && rec.SchoolID != filter.SchoolID {
			continue
		}
		if filter.Type != "" && rec.Type != filter.Type {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}

// Snapshot

func (repo *schoolRepository) LoadSnapshot(ctx context.Context, schoolID string) (school.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sch, err := repo.getSchool(schoolID)
	if err != nil {
		return school.Snapshot{}, err
	}
	snap := school.Snapshot{School: sch}

	for _, cls := range repo.queryClasses(schoolID) {
		clsSnap := school.ClassSnapshot{
			Class:    cls,
			Students: repo.queryStudents(cls.ID, true),
			Sessions: repo.querySessions(cls.ID),
		}
		for _, ass := range repo.db.assessments {
			if ass.ClassID == cls.ID {
				clsSnap.Assessments = append(clsSnap.Assessments, *ass)
			}
		}
		snap.Classes = append(snap.Classes, clsSnap)

		for _, ul := range repo.db.usageLogs {
			if ul.ClassID == cls.ID {
				snap.UsageLogs = append(snap.UsageLogs, *ul)
			}
		}
	}

	for _, rec := range repo.db.compliance {
		if rec.SchoolID == schoolID {
			snap.Compliance = append(snap.Compliance, *rec)
		}
	}
	return snap, nil
}
