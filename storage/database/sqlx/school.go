package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vsip/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

type (
	schoolRow struct {
		ID              string         `db:"id"`
		Name            string         `db:"name"`
		Code            string         `db:"code"`
		Mediums         pq.StringArray `db:"mediums"`
		Grades          pq.Int64Array  `db:"grades"`
		FacilitiesFlags []byte         `db:"facilities_flags"`
		CreatedAt       time.Time      `db:"created_at"`
		UpdatedAt       time.Time      `db:"updated_at"`
	}

	classRow struct {
		ID        string      `db:"id"`
		SchoolID  string      `db:"school_id"`
		Grade     int         `db:"grade"`
		Section   string      `db:"section"`
		TeacherID null.String `db:"teacher_id"`
		CreatedAt time.Time   `db:"created_at"`
		UpdatedAt time.Time   `db:"updated_at"`
	}

	studentRow struct {
		ID          string    `db:"id"`
		SchoolID    string    `db:"school_id"`
		ClassID     string    `db:"class_id"`
		Roll        int       `db:"roll"`
		Name        string    `db:"name"`
		Active      bool      `db:"active"`
		ReadingBand string    `db:"reading_band"`
		MathBand    string    `db:"math_band"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	sessionRow struct {
		ID            string         `db:"id"`
		ClassID       string         `db:"class_id"`
		Date          time.Time      `db:"date"`
		ActivityIDs   pq.StringArray `db:"activity_ids"`
		ActiveMinutes int            `db:"active_minutes"`
		Notes         string         `db:"notes"`
		CreatedAt     time.Time      `db:"created_at"`
	}

	assessmentRow struct {
		ID         string       `db:"id"`
		StudentID  string       `db:"student_id"`
		ClassID    string       `db:"class_id"`
		Type       string       `db:"type"`
		Date       time.Time    `db:"date"`
		ResultBand string       `db:"result_band"`
		WpmOrScore null.Float64 `db:"wpm_or_score"`
		CreatedAt  time.Time    `db:"created_at"`
	}

	usageLogRow struct {
		ID        string    `db:"id"`
		ClassID   string    `db:"class_id"`
		Date      time.Time `db:"date"`
		Minutes   int       `db:"minutes"`
		CreatedAt time.Time `db:"created_at"`
	}

	complianceRow struct {
		ID        string    `db:"id"`
		SchoolID  string    `db:"school_id"`
		Type      string    `db:"type"`
		Date      time.Time `db:"date"`
		Status    string    `db:"status"`
		Remarks   string    `db:"remarks"`
		CreatedAt time.Time `db:"created_at"`
	}
)

func (repo schoolRepository) schoolRow(sch school.School) (schoolRow, error) {
	flags, err := json.Marshal(sch.FacilitiesFlags)
	if err != nil {
		return schoolRow{}, errors.Wrap(err, "marshaling facilities flags")
	}
	grades := make(pq.Int64Array, 0, len(sch.Grades))
	for _, g := range sch.Grades {
		grades = append(grades, int64(g))
	}
	return schoolRow{
		ID:              sch.ID,
		Name:            sch.Name,
		Code:            sch.Code,
		Mediums:         sch.Mediums,
		Grades:          grades,
		FacilitiesFlags: flags,
		CreatedAt:       sch.CreatedAt.UTC(),
		UpdatedAt:       sch.UpdatedAt.UTC(),
	}, nil
}

func (repo schoolRepository) schoolEntity(row schoolRow) (school.School, error) {
	flags := make(map[string]bool)
	if len(row.FacilitiesFlags) > 0 {
		if err := json.Unmarshal(row.FacilitiesFlags, &flags); err != nil {
			return school.School{}, errors.Wrap(err, "unmarshaling facilities flags")
		}
	}
	grades := make([]int, 0, len(row.Grades))
	for _, g := range row.Grades {
		grades = append(grades, int(g))
	}
	return school.School{
		ID:              row.ID,
		Name:            row.Name,
		Code:            row.Code,
		Mediums:         row.Mediums,
		Grades:          grades,
		FacilitiesFlags: flags,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (repo schoolRepository) classEntity(row classRow) school.Class {
	return school.Class{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		Grade:     row.Grade,
		Section:   row.Section,
		TeacherID: row.TeacherID.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo schoolRepository) studentEntity(row studentRow) school.Student {
	return school.Student{
		ID:          row.ID,
		SchoolID:    row.SchoolID,
		ClassID:     row.ClassID,
		Roll:        row.Roll,
		Name:        row.Name,
		Active:      row.Active,
		ReadingBand: school.Band(row.ReadingBand),
		MathBand:    school.Band(row.MathBand),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo schoolRepository) sessionEntity(row sessionRow) school.Session {
	return school.Session{
		ID:            row.ID,
		ClassID:       row.ClassID,
		Date:          row.Date,
		ActivityIDs:   row.ActivityIDs,
		ActiveMinutes: row.ActiveMinutes,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
	}
}

func (repo schoolRepository) assessmentEntity(row assessmentRow) school.Assessment {
	return school.Assessment{
		ID:         row.ID,
		StudentID:  row.StudentID,
		ClassID:    row.ClassID,
		Type:       row.Type,
		Date:       row.Date,
		ResultBand: school.Band(row.ResultBand),
		WpmOrScore: row.WpmOrScore.Ptr(),
		CreatedAt:  row.CreatedAt,
	}
}

func (repo schoolRepository) usageLogEntity(row usageLogRow) school.UsageLog {
	return school.UsageLog{
		ID:        row.ID,
		ClassID:   row.ClassID,
		Date:      row.Date,
		Minutes:   row.Minutes,
		CreatedAt: row.CreatedAt,
	}
}

func (repo schoolRepository) complianceEntity(row complianceRow) school.ComplianceRecord {
	return school.ComplianceRecord{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		Type:      row.Type,
		Date:      row.Date,
		Status:    row.Status,
		Remarks:   row.Remarks,
		CreatedAt: row.CreatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to notFoundErr
func (repo schoolRepository) trapNoRowsErr(err, notFoundErr error, msg string) error {
	if err == sql.ErrNoRows {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// Schools

func (repo schoolRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...school.School) error {
	query := `SELECT COUNT(*) FROM schools WHERE code = $1`
	args := []interface{}{code}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, sch := range excluded {
			ids = append(ids, sch.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if count > 0 {
		return school.ErrCodeExists
	}
	return nil
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = uuid.New().String()
	row, err := repo.schoolRow(sch)
	if err != nil {
		return school.School{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO schools (id, name, code, mediums, grades, facilities_flags, created_at, updated_at)
		VALUES (:id, :name, :code, :mediums, :grades, :facilities_flags, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "creating school")
	}
	return sch, nil
}

func (repo schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM schools ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, row := range rows {
		sch, err := repo.schoolEntity(row)
		if err != nil {
			return nil, err
		}
		schools = append(schools, sch)
	}
	return schools, nil
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var row schoolRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM schools WHERE id = $1`, id); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, school.ErrNotFound, "getting school by id")
	}
	return repo.schoolEntity(row)
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	row, err := repo.schoolRow(sch)
	if err != nil {
		return school.School{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE schools
		SET name = :name, code = :code, mediums = :mediums, grades = :grades,
		    facilities_flags = :facilities_flags, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}

func (repo schoolRepository) DeleteSchoolsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM schools WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting schools")
	}
	return nil
}

// Classes

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	cls.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO classes (id, school_id, grade, section, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cls.ID, cls.SchoolID, cls.Grade, cls.Section, null.NewString(cls.TeacherID, cls.TeacherID != ""),
		cls.CreatedAt.UTC(), cls.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo schoolRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM classes WHERE id = $1`, id); err != nil {
		return school.Class{}, repo.trapNoRowsErr(err, school.ErrClassNotFound, "getting class by id")
	}
	return repo.classEntity(row), nil
}

func (repo schoolRepository) GetClassByKey(ctx context.Context, schoolID string, grade int, section string) (school.Class, error) {
	var row classRow
	query := `SELECT * FROM classes WHERE school_id = $1 AND grade = $2 AND section = $3`
	if err := repo.db.GetContext(ctx, &row, query, schoolID, grade, section); err != nil {
		return school.Class{}, repo.trapNoRowsErr(err, school.ErrClassNotFound, "getting class by key")
	}
	return repo.classEntity(row), nil
}

func (repo schoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error) {
	query := `SELECT * FROM classes ORDER BY grade, section`
	args := make([]interface{}, 0, 1)
	if schoolID != "" {
		query = `SELECT * FROM classes WHERE school_id = $1 ORDER BY grade, section`
		args = append(args, schoolID)
	}

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.classEntity(row))
	}
	return classes, nil
}

func (repo schoolRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE classes SET section = $1, teacher_id = $2, updated_at = $3 WHERE id = $4`,
		cls.Section, null.NewString(cls.TeacherID, cls.TeacherID != ""), cls.UpdatedAt.UTC(), cls.ID,
	)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Class{}, school.ErrClassNotFound
	}
	return cls, nil
}

func (repo schoolRepository) DeleteClassesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM classes WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return nil
}

// Students

func (repo schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO students (id, school_id, class_id, roll, name, active, reading_band, math_band, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		std.ID, std.SchoolID, std.ClassID, std.Roll, std.Name, std.Active,
		string(std.ReadingBand), string(std.MathBand), std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo schoolRepository) CreateStudents(ctx context.Context, stds []school.Student) ([]school.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}

	created := make([]school.Student, 0, len(stds))
	for _, std := range stds {
		std.ID = uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO students (id, school_id, class_id, roll, name, active, reading_band, math_band, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			std.ID, std.SchoolID, std.ClassID, std.Roll, std.Name, std.Active,
			string(std.ReadingBand), string(std.MathBand), std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
		)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "creating students")
		}
		created = append(created, std)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing students")
	}
	return created, nil
}

func (repo schoolRepository) GetStudentByID(ctx context.Context, id string) (school.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE id = $1`, id); err != nil {
		return school.Student{}, repo.trapNoRowsErr(err, school.ErrStudentNotFound, "getting student by id")
	}
	return repo.studentEntity(row), nil
}

func (repo schoolRepository) QueryStudents(ctx context.Context, classID string) ([]school.Student, error) {
	var rows []studentRow
	query := `SELECT * FROM students WHERE class_id = $1 ORDER BY roll`
	if err := repo.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.studentEntity(row))
	}
	return students, nil
}

func (repo schoolRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE students
		SET name = $1, active = $2, reading_band = $3, math_band = $4, updated_at = $5
		WHERE id = $6`,
		std.Name, std.Active, string(std.ReadingBand), string(std.MathBand), std.UpdatedAt.UTC(), std.ID,
	)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Student{}, school.ErrStudentNotFound
	}
	return std, nil
}

func (repo schoolRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

// Sessions

func (repo schoolRepository) CreateSession(ctx context.Context, ses school.Session) (school.Session, error) {
	ses.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO sessions (id, class_id, date, activity_ids, active_minutes, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ses.ID, ses.ClassID, ses.Date, pq.Array(ses.ActivityIDs), ses.ActiveMinutes, ses.Notes, ses.CreatedAt.UTC(),
	)
	if err != nil {
		return school.Session{}, errors.Wrap(err, "creating session")
	}
	return ses, nil
}

func (repo schoolRepository) GetSessionByID(ctx context.Context, id string) (school.Session, error) {
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM sessions WHERE id = $1`, id); err != nil {
		return school.Session{}, repo.trapNoRowsErr(err, school.ErrSessionNotFound, "getting session by id")
	}
	return repo.sessionEntity(row), nil
}

func (repo schoolRepository) QuerySessions(ctx context.Context, classID string) ([]school.Session, error) {
	var rows []sessionRow
	query := `SELECT * FROM sessions WHERE class_id = $1 ORDER BY date DESC, created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]school.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, repo.sessionEntity(row))
	}
	return sessions, nil
}

func (repo schoolRepository) UpdateSession(ctx context.Context, ses school.Session) (school.Session, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE sessions SET activity_ids = $1, active_minutes = $2, notes = $3 WHERE id = $4`,
		pq.Array(ses.ActivityIDs), ses.ActiveMinutes, ses.Notes, ses.ID,
	)
	if err != nil {
		return school.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Session{}, school.ErrSessionNotFound
	}
	return ses, nil
}

func (repo schoolRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

// Assessments

func (repo schoolRepository) CreateAssessment(ctx context.Context, ass school.Assessment) (school.Assessment, error) {
	ass.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO assessments (id, student_id, class_id, type, date, result_band, wpm_or_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ass.ID, ass.StudentID, ass.ClassID, ass.Type, ass.Date, string(ass.ResultBand),
		null.Float64FromPtr(ass.WpmOrScore), ass.CreatedAt.UTC(),
	)
	if err != nil {
		return school.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	return ass, nil
}

func (repo schoolRepository) GetAssessmentByID(ctx context.Context, id string) (school.Assessment, error) {
	var row assessmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assessments WHERE id = $1`, id); err != nil {
		return school.Assessment{}, repo.trapNoRowsErr(err, school.ErrAssessmentNotFound, "getting assessment by id")
	}
	return repo.assessmentEntity(row), nil
}

func (repo schoolRepository) FilterAssessments(ctx context.Context, filter school.AssessmentFilter) ([]school.Assessment, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if filter.ClassID != "" {
		conds = append(conds, "class_id = "+arg(filter.ClassID))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(filter.Type))
	}

	query := `SELECT * FROM assessments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	var rows []assessmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering assessments")
	}
	assessments := make([]school.Assessment, 0, len(rows))
	for _, row := range rows {
		assessments = append(assessments, repo.assessmentEntity(row))
	}
	return assessments, nil
}

// Usage logs

func (repo schoolRepository) CreateUsageLog(ctx context.Context, ul school.UsageLog) (school.UsageLog, error) {
	ul.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO usage_logs (id, class_id, date, minutes, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ul.ID, ul.ClassID, ul.Date, ul.Minutes, ul.CreatedAt.UTC(),
	)
	if err != nil {
		return school.UsageLog{}, errors.Wrap(err, "creating usage log")
	}
	return ul, nil
}

func (repo schoolRepository) QueryUsageLogs(ctx context.Context, classID string, from, to time.Time) ([]school.UsageLog, error) {
	conds := []string{"class_id = $1"}
	args := []interface{}{classID}
	if !from.IsZero() {
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT * FROM usage_logs WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY date DESC`

	var rows []usageLogRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying usage logs")
	}
	logs := make([]school.UsageLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, repo.usageLogEntity(row))
	}
	return logs, nil
}

// Compliance

func (repo schoolRepository) CreateComplianceRecord(ctx context.Context, rec school.ComplianceRecord) (school.ComplianceRecord, error) {
	rec.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO compliance_records (id, school_id, type, date, status, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.SchoolID, rec.Type, rec.Date, rec.Status, rec.Remarks, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return school.ComplianceRecord{}, errors.Wrap(err, "creating compliance record")
	}
	return rec, nil
}

func (repo schoolRepository) FilterComplianceRecords(ctx context.Context, filter school.ComplianceFilter) ([]school.ComplianceRecord, error) {
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.SchoolID != "" {
		args = append(args, filter.SchoolID)
		conds = append(conds, fmt.Sprintf("school_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT * FROM compliance_records`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	var rows []complianceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering compliance records")
	}
	records := make([]school.ComplianceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.complianceEntity(row))
	}
	return records, nil
}

// Snapshot

// LoadSnapshot loads the whole aggregate graph of one school in a handful of
// set-based queries, then stitches it together in memory.
func (repo schoolRepository) LoadSnapshot(ctx context.Context, schoolID string) (school.Snapshot, error) {
	sch, err := repo.GetSchoolByID(ctx, schoolID)
	if err != nil {
		return school.Snapshot{}, err
	}
	snap := school.Snapshot{School: sch}

	var classRows []classRow
	if err = repo.db.SelectContext(ctx, &classRows,
		`SELECT * FROM classes WHERE school_id = $1 ORDER BY grade, section`, schoolID); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading classes")
	}

	classIdx := make(map[string]int, len(classRows)) // class ID -> position in snap.Classes
	classIDs := make([]string, 0, len(classRows))
	for _, row := range classRows {
		classIdx[row.ID] = len(snap.Classes)
		classIDs = append(classIDs, row.ID)
		snap.Classes = append(snap.Classes, school.ClassSnapshot{Class: repo.classEntity(row)})
	}

	var studentRows []studentRow
	if err = repo.db.SelectContext(ctx, &studentRows,
		`SELECT * FROM students WHERE class_id = ANY($1) AND active ORDER BY roll`, pq.Array(classIDs)); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading students")
	}
	for _, row := range studentRows {
		if i, ok := classIdx[row.ClassID]; ok {
			snap.Classes[i].Students = append(snap.Classes[i].Students, repo.studentEntity(row))
		}
	}

	var sessionRows []sessionRow
	if err = repo.db.SelectContext(ctx, &sessionRows,
		`SELECT * FROM sessions WHERE class_id = ANY($1)`, pq.Array(classIDs)); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading sessions")
	}
	for _, row := range sessionRows {
		if i, ok := classIdx[row.ClassID]; ok {
			snap.Classes[i].Sessions = append(snap.Classes[i].Sessions, repo.sessionEntity(row))
		}
	}

	var assessmentRows []assessmentRow
	if err = repo.db.SelectContext(ctx, &assessmentRows,
		`SELECT * FROM assessments WHERE class_id = ANY($1)`, pq.Array(classIDs)); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading assessments")
	}
	for _, row := range assessmentRows {
		if i, ok := classIdx[row.ClassID]; ok {
			snap.Classes[i].Assessments = append(snap.Classes[i].Assessments, repo.assessmentEntity(row))
		}
	}

	var usageRows []usageLogRow
	if err = repo.db.SelectContext(ctx, &usageRows,
		`SELECT * FROM usage_logs WHERE class_id = ANY($1)`, pq.Array(classIDs)); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading usage logs")
	}
	for _, row := range usageRows {
		snap.UsageLogs = append(snap.UsageLogs, repo.usageLogEntity(row))
	}

	var complianceRows []complianceRow
	if err = repo.db.SelectContext(ctx, &complianceRows,
		`SELECT * FROM compliance_records WHERE school_id = $1`, schoolID); err != nil {
		return school.Snapshot{}, errors.Wrap(err, "loading compliance records")
	}
	for _, row := range complianceRows {
		snap.Compliance = append(snap.Compliance, repo.complianceEntity(row))
	}

	return snap, nil
}
