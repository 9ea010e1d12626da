package school

import "time"

// Assessment types
const (
	AssessmentReading = "READING"
	AssessmentMath    = "MATH"
)

// Compliance record types
const (
	CompliancePoshan     = "POSHAN"
	ComplianceSanitation = "SANITATION"
	ComplianceMHM        = "MHM"
	ComplianceInspection = "INSPECTION"
)

// Compliance statuses
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusPartial = "partial"
)

// Band is an ordinal proficiency level: R0 < R1 < R2 < R3 for reading,
// A0 < A1 < A2 for math. Bands are compared by rank, never lexically.
type Band string

// Reading bands
const (
	BandR0 Band = "R0"
	BandR1 Band = "R1"
	BandR2 Band = "R2"
	BandR3 Band = "R3"
)

// Math bands
const (
	BandA0 Band = "A0"
	BandA1 Band = "A1"
	BandA2 Band = "A2"
)

var (
	ReadingBands = []Band{BandR0, BandR1, BandR2, BandR3}
	MathBands    = []Band{BandA0, BandA1, BandA2}

	bandRanks = map[Band]int{
		BandR0: 0,
		BandR1: 1,
		BandR2: 2,
		BandR3: 3,

		BandA0: 0,
		BandA1: 1,
		BandA2: 2,
	}
)

// Rank returns the ordinal position of the band within its vocabulary;
// unknown bands rank below every known one.
func (b Band) Rank() int {
	if rank, ok := bandRanks[b]; ok {
		return rank
	}
	return -1
}

func (b Band) IsValid() bool {
	_, ok := bandRanks[b]
	return ok
}

// AtLeast reports whether b ranks at or above min. Both bands must belong to
// the same vocabulary for the comparison to be meaningful.
func (b Band) AtLeast(min Band) bool {
	return b.IsValid() && b.Rank() >= min.Rank()
}

type School struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"` // UDISE code, unique
	Mediums         []string        `json:"mediums"`
	Grades          []int           `json:"grades"`
	FacilitiesFlags map[string]bool `json:"facilities_flags"`
	CreatedAt       time.Time       `json:"created_at"` // UTC
	UpdatedAt       time.Time       `json:"updated_at"` // UTC
}

type Class struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Grade     int       `json:"grade"` // 1 is earliest
	Section   string    `json:"section"`
	TeacherID string    `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Student struct {
	ID          string    `json:"id"`
	SchoolID    string    `json:"school_id"`
	ClassID     string    `json:"class_id"`
	Roll        int       `json:"roll"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	ReadingBand Band      `json:"reading_band,omitempty"` // current band, maintained by the assessment write path
	MathBand    Band      `json:"math_band,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Session represents one teaching period of a class.
type Session struct {
	ID            string    `json:"id"`
	ClassID       string    `json:"class_id"`
	Date          time.Time `json:"date"` // calendar date
	ActivityIDs   []string  `json:"activity_ids"`
	ActiveMinutes int       `json:"active_minutes"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// Assessment is an immutable point-in-time record; a student's current band
// is the band of their most recent assessment of that type.
type Assessment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ClassID    string    `json:"class_id"`
	Type       string    `json:"type"` // READING | MATH
	Date       time.Time `json:"date"`
	ResultBand Band      `json:"result_band"`
	WpmOrScore *float64  `json:"wpm_or_score,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// UsageLog records digital/QR practice minutes for a class on a given day.
type UsageLog struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	Date      time.Time `json:"date"` // calendar date
	Minutes   int       `json:"minutes"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type ComplianceRecord struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"` // pass | fail | partial
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// ClassSnapshot is a class with its nested read-only views: active students
// only, plus all sessions and assessments of the class.
type ClassSnapshot struct {
	Class       Class
	Students    []Student
	Sessions    []Session
	Assessments []Assessment
}

// Snapshot is the aggregate graph of one school, as consumed by a scoring
// run. It is a read-only view; ownership of the data stays with the
// repository that loaded it.
type Snapshot struct {
	School     School
	Classes    []ClassSnapshot
	UsageLogs  []UsageLog
	Compliance []ComplianceRecord
}

// ActiveStudents returns the total active-student count across all classes.
func (s Snapshot) ActiveStudents() int {
	var n int
	for _, cls := range s.Classes {
		n += len(cls.Students)
	}
	return n
}

// TotalSessions returns the total session count across all classes.
func (s Snapshot) TotalSessions() int {
	var n int
	for _, cls := range s.Classes {
		n += len(cls.Sessions)
	}
	return n
}
