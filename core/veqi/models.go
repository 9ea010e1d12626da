package veqi

import "time"

// Record is the persisted output of one scoring run, keyed by
// (schoolId, quarter). A recompute replaces the scores and plan in place,
// preserving the record's identity and creation timestamp.
type Record struct {
	ID              string          `json:"id"`
	SchoolID        string          `json:"school_id"`
	Quarter         string          `json:"quarter"` // "YYYY-Qn"
	ComponentScores ComponentScores `json:"component_scores"`
	TotalScore      float64         `json:"total_score"`
	PlanActions     []Action        `json:"plan_actions"`
	CreatedAt       time.Time       `json:"created_at"` // UTC
	UpdatedAt       time.Time       `json:"updated_at"` // UTC
}
