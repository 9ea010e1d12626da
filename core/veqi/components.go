package veqi

import (
	"github.com/trezcool/vsip/core/school"
)

// Component weights. Fixed constants summing to 1.0; a structurally
// unavailable component contributes 0 and pulls the total down, it is never
// normalized away.
const (
	weightFoundational       = 0.40
	weightTimeOnTask         = 0.20
	weightDigitalPractice    = 0.15
	weightTransitionExposure = 0.15
	weightEnvironmentHealth  = 0.10
)

// Scoring targets.
const (
	weeksPerQuarter = 12 // approximate

	targetSessionMinutes      = 35 // active instruction minutes per session
	targetUsageDaysPerWeek    = 3  // QR practice days per week
	targetUsageMinutesPerWeek = 10 // QR practice minutes per student per week
	targetSessionsPerStudent  = 20 // sessions per student assumed to cover the activity sets
	proficientReadingBand     = school.BandR2
	proficientMathBand        = school.BandA2
)

// ComponentScores holds the five component scores of one scoring run, each
// in [0, 100].
type ComponentScores struct {
	Foundational       float64 `json:"foundational"`       // reference-grade reading fluency + math mastery
	TimeOnTask         float64 `json:"timeOnTask"`         // average active instruction minutes
	DigitalPractice    float64 `json:"digitalPractice"`    // QR days/week + minutes/student/week
	TransitionExposure float64 `json:"transitionExposure"` // activity-set completion proxy
	EnvironmentHealth  float64 `json:"environmentHealth"`  // POSHAN + sanitation/MHM compliance
}

// Total returns the weighted composite in [0, 100].
func (cs ComponentScores) Total() float64 {
	return cs.Foundational*weightFoundational +
		cs.TimeOnTask*weightTimeOnTask +
		cs.DigitalPractice*weightDigitalPractice +
		cs.TransitionExposure*weightTransitionExposure +
		cs.EnvironmentHealth*weightEnvironmentHealth
}

// ComputeComponents runs the five component scorers over a loaded snapshot.
// The scorers are independent pure functions; missing data degrades to a 0
// score, never to an error. Each score is clamped to [0, 100] so the
// composite invariant holds even when source data over-counts (duplicate
// assessments in a window, say).
func ComputeComponents(snap school.Snapshot, win Window, refGrade int) ComponentScores {
	return ComponentScores{
		Foundational:       clamp(foundationalScore(snap, refGrade)),
		TimeOnTask:         clamp(timeOnTaskScore(snap, win)),
		DigitalPractice:    clamp(digitalPracticeScore(snap, win)),
		TransitionExposure: clamp(transitionExposureScore(snap)),
		EnvironmentHealth:  clamp(environmentHealthScore(snap, win)),
	}
}

// foundationalScore measures grade-appropriate mastery for the reference
// grade cohort: the share of active students assessed at or above the
// proficient reading band, averaged with the share at the top math band.
// An absent cohort is a valid low-scoring state, not an error.
func foundationalScore(snap school.Snapshot, refGrade int) float64 {
	var cohort *school.ClassSnapshot
	for i := range snap.Classes {
		if snap.Classes[i].Class.Grade == refGrade {
			cohort = &snap.Classes[i]
			break
		}
	}
	if cohort == nil || len(cohort.Students) == 0 {
		return 0
	}

	var readingCount, mathCount int
	for _, ass := range cohort.Assessments {
		switch ass.Type {
		case school.AssessmentReading:
			if ass.ResultBand.AtLeast(proficientReadingBand) {
				readingCount++
			}
		case school.AssessmentMath:
			if ass.ResultBand == proficientMathBand {
				mathCount++
			}
		}
	}

	students := float64(len(cohort.Students))
	readingProficiency := float64(readingCount) / students * 100
	mathProficiency := float64(mathCount) / students * 100
	return (readingProficiency + mathProficiency) / 2
}

// timeOnTaskScore measures instructional intensity: average active minutes
// of in-window sessions against the target session length.
func timeOnTaskScore(snap school.Snapshot, win Window) float64 {
	var totalMinutes, totalSessions int
	for _, cls := range snap.Classes {
		for _, ses := range cls.Sessions {
			if win.Contains(ses.Date) {
				totalMinutes += ses.ActiveMinutes
				totalSessions++
			}
		}
	}
	if totalSessions == 0 {
		return 0
	}
	avg := float64(totalMinutes) / float64(totalSessions)
	return min100(avg / targetSessionMinutes * 100)
}

// digitalPracticeScore measures supplementary QR practice: distinct usage
// days per week and total minutes per student per week, each against its
// target, averaged.
func digitalPracticeScore(snap school.Snapshot, win Window) float64 {
	uniqueDays := make(map[string]struct{})
	var totalMinutes int
	for _, ul := range snap.UsageLogs {
		if !win.Contains(ul.Date) {
			continue
		}
		uniqueDays[ul.Date.Format("2006-01-02")] = struct{}{}
		totalMinutes += ul.Minutes
	}

	daysPerWeek := float64(len(uniqueDays)) / weeksPerQuarter
	daysScore := min100(daysPerWeek / targetUsageDaysPerWeek * 100)

	var minutesScore float64
	if students := snap.ActiveStudents(); students > 0 {
		minutesPerStudentPerWeek := float64(totalMinutes) / (float64(students) * weeksPerQuarter)
		minutesScore = min100(minutesPerStudentPerWeek / targetUsageMinutesPerWeek * 100)
	}

	return (daysScore + minutesScore) / 2
}

// transitionExposureScore approximates activity-set completion. There is no
// direct completion tracking yet; sessions per active student against an
// assumed full-completion count stands in for it.
func transitionExposureScore(snap school.Snapshot) float64 {
	students := snap.ActiveStudents()
	if students == 0 {
		return 0
	}
	avgSessionsPerStudent := float64(snap.TotalSessions()) / float64(students)
	return min100(avgSessionsPerStudent / targetSessionsPerStudent * 100)
}

// environmentHealthScore measures facility/nutrition compliance: the POSHAN
// pass-rate averaged with the sanitation/MHM pass-rate over in-window
// records. An untracked category counts as zero compliance rather than being
// averaged away.
func environmentHealthScore(snap school.Snapshot, win Window) float64 {
	var poshanTotal, poshanPass, sanitationTotal, sanitationPass int
	for _, rec := range snap.Compliance {
		if !win.Contains(rec.Date) {
			continue
		}
		switch rec.Type {
		case school.CompliancePoshan:
			poshanTotal++
			if rec.Status == school.StatusPass {
				poshanPass++
			}
		case school.ComplianceSanitation, school.ComplianceMHM:
			sanitationTotal++
			if rec.Status == school.StatusPass {
				sanitationPass++
			}
		}
	}
	if poshanTotal+sanitationTotal == 0 {
		return 0
	}

	var poshanRate, sanitationRate float64
	if poshanTotal > 0 {
		poshanRate = float64(poshanPass) / float64(poshanTotal) * 100
	}
	if sanitationTotal > 0 {
		sanitationRate = float64(sanitationPass) / float64(sanitationTotal) * 100
	}
	return (poshanRate + sanitationRate) / 2
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return min100(v)
}
