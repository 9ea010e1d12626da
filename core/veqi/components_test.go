package veqi

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/trezcool/vsip/core/school"
)

const refGrade = 3

func q2Window(t *testing.T) Window {
	t.Helper()
	win, err := ResolveQuarter("2025-Q2")
	if err != nil {
		t.Fatalf("ResolveQuarter() failed: %v", err)
	}
	return win
}

func students(n int) []school.Student {
	stds := make([]school.Student, n)
	for i := range stds {
		stds[i] = school.Student{ID: fmt.Sprintf("std%d", i), Roll: i + 1, Active: true}
	}
	return stds
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeComponents_emptySnapshot(t *testing.T) {
	snap := school.Snapshot{School: school.School{ID: "sch1"}}

	cs := ComputeComponents(snap, q2Window(t), refGrade)

	if cs != (ComponentScores{}) {
		t.Errorf("ComputeComponents() = %+v, want all zeros", cs)
	}
	if total := cs.Total(); total != 0 {
		t.Errorf("Total() = %v, want 0", total)
	}
}

func TestComputeComponents_foundational(t *testing.T) {
	win := q2Window(t)
	asmDate := date(2025, time.May, 10)

	// 10 students in the reference grade; 5 read at or above R2, 3 master A2
	cohort := school.ClassSnapshot{
		Class:    school.Class{ID: "cls1", Grade: refGrade},
		Students: students(10),
		Assessments: []school.Assessment{
			{StudentID: "std0", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR2},
			{StudentID: "std1", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR2},
			{StudentID: "std2", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR3},
			{StudentID: "std3", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR2},
			{StudentID: "std4", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR3},
			{StudentID: "std5", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR1},
			{StudentID: "std6", Type: school.AssessmentReading, Date: asmDate, ResultBand: school.BandR0},
			{StudentID: "std0", Type: school.AssessmentMath, Date: asmDate, ResultBand: school.BandA2},
			{StudentID: "std1", Type: school.AssessmentMath, Date: asmDate, ResultBand: school.BandA2},
			{StudentID: "std2", Type: school.AssessmentMath, Date: asmDate, ResultBand: school.BandA2},
			{StudentID: "std3", Type: school.AssessmentMath, Date: asmDate, ResultBand: school.BandA1},
		},
	}
	snap := school.Snapshot{Classes: []school.ClassSnapshot{cohort}}

	cs := ComputeComponents(snap, win, refGrade)

	// reading 50%, math 30% -> 40
	if !almostEqual(cs.Foundational, 40) {
		t.Errorf("Foundational = %v, want 40", cs.Foundational)
	}
}

func TestComputeComponents_foundational_noCohort(t *testing.T) {
	snap := school.Snapshot{Classes: []school.ClassSnapshot{
		{Class: school.Class{ID: "cls1", Grade: 5}, Students: students(10)},
	}}

	cs := ComputeComponents(snap, q2Window(t), refGrade)

	if cs.Foundational != 0 {
		t.Errorf("Foundational = %v, want 0 when reference grade is absent", cs.Foundational)
	}
}

func TestComputeComponents_timeOnTask(t *testing.T) {
	win := q2Window(t)
	snap := school.Snapshot{Classes: []school.ClassSnapshot{
		{
			Class:    school.Class{ID: "cls1", Grade: refGrade},
			Students: students(5),
			Sessions: []school.Session{
				{Date: date(2025, time.April, 7), ActiveMinutes: 20},
				{Date: date(2025, time.April, 14), ActiveMinutes: 30},
				{Date: date(2025, time.May, 5), ActiveMinutes: 25},
				{Date: date(2025, time.January, 10), ActiveMinutes: 60}, // out of window
			},
		},
	}}

	cs := ComputeComponents(snap, win, refGrade)

	// avg 25 of 35 target
	want := 25.0 / 35 * 100
	if !almostEqual(cs.TimeOnTask, want) {
		t.Errorf("TimeOnTask = %v, want %v", cs.TimeOnTask, want)
	}
}

func TestComputeComponents_timeOnTask_capped(t *testing.T) {
	snap := school.Snapshot{Classes: []school.ClassSnapshot{
		{
			Class:    school.Class{ID: "cls1", Grade: refGrade},
			Sessions: []school.Session{{Date: date(2025, time.May, 5), ActiveMinutes: 90}},
		},
	}}

	cs := ComputeComponents(snap, q2Window(t), refGrade)

	if cs.TimeOnTask != 100 {
		t.Errorf("TimeOnTask = %v, want capped at 100", cs.TimeOnTask)
	}
}

func TestComputeComponents_digitalPractice(t *testing.T) {
	win := q2Window(t)

	// 18 distinct days (1.5/wk of a 3/wk target) and 600 total minutes over
	// 10 students (5 min/student/wk of a 10 target): both halves land on 50.
	logs := make([]school.UsageLog, 0, 18)
	for i := 0; i < 18; i++ {
		logs = append(logs, school.UsageLog{
			Date:    date(2025, time.April, 1).AddDate(0, 0, i*2),
			Minutes: 600 / 18,
		})
	}
	// make minutes sum exactly 600
	logs[len(logs)-1].Minutes += 600 - (600/18)*18

	snap := school.Snapshot{
		Classes:   []school.ClassSnapshot{{Class: school.Class{ID: "cls1"}, Students: students(10)}},
		UsageLogs: logs,
	}

	cs := ComputeComponents(snap, win, refGrade)

	if !almostEqual(cs.DigitalPractice, 50) {
		t.Errorf("DigitalPractice = %v, want 50", cs.DigitalPractice)
	}
}

func TestComputeComponents_digitalPractice_sameDayLogsCountOnce(t *testing.T) {
	day := date(2025, time.May, 5)
	snap := school.Snapshot{
		Classes: []school.ClassSnapshot{{Class: school.Class{ID: "cls1"}, Students: students(1)}},
		UsageLogs: []school.UsageLog{
			{ClassID: "cls1", Date: day, Minutes: 10},
			{ClassID: "cls2", Date: day, Minutes: 10},
		},
	}

	cs := ComputeComponents(snap, q2Window(t), refGrade)

	daysScore := 1.0 / weeksPerQuarter / targetUsageDaysPerWeek * 100
	minutesScore := 20.0 / weeksPerQuarter / targetUsageMinutesPerWeek * 100
	want := (daysScore + minutesScore) / 2
	if !almostEqual(cs.DigitalPractice, want) {
		t.Errorf("DigitalPractice = %v, want %v", cs.DigitalPractice, want)
	}
}

func TestComputeComponents_transitionExposure(t *testing.T) {
	sessions := make([]school.Session, 50)
	for i := range sessions {
		sessions[i] = school.Session{Date: date(2025, time.April, 1).AddDate(0, 0, i)}
	}
	snap := school.Snapshot{Classes: []school.ClassSnapshot{
		{Class: school.Class{ID: "cls1"}, Students: students(5), Sessions: sessions},
	}}

	cs := ComputeComponents(snap, q2Window(t), refGrade)

	// 10 sessions per student of an assumed 20
	if !almostEqual(cs.TransitionExposure, 50) {
		t.Errorf("TransitionExposure = %v, want 50", cs.TransitionExposure)
	}
}

func TestComputeComponents_environmentHealth(t *testing.T) {
	win := q2Window(t)
	day := date(2025, time.May, 1)

	tests := []struct {
		name    string
		records []school.ComplianceRecord
		want    float64
	}{
		{name: "no records", records: nil, want: 0},
		{
			name: "all pass",
			records: []school.ComplianceRecord{
				{Type: school.CompliancePoshan, Date: day, Status: school.StatusPass},
				{Type: school.ComplianceSanitation, Date: day, Status: school.StatusPass},
			},
			want: 100,
		},
		{
			name: "poshan full, sanitation half",
			records: []school.ComplianceRecord{
				{Type: school.CompliancePoshan, Date: day, Status: school.StatusPass},
				{Type: school.CompliancePoshan, Date: day.AddDate(0, 1, 0), Status: school.StatusPass},
				{Type: school.ComplianceSanitation, Date: day, Status: school.StatusPass},
				{Type: school.ComplianceMHM, Date: day, Status: school.StatusFail},
			},
			want: 75,
		},
		{
			name: "untracked sanitation counts as zero",
			records: []school.ComplianceRecord{
				{Type: school.CompliancePoshan, Date: day, Status: school.StatusPass},
			},
			want: 50,
		},
		{
			name: "out-of-window records ignored",
			records: []school.ComplianceRecord{
				{Type: school.CompliancePoshan, Date: date(2025, time.January, 1), Status: school.StatusPass},
			},
			want: 0,
		},
		{
			name: "partial is not a pass",
			records: []school.ComplianceRecord{
				{Type: school.CompliancePoshan, Date: day, Status: school.StatusPartial},
				{Type: school.ComplianceSanitation, Date: day, Status: school.StatusPass},
			},
			want: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := school.Snapshot{Compliance: tt.records}
			cs := ComputeComponents(snap, win, refGrade)
			if !almostEqual(cs.EnvironmentHealth, tt.want) {
				t.Errorf("EnvironmentHealth = %v, want %v", cs.EnvironmentHealth, tt.want)
			}
		})
	}
}

func TestComponentScores_Total(t *testing.T) {
	cs := ComponentScores{
		Foundational:       40,
		TimeOnTask:         80,
		DigitalPractice:    60,
		TransitionExposure: 50,
		EnvironmentHealth:  100,
	}

	// 40*.40 + 80*.20 + 60*.15 + 50*.15 + 100*.10
	want := 16 + 16 + 9 + 7.5 + 10.0
	if !almostEqual(cs.Total(), want) {
		t.Errorf("Total() = %v, want %v", cs.Total(), want)
	}

	perfect := ComponentScores{Foundational: 100, TimeOnTask: 100, DigitalPractice: 100, TransitionExposure: 100, EnvironmentHealth: 100}
	if !almostEqual(perfect.Total(), 100) {
		t.Errorf("Total() = %v, want 100", perfect.Total())
	}
}
