package school

import "testing"

func TestBand_Rank(t *testing.T) {
	tests := []struct {
		band Band
		want int
	}{
		{BandR0, 0}, {BandR1, 1}, {BandR2, 2}, {BandR3, 3},
		{BandA0, 0}, {BandA1, 1}, {BandA2, 2},
		{Band(""), -1}, {Band("X9"), -1},
	}
	for _, tt := range tests {
		if got := tt.band.Rank(); got != tt.want {
			t.Errorf("Band(%q).Rank() = %d, want %d", tt.band, got, tt.want)
		}
	}
}

func TestBand_AtLeast(t *testing.T) {
	tests := []struct {
		band Band
		min  Band
		want bool
	}{
		{BandR2, BandR2, true},
		{BandR3, BandR2, true},
		{BandR1, BandR2, false},
		{BandA2, BandA2, true},
		{BandA1, BandA2, false},
		{Band(""), BandR0, false},
		{Band("X9"), BandR0, false},
	}
	for _, tt := range tests {
		if got := tt.band.AtLeast(tt.min); got != tt.want {
			t.Errorf("Band(%q).AtLeast(%q) = %v, want %v", tt.band, tt.min, got, tt.want)
		}
	}
}

func TestSnapshot_counts(t *testing.T) {
	snap := Snapshot{Classes: []ClassSnapshot{
		{Students: []Student{{}, {}}, Sessions: []Session{{}}},
		{Students: []Student{{}}, Sessions: []Session{{}, {}, {}}},
		{},
	}}

	if got := snap.ActiveStudents(); got != 3 {
		t.Errorf("ActiveStudents() = %d, want 3", got)
	}
	if got := snap.TotalSessions(); got != 4 {
		t.Errorf("TotalSessions() = %d, want 4", got)
	}
}
