package classification

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStreakFrom(t *testing.T) {
	now := day("2026-03-10").Add(15 * time.Hour)

	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{"empty", nil, 0},
		{"single today", []time.Time{day("2026-03-10")}, 1},
		{"single yesterday still counts", []time.Time{day("2026-03-09")}, 1},
		{"broken two days ago", []time.Time{day("2026-03-08")}, 0},
		{"run of four", []time.Time{day("2026-03-10"), day("2026-03-09"), day("2026-03-08"), day("2026-03-07")}, 4},
		{"gap stops the run", []time.Time{day("2026-03-10"), day("2026-03-09"), day("2026-03-07"), day("2026-03-06")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streakFrom(tt.days, now); got != tt.want {
				t.Errorf("streakFrom() = %d, want %d", got, tt.want)
			}
		})
	}
}
