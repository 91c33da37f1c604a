package entities

import (
	"testing"
	"time"
)

func TestDaysSincePlanting(t *testing.T) {
	planted := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	s := PlantingSession{PlantingDate: planted}

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"planting instant", planted, 0},
		{"later the same day", planted.Add(6 * time.Hour), 0},
		{"forty days in", planted.AddDate(0, 0, 40), 40},
		{"ten days early", planted.AddDate(0, 0, -10), -10},
		{"twelve hours early", planted.Add(-12 * time.Hour), -1},
		{"one second early", planted.Add(-time.Second), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.DaysSincePlanting(tt.asOf); got != tt.want {
				t.Errorf("DaysSincePlanting(%v) = %d, want %d", tt.asOf, got, tt.want)
			}
		})
	}
}
