package scrape

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hours", "3 hours ago", "01/01/2024"},
		{"days", "5 days ago", "27/12/2023"},
		{"weeks", "2 weeks ago", "18/12/2023"},
		{"months approximate 30 days", "1 month ago", "02/12/2023"},
		{"years approximate 365 days", "2 years ago", "01/01/2022"},
		{"italian days", "3 giorni fa", "29/12/2023"},
		{"italian weeks", "2 settimane fa", "18/12/2023"},
		{"italian single hour", "1 ora fa", "01/01/2024"},
		{"italian years", "2 anni fa", "01/01/2022"},
		{"empty", "", ""},
		{"no magnitude", "yesterday", "yesterday"},
		{"unknown unit", "3 moons ago", "3 moons ago"},
		{"streamed prefix digits", "Streamed 2 years ago", "Streamed 2 years ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.in, now, nil); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateCustomUnits(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	units := UnitTable{{"sol", 24 * time.Hour}}
	if got := NormalizeDate("4 sols ago", now, units); got != "06/06/2024" {
		t.Errorf("got %q, want 06/06/2024", got)
	}
	// Default vocabulary not present in a custom table passes through.
	if got := NormalizeDate("4 days ago", now, units); got != "4 days ago" {
		t.Errorf("got %q, want pass-through", got)
	}
}
