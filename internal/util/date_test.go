package util

import (
	"testing"
	"time"
)

func TestValidateNotFutureDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, loc)
	todayDay := StartOfDay(now, loc)

	tests := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{
			name:    "yesterday should be allowed",
			date:    todayDay.AddDate(0, 0, -1),
			wantErr: false,
		},
		{
			name:    "today should be allowed",
			date:    todayDay.Add(23 * time.Hour),
			wantErr: false,
		},
		{
			name:    "tomorrow should be rejected",
			date:    todayDay.AddDate(0, 0, 1),
			wantErr: true,
		},
		{
			name:    "far future should be rejected",
			date:    todayDay.AddDate(1, 0, 0),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotFutureDate(tt.date, now, loc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNotFutureDate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Skip("tzdata not available")
	}

	tests := []struct {
		name    string
		dateStr string
		wantErr bool
	}{
		{name: "valid date string", dateStr: "2026-01-23", wantErr: false},
		{name: "invalid date string", dateStr: "invalid", wantErr: true},
		{name: "empty string", dateStr: "", wantErr: true},
		{name: "day out of range", dateStr: "2026-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.dateStr, lima)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	parsed, err := ParseDate("2026-01-23", lima)
	if err != nil {
		t.Fatalf("ParseDate() failed: %v", err)
	}
	if parsed.Location() != lima {
		t.Errorf("ParseDate() location = %v, want %v", parsed.Location(), lima)
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 || parsed.Second() != 0 {
		t.Errorf("ParseDate() should return start of day (00:00:00)")
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same day", base, base.Add(20 * time.Hour), 0},
		{"one day", base.AddDate(0, 0, -1), base, 1},
		{"across month", time.Date(2026, 2, 27, 23, 0, 0, 0, time.UTC), base, 11},
		{"backwards", base, base.AddDate(0, 0, -3), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateOnlyKeepsCalendarDate(t *testing.T) {
	stored := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC-5", -5*3600)

	got := DateOnly(stored, loc)
	if got.Year() != 2026 || got.Month() != 5 || got.Day() != 4 {
		t.Errorf("DateOnly() = %v, want 2026-05-04", got)
	}
	if got.Location() != loc {
		t.Errorf("DateOnly() location = %v, want %v", got.Location(), loc)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on the 11th is still the 10th in UTC-5
	instant := time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC)

	midnight := StartOfDay(instant, loc)
	if midnight.Day() != 10 || midnight.Hour() != 0 {
		t.Errorf("StartOfDay() = %v, want 2026-03-10 00:00 UTC-5", midnight)
	}
}
