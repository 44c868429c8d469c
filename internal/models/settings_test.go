package models

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		value   string
		wantH   int
		wantM   int
		wantErr bool
	}{
		{"valid", "19:00", 19, 0, false},
		{"valid midnight", "00:00", 0, 0, false},
		{"valid end of day", "23:59", 23, 59, false},
		{"missing colon", "1900", 0, 0, true},
		{"hour too large", "24:00", 0, 0, true},
		{"minute too large", "19:60", 0, 0, true},
		{"negative hour", "-1:00", 0, 0, true},
		{"not a number", "ab:cd", 0, 0, true},
		{"empty", "", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, err := ParseClock(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && (h != tt.wantH || m != tt.wantM) {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.value, h, m, tt.wantH, tt.wantM)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()
	if got := FormatClock(9, 5); got != "09:05" {
		t.Errorf("FormatClock(9, 5) = %q, want 09:05", got)
	}
	if got := FormatClock(19, 30); got != "19:30" {
		t.Errorf("FormatClock(19, 30) = %q, want 19:30", got)
	}
}

func TestSettingsLocation(t *testing.T) {
	t.Parallel()
	var nilSettings *ReviewSettings
	if got := nilSettings.Location(); got != time.UTC {
		t.Errorf("nil settings Location() = %v, want UTC", got)
	}
	if got := (&ReviewSettings{}).Location(); got != time.UTC {
		t.Errorf("empty timezone Location() = %v, want UTC", got)
	}
	if got := (&ReviewSettings{Timezone: "not-a-zone"}).Location(); got != time.UTC {
		t.Errorf("invalid timezone Location() = %v, want UTC", got)
	}
	loc := (&ReviewSettings{Timezone: "Europe/Berlin"}).Location()
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, want Europe/Berlin", loc)
	}
}
