package validation

import "testing"

func TestValidateTaskStatus(t *testing.T) {
	t.Parallel()

	valid := []string{"pending", "in_progress", "blocked", "completed", "cancelled"}
	for _, s := range valid {
		if err := ValidateTaskStatus(s); err != nil {
			t.Errorf("Expected %q to be valid, got %v", s, err)
		}
	}

	invalid := []string{"", "done", "PENDING", "in-progress"}
	for _, s := range invalid {
		if err := ValidateTaskStatus(s); err == nil {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestValidateTaskPriority(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"low", "medium", "high", "critical"} {
		if err := ValidateTaskPriority(s); err != nil {
			t.Errorf("Expected %q to be valid, got %v", s, err)
		}
	}
	if err := ValidateTaskPriority("urgent"); err == nil {
		t.Error("Expected 'urgent' to be invalid")
	}
}

func TestValidateClockTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		ok    bool
	}{
		{"19:00", true},
		{"00:00", true},
		{"23:59", true},
		{"24:00", false},
		{"19:60", false},
		{"7pm", false},
		{"19", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateClockTime(tt.value)
		if tt.ok && err != nil {
			t.Errorf("Expected %q to be valid, got %v", tt.value, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("Expected %q to be invalid", tt.value)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  review notes\x00  "); got != "review notes" {
		t.Errorf("Expected control characters and whitespace stripped, got %q", got)
	}
	if got := SanitizeText("line1\nline2"); got != "line1\nline2" {
		t.Errorf("Expected newlines preserved, got %q", got)
	}
}
