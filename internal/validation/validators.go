package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums and clock times
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_priority", validateTaskPriority); err != nil {
		panic(fmt.Sprintf("failed to register task_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("clock_time", validateClockTime); err != nil {
		panic(fmt.Sprintf("failed to register clock_time validator: %v", err))
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

// validateTaskPriority validates that a string is a valid TaskPriority enum value
func validateTaskPriority(fl validator.FieldLevel) bool {
	return ValidateTaskPriority(fl.Field().String()) == nil
}

// validateClockTime validates that a string is a valid "HH:MM" clock time
func validateClockTime(fl validator.FieldLevel) bool {
	return ValidateClockTime(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusBlocked,
		models.TaskStatusCompleted, models.TaskStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'in_progress', 'blocked', 'completed', or 'cancelled')", value)
	}
}

// ValidateTaskPriority validates a TaskPriority string value
func ValidateTaskPriority(value string) error {
	switch models.TaskPriority(value) {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh, models.TaskPriorityCritical:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', 'high', or 'critical')", value)
	}
}

// ValidateProjectStatus validates a ProjectStatus string value
func ValidateProjectStatus(value string) error {
	switch models.ProjectStatus(value) {
	case models.ProjectStatusPlanned, models.ProjectStatusInProgress, models.ProjectStatusOnHold,
		models.ProjectStatusCompleted, models.ProjectStatusArchived:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'planned', 'in_progress', 'on_hold', 'completed', or 'archived')", value)
	}
}

// ValidateClockTime validates an "HH:MM" 24-hour clock string
func ValidateClockTime(value string) error {
	if _, _, err := models.ParseClock(value); err != nil {
		return fmt.Errorf("invalid clock time: %s (must be HH:MM, 24-hour)", value)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name
func ValidateTimezone(value string) error {
	if value == "" {
		return nil
	}
	s := &models.ReviewSettings{Timezone: value}
	if s.Location().String() != value {
		return fmt.Errorf("invalid timezone: %s", value)
	}
	return nil
}
