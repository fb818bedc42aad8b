// internal/common/validation/fields.go
package validation

import (
	"regexp"
	"strings"
)

var (
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateTimeOfDay validates "HH:MM" 24-hour clock values used in
// availability slots.
func ValidateTimeOfDay(value string) bool {
	return timeOfDayPattern.MatchString(value)
}

// ValidateTimeRange reports whether both ends are valid clock values
// and the slot ends after it starts. "HH:MM" strings order lexically.
func ValidateTimeRange(from, to string) bool {
	return ValidateTimeOfDay(from) && ValidateTimeOfDay(to) && from < to
}

// ValidateWeekday validates lowercase weekday names used in
// availability slots. Mixed case is accepted.
func ValidateWeekday(day string) bool {
	switch strings.ToLower(day) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

// ValidateEmail validates email format.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
