package enums

import "fmt"

// BadgeCriteria maps to the badge_criteria_enum enum in Postgres. Each badge
// names the account counter its threshold is checked against.
type BadgeCriteria string

const (
	BadgeCriteriaEventsAttended      BadgeCriteria = "events_attended"
	BadgeCriteriaActivitiesCompleted BadgeCriteria = "activities_completed"
	BadgeCriteriaFeedbackSubmitted   BadgeCriteria = "feedback_submitted"
	BadgeCriteriaPointsTotal         BadgeCriteria = "points_total"
	BadgeCriteriaStreakDays          BadgeCriteria = "streak_days"
)

var validBadgeCriteria = []BadgeCriteria{
	BadgeCriteriaEventsAttended,
	BadgeCriteriaActivitiesCompleted,
	BadgeCriteriaFeedbackSubmitted,
	BadgeCriteriaPointsTotal,
	BadgeCriteriaStreakDays,
}

// IsValid reports whether the value matches the canonical badge criteria enum.
func (c BadgeCriteria) IsValid() bool {
	for _, candidate := range validBadgeCriteria {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseBadgeCriteria converts raw input into BadgeCriteria.
func ParseBadgeCriteria(value string) (BadgeCriteria, error) {
	for _, candidate := range validBadgeCriteria {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid badge criteria %q", value)
}
