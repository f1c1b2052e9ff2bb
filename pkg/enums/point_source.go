package enums

import "fmt"

// PointSource maps to the point_source_enum enum in Postgres. It tags every
// ledger entry with the activity that produced it.
type PointSource string

const (
	PointSourceStorePurchase   PointSource = "store_purchase"
	PointSourceRecognition     PointSource = "recognition"
	PointSourceEventAttendance PointSource = "event_attendance"
	PointSourceActivity        PointSource = "activity_completion"
	PointSourceFeedback        PointSource = "feedback"
	PointSourceHighEngagement  PointSource = "high_engagement"
	PointSourceBadgeAward      PointSource = "badge_award"
	PointSourceManualAward     PointSource = "manual_award"
)

var validPointSources = []PointSource{
	PointSourceStorePurchase,
	PointSourceRecognition,
	PointSourceEventAttendance,
	PointSourceActivity,
	PointSourceFeedback,
	PointSourceHighEngagement,
	PointSourceBadgeAward,
	PointSourceManualAward,
}

// IsValid reports whether the value matches the canonical point source enum.
func (s PointSource) IsValid() bool {
	for _, candidate := range validPointSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePointSource converts raw input into PointSource.
func ParsePointSource(value string) (PointSource, error) {
	for _, candidate := range validPointSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point source %q", value)
}
