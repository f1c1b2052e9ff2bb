package enums

import "fmt"

// AwardAction identifies the activity kinds that earn points through the
// award pipeline.
type AwardAction string

const (
	AwardActionAttendance     AwardAction = "attendance"
	AwardActionActivity       AwardAction = "activity_completion"
	AwardActionFeedback       AwardAction = "feedback"
	AwardActionHighEngagement AwardAction = "high_engagement"
)

var validAwardActions = []AwardAction{
	AwardActionAttendance,
	AwardActionActivity,
	AwardActionFeedback,
	AwardActionHighEngagement,
}

// IsValid reports whether the value matches a known award action.
func (a AwardAction) IsValid() bool {
	for _, candidate := range validAwardActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAwardAction converts raw input into AwardAction.
func ParseAwardAction(value string) (AwardAction, error) {
	for _, candidate := range validAwardActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid award action %q", value)
}

// PointSource returns the ledger source recorded for entries produced by
// this action.
func (a AwardAction) PointSource() PointSource {
	switch a {
	case AwardActionAttendance:
		return PointSourceEventAttendance
	case AwardActionActivity:
		return PointSourceActivity
	case AwardActionFeedback:
		return PointSourceFeedback
	case AwardActionHighEngagement:
		return PointSourceHighEngagement
	default:
		return PointSourceManualAward
	}
}
