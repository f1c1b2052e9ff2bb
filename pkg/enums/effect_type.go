package enums

import "fmt"

// EffectType maps to the effect_type_enum enum in Postgres. Power-up items
// carry one of these effects in their metadata.
type EffectType string

const (
	EffectTypePointsMultiplier EffectType = "points_multiplier"
	EffectTypeStreakShield     EffectType = "streak_shield"
	EffectTypeBadgeBoost       EffectType = "badge_boost"
)

var validEffectTypes = []EffectType{
	EffectTypePointsMultiplier,
	EffectTypeStreakShield,
	EffectTypeBadgeBoost,
}

// IsValid reports whether the value matches the canonical effect type enum.
func (t EffectType) IsValid() bool {
	for _, candidate := range validEffectTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEffectType converts raw input into EffectType.
func ParseEffectType(value string) (EffectType, error) {
	for _, candidate := range validEffectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid effect type %q", value)
}
