package enums

import "fmt"

// AcquisitionType maps to the acquisition_type_enum enum in Postgres. It
// records how an inventory entry came to be owned.
type AcquisitionType string

const (
	AcquisitionTypePurchase AcquisitionType = "purchase"
	AcquisitionTypeReward   AcquisitionType = "reward"
	AcquisitionTypeGift     AcquisitionType = "gift"
)

var validAcquisitionTypes = []AcquisitionType{
	AcquisitionTypePurchase,
	AcquisitionTypeReward,
	AcquisitionTypeGift,
}

// IsValid reports whether the value matches the canonical acquisition type enum.
func (t AcquisitionType) IsValid() bool {
	for _, candidate := range validAcquisitionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAcquisitionType converts raw input into AcquisitionType.
func ParseAcquisitionType(value string) (AcquisitionType, error) {
	for _, candidate := range validAcquisitionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid acquisition type %q", value)
}
