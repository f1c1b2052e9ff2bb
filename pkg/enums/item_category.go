package enums

import "fmt"

// ItemCategory maps to the item_category_enum enum in Postgres.
type ItemCategory string

const (
	ItemCategoryAvatarHat     ItemCategory = "avatar_hat"
	ItemCategoryAvatarGlasses ItemCategory = "avatar_glasses"
	ItemCategoryAvatarOutfit  ItemCategory = "avatar_outfit"
	ItemCategoryPowerUp       ItemCategory = "power_up"
	ItemCategoryBadgeBoost    ItemCategory = "badge_boost"
	ItemCategoryCollectible   ItemCategory = "collectible"
)

var validItemCategories = []ItemCategory{
	ItemCategoryAvatarHat,
	ItemCategoryAvatarGlasses,
	ItemCategoryAvatarOutfit,
	ItemCategoryPowerUp,
	ItemCategoryBadgeBoost,
	ItemCategoryCollectible,
}

// IsValid reports whether the value matches the canonical item category enum.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsAvatarWearable reports whether items in this category attach to the
// member's avatar when acquired.
func (c ItemCategory) IsAvatarWearable() bool {
	switch c {
	case ItemCategoryAvatarHat, ItemCategoryAvatarGlasses, ItemCategoryAvatarOutfit:
		return true
	default:
		return false
	}
}

// Stackable reports whether a member may hold more than one inventory entry
// for the same item in this category.
func (c ItemCategory) Stackable() bool {
	switch c {
	case ItemCategoryPowerUp, ItemCategoryBadgeBoost:
		return true
	default:
		return false
	}
}

// ParseItemCategory converts raw input into ItemCategory.
func ParseItemCategory(value string) (ItemCategory, error) {
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
