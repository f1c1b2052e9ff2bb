package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// StoreItem is a catalog entry purchasable with points. Stock is nil for
// unlimited items; non-stackable categories reject repeat purchases.
type StoreItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Description   string              `gorm:"column:description;not null"`
	Category      enums.ItemCategory  `gorm:"column:category;type:item_category_enum;not null"`
	Cost          int                 `gorm:"column:cost;not null"`
	PremiumPrice  decimal.NullDecimal `gorm:"column:premium_price;type:numeric(10,2)"`
	Stock         *int                `gorm:"column:stock"`
	IsAvailable   bool                `gorm:"column:is_available;not null;default:true"`
	PurchaseCount int                 `gorm:"column:purchase_count;not null;default:0"`
	EffectType    *enums.EffectType   `gorm:"column:effect_type;type:effect_type_enum"`
	Effect        json.RawMessage     `gorm:"column:effect;type:jsonb"`
	ImageURL      *string             `gorm:"column:image_url"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPremium reports whether the item carries a real-money display price.
func (i StoreItem) IsPremium() bool {
	return i.PremiumPrice.Valid
}
