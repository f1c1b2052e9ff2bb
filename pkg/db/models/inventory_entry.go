package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// InventoryEntry is an item owned by a member's account. Ownership is unique
// per (account, item) for non-stackable categories; power-ups and badge
// boosts may accumulate multiple active entries.
type InventoryEntry struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID       uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index:idx_inventory_account"`
	ItemID          uuid.UUID             `gorm:"column:item_id;type:uuid;not null"`
	ItemCategory    enums.ItemCategory    `gorm:"column:item_category;type:item_category_enum;not null"`
	AcquisitionType enums.AcquisitionType `gorm:"column:acquisition_type;type:acquisition_type_enum;not null"`
	TransactionID   *uuid.UUID            `gorm:"column:transaction_id;type:uuid"`
	IsActive        bool                  `gorm:"column:is_active;not null;default:true"`
	EquippedAt      *time.Time            `gorm:"column:equipped_at"`
	ExpiresAt       *time.Time            `gorm:"column:expires_at"`
	AcquiredAt      time.Time             `gorm:"column:acquired_at;autoCreateTime"`

	Item *StoreItem `gorm:"foreignKey:ItemID"`
}
