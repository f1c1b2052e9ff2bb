package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Avatar holds a member's avatar customization state. EquippedItems and
// PowerUps are jsonb blobs keyed by item slot and effect type respectively.
type Avatar struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     uuid.UUID       `gorm:"column:account_id;type:uuid;not null;uniqueIndex"`
	BaseStyle     string          `gorm:"column:base_style;not null;default:'default'"`
	EquippedItems json.RawMessage `gorm:"column:equipped_items;type:jsonb"`
	PowerUps      json.RawMessage `gorm:"column:power_ups;type:jsonb"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
