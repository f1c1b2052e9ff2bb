package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// LedgerEntry records an immutable point movement against a points account.
// Points is signed: positive for earnings, negative for spends.
type LedgerEntry struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID         `gorm:"column:account_id;type:uuid;not null;index"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	Points       int               `gorm:"column:points;not null"`
	Source       enums.PointSource `gorm:"column:source;type:point_source_enum;not null"`
	Description  string            `gorm:"column:description;not null"`
	ReferenceID  *uuid.UUID        `gorm:"column:reference_id;type:uuid"`
	BalanceAfter int               `gorm:"column:balance_after;not null"`
	Metadata     json.RawMessage   `gorm:"column:metadata;type:jsonb"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
