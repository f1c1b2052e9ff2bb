package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// StoreTransaction is the audit record for a settled store purchase.
type StoreTransaction struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID               `gorm:"column:account_id;type:uuid;not null;index"`
	UserID       uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	ItemID       uuid.UUID               `gorm:"column:item_id;type:uuid;not null"`
	ItemName     string                  `gorm:"column:item_name;not null"`
	Quantity     int                     `gorm:"column:quantity;not null;default:1"`
	PointsSpent  int                     `gorm:"column:points_spent;not null"`
	BalanceAfter int                     `gorm:"column:balance_after;not null"`
	Status       enums.TransactionStatus `gorm:"column:status;type:transaction_status_enum;not null;default:'completed'"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`

	Item *StoreItem `gorm:"foreignKey:ItemID"`
}
