package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/enums"
)

// PurchaseInput describes one points purchase request.
type PurchaseInput struct {
	Identity accounts.Identity
	ItemID   uuid.UUID
	Quantity int
}

// EffectConfig is the effect metadata stored on power-up items.
type EffectConfig struct {
	DurationHours int              `json:"duration_hours"`
	Multiplier    float64          `json:"multiplier"`
	Type          enums.EffectType `json:"type"`
}

// ItemSummary is the catalog slice returned with a purchase result.
type ItemSummary struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Category enums.ItemCategory `json:"category"`
	Cost     int                `json:"cost"`
}

// PurchaseResult reports a settled purchase.
type PurchaseResult struct {
	TransactionID   uuid.UUID   `json:"transaction_id"`
	Item            ItemSummary `json:"item"`
	Quantity        int         `json:"quantity"`
	PointsSpent     int         `json:"points_spent"`
	RemainingPoints int         `json:"remaining_points"`
	ExpiresAt       *time.Time  `json:"expires_at,omitempty"`
}

// StockDetails explains a rejected purchase against a stock-tracked item.
type StockDetails struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
}
