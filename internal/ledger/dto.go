package ledger

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
)

// DeltaInput describes one signed point movement. Negative amounts are
// debits and must leave the available balance non-negative.
type DeltaInput struct {
	Identity    accounts.Identity
	Amount      int
	Reason      string
	Source      enums.PointSource
	ReferenceID *uuid.UUID
	Metadata    json.RawMessage
}

// ShortfallDetails explains a rejected debit to the caller.
type ShortfallDetails struct {
	Required  int `json:"required"`
	Available int `json:"available"`
}

// HistoryPage is one cursor page of a member's ledger.
type HistoryPage struct {
	Entries    []models.LedgerEntry `json:"entries"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
