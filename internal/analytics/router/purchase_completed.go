package router

import (
	"context"
	"fmt"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type purchaseCompletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newPurchaseCompletedHandler(writer Writer, logg *logger.Logger) Handler {
	return &purchaseCompletedHandler{writer: writer, logg: logg}
}

func (h *purchaseCompletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.PurchaseCompletedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for purchase_completed")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type":     envelope.EventType,
		"transaction_id": event.TransactionID,
		"item_id":        event.ItemID,
		"points_spent":   event.PointsSpent,
	})

	row, err := baseRow(envelope)
	if err != nil {
		h.logg.Error(logCtx, "failed to build engagement row", err)
		return err
	}
	row.AccountID = uuidPtr(event.AccountID)
	row.UserID = uuidPtr(event.UserID)
	row.TransactionID = uuidPtr(event.TransactionID)
	row.ItemID = uuidPtr(event.ItemID)
	row.ItemName = stringPtr(event.ItemName)
	row.PointsSpent = int64Ptr(event.PointsSpent)
	row.BalanceAfter = int64Ptr(event.BalanceAfter)

	if err := h.writer.InsertEngagement(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert engagement row", err)
		return err
	}

	h.logg.Info(logCtx, "purchase_completed handler inserted engagement row")
	return nil
}
