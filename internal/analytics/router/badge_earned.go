package router

import (
	"context"
	"fmt"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type badgeEarnedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newBadgeEarnedHandler(writer Writer, logg *logger.Logger) Handler {
	return &badgeEarnedHandler{writer: writer, logg: logg}
}

func (h *badgeEarnedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.BadgeEarnedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for badge_earned")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"account_id": event.AccountID,
		"badge_id":   event.BadgeID,
	})

	row, err := baseRow(envelope)
	if err != nil {
		h.logg.Error(logCtx, "failed to build engagement row", err)
		return err
	}
	row.AccountID = uuidPtr(event.AccountID)
	row.UserID = uuidPtr(event.UserID)
	row.BadgeID = uuidPtr(event.BadgeID)
	row.BadgeName = stringPtr(event.BadgeName)
	row.Points = int64Ptr(event.PointsValue)

	if err := h.writer.InsertEngagement(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert engagement row", err)
		return err
	}

	h.logg.Info(logCtx, "badge_earned handler inserted engagement row")
	return nil
}
