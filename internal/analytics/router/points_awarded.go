package router

import (
	"context"
	"fmt"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type pointsAwardedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newPointsAwardedHandler(writer Writer, logg *logger.Logger) Handler {
	return &pointsAwardedHandler{writer: writer, logg: logg}
}

func (h *pointsAwardedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.PointsAwardedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for points_awarded")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"account_id": event.AccountID,
		"action":     event.Action,
		"points":     event.Points,
	})

	row, err := baseRow(envelope)
	if err != nil {
		h.logg.Error(logCtx, "failed to build engagement row", err)
		return err
	}
	row.AccountID = uuidPtr(event.AccountID)
	row.UserID = uuidPtr(event.UserID)
	row.Action = stringPtr(string(event.Action))
	row.Points = int64Ptr(event.Points)
	row.BalanceAfter = int64Ptr(event.BalanceAfter)
	row.TotalPoints = int64Ptr(event.TotalPoints)

	if err := h.writer.InsertEngagement(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert engagement row", err)
		return err
	}

	h.logg.Info(logCtx, "points_awarded handler inserted engagement row")
	return nil
}
