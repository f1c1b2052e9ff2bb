package router

import (
	"context"
	"fmt"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type levelUpHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newLevelUpHandler(writer Writer, logg *logger.Logger) Handler {
	return &levelUpHandler{writer: writer, logg: logg}
}

func (h *levelUpHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.LevelUpEvent)
	if !ok {
		return fmt.Errorf("invalid payload for level_up")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"account_id": event.AccountID,
		"old_level":  event.OldLevel,
		"new_level":  event.NewLevel,
	})

	row, err := baseRow(envelope)
	if err != nil {
		h.logg.Error(logCtx, "failed to build engagement row", err)
		return err
	}
	row.AccountID = uuidPtr(event.AccountID)
	row.UserID = uuidPtr(event.UserID)
	row.OldLevel = int64Ptr(event.OldLevel)
	row.NewLevel = int64Ptr(event.NewLevel)
	row.TotalPoints = int64Ptr(event.TotalPoints)

	if err := h.writer.InsertEngagement(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert engagement row", err)
		return err
	}

	h.logg.Info(logCtx, "level_up handler inserted engagement row")
	return nil
}
