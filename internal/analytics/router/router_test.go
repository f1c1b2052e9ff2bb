package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/pkg/enums"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type captureWriter struct {
	rows []types.EngagementEventRow
	err  error
}

func (w *captureWriter) InsertEngagement(ctx context.Context, row types.EngagementEventRow) error {
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, row)
	return nil
}

func newTestRouter(t *testing.T, writer Writer) *Router {
	t.Helper()
	r, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "router-test"}), nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func envelopeFor(t *testing.T, eventType enums.OutboxEventType, payload any) types.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateType: enums.AggregatePointsAccount,
		AggregateID:   uuid.NewString(),
		OccurredAt:    time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Payload:       raw,
	}
}

func TestRouterPurchaseCompleted(t *testing.T) {
	writer := &captureWriter{}
	router := newTestRouter(t, writer)

	event := payloads.PurchaseCompletedEvent{
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		UserID:        uuid.New(),
		ItemID:        uuid.New(),
		ItemName:      "Golden Frame",
		PointsSpent:   150,
		BalanceAfter:  350,
	}
	envelope := envelopeFor(t, enums.EventPurchaseCompleted, event)

	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.EventType != string(enums.EventPurchaseCompleted) {
		t.Fatalf("row event type %q", row.EventType)
	}
	if row.ItemName == nil || *row.ItemName != "Golden Frame" {
		t.Fatalf("row item name %v", row.ItemName)
	}
	if row.PointsSpent == nil || *row.PointsSpent != 150 {
		t.Fatalf("row points spent %v", row.PointsSpent)
	}
	if !row.Payload.Valid {
		t.Fatal("row payload should carry the raw event")
	}
}

func TestRouterPointsAwarded(t *testing.T) {
	writer := &captureWriter{}
	router := newTestRouter(t, writer)

	event := payloads.PointsAwardedEvent{
		AccountID:    uuid.New(),
		UserID:       uuid.New(),
		Action:       enums.AwardActionAttendance,
		Points:       10,
		BalanceAfter: 110,
		TotalPoints:  110,
	}
	envelope := envelopeFor(t, enums.EventPointsAwarded, event)

	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	row := writer.rows[0]
	if row.Action == nil || *row.Action != "attendance" {
		t.Fatalf("row action %v", row.Action)
	}
	if row.TotalPoints == nil || *row.TotalPoints != 110 {
		t.Fatalf("row total points %v", row.TotalPoints)
	}
}

func TestRouterLevelUp(t *testing.T) {
	writer := &captureWriter{}
	router := newTestRouter(t, writer)

	event := payloads.LevelUpEvent{
		AccountID:   uuid.New(),
		UserID:      uuid.New(),
		OldLevel:    1,
		NewLevel:    2,
		TotalPoints: 120,
	}
	envelope := envelopeFor(t, enums.EventLevelUp, event)

	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	row := writer.rows[0]
	if row.OldLevel == nil || *row.OldLevel != 1 || row.NewLevel == nil || *row.NewLevel != 2 {
		t.Fatalf("row levels old=%v new=%v", row.OldLevel, row.NewLevel)
	}
}

func TestRouterUnsupportedEvent(t *testing.T) {
	router := newTestRouter(t, &captureWriter{})

	envelope := envelopeFor(t, enums.EventNotificationRequested, map[string]any{"user_id": uuid.NewString()})
	err := router.Handle(context.Background(), envelope)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
}

func TestRouterMalformedPayload(t *testing.T) {
	router := newTestRouter(t, &captureWriter{})

	envelope := types.Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.EventBadgeEarned,
		Payload:   json.RawMessage(`{"badge_id":`),
	}
	if err := router.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected decode error")
	}
}
