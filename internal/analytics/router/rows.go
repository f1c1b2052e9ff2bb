package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/analytics/types"
	"github.com/engagehq/engage-backend/internal/analytics/writer"
)

// baseRow seeds a row with the envelope fields shared by every event type.
func baseRow(envelope types.Envelope) (types.EngagementEventRow, error) {
	payload, err := writer.EncodeJSON(envelope.Payload)
	if err != nil {
		return types.EngagementEventRow{}, fmt.Errorf("encode payload: %w", err)
	}
	occurredAt := envelope.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return types.EngagementEventRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: occurredAt,
		Payload:    payload,
	}, nil
}

func uuidPtr(id uuid.UUID) *string {
	if id == uuid.Nil {
		return nil
	}
	value := id.String()
	return &value
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int) *int64 {
	converted := int64(value)
	return &converted
}
