package eventutil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// UnmarshalPayload decodes a message payload into T and returns the message's
// correlation ID alongside it.
func UnmarshalPayload[T any](msg *message.Message, logger *slog.Logger) (string, T, error) {
	var payload T
	correlationID := msg.Metadata.Get(middleware.CorrelationIDMetadataKey)

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		logger.Error("Failed to unmarshal payload",
			slog.String("correlation_id", correlationID),
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return correlationID, payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return correlationID, payload, nil
}

type ctxKey struct{}

// CtxWithCorrelationID stores a correlation ID on the context so service
// code can stamp outgoing events without seeing the inbound message.
func CtxWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, correlationID)
}

// CorrelationIDFromCtx returns the stored correlation ID, or "" when none
// was set; NewMessage generates a fresh one in that case.
func CorrelationIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// NewMessage marshals a payload into a watermill message, carrying over the
// correlation ID so downstream handlers trace back to the originating event.
func NewMessage(correlationID string, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	return msg, nil
}
