// Package tail decodes records from the messages topic for inspection.
package tail

import (
	"context"
	"encoding/json"
	"fmt"

	"whatsapp-relay/internal/broker"
	"whatsapp-relay/internal/ingestion"
	"whatsapp-relay/internal/logger"
)

// Decode parses a record value published by the relay.
func Decode(rec broker.Record) (ingestion.CanonicalMessage, error) {
	var msg ingestion.CanonicalMessage
	if err := json.Unmarshal(rec.Value, &msg); err != nil {
		return ingestion.CanonicalMessage{}, fmt.Errorf("failed to decode record at offset %d: %w", rec.Offset, err)
	}
	if string(rec.Key) != msg.ParticipantMobileNumber {
		return msg, fmt.Errorf("record key %q does not match participant %q", rec.Key, msg.ParticipantMobileNumber)
	}
	return msg, nil
}

// NewHandler logs every received message. Undecodable records are returned
// as errors so the consumer logs them and moves on.
func NewHandler(log logger.Logger) broker.HandlerFunc {
	return func(ctx context.Context, rec broker.Record) error {
		msg, err := Decode(rec)
		if err != nil {
			return err
		}

		log.InfowCtx(ctx, "Received message",
			"participant_mobile_number", msg.ParticipantMobileNumber,
			"participant_name", msg.ParticipantName,
			"sender_push_name", msg.SenderPushName,
			"from_me", msg.FromMe,
			"content", msg.Content,
			"sent_at", msg.SentAt,
			"partition", rec.Partition,
			"offset", rec.Offset,
		)
		return nil
	}
}
