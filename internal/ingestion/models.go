package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DeliveryModeNotify marks a batch of live notifications. Every other type
// (history sync "append" included) is a replay and is not relayed.
const (
	DeliveryModeNotify = "notify"
	DeliveryModeAppend = "append"
)

// NotificationBatch is one messages.upsert delivery from the session process.
type NotificationBatch struct {
	Type     string            `json:"type"`
	Messages []RawInboundEvent `json:"messages"`

	// BatchID is assigned at the ingress and only used for log correlation.
	BatchID string `json:"-"`
}

// UnmarshalJSON decodes every event on its own so that one badly typed event
// is reported as malformed instead of failing the whole batch.
func (b *NotificationBatch) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type     string            `json:"type"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	b.Type = wire.Type
	b.Messages = make([]RawInboundEvent, len(wire.Messages))
	for i, raw := range wire.Messages {
		if err := json.Unmarshal(raw, &b.Messages[i]); err != nil {
			b.Messages[i] = RawInboundEvent{decodeErr: &DecodeError{Index: i, Err: err}}
		}
	}
	return nil
}

// IsLive reports whether the batch carries live notifications.
func (b NotificationBatch) IsLive() bool {
	return b.Type == DeliveryModeNotify
}

// RawInboundEvent mirrors the transport JSON. Pointer fields distinguish an
// absent field from its zero value.
type RawInboundEvent struct {
	Key              MessageKey      `json:"key"`
	PushName         *string         `json:"pushName,omitempty"`
	Message          *MessageContent `json:"message,omitempty"`
	MessageTimestamp Timestamp       `json:"messageTimestamp"`

	decodeErr error
}

// Timestamp is seconds since the epoch. The session process sends it either
// as a number, a numeric string or a protobuf Long {"low","high","unsigned"}.
type Timestamp int64

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '{':
		var long struct {
			Low  int32 `json:"low"`
			High int32 `json:"high"`
		}
		if err := json.Unmarshal(data, &long); err != nil {
			return fmt.Errorf("invalid long timestamp: %w", err)
		}
		*t = Timestamp(int64(long.High)<<32 | int64(uint32(long.Low)))
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*t = Timestamp(v)
		return nil
	default:
		var v int64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
		*t = Timestamp(v)
		return nil
	}
}

// Time returns the timestamp in UTC with second precision.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

type MessageKey struct {
	RemoteJid *string `json:"remoteJid,omitempty"`
	FromMe    *bool   `json:"fromMe,omitempty"`
	ID        *string `json:"id,omitempty"`
}

type MessageContent struct {
	Conversation        *string              `json:"conversation,omitempty"`
	ExtendedTextMessage *ExtendedTextMessage `json:"extendedTextMessage,omitempty"`
}

type ExtendedTextMessage struct {
	Text *string `json:"text,omitempty"`
}

// RemoteJid returns the remote identifier or "" when absent.
func (e RawInboundEvent) RemoteJid() string {
	return deref(e.Key.RemoteJid)
}

// MessageID returns the transport message id or "" when absent.
func (e RawInboundEvent) MessageID() string {
	return deref(e.Key.ID)
}

func (e RawInboundEvent) replyText() string {
	if e.Message == nil || e.Message.ExtendedTextMessage == nil {
		return ""
	}
	return deref(e.Message.ExtendedTextMessage.Text)
}

func (e RawInboundEvent) plainText() string {
	if e.Message == nil {
		return ""
	}
	return deref(e.Message.Conversation)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CanonicalMessage is the record published downstream. ParticipantName is
// empty until the authorization filter fills it from the whitelist.
type CanonicalMessage struct {
	ParticipantMobileNumber string    `json:"participantMobileNumber"`
	ParticipantName         string    `json:"participantName"`
	SenderPushName          string    `json:"senderPushName"`
	FromMe                  bool      `json:"fromMe"`
	Content                 string    `json:"content"`
	SentAt                  time.Time `json:"sentAt"`
}

// Report summarizes one batch. Duplicates are events dropped by the dedup
// guard; Failed counts publish errors and recovered panics.
type Report struct {
	BatchID    string `json:"batch_id,omitempty"`
	Mode       string `json:"mode"`
	Discarded  bool   `json:"discarded"`
	Total      int    `json:"total"`
	Published  int    `json:"published"`
	Rejected   int    `json:"rejected"`
	Malformed  int    `json:"malformed"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
}
