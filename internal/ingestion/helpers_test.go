package ingestion

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"whatsapp-relay/internal/whitelist"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func textEvent(jid, pushName, text string) RawInboundEvent {
	return RawInboundEvent{
		Key:              MessageKey{RemoteJid: strPtr(jid), FromMe: boolPtr(false), ID: strPtr("id-" + text)},
		PushName:         strPtr(pushName),
		Message:          &MessageContent{Conversation: strPtr(text)},
		MessageTimestamp: 1700000000,
	}
}

func testRegistry(t *testing.T) *whitelist.Registry {
	t.Helper()
	reg, err := whitelist.NewRegistry([]whitelist.Participant{
		{MobileNumber: "9876543210", DisplayName: "Asha"},
		{MobileNumber: "9123456780", DisplayName: "Ravi"},
	})
	require.NoError(t, err)
	return reg
}

// spyPublisher records every publish call and fails for the configured
// contents.
type spyPublisher struct {
	mu        sync.Mutex
	published []CanonicalMessage
	calls     int
	failOn    map[string]error
}

func (s *spyPublisher) Publish(_ context.Context, msg CanonicalMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.failOn[msg.Content]; ok {
		return &PublishError{Message: msg, Payload: []byte(msg.Content), Err: err}
	}
	s.published = append(s.published, msg)
	return nil
}

func (s *spyPublisher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spyPublisher) Published() []CanonicalMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CanonicalMessage(nil), s.published...)
}
