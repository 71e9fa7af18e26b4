package ingestion

import "whatsapp-relay/internal/whitelist"

// Decision is the outcome of authorizing one message. Message is only
// meaningful when Accepted is true.
type Decision struct {
	Accepted bool
	Message  CanonicalMessage
	Reason   RejectReason
}

type Filter struct {
	registry *whitelist.Registry
}

func NewFilter(registry *whitelist.Registry) *Filter {
	return &Filter{registry: registry}
}

// Authorize accepts messages from whitelisted numbers and stamps them with
// the registered display name; the sender's push name is kept as is.
func (f *Filter) Authorize(msg CanonicalMessage) Decision {
	participant, ok := f.registry.Lookup(msg.ParticipantMobileNumber)
	if !ok {
		return Decision{Reason: ReasonNotWhitelisted}
	}
	msg.ParticipantName = participant.DisplayName
	return Decision{Accepted: true, Message: msg}
}
