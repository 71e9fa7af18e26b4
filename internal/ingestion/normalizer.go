package ingestion

const (
	jidPrefixLength   = 12
	mobileNumberChars = 10
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize turns a raw event into a CanonicalMessage. It has no side
// effects, so the same event always yields the same result.
func (n *Normalizer) Normalize(event RawInboundEvent) (CanonicalMessage, error) {
	if event.decodeErr != nil {
		return CanonicalMessage{}, event.decodeErr
	}

	jid := event.RemoteJid()
	if jid == "" {
		return CanonicalMessage{}, &MissingFieldError{Field: "key.remoteJid"}
	}
	if event.PushName == nil {
		return CanonicalMessage{}, &MissingFieldError{Field: "pushName"}
	}
	if event.Key.FromMe == nil {
		return CanonicalMessage{}, &MissingFieldError{Field: "key.fromMe"}
	}

	content := event.replyText()
	if content == "" {
		content = event.plainText()
	}
	if content == "" {
		return CanonicalMessage{}, ErrNoContent
	}

	return CanonicalMessage{
		ParticipantMobileNumber: ExtractMobileNumber(jid),
		SenderPushName:          *event.PushName,
		FromMe:                  *event.Key.FromMe,
		Content:                 content,
		SentAt:                  event.MessageTimestamp.Time(),
	}, nil
}

// ExtractMobileNumber keeps the first 12 bytes of the identifier, then the
// last 10 of those. No validation is done: "6512345678@s.whatsapp.net"
// yields "12345678@s". Identifiers with a country code of another length
// produce numbers that will not match the whitelist.
func ExtractMobileNumber(remoteJid string) string {
	s := remoteJid
	if len(s) > jidPrefixLength {
		s = s[:jidPrefixLength]
	}
	if len(s) > mobileNumberChars {
		s = s[len(s)-mobileNumberChars:]
	}
	return s
}
