package ingestion

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when an event carries neither reply text nor
// plain text.
var ErrNoContent = errors.New("message has no text content")

// MissingFieldError is returned when a required event field is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// DecodeError marks an event of a batch that could not be decoded.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("event %d could not be decoded: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PublishError carries the message that could not be delivered together
// with the encoded payload, for logging.
type PublishError struct {
	Message CanonicalMessage
	Payload []byte
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish message for %s: %v", e.Message.ParticipantMobileNumber, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a normalization failure.
func IsMalformed(err error) bool {
	var missing *MissingFieldError
	var decode *DecodeError
	return errors.As(err, &missing) || errors.As(err, &decode) || errors.Is(err, ErrNoContent)
}

type RejectReason string

const (
	ReasonNone           RejectReason = ""
	ReasonNotWhitelisted RejectReason = "not_whitelisted"
)
