package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Authorize(t *testing.T) {
	f := NewFilter(testRegistry(t))
	sentAt := time.Unix(1700000000, 0).UTC()

	t.Run("whitelisted gets display name", func(t *testing.T) {
		in := CanonicalMessage{
			ParticipantMobileNumber: "9876543210",
			SenderPushName:          "Ash pushname",
			Content:                 "hello",
			SentAt:                  sentAt,
		}

		d := f.Authorize(in)
		assert.True(t, d.Accepted)
		assert.Equal(t, ReasonNone, d.Reason)
		assert.Equal(t, "Asha", d.Message.ParticipantName)
		assert.Equal(t, "Ash pushname", d.Message.SenderPushName)
		assert.Equal(t, "hello", d.Message.Content)
		assert.Equal(t, sentAt, d.Message.SentAt)
		assert.Empty(t, in.ParticipantName, "input must not be modified")
	})

	t.Run("unknown number rejected", func(t *testing.T) {
		d := f.Authorize(CanonicalMessage{ParticipantMobileNumber: "12345678@s", Content: "hi"})
		assert.False(t, d.Accepted)
		assert.Equal(t, ReasonNotWhitelisted, d.Reason)
	})
}
