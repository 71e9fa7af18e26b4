package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-relay/internal/ingestion"
)

func TestQueue_OfferAndDrainAfterClose(t *testing.T) {
	q := NewQueue(2)

	require.NoError(t, q.Offer(ingestion.NotificationBatch{Type: "notify", BatchID: "a"}))
	require.NoError(t, q.Offer(ingestion.NotificationBatch{Type: "notify", BatchID: "b"}))
	assert.ErrorIs(t, q.Offer(ingestion.NotificationBatch{Type: "notify"}), ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Offer(ingestion.NotificationBatch{Type: "notify"}), ErrQueueClosed)

	var ids []string
	for b := range q.Batches() {
		ids = append(ids, b.BatchID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestNewQueue_DefaultSize(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, 256, cap(q.ch))
}
