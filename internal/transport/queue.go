// Package transport is the boundary between the session process and the
// ingestion coordinator: an HTTP ingress feeding a bounded batch queue.
package transport

import (
	"errors"
	"sync"

	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/ingestion"
	"whatsapp-relay/pkg/metrics"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Queue is a bounded FIFO of notification batches. Offer never blocks, so a
// slow broker turns into rejected requests instead of unbounded memory.
type Queue struct {
	mu     sync.RWMutex
	ch     chan ingestion.NotificationBatch
	closed bool
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = constants.DefaultQueueSize
	}
	return &Queue{ch: make(chan ingestion.NotificationBatch, size)}
}

func (q *Queue) Offer(batch ingestion.NotificationBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.IncQueueRejected(constants.ServiceNameRelay, "closed")
		return ErrQueueClosed
	}

	select {
	case q.ch <- batch:
		metrics.SetMessageQueueSize(constants.ServiceNameRelay, len(q.ch))
		return nil
	default:
		metrics.IncQueueRejected(constants.ServiceNameRelay, "full")
		return ErrQueueFull
	}
}

// Close stops accepting batches. Batches already queued stay readable from
// Batches until drained. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *Queue) Batches() <-chan ingestion.NotificationBatch {
	return q.ch
}

func (q *Queue) Len() int {
	return len(q.ch)
}
