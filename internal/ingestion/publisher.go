package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"whatsapp-relay/internal/broker"
	"whatsapp-relay/pkg/circuitbreaker"
	"whatsapp-relay/pkg/metrics"
)

// BrokerPublisher writes accepted messages to the messages topic keyed by
// participant mobile number. A failed write is reported and never retried.
type BrokerPublisher struct {
	producer broker.Producer
	topic    string
	breaker  *circuitbreaker.Wrapper
}

type PublisherOption func(*BrokerPublisher)

// WithCircuitBreaker makes publishes fail fast while the breaker is open.
func WithCircuitBreaker(cb *circuitbreaker.Wrapper) PublisherOption {
	return func(p *BrokerPublisher) {
		p.breaker = cb
	}
}

func NewBrokerPublisher(producer broker.Producer, topic string, opts ...PublisherOption) *BrokerPublisher {
	p := &BrokerPublisher{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *BrokerPublisher) Publish(ctx context.Context, msg CanonicalMessage) error {
	msg.SentAt = msg.SentAt.UTC()
	payload, err := json.Marshal(msg)
	if err != nil {
		return &PublishError{Message: msg, Err: fmt.Errorf("failed to encode message: %w", err)}
	}

	rec := broker.Record{
		Key:   []byte(msg.ParticipantMobileNumber),
		Value: payload,
	}

	start := time.Now()
	if p.breaker != nil {
		err = p.breaker.ExecuteWithContext(ctx, func() error {
			return p.producer.Publish(ctx, p.topic, rec)
		})
	} else {
		err = p.producer.Publish(ctx, p.topic, rec)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ObservePublishDuration(status, time.Since(start))

	if err != nil {
		return &PublishError{Message: msg, Payload: payload, Err: err}
	}
	return nil
}
