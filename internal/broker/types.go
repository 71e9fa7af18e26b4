package broker

import (
	"context"
	"time"
)

// Record is one broker message. Key selects the partition.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

type Producer interface {
	Publish(ctx context.Context, topic string, rec Record) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, rec Record) error
