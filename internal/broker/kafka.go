package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	apperrors "whatsapp-relay/pkg/errors"
	"whatsapp-relay/pkg/logging"
	"whatsapp-relay/pkg/metrics"
	"whatsapp-relay/pkg/tracing"
)

type KafkaProducer struct {
	writer      *kafka.Writer
	logger      logger.Logger
	serviceName string
}

// NewKafkaProducer builds the single long-lived writer. Each WriteMessages
// call makes exactly one attempt; keys are spread with murmur2 so a
// participant lands on the same partition as with the JVM clients.
func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = constants.KafkaWriteTimeout
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Murmur2Balancer{},
		MaxAttempts:            1,
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: false,
		Async:                  false,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
		},
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: cfg.ClientID}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, rec Record) error {
	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: "content-type", Value: []byte("application/json")},
	})

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     rec.Key,
			Value:   rec.Value,
			Headers: headers,
			Time:    ts,
		},
	)
	metrics.ObserveKafkaWriteDuration(p.serviceName, topic, time.Since(start))

	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(p.serviceName, topic)
	metrics.ObserveKafkaMessageSize(p.serviceName, topic, "out", len(rec.Value))
	return nil
}

// Close flushes pending writes and releases the writer's connections.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	reader      *kafka.Reader
	logger      logger.Logger
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// Consume blocks until ctx is done. Handler errors are logged and the offset
// is committed anyway so a poison record cannot stall the group.
func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer: &kafka.Dialer{
			ClientID: c.cfg.ClientID,
			Timeout:  constants.KafkaDialTimeout,
		},
	})

	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming",
					"topic", topic,
					"reason", "context canceled",
				)
				return ctx.Err()
			}
			c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
				"error", err,
				"topic", topic,
			)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		metrics.IncKafkaMessagesRead(c.serviceName, topic)
		metrics.ObserveKafkaMessageSize(c.serviceName, topic, "in", len(m.Value))

		msgCtx, span := tracing.StartSpanFromKafkaMessage(consumeCtx, "kafka.consume", m.Headers)
		if traceID := tracing.TraceID(msgCtx); traceID != "" {
			msgCtx = logging.WithTraceID(msgCtx, traceID)
		}

		if err := c.handle(msgCtx, m, handler); err != nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to process message",
				"error", err,
				"topic", topic,
				"partition", m.Partition,
				"offset", m.Offset,
			)
		}
		span.End()

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to commit message",
				"error", err,
				"topic", topic,
			)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, m kafka.Message, handler HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}
	}()

	return handler(ctx, Record{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
	})
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	if err := c.reader.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
