// Package bootstrap holds the startup wiring shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatsapp-relay/internal/broker"
	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/pkg/retry"
)

type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
	Consumer broker.Consumer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// WaitForBroker blocks until the messages topic is reachable, retrying with
// exponential backoff per broker.kafka.dial_retry.
func (b *Base) WaitForBroker(ctx context.Context) error {
	kafkaCfg := b.Config.Broker.Kafka
	rc := kafkaCfg.DialRetry
	policy := retry.Policy{
		MaxAttempts:     rc.MaxAttempts,
		InitialInterval: rc.InitialInterval,
		MaxInterval:     rc.MaxInterval,
		Multiplier:      rc.Multiplier,
		MaxElapsedTime:  rc.MaxElapsedTime,
	}

	err := retry.RetryWithCallback(ctx, policy, func() error {
		return broker.EnsureTopic(ctx, kafkaCfg)
	}, func(attempt int, err error, next time.Duration) {
		b.Logger.Warnw("Kafka not reachable yet, retrying",
			"attempt", attempt,
			"next_retry_in", next,
			"brokers", kafkaCfg.Brokers,
			"error", err,
		)
	})
	if err != nil {
		return fmt.Errorf("kafka unavailable after %d attempts: %w", policy.MaxAttempts, err)
	}

	b.Logger.Infow("Kafka reachable", "brokers", kafkaCfg.Brokers, "topic", kafkaCfg.Topic)
	return nil
}

func (b *Base) InitProducer() error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	return nil
}

func (b *Base) InitConsumer(serviceName string) error {
	consumer, err := broker.NewConsumer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	if serviceName != "" {
		consumer.SetServiceName(serviceName)
	}
	b.Consumer = consumer
	return nil
}

// ShutdownBroker closes the producer first so in-flight writes are flushed.
func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Consumer != nil {
		if err := b.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error
	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}
	errs = append(errs, b.ShutdownBroker()...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
