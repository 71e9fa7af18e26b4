package broker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/pkg/retry"
)

// ErrTopicMissing is returned by EnsureTopic when the topic does not exist
// and auto creation is disabled.
var ErrTopicMissing = errors.New("kafka topic does not exist")

func dial(ctx context.Context, cfg config.KafkaConfig) (*kafka.Conn, *kafka.Dialer, error) {
	dialer := &kafka.Dialer{
		ClientID: cfg.ClientID,
		Timeout:  constants.KafkaDialTimeout,
	}

	var lastErr error
	for _, addr := range cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, dialer, nil
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("failed to dial any kafka broker: %w", lastErr)
}

// Ping verifies that at least one seed broker answers a metadata request.
func Ping(ctx context.Context, cfg config.KafkaConfig) error {
	conn, _, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return fmt.Errorf("failed to read broker metadata: %w", err)
	}
	return nil
}

// EnsureTopic checks that cfg.Topic exists, creating it through the
// controller when cfg.AutoCreateTopic is set. A missing topic without auto
// creation is a fatal error for retry purposes.
func EnsureTopic(ctx context.Context, cfg config.KafkaConfig) error {
	conn, dialer, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition) {
		return fmt.Errorf("failed to read partitions for %s: %w", cfg.Topic, err)
	}

	if !cfg.AutoCreateTopic {
		return retry.NewFatalError(fmt.Errorf("%w: %s", ErrTopicMissing, cfg.Topic))
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to locate kafka controller: %w", err)
	}

	controllerConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topic %s: %w", cfg.Topic, err)
	}
	return nil
}
