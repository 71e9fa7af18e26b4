//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/logger"
)

const messageWaitTimeout = 30 * time.Second

type TestInfra struct {
	KafkaBrokers []string
	RedisClient  *redisclient.Client
}

func SetupTestInfraWithOptions(t *testing.T, needKafka, needRedis bool) *TestInfra {
	t.Helper()

	ctx := context.Background()

	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}

	infra := &TestInfra{}

	if needKafka {
		setupKafka(t, ctx, infra)
	}

	if needRedis {
		setupRedis(t, ctx, infra)
	}

	return infra
}

func setupKafka(t *testing.T, ctx context.Context, infra *TestInfra) {
	container, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkamodule.WithClusterID("whatsapp-relay-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	infra.KafkaBrokers = brokers
}

func setupRedis(t *testing.T, ctx context.Context, infra *TestInfra) {
	container, err := redismodule.Run(ctx, "redis:8.4.0-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis uri: %v", err)
	}

	opt, err := redisclient.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis URL: %v", err)
	}

	client := redisclient.NewClient(opt)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctxWithTimeout).Err(); err != nil {
		client.Close()
		t.Fatalf("failed to ping redis: %v", err)
	}

	infra.RedisClient = client
	t.Cleanup(func() {
		client.Close()
	})
}

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestKafkaConfig(brokers []string, topic string) config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:           brokers,
		ClientID:          "whatsapp-relay-test",
		Topic:             topic,
		GroupID:           topic + "-reader",
		RequiredAcks:      -1,
		WriteTimeout:      10 * time.Second,
		AutoCreateTopic:   true,
		NumPartitions:     3,
		ReplicationFactor: 1,
		DialRetry: config.RetryConfig{
			MaxAttempts:     10,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
		},
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }
