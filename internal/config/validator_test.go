package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeoutSeconds: 10, WriteTimeoutSeconds: 10},
		Broker: BrokerConfig{
			Type: "kafka",
			Kafka: KafkaConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "whatsapp-messages",
				RequiredAcks: -1,
				WriteTimeout: 10 * time.Second,
				DialRetry:    RetryConfig{MaxAttempts: 3, InitialInterval: time.Second, MaxInterval: 5 * time.Second, Multiplier: 2},
			},
		},
		Ingestion: IngestionConfig{MaxConcurrency: 4, QueueSize: 8},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantField: "server.port"},
		{name: "unknown broker", mutate: func(c *Config) { c.Broker.Type = "rabbitmq" }, wantField: "broker.type"},
		{name: "empty broker address", mutate: func(c *Config) { c.Broker.Kafka.Brokers = []string{" "} }, wantField: "broker.kafka.brokers[0]"},
		{name: "empty topic", mutate: func(c *Config) { c.Broker.Kafka.Topic = "" }, wantField: "broker.kafka.topic"},
		{name: "bad acks", mutate: func(c *Config) { c.Broker.Kafka.RequiredAcks = 2 }, wantField: "broker.kafka.required_acks"},
		{name: "bad retry multiplier", mutate: func(c *Config) { c.Broker.Kafka.DialRetry.Multiplier = 0 }, wantField: "broker.kafka.dial_retry.multiplier"},
		{name: "retry max below initial", mutate: func(c *Config) { c.Broker.Kafka.DialRetry.MaxInterval = time.Millisecond }, wantField: "broker.kafka.dial_retry.max_interval"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Ingestion.MaxConcurrency = 0 }, wantField: "ingestion.max_concurrency"},
		{name: "zero queue", mutate: func(c *Config) { c.Ingestion.QueueSize = 0 }, wantField: "ingestion.queue_size"},
		{
			name: "rate limit without rps",
			mutate: func(c *Config) {
				c.Ingestion.RateLimit = RateLimitConfig{Enabled: true, Burst: 1}
			},
			wantField: "ingestion.rate_limit.rps",
		},
		{
			name: "dedup without redis",
			mutate: func(c *Config) {
				c.Deduplication = DeduplicationConfig{Enabled: true, TTLSeconds: 60, OnRedisError: "allow"}
			},
			wantField: "database.redis.host",
		},
		{
			name: "dedup bad fallback",
			mutate: func(c *Config) {
				c.Deduplication = DeduplicationConfig{Enabled: true, TTLSeconds: 60, OnRedisError: "retry"}
			},
			wantField: "deduplication.on_redis_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}
