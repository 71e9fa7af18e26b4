package config

import (
	"errors"
	"fmt"
	"strings"

	"whatsapp-relay/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic checks everything that can be verified without touching the
// network. All failing sections are reported together.
func ValidateStatic(cfg *Config) error {
	var errs []error

	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errs = append(errs, err)
	}

	if err := validateIngestion(cfg.Ingestion); err != nil {
		errs = append(errs, err)
	}

	if err := validateDeduplication(cfg.Deduplication, cfg.Database.Redis); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if strings.TrimSpace(broker) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "broker.kafka.topic",
			Message: "topic is required",
		}
	}

	switch cfg.RequiredAcks {
	case -1, 0, 1:
	default:
		return &ValidationError{
			Field:   "broker.kafka.required_acks",
			Message: fmt.Sprintf("required_acks must be -1, 0 or 1, got %d", cfg.RequiredAcks),
		}
	}

	if cfg.WriteTimeout < 0 {
		return &ValidationError{
			Field:   "broker.kafka.write_timeout",
			Message: "write_timeout must be non-negative",
		}
	}

	if cfg.AutoCreateTopic && (cfg.NumPartitions < 1 || cfg.ReplicationFactor < 1) {
		return &ValidationError{
			Field:   "broker.kafka.num_partitions",
			Message: "num_partitions and replication_factor must be positive when auto_create_topic is set",
		}
	}

	return validateRetry("broker.kafka.dial_retry", cfg.DialRetry)
}

func validateRetry(prefix string, cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   prefix + ".max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 {
		return &ValidationError{
			Field:   prefix + ".initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{
			Field:   prefix + ".multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateIngestion(cfg IngestionConfig) error {
	if cfg.MaxConcurrency < 1 {
		return &ValidationError{
			Field:   "ingestion.max_concurrency",
			Message: fmt.Sprintf("max_concurrency must be at least 1, got %d", cfg.MaxConcurrency),
		}
	}

	if cfg.QueueSize < 1 {
		return &ValidationError{
			Field:   "ingestion.queue_size",
			Message: fmt.Sprintf("queue_size must be at least 1, got %d", cfg.QueueSize),
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return &ValidationError{
				Field:   "ingestion.rate_limit.rps",
				Message: "rps must be positive when rate limiting is enabled",
			}
		}
		if cfg.RateLimit.Burst < 1 {
			return &ValidationError{
				Field:   "ingestion.rate_limit.burst",
				Message: "burst must be at least 1 when rate limiting is enabled",
			}
		}
	}

	return nil
}

func validateDeduplication(cfg DeduplicationConfig, redis RedisConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.TTLSeconds <= 0 {
		return &ValidationError{
			Field:   "deduplication.ttl_seconds",
			Message: "TTL must be positive",
		}
	}

	switch strings.ToLower(cfg.OnRedisError) {
	case constants.FallbackAllow, constants.FallbackDeny:
	default:
		return &ValidationError{
			Field:   "deduplication.on_redis_error",
			Message: fmt.Sprintf("invalid on_redis_error value: %s (valid: allow, deny)", cfg.OnRedisError),
		}
	}

	if redis.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required when deduplication is enabled",
		}
	}

	if redis.Port < 1 || redis.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", redis.Port),
		}
	}

	return nil
}
