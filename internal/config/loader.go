package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"whatsapp-relay/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout_seconds", 10)
	viper.SetDefault("server.write_timeout_seconds", 10)

	viper.SetDefault("broker.type", "kafka")
	viper.SetDefault("broker.kafka.client_id", constants.DefaultClientID)
	viper.SetDefault("broker.kafka.topic", constants.DefaultMessagesTopic)
	viper.SetDefault("broker.kafka.group_id", constants.DefaultTailGroupID)
	viper.SetDefault("broker.kafka.required_acks", -1)
	viper.SetDefault("broker.kafka.write_timeout", constants.KafkaWriteTimeout)
	viper.SetDefault("broker.kafka.num_partitions", 3)
	viper.SetDefault("broker.kafka.replication_factor", 1)
	viper.SetDefault("broker.kafka.dial_retry.max_attempts", 5)
	viper.SetDefault("broker.kafka.dial_retry.initial_interval", "500ms")
	viper.SetDefault("broker.kafka.dial_retry.max_interval", "10s")
	viper.SetDefault("broker.kafka.dial_retry.multiplier", 2.0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("ingestion.max_concurrency", constants.DefaultMaxConcurrency)
	viper.SetDefault("ingestion.queue_size", constants.DefaultQueueSize)
	viper.SetDefault("ingestion.rate_limit.rps", 50.0)
	viper.SetDefault("ingestion.rate_limit.burst", 100)
	viper.SetDefault("ingestion.rate_limit.cleanup_interval", 300)
	viper.SetDefault("ingestion.rate_limit.max_age", 600)

	viper.SetDefault("deduplication.ttl_seconds", constants.DefaultTTLSeconds)
	viper.SetDefault("deduplication.on_redis_error", constants.FallbackAllow)
}

func bindEnvVariables() {
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.client_id", "BROKER_KAFKA_CLIENT_ID")
	viper.BindEnv("broker.kafka.topic", "BROKER_KAFKA_TOPIC")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("whitelist.file", "WHITELIST_FILE")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

// applyEnvOverrides handles values viper cannot map from a flat env string,
// such as the comma separated broker list.
func applyEnvOverrides(cfg *Config) {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
