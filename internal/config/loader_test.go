package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
broker:
  kafka:
    brokers: ["localhost:9092"]
whitelist:
  participants:
    - mobile_number: "9876543210"
      display_name: "Asha"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "kafka", cfg.Broker.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "whatsapp-messages", cfg.Broker.Kafka.Topic)
	assert.Equal(t, "whatsapp-service", cfg.Broker.Kafka.ClientID)
	assert.Equal(t, -1, cfg.Broker.Kafka.RequiredAcks)
	assert.Equal(t, 10*time.Second, cfg.Broker.Kafka.WriteTimeout)
	assert.Equal(t, 5, cfg.Broker.Kafka.DialRetry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Broker.Kafka.DialRetry.InitialInterval)
	assert.Equal(t, 16, cfg.Ingestion.MaxConcurrency)
	assert.Equal(t, 256, cfg.Ingestion.QueueSize)
	assert.False(t, cfg.Deduplication.Enabled)
	assert.Equal(t, "allow", cfg.Deduplication.OnRedisError)

	require.Len(t, cfg.Whitelist.Participants, 1)
	assert.Equal(t, ParticipantConfig{MobileNumber: "9876543210", DisplayName: "Asha"}, cfg.Whitelist.Participants[0])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("WHITELIST_FILE", "/etc/relay/whitelist.yaml")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/etc/relay/whitelist.yaml", cfg.Whitelist.File)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_Malformed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "broker: [unterminated"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidBroker(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "broker:\n  type: kafka\n"))
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "broker.kafka.brokers", vErr.Field)
}
