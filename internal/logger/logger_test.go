package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"whatsapp-relay/pkg/logging"
)

func TestSugaredLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))
	log.SetServiceName("whatsapp-service")

	ctx := logging.WithBatchID(context.Background(), "batch-42")
	log.InfowCtx(ctx, "Batch accepted", "events", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "batch-42", fields["batch_id"])
	assert.Equal(t, "whatsapp-service", fields["service_name"])
	assert.EqualValues(t, 3, fields["events"])
}

func TestSugaredLogger_ContextServiceNameWins(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))
	log.SetServiceName("whatsapp-service")

	ctx := logging.WithServiceName(context.Background(), "message-tail")
	log.WarnwCtx(ctx, "Lagging")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "message-tail", logs.All()[0].ContextMap()["service_name"])
}

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log, err := New(level, "json")
		require.NoError(t, err)
		assert.NotNil(t, log)
	}

	log, err := New("info", "console")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
