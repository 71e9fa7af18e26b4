package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithServiceName(ctx, "whatsapp-service")
	ctx = WithBatchID(ctx, "batch-1")
	ctx = WithMessageID(ctx, "3EB0C767D26A1D")

	assert.Equal(t, []interface{}{
		"batch_id", "batch-1",
		"message_id", "3EB0C767D26A1D",
		"service_name", "whatsapp-service",
	}, GetLogFields(ctx))
}

func TestEarlyLog(t *testing.T) {
	var buf bytes.Buffer
	l := &EarlyLog{out: &buf}

	l.Error("failed to load config: %v", "boom")
	l.Warn("falling back")

	assert.Equal(t, "ERROR: failed to load config: boom\nWARN: falling back\n", buf.String())
}
