package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerRegistry(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(NewFuncChecker("kafka", func(ctx context.Context) error { return nil }))

	h := registry.Check(context.Background())
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, StatusHealthy, h.Checks["kafka"].Status)

	registry.Register(NewFuncChecker("redis", func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	h = registry.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Equal(t, StatusHealthy, h.Checks["kafka"].Status)
	assert.Equal(t, StatusUnhealthy, h.Checks["redis"].Status)
	assert.Equal(t, "redis ping failed: connection refused", h.Checks["redis"].Message)
}

func TestFuncChecker_AppliesDeadline(t *testing.T) {
	c := NewFuncChecker("kafka", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.NoError(t, c.Check(context.Background()))
}
