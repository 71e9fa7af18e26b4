package dedup

import (
	"context"
	"fmt"
	"time"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/pkg/circuitbreaker"
)

const breakerName = "redis-dedup"

// CircuitBreakerRepository short-circuits Redis calls while Redis is failing,
// so the guard falls back immediately instead of waiting on timeouts.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}
	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(circuitbreaker.FromSettings(breakerName, cfg)),
	}
}

func (r *CircuitBreakerRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if r.cb == nil {
		return r.repo.SetNX(ctx, key, value, ttl)
	}

	var claimed bool
	err := r.cb.ExecuteWithContext(ctx, func() error {
		var err error
		claimed, err = r.repo.SetNX(ctx, key, value, ttl)
		return err
	})
	if err != nil {
		return false, r.wrap(err)
	}
	return claimed, nil
}

func (r *CircuitBreakerRepository) Del(ctx context.Context, key string) error {
	if r.cb == nil {
		return r.repo.Del(ctx, key)
	}
	if err := r.cb.ExecuteWithContext(ctx, func() error {
		return r.repo.Del(ctx, key)
	}); err != nil {
		return r.wrap(err)
	}
	return nil
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerRepository) wrap(err error) error {
	if r.cb.IsOpen() {
		return fmt.Errorf("circuit breaker is open for %s: %w", breakerName, err)
	}
	return err
}
