// Package dedup drops transport redeliveries of a message that was already
// relayed. Only the remote identifier and the transport message id are
// stored, never content.
package dedup

import (
	"context"
	"fmt"
	"time"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/pkg/metrics"
)

const (
	statusUnique    = "unique"
	statusDuplicate = "duplicate"
	statusSkipped   = "skipped"
	statusError     = "error"
)

type Guard struct {
	repo    Repository
	ttl     time.Duration
	onError string
	logger  logger.Logger
}

func NewGuard(repo Repository, cfg config.DeduplicationConfig, log logger.Logger) *Guard {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = constants.DefaultTTLSeconds * time.Second
	}
	onError := cfg.OnRedisError
	if onError == "" {
		onError = constants.FallbackAllow
	}
	return &Guard{repo: repo, ttl: ttl, onError: onError, logger: log}
}

// Key is the Redis key claimed for a message.
func Key(remoteJid, messageID string) string {
	return constants.CacheKeyPrefixDedup + remoteJid + ":" + messageID
}

// Claim reports whether the message is seen for the first time. Messages
// without a transport id cannot be tracked and are always let through.
func (g *Guard) Claim(ctx context.Context, remoteJid, messageID string) (bool, error) {
	if messageID == "" {
		metrics.IncDedupCheck(statusSkipped)
		return true, nil
	}

	claimed, err := g.repo.SetNX(ctx, Key(remoteJid, messageID), time.Now().Unix(), g.ttl)
	if err != nil {
		metrics.IncDedupCheck(statusError)
		return g.fallback(ctx, err, messageID)
	}

	if claimed {
		metrics.IncDedupCheck(statusUnique)
	} else {
		metrics.IncDedupCheck(statusDuplicate)
	}
	return claimed, nil
}

// Release forgets a claim so that a redelivery of a message whose publish
// failed is processed again.
func (g *Guard) Release(ctx context.Context, remoteJid, messageID string) {
	if messageID == "" {
		return
	}
	if err := g.repo.Del(ctx, Key(remoteJid, messageID)); err != nil {
		g.logger.WarnwCtx(ctx, "Failed to release dedup key",
			"message_id", messageID,
			"error", err,
		)
	}
}

func (g *Guard) fallback(ctx context.Context, err error, messageID string) (bool, error) {
	if g.onError == constants.FallbackAllow {
		metrics.FallbackUsageTotal.WithLabelValues("deduplication", "allow_on_error").Inc()
		g.logger.WarnwCtx(ctx, "Redis error during dedup check, allowing message (fallback: allow)",
			"message_id", messageID,
			"error", err,
		)
		return true, nil
	}

	metrics.FallbackUsageTotal.WithLabelValues("deduplication", "deny_on_error").Inc()
	return false, fmt.Errorf("redis error during dedup check for message %s: %w", messageID, err)
}
