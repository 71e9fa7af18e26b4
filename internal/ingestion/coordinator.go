package ingestion

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	apperrors "whatsapp-relay/pkg/errors"
	"whatsapp-relay/pkg/logging"
	"whatsapp-relay/pkg/metrics"
	"whatsapp-relay/pkg/tracing"
)

type MessageNormalizer interface {
	Normalize(event RawInboundEvent) (CanonicalMessage, error)
}

type Authorizer interface {
	Authorize(msg CanonicalMessage) Decision
}

type Publisher interface {
	Publish(ctx context.Context, msg CanonicalMessage) error
}

// DuplicateGuard is implemented by dedup.Guard.
type DuplicateGuard interface {
	Claim(ctx context.Context, remoteJid, messageID string) (bool, error)
	Release(ctx context.Context, remoteJid, messageID string)
}

type outcome string

const (
	outcomePublished outcome = "published"
	outcomeRejected  outcome = "rejected"
	outcomeMalformed outcome = "malformed"
	outcomeDuplicate outcome = "duplicate"
	outcomeFailed    outcome = "publish_failed"
	outcomePanic     outcome = "panic"
)

type Coordinator struct {
	normalizer     MessageNormalizer
	authorizer     Authorizer
	publisher      Publisher
	guard          DuplicateGuard
	maxConcurrency int
	logger         logger.Logger
}

type CoordinatorOption func(*Coordinator)

func WithDuplicateGuard(g DuplicateGuard) CoordinatorOption {
	return func(c *Coordinator) {
		c.guard = g
	}
}

// WithMaxConcurrency bounds the number of events of one batch processed at
// the same time. Values below 1 keep the default.
func WithMaxConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

func NewCoordinator(n MessageNormalizer, a Authorizer, p Publisher, log logger.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		normalizer:     n,
		authorizer:     a,
		publisher:      p,
		maxConcurrency: constants.DefaultMaxConcurrency,
		logger:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ingests batches until the channel is closed or ctx is done. Closing
// the channel drains whatever is still buffered before Run returns nil.
func (c *Coordinator) Run(ctx context.Context, batches <-chan NotificationBatch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			metrics.SetMessageQueueSize(constants.ServiceNameRelay, len(batches))
			c.Ingest(ctx, batch)
			metrics.SetMessageQueueSize(constants.ServiceNameRelay, len(batches))
		}
	}
}

// Ingest processes every event of a live batch independently and waits for
// all of them. Failures of one event never affect the others and are only
// reflected in the returned Report.
func (c *Coordinator) Ingest(ctx context.Context, batch NotificationBatch) Report {
	batchID := batch.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	ctx = logging.WithBatchID(ctx, batchID)

	report := Report{
		BatchID: batchID,
		Mode:    batch.Type,
		Total:   len(batch.Messages),
	}

	if !batch.IsLive() {
		report.Discarded = true
		metrics.IncBatch(modeLabel(batch.Type), "discarded")
		c.logger.DebugwCtx(ctx, "Discarding non-live batch",
			"type", batch.Type,
			"events", report.Total,
		)
		return report
	}

	start := time.Now()
	var published, rejected, malformed, duplicates, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(c.maxConcurrency)
	for i := range batch.Messages {
		event := batch.Messages[i]
		g.Go(func() error {
			switch c.processEvent(ctx, event) {
			case outcomePublished:
				published.Add(1)
			case outcomeRejected:
				rejected.Add(1)
			case outcomeMalformed:
				malformed.Add(1)
			case outcomeDuplicate:
				duplicates.Add(1)
			case outcomeFailed, outcomePanic:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Published = int(published.Load())
	report.Rejected = int(rejected.Load())
	report.Malformed = int(malformed.Load())
	report.Duplicates = int(duplicates.Load())
	report.Failed = int(failed.Load())

	status := "ok"
	if report.Failed > 0 {
		status = "partial"
	}
	metrics.IncBatch(DeliveryModeNotify, status)
	metrics.ObserveBatchDuration(DeliveryModeNotify, time.Since(start))

	c.logger.InfowCtx(ctx, "Batch ingested",
		"events", report.Total,
		"published", report.Published,
		"rejected", report.Rejected,
		"malformed", report.Malformed,
		"duplicates", report.Duplicates,
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}

func (c *Coordinator) processEvent(ctx context.Context, event RawInboundEvent) (result outcome) {
	ctx, span := tracing.GetTracer(constants.ServiceNameRelay).Start(ctx, "ingestion.process_event")
	defer span.End()

	ctx = logging.WithMessageID(ctx, event.MessageID())
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}

	// claimed is set once the dedup key belongs to this event; it must be
	// released unless the message was published.
	var claimed bool
	defer func() {
		if r := recover(); r != nil {
			err := apperrors.RecoverPanic(r)
			c.logger.ErrorwCtx(ctx, "Recovered panic while processing event", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = outcomePanic
			if claimed {
				c.guard.Release(ctx, event.RemoteJid(), event.MessageID())
			}
		}
		metrics.IncEventOutcome(string(result))
		span.SetAttributes(attribute.String("ingestion.outcome", string(result)))
	}()

	msg, err := c.normalizer.Normalize(event)
	if err != nil {
		if IsMalformed(err) {
			c.logger.WarnwCtx(ctx, "Dropping malformed event", "error", err)
		} else {
			c.logger.ErrorwCtx(ctx, "Unexpected normalization error, dropping event", "error", err)
		}
		return outcomeMalformed
	}

	decision := c.authorizer.Authorize(msg)
	if !decision.Accepted {
		c.logger.InfowCtx(ctx, "Dropping message from participant not in whitelist",
			"participant_mobile_number", msg.ParticipantMobileNumber,
			"reason", string(decision.Reason),
		)
		return outcomeRejected
	}

	if c.guard != nil {
		fresh, err := c.guard.Claim(ctx, event.RemoteJid(), event.MessageID())
		if err != nil {
			c.logger.ErrorwCtx(ctx, "Dedup check failed, dropping message", "error", err)
			return outcomeFailed
		}
		if !fresh {
			c.logger.DebugwCtx(ctx, "Dropping redelivered message")
			return outcomeDuplicate
		}
		claimed = true
	}

	if err := c.publisher.Publish(ctx, decision.Message); err != nil {
		if claimed {
			c.guard.Release(ctx, event.RemoteJid(), event.MessageID())
		}
		c.logPublishFailure(ctx, decision.Message, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return outcomeFailed
	}

	return outcomePublished
}

func (c *Coordinator) logPublishFailure(ctx context.Context, msg CanonicalMessage, err error) {
	fields := []interface{}{
		"participant_mobile_number", msg.ParticipantMobileNumber,
		"error", err,
	}
	var pubErr *PublishError
	if errors.As(err, &pubErr) && len(pubErr.Payload) > 0 {
		fields = append(fields, "payload", string(pubErr.Payload))
	}
	c.logger.ErrorwCtx(ctx, "Failed to publish message", fields...)
}

// modeLabel keeps the batch metric cardinality bounded.
func modeLabel(mode string) string {
	switch mode {
	case DeliveryModeNotify, DeliveryModeAppend:
		return mode
	default:
		return "other"
	}
}
