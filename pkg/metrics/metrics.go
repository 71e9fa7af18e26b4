package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	IngestionBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_batches_total",
			Help: "Total number of notification batches received by the coordinator (count)",
		},
		[]string{"mode", "status"},
	)

	IngestionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_events_total",
			Help: "Total number of inbound events by pipeline outcome (count)",
		},
		[]string{"outcome"},
	)

	IngestionBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_batch_duration_ms",
			Help:    "Time to fan out and settle one notification batch in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"mode"},
	)

	PublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publish_duration_ms",
			Help:    "Duration of a single publish attempt in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 250, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	MessageQueueSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "message_queue_size",
			Help: "Current number of notification batches waiting for the coordinator (count)",
		},
		[]string{"service"},
	)

	MessageQueueRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_queue_rejected_total",
			Help: "Total number of batches refused because the queue was full or closed (count)",
		},
		[]string{"service", "reason"},
	)

	DedupChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_checks_total",
			Help: "Total number of dedup guard checks by result (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

var (
	registerIngestionOnce      sync.Once
	registerBrokerOnce         sync.Once
	registerCircuitBreakerOnce sync.Once
)

func RegisterIngestionMetrics() {
	registerIngestionOnce.Do(func() {
		prometheus.MustRegister(IngestionBatchesTotal)
		prometheus.MustRegister(IngestionEventsTotal)
		prometheus.MustRegister(IngestionBatchDuration)
		prometheus.MustRegister(PublishDuration)
		prometheus.MustRegister(MessageQueueSize)
		prometheus.MustRegister(MessageQueueRejectedTotal)
		prometheus.MustRegister(DedupChecksTotal)
		prometheus.MustRegister(FallbackUsageTotal)
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
}

func RegisterBrokerMetrics() {
	registerBrokerOnce.Do(func() {
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessageSizeBytes)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	registerCircuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func IncBatch(mode, status string) {
	IngestionBatchesTotal.WithLabelValues(mode, status).Inc()
}

func IncEventOutcome(outcome string) {
	IngestionEventsTotal.WithLabelValues(outcome).Inc()
}

func ObserveBatchDuration(mode string, duration time.Duration) {
	IngestionBatchDuration.WithLabelValues(mode).Observe(float64(duration.Milliseconds()))
}

func ObservePublishDuration(status string, duration time.Duration) {
	PublishDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func SetMessageQueueSize(service string, size int) {
	MessageQueueSize.WithLabelValues(service).Set(float64(size))
}

func IncQueueRejected(service, reason string) {
	MessageQueueRejectedTotal.WithLabelValues(service, reason).Inc()
}

func IncDedupCheck(status string) {
	DedupChecksTotal.WithLabelValues(status).Inc()
}
