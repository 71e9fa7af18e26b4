package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
	KafkaDialTimeout  = 5 * time.Second
)

const (
	DefaultClientID      = "whatsapp-service"
	DefaultMessagesTopic = "whatsapp-messages"
	DefaultTailGroupID   = "message-tail"
)

const (
	DefaultMaxConcurrency = 16
	DefaultQueueSize      = 256
)

const (
	CacheKeyPrefixDedup = "dedup:"
)

const (
	DefaultTTLSeconds = 86400
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	ServiceNameRelay = "whatsapp-service"
	ServiceNameTail  = "message-tail"
)
