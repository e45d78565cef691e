package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "assetbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultAccessTokenTTL = 30 * time.Minute

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultUsageLockTTL = 10 * time.Second

	DefaultNotifyBuffer     = 256
	DefaultWSSendBuffer     = 32
	DefaultWSWriteWait      = 10 * time.Second
	DefaultWSPongWait       = 60 * time.Second
	DefaultWSMaxMessageSize = 4096

	DefaultUsageChangeTopic = "usage-changes"

	DefaultPaginationLimit = 100
)
