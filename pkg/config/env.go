package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret      = "JWT_SECRET"
	EnvAccessTokenTTL = "ACCESS_TOKEN_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvUsageLockTTL = "USAGE_LOCK_TTL"

	EnvNotifyBuffer     = "NOTIFY_BUFFER"
	EnvWSSendBuffer     = "WS_SEND_BUFFER"
	EnvWSWriteWait      = "WS_WRITE_WAIT"
	EnvWSPongWait       = "WS_PONG_WAIT"
	EnvWSMaxMessageSize = "WS_MAX_MESSAGE_SIZE"

	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvUsageChangeTopic = "USAGE_CHANGE_TOPIC"
)
