package config

import "time"

const (
	// Database defaults.
	DefaultPostgresPort = 5432
	DefaultRedisPort    = 6379

	// Connection pool defaults.
	DefaultMaxConnections = 25
	DefaultMinConnections = 5
	DefaultMaxRetries     = 3
	DefaultPoolSize       = 10
	DefaultMinIdleConns   = 2

	// Timeout defaults.
	DefaultMaxConnIdleTime = 30 * time.Minute
	DefaultDialTimeout     = 5 * time.Second
	DefaultReadTimeout     = 3 * time.Second
	DefaultWriteTimeout    = 3 * time.Second

	// Matching defaults.
	DefaultConfidenceThreshold = 80.0
	DefaultFuzzyThreshold      = 60.0

	// Collector defaults.
	DefaultInsertChunkSize    = 500
	DefaultMaxConcurrentScans = 4
	DefaultHTTPTimeout        = 30 * time.Second

	// Metadata provider defaults.
	DefaultTMDbRateLimit   = 3.0
	DefaultProviderTimeout = 10 * time.Second
	DefaultRetryDelay      = time.Second

	// Enrichment defaults.
	DefaultRateCounterTTL = 300 * time.Second
)
