package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Inbound chat message ceiling in bytes. Messages above this are rejected
// before reaching the router.
const MaxInboundMessageBytes = 4096

// Request body ceiling in bytes for the JSON routes.
const MaxRequestBodyBytes = 1 << 20

// Session id structural limits
const MaxSessionIDLength = 64
