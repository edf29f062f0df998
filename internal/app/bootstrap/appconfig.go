// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends selectable with store_backend.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// AppConfig holds service-specific configuration for quickmatch.
//
// These values come from environment variables (QUICKMATCH_*), config files,
// or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and request limits; everything here is quickmatch's own.
type AppConfig struct {
	// Meeting store
	StoreBackend     string // "mongo" or "sqlite"
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64
	SQLitePath       string // SQLite database file (only used by the sqlite backend)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: quickmatch-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens (HS256). Blank secret disables them.
	JWTSecret string
	JWTIssuer string

	// Coordinator
	LockWait time.Duration // longest a request queues for a busy meeting

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitPerMinute int // 0 disables rate limiting
	RateLimitBurst     int

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogMeetings string
}
