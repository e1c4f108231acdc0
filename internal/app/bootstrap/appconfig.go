// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side (ports, TLS, logging, CORS); AppConfig is everything that
// belongs to visitdesk itself.
type AppConfig struct {
	SiteName string // shown in the header and page titles

	// Backend REST API
	APIBaseURL string        // e.g. https://api.example.com/api
	APITimeout time.Duration // applied to every backend call

	// MongoDB (audit trail and login history)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management
	SessionKey    string        // signs session and toast cookies (32+ bytes in prod)
	SessionName   string        // cookie name
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // fixed session lifetime
	CSRFKey       string        // 32-byte key for gorilla/csrf
	PhoneHashKey  string        // pseudonymizes phone numbers in audit records

	// Screens
	PageSize       int
	SearchDebounce time.Duration
	TimeZone       string // dates are shown and entered in this zone

	// Per-session state
	StateIdleTTL time.Duration

	// OTP rate limiting
	OTPRateLimit  int
	OTPRateWindow time.Duration

	// Audit logging
	AuditLogAuth   string // 'all', 'db', 'log' or 'off'
	AuditLogAdmin  string
	AuditRetention time.Duration
}
