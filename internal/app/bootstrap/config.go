// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for visitdesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, session_name, etc.
//   - Environment variables: VISITDESK_API_BASE_URL, VISITDESK_SESSION_NAME, etc.
//   - Command-line flags: --api_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: models.DefaultSiteName, Desc: "Site name shown in the header"},

	// Backend API
	{Name: "api_base_url", Default: "http://localhost:5000/api", Desc: "Base URL of the visitor-management REST API"},
	{Name: "api_timeout", Default: "10s", Desc: "Timeout for every backend API call"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "visitdesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "120h", Desc: "Session lifetime (the backend issues 5-day tokens)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "32-byte CSRF key"},
	{Name: "phone_hash_key", Default: "", Desc: "Key for pseudonymizing phone numbers (defaults to session_key)"},

	{Name: "page_size", Default: 10, Desc: "Rows per table page"},
	{Name: "search_debounce", Default: "500ms", Desc: "Quiet period before a search fetch"},
	{Name: "time_zone", Default: "Asia/Kolkata", Desc: "IANA time zone for visitor dates"},

	{Name: "state_idle_ttl", Default: "30m", Desc: "Drop per-session state idle this long"},

	{Name: "otp_rate_limit", Default: 5, Desc: "OTP requests allowed per phone per window"},
	{Name: "otp_rate_window", Default: "10m", Desc: "OTP rate limit window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Record change logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, VISITDESK_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VISITDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		APIBaseURL: appValues.String("api_base_url"),
		APITimeout: appValues.Duration("api_timeout", 10*time.Second),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", auth.DefaultMaxAge),
		CSRFKey:       appValues.String("csrf_key"),
		PhoneHashKey:  appValues.String("phone_hash_key"),

		PageSize:       appValues.Int("page_size"),
		SearchDebounce: appValues.Duration("search_debounce", 500*time.Millisecond),
		TimeZone:       appValues.String("time_zone"),

		StateIdleTTL: appValues.Duration("state_idle_ttl", 30*time.Minute),

		OTPRateLimit:  appValues.Int("otp_rate_limit"),
		OTPRateWindow: appValues.Duration("otp_rate_window", 10*time.Minute),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),
	}
	if appCfg.PhoneHashKey == "" {
		appCfg.PhoneHashKey = appCfg.SessionKey
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateAPIBaseURL(appCfg.APIBaseURL); err != nil {
		return err
	}
	if _, err := time.LoadLocation(appCfg.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", appCfg.TimeZone, err)
	}
	if len(appCfg.CSRFKey) != 32 {
		return errors.New("csrf_key must be exactly 32 bytes")
	}
	if appCfg.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if len(appCfg.SessionKey) < 32 || strings.HasPrefix(appCfg.SessionKey, "dev-only") {
			return errors.New("session_key must be a strong secret of at least 32 bytes in prod")
		}
		if strings.HasPrefix(appCfg.CSRFKey, "dev-only") {
			return errors.New("csrf_key must be changed in prod")
		}
	}
	return nil
}

// validateAPIBaseURL requires an absolute http(s) URL.
func validateAPIBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

// location loads name, falling back to the server's zone when it cannot.
func location(name string, logger *zap.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown time zone; using server local time", zap.String("time_zone", name), zap.Error(err))
		return time.Local
	}
	return loc
}
