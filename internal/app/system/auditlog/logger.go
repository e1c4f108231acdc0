// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/visitdesk/internal/app/store/audit"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (OTP, login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for record changes made through the backend.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via the EventStore) and structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
	phones *PhoneHasher
}

// New creates a new audit Logger. phones may be nil, in which case phone
// numbers are left out of events entirely.
func New(store EventStore, zapLog *zap.Logger, config Config, phones *PhoneHasher) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
		phones: phones,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID), zap.String("actor_role", event.ActorRole))
	}
	if event.SocietyID != "" {
		fields = append(fields, zap.String("society_id", event.SocietyID))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource), zap.String("resource_id", event.ResourceID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	setting = strings.ToLower(strings.TrimSpace(setting))
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) phoneDetails(phone string) map[string]string {
	if l.phones == nil {
		return nil
	}
	if h := l.phones.Hash(phone); h != "" {
		return map[string]string{"phone_hash": h}
	}
	return nil
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// OTPRequested logs a one-time code being sent to phone.
func (l *Logger) OTPRequested(ctx context.Context, r *http.Request, phone string, success bool, reason string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventOTPRequested, success)
	e.FailureReason = reason
	e.Details = l.phoneDetails(phone)
	l.Log(ctx, e)
}

// OTPRateLimited logs a code request refused by the rate limiter.
func (l *Logger) OTPRateLimited(ctx context.Context, r *http.Request, phone, limitType string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventOTPRateLimited, false)
	e.FailureReason = "rate limited by " + limitType
	e.Details = l.phoneDetails(phone)
	l.Log(ctx, e)
}

// LoginSuccess logs a verified sign in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, societyID, role string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventLoginSuccess, true)
	e.UserID = userID
	e.SocietyID = societyID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// LoginFailed logs a rejected code or an unusable token.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, phone, reason string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventLoginFailed, false)
	e.FailureReason = reason
	e.Details = l.phoneDetails(phone)
	l.Log(ctx, e)
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, societyID string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventLogout, true)
	e.UserID = userID
	e.SocietyID = societyID
	l.Log(ctx, e)
}

// SessionExpired logs a session dropped because the backend no longer
// accepts its token.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, userID string) {
	if l == nil {
		return
	}
	e := authEvent(r, audit.EventSessionExpired, false)
	e.UserID = userID
	e.FailureReason = "token rejected"
	l.Log(ctx, e)
}

// --- Record Events ---

func (l *Logger) recordEvent(r *http.Request, eventType, resource, id string) audit.Event {
	e := audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		Resource:   resource,
		ResourceID: id,
		IP:         ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	}
	if u, ok := auth.CurrentUser(r); ok {
		e.ActorID = u.ID
		e.ActorRole = string(u.Role)
		e.SocietyID = u.SocietyID
	}
	return e
}

// RecordCreated logs a successful create of resource id.
func (l *Logger) RecordCreated(ctx context.Context, r *http.Request, resource, id, name string) {
	if l == nil {
		return
	}
	e := l.recordEvent(r, audit.EventRecordCreated, resource, id)
	if name != "" {
		e.Details = map[string]string{"name": name}
	}
	l.Log(ctx, e)
}

// RecordUpdated logs a successful update and the fields it changed.
func (l *Logger) RecordUpdated(ctx context.Context, r *http.Request, resource, id string, fieldsChanged []string) {
	if l == nil {
		return
	}
	e := l.recordEvent(r, audit.EventRecordUpdated, resource, id)
	if len(fieldsChanged) > 0 {
		e.Details = map[string]string{"fields_changed": strings.Join(fieldsChanged, ",")}
	}
	l.Log(ctx, e)
}

// RecordDeleted logs a successful delete.
func (l *Logger) RecordDeleted(ctx context.Context, r *http.Request, resource, id string) {
	if l == nil {
		return
	}
	l.Log(ctx, l.recordEvent(r, audit.EventRecordDeleted, resource, id))
}
