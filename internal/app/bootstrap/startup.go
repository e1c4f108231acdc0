// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/resources"
	auditstore "github.com/dalemusser/visitdesk/internal/app/store/audit"
	loginstore "github.com/dalemusser/visitdesk/internal/app/store/logins"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"github.com/dalemusser/visitdesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Runtime is the long-lived state shared by every request.
type Runtime struct {
	API       *gateway.Client
	States    *appstate.Registry
	Limiter   *ratelimit.OTPLimiter
	Audit     *auditlog.Logger
	Logins    *loginstore.Store
	Scheduler *workers.Scheduler
	Location  *time.Location
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// registers shared templates, builds the backend client and the
// per-session state registry, and starts the maintenance jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return fmt.Errorf("startup: runtime not allocated")
	}
	resources.LoadSharedTemplates()
	if n := timeouts.ConfigureFromEnv(logger); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	rt, err := newRuntime(appCfg, deps, logger)
	if err != nil {
		return err
	}
	*deps.Runtime = *rt
	deps.Runtime.Scheduler.Start()
	logger.Info("background jobs started", zap.Strings("jobs", deps.Runtime.Scheduler.Jobs()))
	return nil
}

// newRuntime builds the Runtime without starting anything.
func newRuntime(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*Runtime, error) {
	api, err := gateway.New(gateway.Config{
		BaseURL: appCfg.APIBaseURL,
		Timeout: appCfg.APITimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	phones := auditlog.NewPhoneHasher([]byte(appCfg.PhoneHashKey))
	rt := &Runtime{
		API:      api,
		States:   appstate.NewRegistry(),
		Limiter:  ratelimit.NewOTPLimiter(appCfg.OTPRateLimit, appCfg.OTPRateWindow),
		Location: location(appCfg.TimeZone, logger),
	}

	// Without a database, audit events still reach the zap log.
	var store *auditstore.Store
	var events auditlog.EventStore
	if deps.MongoDatabase != nil {
		store = auditstore.New(deps.MongoDatabase)
		events = store
		rt.Logins = loginstore.New(deps.MongoDatabase, phones)
	}
	rt.Audit = auditlog.New(events, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	}, phones)

	rt.Scheduler = workers.New(logger, timeouts.Long())
	jobs := []workers.Job{
		workers.StateEviction(rt.States, appCfg.StateIdleTTL, logger),
		workers.LimiterSweep(rt.Limiter),
	}
	if store != nil && appCfg.AuditRetention > 0 {
		jobs = append(jobs, workers.AuditPrune(store, appCfg.AuditRetention, logger))
	}
	for _, j := range jobs {
		if err := rt.Scheduler.Add(j); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.Name, err)
		}
	}
	return rt, nil
}
