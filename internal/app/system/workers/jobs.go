// internal/app/system/workers/jobs.go
package workers

import (
	"context"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"go.uber.org/zap"
)

// StateEviction drops per-session state idle for longer than ttl.
func StateEviction(reg *appstate.Registry, ttl time.Duration, logger *zap.Logger) Job {
	return Job{
		Name: "state-eviction",
		Spec: "@every 1m",
		Run: func(context.Context) error {
			if n := reg.EvictIdle(ttl); n > 0 {
				logger.Info("evicted idle session state", zap.Int("count", n), zap.Int("live", reg.Len()))
			}
			return nil
		},
	}
}

// Pruner deletes records older than a cutoff. *audit.Store satisfies it.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPrune deletes audit events older than retention, daily at 03:00 UTC.
func AuditPrune(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name: "audit-prune",
		Spec: "0 3 * * *",
		Run: func(ctx context.Context) error {
			n, err := p.DeleteBefore(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned audit events", zap.Int64("count", n))
			}
			return nil
		},
	}
}

// Sweeper drops expired entries. *ratelimit.OTPLimiter satisfies it.
type Sweeper interface {
	Sweep() int
}

// LimiterSweep clears expired rate-limit windows.
func LimiterSweep(s Sweeper) Job {
	return Job{
		Name: "ratelimit-sweep",
		Spec: "@every 5m",
		Run: func(context.Context) error {
			s.Sweep()
			return nil
		},
	}
}
