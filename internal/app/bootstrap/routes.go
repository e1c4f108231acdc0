// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	apartmentsfeature "github.com/dalemusser/visitdesk/internal/app/features/apartments"
	dashboardfeature "github.com/dalemusser/visitdesk/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/visitdesk/internal/app/features/errors"
	healthfeature "github.com/dalemusser/visitdesk/internal/app/features/health"
	homefeature "github.com/dalemusser/visitdesk/internal/app/features/home"
	loginfeature "github.com/dalemusser/visitdesk/internal/app/features/login"
	logoutfeature "github.com/dalemusser/visitdesk/internal/app/features/logout"
	societiesfeature "github.com/dalemusser/visitdesk/internal/app/features/societies"
	usersfeature "github.com/dalemusser/visitdesk/internal/app/features/users"
	visitorsfeature "github.com/dalemusser/visitdesk/internal/app/features/visitors"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"github.com/dalemusser/visitdesk/internal/app/system/gates"
	"github.com/dalemusser/visitdesk/internal/app/system/metrics"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Every request passes, in order, through request metrics, CSRF
// protection, session loading, the route gate and the per-session state
// middleware. The gate is the single place that decides who may open
// which screen; feature routers only add RequireSignedIn where a handler
// needs a user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.API == nil {
		return nil, fmt.Errorf("build handler: runtime not started")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	viewdata.Init(appCfg.SiteName, flash.New([]byte(appCfg.SessionKey), secure, logger))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)

	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(csrfMiddleware(appCfg.CSRFKey, secure, logger))
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(gates.Middleware(logger))
	r.Use(rt.States.Middleware(auth.StateKey))
	r.Use(screen.ResolveSociety(rt.API, sessionMgr, logger))

	// Operational endpoints
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, appCfg.APIBaseURL, logger)))
	r.Handle("/metrics", metrics.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	r.Mount("/", homefeature.Routes(homefeature.NewHandler(logger)))

	// Authentication
	loginHandler := loginfeature.NewHandler(rt.API, sessionMgr, rt.States, rt.Limiter, rt.Logins, rt.Audit, logger)
	r.Mount("/auth/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, rt.States, rt.Audit, logger)
	r.With(sessionMgr.RequireSignedIn).Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	r.Get("/auth/error", errorsHandler.AuthError)
	r.Get("/access-denied", errorsHandler.AccessDenied)
	r.Get("/forbidden", errorsHandler.Forbidden)

	// Screens
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(rt.API, rt.Location, logger)))

	screenCfg := func(resource string) screen.Config {
		return screen.Config{
			Resource:     resource,
			PageSize:     appCfg.PageSize,
			Debounce:     appCfg.SearchDebounce,
			FetchTimeout: timeouts.Fetch(),
			Logger:       logger,
		}
	}
	r.Mount("/user", usersfeature.Routes(usersfeature.NewHandler(rt.API, rt.Audit, screenCfg("users"), logger)))
	r.Mount("/society", societiesfeature.Routes(societiesfeature.NewHandler(rt.API, rt.Audit, screenCfg("societies"), logger)))
	r.Mount("/department", apartmentsfeature.Routes(apartmentsfeature.NewHandler(rt.API, rt.Audit, screenCfg("apartments"), logger)))
	r.Mount("/visitor", visitorsfeature.Routes(visitorsfeature.NewHandler(rt.API, rt.Audit, screenCfg("visitors"), rt.Location, logger)))

	return r, nil
}

// csrfMiddleware wraps gorilla/csrf. Outside prod the app is served over
// plain HTTP, where gorilla/csrf must be told so before it checks Referer.
func csrfMiddleware(key string, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		[]byte(key),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(csrf.FailureReason(r)))
			if r.Header.Get("HX-Request") == "true" {
				flash.Trigger(w, flash.Toast{Kind: flash.Error, Message: "Your form expired. Please reload the page."})
				w.Header().Set("HX-Reswap", "none")
				w.WriteHeader(http.StatusForbidden)
				return
			}
			errorsfeature.RenderForbidden(w, r, "Your form expired. Please go back and try again.", "/")
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
