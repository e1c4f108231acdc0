package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "visitdesk-session"

	// DefaultMaxAge is the fixed session lifetime issued by the backend.
	DefaultMaxAge = 5 * 24 * time.Hour

	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = "/auth/login"

	// ExpiredPath ends a session whose token the backend has rejected.
	ExpiredPath = "/auth/logout/expired"

	tokenKey     = "token"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userRoleKey  = "user_role"
	societyKey   = "society_id"
	stateKeyKey  = "state_key"
	expiresAtKey = "expires_at"
)

// SessionUser is what we keep in the session cookie and inject into r.Context().
type SessionUser struct {
	ID        string
	Name      string
	Role      models.Role
	SocietyID string
	Token     string
	StateKey  string
	ExpiresAt time.Time
}


type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns r carrying u as its signed-in user.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	maxAge time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, maxAge: maxAge, log: logger, now: time.Now}, nil
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// GetSession returns the named session for r. A cookie that no longer
// decodes (rotated key, tampering) yields a fresh session, not an error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn stores u in the session. The cookie lifetime is the configured
// max age, shortened to the token's own expiry when that comes first.
// A state key is generated when u does not carry one.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	if u.StateKey == "" {
		u.StateKey = uuid.NewString()
	}

	ttl := sm.maxAge
	if !u.ExpiresAt.IsZero() {
		if left := u.ExpiresAt.Sub(sm.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return errors.New("session token already expired")
	}
	if u.ExpiresAt.IsZero() {
		u.ExpiresAt = sm.now().Add(ttl)
	}

	sess.Values[tokenKey] = u.Token
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userRoleKey] = string(u.Role)
	sess.Values[societyKey] = u.SocietyID
	sess.Values[stateKeyKey] = u.StateKey
	sess.Values[expiresAtKey] = u.ExpiresAt.Unix()

	sess.Options.MaxAge = int(ttl.Seconds())
	return sess.Save(r, w)
}

// UpdateProfile refreshes the display fields after the profile loads.
func (sm *SessionManager) UpdateProfile(w http.ResponseWriter, r *http.Request, name, societyID string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	sess.Values[userNameKey] = name
	sess.Values[societyKey] = societyID
	return sess.Save(r, w)
}

// SignOut expires the session cookie and returns the state key it held.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := sm.GetSession(r)
	if err != nil {
		return "", err
	}
	key := getString(sess, stateKeyKey)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return key, sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are logged in.
// Sessions whose token has expired are treated as signed out.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Warn("session load failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		token := getString(sess, tokenKey)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:        getString(sess, userIDKey),
			Name:      getString(sess, userNameKey),
			Role:      models.Role(getString(sess, userRoleKey)),
			SocietyID: getString(sess, societyKey),
			Token:     token,
			StateKey:  getString(sess, stateKeyKey),
		}
		if exp, ok := sess.Values[expiresAtKey].(int64); ok {
			u.ExpiresAt = time.Unix(exp, 0)
			if !u.ExpiresAt.After(sm.now()) {
				next.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// StateKey returns the per-session state key of the signed-in user.
// It is the key function handed to appstate.Registry.Middleware.
func StateKey(r *http.Request) (string, bool) {
	u, ok := CurrentUser(r)
	if !ok || u.StateKey == "" {
		return "", false
	}
	return u.StateKey, true
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /auth/login?return=...
//   - HTML: 303 redirect to /auth/login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// helpers

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	dest := LoginPath + "?return=" + url.QueryEscape(r.URL.RequestURI())

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
