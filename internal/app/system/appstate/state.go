// Package appstate holds the per-session application state: the four
// cached resource collections, the signed-in user's profile, and the
// screen controllers that drive them.
//
// A State is created when a session first needs one and is handed to
// handlers through the request context. There are no package-level
// singletons; the Registry that owns every State is built in bootstrap.
package appstate

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// State is one session's application state.
type State struct {
	Key string

	Users      *Collection[models.User]
	Societies  *Collection[models.Society]
	Apartments *Collection[models.Apartment]
	Visitors   *Collection[models.Visitor]

	lastSeen atomic.Int64 // unix nanos

	mu          sync.Mutex
	profile     models.User
	haveProfile bool
	attached    map[string]any
}

// New returns an empty State for key.
func New(key string) *State {
	s := &State{
		Key:        key,
		Users:      NewCollection[models.User](),
		Societies:  NewCollection[models.Society](),
		Apartments: NewCollection[models.Apartment](),
		Visitors:   NewCollection[models.Visitor](),
		attached:   make(map[string]any),
	}
	s.touch(time.Now())
	return s
}

func (s *State) touch(t time.Time) { s.lastSeen.Store(t.UnixNano()) }

// LastSeen returns when the state was last used by a request.
func (s *State) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Profile returns the cached profile of the signed-in user.
func (s *State) Profile() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.haveProfile
}

// SetProfile replaces the cached profile.
func (s *State) SetProfile(u models.User) {
	s.mu.Lock()
	s.profile, s.haveProfile = u, true
	s.mu.Unlock()
}

// EnsureProfile returns the cached profile, loading it with fetch first
// if necessary. A failed load is not cached.
func (s *State) EnsureProfile(ctx context.Context, fetch func(context.Context) (models.User, error)) (models.User, error) {
	if u, ok := s.Profile(); ok {
		return u, nil
	}
	u, err := fetch(ctx)
	if err != nil {
		return models.User{}, err
	}
	s.SetProfile(u)
	return u, nil
}

// Attach returns the value stored under key, calling build to create it
// the first time. It is how screen controllers are kept per session.
func Attach[V any](s *State, key string, build func() V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.attached[key].(V); ok {
		return v
	}
	v := build()
	s.attached[key] = v
	return v
}

type ctxKey struct{}

// WithState stores s in ctx.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the State stored in ctx.
func FromContext(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(ctxKey{}).(*State)
	return s, ok && s != nil
}

// FromRequest returns the State for r.
func FromRequest(r *http.Request) (*State, bool) {
	return FromContext(r.Context())
}
