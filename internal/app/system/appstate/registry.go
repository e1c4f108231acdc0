// internal/app/system/appstate/registry.go
package appstate

import (
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/metrics"
)

// Registry owns every live State, keyed by the id stored in the session.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State
	now    func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*State), now: time.Now}
}

// Get returns the State for key and marks it as used.
func (r *Registry) Get(key string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[key]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// GetOrCreate returns the State for key, creating it if needed.
func (r *Registry) GetOrCreate(key string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[key]; ok {
		s.touch(r.now())
		return s
	}
	s := New(key)
	s.touch(r.now())
	r.states[key] = s
	metrics.StateSessions.Set(float64(len(r.states)))
	return s
}

// Drop discards the State for key (on logout).
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, key)
	metrics.StateSessions.Set(float64(len(r.states)))
}

// EvictIdle drops every State not used within ttl and returns how many
// were removed.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	n := 0
	for k, s := range r.states {
		if s.LastSeen().Before(cutoff) {
			delete(r.states, k)
			n++
		}
	}
	metrics.StateSessions.Set(float64(len(r.states)))
	return n
}

// Len returns the number of live States.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Middleware attaches the session's State to the request context.
// keyFn returns the state key for signed-in requests; requests without
// one pass through untouched.
func (r *Registry) Middleware(keyFn func(*http.Request) (string, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if key, ok := keyFn(req); ok && key != "" {
				s := r.GetOrCreate(key)
				req = req.WithContext(WithState(req.Context(), s))
			}
			next.ServeHTTP(w, req)
		})
	}
}
