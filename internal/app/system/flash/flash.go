// Package flash carries toast notifications across a redirect, or back to
// HTMX in a response header.
//
// Full-page flows (post/redirect/get) store toasts in a signed cookie that
// the next page render pops. HTMX partial responses skip the cookie and put
// the toasts in an HX-Trigger header instead, which the layout script turns
// into notifications.
package flash

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// Kind is the style of a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Toast is one notification.
type Toast struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// TriggerEvent is the client-side event name listened for by the layout.
const TriggerEvent = "visitdesk:toast"

const cookieName = "visitdesk-flash"

// maxToasts bounds the cookie size.
const maxToasts = 5

// Flash reads and writes toasts.
type Flash struct {
	codec  *securecookie.SecureCookie
	secure bool
	log    *zap.Logger
}

// New returns a Flash signing cookies with hashKey.
func New(hashKey []byte, secure bool, logger *zap.Logger) *Flash {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(300)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Flash{codec: codec, secure: secure, log: logger}
}

// Add queues a toast for the next full page render.
func (f *Flash) Add(w http.ResponseWriter, r *http.Request, kind Kind, msg string) {
	toasts := append(f.read(r), Toast{Kind: kind, Message: msg})
	if len(toasts) > maxToasts {
		toasts = toasts[len(toasts)-maxToasts:]
	}
	enc, err := f.codec.Encode(cookieName, toasts)
	if err != nil {
		f.log.Warn("flash encode failed", zap.Error(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    enc,
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued toasts and clears the cookie.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) []Toast {
	toasts := f.read(r)
	if len(toasts) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return toasts
}

func (f *Flash) read(r *http.Request) []Toast {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	var toasts []Toast
	if err := f.codec.Decode(cookieName, c.Value, &toasts); err != nil {
		return nil
	}
	return toasts
}

// Trigger sets the HX-Trigger header so an HTMX response shows toasts
// without a page load. It must be called before the body is written.
func Trigger(w http.ResponseWriter, toasts ...Toast) {
	if len(toasts) == 0 {
		return
	}
	b, err := json.Marshal(map[string][]Toast{TriggerEvent: toasts})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

// Notify shows a toast on whichever channel fits r: the HX-Trigger header
// for HTMX requests, the cookie otherwise.
func (f *Flash) Notify(w http.ResponseWriter, r *http.Request, kind Kind, msg string) {
	if r.Header.Get("HX-Request") == "true" {
		Trigger(w, Toast{Kind: kind, Message: msg})
		return
	}
	f.Add(w, r, kind, msg)
}
