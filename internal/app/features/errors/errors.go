// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for every error page.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
	Action  string // label of the back button
}

// Auth error codes carried in /auth/error?error=<code>.
const (
	CodeConfiguration = "Configuration"
	CodeAccessDenied  = "AccessDenied"
	CodeVerification  = "Verification"
	CodeCredentials   = "CredentialsSignin"
	CodeDefault       = "Default"
)

var authMessages = map[string]string{
	CodeConfiguration: "There is a problem with the server configuration. Please contact your administrator.",
	CodeAccessDenied:  "You do not have permission to sign in.",
	CodeVerification:  "The sign in code has expired or has already been used.",
	CodeCredentials:   "Sign in failed. Check the details you provided are correct.",
	CodeDefault:       "Unable to sign in.",
}

// AuthMessage returns the friendly text for an auth error code. Unknown
// codes get the default message.
func AuthMessage(code string) string {
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	return authMessages[CodeDefault]
}

// Handler is the errors feature handler.
// No backend needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// AuthError renders the sign-in failure page.
// GET /auth/error?error=<code>
func (h *Handler) AuthError(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")

	status := http.StatusBadRequest
	if code == CodeAccessDenied {
		status = http.StatusForbidden
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Sign in error", "/auth/login"),
		Heading: "Error",
		Message: AuthMessage(code),
		Action:  "Go back to sign in",
	}
	data.BackURL = "/auth/login"

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// AccessDenied renders the page shown when a role may not sign in at all.
// GET /access-denied
func (h *Handler) AccessDenied(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Access denied", "/"),
		Heading: "Access denied",
		Message: "Your account is not allowed to use this application.",
		Action:  "Back",
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/dashboard")
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Not found", "/"),
		Heading: "Page not found",
		Message: "The page you asked for does not exist.",
		Action:  "Back",
	}
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", data)
}
