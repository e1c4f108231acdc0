// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes mounts the sign-in flow under /auth/login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/otp", h.HandleRequestOTP)
	r.Post("/verify", h.HandleVerify)
	return r
}
