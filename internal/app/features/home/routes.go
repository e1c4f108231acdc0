package home

import "github.com/go-chi/chi/v5"

// Routes mounts the public pages at the router root.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Get("/privacypolicy", h.ServePrivacy)
	r.Get("/termsandconditions", h.ServeTerms)
	return r
}
