package health

import "github.com/go-chi/chi/v5"

// Routes serves the probe under /health. HEAD is answered too, for load
// balancers that probe without reading a body.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
