package home

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public pages.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot shows the landing page, or sends a signed-in user straight to
// the dashboard.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.page(w, r, "home", "Welcome")
}

func (h *Handler) ServePrivacy(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "privacy_policy", "Privacy Policy")
}

func (h *Handler) ServeTerms(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "terms_and_conditions", "Terms and Conditions")
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, name, title string) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(w, r, title, "/"),
	}
	templates.Render(w, r, name, data)
}
