package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	API *gateway.Client
	Log *zap.Logger
	Loc *time.Location
	Now func() time.Time
}

func NewHandler(api *gateway.Client, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{API: api, Log: logger, Loc: loc, Now: time.Now}
}

type pageData struct {
	viewdata.BaseVM
	Stats     Stats
	NoSociety bool
	Error     string
}

// ServeDashboard draws the charts for the signed-in user's current society.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)

	data := pageData{BaseVM: viewdata.NewBaseVM(w, r, "Dashboard", "/dashboard")}

	society, found, err := h.loadSociety(r, st, api)
	switch {
	case gateway.IsUnauthorized(err):
		screen.Expired(w, r)
		return
	case err != nil:
		h.Log.Warn("dashboard: society load failed", zap.Error(err))
		data.Error = gateway.UserMessage(err)
	case !found:
		data.NoSociety = true
	default:
		data.Stats = ComputeStats(society, h.Now().In(h.Loc))
	}

	templates.Render(w, r, "dashboard", data)
}

// loadSociety fetches the user's current society with its nested records.
// found is false when the user has no current society, which is normal
// for a SuperAdmin.
func (h *Handler) loadSociety(r *http.Request, st *appstate.State, api *gateway.Client) (models.Society, bool, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.API())
	defer cancel()

	id := authz.CurrentSocietyID(r)
	if id == "" {
		prof, err := st.EnsureProfile(ctx, api.Me)
		if err != nil {
			return models.Society{}, false, err
		}
		id = prof.CurrentSocietyRef()
	}
	if id == "" {
		return models.Society{}, false, nil
	}

	s, err := api.GetSociety(ctx, id)
	if err != nil {
		return models.Society{}, true, err
	}
	return s, true, nil
}
