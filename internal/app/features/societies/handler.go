// internal/app/features/societies/handler.go
package societies

import (
	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

const (
	resource = "societies"
	basePath = "/society"
	tableID  = "society-table"
	dialogID = "society-dialog"
)

// Handler serves the societies screen.
type Handler struct {
	API    *gateway.Client
	Audit  *auditlog.Logger
	Screen screen.Config
	Log    *zap.Logger
}

// NewHandler constructs a societies Handler. cfg carries the shared page
// size and debounce; the resource name and logger are filled in here.
func NewHandler(api *gateway.Client, audit *auditlog.Logger, cfg screen.Config, logger *zap.Logger) *Handler {
	cfg.Resource = resource
	cfg.Logger = logger
	return &Handler{API: api, Audit: audit, Screen: cfg, Log: logger}
}

func (h *Handler) controller(st *appstate.State, api *gateway.Client) *screen.Controller[models.Society] {
	return screen.Attach(st, st.Societies, api.ListSocieties, h.Screen)
}
