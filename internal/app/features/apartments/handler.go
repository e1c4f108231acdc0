// internal/app/features/apartments/handler.go
package apartments

import (
	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

// The screen is labelled "Departments" and served from /department; the
// backend calls the same records apartments.
const (
	resource = "apartments"
	basePath = "/department"
	tableID  = "department-table"
	dialogID = "department-dialog"
)

// Handler serves the departments screen.
type Handler struct {
	API    *gateway.Client
	Audit  *auditlog.Logger
	Screen screen.Config
	Log    *zap.Logger
}

// NewHandler constructs an apartments Handler.
func NewHandler(api *gateway.Client, audit *auditlog.Logger, cfg screen.Config, logger *zap.Logger) *Handler {
	cfg.Resource = resource
	cfg.Logger = logger
	return &Handler{API: api, Audit: audit, Screen: cfg, Log: logger}
}

func (h *Handler) controller(st *appstate.State, api *gateway.Client) *screen.Controller[models.Apartment] {
	return screen.Attach(st, st.Apartments, api.ListApartments, h.Screen)
}
