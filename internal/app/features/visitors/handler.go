package visitors

import (
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

const (
	resource = "visitors"
	basePath = "/visitor"
	tableID  = "visitor-table"
	dialogID = "visitor-dialog"
)

// Handler serves the visitors screen.
type Handler struct {
	API    *gateway.Client
	Audit  *auditlog.Logger
	Screen screen.Config
	Log    *zap.Logger

	// Loc interprets the dialog's date-time inputs, which carry no zone.
	Loc *time.Location
	Now func() time.Time
}

// NewHandler constructs a visitors Handler.
func NewHandler(api *gateway.Client, audit *auditlog.Logger, cfg screen.Config, loc *time.Location, logger *zap.Logger) *Handler {
	cfg.Resource = resource
	cfg.Logger = logger
	if loc == nil {
		loc = time.Local
	}
	return &Handler{API: api, Audit: audit, Screen: cfg, Log: logger, Loc: loc, Now: time.Now}
}

func (h *Handler) controller(st *appstate.State, api *gateway.Client) *screen.Controller[models.Visitor] {
	return screen.Attach(st, st.Visitors, api.ListVisitors, h.Screen)
}
