// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

const (
	resource = "users"
	basePath = "/user"
	tableID  = "user-table"
	dialogID = "user-dialog"
)

// Handler serves the users screen.
type Handler struct {
	API    *gateway.Client
	Audit  *auditlog.Logger
	Screen screen.Config
	Log    *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(api *gateway.Client, audit *auditlog.Logger, cfg screen.Config, logger *zap.Logger) *Handler {
	cfg.Resource = resource
	cfg.Logger = logger
	return &Handler{API: api, Audit: audit, Screen: cfg, Log: logger}
}

func (h *Handler) controller(st *appstate.State, api *gateway.Client) *screen.Controller[models.User] {
	return screen.Attach(st, st.Users, api.ListUsers, h.Screen)
}
