package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client     *mongo.Client
	APIBaseURL string
	Log        *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the backend
// base URL and logger.
func NewHandler(client *mongo.Client, apiBaseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     client,
		APIBaseURL: apiBaseURL,
		Log:        logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"configured" }
//
// When MongoDB is unreachable or no backend URL is set: 503 with
// "status":"error" and a message naming the failing part.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  "configured",
	}

	if h.APIBaseURL == "" {
		resp.Status = "error"
		resp.Backend = "missing"
		resp.Message = "Backend URL not configured"
	}

	if h.Client == nil {
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()
		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
