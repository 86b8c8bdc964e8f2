package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/branchsync/internal/buildinfo"
	"github.com/xelth-com/branchsync/internal/config"
	"github.com/xelth-com/branchsync/internal/middleware"
)

// Router wraps the mux router
type Router struct {
	*mux.Router
	cfg *config.Config
}

// NewRouter creates the HTTP router with the operator surface
func NewRouter(cfg *config.Config, sync *SyncHandler) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		cfg:    cfg,
	}
	r.Use(middleware.RequestLogging)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	sync.RegisterRoutes(r.Router)

	return r
}

// healthCheck returns the health status of the service
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"role":       r.cfg.Remote.Role,
		"commit":     buildinfo.CommitHash,
		"started_at": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
