package api

import (
	"shapehub/internal/api/handlers"

	"github.com/gorilla/mux"
)

// SetupRouter configures the main router and its sub-routers.
// The backend serves a single local user, so there is no auth layer;
// the extension taskpane talks to it over the loopback interface.
func SetupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Public Endpoints
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	r.HandleFunc("/api/info", h.GetInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()

	// Attach resource-specific routes
	addCategoryRoutes(apiRouter, h)
	addShapeRoutes(apiRouter, h)
	addMaintenanceRoutes(apiRouter, h)
	addLibraryRoutes(apiRouter, h)

	return r
}

// addCategoryRoutes configures routes related to category management.
func addCategoryRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/categories", h.GetCategories).Methods("GET")
	r.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	r.HandleFunc("/categories/{id}", h.RenameCategory).Methods("PATCH")
	r.HandleFunc("/categories/{id}", h.DeleteCategory).Methods("DELETE")
}

// addShapeRoutes configures routes related to shape records and their assets.
func addShapeRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/shapes", h.GetShapes).Methods("GET")
	r.HandleFunc("/shapes", h.CaptureShape).Methods("POST")
	r.HandleFunc("/shapes/{category}/{id}", h.GetShape).Methods("GET")
	r.HandleFunc("/shapes/{category}/{id}", h.UpdateShape).Methods("PATCH")
	r.HandleFunc("/shapes/{category}/{id}", h.DeleteShape).Methods("DELETE")
	r.HandleFunc("/shapes/{category}/{id}/preview", h.GetShapePreview).Methods("GET")
	r.HandleFunc("/shapes/{category}/{id}/native", h.GetShapeNative).Methods("GET")
}

// addMaintenanceRoutes configures routes for the repair and sweep tasks.
func addMaintenanceRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/maintenance/repair", h.TriggerRepair).Methods("POST")
	r.HandleFunc("/maintenance/sweep", h.TriggerSweep).Methods("POST")
	r.HandleFunc("/maintenance/state", h.GetMaintenanceState).Methods("GET")
}

// addLibraryRoutes configures routes for whole-library archive transfer.
func addLibraryRoutes(r *mux.Router, h *handlers.Handlers) {
	r.HandleFunc("/export", h.ExportLibrary).Methods("GET")
	r.HandleFunc("/import", h.ImportLibrary).Methods("POST")
}
