// filepath: internal/api/handlers/main.go
package handlers

import (
	"shapehub/internal/config"
	"shapehub/internal/services"
)

// Handlers provides a struct to hold shared dependencies for API handlers.
type Handlers struct {
	// --- Depend on interfaces, not concrete structs ---
	Info        services.InfoService
	Category    services.CategoryService
	Shape       services.ShapeService
	Maintenance services.MaintenanceService
	Library     services.LibraryService

	Cfg *config.Config
}

// NewHandlers creates a new instance of Handlers with its dependencies.
// --- Accept interfaces as parameters ---
func NewHandlers(
	info services.InfoService,
	category services.CategoryService,
	shape services.ShapeService,
	maintenance services.MaintenanceService,
	library services.LibraryService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		Info:        info,
		Category:    category,
		Shape:       shape,
		Maintenance: maintenance,
		Library:     library,
		Cfg:         cfg,
	}
}
