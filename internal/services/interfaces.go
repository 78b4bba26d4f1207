// filepath: internal/services/interfaces.go
package services

import (
	"context"
	"io"
	"mime/multipart"

	"shapehub/internal/models"
)

// Auditor defines the interface for recording noteworthy library events.
type Auditor interface {
	// Log records an event.
	// ctx: context to trace request IDs (if available)
	// action: what happened (e.g., "category.create", "shape.move")
	// actor: who did it (always "local" for the desktop backend today)
	// resource: what was affected (e.g., "flowchart", "Shape:01J8...")
	// details: structured metadata about the event
	Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{})
}

// InfoService defines the interface for the info service.
type InfoService interface {
	GetInfo() models.Info
}

// CategoryService defines the interface for category management.
type CategoryService interface {
	ListCategories() ([]models.CategorySummary, error)
	CreateCategory(payload models.CategoryCreatePayload) (*models.Category, error)
	RenameCategory(id string, payload models.CategoryRenamePayload) (*models.Category, error)
	DeleteCategory(id string) error
}

// ShapeService defines the interface for shape capture and management.
type ShapeService interface {
	GetShapes(category string) ([]models.Shape, error)
	GetShape(category, id string) (*models.Shape, error)
	CaptureShape(metadataStr string, preview multipart.File, previewHeader *multipart.FileHeader, native multipart.File, nativeHeader *multipart.FileHeader) (*models.Shape, error)
	UpdateShape(category, id string, fields models.ShapeFields) (*models.Shape, error)
	MoveShape(category, id, targetCategory string) (*models.Shape, error)
	DeleteShape(category, id string) error
	PreviewPath(category, id string) (string, error)
	NativePath(category, id string) (string, error)
}

// MaintenanceService defines the interface for the repair and sweep jobs.
type MaintenanceService interface {
	RepairPreviews(force bool) models.RepairReport
	RunSweep() models.SweepReport
	State() *models.MaintenanceState
	Start()
	Stop()
}

// LibraryService defines the interface for whole-library archive transfer.
type LibraryService interface {
	// ExportArchive streams the selected categories (all of them when the
	// selection is empty) as a ZIP archive.
	ExportArchive(ctx context.Context, categories []string, w io.Writer) error
	ImportArchive(r io.ReaderAt, size int64) (*models.ImportReport, error)
}
