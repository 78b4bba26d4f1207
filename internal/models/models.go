// filepath: internal/models/models.go
// Package models contains the core data structures for the application.
package models

import (
	"encoding/json"
	"time"
)

// Info represents general information about the service.
type Info struct {
	ServiceName string    `json:"service_name"`
	Version     string    `json:"version"`
	UptimeSince time.Time `json:"uptime_since"`
	LibraryRoot string    `json:"library_root"`
	Categories  int       `json:"categories"`
	Shapes      int       `json:"shapes"`
	DeckPresent bool      `json:"deck_present"`
}

// Category is a named partition of the shape collection. The id doubles as
// the shape-file stem and the asset folder name; it is immutable once created.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryFile is the document persisted as categories.json.
type CategoryFile struct {
	Categories []Category `json:"categories"`
}

// DefaultCategories returns the seed set written on first run when no
// categories.json exists yet. Callers get a fresh slice they may mutate.
func DefaultCategories() []Category {
	return []Category{
		{ID: "basic", Name: "Basic Shapes"},
		{ID: "flowchart", Name: "Flowchart"},
		{ID: "callouts", Name: "Callouts"},
		{ID: "custom", Name: "Custom"},
	}
}

// CategorySummary is a category plus its live shape count, as served to the
// browser grid.
type CategorySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Shape is one reusable vector shape record. Records are stored per category
// in shapes/<categoryId>.json and deliberately carry no write timestamps so
// re-saving identical content reproduces an identical file.
type Shape struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Preview     string          `json:"preview"`
	NativePptx  string          `json:"nativePptx,omitempty"`
	DeckSlide   *int            `json:"deckSlide,omitempty"`
	Definition  json.RawMessage `json:"definition,omitempty"`
}

// ShapeFields is a partial update for a shape record. Keys mirror the JSON
// field names; values stay raw until merged so each field can be decoded
// strictly. The identity keys (id, category) are re-pinned by the
// repository and never take effect.
type ShapeFields map[string]json.RawMessage

// CategoryCreatePayload is used for the POST /api/categories request.
type CategoryCreatePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRenamePayload is used for the PATCH /api/categories/{id} request.
type CategoryRenamePayload struct {
	Name string `json:"name"`
}

// ShapeCapturePayload is the metadata half of the multipart capture request.
// The preview PNG and the optional native PPTX arrive as file parts.
type ShapeCapturePayload struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	DeckSlide   *int            `json:"deckSlide"`
	Definition  json.RawMessage `json:"definition"`
}

// RepairState is the persisted record of the last completed orphan-repair
// pass (the .preview_repair_done file). Modeled as first-class state rather
// than a bare file-existence check so callers can inspect when the pass ran
// and what it did.
type RepairState struct {
	CompletedAt time.Time `json:"completed_at"`
	Repairs     int       `json:"repairs"`
	Duplicates  int       `json:"duplicates"`
	Version     int       `json:"version"`
}

// RepairReport summarizes one orphan-repair invocation.
type RepairReport struct {
	Repaired   int    `json:"repaired"`
	Duplicates int    `json:"duplicates"`
	Skipped    bool   `json:"skipped"`
	Forced     bool   `json:"forced"`
	Message    string `json:"message"`
}

// SweepReport summarizes an asset integrity sweep. The sweep only counts;
// it never moves or deletes files.
type SweepReport struct {
	Categories      int    `json:"categories"`
	Shapes          int    `json:"shapes"`
	MissingPreviews int    `json:"missing_previews"`
	StrayAssets     int    `json:"stray_assets"`
	DuplicateAssets int    `json:"duplicate_assets"`
	Message         string `json:"message"`
}

// MaintenanceState is the inspectable status of the maintenance jobs: the
// persisted repair state (nil until a repair pass completed) and the result
// of the most recent integrity sweep (nil until one ran).
type MaintenanceState struct {
	Repair    *RepairState `json:"repair"`
	LastSweep *SweepReport `json:"last_sweep"`
}

// ImportReport summarizes a library archive import.
type ImportReport struct {
	CategoriesAdded int    `json:"categories_added"`
	ShapesImported  int    `json:"shapes_imported"`
	AssetsRestored  int    `json:"assets_restored"`
	Skipped         int    `json:"skipped"`
	Message         string `json:"message"`
}
