// filepath: internal/preview/assets.go
// Package preview owns the physical PNG files backing shape records:
// saving uploads, moving files between category folders, and repairing
// previews that ended up in the wrong folder. Everything except saving is
// best effort and never fails the caller.
package preview

import (
	"fmt"
	"io"
	"os"
	"time"

	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/models"
)

// renameFile is swapped in tests to simulate a cross-device rename failure.
var renameFile = os.Rename

// Catalog is the slice of the store the asset scans need.
type Catalog interface {
	LoadCategories() ([]models.Category, error)
	GetShapes(category string) ([]models.Shape, error)
}

// RelocationResult describes what physically happened during a relocate.
type RelocationResult struct {
	// RelPath is the library-relative preview path of the new location. It
	// is authoritative metadata even when no file move happened.
	RelPath string
	// Moved reports that the file now exists at the new location.
	Moved bool
	// Duplicated reports that the copy fallback ran and the old file was
	// intentionally left behind.
	Duplicated bool
}

// Manager performs the file work for preview assets under one library.
type Manager struct {
	Paths *library.Paths
}

// NewManager creates a preview asset manager.
func NewManager(paths *library.Paths) *Manager {
	return &Manager{Paths: paths}
}

// SavePreview streams an uploaded preview PNG into its expected location
// and returns the library-relative path for the shape record.
func (m *Manager) SavePreview(category, shapeID string, r io.Reader) (string, error) {
	dst, err := m.Paths.PreviewFile(category, shapeID)
	if err != nil {
		return "", err
	}
	if _, err := library.SaveFile(r, dst); err != nil {
		return "", fmt.Errorf("could not store preview for shape %q: %w", shapeID, err)
	}
	return library.PreviewRel(category, shapeID), nil
}

// SaveNative streams an uploaded native snippet into the native folder and
// returns the library-relative path for the shape record.
func (m *Manager) SaveNative(shapeID string, r io.Reader) (string, error) {
	dst, err := m.Paths.NativeFile(shapeID)
	if err != nil {
		return "", err
	}
	if _, err := library.SaveFile(r, dst); err != nil {
		return "", fmt.Errorf("could not store native snippet for shape %q: %w", shapeID, err)
	}
	return library.NativeRel(shapeID), nil
}

// ResolvePreview returns the absolute path a shape's preview should live
// at, preferring the path declared in the record over the derived default.
func (m *Manager) ResolvePreview(shape *models.Shape) (string, error) {
	if shape.Preview != "" {
		return m.Paths.ResolveRel(shape.Preview)
	}
	return m.Paths.PreviewFile(shape.Category, shape.ID)
}

// Relocate moves a shape's preview from one category folder to another.
// It tries an atomic rename first and falls back to a copy that leaves the
// source file in place; losing a preview is worse than duplicating one.
// The returned relative path is valid metadata even when no file moved.
func (m *Manager) Relocate(shapeID, oldCategory, newCategory string) RelocationResult {
	result := RelocationResult{RelPath: library.PreviewRel(newCategory, shapeID)}
	if oldCategory == newCategory {
		return result
	}

	src, err := m.Paths.PreviewFile(oldCategory, shapeID)
	if err != nil {
		logging.Log.Warnf("Relocate: bad source location for shape '%s': %v", shapeID, err)
		return result
	}
	dst, err := m.Paths.PreviewFile(newCategory, shapeID)
	if err != nil {
		logging.Log.Warnf("Relocate: bad destination location for shape '%s': %v", shapeID, err)
		return result
	}

	if _, err := os.Stat(src); err != nil {
		if !os.IsNotExist(err) {
			logging.Log.Warnf("Relocate: could not stat preview %s: %v", src, err)
		}
		logging.Log.Debugf("Relocate: no preview at %s for shape '%s'. Nothing to move.", src, shapeID)
		return result
	}

	dstDir, err := m.Paths.CategoryAssetsDir(newCategory)
	if err == nil {
		err = os.MkdirAll(dstDir, 0755)
	}
	if err != nil {
		logging.Log.Errorf("Relocate: could not prepare asset folder for category '%s': %v", newCategory, err)
		return result
	}

	renameErr := renameFile(src, dst)
	if renameErr == nil {
		result.Moved = true
		logging.Log.Debugf("Relocate: moved preview %s -> %s", src, dst)
		return result
	}
	logging.Log.Warnf("Relocate: rename failed for %s -> %s (%v). Falling back to copy, source stays in place.", src, dst, renameErr)

	if _, err := library.CopyFile(src, dst); err != nil {
		logging.Log.Errorf("Relocate: copy fallback failed for %s -> %s: %v", src, dst, err)
		return result
	}
	result.Moved = true
	result.Duplicated = true
	return result
}

// RepairOrphans scans every shape record whose preview file is missing and
// searches the other asset folders for a file named <id>.png, moving the
// first match into the expected place. The scan runs once per library; a
// persisted marker suppresses later runs unless force is set. All failures
// are logged and degrade to "did not repair".
func (m *Manager) RepairOrphans(catalog Catalog, force bool) models.RepairReport {
	report := models.RepairReport{Forced: force}
	markerPath := m.Paths.RepairStateFile()

	if !force {
		st, err := LoadState(markerPath)
		if err != nil {
			logging.Log.Warnf("RepairOrphans: could not read marker: %v. Running anyway.", err)
		} else if st != nil {
			report.Skipped = true
			report.Message = fmt.Sprintf("repair already completed at %s", st.CompletedAt.Format(time.RFC3339))
			logging.Log.Debugf("RepairOrphans: %s", report.Message)
			return report
		}
	}

	categories, err := catalog.LoadCategories()
	if err != nil {
		logging.Log.Errorf("RepairOrphans: could not load categories: %v", err)
		report.Message = "repair aborted: categories unavailable"
		return report
	}

	folders := m.assetFolders()

	for _, cat := range categories {
		shapes, err := catalog.GetShapes(cat.ID)
		if err != nil {
			logging.Log.Warnf("RepairOrphans: could not load shapes for '%s': %v. Skipping category.", cat.ID, err)
			continue
		}
		for i := range shapes {
			shape := shapes[i]
			expected, err := m.ResolvePreview(&shape)
			if err != nil {
				logging.Log.Warnf("RepairOrphans: bad preview path on shape '%s': %v", shape.ID, err)
				continue
			}
			if _, err := os.Stat(expected); err == nil {
				continue
			}

			for _, folder := range folders {
				if folder == cat.ID {
					continue
				}
				candidate, err := m.Paths.PreviewFile(folder, shape.ID)
				if err != nil {
					continue
				}
				if _, err := os.Stat(candidate); err != nil {
					continue
				}

				res := m.Relocate(shape.ID, folder, cat.ID)
				if res.Moved {
					report.Repaired++
					logging.Log.Infof("RepairOrphans: preview for shape '%s' found in '%s', moved to '%s'", shape.ID, folder, cat.ID)
				}
				if res.Duplicated {
					report.Duplicates++
				}
				break
			}
		}
	}

	st := models.RepairState{
		CompletedAt: time.Now().UTC(),
		Repairs:     report.Repaired,
		Duplicates:  report.Duplicates,
	}
	if err := SaveState(markerPath, st); err != nil {
		logging.Log.Errorf("RepairOrphans: could not persist marker: %v", err)
	}

	report.Message = fmt.Sprintf("repaired %d preview(s)", report.Repaired)
	return report
}

// assetFolders lists the physical category folders under assets/. Folders
// of deleted categories still count; they are exactly where orphans hide.
func (m *Manager) assetFolders() []string {
	entries, err := os.ReadDir(m.Paths.AssetsDir())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Log.Warnf("Could not list asset folders: %v", err)
		}
		return nil
	}
	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	return folders
}
