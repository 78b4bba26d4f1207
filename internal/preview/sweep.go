// filepath: internal/preview/sweep.go
package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shapehub/internal/logging"
	"shapehub/internal/models"
)

// Sweep walks all shape records and asset folders and reports integrity
// counts. It only counts; nothing is moved or deleted.
//
// A missing preview is a record whose expected file does not exist. A stray
// asset is a PNG sitting in a folder whose category has no record for it; a
// stray whose owning record lives in another category with its own file
// intact is counted as a duplicate (the leftover of a copy fallback).
func (m *Manager) Sweep(catalog Catalog) models.SweepReport {
	report := models.SweepReport{}

	categories, err := catalog.LoadCategories()
	if err != nil {
		logging.Log.Errorf("Sweep: could not load categories: %v", err)
		report.Message = "sweep aborted: categories unavailable"
		return report
	}
	report.Categories = len(categories)

	// owned[folder] holds the shape ids recorded for that category;
	// healthy[id] reports that some record with that id has its file.
	owned := make(map[string]map[string]bool)
	healthy := make(map[string]bool)

	for _, cat := range categories {
		shapes, err := catalog.GetShapes(cat.ID)
		if err != nil {
			logging.Log.Warnf("Sweep: could not load shapes for '%s': %v. Skipping category.", cat.ID, err)
			continue
		}
		owned[cat.ID] = make(map[string]bool, len(shapes))
		report.Shapes += len(shapes)

		for i := range shapes {
			shape := shapes[i]
			owned[cat.ID][shape.ID] = true

			expected, err := m.ResolvePreview(&shape)
			if err != nil {
				logging.Log.Warnf("Sweep: bad preview path on shape '%s': %v", shape.ID, err)
				report.MissingPreviews++
				continue
			}
			if _, err := os.Stat(expected); err != nil {
				report.MissingPreviews++
				continue
			}
			healthy[shape.ID] = true
		}
	}

	for _, folder := range m.assetFolders() {
		dir, err := m.Paths.CategoryAssetsDir(folder)
		if err != nil {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			logging.Log.Warnf("Sweep: could not list asset folder '%s': %v", folder, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
				continue
			}
			stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			if owned[folder][stem] {
				continue
			}
			report.StrayAssets++
			if healthy[stem] {
				report.DuplicateAssets++
			}
		}
	}

	report.Message = fmt.Sprintf("%d shapes checked, %d missing preview(s), %d stray asset(s), %d duplicate(s)",
		report.Shapes, report.MissingPreviews, report.StrayAssets, report.DuplicateAssets)
	return report
}
