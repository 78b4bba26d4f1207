// filepath: internal/services/library_export.go
package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/repository"
)

var _ LibraryService = (*libraryService)(nil)

type libraryService struct {
	Repo    *repository.Repository
	Paths   *library.Paths
	Version string
	Audit   Auditor
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(repo *repository.Repository, paths *library.Paths, version string, audit Auditor) *libraryService {
	return &libraryService{
		Repo:    repo,
		Paths:   paths,
		Version: version,
		Audit:   audit,
	}
}

// archiveManifest is the informational _metadata.json entry written at the
// top of every exported archive. Import tolerates its absence.
type archiveManifest struct {
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Categories int       `json:"categories"`
	Shapes     int       `json:"shapes"`
}

// ExportArchive streams the selected categories as a ZIP archive mirroring
// the on-disk library layout, so an extracted archive is itself a valid
// library root. An empty selection exports everything including the deck.
func (s *libraryService) ExportArchive(ctx context.Context, categories []string, w io.Writer) error {
	// 1. Resolve the selection against the registry.
	registry, err := s.Repo.LoadCategories()
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	selected, err := filterCategories(registry, categories)
	if err != nil {
		return err
	}

	// 2. Fetch the records up front. Shape lists drive the manifest counts
	// and tell us which native snippets belong to the selection.
	shapesByCategory := make(map[string][]models.Shape, len(selected))
	total := 0
	for _, cat := range selected {
		records, err := s.Repo.GetShapes(cat.ID)
		if err != nil {
			logging.Log.Warnf("Export: Failed to load shapes for '%s': %v", cat.ID, err)
			continue
		}
		shapesByCategory[cat.ID] = records
		total += len(records)
	}

	// 3. Initialize ZIP Writer
	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	// 4. Write _metadata.json
	if err := s.writeManifestToZip(zipWriter, len(selected), total); err != nil {
		logging.Log.Errorf("Export: Failed to write _metadata.json: %v", err)
		return err
	}

	// 5. Write categories.json covering exactly the selection.
	if err := writeCategoriesToZip(zipWriter, selected); err != nil {
		logging.Log.Errorf("Export: Failed to write categories.json: %v", err)
		return err
	}

	// 6. Stream the per-category shape files, previews and native snippets.
	for _, cat := range selected {
		// Check for context cancellation (client disconnect)
		if ctx.Err() != nil {
			logging.Log.Warnf("Export cancelled by client context: %v", ctx.Err())
			return ctx.Err()
		}

		if err := s.writeCategoryToZip(ctx, zipWriter, cat.ID, shapesByCategory[cat.ID]); err != nil {
			return err
		}
	}

	// 7. The consolidated deck only travels with full exports; a partial
	// archive must not smuggle shapes outside the selection.
	if len(categories) == 0 {
		if err := addDiskFileToZip(zipWriter, s.Paths.DeckFile(), "library_deck.pptx"); err != nil {
			if !os.IsNotExist(err) {
				logging.Log.Warnf("Export: Failed to add library deck: %v", err)
			}
		}
	}

	logging.Log.Infof("Exported %d categories with %d shapes", len(selected), total)
	return nil
}

// filterCategories returns the registry entries matching the requested ids,
// in registry order. An empty request selects the whole registry.
func filterCategories(registry []models.Category, requested []string) ([]models.Category, error) {
	if len(requested) == 0 {
		return registry, nil
	}
	known := make(map[string]bool, len(registry))
	for _, cat := range registry {
		known[cat.ID] = true
	}
	wanted := make(map[string]bool, len(requested))
	for _, id := range requested {
		if !known[id] {
			return nil, fmt.Errorf("%w: category %q", ErrNotFound, id)
		}
		wanted[id] = true
	}
	selected := make([]models.Category, 0, len(wanted))
	for _, cat := range registry {
		if wanted[cat.ID] {
			selected = append(selected, cat)
		}
	}
	return selected, nil
}

// writeManifestToZip adds the archive manifest to the zip.
func (s *libraryService) writeManifestToZip(zw *zip.Writer, categories, shapes int) error {
	f, err := zw.Create("_metadata.json")
	if err != nil {
		return err
	}

	// Pretty print JSON
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(archiveManifest{
		Service:    "ShapeHub-API",
		Version:    s.Version,
		ExportedAt: time.Now().UTC(),
		Categories: categories,
		Shapes:     shapes,
	})
}

// writeCategoriesToZip adds a registry file listing the exported categories,
// in the same JSON shape the library keeps on disk.
func writeCategoriesToZip(zw *zip.Writer, selected []models.Category) error {
	f, err := zw.Create("categories.json")
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(models.CategoryFile{Categories: selected})
}

// writeCategoryToZip streams one category's shape file, its asset folder and
// the native snippets of its records. Unreadable files are logged and
// skipped so one broken asset cannot abort a backup.
func (s *libraryService) writeCategoryToZip(ctx context.Context, zw *zip.Writer, categoryID string, records []models.Shape) error {
	shapeFile, err := s.Paths.CategoryShapesFile(categoryID)
	if err != nil {
		return err
	}
	if err := addDiskFileToZip(zw, shapeFile, "shapes/"+categoryID+".json"); err != nil {
		if !os.IsNotExist(err) {
			logging.Log.Warnf("Export: Failed to add shape file for '%s': %v", categoryID, err)
		}
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			logging.Log.Warnf("Export cancelled by client context: %v", ctx.Err())
			return ctx.Err()
		}

		previewRel := rec.Preview
		if previewRel == "" {
			previewRel = library.PreviewRel(categoryID, rec.ID)
		}
		if err := s.addRelFileToZip(zw, previewRel); err != nil && !os.IsNotExist(err) {
			logging.Log.Warnf("Export: Failed to add preview for '%s': %v", rec.ID, err)
		}

		if rec.NativePptx != "" {
			if err := s.addRelFileToZip(zw, rec.NativePptx); err != nil && !os.IsNotExist(err) {
				logging.Log.Warnf("Export: Failed to add native snippet for '%s': %v", rec.ID, err)
			}
		}
	}
	return nil
}

// addRelFileToZip adds one library-relative file under its relative name.
func (s *libraryService) addRelFileToZip(zw *zip.Writer, rel string) error {
	abs, err := s.Paths.ResolveRel(rel)
	if err != nil {
		return err
	}
	return addDiskFileToZip(zw, abs, rel)
}

// addDiskFileToZip streams one file from disk into the archive.
func addDiskFileToZip(zw *zip.Writer, srcPath, zipPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// We use CreateHeader to preserve modification time
	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = zipPath
	header.Method = zip.Deflate // Enable compression

	dstFile, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(dstFile, srcFile)
	return err
}
