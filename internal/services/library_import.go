// filepath: internal/services/library_import.go
package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/shared"
)

// ImportArchive merges a library archive into the current library.
//
// Merge rules: categories already present keep their local name, shape
// records from the archive win over local ones, and binary payloads
// (previews, native snippets, the deck) are only restored when the local
// file is absent. Entries outside the known layout are skipped with a
// warning; nothing in the archive may write outside the library root.
func (s *libraryService) ImportArchive(r io.ReaderAt, size int64) (*models.ImportReport, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable ZIP archive: %v", ErrValidation, err)
	}

	report := &models.ImportReport{}

	// Categories first, so shape files and assets land in a known registry.
	for _, f := range zipReader.File {
		if f.Name == "categories.json" {
			s.importCategories(f, report)
		}
	}
	for _, f := range zipReader.File {
		if strings.HasPrefix(f.Name, "shapes/") && strings.HasSuffix(f.Name, ".json") {
			s.importShapeFile(f, report)
		}
	}
	for _, f := range zipReader.File {
		switch {
		case f.Name == "categories.json", f.Name == "_metadata.json":
			// Already handled / informational only.
		case strings.HasPrefix(f.Name, "shapes/") && strings.HasSuffix(f.Name, ".json"):
			// Already handled.
		case f.FileInfo().IsDir():
			// Folder entries carry no payload.
		default:
			s.importPayload(f, report)
		}
	}

	report.Message = fmt.Sprintf("imported %d categories, %d shapes, %d files (%d skipped)",
		report.CategoriesAdded, report.ShapesImported, report.AssetsRestored, report.Skipped)
	logging.Log.Infof("Import: %s", report.Message)
	s.Audit.Log(context.Background(), "library.import", "local", "library", map[string]interface{}{
		"categories_added": report.CategoriesAdded,
		"shapes_imported":  report.ShapesImported,
		"assets_restored":  report.AssetsRestored,
		"skipped":          report.Skipped,
	})
	return report, nil
}

// importCategories merges the archive's registry. Existing categories keep
// their local display name.
func (s *libraryService) importCategories(f *zip.File, report *models.ImportReport) {
	var registry models.CategoryFile
	if err := decodeZipJSON(f, &registry); err != nil {
		logging.Log.Warnf("Import: Unreadable categories.json: %v", err)
		report.Skipped++
		return
	}
	for _, cat := range registry.Categories {
		if s.addImportedCategory(cat.ID, cat.Name, report) {
			report.CategoriesAdded++
		}
	}
}

// addImportedCategory registers one category, reporting whether it was new.
func (s *libraryService) addImportedCategory(id, name string, report *models.ImportReport) bool {
	if name == "" {
		name = id
	}
	err := s.Repo.AddCategory(id, name)
	if err == nil {
		return true
	}
	if errors.Is(err, shared.ErrCategoryExists) {
		report.Skipped++
		return false
	}
	logging.Log.Warnf("Import: Skipping category %q: %v", id, err)
	report.Skipped++
	return false
}

// importShapeFile upserts every record of one shapes/<category>.json entry.
// The file location decides the category; a record claiming another one is
// re-pinned, exactly like the repository does on update.
func (s *libraryService) importShapeFile(f *zip.File, report *models.ImportReport) {
	categoryID := strings.TrimSuffix(path.Base(f.Name), ".json")
	if f.Name != "shapes/"+categoryID+".json" || !shared.ValidCategoryID(categoryID) {
		logging.Log.Warnf("Import: Skipping shape file outside the library layout: %q", f.Name)
		report.Skipped++
		return
	}

	var records []models.Shape
	if err := decodeZipJSON(f, &records); err != nil {
		logging.Log.Warnf("Import: Unreadable shape file %q: %v", f.Name, err)
		report.Skipped++
		return
	}

	// Foreign archives may carry shape files for categories their registry
	// never listed. Register those under their raw id so the records stay
	// reachable.
	if !s.categoryRegistered(categoryID) {
		if s.addImportedCategory(categoryID, categoryID, report) {
			report.CategoriesAdded++
			logging.Log.Warnf("Import: Shape file %q had no registry entry. Category %q added.", f.Name, categoryID)
		}
	}

	for i := range records {
		rec := records[i]
		rec.Category = categoryID
		if _, err := s.Repo.UpsertShape(&rec); err != nil {
			logging.Log.Warnf("Import: Skipping shape %q in %q: %v", rec.ID, categoryID, err)
			report.Skipped++
			continue
		}
		report.ShapesImported++
	}
}

// importPayload restores one binary entry (preview, native snippet or deck)
// when the local file is absent. Anything not matching the library layout is
// refused before a single byte is written.
func (s *libraryService) importPayload(f *zip.File, report *models.ImportReport) {
	target, err := s.payloadTarget(f.Name)
	if err != nil {
		logging.Log.Warnf("Import: Skipping entry outside the library layout: %q (%v)", f.Name, err)
		report.Skipped++
		return
	}

	if _, err := os.Stat(target); err == nil {
		logging.Log.Debugf("Import: %q already present. Keeping local file.", f.Name)
		report.Skipped++
		return
	}

	rc, err := f.Open()
	if err != nil {
		logging.Log.Warnf("Import: Failed to open archive entry %q: %v", f.Name, err)
		report.Skipped++
		return
	}
	defer rc.Close()

	if _, err := library.SaveFile(rc, target); err != nil {
		logging.Log.Warnf("Import: Failed to restore %q: %v", f.Name, err)
		report.Skipped++
		return
	}
	report.AssetsRestored++
}

// payloadTarget maps an archive entry name onto its library path. Only the
// three payload locations the export writes are accepted.
func (s *libraryService) payloadTarget(name string) (string, error) {
	if name == "library_deck.pptx" {
		return s.Paths.DeckFile(), nil
	}

	parts := strings.Split(name, "/")
	switch {
	case len(parts) == 3 && parts[0] == "assets" && strings.EqualFold(path.Ext(parts[2]), ".png"):
		return s.Paths.PreviewFile(parts[1], strings.TrimSuffix(parts[2], path.Ext(parts[2])))
	case len(parts) == 2 && parts[0] == "native" && strings.EqualFold(path.Ext(parts[1]), ".pptx"):
		return s.Paths.NativeFile(strings.TrimSuffix(parts[1], path.Ext(parts[1])))
	}
	return "", fmt.Errorf("unrecognized archive path")
}

// categoryRegistered reports whether the registry currently lists the id.
func (s *libraryService) categoryRegistered(id string) bool {
	registry, err := s.Repo.LoadCategories()
	if err != nil {
		return false
	}
	for _, cat := range registry {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// decodeZipJSON strictly decodes one JSON archive entry.
func decodeZipJSON(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}
