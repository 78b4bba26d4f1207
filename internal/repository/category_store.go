// filepath: internal/repository/category_store.go
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickmn/go-cache"

	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/shared"
)

// copyCategories returns a fresh slice over copies of the given records.
func copyCategories(in []models.Category) []models.Category {
	out := make([]models.Category, len(in))
	copy(out, in)
	return out
}

// marshalCategories renders categories.json.
func marshalCategories(list []models.Category) ([]byte, error) {
	if list == nil {
		list = []models.Category{}
	}
	data, err := json.MarshalIndent(models.CategoryFile{Categories: list}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// loadCategoriesLocked reads categories.json, consulting the cache first.
// Callers must hold catMu. A missing file is seeded with the default set;
// an unreadable or unparseable file degrades to the default set in memory
// without touching the broken file.
func (s *Repository) loadCategoriesLocked() ([]models.Category, fileStamp, error) {
	path := s.Paths.CategoriesFile()

	if s.Cache != nil {
		if v, found := s.Cache.Get(categoriesCacheKey); found {
			entry := v.(cachedCategories)
			current, err := statStamp(path)
			if err == nil && current.exists && current == entry.stamp {
				logging.Log.Debugf("loadCategories: CACHE HIT")
				return copyCategories(entry.list), entry.stamp, nil
			}
			logging.Log.Debugf("loadCategories: stale cache. Re-reading file.")
			s.Cache.Delete(categoriesCacheKey)
		}
	}

	stamp, err := statStamp(path)
	if err != nil {
		logging.Log.Errorf("loadCategories: could not stat %s: %v. Using defaults.", path, err)
		return models.DefaultCategories(), fileStamp{}, nil
	}

	if !stamp.exists {
		defaults := models.DefaultCategories()
		newStamp, err := s.seedCategoriesLocked(defaults)
		if err != nil {
			return nil, fileStamp{}, err
		}
		return defaults, newStamp, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Log.Errorf("loadCategories: could not read %s: %v. Using defaults.", path, err)
		return models.DefaultCategories(), stamp, nil
	}
	var doc models.CategoryFile
	if err := json.Unmarshal(data, &doc); err != nil {
		// The stamp of the broken file is returned so that a following
		// mutation may deliberately replace this exact version.
		logging.Log.Errorf("loadCategories: could not parse %s: %v. Using defaults.", path, err)
		return models.DefaultCategories(), stamp, nil
	}
	list := doc.Categories
	if list == nil {
		list = []models.Category{}
	}

	if s.Cache != nil {
		s.Cache.Set(categoriesCacheKey, cachedCategories{list: copyCategories(list), stamp: stamp}, cache.DefaultExpiration)
	}
	return list, stamp, nil
}

// seedCategoriesLocked atomically writes the default category set on first
// run: the document lands in a temp file first and is moved into place in
// one step, so a crash cannot leave a half-written categories.json.
func (s *Repository) seedCategoriesLocked(defaults []models.Category) (fileStamp, error) {
	path := s.Paths.CategoriesFile()
	logging.Log.Infof("No categories.json found. Seeding default categories at %s", path)

	data, err := marshalCategories(defaults)
	if err != nil {
		return fileStamp{}, fmt.Errorf("could not encode default categories: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fileStamp{}, fmt.Errorf("could not create library root for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".categories-*.json")
	if err != nil {
		return fileStamp{}, fmt.Errorf("could not create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fileStamp{}, fmt.Errorf("could not write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fileStamp{}, fmt.Errorf("could not close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fileStamp{}, fmt.Errorf("could not move default categories into place at %s: %w", path, err)
	}

	stamp, err := statStamp(path)
	if err != nil {
		return fileStamp{}, fmt.Errorf("could not stat %s after seeding: %w", path, err)
	}
	if s.Cache != nil {
		s.Cache.Set(categoriesCacheKey, cachedCategories{list: copyCategories(defaults), stamp: stamp}, cache.DefaultExpiration)
	}
	return stamp, nil
}

// writeCategoriesLocked persists the category list. Callers must hold
// catMu. A non-nil loadedStamp makes the write conditional: if the file
// changed on disk since that stamp was taken, nothing is written and
// shared.ErrConflict is returned.
func (s *Repository) writeCategoriesLocked(list []models.Category, loadedStamp *fileStamp) error {
	path := s.Paths.CategoriesFile()

	if loadedStamp != nil {
		current, err := statStamp(path)
		if err != nil {
			return fmt.Errorf("could not stat %s: %w", path, err)
		}
		if current != *loadedStamp {
			if s.Cache != nil {
				s.Cache.Delete(categoriesCacheKey)
			}
			logging.Log.Warnf("writeCategories: %s changed underneath us. Refusing to overwrite.", path)
			return shared.ErrConflict
		}
	}

	data, err := marshalCategories(list)
	if err != nil {
		return fmt.Errorf("could not encode categories for %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create library root for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write categories to %s: %w", path, err)
	}

	if s.Cache != nil {
		stamp, err := statStamp(path)
		if err == nil {
			s.Cache.Set(categoriesCacheKey, cachedCategories{list: copyCategories(list), stamp: stamp}, cache.DefaultExpiration)
		} else {
			s.Cache.Delete(categoriesCacheKey)
		}
	}
	return nil
}

// LoadCategories returns the ordered category list, seeding the default set
// on first run. Read and parse failures degrade to the default set; only a
// failed first-run seed write surfaces as an error.
func (s *Repository) LoadCategories() ([]models.Category, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	list, _, err := s.loadCategoriesLocked()
	return list, err
}

// SaveCategories overwrites categories.json with the given list.
func (s *Repository) SaveCategories(list []models.Category) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	return s.writeCategoriesLocked(list, nil)
}

// AddCategory appends a new category and creates its empty shape file.
func (s *Repository) AddCategory(id, name string) error {
	if !shared.ValidCategoryID(id) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidCategoryID, id)
	}

	s.catMu.Lock()
	defer s.catMu.Unlock()

	list, stamp, err := s.loadCategoriesLocked()
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.ID == id {
			return fmt.Errorf("%w: %q", shared.ErrCategoryExists, id)
		}
	}

	list = append(list, models.Category{ID: id, Name: name})
	if err := s.writeCategoriesLocked(list, &stamp); err != nil {
		return err
	}

	logging.Log.Infof("Category '%s' (%s) created", name, id)
	return s.ensureShapeFile(id)
}

// ensureShapeFile creates an empty shape file for a category if absent.
func (s *Repository) ensureShapeFile(id string) error {
	path, err := s.Paths.CategoryShapesFile(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("could not stat shape file %s: %w", path, err)
	}

	if err := os.MkdirAll(s.Paths.ShapesDir(), 0755); err != nil {
		return fmt.Errorf("could not create shapes directory: %w", err)
	}
	data, err := marshalShapes(nil)
	if err != nil {
		return fmt.Errorf("could not encode empty shape file %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write empty shape file %s: %w", path, err)
	}
	return nil
}

// RenameCategory updates a category's display name in place. The id itself
// is never mutable.
func (s *Repository) RenameCategory(id, newName string) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	list, stamp, err := s.loadCategoriesLocked()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].Name = newName
			if err := s.writeCategoriesLocked(list, &stamp); err != nil {
				return err
			}
			logging.Log.Infof("Category '%s' renamed to '%s'", id, newName)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", shared.ErrCategoryNotFound, id)
}

// DeleteCategory removes a category from the store. A category still
// holding shapes cannot be deleted; its shape file and asset folder are
// left on disk untouched either way.
func (s *Repository) DeleteCategory(id string) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	list, stamp, err := s.loadCategoriesLocked()
	if err != nil {
		return err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %q", shared.ErrCategoryNotFound, id)
	}

	if count := s.ShapeCountFor(id); count > 0 {
		return fmt.Errorf("%w: category %q still holds %d shape(s)", shared.ErrCategoryNotEmpty, id, count)
	}

	list = append(list[:idx], list[idx+1:]...)
	if err := s.writeCategoriesLocked(list, &stamp); err != nil {
		return err
	}
	logging.Log.Infof("Category '%s' deleted", id)
	return nil
}

// ShapeCountFor returns the number of shapes in a category, or 0 when the
// shape file is missing or unreadable. It never fails.
func (s *Repository) ShapeCountFor(id string) int {
	shapes, _, _, err := s.loadShapes(id)
	if err != nil {
		logging.Log.Debugf("ShapeCountFor: could not load shapes for '%s': %v. Counting 0.", id, err)
		return 0
	}
	return len(shapes)
}

// CategoryDisplayName resolves a category id to its display name, falling
// back to the raw id when the category is unknown.
func (s *Repository) CategoryDisplayName(id string) string {
	list, err := s.LoadCategories()
	if err != nil {
		return id
	}
	for _, c := range list {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}
