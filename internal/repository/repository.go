// filepath: internal/repository/repository.go
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/shared"
)

// Store is the persistence contract consumed by the service layer.
type Store interface {
	// Categories
	LoadCategories() ([]models.Category, error)
	SaveCategories(list []models.Category) error
	AddCategory(id, name string) error
	RenameCategory(id, newName string) error
	DeleteCategory(id string) error
	ShapeCountFor(id string) int
	CategoryDisplayName(id string) string

	// Shapes
	ShapeExists(category, id string) (bool, error)
	GetShapes(category string) ([]models.Shape, error)
	GetShape(category, id string) (*models.Shape, error)
	UpsertShape(shape *models.Shape) (string, error)
	UpdateShape(category, id string, fields models.ShapeFields) (*models.Shape, error)
	RemoveShape(category, id string) error
	CountsByCategory() (map[string]int, error)
	TotalCount() (int, error)

	ClearCache()
}

var _ Store = (*Repository)(nil)

// fileStamp identifies one observed on-disk version of a JSON document.
// Two stamps compare equal only if the file was not replaced in between.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statStamp(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileStamp{}, nil
		}
		return fileStamp{}, err
	}
	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

// cachedShapes is the cache value for one category file: the decoded records
// plus the stamp of the file version they were read from.
type cachedShapes struct {
	shapes []models.Shape
	stamp  fileStamp
}

// cachedCategories is the cache value for categories.json.
type cachedCategories struct {
	list  []models.Category
	stamp fileStamp
}

const (
	categoriesCacheKey = "categories"
	shapesCachePrefix  = "shapes_"
)

// Repository persists categories and shape records as pretty-printed JSON
// documents under the library root. All writes to one category are
// serialized through a per-category lock, and every write verifies the
// on-disk file stamp against the version it loaded; an interleaved edit by
// another process surfaces as shared.ErrConflict instead of being
// overwritten.
type Repository struct {
	Paths *library.Paths
	Cache *cache.Cache // nil when caching is disabled

	collator *collate.Collator
	sortMu   sync.Mutex

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	catMu sync.Mutex
}

// NewRepository creates a repository over an existing library layout.
// Pass a nil cache to bypass caching entirely; behavior is identical.
func NewRepository(paths *library.Paths, c *cache.Cache) *Repository {
	return &Repository{
		Paths:    paths,
		Cache:    c,
		collator: collate.New(language.Und),
		locks:    make(map[string]*sync.Mutex),
	}
}

// categoryLock returns the mutex serializing writes for one category file.
func (s *Repository) categoryLock(category string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if l, ok := s.locks[category]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[category] = l
	return l
}

// ClearCache drops every cached document. The next read goes to disk.
func (s *Repository) ClearCache() {
	if s.Cache == nil {
		return
	}
	s.Cache.Flush()
}

// sortShapes orders records by display name using locale-aware collation.
// Equal names fall back to the id, and ids are unique per category, so the
// order is total and re-sorting an unchanged list is a no-op.
func (s *Repository) sortShapes(shapes []models.Shape) {
	s.sortMu.Lock()
	defer s.sortMu.Unlock()
	sort.SliceStable(shapes, func(i, j int) bool {
		if c := s.collator.CompareString(shapes[i].Name, shapes[j].Name); c != 0 {
			return c < 0
		}
		return shapes[i].ID < shapes[j].ID
	})
}

// marshalShapes renders one category file. The format is fixed so that
// re-saving unchanged records reproduces a byte-identical file.
func marshalShapes(shapes []models.Shape) ([]byte, error) {
	if shapes == nil {
		shapes = []models.Shape{}
	}
	data, err := json.MarshalIndent(shapes, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// readShapeFile reads and decodes one category file straight from disk,
// returning the stamp of the version it read. A missing file yields an
// empty list and a zero stamp.
func readShapeFile(path string) ([]models.Shape, fileStamp, error) {
	stamp, err := statStamp(path)
	if err != nil {
		return nil, fileStamp{}, fmt.Errorf("could not stat shape file %s: %w", path, err)
	}
	if !stamp.exists {
		return []models.Shape{}, stamp, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileStamp{}, fmt.Errorf("could not read shape file %s: %w", path, err)
	}
	shapes := make([]models.Shape, 0)
	if err := json.Unmarshal(data, &shapes); err != nil {
		return nil, fileStamp{}, fmt.Errorf("could not parse shape file %s: %w", path, err)
	}
	return shapes, stamp, nil
}

// copyShapes returns a fresh slice over copies of the given records, so
// callers can reorder or replace entries without reaching into the cache.
func copyShapes(in []models.Shape) []models.Shape {
	out := make([]models.Shape, len(in))
	copy(out, in)
	return out
}

// loadShapes returns the records of one category plus the stamp they were
// read at, consulting the cache first. A cached entry whose stamp no longer
// matches the file on disk is treated as a miss. The returned slice is the
// caller's to mutate.
func (s *Repository) loadShapes(category string) ([]models.Shape, fileStamp, string, error) {
	path, err := s.Paths.CategoryShapesFile(category)
	if err != nil {
		return nil, fileStamp{}, "", err
	}

	cacheKey := shapesCachePrefix + category
	if s.Cache != nil {
		if v, found := s.Cache.Get(cacheKey); found {
			entry := v.(cachedShapes)
			current, err := statStamp(path)
			if err == nil && current == entry.stamp {
				logging.Log.Debugf("loadShapes: CACHE HIT for '%s'", category)
				return copyShapes(entry.shapes), entry.stamp, path, nil
			}
			logging.Log.Debugf("loadShapes: stale cache for '%s'. Re-reading file.", category)
			s.Cache.Delete(cacheKey)
		}
	}

	shapes, stamp, err := readShapeFile(path)
	if err != nil {
		return nil, fileStamp{}, "", err
	}
	if s.Cache != nil {
		s.Cache.Set(cacheKey, cachedShapes{shapes: copyShapes(shapes), stamp: stamp}, cache.DefaultExpiration)
	}
	return shapes, stamp, path, nil
}

// writeShapes persists the records of one category. loadedStamp must be the
// stamp the mutation started from; if the file changed on disk since then,
// nothing is written and shared.ErrConflict is returned.
func (s *Repository) writeShapes(category, path string, shapes []models.Shape, loadedStamp fileStamp) error {
	current, err := statStamp(path)
	if err != nil {
		return fmt.Errorf("could not stat shape file %s: %w", path, err)
	}
	if current != loadedStamp {
		if s.Cache != nil {
			s.Cache.Delete(shapesCachePrefix + category)
		}
		logging.Log.Warnf("writeShapes: file %s changed underneath us. Refusing to overwrite.", path)
		return shared.ErrConflict
	}

	s.sortShapes(shapes)
	data, err := marshalShapes(shapes)
	if err != nil {
		return fmt.Errorf("could not encode shape file %s: %w", path, err)
	}
	if err := os.MkdirAll(s.Paths.ShapesDir(), 0755); err != nil {
		return fmt.Errorf("could not create shapes directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write shape file %s: %w", path, err)
	}

	if s.Cache != nil {
		stamp, err := statStamp(path)
		if err == nil {
			s.Cache.Set(shapesCachePrefix+category, cachedShapes{shapes: copyShapes(shapes), stamp: stamp}, cache.DefaultExpiration)
		} else {
			s.Cache.Delete(shapesCachePrefix + category)
		}
	}
	return nil
}
