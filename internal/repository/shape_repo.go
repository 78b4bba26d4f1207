// filepath: internal/repository/shape_repo.go
package repository

import (
	"encoding/json"
	"fmt"

	"shapehub/internal/models"
	"shapehub/internal/shared"
)

// GetShapes returns every shape of one category, ordered by display name.
// A category without a shape file yields an empty list.
func (s *Repository) GetShapes(category string) ([]models.Shape, error) {
	shapes, _, _, err := s.loadShapes(category)
	if err != nil {
		return nil, err
	}
	return shapes, nil
}

// GetShape returns one shape by id from a category file.
func (s *Repository) GetShape(category, id string) (*models.Shape, error) {
	shapes, _, _, err := s.loadShapes(category)
	if err != nil {
		return nil, err
	}
	for i := range shapes {
		if shapes[i].ID == id {
			shape := shapes[i]
			return &shape, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in category %q", shared.ErrShapeNotFound, id, category)
}

// ShapeExists reports whether a record with the given id is present in the
// category's file.
func (s *Repository) ShapeExists(category, id string) (bool, error) {
	shapes, _, _, err := s.loadShapes(category)
	if err != nil {
		return false, err
	}
	for i := range shapes {
		if shapes[i].ID == id {
			return true, nil
		}
	}
	return false, nil
}

// UpsertShape inserts or replaces the record sharing shape.ID in its
// category file and returns the path of the file written. The file is
// re-sorted by name on every write, so re-applying an unchanged shape
// reproduces a byte-identical file.
func (s *Repository) UpsertShape(shape *models.Shape) (string, error) {
	if shape == nil {
		return "", fmt.Errorf("%w: no shape given", shared.ErrInvalidShapeID)
	}
	if !shared.ValidShapeID(shape.ID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidShapeID, shape.ID)
	}

	rec := *shape
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	lock := s.categoryLock(rec.Category)
	lock.Lock()
	defer lock.Unlock()

	shapes, stamp, path, err := s.loadShapes(rec.Category)
	if err != nil {
		return "", err
	}

	replaced := false
	for i := range shapes {
		if shapes[i].ID == rec.ID {
			shapes[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		shapes = append(shapes, rec)
	}

	if err := s.writeShapes(rec.Category, path, shapes, stamp); err != nil {
		return "", err
	}
	return path, nil
}

// UpdateShape merges partial fields over an existing record and persists
// the category file. The record's id and category survive the merge
// unchanged regardless of what the fields claim.
func (s *Repository) UpdateShape(category, id string, fields models.ShapeFields) (*models.Shape, error) {
	lock := s.categoryLock(category)
	lock.Lock()
	defer lock.Unlock()

	shapes, stamp, path, err := s.loadShapes(category)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range shapes {
		if shapes[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %q in category %q", shared.ErrShapeNotFound, id, category)
	}

	rec := shapes[idx]
	if err := applyShapeFields(&rec, fields); err != nil {
		return nil, err
	}
	// Re-pin the identity: a partial update may carry conflicting values
	// for id/category, but identity drift is never allowed here.
	rec.ID = id
	rec.Category = category
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	shapes[idx] = rec

	if err := s.writeShapes(category, path, shapes, stamp); err != nil {
		return nil, err
	}
	result := rec
	return &result, nil
}

// applyShapeFields decodes each raw field value into the matching record
// field. Identity keys are skipped; unknown keys fail the whole update.
func applyShapeFields(rec *models.Shape, fields models.ShapeFields) error {
	for key, raw := range fields {
		var err error
		switch key {
		case "id", "category":
			// handled by the caller via re-pinning
		case "name":
			err = json.Unmarshal(raw, &rec.Name)
		case "description":
			err = json.Unmarshal(raw, &rec.Description)
		case "tags":
			var tags []string
			if err = json.Unmarshal(raw, &tags); err == nil {
				rec.Tags = tags
			}
		case "preview":
			err = json.Unmarshal(raw, &rec.Preview)
		case "nativePptx":
			err = json.Unmarshal(raw, &rec.NativePptx)
		case "deckSlide":
			var slide *int
			if err = json.Unmarshal(raw, &slide); err == nil {
				rec.DeckSlide = slide
			}
		case "definition":
			if len(raw) == 0 || string(raw) == "null" {
				rec.Definition = nil
			} else {
				rec.Definition = raw
			}
		default:
			return fmt.Errorf("unknown shape field %q", key)
		}
		if err != nil {
			return fmt.Errorf("invalid value for shape field %q: %w", key, err)
		}
	}
	return nil
}

// RemoveShape deletes a record from its category file. The preview asset
// and any deck slide stay behind untouched; repointing the deck indices on
// every delete is riskier than leaving a stale file.
func (s *Repository) RemoveShape(category, id string) error {
	lock := s.categoryLock(category)
	lock.Lock()
	defer lock.Unlock()

	shapes, stamp, path, err := s.loadShapes(category)
	if err != nil {
		return err
	}

	idx := -1
	for i := range shapes {
		if shapes[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %q in category %q", shared.ErrShapeNotFound, id, category)
	}

	shapes = append(shapes[:idx], shapes[idx+1:]...)
	return s.writeShapes(category, path, shapes, stamp)
}

// CountsByCategory maps every known category id to its shape count,
// zero-filled for categories without shapes.
func (s *Repository) CountsByCategory() (map[string]int, error) {
	list, err := s.LoadCategories()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(list))
	for _, c := range list {
		counts[c.ID] = s.ShapeCountFor(c.ID)
	}
	return counts, nil
}

// TotalCount sums the shape counts of all known categories.
func (s *Repository) TotalCount() (int, error) {
	counts, err := s.CountsByCategory()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
