// filepath: internal/services/shape_service.go
package services

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/preview"
	"shapehub/internal/repository"
)

var _ ShapeService = (*shapeService)(nil)

// shapeService is the main struct for handling business logic related to
// shapes. File work is delegated to the preview manager; record work to the
// repository.
type shapeService struct {
	Repo     *repository.Repository
	Previews *preview.Manager
	Audit    Auditor
}

// NewShapeService creates a new ShapeService.
func NewShapeService(repo *repository.Repository, previews *preview.Manager, audit Auditor) *shapeService {
	return &shapeService{Repo: repo, Previews: previews, Audit: audit}
}

// GetShapes returns all shapes of a category, in stored (name) order.
func (s *shapeService) GetShapes(category string) ([]models.Shape, error) {
	if err := s.requireCategory(category); err != nil {
		return nil, err
	}
	return s.Repo.GetShapes(category)
}

// GetShape returns one shape record.
func (s *shapeService) GetShape(category, id string) (*models.Shape, error) {
	return s.Repo.GetShape(category, id)
}

// generateShapeID mints a new shape id.
func generateShapeID() (string, error) {
	entropy := ulid.Monotonic(crand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CaptureShape stores a newly captured shape: the record, its preview PNG
// and optionally the fidelity-preserving native snippet. The metadata
// arrives as a JSON string next to the file parts.
func (s *shapeService) CaptureShape(metadataStr string, previewFile multipart.File, previewHeader *multipart.FileHeader, nativeFile multipart.File, nativeHeader *multipart.FileHeader) (*models.Shape, error) {
	var payload models.ShapeCapturePayload
	if err := json.Unmarshal([]byte(metadataStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid capture metadata: %v", ErrValidation, err)
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return nil, fmt.Errorf("%w: shape name must not be empty", ErrValidation)
	}
	if err := s.requireCategory(payload.Category); err != nil {
		return nil, err
	}
	if previewFile == nil || previewHeader == nil {
		return nil, fmt.Errorf("%w: preview file is required", ErrValidation)
	}

	id := strings.TrimSpace(payload.ID)
	if id == "" {
		minted, err := generateShapeID()
		if err != nil {
			return nil, fmt.Errorf("could not generate shape id: %w", err)
		}
		id = minted
		logging.Log.Debugf("CaptureShape: minted id %s for '%s'", id, payload.Name)
	}

	if err := validatePNG(previewFile); err != nil {
		return nil, err
	}

	shape := &models.Shape{
		ID:          id,
		Name:        payload.Name,
		Category:    payload.Category,
		Description: payload.Description,
		Tags:        payload.Tags,
		DeckSlide:   payload.DeckSlide,
		Definition:  payload.Definition,
	}

	rel, err := s.Previews.SavePreview(shape.Category, shape.ID, previewFile)
	if err != nil {
		return nil, err
	}
	shape.Preview = rel

	if nativeFile != nil && nativeHeader != nil {
		relNative, err := s.Previews.SaveNative(shape.ID, nativeFile)
		if err != nil {
			return nil, err
		}
		shape.NativePptx = relNative
	}

	if _, err := s.Repo.UpsertShape(shape); err != nil {
		return nil, err
	}

	logging.Log.Infof("Shape '%s' (%s) captured into '%s'", shape.Name, shape.ID, shape.Category)
	s.Audit.Log(context.Background(), "shape.capture", "local", shape.ID, map[string]interface{}{
		"category": shape.Category,
		"name":     shape.Name,
	})
	return shape, nil
}

// validatePNG sniffs the upload's leading bytes and rewinds the reader.
func validatePNG(f multipart.File) error {
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return fmt.Errorf("%w: could not read preview upload: %v", ErrValidation, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("could not rewind preview upload: %w", err)
	}
	if mime := http.DetectContentType(head[:n]); mime != "image/png" {
		return fmt.Errorf("%w: preview must be a PNG, got %s", ErrUnsupported, mime)
	}
	return nil
}

// UpdateShape merges partial fields over an existing record.
func (s *shapeService) UpdateShape(category, id string, fields models.ShapeFields) (*models.Shape, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	shape, err := s.Repo.UpdateShape(category, id, fields)
	if err != nil {
		return nil, err
	}
	s.Audit.Log(context.Background(), "shape.update", "local", id, map[string]interface{}{
		"category": category,
	})
	return shape, nil
}

// MoveShape reassigns a shape to another category: the record moves between
// category files and the preview asset is relocated alongside. The record
// is written to the target before it is removed from the source, so a crash
// in between leaves a duplicate rather than a lost shape.
func (s *shapeService) MoveShape(category, id, targetCategory string) (*models.Shape, error) {
	if targetCategory == category {
		return nil, fmt.Errorf("%w: shape %q is already in category %q", ErrValidation, id, category)
	}
	if err := s.requireCategory(targetCategory); err != nil {
		return nil, err
	}

	shape, err := s.Repo.GetShape(category, id)
	if err != nil {
		return nil, err
	}

	res := s.Previews.Relocate(id, category, targetCategory)
	if res.Duplicated {
		logging.Log.Warnf("MoveShape: preview for '%s' was duplicated into '%s'; the copy in '%s' stays behind", id, targetCategory, category)
	}

	shape.Category = targetCategory
	shape.Preview = res.RelPath
	if _, err := s.Repo.UpsertShape(shape); err != nil {
		return nil, err
	}
	if err := s.Repo.RemoveShape(category, id); err != nil {
		return nil, fmt.Errorf("shape %q was written to %q but could not be removed from %q: %w", id, targetCategory, category, err)
	}

	logging.Log.Infof("Shape '%s' moved from '%s' to '%s'", id, category, targetCategory)
	s.Audit.Log(context.Background(), "shape.move", "local", id, map[string]interface{}{
		"from":       category,
		"to":         targetCategory,
		"duplicated": res.Duplicated,
	})
	return shape, nil
}

// DeleteShape removes a shape record. Its preview asset and deck slide are
// left in place; see the repository notes on deck-index stability.
func (s *shapeService) DeleteShape(category, id string) error {
	if err := s.Repo.RemoveShape(category, id); err != nil {
		return err
	}
	logging.Log.Infof("Shape '%s' deleted from '%s'", id, category)
	s.Audit.Log(context.Background(), "shape.delete", "local", id, map[string]interface{}{
		"category": category,
	})
	return nil
}

// PreviewPath resolves the absolute path of a shape's preview file for
// serving, failing with ErrNotFound when no file exists yet.
func (s *shapeService) PreviewPath(category, id string) (string, error) {
	shape, err := s.Repo.GetShape(category, id)
	if err != nil {
		return "", err
	}
	path, err := s.Previews.ResolvePreview(shape)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: no preview file for shape %q", ErrNotFound, id)
	}
	return path, nil
}

// NativePath resolves the absolute path of a shape's native snippet.
func (s *shapeService) NativePath(category, id string) (string, error) {
	shape, err := s.Repo.GetShape(category, id)
	if err != nil {
		return "", err
	}
	if shape.NativePptx == "" {
		return "", fmt.Errorf("%w: shape %q has no native snippet", ErrNotFound, id)
	}
	path, err := s.Previews.Paths.ResolveRel(shape.NativePptx)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: native snippet for shape %q is missing on disk", ErrNotFound, id)
	}
	return path, nil
}

// requireCategory checks that a category id is listed in the store.
func (s *shapeService) requireCategory(category string) error {
	list, err := s.Repo.LoadCategories()
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.ID == category {
			return nil
		}
	}
	return fmt.Errorf("%w: category %q", ErrNotFound, category)
}
