// filepath: internal/services/category_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/repository"
)

var _ CategoryService = (*categoryService)(nil)

// categoryService handles business logic around category management.
type categoryService struct {
	Repo  *repository.Repository
	Audit Auditor
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo *repository.Repository, audit Auditor) *categoryService {
	return &categoryService{Repo: repo, Audit: audit}
}

// ListCategories returns all categories in stored order, each with its live
// shape count.
func (s *categoryService) ListCategories() ([]models.CategorySummary, error) {
	list, err := s.Repo.LoadCategories()
	if err != nil {
		return nil, err
	}
	summaries := make([]models.CategorySummary, 0, len(list))
	for _, c := range list {
		summaries = append(summaries, models.CategorySummary{
			ID:    c.ID,
			Name:  c.Name,
			Count: s.Repo.ShapeCountFor(c.ID),
		})
	}
	return summaries, nil
}

// CreateCategory validates and persists a new category.
func (s *categoryService) CreateCategory(payload models.CategoryCreatePayload) (*models.Category, error) {
	id := strings.TrimSpace(payload.ID)
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", ErrValidation)
	}

	if err := s.Repo.AddCategory(id, name); err != nil {
		return nil, err
	}

	s.Audit.Log(context.Background(), "category.create", "local", id, map[string]interface{}{
		"name": name,
	})
	return &models.Category{ID: id, Name: name}, nil
}

// RenameCategory updates a category's display name. The id never changes.
func (s *categoryService) RenameCategory(id string, payload models.CategoryRenamePayload) (*models.Category, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", ErrValidation)
	}

	if err := s.Repo.RenameCategory(id, name); err != nil {
		return nil, err
	}

	s.Audit.Log(context.Background(), "category.rename", "local", id, map[string]interface{}{
		"name": name,
	})
	return &models.Category{ID: id, Name: name}, nil
}

// DeleteCategory removes an empty category.
func (s *categoryService) DeleteCategory(id string) error {
	if err := s.Repo.DeleteCategory(id); err != nil {
		return err
	}

	logging.Log.Infof("Category '%s' removed", id)
	s.Audit.Log(context.Background(), "category.delete", "local", id, nil)
	return nil
}
