// filepath: internal/services/mocks/category_mock.go
package mocks

import (
	"shapehub/internal/models"
	"shapehub/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockCategoryService is a mock implementation of services.CategoryService
type MockCategoryService struct {
	mock.Mock
}

var _ services.CategoryService = (*MockCategoryService)(nil)

func (m *MockCategoryService) ListCategories() ([]models.CategorySummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategorySummary), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(payload models.CategoryCreatePayload) (*models.Category, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) RenameCategory(id string, payload models.CategoryRenamePayload) (*models.Category, error) {
	args := m.Called(id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
