// filepath: internal/services/mocks/shape_mock.go
package mocks

import (
	"mime/multipart"

	"shapehub/internal/models"
	"shapehub/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockShapeService is a mock implementation of services.ShapeService
type MockShapeService struct {
	mock.Mock
}

var _ services.ShapeService = (*MockShapeService)(nil)

func (m *MockShapeService) GetShapes(category string) ([]models.Shape, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Shape), args.Error(1)
}

func (m *MockShapeService) GetShape(category, id string) (*models.Shape, error) {
	args := m.Called(category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shape), args.Error(1)
}

func (m *MockShapeService) CaptureShape(metadataStr string, preview multipart.File, previewHeader *multipart.FileHeader, native multipart.File, nativeHeader *multipart.FileHeader) (*models.Shape, error) {
	args := m.Called(metadataStr, preview, previewHeader, native, nativeHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shape), args.Error(1)
}

func (m *MockShapeService) UpdateShape(category, id string, fields models.ShapeFields) (*models.Shape, error) {
	args := m.Called(category, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shape), args.Error(1)
}

func (m *MockShapeService) MoveShape(category, id, targetCategory string) (*models.Shape, error) {
	args := m.Called(category, id, targetCategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shape), args.Error(1)
}

func (m *MockShapeService) DeleteShape(category, id string) error {
	args := m.Called(category, id)
	return args.Error(0)
}

func (m *MockShapeService) PreviewPath(category, id string) (string, error) {
	args := m.Called(category, id)
	return args.String(0), args.Error(1)
}

func (m *MockShapeService) NativePath(category, id string) (string, error) {
	args := m.Called(category, id)
	return args.String(0), args.Error(1)
}
