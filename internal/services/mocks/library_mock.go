// filepath: internal/services/mocks/library_mock.go
package mocks

import (
	"context"
	"io"

	"shapehub/internal/models"
	"shapehub/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockLibraryService is a mock implementation of services.LibraryService
type MockLibraryService struct {
	mock.Mock
}

var _ services.LibraryService = (*MockLibraryService)(nil)

func (m *MockLibraryService) ExportArchive(ctx context.Context, categories []string, w io.Writer) error {
	args := m.Called(ctx, categories, w)
	return args.Error(0)
}

func (m *MockLibraryService) ImportArchive(r io.ReaderAt, size int64) (*models.ImportReport, error) {
	args := m.Called(r, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportReport), args.Error(1)
}
