// filepath: internal/services/mocks/maintenance_mock.go
package mocks

import (
	"shapehub/internal/models"
	"shapehub/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockMaintenanceService is a mock implementation of services.MaintenanceService
type MockMaintenanceService struct {
	mock.Mock
}

var _ services.MaintenanceService = (*MockMaintenanceService)(nil)

func (m *MockMaintenanceService) RepairPreviews(force bool) models.RepairReport {
	args := m.Called(force)
	return args.Get(0).(models.RepairReport)
}

func (m *MockMaintenanceService) RunSweep() models.SweepReport {
	args := m.Called()
	return args.Get(0).(models.SweepReport)
}

func (m *MockMaintenanceService) State() *models.MaintenanceState {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.MaintenanceState)
}

func (m *MockMaintenanceService) Start() {
	m.Called()
}

func (m *MockMaintenanceService) Stop() {
	m.Called()
}
