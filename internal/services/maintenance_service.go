// filepath: internal/services/maintenance_service.go
package services

import (
	"context"
	"sync"
	"time"

	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/preview"
	"shapehub/internal/repository"
)

var _ MaintenanceService = (*maintenanceService)(nil)

// MinSweepInterval is the minimum time between sweeps to prevent busy-looping.
const MinSweepInterval = 1 * time.Minute

// maintenanceService provides the orphan repair pass plus the periodic
// asset integrity sweep running in the background.
type maintenanceService struct {
	Repo     *repository.Repository
	Previews *preview.Manager
	Audit    Auditor

	interval   time.Duration
	autoRepair bool

	timer  *time.Timer
	stopCh chan struct{}

	mu        sync.Mutex
	lastSweep *models.SweepReport
}

// NewMaintenanceService creates a new MaintenanceService. An interval of 0
// disables the background sweep; autoRepair runs one marker-guarded repair
// pass when the service starts.
func NewMaintenanceService(repo *repository.Repository, previews *preview.Manager, audit Auditor, interval time.Duration, autoRepair bool) *maintenanceService {
	return &maintenanceService{
		Repo:       repo,
		Previews:   previews,
		Audit:      audit,
		interval:   interval,
		autoRepair: autoRepair,
		stopCh:     make(chan struct{}),
	}
}

// RepairPreviews runs the orphan repair pass.
func (s *maintenanceService) RepairPreviews(force bool) models.RepairReport {
	report := s.Previews.RepairOrphans(s.Repo, force)
	if !report.Skipped {
		s.Audit.Log(context.Background(), "maintenance.repair", "local", "library", map[string]interface{}{
			"repaired":   report.Repaired,
			"duplicates": report.Duplicates,
			"forced":     report.Forced,
		})
	}
	return report
}

// RunSweep runs one integrity sweep and remembers its report.
func (s *maintenanceService) RunSweep() models.SweepReport {
	report := s.Previews.Sweep(s.Repo)
	s.mu.Lock()
	s.lastSweep = &report
	s.mu.Unlock()

	if report.MissingPreviews > 0 || report.StrayAssets > 0 {
		logging.Log.Warnf("Sweep found issues: %s", report.Message)
	} else {
		logging.Log.Debugf("Sweep clean: %s", report.Message)
	}
	return report
}

// State reports the persisted repair state and the latest sweep result.
func (s *maintenanceService) State() *models.MaintenanceState {
	st, err := preview.LoadState(s.Previews.Paths.RepairStateFile())
	if err != nil {
		logging.Log.Warnf("Could not read repair state: %v", err)
	}
	s.mu.Lock()
	last := s.lastSweep
	s.mu.Unlock()
	return &models.MaintenanceState{Repair: st, LastSweep: last}
}

// Start kicks off the background maintenance worker.
func (s *maintenanceService) Start() {
	if s.autoRepair {
		report := s.RepairPreviews(false)
		if report.Skipped {
			logging.Log.Debug("Startup repair skipped; marker present.")
		} else {
			logging.Log.Infof("Startup repair finished: %s", report.Message)
		}
	}

	if s.interval <= 0 {
		logging.Log.Info("Background sweep disabled by configuration.")
		return
	}
	interval := s.interval
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}

	logging.Log.Infof("Starting background maintenance service (sweep every %v).", interval)
	s.timer = time.NewTimer(0) // Fire immediately on start

	go func() {
		for {
			select {
			case <-s.timer.C:
				s.RunSweep()
				s.timer.Reset(interval)
			case <-s.stopCh:
				s.timer.Stop()
				return
			}
		}
	}()
}

// Stop terminates the background maintenance service.
func (s *maintenanceService) Stop() {
	logging.Log.Info("Stopping background maintenance service.")
	close(s.stopCh)
}
