// filepath: internal/services/info_service.go
package services

import (
	"os"
	"time"

	"shapehub/internal/models"
	"shapehub/internal/repository"
)

var _ InfoService = (*infoService)(nil)

type infoService struct {
	Version   string
	StartTime time.Time
	Repo      *repository.Repository
}

// NewInfoService creates a new InfoService.
func NewInfoService(version string, startTime time.Time, repo *repository.Repository) *infoService {
	return &infoService{
		Version:   version,
		StartTime: startTime,
		Repo:      repo,
	}
}

// GetInfo retrieves the application information and live library counts.
func (s *infoService) GetInfo() models.Info {
	categories, _ := s.Repo.LoadCategories()
	total, _ := s.Repo.TotalCount()
	_, deckErr := os.Stat(s.Repo.Paths.DeckFile())

	return models.Info{
		ServiceName: "ShapeHub-API",
		Version:     s.Version,
		UptimeSince: s.StartTime,
		LibraryRoot: s.Repo.Paths.Root(),
		Categories:  len(categories),
		Shapes:      total,
		DeckPresent: deckErr == nil,
	}
}
