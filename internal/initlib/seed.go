package initlib

import (
	"os"

	"github.com/BurntSushi/toml"

	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/models"
	"shapehub/internal/repository"
	"shapehub/internal/services"
)

// Report counts what a seeding run actually changed.
type Report struct {
	CategoriesAdded int
	ShapesAdded     int
	Skipped         int
}

// Run executes the one-time seeding from the TOML file. Entries that already
// exist are skipped, bad entries are logged and skipped; seeding never aborts
// the caller.
func Run(
	catSvc services.CategoryService,
	repo *repository.Repository,
	configPath string,
) Report {
	var report Report

	logging.Log.Infof("Seed file found at: %s. Processing...", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		logging.Log.Errorf("Failed to read seed file '%s': %v", configPath, err)
		return report
	}

	var config SeedConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		logging.Log.Errorf("Failed to parse TOML seed file '%s': %v", configPath, err)
		return report
	}

	logging.Log.Infof("Found %d categor(ies) and %d shape(s) in seed file.", len(config.Categories), len(config.Shapes))

	existing, err := registeredCategories(repo)
	if err != nil {
		logging.Log.Errorf("Failed to load category registry: %v", err)
		return report
	}

	processCategories(catSvc, config.Categories, existing, &report)
	processShapes(repo, config.Shapes, existing, &report)

	logging.Log.Infof("Seeding finished: %d categories added, %d shapes added, %d skipped.",
		report.CategoriesAdded, report.ShapesAdded, report.Skipped)
	return report
}

// registeredCategories returns the ids currently in the registry as a set.
func registeredCategories(repo *repository.Repository) (map[string]bool, error) {
	categories, err := repo.LoadCategories()
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(categories))
	for _, c := range categories {
		existing[c.ID] = true
	}
	return existing, nil
}

// processCategories iterates over the categories in the seed file and creates
// them if they don't exist.
func processCategories(catSvc services.CategoryService, categories []SeedCategory, existing map[string]bool, report *Report) {
	for _, c := range categories {
		if c.ID == "" || c.Name == "" {
			logging.Log.Warn("Skipping category with empty id or name.")
			report.Skipped++
			continue
		}

		if existing[c.ID] {
			logging.Log.Infof("Skipping category: '%s' already exists.", c.ID)
			report.Skipped++
			continue
		}

		logging.Log.Infof("Creating category: '%s'...", c.ID)
		if _, err := catSvc.CreateCategory(models.CategoryCreatePayload{ID: c.ID, Name: c.Name}); err != nil {
			// The service already did the validation, so we just log the error
			logging.Log.Errorf("Failed to create category '%s': %v", c.ID, err)
			report.Skipped++
			continue
		}

		existing[c.ID] = true
		report.CategoriesAdded++
		logging.Log.Infof("Successfully created category: '%s'", c.ID)
	}
}

// processShapes iterates over the shapes in the seed file and upserts the
// metadata records of the new ones.
func processShapes(repo *repository.Repository, shapes []SeedShape, existing map[string]bool, report *Report) {
	for _, s := range shapes {
		if s.ID == "" || s.Name == "" || s.Category == "" {
			logging.Log.Warn("Skipping shape with empty id, name or category.")
			report.Skipped++
			continue
		}

		if !existing[s.Category] {
			logging.Log.Errorf("Skipping shape '%s': category '%s' is not in the registry.", s.ID, s.Category)
			report.Skipped++
			continue
		}

		found, err := repo.ShapeExists(s.Category, s.ID)
		if err != nil {
			logging.Log.Errorf("Failed to check if shape '%s' exists: %v", s.ID, err)
			report.Skipped++
			continue
		}
		if found {
			logging.Log.Infof("Skipping shape: '%s' already exists in '%s'.", s.ID, s.Category)
			report.Skipped++
			continue
		}

		logging.Log.Infof("Creating shape: '%s' in '%s'...", s.ID, s.Category)

		// The conventional preview path is recorded up front so a later
		// repair pass can adopt a matching asset.
		shape := &models.Shape{
			ID:          s.ID,
			Name:        s.Name,
			Category:    s.Category,
			Description: s.Description,
			Tags:        s.Tags,
			Preview:     library.PreviewRel(s.Category, s.ID),
			DeckSlide:   s.DeckSlide,
		}

		if _, err := repo.UpsertShape(shape); err != nil {
			logging.Log.Errorf("Failed to create shape '%s': %v", s.ID, err)
			report.Skipped++
			continue
		}

		report.ShapesAdded++
		logging.Log.Infof("Successfully created shape: '%s'", s.ID)
	}
}
