package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shapehub/internal/audit"
	"shapehub/internal/initlib"
	"shapehub/internal/services"
)

func NewSeedCommand(globalOptions *GlobalOptions) *cobra.Command {

	seedCommand := &cobra.Command{
		Use:   "seed <seed-file.toml>",
		Short: "Seed categories and shape records from a TOML file",
		Long: `Creates the categories and metadata-only shape records listed in the given TOML
file. Existing entries are left untouched, so re-running the same file is safe.
This does not start the HTTP server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(globalOptions, args[0])
		},
	}

	return seedCommand
}

func runSeed(globalOptions *GlobalOptions, seedFile string) error {
	cfg, err := loadConfig(globalOptions)
	if err != nil {
		return err
	}

	_, repo, err := openLibrary(cfg)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	categoryService := services.NewCategoryService(repo, audit.NewLoggerAuditor(cfg.Logging.AuditEnabled))

	report := initlib.Run(categoryService, repo, seedFile)
	fmt.Printf("Seeded %d categories and %d shapes (%d skipped).\n",
		report.CategoriesAdded, report.ShapesAdded, report.Skipped)
	return nil
}
