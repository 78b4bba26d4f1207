package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shapehub/internal/audit"
	"shapehub/internal/services"
)

type ExportOptions struct {
	Categories []string // Empty exports the whole library
}

func NewExportCommand(globalOptions *GlobalOptions) *cobra.Command {

	exportOptions := &ExportOptions{}

	exportCommand := &cobra.Command{
		Use:   "export <archive.zip>",
		Short: "Export the library as a ZIP archive",
		Long: `Writes the category registry, shape records, preview assets and native snippets
into a portable ZIP archive. This does not start the HTTP server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(globalOptions, exportOptions, args[0])
		},
	}

	exportOptions.registerFlags(exportCommand)

	return exportCommand
}

func (opt *ExportOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&opt.Categories, "categories", nil, "Export only the given category ids (comma separated).")
}

func runExport(globalOptions *GlobalOptions, exportOptions *ExportOptions, archivePath string) error {
	cfg, err := loadConfig(globalOptions)
	if err != nil {
		return err
	}

	paths, repo, err := openLibrary(cfg)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	libraryService := services.NewLibraryService(repo, paths, Version, audit.NewLoggerAuditor(cfg.Logging.AuditEnabled))

	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if err := libraryService.ExportArchive(context.Background(), exportOptions.Categories, f); err != nil {
		// Remove the partial file so a failed export doesn't look like one that worked.
		f.Close()
		os.Remove(archivePath)
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Library exported to %s\n", archivePath)
	return nil
}
