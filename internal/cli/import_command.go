package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shapehub/internal/audit"
	"shapehub/internal/services"
)

func NewImportCommand(globalOptions *GlobalOptions) *cobra.Command {

	importCommand := &cobra.Command{
		Use:   "import <archive.zip>",
		Short: "Import a library archive",
		Long: `Merges the categories, shape records and assets from a previously exported ZIP
archive into the library. Existing records win over archived ones. This does
not start the HTTP server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(globalOptions, args[0])
		},
	}

	return importCommand
}

func runImport(globalOptions *GlobalOptions, archivePath string) error {
	cfg, err := loadConfig(globalOptions)
	if err != nil {
		return err
	}

	paths, repo, err := openLibrary(cfg)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	libraryService := services.NewLibraryService(repo, paths, Version, audit.NewLoggerAuditor(cfg.Logging.AuditEnabled))

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive file: %w", err)
	}

	report, err := libraryService.ImportArchive(f, info.Size())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println(report.Message)
	return nil
}
