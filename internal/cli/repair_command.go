package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shapehub/internal/audit"
	"shapehub/internal/logging"
	"shapehub/internal/preview"
	"shapehub/internal/services"
)

type RepairOptions struct {
	Force bool // If true, repair even when the state file says a pass already completed
	Sweep bool // If true, follow the repair with an integrity sweep
}

func NewRepairCommand(globalOptions *GlobalOptions) *cobra.Command {

	repairOptions := &RepairOptions{}

	repairCommand := &cobra.Command{
		Use:   "repair",
		Short: "Re-link orphaned preview assets to their shape records",
		Long: `Scans every category for shapes whose preview file is missing and adopts matching
orphaned assets left behind by interrupted moves. This does not start the HTTP server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(globalOptions, repairOptions)
		},
	}

	repairOptions.registerFlags(repairCommand)

	return repairCommand
}

func (opt *RepairOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&opt.Force, "force", false, "If true, repair even when a previous pass already completed.")
	cmd.Flags().BoolVar(&opt.Sweep, "sweep", false, "If true, follow the repair with an integrity sweep.")
}

func runRepair(globalOptions *GlobalOptions, repairOptions *RepairOptions) error {
	cfg, err := loadConfig(globalOptions)
	if err != nil {
		return err
	}

	paths, repo, err := openLibrary(cfg)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	previews := preview.NewManager(paths)
	loggerAuditor := audit.NewLoggerAuditor(cfg.Logging.AuditEnabled)

	// One-shot run: no background sweep, no startup repair.
	maintenance := services.NewMaintenanceService(repo, previews, loggerAuditor, 0, false)

	logging.Log.Infof("Starting preview repair on %s...", paths.Root())
	report := maintenance.RepairPreviews(repairOptions.Force)
	if report.Skipped {
		logging.Log.Info("Repair skipped: a previous pass already completed. Use --force to run again.")
	} else {
		logging.Log.Infof("Repair complete: %s", report.Message)
	}

	if repairOptions.Sweep {
		sweep := maintenance.RunSweep()
		logging.Log.Infof("Sweep complete: %s", sweep.Message)
	}
	return nil
}
