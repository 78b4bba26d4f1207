package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version info
	Version   = "1.0.0"
	StartTime time.Time
)

type GlobalOptions struct {
	CfgFilePath string
	LogLevel    string
	LibraryRoot string
}

func NewRootCMD() *cobra.Command {

	globalOptions := &GlobalOptions{}

	rootCMD := &cobra.Command{
		Use:   "shapehub",
		Short: "ShapeHub shape library backend",
		Long:  "The backend for the presentation shape-library extension: a localhost HTTP API and maintenance tooling over a folder of JSON records, preview images and native snippets.",
	}

	// register global flags
	globalOptions.registerFlags(rootCMD)

	// add subcommands
	rootCMD.AddCommand(NewServeCommand(globalOptions))
	rootCMD.AddCommand(NewRepairCommand(globalOptions))
	rootCMD.AddCommand(NewSeedCommand(globalOptions))
	rootCMD.AddCommand(NewExportCommand(globalOptions))
	rootCMD.AddCommand(NewImportCommand(globalOptions))

	return rootCMD
}

func (options *GlobalOptions) registerFlags(cmd *cobra.Command) {
	// flags that can be used for each command
	cmd.PersistentFlags().StringVar(&options.CfgFilePath, "config_path", "config.toml", "Path to the base configuration file. (Env: SHAPEHUB_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", "", "Logging level (debug, info, warn, error). (Env: SHAPEHUB_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&options.LibraryRoot, "library-root", "", "Path to the shape library directory. (Env: SHAPEHUB_LIBRARY_ROOT)")
}

func Execute() {
	StartTime = time.Now()

	rootCmd := NewRootCMD()

	// Run the command based on os.Args
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
