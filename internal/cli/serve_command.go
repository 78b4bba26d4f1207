// Currently the code uses simple if then statements. If more options are added,
// swapping to github.com/spf13/viper could be helpful. For now, I like simplicity.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shapehub/internal/api"
	"shapehub/internal/api/handlers"
	"shapehub/internal/audit"
	"shapehub/internal/config"
	"shapehub/internal/initlib"
	"shapehub/internal/logging"
	"shapehub/internal/preview"
	"shapehub/internal/services"
)

type ServeOptions struct {
	Port         int
	MaxUpload    string
	AuditEnabled bool
	SeedFile     string
}

func NewServeCommand(globalOptions *GlobalOptions) *cobra.Command {
	serveOptions := &ServeOptions{}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(globalOptions, serveOptions)
		},
	}

	serveOptions.registerFlags(serveCmd)
	serveOptions.registerEnvVars(serveCmd)

	return serveCmd
}

func (options *ServeOptions) registerFlags(cmd *cobra.Command) {
	// flags for the serve command only
	cmd.Flags().IntVar(&options.Port, "port", 0, "Port for the HTTP server. (Env: SHAPEHUB_PORT)")
	cmd.Flags().StringVar(&options.MaxUpload, "max-upload", "", "Max size for capture/import uploads (e.g. '8MB'). (Env: SHAPEHUB_MAX_UPLOAD)")
	cmd.Flags().BoolVar(&options.AuditEnabled, "audit-enabled", false, "Enable detailed audit logging. (Env: SHAPEHUB_AUDIT_ENABLED=true)")
	cmd.Flags().StringVar(&options.SeedFile, "seed_file", "", "Path to a TOML file for one-time seeding of categories/shapes. (Env: SHAPEHUB_SEED_FILE)")
}

// In case a variable was not defined in the cli arguments, we check for env variables
func (options *ServeOptions) registerEnvVars(cmd *cobra.Command) {
	getEnv := func(key string) string { return os.Getenv(key) }

	if options.Port == 0 {
		portstr := getEnv("SHAPEHUB_PORT")
		if p, err := strconv.Atoi(portstr); err == nil {
			options.Port = p
		}
	}
	if options.MaxUpload == "" {
		options.MaxUpload = getEnv("SHAPEHUB_MAX_UPLOAD")
	}
	if !options.AuditEnabled {
		options.AuditEnabled = getEnv("SHAPEHUB_AUDIT_ENABLED") == "true"
	}
	if options.SeedFile == "" {
		options.SeedFile = getEnv("SHAPEHUB_SEED_FILE")
	}
}

func (options *ServeOptions) applyTo(c *config.Config) {
	if options.Port != 0 {
		c.Server.Port = options.Port
	}
	if options.MaxUpload != "" {
		c.Server.MaxUploadSize = options.MaxUpload
	}
	if options.AuditEnabled {
		c.Logging.AuditEnabled = true
	}
}

// serve starts the HTTP server with graceful shutdown.
func serve(globalOptions *GlobalOptions, serveOptions *ServeOptions) error {
	cfg, err := loadConfig(globalOptions, serveOptions.applyTo)
	if err != nil {
		return err
	}

	// On the first run there is no config file yet; persist one with the
	// resolved values so the knobs are discoverable.
	cfgPath := resolveConfigPath(globalOptions)
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		if err := config.SaveConfig(cfgPath, cfg); err != nil {
			logging.Log.Warnf("Failed to save starter config to %s: %v", cfgPath, err)
		} else {
			logging.Log.Infof("Starter configuration saved to %s.", cfgPath)
		}
	}

	paths, repo, err := openLibrary(cfg)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	// Loading the registry seeds the default categories on a fresh library.
	categories, err := repo.LoadCategories()
	if err != nil {
		return fmt.Errorf("failed to load category registry: %w", err)
	}
	logging.Log.Infof("Library at %s (%d categories).", paths.Root(), len(categories))

	previews := preview.NewManager(paths)

	// Auditor Initialization
	loggerAuditor := audit.NewLoggerAuditor(cfg.Logging.AuditEnabled)

	// Service Initialization
	infoService := services.NewInfoService(Version, StartTime, repo)
	categoryService := services.NewCategoryService(repo, loggerAuditor)
	shapeService := services.NewShapeService(repo, previews, loggerAuditor)
	maintenanceService := services.NewMaintenanceService(repo, previews, loggerAuditor, cfg.SweepInterval, cfg.Maintenance.AutoRepair)
	libraryService := services.NewLibraryService(repo, paths, Version, loggerAuditor)

	if serveOptions.SeedFile != "" {
		logging.Log.Infof("Found seed_file, running seeding from: %s", serveOptions.SeedFile)
		initlib.Run(categoryService, repo, serveOptions.SeedFile)
	}

	maintenanceService.Start()
	// No defer stop here, we stop explicitly during graceful shutdown

	h := handlers.NewHandlers(
		infoService,
		categoryService,
		shapeService,
		maintenanceService,
		libraryService,
		cfg,
	)

	r := api.SetupRouter(h)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	// --- Graceful Shutdown Setup ---
	// Create a channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Run server in a goroutine
	go func() {
		logging.Log.Infof("Server starting on %s (Max Upload: %s)", serverAddr, cfg.Server.MaxUploadSize)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Block until a signal is received
	<-stop
	logging.Log.Info("Shutting down server...")

	// Create a deadline for existing requests to complete (30 seconds)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop background services
	maintenanceService.Stop()

	// Shutdown the HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		logging.Log.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logging.Log.Info("Server exiting")
	return nil
}
