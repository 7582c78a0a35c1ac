package setup

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/polarclim/analysis_launcher/config"
	"github.com/polarclim/analysis_launcher/db"
	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/types"
)

type AppResources struct {
	Ctx      context.Context
	Cancel   context.CancelFunc
	Cfg      *config.Config
	DB       *db.PostgresRepository
	Profiles map[string]types.DirectiveSet
}

// Overrides carries flag values that take precedence over the
// environment configuration when set.
type Overrides struct {
	LaunchSlots int
	ProfilePath string
}

// SetupApp initializes the resources the launcher needs to run: a
// cancellable context tied to interrupt signals, the service
// configuration, the directive profiles and the database pool.
// If any step fails, it cleans up what was already created and returns
// an error.
func SetupApp(ov Overrides) (*AppResources, error) {
	ctx, cancel := context.WithCancel(context.Background())
	handleSignals(cancel)

	cfg, err := config.Load()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if ov.LaunchSlots > 0 {
		cfg.LaunchSlots = ov.LaunchSlots
	}
	if ov.ProfilePath != "" {
		cfg.ProfilePath = ov.ProfilePath
	}

	profiles, err := config.LoadProfiles(cfg.ProfilePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load directive profiles: %w", err)
	}
	log.Logger.Infof("Loaded %d directive profiles", len(profiles))

	repo, err := db.NewPostgresRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Logger.Info("Database connection established.")

	return &AppResources{
		Ctx:      ctx,
		Cancel:   cancel,
		Cfg:      cfg,
		DB:       repo,
		Profiles: profiles,
	}, nil
}

// handleSignals sets up a signal handler to listen for SIGINT and SIGTERM signals.
// When one of these signals is received, it logs the event and calls the provided
// cancel function to initiate a graceful shutdown of the application.
func handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Logger.Infof("Received signal %v. Initiating graceful shutdown...", sig)
		cancel()
	}()
}
