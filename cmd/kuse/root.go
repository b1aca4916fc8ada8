package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuse/internal/clock"
	"kuse/internal/config"
	"kuse/internal/logging"
	"kuse/internal/storage"
	"kuse/internal/tracker"
	"kuse/internal/ui"
)

// app carries what every subcommand needs once setup has run.
type app struct {
	root *cobra.Command

	configPath string
	cfg        config.Config
	store      *storage.Store
	log        *zap.Logger
	svc        *tracker.Service
}

func newApp() *app {
	a := &app{}
	root := &cobra.Command{
		Use:   "kuse",
		Short: "Track habits and daily todos with a year-long activity heatmap",
		Long: `kuse tracks habits and daily todos in a local SQLite database.

Run without arguments to start the interactive terminal UI. The heatmap
shows the last 53 weeks: green for check-ins and completed todos, orange
for days that still have pending todos.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(a.svc, a.cfg, a.log)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.toml (default $KUSE_CONFIG or the user config dir)")

	root.AddCommand(
		newHeatmapCmd(a),
		newHabitCmd(a),
		newCheckInCmd(a),
		newTodoCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	a.root = root
	return a
}

// Execute runs the command line and then releases whatever setup opened,
// also when the command failed.
func (a *app) Execute() error {
	defer a.teardown()
	return a.root.Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.configPath == "" {
		a.configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}

	a.store, err = storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.svc = tracker.NewService(a.store, clock.System{}, a.log)
	a.log.Debug("started", zap.String("command", cmd.CommandPath()), zap.String("db", cfg.DBPath))
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing database", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
