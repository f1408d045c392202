// Package main implements pec, the project-engine operator CLI: create
// projects, submit plans, inspect schedule/progress state, and
// materialize compiled output — a one-shot process per invocation, all
// state read from and written back to the sqlite store opened from
// --config.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antigravity-dev/pec/internal/config"
	"github.com/antigravity-dev/pec/internal/coordinator"
	"github.com/antigravity-dev/pec/internal/store"
)

var (
	configPath string
	devLog     bool
	logger     *slog.Logger
)

func configureLogger(logLevel string, useDev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if useDev {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// openCoordinator loads config and opens the store, returning a fresh
// Coordinator for this one-shot invocation.
func openCoordinator() (*coordinator.Coordinator, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	logger = configureLogger(cfg.General.LogLevel, devLog)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return coordinator.New(cfg, db), db, nil
}

var rootCmd = &cobra.Command{
	Use:   "pec",
	Short: "pec drives the project-engine: ingest plans, schedule and assign tasks, track progress, and materialize output",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "pec.toml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "use text log format (default is JSON)")

	rootCmd.AddCommand(projectCmd, planCmd, statusCmd, progressCmd, bottlenecksCmd, atRiskCmd, materializeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
