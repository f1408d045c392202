// Command pec-docker-worker is a standalone reference dispatch worker:
// it rehydrates one project's state and runs only the Temporal worker
// side of the orchestrator, so dispatch capacity can be scaled on
// infrastructure separate from the pec-daemon process that owns the
// project's config hot-reload and single-instance lock.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/antigravity-dev/pec/internal/config"
	"github.com/antigravity-dev/pec/internal/coordinator"
	"github.com/antigravity-dev/pec/internal/dispatcher"
	"github.com/antigravity-dev/pec/internal/orchestrator"
	"github.com/antigravity-dev/pec/internal/store"
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

func main() {
	configPath := flag.String("config", "pec.toml", "path to config file")
	projectID := flag.String("project", "", "project id to dispatch against")
	dev := flag.Bool("dev", false, "use text log format (default is JSON)")
	flag.Parse()

	if strings.TrimSpace(*projectID) == "" {
		fmt.Fprintln(os.Stderr, "pec-docker-worker: -project is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pec-docker-worker: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := configureLogger(cfg.General.LogLevel, *dev)
	slog.SetDefault(logger)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	coord := coordinator.New(cfg, db)
	handle, err := coord.Rehydrate(*projectID, logger)
	if err != nil {
		logger.Error("failed to rehydrate project", "project", *projectID, "error", err)
		os.Exit(1)
	}

	dock, err := dispatcher.NewDockerDispatcher(cfg.Dispatch.Image)
	if err != nil {
		logger.Error("failed to create docker dispatcher", "error", err)
		os.Exit(1)
	}

	logger.Info("pec-docker-worker starting", "project", *projectID, "task_queue", cfg.Temporal.TaskQueue)
	if err := orchestrator.StartWorker(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, handle, dock, logger); err != nil {
		logger.Error("orchestrator worker stopped", "error", err)
		os.Exit(1)
	}
}
