// Command pec-daemon is the long-running counterpart to pec: it holds
// a single project's Coordinator state resident for the lifetime of
// the process and runs the reference Temporal/Docker dispatch worker
// against it, reloading its TOML config on SIGHUP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/antigravity-dev/pec/internal/config"
	"github.com/antigravity-dev/pec/internal/coordinator"
	"github.com/antigravity-dev/pec/internal/dispatcher"
	"github.com/antigravity-dev/pec/internal/lockfile"
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
		fmt.Fprintln(os.Stderr, "pec-daemon: -project is required")
		os.Exit(1)
	}

	cfgManager, err := config.LoadManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pec-daemon: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	logger := configureLogger(cfg.General.LogLevel, *dev)
	slog.SetDefault(logger)
	logger.Info("pec-daemon starting", "config", *configPath, "project", *projectID)

	lockPath := cfg.General.LockFile
	if lockPath == "" {
		lockPath = "/tmp/pec-daemon.lock"
	}
	lockFile, err := lockfile.Acquire(lockPath)
	if err != nil {
		logger.Error("failed to acquire lock", "error", err)
		os.Exit(1)
	}
	defer lockfile.Release(lockFile)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	coord := coordinator.New(cfg, db)
	rwManager := cfgManager.(*config.RWMutexManager)
	rwManager.OnReload(coord.SetConfig)
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

	watcher, err := config.WatchFile(*configPath, rwManager, logger.With("component", "config"))
	if err != nil {
		logger.Error("failed to start config watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	go func() {
		cfg := cfgManager.Get()
		logger.Info("starting orchestrator worker", "task_queue", cfg.Temporal.TaskQueue)
		if err := orchestrator.StartWorker(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, handle, dock, logger.With("component", "orchestrator")); err != nil {
			logger.Error("orchestrator worker stopped", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ctx.Done():
			logger.Info("pec-daemon stopped")
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				if err := cfgManager.Reload(*configPath); err != nil {
					logger.Error("config reload failed", "error", err)
					continue
				}
				logger.Info("config reloaded")
			default:
				logger.Info("received signal, shutting down", "signal", sig)
				cancel()
				return
			}
		}
	}
}
