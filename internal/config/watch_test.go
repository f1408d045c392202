package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	mgr, err := LoadManager(path)
	if err != nil {
		t.Fatalf("LoadManager failed: %v", err)
	}

	w, err := WatchFile(path, mgr.(*RWMutexManager), nil)
	if err != nil {
		t.Fatalf("WatchFile failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	updated := strings.Replace(validConfig, `log_level = "info"`, `log_level = "debug"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mgr.Get().General.LogLevel == "debug" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected watcher to reload config with debug log level")
}
