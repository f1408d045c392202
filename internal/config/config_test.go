package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pec.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
[general]
log_level = "info"
tick_interval = "5s"

[schedule]
max_project_duration_days = 90
checkpoint_every_n_phases = 2
workload_imbalance_threshold = 2
overdue_warning_days = 3

[store]
path = "/tmp/pec-test.db"

[dispatch]
image = "pec-worker:latest"
max_concurrent = 4

[temporal]
host_port = "localhost:7233"
namespace = "default"
`

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `
[schedule]
max_project_duration_days = 30
`
	path := writeTestConfig(t, minimal)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.General.LogLevel)
	}
	if cfg.Schedule.CheckpointEveryNPhases != 3 {
		t.Fatalf("expected default checkpoint_every_n_phases 3, got %d", cfg.Schedule.CheckpointEveryNPhases)
	}
	if !cfg.Schedule.InferDependencies {
		t.Fatal("expected infer_dependencies to default true")
	}
	if cfg.Dispatch.Image != "pec-worker:latest" {
		t.Fatalf("expected default dispatch image, got %q", cfg.Dispatch.Image)
	}
	if cfg.Temporal.TaskQueue != "pec-tasks" {
		t.Fatalf("expected default task queue, got %q", cfg.Temporal.TaskQueue)
	}
}

func TestLoadHonorsExplicitInferDependenciesFalse(t *testing.T) {
	content := "\n[schedule]\ninfer_dependencies = false\nmax_project_duration_days = 30\n"
	path := writeTestConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.InferDependencies {
		t.Fatal("expected explicit infer_dependencies = false to be honored")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	content := `
[general]
log_level = "verbose"
`
	path := writeTestConfig(t, content)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoadRejectsNonPositiveMaxProjectDuration(t *testing.T) {
	content := `
[schedule]
max_project_duration_days = 0
`
	path := writeTestConfig(t, content)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive max_project_duration_days")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandHomeExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	got := ExpandHome("~/pec/pec.db")
	want := filepath.Join(home, "pec/pec.db")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExpandHomeLeavesAbsolutePathAlone(t *testing.T) {
	if got := ExpandHome("/var/lib/pec.db"); got != "/var/lib/pec.db" {
		t.Fatalf("expected absolute path unchanged, got %q", got)
	}
}

func TestCloneIsolatesDispatchEnv(t *testing.T) {
	cfg := &Config{Dispatch: Dispatch{Env: map[string]string{"FOO": "bar"}}}
	cloned := cfg.Clone()
	cloned.Dispatch.Env["FOO"] = "baz"
	if cfg.Dispatch.Env["FOO"] != "bar" {
		t.Fatal("expected Clone to deep-copy the dispatch env map")
	}
}
