// Package config loads and validates the PEC TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "60s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is PEC's top-level configuration, covering the scheduling
// policy knobs left open by spec §9 plus the dispatch/orchestration
// tables needed by the reference dispatcher and workflow.
type Config struct {
	General  General  `toml:"general"`
	Schedule Schedule `toml:"schedule"`
	Store    Store    `toml:"store"`
	Dispatch Dispatch `toml:"dispatch"`
	Temporal Temporal `toml:"temporal"`
}

// General carries ambient daemon settings, mirroring the teacher's
// General table for log level and tick cadence.
type General struct {
	LogLevel     string   `toml:"log_level"`
	TickInterval Duration `toml:"tick_interval"`
	LockFile     string   `toml:"lock_file"`
}

// Schedule resolves the Open Questions left by spec §9 and the
// scheduling thresholds referenced throughout §4.
type Schedule struct {
	MaxProjectDurationDays     int  `toml:"max_project_duration_days"`
	CheckpointEveryNPhases     int  `toml:"checkpoint_every_n_phases"`
	WorkloadImbalanceThreshold int  `toml:"workload_imbalance_threshold"`
	OverdueWarningDays         int  `toml:"overdue_warning_days"`
	InferDependencies          bool `toml:"infer_dependencies"`
	AtRiskSlackDays            int  `toml:"at_risk_slack_days"`
	BottleneckSuccessorMin     int  `toml:"bottleneck_successor_min"`
}

// Store configures PEC's sqlite-backed persistence layer.
type Store struct {
	Path            string   `toml:"path"`
	BusyTimeout     Duration `toml:"busy_timeout"`
	WALCheckpointOn bool     `toml:"wal_checkpoint_on_close"`
}

// Dispatch configures the reference Docker-backed worker dispatcher.
type Dispatch struct {
	Image            string            `toml:"image"`
	Network          string            `toml:"network"`
	Timeout          Duration          `toml:"timeout"`
	MaxConcurrent    int               `toml:"max_concurrent"`
	Env              map[string]string `toml:"env"`
	AutoRemove       bool              `toml:"auto_remove"`
	LogDir           string            `toml:"log_dir"`
	LogRetentionDays int               `toml:"log_retention_days"`
}

// Temporal configures the reference orchestration workflow's client.
type Temporal struct {
	HostPort  string `toml:"host_port"`
	Namespace string `toml:"namespace"`
	TaskQueue string `toml:"task_queue"`
}

// Clone returns a deep copy of cfg so callers can safely mutate the result.
func (cfg *Config) Clone() *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	cloned.Dispatch.Env = cloneStringMap(cfg.Dispatch.Env)
	return &cloned
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Load reads and validates a TOML config file at path, applying
// defaults for any field the file omits.
func Load(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	applyDefaults(&cfg, md)
	normalizePaths(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return &cfg, nil
}

// Reload re-reads path into a fresh Config, used by a manager's Reload
// and by fsnotify-driven hot reload.
func Reload(path string) (*Config, error) {
	return Load(path)
}

// LoadManager loads path and wraps it in an RWMutexManager.
func LoadManager(path string) (ConfigManager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewManager(cfg), nil
}

func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.TickInterval.Duration == 0 {
		cfg.General.TickInterval = Duration{5 * time.Second}
	}
	if cfg.General.LockFile == "" {
		cfg.General.LockFile = "~/.pec/pec.lock"
	}

	if cfg.Schedule.MaxProjectDurationDays == 0 {
		cfg.Schedule.MaxProjectDurationDays = 90
	}
	if cfg.Schedule.CheckpointEveryNPhases == 0 {
		cfg.Schedule.CheckpointEveryNPhases = 3
	}
	if cfg.Schedule.WorkloadImbalanceThreshold == 0 {
		cfg.Schedule.WorkloadImbalanceThreshold = 2
	}
	if cfg.Schedule.OverdueWarningDays == 0 {
		cfg.Schedule.OverdueWarningDays = 2
	}
	if !md.IsDefined("schedule", "infer_dependencies") {
		cfg.Schedule.InferDependencies = true
	}
	if cfg.Schedule.AtRiskSlackDays == 0 {
		cfg.Schedule.AtRiskSlackDays = 1
	}
	if cfg.Schedule.BottleneckSuccessorMin == 0 {
		cfg.Schedule.BottleneckSuccessorMin = 3
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.pec/pec.db"
	}
	if cfg.Store.BusyTimeout.Duration == 0 {
		cfg.Store.BusyTimeout = Duration{5 * time.Second}
	}

	if cfg.Dispatch.Image == "" {
		cfg.Dispatch.Image = "pec-worker:latest"
	}
	if cfg.Dispatch.Timeout.Duration == 0 {
		cfg.Dispatch.Timeout = Duration{30 * time.Minute}
	}
	if cfg.Dispatch.MaxConcurrent == 0 {
		cfg.Dispatch.MaxConcurrent = 4
	}
	if cfg.Dispatch.LogDir == "" {
		cfg.Dispatch.LogDir = "~/.pec/logs"
	}
	if cfg.Dispatch.LogRetentionDays == 0 {
		cfg.Dispatch.LogRetentionDays = 14
	}

	if cfg.Temporal.HostPort == "" {
		cfg.Temporal.HostPort = "localhost:7233"
	}
	if cfg.Temporal.Namespace == "" {
		cfg.Temporal.Namespace = "default"
	}
	if cfg.Temporal.TaskQueue == "" {
		cfg.Temporal.TaskQueue = "pec-tasks"
	}
}

func normalizePaths(cfg *Config) {
	cfg.General.LockFile = ExpandHome(cfg.General.LockFile)
	cfg.Store.Path = ExpandHome(cfg.Store.Path)
	cfg.Dispatch.LogDir = ExpandHome(cfg.Dispatch.LogDir)
}

func validate(cfg *Config) error {
	if cfg.Schedule.MaxProjectDurationDays <= 0 {
		return fmt.Errorf("schedule.max_project_duration_days must be positive")
	}
	if cfg.Schedule.CheckpointEveryNPhases <= 0 {
		return fmt.Errorf("schedule.checkpoint_every_n_phases must be positive")
	}
	if cfg.Schedule.WorkloadImbalanceThreshold < 0 {
		return fmt.Errorf("schedule.workload_imbalance_threshold must not be negative")
	}
	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("general.log_level must be one of debug, info, warn, error, got %q", cfg.General.LogLevel)
	}
	if cfg.Dispatch.MaxConcurrent <= 0 {
		return fmt.Errorf("dispatch.max_concurrent must be positive")
	}
	return nil
}

// ExpandHome expands a leading "~" in path to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
