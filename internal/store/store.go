// Package store provides SQLite-backed persistence for PEC project
// state: plans, schedules, assignments, progress records, and compiled
// artifacts.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/progress"
	"github.com/antigravity-dev/pec/internal/scheduler"
)

// ErrNotFound wraps every "no such row" condition so callers can branch
// on a missing plan/schedule/assignment without string-matching errors.
var ErrNotFound = errors.New("store: not found")

// Store provides SQLite-backed persistence for PEC project state.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	project_type TEXT NOT NULL DEFAULT 'generic',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS plans (
	project_id TEXT PRIMARY KEY REFERENCES projects(id),
	plan_json TEXT NOT NULL,
	tasks_json TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS schedules (
	project_id TEXT PRIMARY KEY REFERENCES projects(id),
	schedule_json TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assignments (
	project_id TEXT PRIMARY KEY REFERENCES projects(id),
	result_json TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS progress_records (
	project_id TEXT NOT NULL REFERENCES projects(id),
	task_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (project_id, task_id)
);

CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	artifact_json TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_progress_records_project ON progress_records(project_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_project ON artifacts(project_id);
`

// Open creates or opens a SQLite database at dbPath and ensures the
// schema exists, enabling WAL mode and a busy timeout so concurrent
// readers don't fail under a writer holding the database briefly.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle, checkpointing WAL
// contents into the main database file first.
func (s *Store) Close() error {
	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		s.db.Close()
		return fmt.Errorf("store: wal checkpoint: %w", err)
	}
	return s.db.Close()
}

// CreateProject inserts a new project row with the given id/name/type.
func (s *Store) CreateProject(id, name string, projectType compiler.ProjectType, now time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, project_type, created_at) VALUES (?, ?, ?, ?)`,
		id, name, string(projectType), now,
	)
	if err != nil {
		return fmt.Errorf("store: create project %s: %w", id, err)
	}
	return nil
}

// ProjectMeta is a project's identity row, independent of its
// plan/schedule/assignment state.
type ProjectMeta struct {
	ID          string
	Name        string
	ProjectType compiler.ProjectType
	CreatedAt   time.Time
}

// LoadProjectMeta returns the identity row for projectID, for
// rehydrating a coordinator.ProjectHandle in a fresh process.
func (s *Store) LoadProjectMeta(projectID string) (ProjectMeta, error) {
	var meta ProjectMeta
	var projectType string
	err := s.db.QueryRow(`SELECT id, name, project_type, created_at FROM projects WHERE id = ?`, projectID).
		Scan(&meta.ID, &meta.Name, &projectType, &meta.CreatedAt)
	if err == sql.ErrNoRows {
		return ProjectMeta{}, fmt.Errorf("%w: project %q", ErrNotFound, projectID)
	}
	if err != nil {
		return ProjectMeta{}, fmt.Errorf("store: load project %s: %w", projectID, err)
	}
	meta.ProjectType = compiler.ProjectType(projectType)
	return meta, nil
}

// SavePlan persists a plan and its ingested tasks for projectID,
// replacing any prior plan.
func (s *Store) SavePlan(projectID string, p *plan.Plan, tasks []plan.Task, now time.Time) error {
	planJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: encode plan: %w", err)
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("store: encode tasks: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO plans (project_id, plan_json, tasks_json, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET plan_json=excluded.plan_json, tasks_json=excluded.tasks_json, updated_at=excluded.updated_at
	`, projectID, string(planJSON), string(tasksJSON), now)
	if err != nil {
		return fmt.Errorf("store: save plan for %s: %w", projectID, err)
	}
	return nil
}

// LoadPlan returns the persisted plan and tasks for projectID.
func (s *Store) LoadPlan(projectID string) (*plan.Plan, []plan.Task, error) {
	var planJSON, tasksJSON string
	err := s.db.QueryRow(`SELECT plan_json, tasks_json FROM plans WHERE project_id = ?`, projectID).Scan(&planJSON, &tasksJSON)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: plan for project %s", ErrNotFound, projectID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: load plan for %s: %w", projectID, err)
	}
	var p plan.Plan
	if err := json.Unmarshal([]byte(planJSON), &p); err != nil {
		return nil, nil, fmt.Errorf("store: decode plan: %w", err)
	}
	var tasks []plan.Task
	if err := json.Unmarshal([]byte(tasksJSON), &tasks); err != nil {
		return nil, nil, fmt.Errorf("store: decode tasks: %w", err)
	}
	return &p, tasks, nil
}

// SaveSchedule persists sched for projectID, replacing any prior one.
func (s *Store) SaveSchedule(projectID string, sched *scheduler.Schedule, now time.Time) error {
	data, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("store: encode schedule: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO schedules (project_id, schedule_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET schedule_json=excluded.schedule_json, updated_at=excluded.updated_at
	`, projectID, string(data), now)
	if err != nil {
		return fmt.Errorf("store: save schedule for %s: %w", projectID, err)
	}
	return nil
}

// LoadSchedule returns the persisted schedule for projectID.
func (s *Store) LoadSchedule(projectID string) (*scheduler.Schedule, error) {
	var data string
	err := s.db.QueryRow(`SELECT schedule_json FROM schedules WHERE project_id = ?`, projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: schedule for project %s", ErrNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load schedule for %s: %w", projectID, err)
	}
	var sched scheduler.Schedule
	if err := json.Unmarshal([]byte(data), &sched); err != nil {
		return nil, fmt.Errorf("store: decode schedule: %w", err)
	}
	return &sched, nil
}

// SaveAssignment persists result for projectID, replacing any prior one.
func (s *Store) SaveAssignment(projectID string, result *assignment.Result, now time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: encode assignment: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO assignments (project_id, result_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET result_json=excluded.result_json, updated_at=excluded.updated_at
	`, projectID, string(data), now)
	if err != nil {
		return fmt.Errorf("store: save assignment for %s: %w", projectID, err)
	}
	return nil
}

// LoadAssignment returns the persisted assignment result for projectID.
func (s *Store) LoadAssignment(projectID string) (*assignment.Result, error) {
	var data string
	err := s.db.QueryRow(`SELECT result_json FROM assignments WHERE project_id = ?`, projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: assignment for project %s", ErrNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load assignment for %s: %w", projectID, err)
	}
	var result assignment.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("store: decode assignment: %w", err)
	}
	return &result, nil
}

// SaveProgressRecord upserts a single task's progress record.
func (s *Store) SaveProgressRecord(projectID string, rec *progress.ProgressRecord, now time.Time) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode progress record: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO progress_records (project_id, task_id, record_json, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, task_id) DO UPDATE SET record_json=excluded.record_json, updated_at=excluded.updated_at
	`, projectID, rec.TaskID, string(data), now)
	if err != nil {
		return fmt.Errorf("store: save progress record for %s/%s: %w", projectID, rec.TaskID, err)
	}
	return nil
}

// LoadProgressRecords returns every persisted progress record for projectID.
func (s *Store) LoadProgressRecords(projectID string) ([]*progress.ProgressRecord, error) {
	rows, err := s.db.Query(`SELECT record_json FROM progress_records WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load progress records for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []*progress.ProgressRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("store: scan progress record: %w", err)
		}
		var rec progress.ProgressRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("store: decode progress record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// SaveArtifact upserts a compiled artifact for projectID.
func (s *Store) SaveArtifact(projectID string, art compiler.Artifact, now time.Time) error {
	data, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("store: encode artifact: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO artifacts (id, project_id, artifact_json, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET artifact_json=excluded.artifact_json, updated_at=excluded.updated_at
	`, art.ID, projectID, string(data), now)
	if err != nil {
		return fmt.Errorf("store: save artifact %s: %w", art.ID, err)
	}
	return nil
}

// LoadArtifacts returns every persisted artifact for projectID.
func (s *Store) LoadArtifacts(projectID string) ([]compiler.Artifact, error) {
	rows, err := s.db.Query(`SELECT artifact_json FROM artifacts WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load artifacts for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []compiler.Artifact
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("store: scan artifact: %w", err)
		}
		var art compiler.Artifact
		if err := json.Unmarshal([]byte(data), &art); err != nil {
			return nil, fmt.Errorf("store: decode artifact: %w", err)
		}
		out = append(out, art)
	}
	return out, rows.Err()
}

// ProjectIDs returns every project id currently persisted, ordered by
// creation time, used to rehydrate a coordinator's in-memory project
// handles at startup.
func (s *Store) ProjectIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
