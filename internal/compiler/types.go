// Package compiler collects heterogeneous artifacts produced by worker
// agents, resolves path/name conflicts, validates project structure,
// and materializes a project directory tree (C5).
package compiler

import (
	"strconv"
	"time"
)

// ComponentType classifies an Artifact's kind.
type ComponentType string

const (
	ComponentCode          ComponentType = "code"
	ComponentDocumentation ComponentType = "documentation"
	ComponentConfig        ComponentType = "config"
	ComponentResource      ComponentType = "resource"
	ComponentTest          ComponentType = "test"
	ComponentBuild         ComponentType = "build"
)

// ProjectType selects the default ProjectStructure a project assembles
// against.
type ProjectType string

const (
	ProjectTypeGoService ProjectType = "go_service"
	ProjectTypeCLITool   ProjectType = "cli_tool"
	ProjectTypeGeneric   ProjectType = "generic"
)

// ValidationLevel classifies a ValidationMessage's severity.
type ValidationLevel string

const (
	LevelError   ValidationLevel = "error"
	LevelWarning ValidationLevel = "warning"
	LevelInfo    ValidationLevel = "info"
)

// Artifact is one unit of output produced by a worker agent.
type Artifact struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ComponentType  ComponentType `json:"component_type"`
	ProducerAgent  string        `json:"producer_agent"`
	Content        any           `json:"content"`
	FilePath       string        `json:"file_path,omitempty"`
	Dependencies   []string      `json:"dependencies,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// ValidationMessage is one diagnostic produced during ValidateAll.
type ValidationMessage struct {
	Level       ValidationLevel `json:"level"`
	Message     string          `json:"message"`
	ArtifactIDs []string        `json:"artifact_ids,omitempty"`
}

// Resolution records one conflict-resolution action taken on an
// artifact's path.
type Resolution struct {
	ArtifactID string `json:"artifact_id"`
	OldPath    string `json:"old_path"`
	NewPath    string `json:"new_path"`
	Reason     string `json:"reason"`
}

// ProjectStructure describes the directory layout and file placement
// rules a project type expects.
type ProjectStructure struct {
	RootDir       string                       `json:"root_dir"`
	Directories   map[string][]string          `json:"directories"`
	FileMappings  map[ComponentType][]string   `json:"file_mappings"`
	RequiredFiles []string                     `json:"required_files"`
}

// CompilationResult is the output of Materialize.
type CompilationResult struct {
	ProjectName        string              `json:"project_name"`
	ProjectType        ProjectType         `json:"project_type"`
	OutputDir          string              `json:"output_dir"`
	Timestamp          time.Time           `json:"timestamp"`
	Success             bool                `json:"success"`
	Components          []Artifact          `json:"components"`
	ValidationMessages  []ValidationMessage `json:"validation_messages"`
}

// Summary returns a short human-readable compilation outcome.
func (r CompilationResult) Summary() string {
	status := "succeeded"
	if !r.Success {
		status = "failed"
	}
	return r.ProjectName + ": compilation " + status +
		" with " + strconv.Itoa(len(r.Components)) + " components and " +
		strconv.Itoa(len(r.ValidationMessages)) + " messages"
}
