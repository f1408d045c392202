package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// metadataFileName is the name of the manifest Materialize writes
// alongside the compiled project tree.
const metadataFileName = "compilation_metadata.json"

// Materialize writes every registered artifact to outputDir, staging
// the full tree in a sibling temp directory and renaming it into place
// only once every write succeeds, so a cancelled or failed compilation
// never leaves a partially-written project on disk.
//
// ctx cancellation is checked between artifact writes so a caller can
// abort materialization of a large project without leaving the staging
// directory half-written; Materialize itself removes the stage on
// cancellation or error.
func (a *ProjectAssembly) Materialize(ctx context.Context, outputDir string, now time.Time) (CompilationResult, error) {
	msgs := a.ValidateAll()
	artifacts := a.Artifacts()

	result := CompilationResult{
		ProjectName: a.Name,
		ProjectType: a.ProjectType,
		OutputDir:   outputDir,
		Timestamp:   now,
		Components:  artifacts,
	}
	for _, m := range msgs {
		if m.Level == LevelError {
			result.Success = false
			result.ValidationMessages = msgs
			return result, fmt.Errorf("compilation aborted: %s", m.Message)
		}
	}

	stageDir := outputDir + ".staging"
	if err := os.RemoveAll(stageDir); err != nil {
		return result, fmt.Errorf("clearing stage directory: %w", err)
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return result, fmt.Errorf("creating stage directory: %w", err)
	}
	defer os.RemoveAll(stageDir)

	for _, dirs := range a.Structure.Directories {
		for _, d := range dirs {
			if err := os.MkdirAll(filepath.Join(stageDir, d), 0o755); err != nil {
				return result, fmt.Errorf("creating directory %q: %w", d, err)
			}
		}
	}

	for _, art := range artifacts {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if err := writeArtifact(stageDir, art); err != nil {
			return result, fmt.Errorf("writing artifact %q: %w", art.ID, err)
		}
	}

	result.ValidationMessages = msgs
	result.Success = true
	manifest, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("encoding compilation metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stageDir, metadataFileName), manifest, 0o644); err != nil {
		return result, fmt.Errorf("writing compilation metadata: %w", err)
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return result, fmt.Errorf("clearing output directory: %w", err)
	}
	if err := os.Rename(stageDir, outputDir); err != nil {
		return result, fmt.Errorf("promoting staged project: %w", err)
	}

	return result, nil
}

func writeArtifact(stageDir string, art Artifact) error {
	dest := filepath.Join(stageDir, art.FilePath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	var data []byte
	switch c := art.Content.(type) {
	case string:
		data = []byte(c)
	case []byte:
		data = c
	case nil:
		data = nil
	default:
		encoded, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding non-text content: %w", err)
		}
		data = encoded
	}
	return os.WriteFile(dest, data, 0o644)
}
