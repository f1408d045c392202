package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegisterArtifactResolvesPathCollisionS6(t *testing.T) {
	asm := NewProjectAssembly("widget", ProjectTypeGeneric)
	now := time.Now()

	older, res := asm.RegisterArtifact(Artifact{
		ID: "a1", Name: "index", ComponentType: ComponentCode,
		ProducerAgent: "frontend_agent", FilePath: "src/index.js", Timestamp: now,
	})
	require.Nil(t, res)
	require.Equal(t, "src/index.js", older.FilePath)

	newer, res := asm.RegisterArtifact(Artifact{
		ID: "a2", Name: "index", ComponentType: ComponentCode,
		ProducerAgent: "backend_agent", FilePath: "src/index.js", Timestamp: now.Add(time.Minute),
	})
	require.NotNil(t, res)
	require.Equal(t, "src/index.js", newer.FilePath)
	require.Equal(t, "a1", res.ArtifactID)
	require.Equal(t, "src/index_from_frontend_agent.js", res.NewPath)

	artifacts := asm.Artifacts()
	require.Len(t, artifacts, 2)
	paths := map[string]string{}
	for _, art := range artifacts {
		paths[art.ID] = art.FilePath
	}
	require.Equal(t, "src/index_from_frontend_agent.js", paths["a1"])
	require.Equal(t, "src/index.js", paths["a2"])

	msgs := asm.ValidateAll()
	var warning *ValidationMessage
	for i := range msgs {
		if msgs[i].Level == LevelWarning && len(msgs[i].ArtifactIDs) > 0 {
			warning = &msgs[i]
			break
		}
	}
	require.NotNil(t, warning, "expected a WARNING validation message for the path collision")
	require.ElementsMatch(t, []string{"a1", "a2"}, warning.ArtifactIDs)
	require.Contains(t, warning.Message, "a1")
	require.Contains(t, warning.Message, "a2")
}

func TestValidateAllDetectsDependencyCycle(t *testing.T) {
	asm := NewProjectAssembly("cyclic", ProjectTypeGeneric)
	asm.RegisterArtifact(Artifact{ID: "a1", Name: "a", ComponentType: ComponentCode, FilePath: "src/a.js", Dependencies: []string{"a2"}})
	asm.RegisterArtifact(Artifact{ID: "a2", Name: "b", ComponentType: ComponentCode, FilePath: "src/b.js", Dependencies: []string{"a1"}})

	msgs := asm.ValidateAll()
	require.NotEmpty(t, msgs)
	require.Equal(t, LevelError, msgs[0].Level)
}

func TestValidateAllFlagsMissingDependencyAndRequiredFile(t *testing.T) {
	asm := NewProjectAssembly("incomplete", ProjectTypeGeneric)
	asm.RegisterArtifact(Artifact{ID: "a1", Name: "a", ComponentType: ComponentCode, FilePath: "src/a.js", Dependencies: []string{"missing"}})

	msgs := asm.ValidateAll()
	var sawMissingDep, sawMissingFile bool
	for _, m := range msgs {
		if m.Level == LevelError {
			sawMissingDep = true
		}
		if m.Level == LevelWarning {
			sawMissingFile = true
		}
	}
	require.True(t, sawMissingDep)
	require.True(t, sawMissingFile, "expected a warning for the missing README.md")
}

func TestResolveConflictsKeepsNewestByNameAndType(t *testing.T) {
	asm := NewProjectAssembly("dup", ProjectTypeGeneric)
	now := time.Now()
	asm.RegisterArtifact(Artifact{ID: "a1", Name: "util", ComponentType: ComponentCode, FilePath: "src/a1.js", ProducerAgent: "agent_a", Timestamp: now})
	asm.RegisterArtifact(Artifact{ID: "a2", Name: "util", ComponentType: ComponentCode, FilePath: "src/a2.js", ProducerAgent: "agent_b", Timestamp: now.Add(time.Minute)})

	resolutions := asm.ResolveConflicts()
	require.Len(t, resolutions, 1)
	require.Equal(t, "a1", resolutions[0].ArtifactID)
}

func TestCreateProjectVersionSuffixesOnNameCollision(t *testing.T) {
	existing := map[string]bool{"widget": true, "widget_v2": true}
	asm := CreateProject("widget", ProjectTypeGeneric, existing)
	require.Equal(t, "widget_v3", asm.Name)
}

func TestMaterializeWritesStagedTreeAndMetadata(t *testing.T) {
	asm := NewProjectAssembly("materialized", ProjectTypeGeneric)
	asm.RegisterArtifact(Artifact{
		ID: "a1", Name: "README", ComponentType: ComponentDocumentation,
		FilePath: "README.md", Content: "# materialized\n", Timestamp: time.Now(),
	})

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	result, err := asm.Materialize(context.Background(), out, time.Now())
	require.NoError(t, err)
	require.True(t, result.Success)

	data, err := os.ReadFile(filepath.Join(out, "README.md"))
	require.NoError(t, err)
	require.Equal(t, "# materialized\n", string(data))

	_, err = os.Stat(filepath.Join(out, metadataFileName))
	require.NoError(t, err)

	_, err = os.Stat(out + ".staging")
	require.True(t, os.IsNotExist(err), "staging directory should be removed after promotion")
}

func TestMaterializeAbortsOnErrorLevelValidation(t *testing.T) {
	asm := NewProjectAssembly("broken", ProjectTypeGeneric)
	asm.RegisterArtifact(Artifact{ID: "a1", Name: "a", ComponentType: ComponentCode, FilePath: "src/a.go", Dependencies: []string{"missing"}})

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	_, err := asm.Materialize(context.Background(), out, time.Now())
	require.Error(t, err)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "output directory should not exist after an aborted compilation")
}
