package compiler

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// ProjectAssembly accumulates artifacts registered by worker agents for
// a single project and resolves them into a materializable tree.
//
// Artifact collections form their own protected region, independent of
// the plan/schedule/progress state guarded elsewhere, so registration
// can proceed concurrently with progress updates on the same project.
type ProjectAssembly struct {
	mu          sync.Mutex
	Name        string
	ProjectType ProjectType
	Structure   ProjectStructure
	artifacts   map[string]Artifact
	order       []string
	// collisionWarnings accumulates one WARNING ValidationMessage per
	// path-collision rename, naming both artifacts involved, so
	// ValidateAll (and Materialize's compilation_metadata.json) surface
	// them instead of silently dropping the Resolution record.
	collisionWarnings []ValidationMessage
}

// NewProjectAssembly creates an empty assembly for name, with its
// structure set to the ProjectType's preset (DefaultStructure(pt)).
func NewProjectAssembly(name string, pt ProjectType) *ProjectAssembly {
	return &ProjectAssembly{
		Name:        name,
		ProjectType: pt,
		Structure:   DefaultStructure(pt),
		artifacts:   make(map[string]Artifact),
	}
}

// CreateProject builds a new assembly, appending a numeric version
// suffix to name if existingNames already contains it, mirroring the
// original's collision handling for duplicate project names.
func CreateProject(name string, pt ProjectType, existingNames map[string]bool) *ProjectAssembly {
	final := name
	if existingNames[final] {
		for v := 2; ; v++ {
			candidate := fmt.Sprintf("%s_v%d", name, v)
			if !existingNames[candidate] {
				final = candidate
				break
			}
		}
	}
	return NewProjectAssembly(final, pt)
}

// RegisterArtifact adds a produces artifact to the assembly, resolving
// a path collision against an already-registered artifact by renaming
// the older one to "<base>_from_<producer_agent><ext>" and keeping the
// newer artifact at the contested path, reproducing the S6 scenario.
func (a *ProjectAssembly) RegisterArtifact(art Artifact) (Artifact, *Resolution) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if art.FilePath == "" {
		art.FilePath = a.inferPath(art)
	}
	art.FilePath = normalizePath(art.FilePath)

	incomingID := art.ID

	var res *Resolution
	for id, existing := range a.artifacts {
		if existing.FilePath != art.FilePath {
			continue
		}
		older, newer := existing, art
		olderID, newerIsIncoming := id, true
		if existing.Timestamp.After(art.Timestamp) {
			older, newer = art, existing
			olderID, newerIsIncoming = "", false
		}
		renamed := renameForProducer(older.FilePath, older.ProducerAgent)
		older.FilePath = renamed
		res = &Resolution{
			ArtifactID: older.ID,
			OldPath:    existing.FilePath,
			NewPath:    renamed,
			Reason:     "path collision with a newer artifact at the same path",
		}
		otherID := id
		if older.ID == id {
			otherID = incomingID
		}
		a.collisionWarnings = append(a.collisionWarnings, ValidationMessage{
			Level:       LevelWarning,
			Message:     fmt.Sprintf("path collision at %q: artifact %q renamed to %q to avoid colliding with artifact %q", existing.FilePath, older.ID, renamed, otherID),
			ArtifactIDs: []string{older.ID, otherID},
		})
		if newerIsIncoming {
			a.artifacts[olderID] = older
		} else {
			delete(a.artifacts, id)
			a.artifacts[older.ID] = older
			if !containsStr(a.order, older.ID) {
				a.order = append(a.order, older.ID)
			}
			art = newer
		}
		break
	}

	a.artifacts[art.ID] = art
	if !containsStr(a.order, art.ID) {
		a.order = append(a.order, art.ID)
	}
	return art, res
}

// BulkRegister registers each artifact in order, returning every
// resolution produced along the way.
func (a *ProjectAssembly) BulkRegister(artifacts []Artifact) ([]Artifact, []Resolution) {
	registered := make([]Artifact, 0, len(artifacts))
	var resolutions []Resolution
	for _, art := range artifacts {
		reg, res := a.RegisterArtifact(art)
		registered = append(registered, reg)
		if res != nil {
			resolutions = append(resolutions, *res)
		}
	}
	return registered, resolutions
}

// Artifacts returns a stable-ordered snapshot of registered artifacts.
func (a *ProjectAssembly) Artifacts() []Artifact {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Artifact, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.artifacts[id])
	}
	return out
}

// ResolveConflicts scans all registered artifacts for duplicate
// normalized paths and duplicate (name, component_type) pairs that
// RegisterArtifact's incremental check could not see (e.g. artifacts
// whose path was set directly rather than inferred), keeping the
// newest by timestamp and renaming the rest.
func (a *ProjectAssembly) ResolveConflicts() []Resolution {
	a.mu.Lock()
	defer a.mu.Unlock()

	var resolutions []Resolution
	byPath := make(map[string][]string)
	for _, id := range a.order {
		art := a.artifacts[id]
		byPath[art.FilePath] = append(byPath[art.FilePath], id)
	}
	for _, ids := range byPath {
		if len(ids) < 2 {
			continue
		}
		resolutions = append(resolutions, a.keepNewestLocked(ids)...)
	}

	byNameType := make(map[string][]string)
	for _, id := range a.order {
		art := a.artifacts[id]
		key := art.Name + "|" + string(art.ComponentType)
		byNameType[key] = append(byNameType[key], id)
	}
	for _, ids := range byNameType {
		if len(ids) < 2 {
			continue
		}
		resolutions = append(resolutions, a.keepNewestLocked(ids)...)
	}
	return resolutions
}

func (a *ProjectAssembly) keepNewestLocked(ids []string) []Resolution {
	sort.Slice(ids, func(i, j int) bool {
		return a.artifacts[ids[i]].Timestamp.After(a.artifacts[ids[j]].Timestamp)
	})
	keptID := a.artifacts[ids[0]].ID
	var resolutions []Resolution
	for _, id := range ids[1:] {
		art := a.artifacts[id]
		renamed := renameForProducer(art.FilePath, art.ProducerAgent)
		if renamed == art.FilePath {
			continue
		}
		resolutions = append(resolutions, Resolution{
			ArtifactID: art.ID,
			OldPath:    art.FilePath,
			NewPath:    renamed,
			Reason:     "duplicate artifact resolved in favor of the most recent producer",
		})
		a.collisionWarnings = append(a.collisionWarnings, ValidationMessage{
			Level:       LevelWarning,
			Message:     fmt.Sprintf("path collision at %q: artifact %q renamed to %q to avoid colliding with artifact %q", art.FilePath, art.ID, renamed, keptID),
			ArtifactIDs: []string{art.ID, keptID},
		})
		art.FilePath = renamed
		a.artifacts[id] = art
	}
	return resolutions
}

// ValidateAll runs the ERROR/WARNING/INFO validation rules against the
// current artifact set and project structure.
func (a *ProjectAssembly) ValidateAll() []ValidationMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs := append([]ValidationMessage(nil), a.collisionWarnings...)

	byID := make(map[string]Artifact, len(a.artifacts))
	for id, art := range a.artifacts {
		byID[id] = art
	}
	for _, art := range byID {
		for _, dep := range art.Dependencies {
			if _, ok := byID[dep]; !ok {
				msgs = append(msgs, ValidationMessage{
					Level:       LevelError,
					Message:     fmt.Sprintf("artifact %q depends on unknown artifact %q", art.ID, dep),
					ArtifactIDs: []string{art.ID},
				})
			}
		}
	}
	if cyclePath := findArtifactCycle(byID); cyclePath != nil {
		msgs = append(msgs, ValidationMessage{
			Level:       LevelError,
			Message:     "dependency cycle detected among artifacts: " + strings.Join(cyclePath, " -> "),
			ArtifactIDs: cyclePath,
		})
	}

	for _, required := range a.Structure.RequiredFiles {
		found := false
		for _, art := range byID {
			if path.Base(art.FilePath) == required {
				found = true
				break
			}
		}
		if !found {
			msgs = append(msgs, ValidationMessage{
				Level:   LevelWarning,
				Message: fmt.Sprintf("required file %q is missing from the compiled project", required),
			})
		}
	}
	for _, art := range byID {
		prefixes, ok := a.Structure.FileMappings[art.ComponentType]
		if !ok {
			continue
		}
		if !anyPrefix(art.FilePath, prefixes) {
			msgs = append(msgs, ValidationMessage{
				Level:       LevelWarning,
				Message:     fmt.Sprintf("artifact %q placed at %q does not match expected location for %s", art.ID, art.FilePath, art.ComponentType),
				ArtifactIDs: []string{art.ID},
			})
		}
	}

	present := make(map[ComponentType]bool)
	for _, art := range byID {
		present[art.ComponentType] = true
	}
	for _, ct := range []ComponentType{ComponentCode, ComponentDocumentation, ComponentConfig, ComponentResource, ComponentTest} {
		if !present[ct] {
			msgs = append(msgs, ValidationMessage{
				Level:   LevelInfo,
				Message: fmt.Sprintf("no %s artifact registered for this project", ct),
			})
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return levelRank(msgs[i].Level) < levelRank(msgs[j].Level)
	})
	return msgs
}

func levelRank(l ValidationLevel) int {
	switch l {
	case LevelError:
		return 0
	case LevelWarning:
		return 1
	default:
		return 2
	}
}

func findArtifactCycle(byID map[string]Artifact) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(byID))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, dep := range byID[id].Dependencies {
			if _, ok := byID[dep]; !ok {
				continue
			}
			switch color[dep] {
			case gray:
				idx := indexOf(stack, dep)
				cycle = append([]string{}, stack[idx:]...)
				cycle = append(cycle, dep)
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func anyPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix == "." || strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}
	return false
}

func containsStr(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func renameForProducer(p, producer string) string {
	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)
	suffix := producer
	if suffix == "" {
		suffix = "unknown"
	}
	return fmt.Sprintf("%s_from_%s%s", base, suffix, ext)
}

// inferPath assigns a path for an artifact lacking an explicit one,
// using its FileMappings prefix and a default extension for its
// ComponentType, reproducing organize_components' path inference.
func (a *ProjectAssembly) inferPath(art Artifact) string {
	prefixes := a.Structure.FileMappings[art.ComponentType]
	dir := "."
	if len(prefixes) > 0 {
		dir = prefixes[0]
	}
	ext := extensionForType(a.ProjectType, art.ComponentType)
	name := art.Name
	if name == "" {
		name = art.ID
	}
	if dir == "." {
		return name + ext
	}
	return dir + "/" + name + ext
}

// Timestamped stamps now onto an artifact lacking one, so callers that
// construct artifacts without a clock dependency still order correctly
// during conflict resolution.
func Timestamped(art Artifact, now time.Time) Artifact {
	if art.Timestamp.IsZero() {
		art.Timestamp = now
	}
	return art
}
