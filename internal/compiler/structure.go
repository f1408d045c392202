package compiler

// DefaultStructure returns the built-in ProjectStructure for a
// ProjectType, reproducing get_default_structure's WEB_APP/API presets
// adapted to idiomatic Go project layouts.
func DefaultStructure(pt ProjectType) ProjectStructure {
	switch pt {
	case ProjectTypeGoService:
		return ProjectStructure{
			RootDir: ".",
			Directories: map[string][]string{
				"cmd":      {"cmd/service"},
				"internal": {"internal"},
				"docs":     {"docs"},
				"test":     {"test"},
			},
			FileMappings: map[ComponentType][]string{
				ComponentCode:          {"internal", "cmd/service"},
				ComponentDocumentation: {"docs"},
				ComponentConfig:        {"."},
				ComponentResource:      {"internal/resources"},
				ComponentTest:          {"test", "internal"},
				ComponentBuild:         {"."},
			},
			RequiredFiles: []string{"go.mod", "README.md"},
		}
	case ProjectTypeCLITool:
		return ProjectStructure{
			RootDir: ".",
			Directories: map[string][]string{
				"cmd":      {"cmd/cli"},
				"internal": {"internal"},
				"docs":     {"docs"},
			},
			FileMappings: map[ComponentType][]string{
				ComponentCode:          {"internal", "cmd/cli"},
				ComponentDocumentation: {"docs"},
				ComponentConfig:        {"."},
				ComponentTest:          {"internal"},
				ComponentBuild:         {"."},
			},
			RequiredFiles: []string{"go.mod", "README.md"},
		}
	default:
		return ProjectStructure{
			RootDir: ".",
			Directories: map[string][]string{
				"src":   {"src"},
				"docs":  {"docs"},
				"tests": {"tests"},
			},
			FileMappings: map[ComponentType][]string{
				ComponentCode:          {"src"},
				ComponentDocumentation: {"docs"},
				ComponentConfig:        {"."},
				ComponentResource:      {"src/resources"},
				ComponentTest:          {"tests"},
				ComponentBuild:         {"."},
			},
			RequiredFiles: []string{"README.md"},
		}
	}
}

// extensionForType returns the default file extension assigned to an
// artifact of a given ComponentType when it lacks an explicit path,
// adapted per ProjectType to match Go idioms instead of the original's
// JS-centric defaults.
func extensionForType(pt ProjectType, ct ComponentType) string {
	if pt == ProjectTypeGoService || pt == ProjectTypeCLITool {
		switch ct {
		case ComponentCode:
			return ".go"
		case ComponentDocumentation:
			return ".md"
		case ComponentConfig:
			return ".toml"
		case ComponentTest:
			return "_test.go"
		case ComponentBuild:
			return ".sh"
		default:
			return ".txt"
		}
	}
	switch ct {
	case ComponentCode:
		return ".js"
	case ComponentDocumentation:
		return ".md"
	case ComponentConfig:
		return ".json"
	case ComponentTest:
		return ".test.js"
	case ComponentBuild:
		return ".sh"
	default:
		return ".txt"
	}
}
