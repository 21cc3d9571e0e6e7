package scriptrunner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"go.uber.org/config"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigKey is the configuration key holding the server default Settings.
	ConfigKey = "rekit.runner"
	// WorkspaceSettingsFile is the optional per-project settings file, relative to the project root.
	WorkspaceSettingsFile = ".rekit-lsp.yaml"
)

// Settings control how generator scripts are launched. They are passed explicitly on every run.
type Settings struct {
	// Interpreter replaces the literal interpreter name, e.g. with an absolute path.
	Interpreter string `yaml:"interpreter" json:"interpreter,omitempty"`
	// PackageManager runs package.json scripts.
	PackageManager string `yaml:"packageManager" json:"packageManager,omitempty"`
	// ModulePath is prepended to NODE_PATH.
	ModulePath string `yaml:"modulePath" json:"modulePath,omitempty"`
	// ExtraSearchDirs are appended to PATH, both for the child and for the interpreter lookup.
	ExtraSearchDirs []string `yaml:"extraSearchDirs" json:"extraSearchDirs,omitempty"`
	// InterestingScripts have their output forwarded to the output panel.
	InterestingScripts []string `yaml:"interestingScripts" json:"interestingScripts,omitempty"`
	// ToolsDir holds the generator scripts, relative to the project root.
	ToolsDir string `yaml:"toolsDir" json:"toolsDir,omitempty"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Interpreter:        "node",
		PackageManager:     "npm",
		InterestingScripts: []string{"run_test", "build", "test:cli"},
		ToolsDir:           "tools",
	}
}

// SettingsFromConfig reads the server defaults under ConfigKey on top of DefaultSettings.
func SettingsFromConfig(cfg config.Provider) (Settings, error) {
	var s Settings
	if err := cfg.Get(ConfigKey).Populate(&s); err != nil {
		return Settings{}, fmt.Errorf("getting config field %q: %w", ConfigKey, err)
	}
	return DefaultSettings().Merge(s), nil
}

// Merge returns s with every field set in override replacing its counterpart.
func (s Settings) Merge(override Settings) Settings {
	if override.Interpreter != "" {
		s.Interpreter = override.Interpreter
	}
	if override.PackageManager != "" {
		s.PackageManager = override.PackageManager
	}
	if override.ModulePath != "" {
		s.ModulePath = override.ModulePath
	}
	if len(override.ExtraSearchDirs) > 0 {
		s.ExtraSearchDirs = slices.Clone(override.ExtraSearchDirs)
	}
	if len(override.InterestingScripts) > 0 {
		s.InterestingScripts = slices.Clone(override.InterestingScripts)
	}
	if override.ToolsDir != "" {
		s.ToolsDir = override.ToolsDir
	}
	return s
}

// IsInteresting reports whether the output of script is forwarded to the output panel.
func (s Settings) IsInteresting(script string) bool {
	return slices.Contains(s.InterestingScripts, script)
}

// ParseWorkspaceSettings parses a workspace settings file.
// Parsing is best effort: fields that decode are returned together with errors describing the rest.
func ParseWorkspaceSettings(r io.Reader) (s Settings, err error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	e := decoder.Decode(&s)
	if e == nil || errors.Is(e, io.EOF) {
		return s, nil
	}

	var typeErr *yaml.TypeError
	if !errors.As(e, &typeErr) {
		return Settings{}, e
	}
	for _, msg := range typeErr.Errors {
		err = multierr.Append(err, errors.New(msg))
	}
	return s, err
}

// LoadWorkspaceSettings reads WorkspaceSettingsFile from root. A missing file yields empty settings.
func LoadWorkspaceSettings(wfs fs.WorkspaceFS, root string) (Settings, error) {
	p := filepath.Join(root, WorkspaceSettingsFile)
	exists, err := wfs.FileExists(p)
	if err != nil || !exists {
		return Settings{}, err
	}
	content, err := wfs.ReadFile(p)
	if err != nil {
		return Settings{}, fmt.Errorf("reading %s: %w", p, err)
	}
	s, err := ParseWorkspaceSettings(bytes.NewReader(content))
	if err != nil {
		return s, fmt.Errorf("parsing %s: %w", p, err)
	}
	return s, nil
}
