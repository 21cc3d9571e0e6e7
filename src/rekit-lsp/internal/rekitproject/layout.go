package rekitproject

import (
	"fmt"

	"go.uber.org/config"
)

// ConfigKey is the configuration key holding the project Layout.
const ConfigKey = "rekit.layout"

// Layout describes the on-disk shape that identifies a Rekit project and locates its artifacts.
// Relative paths are slash separated and resolved against the project root.
type Layout struct {
	// FeaturesDir holds one directory per feature.
	FeaturesDir string `yaml:"featuresDir"`
	// RootMarkers are tooling files of which at least one must exist in the project root.
	// Their location moved between Rekit releases, so every known location is accepted.
	RootMarkers []string `yaml:"rootMarkers"`
	ReduxDir    string   `yaml:"reduxDir"`
	TestDir     string   `yaml:"testDir"`
	ToolsDir    string   `yaml:"toolsDir"`
}

// DefaultLayout returns the layout of Rekit generated projects.
func DefaultLayout() Layout {
	return Layout{
		FeaturesDir: "src/features",
		RootMarkers: []string{
			"tools/feature_template",
			"tools/cli/templates/Page.js",
			"tools/templates/Page.js",
		},
		ReduxDir: "redux",
		TestDir:  "test",
		ToolsDir: "tools",
	}
}

// LayoutFromConfig reads the layout under ConfigKey, filling unset fields from DefaultLayout.
func LayoutFromConfig(cfg config.Provider) (Layout, error) {
	var l Layout
	if err := cfg.Get(ConfigKey).Populate(&l); err != nil {
		return Layout{}, fmt.Errorf("getting config field %q: %w", ConfigKey, err)
	}
	return l.withDefaults(), nil
}

func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.FeaturesDir == "" {
		l.FeaturesDir = d.FeaturesDir
	}
	if len(l.RootMarkers) == 0 {
		l.RootMarkers = d.RootMarkers
	}
	if l.ReduxDir == "" {
		l.ReduxDir = d.ReduxDir
	}
	if l.TestDir == "" {
		l.TestDir = d.TestDir
	}
	if l.ToolsDir == "" {
		l.ToolsDir = d.ToolsDir
	}
	return l
}
