package rekitproject

import (
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
)

// Module provides a Classifier configured from ConfigKey.
var Module = fx.Provide(NewFromConfig)

// Params are the dependencies of a configured Classifier.
type Params struct {
	fx.In

	FS     fs.WorkspaceFS
	Config config.Provider
}

// NewFromConfig creates a Classifier using the layout found in config.
func NewFromConfig(p Params) (*Classifier, error) {
	layout, err := LayoutFromConfig(p.Config)
	if err != nil {
		return nil, err
	}
	return New(p.FS, layout), nil
}
