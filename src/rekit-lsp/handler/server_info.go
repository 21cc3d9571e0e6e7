package handler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/core"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_configKeyLogging = "logging"
	_infoFileKeyLogs  = "logs"
)

// outputProcessInfo records where the server writes its logs, so editor extensions can offer to open them.
// The listen address is added independently by the JSON-RPC inbound.
func outputProcessInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	var logging core.LoggingConfig
	if err := cfg.Get(_configKeyLogging).Populate(&logging); err != nil {
		return fmt.Errorf("loading logging config: %w", err)
	}

	var files []string
	for _, p := range logging.OutputPaths {
		if p == "stdout" || p == "stderr" {
			continue
		}
		files = append(files, p)
	}
	if len(files) == 0 {
		return nil
	}

	if err := infofile.UpdateField(_infoFileKeyLogs, strings.Join(files, string(filepath.ListSeparator))); err != nil {
		return fmt.Errorf("outputting log paths to info file: %w", err)
	}
	return nil
}
