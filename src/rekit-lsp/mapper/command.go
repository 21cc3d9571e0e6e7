package mapper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ArgumentsToCommandArgs decodes the first argument of a rekit.* command.
// The argument is either a CommandArgs object or a bare path string. File URIs are mapped to paths.
func ArgumentsToCommandArgs(arguments []interface{}) (entity.CommandArgs, error) {
	args := entity.CommandArgs{}
	if len(arguments) == 0 {
		return args, errors.MissingPathError
	}

	raw, ok := arguments[0].([]byte)
	if !ok {
		var err error
		if raw, err = json.Marshal(arguments[0]); err != nil {
			return args, wrapErrParse(err)
		}
	}

	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		args.Path = path
	} else if err := json.Unmarshal(raw, &args); err != nil {
		return args, wrapErrParse(err)
	}

	if args.Path == "" {
		return args, errors.MissingPathError
	}
	if strings.HasPrefix(args.Path, uri.FileScheme+":") {
		p, err := DocumentURIToPath(uri.URI(args.Path))
		if err != nil {
			return args, err
		}
		args.Path = p
	}
	args.Path = filepath.Clean(args.Path)
	return args, nil
}

// DocumentURIToPath maps a file URI to a filesystem path. Other schemes are rejected.
func DocumentURIToPath(u protocol.DocumentURI) (string, error) {
	parsed, err := url.ParseRequestURI(string(u))
	if err != nil {
		return "", fmt.Errorf("parsing document uri %q: %w", u, err)
	}
	if parsed.Scheme != uri.FileScheme || parsed.Path == "" {
		return "", fmt.Errorf("document uri %q is not a file path", u)
	}
	return u.Filename(), nil
}

// PathToURI maps a filesystem path to a file URI.
func PathToURI(path string) protocol.URI {
	return uri.File(path)
}

// InitializationOptionsToSettings reads runner overrides from the initialize request.
// Missing options yield empty settings.
func InitializationOptionsToSettings(options interface{}) (scriptrunner.Settings, error) {
	s := scriptrunner.Settings{}
	if options == nil {
		return s, nil
	}

	raw, err := json.Marshal(options)
	if err != nil {
		return s, wrapErrParse(err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return scriptrunner.Settings{}, wrapErrParse(err)
	}
	return s, nil
}
