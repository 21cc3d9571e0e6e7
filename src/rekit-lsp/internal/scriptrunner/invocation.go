package scriptrunner

import (
	"path/filepath"
	"slices"
	"strings"

	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
)

const (
	_envPath     = "PATH"
	_envNodePath = "NODE_PATH"
	_scriptExt   = ".js"
)

// Invocation describes one child process: `<Executable> [Script] Args...` run in Dir.
type Invocation struct {
	// Name is the script name used for logging and the interesting-script check.
	Name       string
	Executable string
	// Script is empty for package manager invocations.
	Script string
	Args   []string
	Dir    string
	// Env holds overrides applied on top of the inherited environment.
	Env map[string]string
}

// NewScriptInvocation builds `<interpreter> <root>/<toolsDir>/<script>.js args...` run from root.
// Empty arguments are dropped.
func NewScriptInvocation(settings Settings, baseEnv []string, root, script string, args []string) Invocation {
	settings = DefaultSettings().Merge(settings)
	return Invocation{
		Name:       script,
		Executable: settings.Interpreter,
		Script:     filepath.Join(root, filepath.FromSlash(settings.ToolsDir), script+_scriptExt),
		Args:       nonEmpty(args),
		Dir:        root,
		Env:        envOverrides(settings, baseEnv),
	}
}

// NewPackageInvocation builds `<packageManager> run <script>` run from root.
func NewPackageInvocation(settings Settings, baseEnv []string, root, script string) Invocation {
	settings = DefaultSettings().Merge(settings)
	return Invocation{
		Name:       script,
		Executable: settings.PackageManager,
		Args:       []string{"run", script},
		Dir:        root,
		Env:        envOverrides(settings, baseEnv),
	}
}

// Argv returns the arguments following the executable.
func (i Invocation) Argv() []string {
	if i.Script == "" {
		return slices.Clone(i.Args)
	}
	return append([]string{i.Script}, i.Args...)
}

// String renders the command line for display.
func (i Invocation) String() string {
	return strings.Join(append([]string{i.Executable}, i.Argv()...), " ")
}

// SearchPath is the PATH used both to find the executable and by the child.
func (i Invocation) SearchPath() string {
	return i.Env[_envPath]
}

// Environ returns base with the overrides applied. Overridden variables keep their position.
func (i Invocation) Environ(base []string) []string {
	env := make([]string, 0, len(base)+len(i.Env))
	applied := make(map[string]bool, len(i.Env))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if value, ok := i.Env[key]; ok {
			if !applied[key] {
				env = append(env, key+"="+value)
				applied[key] = true
			}
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(i.Env))
	for key := range i.Env {
		if !applied[key] {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		env = append(env, key+"="+i.Env[key])
	}
	return env
}

// LookPath resolves the executable against the invocation's search path.
func (i Invocation) LookPath(wfs fs.WorkspaceFS) (string, error) {
	return lookPath(wfs, i.Executable, i.SearchPath())
}

func envOverrides(settings Settings, baseEnv []string) map[string]string {
	env := map[string]string{
		_envPath: joinList(append([]string{getenv(baseEnv, _envPath)}, settings.ExtraSearchDirs...)...),
	}
	if settings.ModulePath != "" {
		env[_envNodePath] = joinList(settings.ModulePath, getenv(baseEnv, _envNodePath))
	}
	return env
}

// lookPath searches dirs of searchPath for an executable called name.
// Names containing a separator are checked as given.
func lookPath(wfs fs.WorkspaceFS, name, searchPath string) (string, error) {
	notFound := &rerrors.InterpreterNotFoundError{Interpreter: name, SearchPath: searchPath}
	if name == "" {
		return "", notFound
	}

	if strings.ContainsRune(name, filepath.Separator) {
		if ok, err := wfs.IsExecutable(name); err == nil && ok {
			return name, nil
		}
		return "", notFound
	}

	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if ok, err := wfs.IsExecutable(candidate); err == nil && ok {
			return candidate, nil
		}
	}
	return "", notFound
}

func getenv(env []string, key string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}

func joinList(elems ...string) string {
	return strings.Join(nonEmpty(elems), string(filepath.ListSeparator))
}

func nonEmpty(values []string) []string {
	result := []string{}
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
