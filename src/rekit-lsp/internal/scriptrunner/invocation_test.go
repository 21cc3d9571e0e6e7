package scriptrunner

import (
	"os"
	"path/filepath"
	"testing"

	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _sep = string(filepath.ListSeparator)

func TestNewScriptInvocation(t *testing.T) {
	inv := NewScriptInvocation(
		Settings{Interpreter: "nodejs", ExtraSearchDirs: []string{"/usr/local/bin", ""}},
		[]string{"PATH=/usr/bin"},
		"/proj", "add_component", []string{"checkout/Cart", "", "--connect"},
	)

	assert.Equal(t, "add_component", inv.Name)
	assert.Equal(t, "nodejs", inv.Executable)
	assert.Equal(t, filepath.FromSlash("/proj/tools/add_component.js"), inv.Script)
	assert.Equal(t, []string{"checkout/Cart", "--connect"}, inv.Args)
	assert.Equal(t, "/proj", inv.Dir)
	assert.Equal(t, "/usr/bin"+_sep+"/usr/local/bin", inv.SearchPath())
	assert.NotContains(t, inv.Env, "NODE_PATH")
	assert.Equal(t, []string{inv.Script, "checkout/Cart", "--connect"}, inv.Argv())
	assert.Equal(t, "nodejs "+inv.Script+" checkout/Cart --connect", inv.String())
}

func TestNewPackageInvocation(t *testing.T) {
	inv := NewPackageInvocation(Settings{PackageManager: "yarn", ModulePath: "/opt/modules"}, nil, "/proj", "test:cli")

	assert.Equal(t, "yarn", inv.Executable)
	assert.Empty(t, inv.Script)
	assert.Equal(t, []string{"run", "test:cli"}, inv.Argv())
	assert.Equal(t, "/opt/modules", inv.Env["NODE_PATH"])
	assert.Equal(t, "yarn run test:cli", inv.String())
}

func TestEnviron(t *testing.T) {
	inv := Invocation{Env: map[string]string{
		"PATH":      "/usr/bin" + _sep + "/opt/bin",
		"NODE_PATH": "/opt/modules",
		"CI":        "true",
	}}

	env := inv.Environ([]string{"HOME=/home/dev", "PATH=/usr/bin", "LANG=C", "PATH=/duplicate"})
	assert.Equal(t, []string{
		"HOME=/home/dev",
		"PATH=/usr/bin" + _sep + "/opt/bin",
		"LANG=C",
		"CI=true",
		"NODE_PATH=/opt/modules",
	}, env)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "npm")
	require.NoError(t, os.WriteFile(plain, []byte(""), 0o644))

	wfs := fs.New()
	searchPath := "/nonexistent" + _sep + "" + _sep + dir

	got, err := lookPath(wfs, "node", searchPath)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = lookPath(wfs, bin, "")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = lookPath(wfs, "npm", searchPath)
	nf, ok := rerrors.InterpreterNotFound(err)
	require.True(t, ok)
	assert.Equal(t, searchPath, nf.SearchPath)

	_, err = lookPath(wfs, plain, searchPath)
	_, ok = rerrors.InterpreterNotFound(err)
	assert.True(t, ok)

	_, err = lookPath(wfs, "", searchPath)
	_, ok = rerrors.InterpreterNotFound(err)
	assert.True(t, ok)
}
