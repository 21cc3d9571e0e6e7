// Package outputpanel keeps one read-only output file per session that mirrors script output to the editor.
package outputpanel

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/serverinfofile"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_fmtOutputKey = "output:%s"
	_fileMode     = 0o444
)

// Module provides the panel Manager.
var Module = fx.Provide(New)

// Params define the dependencies of the Manager.
type Params struct {
	fx.In

	FS             fs.WorkspaceFS
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
	Logger         *zap.SugaredLogger
}

// Panel is the shared output sink of one session.
// Writes are passed through unchanged; the editor only ever reads the file.
type Panel interface {
	io.Writer
	// Clear discards everything written so far.
	Clear() error
	// Path is the file backing the panel.
	Path() string
}

// Manager owns the panels of all sessions.
type Manager interface {
	// Panel returns the panel of session, creating its file on first use.
	// mirror receives a copy of every write and may be nil.
	Panel(session uuid.UUID, mirror io.Writer) (Panel, error)
	// Close removes the panel of session, if any.
	Close(session uuid.UUID) error
}

type manager struct {
	fs             fs.WorkspaceFS
	serverInfoFile serverinfofile.ServerInfoFile
	logger         *zap.SugaredLogger

	mu     sync.Mutex
	panels map[uuid.UUID]*panel
}

// New creates a Manager whose panels are removed when the application stops.
func New(p Params) Manager {
	m := &manager{
		fs:             p.FS,
		serverInfoFile: p.ServerInfoFile,
		logger:         p.Logger,
		panels:         make(map[uuid.UUID]*panel),
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return m.closeAll()
		},
	})
	return m
}

func (m *manager) Panel(session uuid.UUID, mirror io.Writer) (Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.panels[session]; ok {
		return p, nil
	}

	cacheDir, err := m.fs.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("getting cache dir: %w", err)
	}
	dir := filepath.Join(cacheDir, "rekit-lsp", "output")
	if err := m.fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, session.String()+".log")
	// A leftover read-only file could not be reopened for writing.
	if err := m.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale output file: %w", err)
	}
	file, err := m.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, _fileMode)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	p := &panel{
		file:   file,
		path:   path,
		mirror: mirror,
		logger: m.logger,
	}
	m.panels[session] = p

	if err := m.serverInfoFile.UpdateField(fmt.Sprintf(_fmtOutputKey, session.String()), path); err != nil {
		m.logger.Warnf("recording output file in server info file: %v", err)
	}
	return p, nil
}

func (m *manager) Close(session uuid.UUID) error {
	m.mu.Lock()
	p, ok := m.panels[session]
	delete(m.panels, session)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.remove(p)
}

func (m *manager) closeAll() error {
	m.mu.Lock()
	panels := m.panels
	m.panels = make(map[uuid.UUID]*panel)
	m.mu.Unlock()

	var err error
	for _, p := range panels {
		err = multierr.Append(err, m.remove(p))
	}
	return err
}

func (m *manager) remove(p *panel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return multierr.Append(p.file.Close(), m.fs.Remove(p.path))
}

type panel struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	mirror io.Writer
	logger *zap.SugaredLogger
}

// Write appends data to the file and forwards it to the mirror. Mirror failures are only logged.
func (p *panel) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.file.Write(data)
	if err != nil {
		return n, fmt.Errorf("writing output panel: %w", err)
	}
	if p.mirror != nil {
		if _, err := p.mirror.Write(data); err != nil {
			p.logger.Debugf("mirroring output: %v", err)
		}
	}
	return n, nil
}

func (p *panel) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.file.Truncate(0); err != nil {
		return fmt.Errorf("clearing output panel: %w", err)
	}
	return nil
}

func (p *panel) Path() string {
	return p.path
}
