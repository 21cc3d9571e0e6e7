// Package jsonrpcfx serves JSON-RPC 2.0 connections from editors, over TCP or over stdio.
package jsonrpcfx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/serverinfofile"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_configKeyAddress = "jsonrpc.address"
	_configKeyMode    = "jsonrpc.mode"
	_outputKey        = "lsp-address"

	// ModeTCP accepts any number of editors on a listening socket.
	ModeTCP = "tcp"
	// ModeStdio serves the single editor that spawned the process. The app stops when it disconnects.
	ModeStdio = "stdio"
)

// Module is an fx module to handle JSON-RPC requests.
var Module = fx.Provide(New)

// JSONRPCModule represents a module to manage JSON-RPC requests.
type JSONRPCModule interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	ServeStream(ctx context.Context, conn jsonrpc2.Conn) error
	RegisterConnectionManager(connectionManager ConnectionManager) error
}

// Router serves as the interface through which handling of requests will be implemented.
type Router interface {
	HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error
	UUID() uuid.UUID
}

// ConnectionManager will manage each active connection and its corresponding Router throughout the lifecycle of a connection.
type ConnectionManager interface {
	NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router Router, err error)
	RemoveConnection(ctx context.Context, id uuid.UUID)
}

type module struct {
	Address string `json:"address"`
	Mode    string `json:"mode"`

	connectionMgr  ConnectionManager
	ln             *net.TCPListener
	logger         *zap.SugaredLogger
	serverInfoFile serverinfofile.ServerInfoFile
	shutdowner     fx.Shutdowner

	stdin  io.ReadCloser
	stdout io.WriteCloser
}

// Params define values to be used by JsonRpcHandler.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Logger         *zap.SugaredLogger
	ServerInfoFile serverinfofile.ServerInfoFile
	Shutdowner     fx.Shutdowner `optional:"true"`
}

// New creates a new server to handle JSON-RPC requests in the configured mode.
func New(p Params) (JSONRPCModule, error) {
	if p.Lifecycle == nil || p.Config == nil {
		return nil, errors.New("required parameters are missing")
	}

	m := module{
		logger:         p.Logger,
		serverInfoFile: p.ServerInfoFile,
		shutdowner:     p.Shutdowner,
		stdin:          os.Stdin,
		stdout:         os.Stdout,
	}

	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: m.OnStart,
		OnStop:  m.OnStop,
	})

	return &m, nil
}

// OnStart begins handling incoming connections without blocking.
func (m *module) OnStart(ctx context.Context) error {
	if m.Mode == ModeStdio {
		go m.serveStdio()
		return nil
	}

	if err := m.setup(); err != nil {
		return err
	}

	go m.start()
	return nil
}

// OnStop closes the TCP listener. Established connections end with their editors.
func (m *module) OnStop(ctx context.Context) error {
	if m.ln == nil {
		return nil
	}
	return m.ln.Close()
}

// ServeStream is called when a new connection is initiated. Requests received via the connection will be routed to the handler, and answered via the connection's replier.
func (m *module) ServeStream(ctx context.Context, conn jsonrpc2.Conn) error {
	if m.connectionMgr == nil {
		m.logger.Errorf("cannot serve connection, no connection manager set")
		return errors.New("cannot serve connection, no connection manager set")
	}

	handler, err := m.connectionMgr.NewConnection(ctx, &conn)
	if err != nil {
		return err
	}
	m.logger.Infow("client connected", zap.Stringer("uuid", handler.UUID()))
	conn.Go(ctx, handler.HandleReq)

	// Block until the connection is closed.
	<-conn.Done()

	m.connectionMgr.RemoveConnection(ctx, handler.UUID())
	m.logger.Infow("client disconnected", zap.Stringer("uuid", handler.UUID()))

	return conn.Err()
}

// RegisterConnectionManager sets the connection manager, which keeps track of current active connections and provides a Router implementation.
func (m *module) RegisterConnectionManager(connectionMgr ConnectionManager) error {
	if m.connectionMgr != nil {
		return errors.New("cannot register a duplicate connection manager")
	}
	m.connectionMgr = connectionMgr
	return nil
}

// setup should be called after creation of a new handler to set initial values.
func (m *module) setup() error {
	if m.Address == "" {
		return errors.New("setup called before address is set")
	}

	addr, err := net.ResolveTCPAddr("tcp", m.Address)
	if err != nil {
		return err
	}

	m.ln, err = net.ListenTCP("tcp", addr)
	return err
}

// start will begin serving connections, and panic on error.
func (m *module) start() {
	if err := m.serverInfoFile.UpdateField(_outputKey, m.Address); err != nil {
		panic(err)
	}

	m.logger.Infow("started JSON-RPC inbound", zap.String("address", m.Address))
	if err := jsonrpc2.Serve(context.Background(), m.ln, m, 0); err != nil {
		if errors.Is(err, net.ErrClosed) {
			m.logger.Infow("stopped JSON-RPC inbound", zap.String("address", m.Address))
			return
		}
		panic(err)
	}
}

// serveStdio serves the editor on stdin/stdout and stops the app once it goes away.
func (m *module) serveStdio() {
	m.logger.Infow("started JSON-RPC inbound", zap.String("mode", ModeStdio))
	stream := jsonrpc2.NewStream(&stdioConn{in: m.stdin, out: m.stdout})
	if err := m.ServeStream(context.Background(), jsonrpc2.NewConn(stream)); err != nil && !errors.Is(err, io.EOF) {
		m.logger.Warnf("stdio connection ended: %v", err)
	}

	if m.shutdowner == nil {
		return
	}
	if err := m.shutdowner.Shutdown(); err != nil {
		m.logger.Errorf("shutting down after stdio disconnect: %v", err)
	}
}

// processConfig will parse the configuration for any values required by this module.
func (m *module) processConfig(cfg config.Provider) error {
	if err := cfg.Get(_configKeyMode).Populate(&m.Mode); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyMode, err)
	}
	switch m.Mode {
	case "":
		m.Mode = ModeTCP
	case ModeTCP, ModeStdio:
	default:
		return fmt.Errorf("invalid value %q for config field %q, want %q or %q", m.Mode, _configKeyMode, ModeTCP, ModeStdio)
	}
	if m.Mode == ModeStdio {
		return nil
	}

	val := cfg.Get(_configKeyAddress)
	if err := val.Populate(&m.Address); err != nil {
		// incorrectly formatted config
		return fmt.Errorf("getting config field %q: %w", _configKeyAddress, err)
	}

	if m.Address == "" {
		// yaml is missing either the key or value
		return fmt.Errorf("missing field %q in config", _configKeyAddress)
	}

	return nil
}

// stdioConn joins the process's standard streams into one io.ReadWriteCloser.
type stdioConn struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (c *stdioConn) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *stdioConn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *stdioConn) Close() error {
	return multierr.Append(c.in.Close(), c.out.Close())
}
