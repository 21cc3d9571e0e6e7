package model

import (
	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Session is the repository layer model for an individual IDE session.
type Session struct {
	UUID             uuid.UUID
	InitializeParams *protocol.InitializeParams
	Conn             *jsonrpc2.Conn
	WorkspaceRoot    string
	Settings         scriptrunner.Settings
}
