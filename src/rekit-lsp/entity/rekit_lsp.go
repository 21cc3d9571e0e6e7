// Package entity contains the domain types shared by the rekit-lsp handlers and controllers.
package entity

import (
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// Session entity representing a single IDE session.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	Conn             *jsonrpc2.Conn             `json:"-" zap:"-"`
	// WorkspaceRoot is the first workspace folder. Rekit projects are located per selected path.
	WorkspaceRoot string `json:"workspaceRoot" zap:"workspaceRoot"`
	// Settings are the server defaults merged with the client's initializationOptions.
	Settings scriptrunner.Settings `json:"settings" zap:"-"`
}

// CommandArgs is the argument object of every rekit.* command.
type CommandArgs struct {
	// Path is the selected file or folder. A file:// URI is accepted as well.
	Path string `json:"path"`
	// Name is the free-text input of add commands: the artifact name followed by optional generator flags.
	Name string `json:"name,omitempty"`
}

// NameFields splits Name on whitespace.
func (a CommandArgs) NameFields() []string {
	return strings.Fields(a.Name)
}
