package mapper

import (
	"go.lsp.dev/protocol"
)

// CommandsToInitializeResult announces the server with its code action kinds and executable commands.
// Documents are never synchronized: commands act on paths, not buffers.
func CommandsToInitializeResult(serverName string, kinds []protocol.CodeActionKind, commands []string) *protocol.InitializeResult {
	return &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{Name: serverName},
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncKindNone,
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: kinds,
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: commands,
			},
		},
	}
}
