// Package lsp implements LSP protocol handlers.
//
// Handlers look up the process-wide *server.Server set with SetServer and
// delegate analysis to its adapter router. Unknown documents and URIs no
// adapter owns produce empty results, never errors.
package lsp

import (
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("som-lsp.lsp")

// Handler returns the glsp handler with every supported request and
// notification wired.
func Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		Exit:        Exit,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidSave:   DidSave,
		TextDocumentDidClose:  DidClose,

		TextDocumentCompletion:         Completion,
		TextDocumentDefinition:         Definition,
		TextDocumentDocumentHighlight:  DocumentHighlight,
		TextDocumentDocumentSymbol:     DocumentSymbol,
		TextDocumentCodeLens:           CodeLens,
		TextDocumentSemanticTokensFull: SemanticTokensFull,

		WorkspaceSymbol:                    WorkspaceSymbol,
		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
	}
}

// notifier returns the notification function of context, or nil when there
// is no client connection (as in tests).
func notifier(context *glsp.Context) glsp.NotifyFunc {
	if context == nil || context.Notify == nil {
		return nil
	}
	return context.Notify
}

// logMessage shows message in the client's log.
func logMessage(notify glsp.NotifyFunc, typ protocol.MessageType, message string) {
	if notify == nil {
		return
	}

	notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    typ,
		Message: message,
	})
}
