package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxWorkspaceSymbols limits the result to avoid overwhelming the client.
const maxWorkspaceSymbols = 500

// WorkspaceSymbol handles the workspace/symbol request.
// It returns the symbols of all analysed documents whose name starts with the query.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv, ok := currentServer("WorkspaceSymbol")
	if !ok {
		return []protocol.SymbolInformation{}, nil
	}

	symbols := srv.Router().WorkspaceSymbols(params.Query)
	log.Debugf("found %d workspace symbol(s) matching %q", len(symbols), params.Query)

	if len(symbols) > maxWorkspaceSymbols {
		symbols = symbols[:maxWorkspaceSymbols]
	}

	return symbols, nil
}
