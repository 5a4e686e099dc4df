package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CodeLens handles the textDocument/codeLens request.
func CodeLens(context *glsp.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	srv, ok := currentServer("CodeLens")
	if !ok {
		return []protocol.CodeLens{}, nil
	}

	return srv.Router().CodeLenses(params.TextDocument.URI), nil
}
