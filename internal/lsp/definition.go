package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition handles the textDocument/definition request. Methods and classes
// resolve across all analysed documents, variables within their document.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	srv, ok := currentServer("Definition")
	if !ok {
		return []protocol.Location{}, nil
	}

	pos := params.Position
	return srv.Router().Definitions(params.TextDocument.URI, pos.Line, pos.Character), nil
}

// DocumentHighlight handles the textDocument/documentHighlight request.
func DocumentHighlight(context *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	srv, ok := currentServer("DocumentHighlight")
	if !ok {
		return []protocol.DocumentHighlight{}, nil
	}

	pos := params.Position
	return srv.Router().Highlights(params.TextDocument.URI, pos.Line, pos.Character), nil
}
