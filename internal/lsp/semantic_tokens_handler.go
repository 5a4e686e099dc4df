package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// It returns semantic highlighting information for the entire document.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	srv, ok := currentServer("SemanticTokensFull")
	if !ok {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}

	result := srv.Router().SemanticTokens(params.TextDocument.URI)
	log.Debugf("%d semantic token(s) for %s", len(result.Data)/5, params.TextDocument.URI)

	return result, nil
}
