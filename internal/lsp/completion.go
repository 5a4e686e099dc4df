package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Completion handles the textDocument/completion request.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	srv, ok := currentServer("Completion")
	if !ok {
		return []protocol.CompletionItem{}, nil
	}

	uri := params.TextDocument.URI
	pos := params.Position

	items := srv.Router().Completions(uri, pos.Line, pos.Character)
	log.Debugf("%d completion item(s) at %s:%d:%d", len(items), uri, pos.Line, pos.Character)

	return protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}
