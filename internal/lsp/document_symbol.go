package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentSymbol handles the textDocument/documentSymbol request.
// It returns a hierarchical list of symbols for the outline view, or a flat
// list for clients without hierarchical symbol support.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	srv, ok := currentServer("DocumentSymbol")
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}

	uri := params.TextDocument.URI
	symbols := srv.Router().SymbolInfo(uri)

	if !srv.SupportsHierarchicalSymbols() {
		return flattenSymbols(uri, symbols, nil, []protocol.SymbolInformation{}), nil
	}

	return symbols, nil
}

// flattenSymbols appends symbols and their children in pre-order, each child
// naming its parent as container.
func flattenSymbols(uri protocol.DocumentUri, symbols []protocol.DocumentSymbol, container *string,
	out []protocol.SymbolInformation,
) []protocol.SymbolInformation {
	for _, s := range symbols {
		out = append(out, protocol.SymbolInformation{
			Name:          s.Name,
			Kind:          s.Kind,
			Location:      protocol.Location{URI: uri, Range: s.Range},
			ContainerName: container,
		})

		name := s.Name
		out = flattenSymbols(uri, s.Children, &name, out)
	}

	return out
}
