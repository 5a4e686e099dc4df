package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestWorkspaceSymbol(t *testing.T) {
	newTestServer(t)
	open(t, nil, counterURI, counterSource)

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "Coun"})
	require.NoError(t, err)

	var names []string
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Counter")
}
