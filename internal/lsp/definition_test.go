package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDocumentHighlightAndDefinition(t *testing.T) {
	newTestServer(t)
	open(t, nil, counterURI, counterSource)

	// "count" in the instance variable declaration
	highlights, err := DocumentHighlight(nil, &protocol.DocumentHighlightParams{
		TextDocumentPositionParams: at(counterURI, 1, 6),
	})
	require.NoError(t, err)
	assert.Len(t, highlights, 4)

	// "count" in "^ count"
	result, err := Definition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: at(counterURI, 3, 16),
	})
	require.NoError(t, err)

	locations, ok := result.([]protocol.Location)
	require.True(t, ok)
	require.Len(t, locations, 1)
	assert.Equal(t, counterURI, locations[0].URI)
	assert.Equal(t, protocol.Position{Line: 1, Character: 6}, locations[0].Range.Start)
}
