package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestCodeLens(t *testing.T) {
	newTestServer(t)
	uri := protocol.DocumentUri("file:///project/CounterTest.som")
	open(t, nil, uri, "CounterTest = TestCase (\n    testOne = ( ^ self )\n)")

	lenses, err := CodeLens(nil, &protocol.CodeLensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Len(t, lenses, 2)

	lenses, err = CodeLens(nil, &protocol.CodeLensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
	})
	require.NoError(t, err)
	assert.NotNil(t, lenses)
	assert.Empty(t, lenses)
}
