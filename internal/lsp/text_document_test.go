package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDidOpen_PublishesDiagnostics(t *testing.T) {
	srv := newTestServer(t)
	rec := &recorder{}

	open(t, rec.context(), "file:///project/Broken.som", "Broken = (")

	doc, ok := srv.Documents().Get("file:///project/Broken.som")
	require.True(t, ok)
	assert.Equal(t, "Broken = (", doc.Text)
	assert.Equal(t, "som", doc.LanguageID)

	params := rec.diagnostics(t)
	assert.Equal(t, protocol.DocumentUri("file:///project/Broken.som"), params.URI)
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *params.Diagnostics[0].Severity)
}

func TestDidOpen_ValidDocument(t *testing.T) {
	newTestServer(t)
	rec := &recorder{}

	open(t, rec.context(), counterURI, counterSource)

	params := rec.diagnostics(t)
	assert.NotNil(t, params.Diagnostics)
	assert.Empty(t, params.Diagnostics)
}

func TestDidOpen_UnownedDocument(t *testing.T) {
	srv := newTestServer(t)
	rec := &recorder{}

	open(t, rec.context(), "file:///project/notes.txt", "hello")

	_, ok := srv.Documents().Get("file:///project/notes.txt")
	assert.True(t, ok)
	assert.Empty(t, rec.sent)
}

func TestDidChange(t *testing.T) {
	srv := newTestServer(t)
	rec := &recorder{}
	ctx := rec.context()

	open(t, ctx, counterURI, counterSource)

	err := DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: counterURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "Counter = ("},
		},
	})
	require.NoError(t, err)

	doc, _ := srv.Documents().Get(counterURI)
	assert.Equal(t, "Counter = (", doc.Text)
	assert.Equal(t, protocol.Integer(2), doc.Version)
	assert.Len(t, rec.diagnostics(t).Diagnostics, 1)

	// an older version is ignored
	err = DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: counterURI},
			Version:                1,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: counterSource},
		},
	})
	require.NoError(t, err)

	doc, _ = srv.Documents().Get(counterURI)
	assert.Equal(t, "Counter = (", doc.Text)
}

func TestDidChange_UnknownDocument(t *testing.T) {
	srv := newTestServer(t)

	err := DidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: counterURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}},
	})
	require.NoError(t, err)

	_, ok := srv.Documents().Get(counterURI)
	assert.False(t, ok)
}

func TestDidSave(t *testing.T) {
	newTestServer(t)
	rec := &recorder{}
	ctx := rec.context()

	open(t, ctx, counterURI, counterSource)
	rec.sent = nil

	require.NoError(t, DidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
	}))
	assert.Empty(t, rec.diagnostics(t).Diagnostics)
}

func TestDidClose(t *testing.T) {
	srv := newTestServer(t)
	rec := &recorder{}
	ctx := rec.context()

	open(t, ctx, "file:///project/Broken.som", "Broken = (")
	require.NoError(t, DidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///project/Broken.som"},
	}))

	_, ok := srv.Documents().Get("file:///project/Broken.som")
	assert.False(t, ok)

	params := rec.diagnostics(t)
	assert.NotNil(t, params.Diagnostics)
	assert.Empty(t, params.Diagnostics)

	assert.Empty(t, srv.Router().SymbolInfo("file:///project/Broken.som"))
}

func TestDidClose_NilContext(t *testing.T) {
	newTestServer(t)

	err := DidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
	})
	assert.NoError(t, err)
}

func TestLimitDiagnostics(t *testing.T) {
	diag := func(line, char protocol.UInteger) protocol.Diagnostic {
		return protocol.Diagnostic{Range: protocol.Range{Start: protocol.Position{Line: line, Character: char}}}
	}

	in := []protocol.Diagnostic{diag(3, 0), diag(1, 5), diag(1, 2)}

	out := limitDiagnostics(in, 2)
	assert.Equal(t, []protocol.Diagnostic{diag(1, 2), diag(1, 5)}, out)
	assert.Equal(t, diag(3, 0), in[0])

	assert.Len(t, limitDiagnostics(in, 0), 3)
}
