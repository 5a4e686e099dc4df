package lsp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/server"
)

const (
	counterURI = protocol.DocumentUri("file:///project/Counter.som")

	counterSource = `Counter = (
    | count |
    increment = ( count := count + 1 )
    value = ( ^ count )
)`
)

type notification struct {
	method string
	params any
}

// recorder captures the notifications the handlers send to the client.
type recorder struct {
	mu   sync.Mutex
	sent []notification
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.sent = append(r.sent, notification{method, params})
		},
	}
}

func (r *recorder) last(t *testing.T, method string) any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].method == method {
			return r.sent[i].params
		}
	}

	t.Fatalf("no %s notification sent", method)
	return nil
}

func (r *recorder) diagnostics(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	params, ok := r.last(t, protocol.ServerTextDocumentPublishDiagnostics).(*protocol.PublishDiagnosticsParams)
	require.True(t, ok)
	return params
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	srv := server.New()
	SetServer(srv)
	t.Cleanup(func() { serverInstance = nil })

	return srv
}

func open(t *testing.T, ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	t.Helper()

	err := DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "som",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

func at(uri protocol.DocumentUri, line, character protocol.UInteger) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: character},
	}
}
