package lsp

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv, ok := currentServer("DidOpen")
	if !ok {
		return nil
	}

	doc := &server.Document{
		URI:        params.TextDocument.URI,
		Text:       params.TextDocument.Text,
		Version:    params.TextDocument.Version,
		LanguageID: params.TextDocument.LanguageID,
	}
	srv.Documents().Set(doc)

	log.Debugf("document opened: %s (version %d, language %s, %d bytes)",
		doc.URI, doc.Version, doc.LanguageID, len(doc.Text))

	analyze(context, srv, doc.URI, doc.Text)

	return nil
}

// DidChange handles the textDocument/didChange notification.
// This is sent when a document's content changes in the editor.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv, ok := currentServer("DidChange")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Warningf("document not found for didChange: %s", uri)
		return nil
	}

	text, err := server.ApplyChanges(doc.Text, params.ContentChanges)
	if err != nil {
		// keep the last consistent text
		log.Errorf("could not apply changes to %s: %s", uri, err)
		return nil
	}

	if !srv.Documents().Update(uri, text, params.TextDocument.Version) {
		log.Warningf("ignoring stale change to %s (version %d)", uri, params.TextDocument.Version)
		return nil
	}

	analyze(context, srv, uri, text)

	return nil
}

// DidSave handles the textDocument/didSave notification. The open text is
// already current, so the document is only re-analysed.
func DidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv, ok := currentServer("DidSave")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI

	text := ""
	if params.Text != nil {
		text = *params.Text
	} else if doc, exists := srv.Documents().Get(uri); exists {
		text = doc.Text
	} else {
		return nil
	}

	analyze(context, srv, uri, text)

	return nil
}

// DidClose handles the textDocument/didClose notification.
// This is sent when a document is closed in the editor.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv, ok := currentServer("DidClose")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI

	srv.Documents().Delete(uri)
	srv.Router().Close(uri)

	log.Debugf("document closed: %s", uri)

	// Send empty diagnostics to clear error markers in the editor
	PublishDiagnostics(context, uri, []protocol.Diagnostic{}, 0)

	return nil
}

// analyze parses text through the router and publishes the diagnostics.
func analyze(context *glsp.Context, srv *server.Server, uri protocol.DocumentUri, text string) {
	if !srv.Router().Handles(uri) {
		log.Debugf("no adapter for %s", uri)
		return
	}

	diagnostics, err := srv.Router().Parse(contextpkg.Background(), text, uri)
	if err != nil {
		log.Errorf("could not analyse %s: %s", uri, err)
		return
	}

	PublishDiagnostics(context, uri, diagnostics, srv.Config().MaxProblems)
}
