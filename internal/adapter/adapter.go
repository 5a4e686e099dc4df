// Package adapter defines the contract between the language server and the
// per-language analysers, and routes requests to the adapter owning a URI.
package adapter

import (
	"context"
	"path"
	"strings"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

var log = commonlog.GetLogger("som-lsp.adapter")

// Adapter is the analyser for one source language.
//
// Parse replaces the adapter's state for a URI as a unit. All query methods
// read the most recently published state and return empty, non-nil results
// for URIs that were never parsed.
type Adapter interface {
	// Name identifies the language, e.g. "som". It is used as the diagnostic source.
	Name() string

	// Extensions lists the file extensions owned by the adapter, with the dot.
	Extensions() []string

	HandlesURI(uri protocol.DocumentUri) bool

	// Parse analyses text and publishes the result for uri. Syntax errors are
	// returned as diagnostics; the error is reserved for failures unrelated to
	// the source text.
	Parse(ctx context.Context, text string, uri protocol.DocumentUri) ([]protocol.Diagnostic, error)

	// Load parses text like Parse but publishes the result only if uri has
	// no state yet. It reports whether the result was published.
	Load(ctx context.Context, text string, uri protocol.DocumentUri) (bool, error)

	SemanticTokens(uri protocol.DocumentUri) []tokens.Token
	Completions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.CompletionItem
	Definitions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.Location
	SymbolInfo(uri protocol.DocumentUri) []protocol.DocumentSymbol
	Highlights(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.DocumentHighlight
	CodeLenses(sink *[]protocol.CodeLens, uri protocol.DocumentUri)
	Diagnostics(uri protocol.DocumentUri) []protocol.Diagnostic

	// WorkspaceSymbols appends the matching symbols of every parsed document.
	WorkspaceSymbols(results []protocol.SymbolInformation, query string) []protocol.SymbolInformation

	// Close drops the state kept for uri.
	Close(uri protocol.DocumentUri)
}

// HasExtension reports whether the path of uri ends in one of exts.
// The comparison ignores case.
func HasExtension(uri protocol.DocumentUri, exts []string) bool {
	ext := strings.ToLower(path.Ext(string(uri)))
	if ext == "" {
		return false
	}

	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}

	return false
}
