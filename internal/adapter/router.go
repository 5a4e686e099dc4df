package adapter

import (
	"context"
	"fmt"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// Router dispatches requests to the first registered adapter that handles a
// URI. Requests for URIs no adapter handles yield empty results.
type Router struct {
	adapters []Adapter
	cache    *TokenCache
}

// NewRouter creates a router trying adapters in the given order.
func NewRouter(adapters ...Adapter) *Router {
	return &Router{
		adapters: adapters,
		cache:    NewTokenCache(),
	}
}

// Adapters returns the registered adapters in registration order.
func (r *Router) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// TokenCache returns the cache of last good token streams.
func (r *Router) TokenCache() *TokenCache {
	return r.cache
}

// AdapterFor returns the adapter owning uri.
func (r *Router) AdapterFor(uri protocol.DocumentUri) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.HandlesURI(uri) {
			return a, true
		}
	}
	return nil, false
}

// Handles reports whether any adapter owns uri.
func (r *Router) Handles(uri protocol.DocumentUri) bool {
	_, ok := r.AdapterFor(uri)
	return ok
}

// Parse hands text to the adapter owning uri and returns its diagnostics.
func (r *Router) Parse(ctx context.Context, text string, uri protocol.DocumentUri) ([]protocol.Diagnostic, error) {
	a, ok := r.AdapterFor(uri)
	if !ok {
		log.Debugf("no adapter for %s, not parsing", uri)
		return []protocol.Diagnostic{}, nil
	}

	ctx, span := startParseSpan(ctx, a.Name(), string(uri), len(text))
	defer span.End()

	start := time.Now()
	diags, err := a.Parse(ctx, text, uri)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}

	_, failed := ErrorLine(diags)
	recordParseMetrics(ctx, a.Name(), time.Since(start), failed)
	setParseSpanResult(span, len(diags), failed)

	if diags == nil {
		diags = []protocol.Diagnostic{}
	}

	return diags, nil
}

// Load hands a file that is not open in the editor to the adapter owning
// uri. State published for uri in the meantime, for example by didOpen, is
// kept.
func (r *Router) Load(ctx context.Context, text string, uri protocol.DocumentUri) (bool, error) {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return false, nil
	}

	loaded, err := a.Load(ctx, text, uri)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", uri, err)
	}

	return loaded, nil
}

// SemanticTokens returns the encoded token stream of uri.
//
// After a successful parse the stream becomes the cached baseline. After a
// failed parse the cached baseline is merged in below the error line, so the
// rest of the document keeps its highlighting.
func (r *Router) SemanticTokens(uri protocol.DocumentUri) *protocol.SemanticTokens {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}
	}

	toks := tokens.Normalize(a.SemanticTokens(uri))
	resultID := ""

	if line, failed := ErrorLine(a.Diagnostics(uri)); failed {
		if previous, found := r.cache.Latest(uri); found {
			log.Debugf("merging tokens of %s around error line %d", uri, line)
			toks = tokens.CombineRemovingErroneousLine(line, previous.Tokens, toks)
		}
		resultID = NewResultID()
	} else {
		resultID = r.cache.Store(uri, toks).ResultID
	}

	return &protocol.SemanticTokens{
		ResultID: &resultID,
		Data:     tokens.MakeRelative(toks),
	}
}

func (r *Router) Completions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.CompletionItem {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return []protocol.CompletionItem{}
	}
	return nonNil(a.Completions(uri, line, col))
}

func (r *Router) Definitions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.Location {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return []protocol.Location{}
	}
	return nonNil(a.Definitions(uri, line, col))
}

func (r *Router) SymbolInfo(uri protocol.DocumentUri) []protocol.DocumentSymbol {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return []protocol.DocumentSymbol{}
	}
	return nonNil(a.SymbolInfo(uri))
}

func (r *Router) Highlights(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.DocumentHighlight {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return []protocol.DocumentHighlight{}
	}
	return nonNil(a.Highlights(uri, line, col))
}

func (r *Router) CodeLenses(uri protocol.DocumentUri) []protocol.CodeLens {
	lenses := []protocol.CodeLens{}

	if a, ok := r.AdapterFor(uri); ok {
		a.CodeLenses(&lenses, uri)
	}

	return lenses
}

func (r *Router) Diagnostics(uri protocol.DocumentUri) []protocol.Diagnostic {
	a, ok := r.AdapterFor(uri)
	if !ok {
		return []protocol.Diagnostic{}
	}
	return nonNil(a.Diagnostics(uri))
}

// WorkspaceSymbols collects matching symbols from every adapter.
func (r *Router) WorkspaceSymbols(query string) []protocol.SymbolInformation {
	results := []protocol.SymbolInformation{}
	for _, a := range r.adapters {
		results = a.WorkspaceSymbols(results, query)
	}
	return results
}

// Close drops the cached tokens and the adapter state of uri.
func (r *Router) Close(uri protocol.DocumentUri) {
	r.cache.Invalidate(uri)

	if a, ok := r.AdapterFor(uri); ok {
		a.Close(uri)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
