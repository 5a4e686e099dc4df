package adapter

import (
	"sort"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/structure"
	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// Parsed is the immutable result of one parse of a document.
type Parsed struct {
	URI         protocol.DocumentUri
	Text        string
	Structure   *structure.DocumentStructure
	Diagnostics []protocol.Diagnostic

	// lastGood is the most recent parse without errors, set on failed parses only.
	lastGood *Parsed
}

// Failed reports whether the parse produced an error diagnostic.
func (p *Parsed) Failed() bool {
	_, failed := ErrorLine(p.Diagnostics)
	return failed
}

// Outline returns the structure to list symbols from. A failed parse usually
// loses the construct enclosing the error, so the last good structure is used
// instead when there is one.
func (p *Parsed) Outline() *structure.DocumentStructure {
	if p.lastGood != nil {
		return p.lastGood.Structure
	}
	return p.Structure
}

// ErrorLine returns the lowest line of an error diagnostic. Diagnostics need
// not be ordered by position.
func ErrorLine(diags []protocol.Diagnostic) (protocol.UInteger, bool) {
	var line protocol.UInteger
	found := false

	for _, d := range diags {
		if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
			continue
		}
		if !found || d.Range.Start.Line < line {
			line = d.Range.Start.Line
			found = true
		}
	}

	return line, found
}

// Documents holds the latest parse result per URI. A parse result is built off
// to the side and swapped in with Publish, so readers never see partial state.
//
// Adapters embed *Documents to get the queries that only need the document
// structure.
type Documents struct {
	docs map[protocol.DocumentUri]*Parsed
	mu   sync.RWMutex
}

// NewDocuments creates an empty document set.
func NewDocuments() *Documents {
	return &Documents{
		docs: make(map[protocol.DocumentUri]*Parsed),
	}
}

// Publish makes p the current state of its URI.
func (d *Documents) Publish(p *Parsed) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.publish(p)
}

// PublishIfAbsent publishes p only if its URI has no state yet and reports
// whether it did. Background loading uses it so that a document parsed from
// the editor is never replaced by the file on disk.
func (d *Documents) PublishIfAbsent(p *Parsed) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[p.URI]; ok {
		return false
	}

	d.publish(p)
	return true
}

func (d *Documents) publish(p *Parsed) {
	p.lastGood = nil
	if old, ok := d.docs[p.URI]; ok && p.Failed() {
		if old.Failed() {
			p.lastGood = old.lastGood
		} else {
			p.lastGood = old
		}
	}

	d.docs[p.URI] = p
}

// Get returns the current state of uri.
func (d *Documents) Get(uri protocol.DocumentUri) (*Parsed, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.docs[uri]

	return p, ok
}

// Close forgets uri.
func (d *Documents) Close(uri protocol.DocumentUri) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.docs, uri)
}

// All returns the current states ordered by URI.
func (d *Documents) All() []*Parsed {
	d.mu.RLock()
	out := make([]*Parsed, 0, len(d.docs))
	for _, p := range d.docs {
		out = append(out, p)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })

	return out
}

// Len returns the number of documents.
func (d *Documents) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.docs)
}

func (d *Documents) SemanticTokens(uri protocol.DocumentUri) []tokens.Token {
	p, ok := d.Get(uri)
	if !ok {
		return []tokens.Token{}
	}
	return p.Structure.Tokens().Tokens()
}

func (d *Documents) SymbolInfo(uri protocol.DocumentUri) []protocol.DocumentSymbol {
	p, ok := d.Get(uri)
	if !ok {
		return []protocol.DocumentSymbol{}
	}
	return p.Outline().DocumentSymbols()
}

func (d *Documents) Highlights(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.DocumentHighlight {
	p, ok := d.Get(uri)
	if !ok {
		return []protocol.DocumentHighlight{}
	}
	return p.Structure.Highlights(protocol.Position{Line: line, Character: col})
}

func (d *Documents) Diagnostics(uri protocol.DocumentUri) []protocol.Diagnostic {
	p, ok := d.Get(uri)
	if !ok {
		return []protocol.Diagnostic{}
	}

	out := make([]protocol.Diagnostic, len(p.Diagnostics))
	copy(out, p.Diagnostics)

	return out
}

// Definitions resolves the symbol under the position. Variables and slots are
// resolved in the document only; methods and classes without a local
// definition are looked up in the other documents.
func (d *Documents) Definitions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.Location {
	p, ok := d.Get(uri)
	if !ok {
		return []protocol.Location{}
	}

	ref := p.Structure.ReferenceAt(protocol.Position{Line: line, Character: col})
	if ref == nil {
		return []protocol.Location{}
	}

	locations := p.Structure.DefinitionsOf(ref.ID)
	if len(locations) > 0 {
		return locations
	}

	switch ref.ID.Kind {
	case structure.MethodIdentity, structure.ClassIdentity:
		for _, other := range d.All() {
			if other.URI != uri {
				locations = append(locations, other.Structure.DefinitionsOf(ref.ID)...)
			}
		}
	}

	return locations
}

func (d *Documents) WorkspaceSymbols(results []protocol.SymbolInformation, query string) []protocol.SymbolInformation {
	for _, p := range d.All() {
		results = p.Outline().Symbols(results, query)
	}
	return results
}

// CompletionCandidates returns one item per distinct name that is defined in
// the document and starts with prefix. Outline elements come first, then
// arguments and locals.
func (d *Documents) CompletionCandidates(uri protocol.DocumentUri, prefix string) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}

	p, ok := d.Get(uri)
	if !ok {
		return items
	}

	seen := make(map[string]bool)
	add := func(name, detail string, kind protocol.SymbolKind) {
		if seen[name] || !structure.Match(name, prefix) {
			return
		}
		seen[name] = true

		itemKind := CompletionKind(kind)
		item := protocol.CompletionItem{Label: name, Kind: &itemKind}
		if detail != "" {
			detail := detail
			item.Detail = &detail
		}
		items = append(items, item)
	}

	for _, elem := range p.Structure.Elements() {
		add(elem.Name, elem.Detail, elem.Kind)
	}

	for _, decl := range p.Structure.Declarations() {
		if decl.Ref.ID.Kind == structure.VariableIdentity {
			add(decl.Name, "", decl.Kind)
		}
	}

	return items
}

// CompletionKind maps a symbol kind to the completion item kind shown for it.
func CompletionKind(kind protocol.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case protocol.SymbolKindClass, protocol.SymbolKindObject:
		return protocol.CompletionItemKindClass
	case protocol.SymbolKindMethod:
		return protocol.CompletionItemKindMethod
	case protocol.SymbolKindFunction:
		return protocol.CompletionItemKindFunction
	case protocol.SymbolKindConstructor:
		return protocol.CompletionItemKindConstructor
	case protocol.SymbolKindField, protocol.SymbolKindProperty:
		return protocol.CompletionItemKindField
	case protocol.SymbolKindConstant:
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindVariable
	}
}
