package structure

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// Declaration is the authoritative defining occurrence of an identity.
type Declaration struct {
	Name string
	Kind protocol.SymbolKind
	Ref  *Reference

	explicit bool
}

// DocumentStructure is the symbol table of one parsed document.
//
// A parser fills it while it runs: it starts and completes elements as it
// enters and leaves constructs, and records a reference for every name it
// resolves. A structure is built once per parse and never modified after the
// parse has been published, so readers need no locking.
type DocumentStructure struct {
	uri protocol.DocumentUri

	open  []*LanguageElement
	roots []*LanguageElement

	references   []*Reference
	byIdentity   map[Identity][]*Reference
	declarations map[Identity]*Declaration
	declOrder    []Identity
	elements     map[Identity][]*LanguageElement

	tokens *tokens.Stream
}

// New creates an empty structure for the document at uri.
func New(uri protocol.DocumentUri) *DocumentStructure {
	return &DocumentStructure{
		uri:          uri,
		byIdentity:   make(map[Identity][]*Reference),
		declarations: make(map[Identity]*Declaration),
		elements:     make(map[Identity][]*LanguageElement),
		tokens:       tokens.NewStream(),
	}
}

// URI returns the document the structure belongs to.
func (s *DocumentStructure) URI() protocol.DocumentUri {
	return s.uri
}

// Tokens returns the semantic token stream owned by the structure.
func (s *DocumentStructure) Tokens() *tokens.Stream {
	return s.tokens
}

// StartSymbol creates an open element whose parent is the current top of the
// open stack. When isDeclarationSite is set, the selection range is recorded as
// the defining occurrence of id. The element is not pushed; see Open.
func (s *DocumentStructure) StartSymbol(kind protocol.SymbolKind, name string, id Identity,
	selection protocol.Range, isDeclarationSite bool,
) *LanguageElement {
	elem := &LanguageElement{
		Kind:           kind,
		Name:           name,
		ID:             id,
		SelectionRange: selection,
		Range:          selection,
		parent:         s.Current(),
	}

	if isDeclarationSite && !id.IsZero() {
		s.declare(name, id, kind, selection, true)
	}

	return elem
}

// Open pushes elem onto the open stack. Only one method may be open at a time
// unless a class-like element has been opened on top of it.
func (s *DocumentStructure) Open(elem *LanguageElement) {
	switch {
	case elem.completed:
		violate("open", elem, "element is already completed")
	case elem.opened:
		violate("open", elem, "element is already open")
	}

	if top := s.Current(); top != nil && top.IsMethodLike() && elem.IsMethodLike() {
		violate("open", elem, "method "+top.Name+" is still open")
	}

	elem.opened = true
	s.open = append(s.open, elem)
}

// Current returns the top of the open stack, or nil.
func (s *DocumentStructure) Current() *LanguageElement {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

// CurrentClass returns the innermost open class-like element, or nil.
func (s *DocumentStructure) CurrentClass() *LanguageElement {
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i].IsClassLike() {
			return s.open[i]
		}
	}
	return nil
}

// CompleteSymbol sets the full range of elem, attaches it to its parent (or the
// root list) and pops it from the open stack. Completing an element twice, or an
// open element that is not the top of the stack, panics with *InvariantError.
func (s *DocumentStructure) CompleteSymbol(elem *LanguageElement, fullRange protocol.Range) {
	if elem.completed {
		violate("complete", elem, "element is already completed")
	}

	if elem.opened {
		if s.Current() != elem {
			violate("complete", elem, "element is not the top of the open stack")
		}
		s.open = s.open[:len(s.open)-1]
		elem.opened = false
	}

	elem.Range = fullRange
	elem.completed = true

	if elem.parent != nil {
		elem.parent.children = append(elem.parent.children, elem)
	} else {
		s.roots = append(s.roots, elem)
	}

	if !elem.ID.IsZero() {
		s.elements[elem.ID] = append(s.elements[elem.ID], elem)
	}
}

// RecordDefinition records the defining occurrence of id at rng. With
// listAsSymbol set it also adds a completed outline leaf under the current top
// of the open stack.
//
// A definition found at a declaration site replaces an earlier implicit one;
// otherwise the first definition of an identity stays authoritative and later
// ones only count as references.
func (s *DocumentStructure) RecordDefinition(name string, id Identity, kind protocol.SymbolKind,
	rng protocol.Range, isDeclarationSite, listAsSymbol bool,
) *Reference {
	ref := s.declare(name, id, kind, rng, isDeclarationSite)

	if listAsSymbol {
		elem := &LanguageElement{
			Kind:           kind,
			Name:           name,
			ID:             id,
			SelectionRange: rng,
			parent:         s.Current(),
		}
		s.CompleteSymbol(elem, rng)
	}

	return ref
}

// ReferenceSymbol records a non-defining occurrence of id. The identity does not
// need to be defined (yet). Returns nil for the zero identity.
func (s *DocumentStructure) ReferenceSymbol(id Identity, rng protocol.Range) *Reference {
	return s.record(id, rng)
}

func (s *DocumentStructure) declare(name string, id Identity, kind protocol.SymbolKind,
	rng protocol.Range, explicit bool,
) *Reference {
	ref := s.record(id, rng)
	if ref == nil {
		return nil
	}

	existing, ok := s.declarations[id]
	if !ok {
		s.declOrder = append(s.declOrder, id)
	}

	if !ok || (explicit && !existing.explicit) {
		s.declarations[id] = &Declaration{Name: name, Kind: kind, Ref: ref, explicit: explicit}
	}

	return ref
}

// record returns the reference of id at rng, creating it on first sight.
func (s *DocumentStructure) record(id Identity, rng protocol.Range) *Reference {
	if id.IsZero() {
		return nil
	}

	for _, ref := range s.byIdentity[id] {
		if ref.Range == rng {
			return ref
		}
	}

	ref := NewReference(id, rng)
	s.references = append(s.references, ref)
	s.byIdentity[id] = append(s.byIdentity[id], ref)

	return ref
}

// RootSymbols returns the completed top-level elements in declaration order.
func (s *DocumentStructure) RootSymbols() []*LanguageElement {
	out := make([]*LanguageElement, len(s.roots))
	copy(out, s.roots)
	return out
}

// Elements returns every completed element in pre-order.
func (s *DocumentStructure) Elements() []*LanguageElement {
	var out []*LanguageElement
	var walk func([]*LanguageElement)
	walk = func(elems []*LanguageElement) {
		for _, e := range elems {
			out = append(out, e)
			walk(e.children)
		}
	}
	walk(s.roots)
	return out
}

// DocumentSymbols returns the outline tree of the document.
func (s *DocumentStructure) DocumentSymbols() []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(s.roots))
	for _, root := range s.roots {
		out = append(out, root.DocumentSymbol())
	}
	return out
}

// Symbols appends every completed element whose name matches query to results.
func (s *DocumentStructure) Symbols(results []protocol.SymbolInformation, query string) []protocol.SymbolInformation {
	for _, elem := range s.Elements() {
		if Match(elem.Name, query) {
			results = append(results, elem.SymbolInformation(s.uri))
		}
	}
	return results
}

// References returns all recorded references in recording order.
func (s *DocumentStructure) References() []*Reference {
	out := make([]*Reference, len(s.references))
	copy(out, s.references)
	return out
}

// Declarations returns the authoritative definitions in the order their
// identities were first defined.
func (s *DocumentStructure) Declarations() []Declaration {
	out := make([]Declaration, 0, len(s.declOrder))
	for _, id := range s.declOrder {
		out = append(out, *s.declarations[id])
	}
	return out
}

// Declaration returns the authoritative definition of id.
func (s *DocumentStructure) Declaration(id Identity) (Declaration, bool) {
	decl, ok := s.declarations[id]
	if !ok {
		return Declaration{}, false
	}
	return *decl, true
}

// ReferenceAt returns the reference under pos. A position strictly inside a
// range wins over one touching a range's end; among equals the narrowest range
// wins.
func (s *DocumentStructure) ReferenceAt(pos protocol.Position) *Reference {
	var best *Reference
	bestInside := false

	for _, ref := range s.references {
		if !ref.Contains(pos) {
			continue
		}

		inside := pos != ref.Range.End
		switch {
		case best == nil,
			inside && !bestInside,
			inside == bestInside && narrower(ref.Range, best.Range):
			best = ref
			bestInside = inside
		}
	}

	return best
}

func narrower(a, b protocol.Range) bool {
	if a.End.Line-a.Start.Line != b.End.Line-b.Start.Line {
		return a.End.Line-a.Start.Line < b.End.Line-b.Start.Line
	}
	return int64(a.End.Character)-int64(a.Start.Character) < int64(b.End.Character)-int64(b.Start.Character)
}

// Highlights returns every occurrence of the symbol under pos.
func (s *DocumentStructure) Highlights(pos protocol.Position) []protocol.DocumentHighlight {
	ref := s.ReferenceAt(pos)
	if ref == nil {
		return []protocol.DocumentHighlight{}
	}
	return s.HighlightsFor(ref.ID)
}

// HighlightsFor returns every occurrence of id, definition included.
func (s *DocumentStructure) HighlightsFor(id Identity) []protocol.DocumentHighlight {
	refs := s.byIdentity[id]
	out := make([]protocol.DocumentHighlight, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Highlight())
	}
	return out
}

// Definitions returns the definition sites of the symbol under pos.
func (s *DocumentStructure) Definitions(pos protocol.Position) []protocol.Location {
	ref := s.ReferenceAt(pos)
	if ref == nil {
		return []protocol.Location{}
	}
	return s.DefinitionsOf(ref.ID)
}

// DefinitionsOf returns the outline elements carrying id or, when there are
// none, the defining reference. Method identities may have several elements.
func (s *DocumentStructure) DefinitionsOf(id Identity) []protocol.Location {
	if elems := s.elements[id]; len(elems) > 0 {
		out := make([]protocol.Location, 0, len(elems))
		for _, elem := range elems {
			out = append(out, protocol.Location{URI: s.uri, Range: elem.SelectionRange})
		}
		return out
	}

	if decl, ok := s.declarations[id]; ok {
		return []protocol.Location{{URI: s.uri, Range: decl.Ref.Range}}
	}

	return []protocol.Location{}
}
