package structure

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// Category is the lexical role of an accepted identifier. It decides both the
// semantic token emitted for it and the kind of reference recorded.
type Category uint8

const (
	CategoryKeyword Category = iota
	CategoryModifier
	CategoryNamespace
	CategoryPseudo
	CategoryClassDecl
	CategoryClassRef
	CategorySelectorDecl
	CategorySend
	CategoryArgumentDecl
	CategoryArgumentRead
	CategoryLocalDecl
	CategoryLocalRead
	CategoryLocalWrite
	CategorySlotDecl
	CategorySlotRead
	CategorySlotWrite
)

// LiteralKind classifies literals and comments.
type LiteralKind uint8

const (
	LiteralString LiteralKind = iota
	LiteralSymbol
	LiteralChar
	LiteralNumber
	LiteralComment
)

// Listener receives the structural events of a parse, in source order.
// SyntaxError is delivered at most once per parse, before the parse ends.
type Listener interface {
	ConstructStarted(kind protocol.SymbolKind, name string, id Identity, selection protocol.Range, detail string) *LanguageElement
	ConstructEnded(elem *LanguageElement, end protocol.Position)
	IdentifierAccepted(text string, category Category, rng protocol.Range, id Identity)
	LiteralParsed(kind LiteralKind, rng protocol.Range)
	SyntaxError(pos protocol.Position, message string)
}

// Recorder is the Listener that fills a DocumentStructure and its token stream
// and collects diagnostics.
type Recorder struct {
	structure   *DocumentStructure
	text        string
	source      string
	widths      []uint32
	diagnostics []protocol.Diagnostic
	failed      bool
}

var _ Listener = (*Recorder)(nil)

// NewRecorder creates a recorder writing into s. text is the parsed document,
// source names the producer of the diagnostics.
func NewRecorder(s *DocumentStructure, text, source string) *Recorder {
	return &Recorder{structure: s, text: text, source: source}
}

// Structure returns the structure being filled.
func (r *Recorder) Structure() *DocumentStructure {
	return r.structure
}

// Diagnostics returns the problems reported so far.
func (r *Recorder) Diagnostics() []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// Failed reports whether a syntax error was reported.
func (r *Recorder) Failed() bool {
	return r.failed
}

// Report adds a diagnostic produced outside the listener protocol, such as a
// compiler warning.
func (r *Recorder) Report(diag protocol.Diagnostic) {
	if diag.Source == nil && r.source != "" {
		source := r.source
		diag.Source = &source
	}
	r.diagnostics = append(r.diagnostics, diag)
}

func (r *Recorder) ConstructStarted(kind protocol.SymbolKind, name string, id Identity,
	selection protocol.Range, detail string,
) *LanguageElement {
	elem := r.structure.StartSymbol(kind, name, id, selection, true)
	elem.Detail = detail

	if elem.IsClassLike() || elem.IsMethodLike() {
		r.structure.Open(elem)
	}

	return elem
}

func (r *Recorder) ConstructEnded(elem *LanguageElement, end protocol.Position) {
	r.structure.CompleteSymbol(elem, protocol.Range{Start: elem.SelectionRange.Start, End: end})
}

func (r *Recorder) IdentifierAccepted(text string, category Category, rng protocol.Range, id Identity) {
	s := r.structure

	switch category {
	case CategoryKeyword:
		r.token(rng, tokens.Keyword)
	case CategoryModifier:
		r.token(rng, tokens.ModifierKeyword)
	case CategoryNamespace:
		r.token(rng, tokens.Namespace)
	case CategoryPseudo:
		r.token(rng, tokens.Keyword, tokens.Readonly)

	case CategoryClassDecl:
		r.token(rng, tokens.Class, tokens.Declaration, tokens.Definition)
		s.RecordDefinition(text, id, protocol.SymbolKindClass, rng, true, false)
	case CategoryClassRef:
		r.token(rng, tokens.Class)
		markRead(s.ReferenceSymbol(id, rng))

	case CategorySelectorDecl:
		r.token(rng, tokens.Method, tokens.Declaration, tokens.Definition)
		s.ReferenceSymbol(id, rng)
	case CategorySend:
		r.token(rng, tokens.Method)
		s.ReferenceSymbol(id, rng)

	case CategoryArgumentDecl:
		r.token(rng, tokens.Parameter, tokens.Declaration)
		s.RecordDefinition(text, id, protocol.SymbolKindVariable, rng, true, false)
	case CategoryArgumentRead:
		r.token(rng, tokens.Parameter)
		markRead(s.ReferenceSymbol(id, rng))

	case CategoryLocalDecl:
		r.token(rng, tokens.Variable, tokens.Declaration)
		s.RecordDefinition(text, id, protocol.SymbolKindVariable, rng, true, false)
	case CategoryLocalRead:
		r.token(rng, tokens.Variable)
		markRead(s.ReferenceSymbol(id, rng))
	case CategoryLocalWrite:
		r.token(rng, tokens.Variable)
		markWrite(s.ReferenceSymbol(id, rng))

	case CategorySlotDecl:
		r.token(rng, tokens.Property, tokens.Declaration)
		s.RecordDefinition(text, id, protocol.SymbolKindField, rng, true, true)
	case CategorySlotRead:
		r.token(rng, tokens.Property)
		markRead(s.ReferenceSymbol(id, rng))
	case CategorySlotWrite:
		r.token(rng, tokens.Property)
		markWrite(s.ReferenceSymbol(id, rng))
	}
}

func markRead(ref *Reference) {
	if ref != nil {
		ref.MarkAsRead()
	}
}

func markWrite(ref *Reference) {
	if ref != nil {
		ref.MarkAsWrite()
	}
}

func (r *Recorder) LiteralParsed(kind LiteralKind, rng protocol.Range) {
	switch kind {
	case LiteralNumber:
		r.token(rng, tokens.Number)
	case LiteralComment:
		r.token(rng, tokens.Comment)
	default:
		r.token(rng, tokens.String)
	}
}

// SyntaxError records an error diagnostic. Only the first call has an effect.
func (r *Recorder) SyntaxError(pos protocol.Position, message string) {
	if r.failed {
		return
	}
	r.failed = true

	severity := protocol.DiagnosticSeverityError
	r.Report(protocol.Diagnostic{
		Range: protocol.Range{
			Start: pos,
			End:   protocol.Position{Line: pos.Line, Character: pos.Character + 1},
		},
		Severity: &severity,
		Message:  message,
	})
}

// token adds one token per line covered by rng. Ranges spanning several lines
// are cut at line ends, since tokens must not cross lines.
func (r *Recorder) token(rng protocol.Range, typ tokens.Type, mods ...tokens.Modifier) {
	stream := r.structure.Tokens()

	if rng.Start.Line == rng.End.Line {
		if rng.End.Character > rng.Start.Character {
			stream.Add(rng.Start.Line, rng.Start.Character, rng.End.Character-rng.Start.Character, typ, mods...)
		}
		return
	}

	for line := rng.Start.Line; line <= rng.End.Line; line++ {
		start := uint32(0)
		if line == rng.Start.Line {
			start = rng.Start.Character
		}

		end := r.lineWidth(line)
		if line == rng.End.Line {
			end = rng.End.Character
		}

		if end > start {
			stream.Add(line, start, end-start, typ, mods...)
		}
	}
}

// lineWidth returns the length of line in UTF-16 code units, the unit of LSP
// positions.
func (r *Recorder) lineWidth(line uint32) uint32 {
	if r.widths == nil {
		lines := strings.Split(r.text, "\n")
		r.widths = make([]uint32, len(lines))
		for i, l := range lines {
			l = strings.TrimSuffix(l, "\r")
			var w uint32
			for _, c := range l {
				w += uint32(utf16.RuneLen(c))
			}
			r.widths[i] = w
		}
	}

	if int(line) >= len(r.widths) {
		return 0
	}
	return r.widths[line]
}
