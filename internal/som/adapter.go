package som

import (
	"context"
	"strings"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
	"github.com/CWBudde/go-som-lsp/internal/structure"
)

var log = commonlog.GetLogger("som-lsp.som")

// RunTestsCommand is the client command bound to Minitest code lenses. Its
// arguments are the document URI, the test class name and, for a single test,
// the selector.
const RunTestsCommand = "som.minitest.run"

// Dialect is a grammar served by an Adapter.
type Dialect struct {
	Name       string
	Extensions []string
	Parse      func(src string, l structure.Listener) bool
}

var (
	// SOM is the class-per-file dialect of the SOM family.
	SOM = Dialect{Name: "som", Extensions: []string{".som"}, Parse: Parse}

	// Newspeak is the SOMns module dialect with nested classes, access
	// modifiers and literal objects.
	Newspeak = Dialect{Name: "newspeak", Extensions: []string{".ns"}, Parse: ParseNewspeak}
)

// Adapter serves the documents of one dialect.
type Adapter struct {
	*adapter.Documents

	dialect Dialect
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a SOM adapter with no documents.
func New() *Adapter {
	return NewDialect(SOM)
}

// NewNewspeak creates a Newspeak adapter with no documents.
func NewNewspeak() *Adapter {
	return NewDialect(Newspeak)
}

// NewDialect creates an adapter for d with no documents.
func NewDialect(d Dialect) *Adapter {
	return &Adapter{Documents: adapter.NewDocuments(), dialect: d}
}

func (a *Adapter) Name() string {
	return a.dialect.Name
}

func (a *Adapter) Extensions() []string {
	out := make([]string, len(a.dialect.Extensions))
	copy(out, a.dialect.Extensions)
	return out
}

func (a *Adapter) HandlesURI(uri protocol.DocumentUri) bool {
	return adapter.HasExtension(uri, a.Extensions())
}

// Parse parses text and publishes the new structure for uri. Sends of
// selectors that no known document defines are reported as warnings.
func (a *Adapter) Parse(_ context.Context, text string, uri protocol.DocumentUri) ([]protocol.Diagnostic, error) {
	parsed := a.parse(text, uri)
	a.Publish(parsed)

	return parsed.Diagnostics, nil
}

// Load publishes text for uri unless uri already has a state.
func (a *Adapter) Load(_ context.Context, text string, uri protocol.DocumentUri) (bool, error) {
	return a.PublishIfAbsent(a.parse(text, uri)), nil
}

func (a *Adapter) parse(text string, uri protocol.DocumentUri) *adapter.Parsed {
	s := structure.New(uri)
	rec := structure.NewRecorder(s, text, a.Name())

	if !a.dialect.Parse(text, rec) {
		log.Debugf("%s: parse stopped at first syntax error", uri)
	}

	for _, diag := range a.lintSends(uri, s) {
		rec.Report(diag)
	}

	return &adapter.Parsed{
		URI:         uri,
		Text:        text,
		Structure:   s,
		Diagnostics: rec.Diagnostics(),
	}
}

// Completions proposes names for the identifier being typed at the position.
// After '#' only selectors are offered; after ':=' or a block argument colon
// only values (variables, slots, classes and pseudo variables).
func (a *Adapter) Completions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.CompletionItem {
	p, ok := a.Get(uri)
	if !ok {
		return []protocol.CompletionItem{}
	}

	prefix, trigger := adapter.PrefixAt(p.Text, line, col, func(r rune) bool {
		return isLetter(r) || isDigit(r)
	})

	c := &completions{prefix: prefix, seen: make(map[string]bool), items: []protocol.CompletionItem{}}
	pos := protocol.Position{Line: line, Character: col}

	switch trigger {
	case '#':
		a.addSelectors(c)
	case '=', ':':
		a.addValues(c, p, pos)
	default:
		a.addValues(c, p, pos)
		a.addSelectors(c)
	}

	return c.items
}

type completions struct {
	prefix string
	seen   map[string]bool
	items  []protocol.CompletionItem
}

func (c *completions) add(label, detail string, kind protocol.CompletionItemKind) {
	if c.seen[label] || !structure.Match(label, c.prefix) {
		return
	}
	c.seen[label] = true

	item := protocol.CompletionItem{Label: label, Kind: &kind}
	if detail != "" {
		item.Detail = &detail
	}
	c.items = append(c.items, item)
}

// addValues adds the variables visible in the method around pos, the slots of
// the document and all known class names.
func (a *Adapter) addValues(c *completions, p *adapter.Parsed, pos protocol.Position) {
	var methods []*structure.LanguageElement
	var method *structure.LanguageElement
	for _, elem := range p.Structure.Elements() {
		if !elem.IsMethodLike() {
			continue
		}
		methods = append(methods, elem)
		if contains(elem.Range, pos) {
			method = elem
		}
	}

	// Inside a method that did not complete, everything declared outside the
	// completed methods is a candidate.
	inScope := func(decl protocol.Position) bool {
		if method != nil {
			return contains(method.Range, decl)
		}
		for _, m := range methods {
			if contains(m.Range, decl) {
				return false
			}
		}
		return true
	}

	for _, decl := range p.Structure.Declarations() {
		switch decl.Ref.ID.Kind {
		case structure.VariableIdentity:
			if inScope(decl.Ref.Range.Start) {
				c.add(decl.Name, "", protocol.CompletionItemKindVariable)
			}
		case structure.SlotIdentity:
			c.add(decl.Name, "", protocol.CompletionItemKindField)
		}
	}

	for _, name := range []string{"self", "super", "nil", "true", "false"} {
		c.add(name, "", protocol.CompletionItemKindKeyword)
	}

	for _, doc := range a.All() {
		for _, elem := range doc.Outline().RootSymbols() {
			if elem.ID.Kind == structure.ClassIdentity {
				c.add(elem.Name, elem.Detail, protocol.CompletionItemKindClass)
			}
		}
	}
}

// addSelectors adds the selectors of all methods defined in any document.
func (a *Adapter) addSelectors(c *completions) {
	for _, doc := range a.All() {
		for _, elem := range doc.Outline().Elements() {
			if elem.ID.Kind == structure.MethodIdentity {
				c.add(elem.Name, elem.Detail, protocol.CompletionItemKindMethod)
			}
		}
	}
}

// CodeLenses adds Minitest lenses: one per test class (a class whose name ends
// in "Test", nested classes included) and one per unary test method in it.
func (a *Adapter) CodeLenses(sink *[]protocol.CodeLens, uri protocol.DocumentUri) {
	p, ok := a.Get(uri)
	if !ok {
		return
	}

	for _, class := range p.Outline().Elements() {
		if class.Kind != protocol.SymbolKindClass || !strings.HasSuffix(class.Name, "Test") {
			continue
		}

		*sink = append(*sink, lens(class.SelectionRange, "Run tests", uri, class.Name))

		for _, m := range class.Children() {
			if m.Kind == protocol.SymbolKindMethod && isTestSelector(m.Name) {
				*sink = append(*sink, lens(m.SelectionRange, "Run test", uri, class.Name, m.Name))
			}
		}
	}
}

func lens(rng protocol.Range, title string, args ...any) protocol.CodeLens {
	return protocol.CodeLens{
		Range: rng,
		Command: &protocol.Command{
			Title:     title,
			Command:   RunTestsCommand,
			Arguments: args,
		},
	}
}

func isTestSelector(selector string) bool {
	if !strings.HasPrefix(selector, "test") {
		return false
	}

	for _, r := range selector {
		if !isLetter(r) && !isDigit(r) {
			return false
		}
	}

	return true
}

func contains(rng protocol.Range, pos protocol.Position) bool {
	if pos.Line < rng.Start.Line || pos.Line > rng.End.Line {
		return false
	}
	if pos.Line == rng.Start.Line && pos.Character < rng.Start.Character {
		return false
	}
	if pos.Line == rng.End.Line && pos.Character > rng.End.Character {
		return false
	}
	return true
}
