// Package dws serves DWScript documents on top of the go-dws compiler.
package dws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/cwbudde/go-dws/pkg/dwscript"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
	"github.com/CWBudde/go-som-lsp/internal/structure"
)

var log = commonlog.GetLogger("som-lsp.dws")

// Source is the source set on diagnostics produced by this adapter.
const Source = "go-dws"

// Adapter serves DWScript documents.
type Adapter struct {
	*adapter.Documents
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a DWScript adapter with no documents.
func New() *Adapter {
	return &Adapter{Documents: adapter.NewDocuments()}
}

func (a *Adapter) Name() string {
	return "dws"
}

func (a *Adapter) Extensions() []string {
	return []string{".dws", ".pas"}
}

func (a *Adapter) HandlesURI(uri protocol.DocumentUri) bool {
	return adapter.HasExtension(uri, a.Extensions())
}

// Parse compiles text and publishes the resulting structure for uri. Compile
// errors become diagnostics; only a failure to run the compiler is returned as
// an error.
func (a *Adapter) Parse(_ context.Context, text string, uri protocol.DocumentUri) ([]protocol.Diagnostic, error) {
	parsed, err := a.compile(text, uri)
	if err != nil {
		return nil, err
	}

	a.Publish(parsed)

	return parsed.Diagnostics, nil
}

// Load compiles text and publishes the result unless uri already has a state.
func (a *Adapter) Load(_ context.Context, text string, uri protocol.DocumentUri) (bool, error) {
	parsed, err := a.compile(text, uri)
	if err != nil {
		return false, err
	}

	return a.PublishIfAbsent(parsed), nil
}

func (a *Adapter) compile(text string, uri protocol.DocumentUri) (*adapter.Parsed, error) {
	engine, err := dwscript.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create DWScript engine: %w", err)
	}

	program, err := engine.Compile(text)

	s := structure.New(uri)
	rec := structure.NewRecorder(s, text, Source)

	if err != nil {
		var compileErr *dwscript.CompileError
		if !errors.As(err, &compileErr) {
			return nil, fmt.Errorf("unexpected error during compilation: %w", err)
		}

		log.Debugf("compilation failed for %s: %d errors", uri, len(compileErr.Errors))
		for _, e := range compileErr.Errors {
			if e != nil {
				rec.Report(convertError(e))
			}
		}
	}

	scan(text, rec)

	if program != nil && program.AST() != nil {
		root := program.AST()
		if err := replaySafely(func() { replay(root, text, rec) }); err != nil {
			log.Errorf("%s: %s", uri, err)
		}
		for _, diag := range redeclaredFunctions(root) {
			rec.Report(diag)
		}
	}

	return &adapter.Parsed{
		URI:         uri,
		Text:        text,
		Structure:   s,
		Diagnostics: rec.Diagnostics(),
	}, nil
}

// failOnInvariant lets structure invariant violations crash the replay.
// Tests run with it so that walker bugs fail them.
var failOnInvariant = testing.Testing()

// replaySafely stops the replay at the first structure invariant violation
// and keeps what was recorded up to that point.
func replaySafely(replay func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			invariant, ok := r.(*structure.InvariantError)
			if !ok || failOnInvariant {
				panic(r)
			}
			err = invariant
		}
	}()

	replay()
	return nil
}

// Completions proposes names for the identifier being typed at the position.
// After a dot only members (methods, fields and properties) are offered.
// Matching ignores case.
func (a *Adapter) Completions(uri protocol.DocumentUri, line, col protocol.UInteger) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}

	p, ok := a.Get(uri)
	if !ok {
		return items
	}

	prefix, trigger := adapter.PrefixAt(p.Text, line, col, func(r rune) bool {
		return r < 0x80 && isWordPart(byte(r))
	})
	prefix = strings.ToLower(prefix)

	seen := make(map[string]bool)
	add := func(label, detail string, kind protocol.CompletionItemKind, doc string) {
		key := strings.ToLower(label)
		if seen[key] || !structure.Match(key, prefix) {
			return
		}
		seen[key] = true

		item := protocol.CompletionItem{Label: label, Kind: &kind}
		if detail != "" {
			item.Detail = &detail
		}
		if doc != "" {
			item.Documentation = doc
		}
		items = append(items, item)
	}

	if trigger == '.' {
		for _, doc := range a.All() {
			for _, elem := range doc.Outline().Elements() {
				switch elem.Kind {
				case protocol.SymbolKindMethod, protocol.SymbolKindField:
					add(elem.Name, elem.Detail, adapter.CompletionKind(elem.Kind), "")
				}
			}
		}
		return items
	}

	for _, item := range a.CompletionCandidates(uri, "") {
		detail := ""
		if item.Detail != nil {
			detail = *item.Detail
		}
		add(item.Label, detail, *item.Kind, "")
	}

	for _, doc := range a.All() {
		if doc.URI == uri {
			continue
		}
		for _, elem := range doc.Outline().RootSymbols() {
			if elem.Kind == protocol.SymbolKindClass {
				add(elem.Name, elem.Detail, protocol.CompletionItemKindClass, "")
			}
		}
	}

	for _, b := range builtins {
		add(b.Name, b.Signature, protocol.CompletionItemKindFunction, b.Doc)
	}

	for _, t := range builtinTypes {
		add(t, "built-in type", protocol.CompletionItemKindClass, "")
	}

	keywords := make([]string, 0, len(reserved))
	for k := range reserved {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	for _, k := range keywords {
		add(k, "", protocol.CompletionItemKindKeyword, "")
	}

	return items
}

// CodeLenses adds nothing: DWScript has no test runner integration.
func (a *Adapter) CodeLenses(_ *[]protocol.CodeLens, _ protocol.DocumentUri) {}
