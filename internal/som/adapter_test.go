package som

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
)

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestAdapter_HandlesURI(t *testing.T) {
	a := New()

	assert.True(t, a.HandlesURI("file:///src/Hello.som"))
	assert.False(t, a.HandlesURI("file:///src/hello.dws"))
	assert.Equal(t, "som", a.Name())
}

func TestAdapter_ParsePublishes(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///CounterTest.som")

	diags, err := a.Parse(context.Background(), counterTest, uri)
	require.NoError(t, err)
	assert.Empty(t, diags)

	syms := a.SymbolInfo(uri)
	require.Len(t, syms, 1)
	assert.Equal(t, "CounterTest", syms[0].Name)
	assert.Len(t, syms[0].Children, 5)

	assert.NotEmpty(t, a.SemanticTokens(uri))
	assert.Len(t, a.Highlights(uri, 2, 7), 6)
}

func TestAdapter_Diagnostics(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///Broken.som")

	diags, err := a.Parse(context.Background(), "Foo = (", uri)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	assert.Equal(t, diags, a.Diagnostics(uri))
}

func TestAdapter_CodeLenses(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///CounterTest.som")

	_, err := a.Parse(context.Background(), counterTest, uri)
	require.NoError(t, err)

	var lenses []protocol.CodeLens
	a.CodeLenses(&lenses, uri)

	require.Len(t, lenses, 2)

	assert.Equal(t, span(1, 0, 11), lenses[0].Range)
	require.NotNil(t, lenses[0].Command)
	assert.Equal(t, RunTestsCommand, lenses[0].Command.Command)
	assert.Equal(t, []any{uri, "CounterTest"}, lenses[0].Command.Arguments)

	assert.Equal(t, span(6, 4, 17), lenses[1].Range)
	assert.Equal(t, "Run test", lenses[1].Command.Title)
	assert.Equal(t, []any{uri, "CounterTest", "testIncrement"}, lenses[1].Command.Arguments)
}

func TestAdapter_CodeLensesOnlyForTestClasses(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///Counter.som")

	_, err := a.Parse(context.Background(), "Counter = (\n  testing = ( ^ 1 )\n)\n", uri)
	require.NoError(t, err)

	var lenses []protocol.CodeLens
	a.CodeLenses(&lenses, uri)
	assert.Empty(t, lenses)
}

func TestAdapter_CompletionsPrefix(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///Foo.som")
	src := "Foo = (\n  | total |\n  run: amount = ( | tmp | tmp := amo )\n)\n"

	_, err := a.Parse(context.Background(), src, uri)
	require.NoError(t, err)

	items := a.Completions(uri, 2, 36)
	assert.Equal(t, []string{"amount"}, labels(items))
}

func TestAdapter_CompletionsAfterPound(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///Foo.som")
	src := "Foo = (\n  run: amount = ( ^ #ru )\n  rule = ( ^ 1 )\n)\n"

	_, err := a.Parse(context.Background(), src, uri)
	require.NoError(t, err)

	// cursor right after "#ru"
	items := a.Completions(uri, 1, 23)
	assert.Equal(t, []string{"run:", "rule"}, labels(items))
	assert.Equal(t, protocol.CompletionItemKindMethod, *items[0].Kind)
}

func TestAdapter_CompletionsAfterAssignInBrokenMethod(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///Foo.som")
	src := "Foo = (\n  | total |\n  run: amount = ( | tmp | tmp :=\n)\n"

	diags, err := a.Parse(context.Background(), src, uri)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	items := labels(a.Completions(uri, 2, 32))
	assert.Contains(t, items, "tmp")
	assert.Contains(t, items, "amount")
	assert.Contains(t, items, "total")
	assert.Contains(t, items, "self")
	assert.NotContains(t, items, "run:")
}

func TestAdapter_CompletionsAcrossDocuments(t *testing.T) {
	a := New()
	ctx := context.Background()

	_, err := a.Parse(ctx, "Helper = (\n  assist = ( ^ 1 )\n)\n", "file:///Helper.som")
	require.NoError(t, err)
	_, err = a.Parse(ctx, "Main = (\n  run = ( ^ Helper new ass )\n)\n", "file:///Main.som")
	require.NoError(t, err)

	// after "ass"
	items := labels(a.Completions("file:///Main.som", 1, 26))
	assert.Equal(t, []string{"assist"}, items)

	// after "Hel"
	items = labels(a.Completions("file:///Main.som", 1, 15))
	assert.Equal(t, []string{"Helper"}, items)
}

func TestAdapter_DefinitionAcrossDocuments(t *testing.T) {
	a := New()
	ctx := context.Background()

	_, err := a.Parse(ctx, "Helper = (\n  assist = ( ^ 1 )\n)\n", "file:///Helper.som")
	require.NoError(t, err)
	_, err = a.Parse(ctx, "Main = (\n  run = ( ^ Helper new assist )\n)\n", "file:///Main.som")
	require.NoError(t, err)

	defs := a.Definitions("file:///Main.som", 1, 25)
	require.Len(t, defs, 1)
	assert.Equal(t, protocol.DocumentUri("file:///Helper.som"), defs[0].URI)
	assert.Equal(t, span(1, 2, 8), defs[0].Range)

	defs = a.Definitions("file:///Main.som", 1, 13)
	require.Len(t, defs, 1)
	assert.Equal(t, span(0, 0, 6), defs[0].Range)
}

func TestAdapter_UnknownURI(t *testing.T) {
	a := New()
	uri := protocol.DocumentUri("file:///nothing.som")

	assert.NotNil(t, a.Completions(uri, 0, 0))
	assert.Empty(t, a.Completions(uri, 0, 0))
	assert.Empty(t, a.SymbolInfo(uri))

	var lenses []protocol.CodeLens
	a.CodeLenses(&lenses, uri)
	assert.Empty(t, lenses)
}

func TestAdapter_LintSends(t *testing.T) {
	a := New()
	ctx := context.Background()
	mainURI := protocol.DocumentUri("file:///Main.som")

	const main = "Main = (\n  run = ( ^ self helper frobnicate )\n  helper = ( ^ 1 )\n)\n"

	// without the class library every send is unknown
	diags, err := a.Parse(ctx, main, mainURI)
	require.NoError(t, err)
	assert.Empty(t, diags)

	diags, err = a.Parse(ctx, "Object = (\n  class = ( ^ nil )\n)\n", "file:///Object.som")
	require.NoError(t, err)
	assert.Empty(t, diags)

	diags, err = a.Parse(ctx, main, mainURI)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Contains(t, diags[0].Message, "#frobnicate")
	assert.Equal(t, span(1, 24, 34), diags[0].Range)
	assert.Equal(t, "som", *diags[0].Source)

	_, failed := adapter.ErrorLine(diags)
	assert.False(t, failed)

	// a warning does not keep the document from being the last good parse
	assert.Len(t, a.SymbolInfo(mainURI), 1)
}
