package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = protocol.DocumentUri("file:///test.som")

func rng(line, start, end uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: end},
	}
}

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// buildCounter records the events of
//
//	Counter = (
//	    | count |
//	    increment = ( count := count + 1 )
//	    value = ( ^count )
//	)
func buildCounter() *Recorder {
	text := "Counter = (\n    | count |\n    increment = ( count := count + 1 )\n    value = ( ^count )\n)\n"
	r := NewRecorder(New(testURI), text, "som")

	class := r.ConstructStarted(protocol.SymbolKindClass, "Counter", ClassID("Counter"), rng(0, 0, 7), "")
	r.IdentifierAccepted("Counter", CategoryClassDecl, rng(0, 0, 7), ClassID("Counter"))
	r.IdentifierAccepted("count", CategorySlotDecl, rng(1, 6, 11), SlotID("count"))

	inc := r.ConstructStarted(protocol.SymbolKindMethod, "increment", MethodID("increment"), rng(2, 4, 13), "increment")
	r.IdentifierAccepted("increment", CategorySelectorDecl, rng(2, 4, 13), MethodID("increment"))
	r.IdentifierAccepted("count", CategorySlotWrite, rng(2, 18, 23), SlotID("count"))
	r.IdentifierAccepted("count", CategorySlotRead, rng(2, 27, 32), SlotID("count"))
	r.IdentifierAccepted("+", CategorySend, rng(2, 33, 34), MethodID("+"))
	r.LiteralParsed(LiteralNumber, rng(2, 35, 36))
	r.ConstructEnded(inc, pos(2, 38))

	val := r.ConstructStarted(protocol.SymbolKindMethod, "value", MethodID("value"), rng(3, 4, 9), "value")
	r.IdentifierAccepted("value", CategorySelectorDecl, rng(3, 4, 9), MethodID("value"))
	r.IdentifierAccepted("count", CategorySlotRead, rng(3, 15, 20), SlotID("count"))
	r.ConstructEnded(val, pos(3, 22))

	r.ConstructEnded(class, pos(4, 1))
	return r
}

func TestStructure_Outline(t *testing.T) {
	s := buildCounter().Structure()

	roots := s.RootSymbols()
	require.Len(t, roots, 1)
	assert.Equal(t, "Counter", roots[0].Name)
	assert.Equal(t, rng(0, 0, 7), roots[0].SelectionRange)
	assert.Equal(t, protocol.Range{Start: pos(0, 0), End: pos(4, 1)}, roots[0].Range)

	children := roots[0].Children()
	require.Len(t, children, 3)
	assert.Equal(t, "count", children[0].Name)
	assert.Equal(t, protocol.SymbolKindField, children[0].Kind)
	assert.Equal(t, "increment", children[1].Name)
	assert.Equal(t, "value", children[2].Name)

	syms := s.DocumentSymbols()
	require.Len(t, syms, 1)
	assert.Len(t, syms[0].Children, 3)
	require.NotNil(t, syms[0].Children[1].Detail)
	assert.Equal(t, "increment", *syms[0].Children[1].Detail)
}

func TestStructure_ElementsPreOrder(t *testing.T) {
	s := buildCounter().Structure()

	var names []string
	for _, e := range s.Elements() {
		names = append(names, e.Name)
		assert.True(t, e.Completed())
	}

	assert.Equal(t, []string{"Counter", "count", "increment", "value"}, names)
}

func TestStructure_HighlightSymmetry(t *testing.T) {
	s := buildCounter().Structure()

	sites := []protocol.Position{pos(1, 8), pos(2, 20), pos(2, 30), pos(3, 17)}
	var first []protocol.DocumentHighlight

	for _, p := range sites {
		highlights := s.Highlights(p)
		require.Len(t, highlights, 4, "at %v", p)

		seen := map[protocol.Range]bool{}
		for _, h := range highlights {
			assert.False(t, seen[h.Range], "duplicate highlight %v", h.Range)
			seen[h.Range] = true
		}

		if first == nil {
			first = highlights
		} else {
			assert.Equal(t, first, highlights)
		}
	}

	kinds := map[protocol.Range]protocol.DocumentHighlightKind{}
	for _, h := range first {
		kinds[h.Range] = *h.Kind
	}
	assert.Equal(t, protocol.DocumentHighlightKindText, kinds[rng(1, 6, 11)])
	assert.Equal(t, protocol.DocumentHighlightKindWrite, kinds[rng(2, 18, 23)])
	assert.Equal(t, protocol.DocumentHighlightKindRead, kinds[rng(2, 27, 32)])
}

func TestStructure_HighlightNothingUnderCursor(t *testing.T) {
	s := buildCounter().Structure()

	highlights := s.Highlights(pos(10, 0))
	assert.NotNil(t, highlights)
	assert.Empty(t, highlights)
}

func TestStructure_SameRangeMergesFlags(t *testing.T) {
	s := New(testURI)
	id := SlotID("x")

	s.ReferenceSymbol(id, rng(0, 0, 1)).MarkAsRead()
	s.ReferenceSymbol(id, rng(0, 0, 1)).MarkAsWrite()

	highlights := s.HighlightsFor(id)
	require.Len(t, highlights, 1)
	assert.Equal(t, protocol.DocumentHighlightKindWrite, *highlights[0].Kind)
}

func TestStructure_Definitions(t *testing.T) {
	s := buildCounter().Structure()

	// from a read of the slot to its declaration
	defs := s.Definitions(pos(3, 16))
	require.Len(t, defs, 1)
	assert.Equal(t, testURI, defs[0].URI)
	assert.Equal(t, rng(1, 6, 11), defs[0].Range)

	// the send of + has no definition in this document
	defs = s.Definitions(pos(2, 33))
	assert.NotNil(t, defs)
	assert.Empty(t, defs)
}

func TestStructure_ForwardReference(t *testing.T) {
	s := New(testURI)

	// send before the method is defined
	ref := s.ReferenceSymbol(MethodID("later"), rng(0, 5, 10))
	require.NotNil(t, ref)
	assert.Empty(t, s.DefinitionsOf(MethodID("later")))

	m := s.StartSymbol(protocol.SymbolKindMethod, "later", MethodID("later"), rng(3, 0, 5), true)
	s.Open(m)
	s.CompleteSymbol(m, rng(3, 0, 20))

	defs := s.DefinitionsOf(MethodID("later"))
	require.Len(t, defs, 1)
	assert.Equal(t, rng(3, 0, 5), defs[0].Range)
	assert.Len(t, s.HighlightsFor(MethodID("later")), 2)
}

func TestStructure_FirstDefinitionWins(t *testing.T) {
	s := New(testURI)
	id := VariableID("a", rng(0, 1, 2))

	s.RecordDefinition("a", id, protocol.SymbolKindVariable, rng(0, 1, 2), true, false)
	s.RecordDefinition("a", id, protocol.SymbolKindVariable, rng(4, 1, 2), true, false)

	decl, ok := s.Declaration(id)
	require.True(t, ok)
	assert.Equal(t, rng(0, 1, 2), decl.Ref.Range)
	assert.Len(t, s.Declarations(), 1)
	// the later one still counts as an occurrence
	assert.Len(t, s.HighlightsFor(id), 2)
}

func TestStructure_DeclarationSiteBeatsImplicit(t *testing.T) {
	s := New(testURI)
	id := SlotID("total")

	s.RecordDefinition("total", id, protocol.SymbolKindField, rng(5, 2, 7), false, false)
	s.RecordDefinition("total", id, protocol.SymbolKindField, rng(1, 2, 7), true, false)

	decl, ok := s.Declaration(id)
	require.True(t, ok)
	assert.Equal(t, rng(1, 2, 7), decl.Ref.Range)
}

func TestStructure_PolymorphicMethodDefinitions(t *testing.T) {
	s := New(testURI)

	class := s.StartSymbol(protocol.SymbolKindClass, "A", ClassID("A"), rng(0, 0, 1), true)
	s.Open(class)

	m1 := s.StartSymbol(protocol.SymbolKindMethod, "run", MethodID("run"), rng(1, 2, 5), true)
	s.Open(m1)
	s.CompleteSymbol(m1, rng(1, 2, 20))

	side := s.StartSymbol(protocol.SymbolKindClass, "class", Identity{}, rng(2, 2, 6), false)
	s.Open(side)
	m2 := s.StartSymbol(protocol.SymbolKindMethod, "run", MethodID("run"), rng(3, 4, 7), true)
	s.Open(m2)
	s.CompleteSymbol(m2, rng(3, 4, 20))
	s.CompleteSymbol(side, rng(2, 2, 30))

	s.CompleteSymbol(class, rng(0, 0, 40))

	defs := s.DefinitionsOf(MethodID("run"))
	assert.Len(t, defs, 2)

	decl, ok := s.Declaration(MethodID("run"))
	require.True(t, ok)
	assert.Equal(t, rng(1, 2, 5), decl.Ref.Range)
}

func TestStructure_CompleteNonTopPanics(t *testing.T) {
	s := New(testURI)

	class := s.StartSymbol(protocol.SymbolKindClass, "A", ClassID("A"), rng(0, 0, 1), true)
	s.Open(class)
	m := s.StartSymbol(protocol.SymbolKindMethod, "run", MethodID("run"), rng(1, 0, 3), true)
	s.Open(m)

	assert.PanicsWithError(t, `structure: complete "A": element is not the top of the open stack`, func() {
		s.CompleteSymbol(class, rng(0, 0, 9))
	})
}

func TestStructure_CompleteTwicePanics(t *testing.T) {
	s := New(testURI)

	m := s.StartSymbol(protocol.SymbolKindMethod, "run", MethodID("run"), rng(0, 0, 3), true)
	s.Open(m)
	s.CompleteSymbol(m, rng(0, 0, 9))

	defer func() {
		v := recover()
		require.NotNil(t, v)
		_, ok := v.(*InvariantError)
		assert.True(t, ok, "panic value is %T", v)
	}()
	s.CompleteSymbol(m, rng(0, 0, 9))
}

func TestStructure_ReentrantMethodPanics(t *testing.T) {
	s := New(testURI)

	m := s.StartSymbol(protocol.SymbolKindMethod, "outer", MethodID("outer"), rng(0, 0, 5), true)
	s.Open(m)
	inner := s.StartSymbol(protocol.SymbolKindMethod, "inner", MethodID("inner"), rng(1, 0, 5), true)

	assert.Panics(t, func() { s.Open(inner) })
}

func TestStructure_ClassInsideMethod(t *testing.T) {
	s := New(testURI)

	m := s.StartSymbol(protocol.SymbolKindMethod, "make", MethodID("make"), rng(0, 0, 4), true)
	s.Open(m)

	obj := s.StartSymbol(protocol.SymbolKindObject, "literal 1", LiteralID("literal 1"), rng(1, 2, 3), true)
	s.Open(obj)
	inner := s.StartSymbol(protocol.SymbolKindMethod, "value", MethodID("value"), rng(2, 4, 9), true)
	require.NotPanics(t, func() { s.Open(inner) })

	s.CompleteSymbol(inner, rng(2, 4, 20))
	s.CompleteSymbol(obj, rng(1, 2, 30))
	s.CompleteSymbol(m, rng(0, 0, 40))

	roots := s.RootSymbols()
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children(), 1)
	assert.Equal(t, "value", roots[0].Children()[0].Children()[0].Name)
}

func TestStructure_OpenElementNotListed(t *testing.T) {
	s := New(testURI)

	class := s.StartSymbol(protocol.SymbolKindClass, "A", ClassID("A"), rng(0, 0, 1), true)
	s.Open(class)
	s.RecordDefinition("x", SlotID("x"), protocol.SymbolKindField, rng(1, 2, 3), true, true)

	assert.Empty(t, s.RootSymbols())
	assert.Empty(t, s.Symbols(nil, ""))
	// the definition is still reachable before the class completes
	assert.Len(t, s.DefinitionsOf(ClassID("A")), 1)
}

func TestStructure_Symbols(t *testing.T) {
	s := buildCounter().Structure()

	all := s.Symbols(nil, "")
	assert.Len(t, all, 4)

	found := s.Symbols(nil, "inc")
	require.Len(t, found, 1)
	assert.Equal(t, "increment", found[0].Name)
	assert.Equal(t, testURI, found[0].Location.URI)
	require.NotNil(t, found[0].ContainerName)
	assert.Equal(t, "Counter", *found[0].ContainerName)

	assert.Empty(t, s.Symbols(nil, "Inc"))
}

func TestStructure_IdempotentRebuild(t *testing.T) {
	a := buildCounter()
	b := buildCounter()

	assert.Equal(t, a.Structure().DocumentSymbols(), b.Structure().DocumentSymbols())
	assert.Equal(t, a.Structure().References(), b.Structure().References())
	assert.Equal(t, a.Structure().Declarations(), b.Structure().Declarations())
	assert.Equal(t, a.Structure().Tokens().Tokens(), b.Structure().Tokens().Tokens())
}

func TestReferenceAt_PrefersInside(t *testing.T) {
	s := New(testURI)

	// "a+b": a ends where + starts
	s.ReferenceSymbol(SlotID("a"), rng(0, 0, 1))
	s.ReferenceSymbol(MethodID("+"), rng(0, 1, 2))

	ref := s.ReferenceAt(pos(0, 1))
	require.NotNil(t, ref)
	assert.Equal(t, MethodID("+"), ref.ID)

	// end of the line still hits the last name
	ref = s.ReferenceAt(pos(0, 2))
	require.NotNil(t, ref)
	assert.Equal(t, MethodID("+"), ref.ID)
}

func TestReference_HighlightKind(t *testing.T) {
	ref := NewReference(SlotID("x"), rng(0, 0, 1))
	assert.Equal(t, protocol.DocumentHighlightKindText, ref.HighlightKind())

	ref.MarkAsRead()
	assert.Equal(t, protocol.DocumentHighlightKindRead, ref.HighlightKind())

	ref.MarkAsWrite()
	assert.Equal(t, protocol.DocumentHighlightKindWrite, ref.HighlightKind())
}

func TestIdentity_Equality(t *testing.T) {
	assert.Equal(t, MethodID("at:put:"), MethodID("at:put:"))
	assert.NotEqual(t, MethodID("x"), SlotID("x"))
	assert.NotEqual(t, VariableID("x", rng(0, 1, 2)), VariableID("x", rng(3, 1, 2)))
	assert.True(t, Identity{}.IsZero())
	assert.Equal(t, "method:at:put:", MethodID("at:put:").String())

	m := map[Identity]int{ClassID("A"): 1}
	assert.Equal(t, 1, m[ClassID("A")])
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("computeValue", "comp"))
	assert.False(t, Match("computeValue", "Comp"))
	assert.True(t, Match("computeValue", "computeValue"))
	assert.False(t, Match("computeValue", "computeValues"))
	assert.False(t, Match("computeValue", "cV"))

	for _, x := range []string{"", "a", "computeValue"} {
		assert.True(t, Match(x, ""))
	}
}
