package dws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-som-lsp/internal/structure"
	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

func TestScan(t *testing.T) {
	src := "// note\nBegin PrintLn('end'); { block\ncomment } (* x *) end."

	rec := structure.NewRecorder(structure.New("file:///a.dws"), src, Source)
	scan(src, rec)

	toks := tokens.Normalize(rec.Structure().Tokens().Tokens())
	require.Len(t, toks, 6)

	want := []tokens.Token{
		{Line: 0, Column: 0, Length: 7, Type: tokens.Comment},
		{Line: 1, Column: 0, Length: 5, Type: tokens.Keyword},
		{Line: 1, Column: 22, Length: 7, Type: tokens.Comment},
		{Line: 2, Column: 0, Length: 9, Type: tokens.Comment},
		{Line: 2, Column: 10, Length: 7, Type: tokens.Comment},
		{Line: 2, Column: 18, Length: 3, Type: tokens.Keyword},
	}
	assert.Equal(t, want, toks)
}

func TestScan_UnterminatedComment(t *testing.T) {
	src := "begin { never closed"

	rec := structure.NewRecorder(structure.New("file:///a.dws"), src, Source)
	assert.NotPanics(t, func() { scan(src, rec) })
	assert.Equal(t, 2, rec.Structure().Tokens().Len())
}

func TestScan_UnitNames(t *testing.T) {
	src := "unit Shapes.Core;\nuses Classes, Math;\nvar x: Integer;"

	rec := structure.NewRecorder(structure.New("file:///a.dws"), src, Source)
	scan(src, rec)

	var names []tokens.Token
	for _, tok := range tokens.Normalize(rec.Structure().Tokens().Tokens()) {
		if tok.Type == tokens.Namespace {
			names = append(names, tok)
		}
	}

	assert.Equal(t, []tokens.Token{
		{Line: 0, Column: 5, Length: 6, Type: tokens.Namespace},
		{Line: 0, Column: 12, Length: 4, Type: tokens.Namespace},
		{Line: 1, Column: 5, Length: 7, Type: tokens.Namespace},
		{Line: 1, Column: 14, Length: 4, Type: tokens.Namespace},
	}, names)
}
