// Package tokens provides the semantic token model, the published legend and the
// encoding used for textDocument/semanticTokens responses.
package tokens

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Type classifies a semantic token. The numeric value is the index into the
// legend's token type list and is sent on the wire as-is.
type Type uint32

// Token types, in legend order. Reordering these changes the wire contract.
const (
	// Index 0: namespace - for module/category names
	Namespace Type = iota
	// Index 1: class - for class definitions and references
	Class
	// Index 2: method - for selectors in method patterns and message sends
	Method
	// Index 3: property - for slots/fields
	Property
	// Index 4: variable - for locals
	Variable
	// Index 5: parameter - for method and block arguments
	Parameter
	// Index 6: keyword - for reserved words and pseudo variables
	Keyword
	// Index 7: modifier - for access modifiers
	ModifierKeyword
	// Index 8: string - for strings, symbols and characters
	String
	// Index 9: number - for numeric literals
	Number
	// Index 10: comment - for comments
	Comment

	numTypes
)

var typeNames = [numTypes]string{
	Namespace:       "namespace",
	Class:           "class",
	Method:          "method",
	Property:        "property",
	Variable:        "variable",
	Parameter:       "parameter",
	Keyword:         "keyword",
	ModifierKeyword: "modifier",
	String:          "string",
	Number:          "number",
	Comment:         "comment",
}

// String returns the legend name of the token type.
func (t Type) String() string {
	if t >= numTypes {
		return "unknown"
	}
	return typeNames[t]
}

// Valid reports whether t is part of the published legend.
func (t Type) Valid() bool {
	return t < numTypes
}

// Modifier is a bit set of token modifiers.
// Bit i corresponds to the i-th entry of the legend's modifier list.
type Modifier uint32

// Token modifiers, in legend order.
const (
	// Bit 0: declaration - marks the defining occurrence of a name
	Declaration Modifier = 1 << iota
	// Bit 1: definition - marks method and class definitions
	Definition
	// Bit 2: readonly - for pseudo variables and constants
	Readonly
	// Bit 3: static - for class-side slots and methods
	Static
	// Bit 4: deprecated
	Deprecated
	// Bit 5: documentation - for doc comments
	Documentation
)

var modifierNames = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"documentation",
}

// Token is a single classified span of source text.
// Line and Column are 0-based; Column and Length count UTF-16 code units.
type Token struct {
	Line      uint32
	Column    uint32
	Length    uint32
	Type      Type
	Modifiers Modifier
}

// End returns the column just past the token.
func (t Token) End() uint32 {
	return t.Column + t.Length
}

// Legend returns the legend advertised in the initialize response.
// Positions in the returned lists are the integer codes used in encoded data.
func Legend() protocol.SemanticTokensLegend {
	types := make([]string, numTypes)
	copy(types, typeNames[:])

	modifiers := make([]string, len(modifierNames))
	copy(modifiers, modifierNames)

	return protocol.SemanticTokensLegend{
		TokenTypes:     types,
		TokenModifiers: modifiers,
	}
}

// TypeByName returns the token type with the given legend name.
func TypeByName(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// ModifierMask returns the bit mask for the named modifiers.
// Unknown names are ignored.
func ModifierMask(names ...string) Modifier {
	var mask Modifier
	for _, name := range names {
		for i, m := range modifierNames {
			if m == name {
				mask |= 1 << uint32(i)
				break
			}
		}
	}
	return mask
}
