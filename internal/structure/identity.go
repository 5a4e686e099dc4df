// Package structure implements the per-document symbol table that a parser
// populates while it runs: symbol identities, definitions, references, the
// outline tree and the semantic token stream of one document.
package structure

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// IdentityKind tags the variant of an Identity.
type IdentityKind uint8

const (
	// NoIdentity is the kind of the zero Identity.
	NoIdentity IdentityKind = iota
	MethodIdentity
	VariableIdentity
	SlotIdentity
	LiteralIdentity
	ClassIdentity
)

func (k IdentityKind) String() string {
	switch k {
	case MethodIdentity:
		return "method"
	case VariableIdentity:
		return "variable"
	case SlotIdentity:
		return "slot"
	case LiteralIdentity:
		return "literal"
	case ClassIdentity:
		return "class"
	default:
		return "none"
	}
}

// Identity identifies a definable entity independently of where it is written.
// Two identities are equal iff kind and key are equal, so an Identity can be
// used directly as a map key. It joins a definition with all its references.
type Identity struct {
	Kind IdentityKind
	Key  string
}

// MethodID identifies a method by its selector.
func MethodID(selector string) Identity {
	return Identity{Kind: MethodIdentity, Key: selector}
}

// VariableID identifies an argument or local by name and declaration site,
// so equally named variables of different scopes stay distinct.
func VariableID(name string, declaration protocol.Range) Identity {
	return Identity{
		Kind: VariableIdentity,
		Key:  fmt.Sprintf("%s@%d:%d", name, declaration.Start.Line, declaration.Start.Character),
	}
}

// SlotID identifies a slot or field by name.
func SlotID(name string) Identity {
	return Identity{Kind: SlotIdentity, Key: name}
}

// LiteralID identifies an anonymous literal object by its synthetic name.
func LiteralID(name string) Identity {
	return Identity{Kind: LiteralIdentity, Key: name}
}

// ClassID identifies a class by name.
func ClassID(name string) Identity {
	return Identity{Kind: ClassIdentity, Key: name}
}

// IsZero reports whether id does not identify anything.
func (id Identity) IsZero() bool {
	return id.Kind == NoIdentity
}

func (id Identity) String() string {
	return id.Kind.String() + ":" + id.Key
}
