package structure

import "fmt"

// InvariantError is the panic value raised when a parser drives a
// DocumentStructure in an impossible order, for example completing an element
// twice. It indicates a bug in the parser, never a problem in the source text.
type InvariantError struct {
	Op      string
	Element string
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("structure: %s %q: %s", e.Op, e.Element, e.Reason)
}

func violate(op string, elem *LanguageElement, reason string) {
	name := ""
	if elem != nil {
		name = elem.Name
	}
	panic(&InvariantError{Op: op, Element: name, Reason: reason})
}
