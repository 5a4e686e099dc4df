package structure

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LanguageElement is a definition record: a class, method, slot or variable
// that appears in the document outline.
//
// An element is created open, while its construct is still being parsed, and is
// completed once the parser knows where the construct ends. Only completed
// elements are reachable from the outline.
type LanguageElement struct {
	Kind           protocol.SymbolKind
	Name           string
	Detail         string
	ID             Identity
	SelectionRange protocol.Range
	Range          protocol.Range

	parent    *LanguageElement
	children  []*LanguageElement
	opened    bool
	completed bool
}

// Parent returns the enclosing element, or nil for root elements.
func (e *LanguageElement) Parent() *LanguageElement {
	return e.parent
}

// Children returns the completed child elements in declaration order.
func (e *LanguageElement) Children() []*LanguageElement {
	out := make([]*LanguageElement, len(e.children))
	copy(out, e.children)
	return out
}

// Completed reports whether the element's full range is known.
func (e *LanguageElement) Completed() bool {
	return e.completed
}

// IsClassLike reports whether the element can contain methods and slots.
func (e *LanguageElement) IsClassLike() bool {
	switch e.Kind {
	case protocol.SymbolKindClass, protocol.SymbolKindNamespace, protocol.SymbolKindObject,
		protocol.SymbolKindInterface, protocol.SymbolKindStruct:
		return true
	}
	return false
}

// IsMethodLike reports whether the element is a method or function body.
func (e *LanguageElement) IsMethodLike() bool {
	switch e.Kind {
	case protocol.SymbolKindMethod, protocol.SymbolKindFunction, protocol.SymbolKindConstructor:
		return true
	}
	return false
}

// DocumentSymbol converts the element and its children into an outline node.
func (e *LanguageElement) DocumentSymbol() protocol.DocumentSymbol {
	sym := protocol.DocumentSymbol{
		Name:           e.Name,
		Kind:           e.Kind,
		Range:          e.Range,
		SelectionRange: e.SelectionRange,
	}

	if e.Detail != "" {
		detail := e.Detail
		sym.Detail = &detail
	}

	if len(e.children) > 0 {
		sym.Children = make([]protocol.DocumentSymbol, 0, len(e.children))
		for _, child := range e.children {
			sym.Children = append(sym.Children, child.DocumentSymbol())
		}
	}

	return sym
}

// SymbolInformation converts the element into a flat symbol entry for uri.
func (e *LanguageElement) SymbolInformation(uri protocol.DocumentUri) protocol.SymbolInformation {
	info := protocol.SymbolInformation{
		Name: e.Name,
		Kind: e.Kind,
		Location: protocol.Location{
			URI:   uri,
			Range: e.Range,
		},
	}

	if e.parent != nil {
		container := e.parent.Name
		info.ContainerName = &container
	}

	return info
}
