package som

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/structure"
)

// rootClass is defined by every class library. Until a document defining it
// is known, nearly every send would be reported, so linting is skipped.
var rootClass = structure.ClassID("Object")

// lintSends returns a warning for every send in s whose selector is defined
// neither in s nor in another known document of the adapter.
func (a *Adapter) lintSends(uri protocol.DocumentUri, s *structure.DocumentStructure) []protocol.Diagnostic {
	var others []*structure.DocumentStructure
	for _, doc := range a.All() {
		if doc.URI != uri {
			others = append(others, doc.Outline())
		}
	}

	defined := func(id structure.Identity) bool {
		if _, ok := s.Declaration(id); ok {
			return true
		}
		for _, other := range others {
			if _, ok := other.Declaration(id); ok {
				return true
			}
		}
		return false
	}

	if !defined(rootClass) {
		return nil
	}

	var diags []protocol.Diagnostic
	known := make(map[structure.Identity]bool)

	for _, ref := range s.References() {
		if ref.ID.Kind != structure.MethodIdentity {
			continue
		}

		ok, seen := known[ref.ID]
		if !seen {
			ok = defined(ref.ID)
			known[ref.ID] = ok
		}
		if ok {
			continue
		}

		severity := protocol.DiagnosticSeverityWarning
		diags = append(diags, protocol.Diagnostic{
			Range:    ref.Range,
			Severity: &severity,
			Message:  fmt.Sprintf("No method #%s is defined. The send might fail at run time.", ref.ID.Key),
		})
	}

	return diags
}
