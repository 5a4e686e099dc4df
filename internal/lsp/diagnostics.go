package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// PublishDiagnostics sends diagnostic information to the client for a specific document.
// At most maxProblems diagnostics are sent, in position order; zero means no limit.
func PublishDiagnostics(context *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic, maxProblems int) {
	if context == nil || context.Notify == nil {
		log.Debugf("cannot publish diagnostics for %s: no client connection", uri)
		return
	}

	diagnostics = limitDiagnostics(diagnostics, maxProblems)

	log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// limitDiagnostics returns a sorted copy of diagnostics holding at most
// maxProblems entries.
func limitDiagnostics(diagnostics []protocol.Diagnostic, maxProblems int) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(diagnostics))
	copy(out, diagnostics)
	sortDiagnostics(out)

	if maxProblems > 0 && len(out) > maxProblems {
		out = out[:maxProblems]
	}

	return out
}

// sortDiagnostics sorts diagnostics by position (line first, then column).
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}
		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}
