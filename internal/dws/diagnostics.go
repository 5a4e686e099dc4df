package dws

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-dws/pkg/ast"
	"github.com/cwbudde/go-dws/pkg/dwscript"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// convertError converts a go-dws error to a diagnostic. go-dws positions are
// 1-based; an error without a length covers one character.
func convertError(err *dwscript.Error) protocol.Diagnostic {
	line := uint32(0)
	if err.Line > 0 {
		line = uint32(err.Line - 1)
	}

	col := uint32(0)
	if err.Column > 0 {
		col = uint32(err.Column - 1)
	}

	length := err.Length
	if length <= 0 {
		length = 1
	}

	severity := mapSeverity(err.Severity)
	source := Source

	diag := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + uint32(length)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  err.Message,
	}

	if err.Code != "" {
		code := protocol.IntegerOrString{Value: err.Code}
		diag.Code = &code
		diag.Tags = mapDiagnosticTags(err.Code)
	}

	return diag
}

func mapSeverity(severity dwscript.ErrorSeverity) protocol.DiagnosticSeverity {
	switch severity {
	case dwscript.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case dwscript.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case dwscript.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func mapDiagnosticTags(code string) []protocol.DiagnosticTag {
	switch code {
	case "W_UNUSED_VAR", "W_UNUSED_PARAM", "W_UNUSED_FUNCTION":
		return []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
	case "W_DEPRECATED":
		return []protocol.DiagnosticTag{protocol.DiagnosticTagDeprecated}
	}
	return nil
}

// redeclaredFunctions flags global functions declared more than once. DWScript
// has no overloading, but the compiler accepts the redeclaration.
func redeclaredFunctions(root *ast.Program) []protocol.Diagnostic {
	var diags []protocol.Diagnostic
	seen := make(map[string]bool)

	ast.Inspect(root, func(node ast.Node) bool {
		fn, ok := node.(*ast.FunctionDecl)
		if !ok || fn == nil || fn.Name == nil || fn.ClassName != nil {
			return true
		}

		key := strings.ToLower(fn.Name.Value)
		if !seen[key] {
			seen[key] = true
			return true
		}

		start := position(fn.Name.Pos())
		severity := protocol.DiagnosticSeverityError
		source := Source
		diags = append(diags, protocol.Diagnostic{
			Range: protocol.Range{
				Start: start,
				End:   protocol.Position{Line: start.Line, Character: start.Character + uint32(utf16Length(fn.Name.Value))},
			},
			Severity: &severity,
			Source:   &source,
			Message:  fmt.Sprintf("Function '%s' is redeclared. DWScript does not support function overloading.", fn.Name.Value),
		})
		return true
	})

	return diags
}
