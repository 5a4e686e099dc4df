package server

import (
	"errors"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
)

// ErrInvalidRange is wrapped by errors about change ranges outside the document.
var ErrInvalidRange = errors.New("invalid change range")

// ApplyChange applies one content change event to text. An event without a
// range replaces the whole text.
func ApplyChange(text string, change protocol.TextDocumentContentChangeEvent) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}

	start, err := offsetOf(text, change.Range.Start)
	if err != nil {
		return "", fmt.Errorf("start: %w", err)
	}

	end, err := offsetOf(text, change.Range.End)
	if err != nil {
		return "", fmt.Errorf("end: %w", err)
	}

	if start > end {
		return "", fmt.Errorf("%w: start %d:%d after end %d:%d", ErrInvalidRange,
			change.Range.Start.Line, change.Range.Start.Character,
			change.Range.End.Line, change.Range.End.Character)
	}

	return text[:start] + change.Text + text[end:], nil
}

// ApplyChanges applies the content changes of a didChange notification in order.
func ApplyChanges(text string, changes []any) (string, error) {
	for i, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			updated, err := ApplyChange(text, c)
			if err != nil {
				return "", fmt.Errorf("change %d: %w", i, err)
			}
			text = updated
		default:
			return "", fmt.Errorf("change %d: unexpected type %T", i, change)
		}
	}

	return text, nil
}

// offsetOf converts a position with a UTF-16 column into a byte offset.
// Columns past the end of a line are clamped to it.
func offsetOf(text string, pos protocol.Position) (int, error) {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return 0, fmt.Errorf("%w: line %d past the end of the document", ErrInvalidRange, pos.Line)
		}
		offset += idx + 1
	}

	return offset + adapter.ByteOffset(adapter.LineAt(text[offset:], 0), pos.Character), nil
}
