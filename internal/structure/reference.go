package structure

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Reference is one textual occurrence of an identity.
type Reference struct {
	ID    Identity
	Range protocol.Range

	isRead  bool
	isWrite bool
}

// NewReference creates an untagged reference.
func NewReference(id Identity, rng protocol.Range) *Reference {
	return &Reference{ID: id, Range: rng}
}

// MarkAsRead tags the occurrence as a read access.
func (r *Reference) MarkAsRead() {
	r.isRead = true
}

// MarkAsWrite tags the occurrence as a write access.
func (r *Reference) MarkAsWrite() {
	r.isWrite = true
}

// IsRead reports whether the occurrence reads the symbol.
func (r *Reference) IsRead() bool { return r.isRead }

// IsWrite reports whether the occurrence writes the symbol.
func (r *Reference) IsWrite() bool { return r.isWrite }

// HighlightKind maps the usage tags to a highlight kind.
// Write wins over read; an untagged reference is plain text.
func (r *Reference) HighlightKind() protocol.DocumentHighlightKind {
	if r.isWrite {
		return protocol.DocumentHighlightKindWrite
	}

	if r.isRead {
		return protocol.DocumentHighlightKindRead
	}

	return protocol.DocumentHighlightKindText
}

// Highlight converts the reference to a document highlight.
func (r *Reference) Highlight() protocol.DocumentHighlight {
	kind := r.HighlightKind()
	return protocol.DocumentHighlight{
		Range: r.Range,
		Kind:  &kind,
	}
}

// Contains reports whether pos lies within the reference's range.
func (r *Reference) Contains(pos protocol.Position) bool {
	return rangeContains(r.Range, pos)
}

// rangeContains reports whether pos lies in rng. The end position is inclusive
// so a cursor placed right after a name still hits it.
func rangeContains(rng protocol.Range, pos protocol.Position) bool {
	if pos.Line < rng.Start.Line || pos.Line > rng.End.Line {
		return false
	}

	if pos.Line == rng.Start.Line && pos.Character < rng.Start.Character {
		return false
	}

	if pos.Line == rng.End.Line && pos.Character > rng.End.Character {
		return false
	}

	return true
}
