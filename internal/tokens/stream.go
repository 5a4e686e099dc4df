package tokens

// Stream is an append-only sequence of semantic tokens for one document.
// Tokens are kept in the order they were added; callers sort before encoding.
type Stream struct {
	tokens []Token
}

// NewStream creates an empty token stream.
func NewStream() *Stream {
	return &Stream{}
}

// Add appends a token. Tokens with zero length carry no highlighting and are ignored.
func (s *Stream) Add(line, column, length uint32, typ Type, modifiers ...Modifier) {
	if length == 0 {
		return
	}

	var mods Modifier
	for _, m := range modifiers {
		mods |= m
	}

	s.tokens = append(s.tokens, Token{
		Line:      line,
		Column:    column,
		Length:    length,
		Type:      typ,
		Modifiers: mods,
	})
}

// Len returns the number of recorded tokens.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the recorded tokens in insertion order.
func (s *Stream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}
