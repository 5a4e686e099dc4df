package dws

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/structure"
)

// scanner walks the raw text for what the syntax tree does not keep:
// comments and reserved words. Positions are counted in UTF-16 code units.
type scanner struct {
	src  string
	off  int
	line uint32
	col  uint32
}

// namespaceClauses are the reserved words followed by unit names up to the
// next semicolon.
var namespaceClauses = map[string]bool{
	"library": true,
	"program": true,
	"unit":    true,
	"uses":    true,
}

// scan reports comments, reserved words and the unit names of program, unit
// and uses clauses of src to l.
func scan(src string, l structure.Listener) {
	s := &scanner{src: src}
	inClause := false

	for s.off < len(s.src) {
		start := s.pos()
		c := s.src[s.off]

		switch {
		case c == '/' && s.peek(1) == '/':
			for s.off < len(s.src) && s.src[s.off] != '\n' && s.src[s.off] != '\r' {
				s.advance()
			}
			l.LiteralParsed(structure.LiteralComment, protocol.Range{Start: start, End: s.pos()})

		case c == '{':
			s.until("}")
			l.LiteralParsed(structure.LiteralComment, protocol.Range{Start: start, End: s.pos()})

		case c == '(' && s.peek(1) == '*':
			s.advance()
			s.until("*)")
			l.LiteralParsed(structure.LiteralComment, protocol.Range{Start: start, End: s.pos()})

		case c == '\'' || c == '"':
			s.advance()
			for s.off < len(s.src) && s.src[s.off] != c && s.src[s.off] != '\n' {
				s.advance()
			}
			if s.off < len(s.src) && s.src[s.off] == c {
				s.advance()
			}

		case isWordStart(c):
			from := s.off
			for s.off < len(s.src) && isWordPart(s.src[s.off]) {
				s.advance()
			}
			word := s.src[from:s.off]
			rng := protocol.Range{Start: start, End: s.pos()}
			switch lower := strings.ToLower(word); {
			case reserved[lower]:
				l.IdentifierAccepted(word, structure.CategoryKeyword, rng, structure.Identity{})
				inClause = inClause || namespaceClauses[lower]
			case inClause:
				l.IdentifierAccepted(word, structure.CategoryNamespace, rng, structure.Identity{})
			}

		case c == ';':
			inClause = false
			s.advance()

		default:
			s.advance()
		}
	}
}

// until advances past the next occurrence of end, or to the end of input.
func (s *scanner) until(end string) {
	for s.off < len(s.src) {
		if strings.HasPrefix(s.src[s.off:], end) {
			for range end {
				s.advance()
			}
			return
		}
		s.advance()
	}
}

func (s *scanner) peek(n int) byte {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *scanner) advance() {
	r, size := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += size

	if r == '\n' {
		s.line++
		s.col = 0
		return
	}
	if r != '\r' {
		s.col += uint32(utf16.RuneLen(r))
	}
}

func (s *scanner) pos() protocol.Position {
	return protocol.Position{Line: s.line, Character: s.col}
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}
