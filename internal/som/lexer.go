// Package som implements the SOM (Simple Object Machine) language adapter: a
// lexer and recursive-descent parser that report what they recognize to a
// structure.Listener, and the adapter serving editor requests from the result.
package som

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Kind represents the kind of token.
type Kind int

const (
	// Special
	EOF Kind = iota
	Illegal
	Comment

	// Punctuation
	NewTerm   // "("
	EndTerm   // ")"
	NewBlock  // "["
	EndBlock  // "]"
	Colon     // ":"
	Period    // "."
	Exit      // "^"
	Assign    // ":="
	Pound     // "#" not followed by a symbol
	Separator // "----" (four or more dashes)

	// Operators. Or, Equal and Minus have grammar roles of their own but are
	// also valid binary selectors.
	Or       // "|"
	Equal    // "="
	Minus    // "-"
	Operator // any other sequence of operator characters

	// Literals & identifiers
	Identifier
	Keyword // identifier immediately followed by ":"
	Primitive
	Integer
	Double
	String
	Symbol
)

var kindNames = map[Kind]string{
	EOF:        "end of file",
	Illegal:    "illegal character",
	Comment:    "comment",
	NewTerm:    "'('",
	EndTerm:    "')'",
	NewBlock:   "'['",
	EndBlock:   "']'",
	Colon:      "':'",
	Period:     "'.'",
	Exit:       "'^'",
	Assign:     "':='",
	Pound:      "'#'",
	Separator:  "'----'",
	Or:         "'|'",
	Equal:      "'='",
	Minus:      "'-'",
	Operator:   "operator",
	Identifier: "identifier",
	Keyword:    "keyword",
	Primitive:  "'primitive'",
	Integer:    "integer",
	Double:     "double",
	String:     "string",
	Symbol:     "symbol",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsBinarySelector reports whether a token of this kind can name a binary message.
func (k Kind) IsBinarySelector() bool {
	switch k {
	case Or, Equal, Minus, Operator:
		return true
	}
	return false
}

// Token is a lexical token. Start and End are LSP positions; columns count
// UTF-16 code units.
type Token struct {
	Kind  Kind
	Text  string
	Start protocol.Position
	End   protocol.Position
}

// Range returns the source range of the token.
func (t Token) Range() protocol.Range {
	return protocol.Range{Start: t.Start, End: t.End}
}

// Lexer scans SOM source into tokens.
type Lexer struct {
	src   string
	cur   int // byte offset
	line  uint32
	col   uint32 // UTF-16 offset within line
	start protocol.Position
	begin int

	// ParenComments makes "(* ... *)" a comment, as in Newspeak. Such
	// comments nest.
	ParenComments bool
}

// NewLexer creates a lexer for src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Lex returns all tokens of src, comments included, terminated by EOF.
func Lex(src string) []Token {
	return NewLexer(src).All()
}

// All returns the remaining tokens, terminated by EOF.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func (l *Lexer) peek() rune {
	if l.cur >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	return r
}

func (l *Lexer) peekAt(n int) rune {
	off := l.cur
	for i := 0; i < n; i++ {
		if off >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += size

	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col += uint32(utf16.RuneLen(r))
	}

	return r
}

func (l *Lexer) atEnd() bool {
	return l.cur >= len(l.src)
}

func (l *Lexer) mark() {
	l.begin = l.cur
	l.start = protocol.Position{Line: l.line, Character: l.col}
}

func (l *Lexer) emit(kind Kind) Token {
	return Token{
		Kind:  kind,
		Text:  l.src[l.begin:l.cur],
		Start: l.start,
		End:   protocol.Position{Line: l.line, Character: l.col},
	}
}

// Next scans the next token.
func (l *Lexer) Next() Token {
	for !l.atEnd() && unicode.IsSpace(l.peek()) {
		l.advance()
	}

	l.mark()
	if l.atEnd() {
		return l.emit(EOF)
	}

	c := l.advance()
	switch {
	case c == '"':
		return l.comment()
	case c == '\'':
		return l.str(String)
	case isLetter(c):
		return l.identifier()
	case isDigit(c):
		return l.number()
	}

	switch c {
	case '(':
		if l.ParenComments && l.peek() == '*' {
			return l.parenComment()
		}
		return l.emit(NewTerm)
	case ')':
		return l.emit(EndTerm)
	case '[':
		return l.emit(NewBlock)
	case ']':
		return l.emit(EndBlock)
	case '.':
		return l.emit(Period)
	case '^':
		return l.emit(Exit)
	case ':':
		if l.peek() == '=' {
			l.advance()
			return l.emit(Assign)
		}
		return l.emit(Colon)
	case '#':
		return l.symbol()
	}

	if isOperatorChar(c) {
		return l.operator(c)
	}

	return l.emit(Illegal)
}

func (l *Lexer) comment() Token {
	for !l.atEnd() {
		if l.advance() == '"' {
			return l.emit(Comment)
		}
	}
	return l.emit(Illegal)
}

func (l *Lexer) parenComment() Token {
	l.advance()

	depth := 1
	for !l.atEnd() {
		c := l.advance()
		switch {
		case c == '(' && l.peek() == '*':
			l.advance()
			depth++
		case c == '*' && l.peek() == ')':
			l.advance()
			depth--
			if depth == 0 {
				return l.emit(Comment)
			}
		}
	}
	return l.emit(Illegal)
}

// str scans a quoted string whose opening quote was consumed.
func (l *Lexer) str(kind Kind) Token {
	for !l.atEnd() {
		switch l.advance() {
		case '\\':
			if !l.atEnd() {
				l.advance()
			}
		case '\'':
			return l.emit(kind)
		}
	}
	return l.emit(Illegal)
}

func (l *Lexer) identifier() Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == ':' && l.peekAt(1) != '=' {
		l.advance()
		return l.emit(Keyword)
	}

	if l.src[l.begin:l.cur] == "primitive" {
		return l.emit(Primitive)
	}

	return l.emit(Identifier)
}

func (l *Lexer) number() Token {
	kind := Integer
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		kind = Double
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || (next == '-' && isDigit(l.peekAt(2))) {
			kind = Double
			l.advance()
			if l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	return l.emit(kind)
}

// symbol scans #foo, #at:put:, #+ and #'quoted'. A lone # (as in #( ... ))
// is returned as Pound.
func (l *Lexer) symbol() Token {
	c := l.peek()
	switch {
	case c == '\'':
		l.advance()
		return l.str(Symbol)
	case isLetter(c):
		for isLetter(l.peek()) || isDigit(l.peek()) || l.peek() == ':' {
			l.advance()
		}
		return l.emit(Symbol)
	case isOperatorChar(c):
		for isOperatorChar(l.peek()) {
			l.advance()
		}
		return l.emit(Symbol)
	}
	return l.emit(Pound)
}

func (l *Lexer) operator(first rune) Token {
	if first == '-' && l.peek() == '-' && l.peekAt(1) == '-' && l.peekAt(2) == '-' {
		for l.peek() == '-' {
			l.advance()
		}
		return l.emit(Separator)
	}

	// a minus directly in front of a digit is a sign, not part of a sequence
	if first != '-' {
		for isOperatorChar(l.peek()) && !(l.peek() == '-' && isDigit(l.peekAt(1))) {
			l.advance()
		}
	}

	switch text := l.src[l.begin:l.cur]; text {
	case "|":
		return l.emit(Or)
	case "=":
		return l.emit(Equal)
	case "-":
		return l.emit(Minus)
	}
	return l.emit(Operator)
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isOperatorChar(r rune) bool {
	return strings.ContainsRune("~&|*/\\+=><,@%-", r)
}
