package som

import (
	"strings"
	"unicode"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/structure"
)

var pseudoVariables = map[string]bool{
	"self":  true,
	"super": true,
	"nil":   true,
	"true":  true,
	"false": true,
}

// bailout unwinds the parser after the first syntax error.
type bailout struct{}

type binding struct {
	id       structure.Identity
	argument bool
}

type classInfo struct {
	name      string // qualified by the enclosing classes
	classSide bool
	slots     map[string]structure.Identity
	metaSlots map[string]structure.Identity
	outer     *classInfo
}

func newClassInfo(name string, outer *classInfo) *classInfo {
	if outer != nil {
		name = outer.name + "." + name
	}
	return &classInfo{
		name:      name,
		slots:     make(map[string]structure.Identity),
		metaSlots: make(map[string]structure.Identity),
		outer:     outer,
	}
}

// Parser is a recursive-descent parser for SOM class definitions. It reports
// every construct, name and literal it recognizes to a Listener and stops at
// the first syntax error.
type Parser struct {
	l structure.Listener

	toks []Token
	idx  int
	tok  Token
	prev Token

	scopes []map[string]binding
	class  *classInfo

	newspeak bool
}

// Parse parses src and reports to l. It returns false if a syntax error was
// reported.
func Parse(src string, l structure.Listener) bool {
	p := &Parser{l: l, toks: Lex(src), idx: -1}
	return p.run()
}

func (p *Parser) run() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			ok = false
		}
	}()

	p.next()
	for p.tok.Kind != EOF {
		if p.newspeak {
			p.classDeclaration()
		} else {
			p.classDefinition()
		}
	}

	return true
}

// next moves to the next token, reporting the comments it skips.
func (p *Parser) next() {
	p.prev = p.tok
	for {
		p.idx++
		p.tok = p.toks[p.idx]
		if p.tok.Kind != Comment {
			return
		}
		p.l.LiteralParsed(structure.LiteralComment, p.tok.Range())
	}
}

// peek returns the kind of the token after the current one.
func (p *Parser) peek() Kind {
	for i := p.idx + 1; i < len(p.toks); i++ {
		if p.toks[i].Kind != Comment {
			return p.toks[i].Kind
		}
	}
	return EOF
}

func (p *Parser) fail(msg string) {
	p.l.SyntaxError(p.tok.Start, msg)
	panic(bailout{})
}

func (p *Parser) unexpected(expected string) {
	switch {
	case p.tok.Kind == Illegal && strings.HasPrefix(p.tok.Text, "'"):
		p.fail("unterminated string")
	case p.tok.Kind == Illegal && strings.HasPrefix(p.tok.Text, "#'"):
		p.fail("unterminated symbol")
	case p.tok.Kind == Illegal && (strings.HasPrefix(p.tok.Text, "\"") || strings.HasPrefix(p.tok.Text, "(*")):
		p.fail("unterminated comment")
	case p.tok.Kind == Illegal:
		p.fail("illegal character " + p.tok.Text)
	}
	p.fail("expected " + expected + " but found " + p.describe())
}

func (p *Parser) describe() string {
	switch p.tok.Kind {
	case Identifier, Keyword, Operator, Integer, Double, String, Symbol:
		return p.tok.Kind.String() + " " + p.tok.Text
	}
	return p.tok.Kind.String()
}

func (p *Parser) expect(kind Kind) Token {
	if p.tok.Kind != kind {
		p.unexpected(kind.String())
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) accept(text string, category structure.Category, tok Token, id structure.Identity) {
	p.l.IdentifierAccepted(text, category, tok.Range(), id)
}

// classdef: Identifier '=' superclass? '(' fields methods ('----' fields methods)? ')'
func (p *Parser) classDefinition() {
	if p.tok.Kind != Identifier {
		p.unexpected("class name")
	}

	nameTok := p.tok
	name := nameTok.Text
	id := structure.ClassID(name)

	class := p.l.ConstructStarted(protocol.SymbolKindClass, name, id, nameTok.Range(), "")
	p.accept(name, structure.CategoryClassDecl, nameTok, id)
	p.next()

	p.expect(Equal)

	if p.tok.Kind == Identifier {
		super := p.tok
		p.accept(super.Text, structure.CategoryClassRef, super, structure.ClassID(super.Text))
		class.Detail = super.Text
		p.next()
	}

	p.expect(NewTerm)

	p.class = newClassInfo(name, nil)
	defer func() { p.class = nil }()

	p.fields()
	p.methods()

	if p.tok.Kind == Separator {
		sep := p.tok
		p.next()

		p.class.classSide = true
		side := p.l.ConstructStarted(protocol.SymbolKindClass, "class", structure.Identity{}, sep.Range(), name+" class")
		p.fields()
		p.methods()
		p.l.ConstructEnded(side, p.prev.End)
	}

	end := p.expect(EndTerm)
	p.l.ConstructEnded(class, end.End)
}

func (p *Parser) slotKey(name string) string {
	if p.class.classSide {
		return p.class.name + " class." + name
	}
	return p.class.name + "." + name
}

func (p *Parser) currentSlots() map[string]structure.Identity {
	return p.class.currentSlots()
}

func (c *classInfo) currentSlots() map[string]structure.Identity {
	if c.classSide {
		return c.metaSlots
	}
	return c.slots
}

// lookupSlot resolves name in the current class and then in the lexically
// enclosing ones.
func (p *Parser) lookupSlot(name string) (structure.Identity, bool) {
	for c := p.class; c != nil; c = c.outer {
		if id, ok := c.currentSlots()[name]; ok {
			return id, true
		}
	}
	return structure.Identity{}, false
}

// fields: ( '|' Identifier* '|' )?
func (p *Parser) fields() {
	if p.tok.Kind == Operator && p.tok.Text == "||" {
		p.next()
		return
	}

	if p.tok.Kind != Or {
		return
	}
	p.next()

	slots := p.currentSlots()
	for p.tok.Kind == Identifier {
		id := structure.SlotID(p.slotKey(p.tok.Text))
		slots[p.tok.Text] = id
		p.accept(p.tok.Text, structure.CategorySlotDecl, p.tok, id)
		p.next()
	}

	p.expect(Or)
}

func (p *Parser) methods() {
	for p.tok.Kind == Identifier || p.tok.Kind == Keyword || p.tok.Kind.IsBinarySelector() {
		p.method()
	}
}

// method: pattern '=' ( 'primitive' | '(' blockContents ')' )
func (p *Parser) method() {
	selector, detail, parts, args := p.pattern()
	id := structure.MethodID(selector)

	method := p.l.ConstructStarted(protocol.SymbolKindMethod, selector, id, parts[0].Range(), detail)
	for _, part := range parts {
		p.accept(part.Text, structure.CategorySelectorDecl, part, id)
	}

	p.pushScope()
	defer p.popScope()

	for _, arg := range args {
		p.declareArgument(arg)
	}

	p.expect(Equal)

	if p.tok.Kind == Primitive {
		p.accept(p.tok.Text, structure.CategoryKeyword, p.tok, structure.Identity{})
		end := p.tok.End
		p.next()
		p.l.ConstructEnded(method, end)
		return
	}

	p.expect(NewTerm)
	p.blockContents()
	end := p.expect(EndTerm)
	p.l.ConstructEnded(method, end.End)
}

// pattern returns the selector, a display signature, the selector parts and
// the argument names of a method pattern.
func (p *Parser) pattern() (selector, detail string, parts, args []Token) {
	switch {
	case p.tok.Kind == Identifier:
		parts = []Token{p.tok}
		selector = p.tok.Text
		detail = selector
		p.next()

	case p.tok.Kind == Keyword:
		var sel, sig []string
		for p.tok.Kind == Keyword {
			part := p.tok
			p.next()
			arg := p.expect(Identifier)

			parts = append(parts, part)
			args = append(args, arg)
			sel = append(sel, part.Text)
			sig = append(sig, part.Text+" "+arg.Text)
		}
		selector = strings.Join(sel, "")
		detail = strings.Join(sig, " ")

	case p.tok.Kind.IsBinarySelector():
		part := p.tok
		p.next()
		arg := p.expect(Identifier)

		parts = []Token{part}
		args = []Token{arg}
		selector = part.Text
		detail = part.Text + " " + arg.Text

	default:
		p.unexpected("method pattern")
	}

	return selector, detail, parts, args
}

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]binding))
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) declareArgument(tok Token) {
	id := structure.VariableID(tok.Text, tok.Range())
	p.scopes[len(p.scopes)-1][tok.Text] = binding{id: id, argument: true}
	p.accept(tok.Text, structure.CategoryArgumentDecl, tok, id)
}

func (p *Parser) declareLocal(tok Token) {
	id := structure.VariableID(tok.Text, tok.Range())
	p.scopes[len(p.scopes)-1][tok.Text] = binding{id: id}
	p.accept(tok.Text, structure.CategoryLocalDecl, tok, id)
}

func (p *Parser) lookup(name string) (binding, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if b, ok := p.scopes[i][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// blockContents: ( '|' Identifier* '|' )? blockBody
func (p *Parser) blockContents() {
	switch {
	case p.tok.Kind == Operator && p.tok.Text == "||":
		p.next()
	case p.tok.Kind == Or:
		p.next()
		for p.tok.Kind == Identifier {
			p.declareLocal(p.tok)
			p.next()
		}
		p.expect(Or)
	}

	p.blockBody()
}

// blockBody: '^' expression '.'? | expression ( '.' blockBody? )?
func (p *Parser) blockBody() {
	for {
		switch p.tok.Kind {
		case EndTerm, EndBlock:
			return
		case Exit:
			p.next()
			p.expression()
			if p.tok.Kind == Period {
				p.next()
			}
			return
		}

		p.expression()
		if p.tok.Kind != Period {
			return
		}
		p.next()
	}
}

// expression: ( Identifier ':=' )* primary messages?
func (p *Parser) expression() {
	if p.tok.Kind == Identifier && p.peek() == Assign {
		p.variableWrite(p.tok)
		p.next()
		p.next()
		p.expression()
		return
	}

	if p.newspeak && p.tok.Kind == Keyword {
		if p.peek() == Colon {
			p.setterSend()
			return
		}
		// send to the implicit receiver
		p.keywordMessage()
		return
	}

	p.primary()
	p.messages()
}

func (p *Parser) primary() {
	switch p.tok.Kind {
	case Identifier:
		if p.newspeak && p.tok.Text == "objL" && p.peek() == NewTerm {
			p.literalObject()
			return
		}
		p.variableRead(p.tok)
		p.next()
	case NewTerm:
		p.next()
		p.expression()
		p.expect(EndTerm)
	case NewBlock:
		p.block()
	default:
		p.literal()
	}
}

func (p *Parser) variableRead(tok Token) {
	name := tok.Text

	if p.isPseudo(name) {
		p.accept(name, structure.CategoryPseudo, tok, structure.Identity{})
		return
	}

	if b, ok := p.lookup(name); ok {
		category := structure.CategoryLocalRead
		if b.argument {
			category = structure.CategoryArgumentRead
		}
		p.accept(name, category, tok, b.id)
		return
	}

	if id, ok := p.lookupSlot(name); ok {
		p.accept(name, structure.CategorySlotRead, tok, id)
		return
	}

	if isClassName(name) {
		p.accept(name, structure.CategoryClassRef, tok, structure.ClassID(name))
		return
	}

	// unknown global, e.g. system
	p.accept(name, structure.CategoryLocalRead, tok, structure.Identity{})
}

func (p *Parser) variableWrite(tok Token) {
	name := tok.Text

	if p.isPseudo(name) {
		p.accept(name, structure.CategoryPseudo, tok, structure.Identity{})
		return
	}

	if b, ok := p.lookup(name); ok {
		p.accept(name, structure.CategoryLocalWrite, tok, b.id)
		return
	}

	if id, ok := p.lookupSlot(name); ok {
		p.accept(name, structure.CategorySlotWrite, tok, id)
		return
	}

	p.accept(name, structure.CategoryLocalWrite, tok, structure.Identity{})
}

func (p *Parser) isPseudo(name string) bool {
	return pseudoVariables[name] || (p.newspeak && name == "outer")
}

func isClassName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// messages: unary+ binary* keyword? | binary+ keyword? | keyword
func (p *Parser) messages() {
	for p.tok.Kind == Identifier {
		p.unaryMessage()
	}
	for p.tok.Kind.IsBinarySelector() {
		p.binaryMessage()
	}
	if p.tok.Kind == Keyword {
		p.keywordMessage()
	}
}

func (p *Parser) unaryMessage() {
	p.accept(p.tok.Text, structure.CategorySend, p.tok, structure.MethodID(p.tok.Text))
	p.next()
}

func (p *Parser) binaryMessage() {
	p.accept(p.tok.Text, structure.CategorySend, p.tok, structure.MethodID(p.tok.Text))
	p.next()
	p.binaryOperand()
}

func (p *Parser) binaryOperand() {
	p.primary()
	for p.tok.Kind == Identifier {
		p.unaryMessage()
	}
}

// keywordMessage: ( Keyword formula )+
func (p *Parser) keywordMessage() {
	var parts []Token
	for p.tok.Kind == Keyword {
		parts = append(parts, p.tok)
		p.next()

		p.binaryOperand()
		for p.tok.Kind.IsBinarySelector() {
			p.binaryMessage()
		}
	}

	var sel strings.Builder
	for _, part := range parts {
		sel.WriteString(part.Text)
	}

	id := structure.MethodID(sel.String())
	for _, part := range parts {
		p.accept(part.Text, structure.CategorySend, part, id)
	}
}

// block: '[' ( ( ':' Identifier )+ '|' )? blockContents ']'
func (p *Parser) block() {
	p.expect(NewBlock)

	p.pushScope()
	defer p.popScope()

	if p.tok.Kind == Colon {
		for p.tok.Kind == Colon {
			p.next()
			if p.tok.Kind != Identifier {
				p.unexpected("block argument")
			}
			p.declareArgument(p.tok)
			p.next()
		}

		// in [:a || b | ... ] the pattern's bar and the locals' bar touch
		if p.tok.Kind == Operator && p.tok.Text == "||" {
			p.next()
			for p.tok.Kind == Identifier {
				p.declareLocal(p.tok)
				p.next()
			}
			p.expect(Or)
			p.blockBody()
			p.expect(EndBlock)
			return
		}
		p.expect(Or)
	}

	p.blockContents()
	p.expect(EndBlock)
}

func (p *Parser) literal() {
	tok := p.tok

	switch tok.Kind {
	case String:
		p.l.LiteralParsed(structure.LiteralString, tok.Range())
		p.next()
	case Symbol:
		p.l.LiteralParsed(structure.LiteralSymbol, tok.Range())
		p.next()
	case Integer, Double:
		p.l.LiteralParsed(structure.LiteralNumber, tok.Range())
		p.next()
	case Minus:
		p.next()
		if p.tok.Kind != Integer && p.tok.Kind != Double {
			p.unexpected("number")
		}
		p.l.LiteralParsed(structure.LiteralNumber, protocol.Range{Start: tok.Start, End: p.tok.End})
		p.next()
	case Pound:
		p.l.LiteralParsed(structure.LiteralSymbol, tok.Range())
		p.next()
		p.array()
	default:
		p.unexpected("expression")
	}
}

// array: '(' element* ')', where bare names stand for symbols.
func (p *Parser) array() {
	p.expect(NewTerm)

	for p.tok.Kind != EndTerm {
		switch p.tok.Kind {
		case Identifier, Keyword:
			p.l.LiteralParsed(structure.LiteralSymbol, p.tok.Range())
			p.next()
		case NewTerm:
			p.array()
		case EOF:
			p.unexpected("')'")
		default:
			p.literal()
		}
	}

	p.next()
}
