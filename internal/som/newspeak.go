package som

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/structure"
)

var accessModifiers = map[string]bool{
	"private":   true,
	"protected": true,
	"public":    true,
}

// ParseNewspeak parses Newspeak (SOMns) module source and reports to l. The
// expression grammar is the one of SOM, extended by sends to the implicit
// receiver, setter sends ("x:: value") and literal objects. It returns false
// if a syntax error was reported.
func ParseNewspeak(src string, l structure.Listener) bool {
	lexer := NewLexer(src)
	lexer.ParenComments = true

	p := &Parser{l: l, toks: lexer.All(), idx: -1, newspeak: true}
	return p.run()
}

// classDeclaration: 'class' Identifier pattern? '=' superclass? ( header body? | '.'? )
//
// The optional pattern names the primary factory. Its arguments are visible in
// the header. Without a header the declaration is a mixin application.
func (p *Parser) classDeclaration() {
	if p.tok.Kind != Identifier || p.tok.Text != "class" {
		p.unexpected("class declaration")
	}
	p.accept(p.tok.Text, structure.CategoryKeyword, p.tok, structure.Identity{})
	p.next()

	if p.tok.Kind != Identifier {
		p.unexpected("class name")
	}

	nameTok := p.tok
	name := nameTok.Text
	id := structure.ClassID(name)

	class := p.l.ConstructStarted(protocol.SymbolKindClass, name, id, nameTok.Range(), "")
	p.accept(name, structure.CategoryClassDecl, nameTok, id)
	p.next()

	outer := p.class
	p.class = newClassInfo(name, outer)
	defer func() { p.class = outer }()

	p.pushScope()

	var factory *structure.LanguageElement
	if p.tok.Kind == Identifier || p.tok.Kind == Keyword {
		selector, detail, parts, args := p.pattern()
		factoryID := structure.MethodID(selector)

		factory = p.l.ConstructStarted(protocol.SymbolKindMethod, selector, factoryID, parts[0].Range(), detail)
		for _, part := range parts {
			p.accept(part.Text, structure.CategorySelectorDecl, part, factoryID)
		}
		for _, arg := range args {
			p.declareArgument(arg)
		}
	}

	p.expect(Equal)
	mixin := p.superclassClause(class)

	// the header's slots belong to the class, not to the factory
	if factory != nil {
		p.l.ConstructEnded(factory, p.prev.End)
	}

	if p.tok.Kind != NewTerm {
		if !mixin {
			p.unexpected("'('")
		}
		p.popScope()

		end := p.prev.End
		if p.tok.Kind == Period {
			end = p.tok.End
			p.next()
		}
		p.l.ConstructEnded(class, end)
		return
	}

	end := p.classHeader()
	p.popScope()

	if p.tok.Kind == NewTerm {
		end = p.classBody(class, true)
	}
	p.l.ConstructEnded(class, end)
}

// superclass: classExpression? ( '<:' classExpression )*
//
// It reports whether a mixin is applied.
func (p *Parser) superclassClause(class *structure.LanguageElement) (mixin bool) {
	if p.tok.Kind == Identifier {
		class.Detail = p.classExpression()
	}

	for p.tok.Kind == Operator && p.tok.Text == "<" && p.peek() == Colon {
		p.next()
		p.next()
		if p.tok.Kind != Identifier {
			p.unexpected("mixin")
		}
		p.classExpression()
		mixin = true
	}

	return mixin
}

// classExpression reads a class reference such as "Value" or
// "outer Kernel Object" and returns the last name.
func (p *Parser) classExpression() string {
	name := p.tok.Text
	p.variableRead(p.tok)
	p.next()

	for p.tok.Kind == Identifier {
		name = p.tok.Text
		p.unaryMessage()
	}

	return name
}

// header: '(' ( '|' slotDecl* '|' )? blockBody ')'
func (p *Parser) classHeader() protocol.Position {
	p.expect(NewTerm)

	switch {
	case p.tok.Kind == Operator && p.tok.Text == "||":
		p.next()
	case p.tok.Kind == Or:
		p.next()
		for p.tok.Kind != Or {
			p.slotDeclaration()
		}
		p.next()
	}

	p.blockBody()

	return p.expect(EndTerm).End
}

// slotDecl: modifier? Identifier ( ( '=' | '::=' ) expression )? '.'?
func (p *Parser) slotDeclaration() {
	p.modifier()

	var nameTok Token
	initialized := false

	switch p.tok.Kind {
	case Identifier:
		nameTok = p.tok
		p.next()

		switch {
		case p.tok.Kind == Equal:
			p.next()
			initialized = true
		case p.tok.Kind == Colon && p.peek() == Assign:
			// "x ::= 0" lexes as identifier, colon, assign
			p.next()
			p.next()
			initialized = true
		}

	case Keyword:
		// "x::= 0" lexes as keyword "x:" and assign
		nameTok = withoutColon(p.tok)
		p.next()
		p.expect(Assign)
		initialized = true

	default:
		p.unexpected("slot name")
	}

	slotID := structure.SlotID(p.slotKey(nameTok.Text))
	p.currentSlots()[nameTok.Text] = slotID
	p.accept(nameTok.Text, structure.CategorySlotDecl, nameTok, slotID)

	if initialized {
		p.expression()
	}

	if p.tok.Kind == Period {
		p.next()
	}
}

// body: '(' member* ')' ( ':' '(' member* ')' )?
//
// It returns the end of the body, class side included.
func (p *Parser) classBody(class *structure.LanguageElement, classSide bool) protocol.Position {
	p.expect(NewTerm)
	p.members()
	end := p.expect(EndTerm).End

	if classSide && p.tok.Kind == Colon {
		colon := p.tok
		p.next()

		p.class.classSide = true
		side := p.l.ConstructStarted(protocol.SymbolKindClass, "class", structure.Identity{}, colon.Range(), class.Name+" class")

		p.expect(NewTerm)
		p.members()
		end = p.expect(EndTerm).End

		p.l.ConstructEnded(side, end)
	}

	return end
}

// member: String | modifier? ( classDeclaration | method )
//
// Strings between members name method categories.
func (p *Parser) members() {
	for p.tok.Kind != EndTerm {
		switch p.tok.Kind {
		case String:
			p.l.LiteralParsed(structure.LiteralString, p.tok.Range())
			p.next()
			continue
		case EOF:
			p.unexpected("')'")
		}

		p.modifier()

		if p.tok.Kind == Identifier && p.tok.Text == "class" && p.peek() == Identifier {
			p.classDeclaration()
			continue
		}

		if p.tok.Kind != Identifier && p.tok.Kind != Keyword && !p.tok.Kind.IsBinarySelector() {
			p.unexpected("method or class declaration")
		}
		p.method()
	}
}

// modifier accepts an access modifier in front of a slot, method or class.
func (p *Parser) modifier() {
	if p.tok.Kind != Identifier || !accessModifiers[p.tok.Text] {
		return
	}

	switch next := p.peek(); {
	case next == Identifier, next == Keyword,
		next.IsBinarySelector() && next != Equal && next != Or:
		p.accept(p.tok.Text, structure.CategoryModifier, p.tok, structure.Identity{})
		p.next()
	}
}

// literalObject: 'objL' header body?
//
// A literal object is an anonymous class. Inside a method it is opened on top
// of the method, whose variables stay visible.
func (p *Parser) literalObject() {
	tok := p.tok
	p.accept(tok.Text, structure.CategoryKeyword, tok, structure.Identity{})

	obj := p.l.ConstructStarted(protocol.SymbolKindObject, tok.Text, structure.LiteralID(tok.Text), tok.Range(), tok.Text)
	p.next()

	outer := p.class
	p.class = newClassInfo(tok.Text, outer)
	defer func() { p.class = outer }()

	end := p.classHeader()
	if p.tok.Kind == NewTerm {
		end = p.classBody(obj, false)
	}

	p.l.ConstructEnded(obj, end)
}

// setterSend: Keyword ':' expression, as in "count:: count + 1"
func (p *Parser) setterSend() {
	p.variableWrite(withoutColon(p.tok))
	p.next()
	p.next()
	p.expression()
}

func withoutColon(tok Token) Token {
	return Token{
		Kind:  Identifier,
		Text:  strings.TrimSuffix(tok.Text, ":"),
		Start: tok.Start,
		End:   protocol.Position{Line: tok.End.Line, Character: tok.End.Character - 1},
	}
}
