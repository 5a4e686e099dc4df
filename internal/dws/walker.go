package dws

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/cwbudde/go-dws/pkg/ast"
	"github.com/cwbudde/go-dws/pkg/token"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
	"github.com/CWBudde/go-som-lsp/internal/structure"
)

// walker replays a go-dws syntax tree as listener events. DWScript is case
// insensitive, so identities use lower-cased names while elements keep the
// spelling of their declaration.
type walker struct {
	l    structure.Listener
	text string

	classes map[string]*classInfo
	order   []string
	funcs   map[string]bool

	scopes []map[string]binding
	class  *classInfo
	nested int
	done   map[protocol.Position]bool
}

type binding struct {
	id  structure.Identity
	arg bool
}

type classInfo struct {
	key     string
	fields  map[string]bool
	methods map[string]bool
}

var builtinNames = func() map[string]bool {
	names := make(map[string]bool, len(builtins))
	for _, b := range builtins {
		names[strings.ToLower(b.Name)] = true
	}
	return names
}()

// replay walks program and reports it to l.
func replay(program *ast.Program, text string, l structure.Listener) {
	w := &walker{
		l:       l,
		text:    text,
		classes: make(map[string]*classInfo),
		funcs:   make(map[string]bool),
		done:    make(map[protocol.Position]bool),
	}

	w.collect(program)

	w.push()
	for _, stmt := range program.Statements {
		w.statement(stmt)
	}
	w.pop()
}

// collect records the classes, their members and the global functions, so
// that uses may precede declarations.
func (w *walker) collect(program *ast.Program) {
	classFor := func(name string) *classInfo {
		key := strings.ToLower(name)
		if ci, ok := w.classes[key]; ok {
			return ci
		}
		ci := &classInfo{key: key, fields: make(map[string]bool), methods: make(map[string]bool)}
		w.classes[key] = ci
		w.order = append(w.order, key)
		return ci
	}

	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.ClassDecl:
			if n == nil || n.Name == nil {
				continue
			}
			ci := classFor(n.Name.Value)
			for _, f := range n.Fields {
				if f != nil && f.Name != nil {
					ci.fields[strings.ToLower(f.Name.Value)] = true
				}
			}
			for _, p := range n.Properties {
				if p != nil && p.Name != nil {
					ci.fields[strings.ToLower(p.Name.Value)] = true
				}
			}
			for _, m := range n.Methods {
				if m != nil && m.Name != nil {
					ci.methods[strings.ToLower(m.Name.Value)] = true
				}
			}

		case *ast.FunctionDecl:
			if n == nil || n.Name == nil {
				continue
			}
			if n.ClassName != nil {
				classFor(n.ClassName.Value).methods[strings.ToLower(n.Name.Value)] = true
			} else {
				w.funcs[strings.ToLower(n.Name.Value)] = true
			}
		}
	}

	sort.Strings(w.order)
}

func (w *walker) statement(stmt ast.Statement) {
	if stmt == nil {
		return
	}

	switch n := stmt.(type) {
	case *ast.ClassDecl:
		w.classDecl(n)
	case *ast.FunctionDecl:
		w.function(n)
	case *ast.VarDeclStatement:
		w.globals(n)
	case *ast.ConstDecl:
		w.constant(n)
	default:
		w.inspect(stmt)
	}
}

func (w *walker) classDecl(n *ast.ClassDecl) {
	if n == nil || n.Name == nil {
		return
	}

	detail := "class"
	if n.Parent != nil {
		detail += "(" + n.Parent.Value + ")"
	}

	key := strings.ToLower(n.Name.Value)
	id := structure.ClassID(key)
	sel := w.nameRange(n.Name)

	elem := w.l.ConstructStarted(protocol.SymbolKindClass, n.Name.Value, id, sel, detail)
	w.l.IdentifierAccepted(n.Name.Value, structure.CategoryClassDecl, sel, id)
	w.mark(sel)

	if n.Parent != nil {
		w.classRef(n.Parent.Value, w.nameRange(n.Parent))
	}

	prev := w.class
	w.class = w.classes[key]

	for _, f := range n.Fields {
		if f == nil || f.Name == nil {
			continue
		}
		w.slotDecl(key, f.Name)
		if t, ok := f.Type.(*ast.TypeAnnotation); ok {
			w.typeRef(t)
		}
	}

	for _, m := range n.Methods {
		w.function(m)
	}

	for _, p := range n.Properties {
		if p == nil || p.Name == nil {
			continue
		}
		w.slotDecl(key, p.Name)
		w.typeRef(p.Type)
	}

	w.class = prev
	w.l.ConstructEnded(elem, w.end(n, sel))
}

func (w *walker) slotDecl(class string, name *ast.Identifier) {
	rng := w.nameRange(name)
	w.l.IdentifierAccepted(name.Value, structure.CategorySlotDecl, rng, slotID(class, name.Value))
	w.mark(rng)
}

// function reports a function or method. Functions nested in a body are not
// listed as symbols of their own.
func (w *walker) function(fn *ast.FunctionDecl) {
	if fn == nil || fn.Name == nil {
		return
	}

	prev := w.class
	if fn.ClassName != nil {
		w.classRef(fn.ClassName.Value, w.nameRange(fn.ClassName))
		w.class = w.classes[strings.ToLower(fn.ClassName.Value)]
	}

	kind := protocol.SymbolKindFunction
	if w.class != nil {
		kind = protocol.SymbolKindMethod
	}

	id := structure.MethodID(strings.ToLower(fn.Name.Value))
	sel := w.nameRange(fn.Name)

	var elem *structure.LanguageElement
	if w.nested == 0 {
		elem = w.l.ConstructStarted(kind, fn.Name.Value, id, sel, signature(fn))
	}
	w.l.IdentifierAccepted(fn.Name.Value, structure.CategorySelectorDecl, sel, id)
	w.mark(sel)

	w.push()
	for _, p := range fn.Parameters {
		if p == nil || p.Name == nil {
			continue
		}
		rng := w.nameRange(p.Name)
		w.l.IdentifierAccepted(p.Name.Value, structure.CategoryArgumentDecl, rng, w.bind(p.Name.Value, rng, true))
		w.mark(rng)
		w.typeRef(p.Type)
	}
	w.typeRef(fn.ReturnType)

	if fn.Body != nil {
		w.nested++
		w.inspect(fn.Body)
		w.nested--
	}
	w.pop()

	w.class = prev
	if elem != nil {
		w.l.ConstructEnded(elem, w.end(fn, sel))
	}
}

// globals lists top-level variables as symbols.
func (w *walker) globals(n *ast.VarDeclStatement) {
	if n == nil {
		return
	}

	detail := "var"
	if n.Type != nil && n.Type.Name != "" {
		detail += ": " + n.Type.Name
	}

	for _, name := range n.Names {
		if name == nil {
			continue
		}
		w.variable(protocol.SymbolKindVariable, name, detail)
	}

	w.inspect(n)
}

func (w *walker) constant(n *ast.ConstDecl) {
	if n == nil || n.Name == nil {
		return
	}

	detail := "const"
	if n.Type != nil && n.Type.Name != "" {
		detail += ": " + n.Type.Name
	}

	w.variable(protocol.SymbolKindConstant, n.Name, detail)
	w.inspect(n)
}

func (w *walker) variable(kind protocol.SymbolKind, name *ast.Identifier, detail string) {
	rng := w.nameRange(name)
	id := w.bind(name.Value, rng, false)

	elem := w.l.ConstructStarted(kind, name.Value, id, rng, detail)
	w.l.IdentifierAccepted(name.Value, structure.CategoryLocalDecl, rng, id)
	w.mark(rng)
	w.l.ConstructEnded(elem, rng.End)
}

// inspect walks the statements and expressions below node.
func (w *walker) inspect(node ast.Node) {
	ast.Inspect(node, func(node ast.Node) bool {
		switch n := node.(type) {
		case nil:
			return false

		case *ast.FunctionDecl:
			w.function(n)
			return false

		case *ast.VarDeclStatement:
			for _, name := range n.Names {
				if name == nil {
					continue
				}
				rng := w.nameRange(name)
				if w.done[rng.Start] {
					continue
				}
				w.l.IdentifierAccepted(name.Value, structure.CategoryLocalDecl, rng, w.bind(name.Value, rng, false))
				w.mark(rng)
			}

		case *ast.TypeAnnotation:
			w.typeRef(n)

		case *ast.MethodCallExpression:
			if n.Method != nil {
				w.send(n.Method)
			}

		case *ast.MemberAccessExpression:
			if n.Member != nil {
				w.member(n.Member)
			}

		case *ast.Identifier:
			w.identifier(n)

		case *ast.StringLiteral:
			w.literal(n.Pos(), utf16Length(n.Value)+2, structure.LiteralString)
		case *ast.CharLiteral:
			w.literal(n.Pos(), utf16Length(n.Token.Literal), structure.LiteralChar)
		case *ast.IntegerLiteral:
			w.literal(n.Pos(), utf16Length(n.Token.Literal), structure.LiteralNumber)
		case *ast.FloatLiteral:
			w.literal(n.Pos(), utf16Length(n.Token.Literal), structure.LiteralNumber)
		case *ast.BooleanLiteral:
			w.pseudo(n.Pos(), n.Token.Literal)
		case *ast.NilLiteral:
			w.pseudo(n.Pos(), "nil")
		}

		return true
	})
}

// identifier resolves a name used in a body: variables in scope first, then
// fields and methods of the enclosing class, then functions and classes.
func (w *walker) identifier(id *ast.Identifier) {
	rng := w.nameRange(id)
	if w.done[rng.Start] {
		return
	}
	w.mark(rng)

	key := strings.ToLower(id.Value)
	write := w.assigned(rng)

	if key == "self" || key == "result" {
		w.l.IdentifierAccepted(id.Value, structure.CategoryPseudo, rng, structure.Identity{})
		return
	}

	if b, ok := w.lookup(key); ok {
		switch {
		case write:
			w.l.IdentifierAccepted(id.Value, structure.CategoryLocalWrite, rng, b.id)
		case b.arg:
			w.l.IdentifierAccepted(id.Value, structure.CategoryArgumentRead, rng, b.id)
		default:
			w.l.IdentifierAccepted(id.Value, structure.CategoryLocalRead, rng, b.id)
		}
		return
	}

	if w.class != nil && w.class.fields[key] {
		w.slot(id.Value, rng, slotID(w.class.key, key), write)
		return
	}

	if (w.class != nil && w.class.methods[key]) || w.funcs[key] || builtinNames[key] {
		w.l.IdentifierAccepted(id.Value, structure.CategorySend, rng, structure.MethodID(key))
		return
	}

	if _, ok := w.classes[key]; ok {
		w.l.IdentifierAccepted(id.Value, structure.CategoryClassRef, rng, structure.ClassID(key))
	}
}

// member resolves the name after a dot. A field of any class in the document
// wins over a method of the same name.
func (w *walker) member(id *ast.Identifier) {
	rng := w.nameRange(id)
	if w.done[rng.Start] {
		return
	}

	key := strings.ToLower(id.Value)
	for _, class := range w.order {
		if w.classes[class].fields[key] {
			w.mark(rng)
			w.slot(id.Value, rng, slotID(class, key), w.assigned(rng))
			return
		}
	}

	w.send(id)
}

func (w *walker) send(id *ast.Identifier) {
	rng := w.nameRange(id)
	if w.done[rng.Start] {
		return
	}
	w.mark(rng)

	w.l.IdentifierAccepted(id.Value, structure.CategorySend, rng, structure.MethodID(strings.ToLower(id.Value)))
}

func (w *walker) slot(name string, rng protocol.Range, id structure.Identity, write bool) {
	if write {
		w.l.IdentifierAccepted(name, structure.CategorySlotWrite, rng, id)
	} else {
		w.l.IdentifierAccepted(name, structure.CategorySlotRead, rng, id)
	}
}

// typeRef reports a type name that is not predeclared as a class reference.
func (w *walker) typeRef(t *ast.TypeAnnotation) {
	if t == nil || t.Name == "" || !t.Token.Pos.IsValid() {
		return
	}

	start := position(t.Token.Pos)
	rng := protocol.Range{Start: start, End: protocol.Position{Line: start.Line, Character: start.Character + uint32(utf16Length(t.Name))}}
	if w.done[rng.Start] || isBuiltinType(t.Name) {
		return
	}
	w.mark(rng)

	w.classRef(t.Name, rng)
}

func (w *walker) classRef(name string, rng protocol.Range) {
	w.l.IdentifierAccepted(name, structure.CategoryClassRef, rng, structure.ClassID(strings.ToLower(name)))
	w.mark(rng)
}

func (w *walker) literal(pos token.Position, length int, kind structure.LiteralKind) {
	if !pos.IsValid() || length <= 0 {
		return
	}

	start := position(pos)
	w.l.LiteralParsed(kind, protocol.Range{Start: start, End: protocol.Position{Line: start.Line, Character: start.Character + uint32(length)}})
}

func (w *walker) pseudo(pos token.Position, text string) {
	if !pos.IsValid() || text == "" {
		return
	}

	start := position(pos)
	rng := protocol.Range{Start: start, End: protocol.Position{Line: start.Line, Character: start.Character + uint32(utf16Length(text))}}
	w.l.IdentifierAccepted(text, structure.CategoryPseudo, rng, structure.Identity{})
}

// assigned reports whether the identifier at rng is the target of ":=".
func (w *walker) assigned(rng protocol.Range) bool {
	line := adapter.LineAt(w.text, rng.End.Line)
	rest := strings.TrimLeft(line[adapter.ByteOffset(line, rng.End.Character):], " \t")
	return strings.HasPrefix(rest, ":=")
}

func (w *walker) push() {
	w.scopes = append(w.scopes, make(map[string]binding))
}

func (w *walker) pop() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *walker) bind(name string, rng protocol.Range, arg bool) structure.Identity {
	key := strings.ToLower(name)
	id := structure.VariableID(key, rng)
	w.scopes[len(w.scopes)-1][key] = binding{id: id, arg: arg}
	return id
}

func (w *walker) lookup(key string) (binding, bool) {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if b, ok := w.scopes[i][key]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (w *walker) mark(rng protocol.Range) {
	w.done[rng.Start] = true
}

func (w *walker) nameRange(id *ast.Identifier) protocol.Range {
	start := position(id.Pos())
	return protocol.Range{
		Start: start,
		End:   protocol.Position{Line: start.Line, Character: start.Character + uint32(utf16Length(id.Value))},
	}
}

// end returns where node ends, falling back to the end of its name when the
// tree has no usable end position.
func (w *walker) end(node ast.Node, sel protocol.Range) protocol.Position {
	pos := node.End()
	if !pos.IsValid() {
		return sel.End
	}

	end := position(pos)
	if end.Line < sel.End.Line || (end.Line == sel.End.Line && end.Character < sel.End.Character) {
		return sel.End
	}
	return end
}

// position converts a 1-based go-dws position to a 0-based LSP position.
func position(p token.Position) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(0, p.Line-1)),
		Character: uint32(max(0, p.Column-1)),
	}
}

func slotID(class, field string) structure.Identity {
	return structure.SlotID(class + "." + strings.ToLower(field))
}

func isBuiltinType(name string) bool {
	for _, t := range builtinTypes {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// signature renders the declaration of fn for symbol details.
func signature(fn *ast.FunctionDecl) string {
	var sb strings.Builder

	if fn.ReturnType != nil && fn.ReturnType.Name != "" {
		sb.WriteString("function ")
	} else {
		sb.WriteString("procedure ")
	}
	if fn.ClassName != nil {
		sb.WriteString(fn.ClassName.Value + ".")
	}
	sb.WriteString(fn.Name.Value)

	sb.WriteString("(")
	for i, p := range fn.Parameters {
		if p == nil || p.Name == nil {
			continue
		}
		if i > 0 {
			sb.WriteString("; ")
		}
		if p.IsConst {
			sb.WriteString("const ")
		}
		if p.ByRef {
			sb.WriteString("var ")
		}
		sb.WriteString(p.Name.Value)
		if p.Type != nil && p.Type.Name != "" {
			sb.WriteString(": " + p.Type.Name)
		}
	}
	sb.WriteString(")")

	if fn.ReturnType != nil && fn.ReturnType.Name != "" {
		sb.WriteString(": " + fn.ReturnType.Name)
	}

	return sb.String()
}

// utf16Length returns the length of s in UTF-16 code units.
func utf16Length(s string) int {
	return len(utf16.Encode([]rune(s)))
}
