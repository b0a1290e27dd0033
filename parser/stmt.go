package parser

import (
	"fmt"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"break": true, "continue": true, "return": true, "var": true, "new": true,
	"switch": true, "case": true, "default": true,
}

// Parser reads the statements of one method body.
type Parser struct {
	r    *reader.Reader
	sink *errors.Sink
}

func New(r *reader.Reader) *Parser {
	return &Parser{r: r, sink: r.Sink()}
}

// Expression parses one expression and builds its tree. It returns nil if
// nothing usable was read.
func (p *Parser) Expression(stop Stop) ast.Node {
	at := p.r.Current()
	postfix := Postfix(p.r, stop)
	if len(postfix) == 0 {
		p.sink.AddError(fmt.Sprintf("expected an expression, found %s", describe(at)), errors.Syntax, at.Location)
		return nil
	}
	return ast.Build(postfix, p.sink)
}

// Body parses statements up to EOF.
func (p *Parser) Body() *ast.Block {
	block := &ast.Block{Pos: p.r.Current().Location}
	for !p.r.EOF() {
		if s := p.statementOrSkip(); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
	}
	block.Pos = types.JoinSpan(block.Pos, p.r.Current().Location)
	return block
}

// statementOrSkip parses a statement and resynchronizes at the next
// statement boundary when it failed. It always makes progress.
func (p *Parser) statementOrSkip() ast.Stmt {
	start, errs := p.r.Offset(), p.sink.ErrorCount()
	s := p.Statement()
	if p.sink.ErrorCount() > errs && !p.atBoundary() {
		p.r.SkipTo(";", "}")
		p.r.Accept(";")
	}
	if p.r.Offset() == start {
		p.r.Next()
	}
	return s
}

// atBoundary reports whether the last consumed token ended a statement.
func (p *Parser) atBoundary() bool {
	prev, ok := p.r.Previous()
	return ok && (prev.Kind == types.SEMI || prev.Is(types.DELIM, "}"))
}

// Statement parses one statement. Empty statements yield nil.
func (p *Parser) Statement() ast.Stmt {
	tok := p.r.Current()
	if tok.Kind == types.SEMI {
		p.r.Next()
		return nil
	}
	if tok.Is(types.DELIM, "{") {
		return p.block()
	}
	if tok.Kind == types.IDENT {
		switch tok.Text {
		case "if":
			return p.ifStmt()
		case "while":
			return p.whileStmt()
		case "do":
			return p.doStmt()
		case "for":
			return p.forStmt()
		case "break":
			p.r.Next()
			p.r.Expect(";")
			return &ast.Break{Pos: tok.Location}
		case "continue":
			p.r.Next()
			p.r.Expect(";")
			return &ast.Continue{Pos: tok.Location}
		case "return":
			return p.returnStmt()
		case "else":
			p.sink.AddError("'else' without a matching 'if'", errors.Shape, tok.Location)
			p.r.Next()
			return nil
		case "case", "default", "switch":
			p.sink.AddError(fmt.Sprintf("'%s' statements are not supported", tok.Text), errors.Shape, tok.Location)
			p.r.Next()
			return nil
		}
		if p.isDeclaration() {
			return p.varDecl()
		}
	}

	x := p.Expression(StopSemi)
	p.r.Expect(";")
	if x == nil {
		return nil
	}
	return &ast.ExprStmt{X: x}
}

func (p *Parser) block() *ast.Block {
	open := p.r.Next()
	block := &ast.Block{Pos: open.Location}
	for !p.r.Is("}") {
		if p.r.EOF() {
			p.sink.AddError("missing '}' for '{'", errors.Syntax, open.Location)
			return block
		}
		if s := p.statementOrSkip(); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
	}
	block.Pos = types.JoinSpan(open.Location, p.r.Next().Location)
	return block
}

// isDeclaration looks ahead for Type [[]]... name without moving.
func (p *Parser) isDeclaration() bool {
	f := p.r.Fork()
	first := f.Next()
	if first.Text == "var" {
		return f.IsKind(types.IDENT) && !keywords[f.Current().Text]
	}
	if keywords[first.Text] {
		return false
	}
	for f.Is("[") && f.Peek(1).Is(types.DELIM, "]") {
		f.Next()
		f.Next()
	}
	return f.IsKind(types.IDENT) && !keywords[f.Current().Text]
}

func (p *Parser) typeName() string {
	name := p.r.Next().Text
	for p.r.Is("[") && p.r.Peek(1).Is(types.DELIM, "]") {
		p.r.Next()
		p.r.Next()
		name += "[]"
	}
	return name
}

// varDecl parses T a = e, b; and consumes the semicolon.
func (p *Parser) varDecl() *ast.VarDecl {
	decl := &ast.VarDecl{Pos: p.r.Current().Location, TypeName: p.typeName()}
	for {
		name, ok := p.r.ExpectKind(types.IDENT)
		if !ok {
			return decl
		}
		d := &ast.Declarator{Name: name}
		if assign := p.r.Current(); p.r.Accept("=") {
			value := p.Expression(Stop{Texts: []string{",", ";"}})
			if value != nil {
				target := &ast.Ident{Base: ast.Base{Pos: name.Location}, Tok: name}
				d.Init = &ast.Binary{
					Base: ast.Base{Pos: types.JoinSpan(name.Location, value.Info().Pos)},
					Op:   assign.Op,
					L:    target,
					R:    value,
				}
			}
		} else if decl.TypeName == "var" {
			p.sink.AddError(fmt.Sprintf("implicitly typed local '%s' needs an initializer", name.Text), errors.Syntax, name.Location)
		}
		decl.Vars = append(decl.Vars, d)
		decl.Pos = types.JoinSpan(decl.Pos, p.r.Current().Location)
		if !p.r.Accept(",") {
			break
		}
	}
	p.r.Expect(";")
	return decl
}

// condition parses ( expr ).
func (p *Parser) condition() ast.Node {
	if _, ok := p.r.Expect("("); !ok {
		return nil
	}
	cond := p.Expression(StopParen)
	p.r.Expect(")")
	return cond
}

func (p *Parser) ifStmt() *ast.If {
	stmt := &ast.If{Pos: p.r.Next().Location}
	stmt.Conds = append(stmt.Conds, p.condition())
	stmt.Bodies = append(stmt.Bodies, p.body())
	for p.r.Accept("else") {
		if p.r.Accept("if") {
			stmt.Conds = append(stmt.Conds, p.condition())
			stmt.Bodies = append(stmt.Bodies, p.body())
			continue
		}
		stmt.Else = p.body()
		break
	}
	return stmt
}

// body parses the statement controlled by if, while, do or for. An empty
// statement becomes an empty block.
func (p *Parser) body() ast.Stmt {
	at := p.r.Current().Location
	if p.r.EOF() {
		p.sink.AddError("missing statement body", errors.Syntax, at)
		return &ast.Block{Pos: at}
	}
	s := p.Statement()
	if s == nil {
		return &ast.Block{Pos: at}
	}
	return s
}

func (p *Parser) elseBody() ast.Stmt {
	if p.r.Accept("else") {
		return p.body()
	}
	return nil
}

func (p *Parser) whileStmt() *ast.While {
	stmt := &ast.While{Pos: p.r.Next().Location}
	stmt.Cond = p.condition()
	stmt.Body = p.body()
	stmt.Else = p.elseBody()
	return stmt
}

func (p *Parser) doStmt() *ast.DoWhile {
	stmt := &ast.DoWhile{Pos: p.r.Next().Location}
	stmt.Body = p.body()
	if _, ok := p.r.Expect("while"); !ok {
		return stmt
	}
	stmt.Cond = p.condition()
	p.r.Expect(";")
	return stmt
}

func (p *Parser) forStmt() *ast.For {
	stmt := &ast.For{Pos: p.r.Next().Location}
	if _, ok := p.r.Expect("("); !ok {
		return stmt
	}

	switch {
	case p.r.Accept(";"):
	case p.r.IsKind(types.IDENT) && p.isDeclaration():
		stmt.Init = p.varDecl()
	default:
		if x := p.Expression(StopSemi); x != nil {
			stmt.Init = &ast.ExprStmt{X: x}
		}
		p.r.Expect(";")
	}

	if !p.r.Is(";") {
		stmt.Cond = p.Expression(StopSemi)
	}
	p.r.Expect(";")

	if !p.r.Is(")") {
		stmt.Iter = p.Expression(StopParen)
	}
	p.r.Expect(")")

	stmt.Body = p.body()
	stmt.Else = p.elseBody()
	return stmt
}

func (p *Parser) returnStmt() *ast.Return {
	stmt := &ast.Return{Pos: p.r.Next().Location}
	if !p.r.Is(";") {
		stmt.X = p.Expression(StopSemi)
	}
	p.r.Expect(";")
	return stmt
}
