// Package parser builds Railway's AST from a token stream. It enforces the
// syntactic reversibility rules spec.md calls out explicitly: the
// self-modification check (parseModification), and the matching
// forward/backward condition pairs required on if/loop.
package parser

import (
	"fmt"

	"github.com/railwaylang/railway/internal/ast"
	"github.com/railwaylang/railway/internal/lexer"
)

// Parser consumes a pre-tokenized Railway source and produces an ast.File.
type Parser struct {
	cur    *tokenCursor
	errs   []string
	source string
}

// New tokenizes source and returns a Parser ready to parse it.
func New(source string) *Parser {
	l := lexer.New(source)
	return &Parser{cur: newCursor(l.Tokenize()), source: source}
}

// Errors returns the parse errors collected so far.
func (p *Parser) Errors() []string { return p.errs }

func (p *Parser) errorf(pos lexer.Position, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errs = append(p.errs, fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, msg))
}

// ParseFile parses the whole token stream into a function table plus any
// top-level global declarations.
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{}
	p.cur.skipNewlines()
	for p.cur.current().Type != lexer.EOF {
		switch p.cur.current().Type {
		case lexer.GLOBAL:
			if g := p.parseGlobal(); g != nil {
				file.Globals = append(file.Globals, g)
			}
		case lexer.INCLUDE:
			p.parseInclude()
		case lexer.FUNC:
			if fn := p.parseFunction(); fn != nil {
				file.Functions = append(file.Functions, fn)
			}
		default:
			p.errorf(p.cur.current().Pos, "expected 'func', 'global' or 'include', got %q", p.cur.current().Literal)
			p.cur.advance()
		}
		p.cur.skipNewlines()
	}
	return file
}

// parseInclude accepts `include name` as a syntactic, unexercised stub:
// spec.md marks module-import machinery out of scope.
func (p *Parser) parseInclude() {
	p.cur.advance() // 'include'
	if p.cur.current().Type == lexer.IDENT {
		p.cur.advance()
	}
}

func (p *Parser) parseGlobal() *ast.GlobalDecl {
	pos := p.cur.current().Pos
	p.cur.advance() // 'global'
	name := p.cur.current()
	if name.Type != lexer.IDENT {
		p.errorf(name.Pos, "expected identifier after 'global', got %q", name.Literal)
		return nil
	}
	p.cur.advance()
	if p.cur.current().Type != lexer.EQ {
		p.errorf(p.cur.current().Pos, "expected '=' in global declaration")
		return nil
	}
	p.cur.advance()
	val := p.parseExpression(lowest)
	return &ast.GlobalDecl{Position: pos, Name: name.Literal, Value: val}
}

// parseFunction reads `func name(borrowed : stolen)`, statements, then
// `return`/`undoreturn` and the return-parameter list.
func (p *Parser) parseFunction() *ast.FunctionDecl {
	pos := p.cur.current().Pos
	p.cur.advance() // 'func'
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected function name, got %q", nameTok.Literal)
		return nil
	}
	p.cur.advance()

	fn := &ast.FunctionDecl{Position: pos, Name: nameTok.Literal, Mono: isMonoName(nameTok.Literal)}

	if p.cur.current().Type != lexer.LPAREN {
		p.errorf(p.cur.current().Pos, "expected '(' after function name")
		return nil
	}
	p.cur.advance()

	fn.Borrowed = p.parseNameListUntil(lexer.COLON, lexer.RPAREN)
	if p.cur.current().Type == lexer.COLON {
		p.cur.advance() // ':'
		fn.Stolen = p.parseNameListUntil(lexer.RPAREN)
	}
	if p.cur.current().Type != lexer.RPAREN {
		p.errorf(p.cur.current().Pos, "expected ')' to close parameter list")
		return nil
	}
	p.cur.advance()
	p.cur.skipNewlines()

	fn.Body = p.parseStatementsUntil(lexer.RETURN, lexer.UNDORETURN)

	switch p.cur.current().Type {
	case lexer.RETURN:
		p.cur.advance()
	case lexer.UNDORETURN:
		fn.Undoreturn = true
		p.cur.advance()
	default:
		p.errorf(p.cur.current().Pos, "expected 'return' or 'undoreturn'")
		return fn
	}
	fn.Returns = p.parseNameListUntil(lexer.NEWLINE, lexer.EOF)
	return fn
}

func (p *Parser) parseNameListUntil(stop ...lexer.TokenType) []string {
	var names []string
	for {
		if p.atAny(stop...) {
			return names
		}
		tok := p.cur.current()
		if tok.Type != lexer.IDENT {
			return names
		}
		names = append(names, tok.Literal)
		p.cur.advance()
		if p.cur.current().Type == lexer.COMMA {
			p.cur.advance()
			continue
		}
		return names
	}
}

func (p *Parser) atAny(types ...lexer.TokenType) bool {
	cur := p.cur.current().Type
	for _, t := range types {
		if cur == t {
			return true
		}
	}
	return false
}

func isMonoName(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
