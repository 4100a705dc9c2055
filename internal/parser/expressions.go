package parser

import (
	"github.com/railwaylang/railway/internal/ast"
	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/types"
)

// Precedence levels, 1 (tightest) to 5 (loosest), per spec §4.2. lowest is
// the starting precedence passed into parseExpression at statement level;
// it is looser than every real operator so any operator can start folding.
const (
	lowest      = 6
	precPow     = 1 // **
	precMulDiv  = 2 // * / // %
	precAddSub  = 3 // + -
	precCompare = 4 // < <= > >= = !=
	precBool    = 5 // ^ | &
)

var binPrecedence = map[lexer.TokenType]int{
	lexer.DSTAR:   precPow,
	lexer.STAR:    precMulDiv,
	lexer.SLASH:   precMulDiv,
	lexer.DSLASH:  precMulDiv,
	lexer.PERCENT: precMulDiv,
	lexer.PLUS:    precAddSub,
	lexer.MINUS:   precAddSub,
	lexer.LT:      precCompare,
	lexer.LE:      precCompare,
	lexer.GT:      precCompare,
	lexer.GE:      precCompare,
	lexer.EQ:      precCompare,
	lexer.NE:      precCompare,
	lexer.CARET:   precBool,
	lexer.PIPE:    precBool,
	lexer.AMP:     precBool,
}

var binOpLiteral = map[lexer.TokenType]string{
	lexer.DSTAR: "**", lexer.STAR: "*", lexer.SLASH: "/", lexer.DSLASH: "//", lexer.PERCENT: "%",
	lexer.PLUS: "+", lexer.MINUS: "-",
	lexer.LT: "<", lexer.LE: "<=", lexer.GT: ">", lexer.GE: ">=", lexer.EQ: "=", lexer.NE: "!=",
	lexer.CARET: "^", lexer.PIPE: "|", lexer.AMP: "&",
}

func eb(pos lexer.Position, mono bool) ast.ExprBase {
	return ast.ExprBase{Position: pos, IsMono: mono}
}

// parseExpression implements the precedence-climbing fold described in
// spec §4.4: parse one operand (with any leading unary prefixes and
// parenthesised sub-expressions), then repeatedly fold in the next
// operator if it binds at least as tightly as maxPrec (its level number is
// no greater than maxPrec), recursing with that operator's own level minus
// one for its right-hand operand. This
// produces the same left-associative tree shape as a textbook
// precedence-climbing parser; a shunting-yard implementation would be an
// equally valid choice here (spec §4.4 allows either) but precedence
// climbing composes more directly with the recursive-descent statement
// parser used everywhere else in this package.
func (p *Parser) parseExpression(maxPrec int) ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		opTok := p.cur.current()
		prec, ok := binPrecedence[opTok.Type]
		if !ok || prec > maxPrec {
			return left
		}
		p.cur.advance()
		// Left-associative: the right operand is parsed at prec-1 so only
		// strictly tighter operators go into the right subtree; a following
		// operator of the SAME precedence is folded into a new left-growing
		// node on the next loop iteration.
		right := p.parseExpression(prec - 1)
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			ExprBase: eb(opTok.Pos, left.Mono() || right.Mono()),
			Op:       binOpLiteral[opTok.Type],
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur.current()
	switch tok.Type {
	case lexer.MINUS, lexer.BANG:
		p.cur.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		op := "-"
		if tok.Type == lexer.BANG {
			op = "!"
		}
		return &ast.UnaryExpr{ExprBase: eb(tok.Pos, operand.Mono()), Op: op, Operand: operand}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur.current()
	switch tok.Type {
	case lexer.NUMBER:
		p.cur.advance()
		val, err := types.ParseRational(tok.Literal)
		if err != nil {
			p.errorf(tok.Pos, "%s", err)
			return nil
		}
		return &ast.NumberLiteral{ExprBase: eb(tok.Pos, false), Value: val}
	case lexer.TID:
		p.cur.advance()
		return &ast.TIDExpr{ExprBase: eb(tok.Pos, false), Count: false}
	case lexer.HASHTID:
		p.cur.advance()
		return &ast.TIDExpr{ExprBase: eb(tok.Pos, false), Count: true}
	case lexer.LPAREN:
		p.cur.advance()
		inner := p.parseExpression(lowest)
		if p.cur.current().Type != lexer.RPAREN {
			p.errorf(p.cur.current().Pos, "expected ')' to close expression")
			return inner
		}
		p.cur.advance()
		return inner
	case lexer.LBRACKET:
		return p.parseArrayExprOrRange()
	case lexer.TENSOR:
		return p.parseTensor()
	case lexer.IDENT:
		return p.parseLookup()
	default:
		p.errorf(tok.Pos, "unexpected token %q in expression", tok.Literal)
		p.cur.advance()
		return nil
	}
}

func (p *Parser) parseLookup() ast.Expression {
	return p.parseLookupNode()
}

// parseArrayExprOrRange disambiguates `[a, b, c]` array literals from
// `[from to to [by step]]` ranges by looking for the `to` keyword.
func (p *Parser) parseArrayExprOrRange() ast.Expression {
	tok := p.cur.current()
	p.cur.advance() // '['
	if p.cur.current().Type == lexer.RBRACKET {
		p.cur.advance()
		return &ast.ArrayLiteral{ExprBase: eb(tok.Pos, false)}
	}

	first := p.parseExpression(lowest)
	if p.cur.current().Type == lexer.TO {
		p.cur.advance()
		to := p.parseExpression(lowest)
		rng := &ast.ArrayRange{ExprBase: eb(tok.Pos, first.Mono() || to.Mono()), From: first, To: to}
		if p.cur.current().Type == lexer.BY {
			p.cur.advance()
			rng.Step = p.parseExpression(lowest)
		}
		p.expectRBracket()
		return rng
	}

	lit := &ast.ArrayLiteral{ExprBase: eb(tok.Pos, first.Mono()), Elements: []ast.Expression{first}}
	for p.cur.current().Type == lexer.COMMA {
		p.cur.advance()
		el := p.parseExpression(lowest)
		if el != nil && el.Mono() {
			lit.IsMono = true
		}
		lit.Elements = append(lit.Elements, el)
	}
	p.expectRBracket()
	return lit
}

func (p *Parser) parseTensor() ast.Expression {
	tok := p.cur.current()
	p.cur.advance() // 'tensor'
	if p.cur.current().Type != lexer.LBRACKET {
		p.errorf(p.cur.current().Pos, "expected '[' after 'tensor'")
		return nil
	}
	p.cur.advance()
	t := &ast.ArrayTensor{ExprBase: eb(tok.Pos, false)}
	for {
		d := p.parseExpression(lowest)
		if d != nil && d.Mono() {
			t.IsMono = true
		}
		t.Dims = append(t.Dims, d)
		if p.cur.current().Type == lexer.COMMA {
			p.cur.advance()
			continue
		}
		break
	}
	p.expectRBracket()
	t.Fill = p.parseExpression(lowest)
	if t.Fill != nil && t.Fill.Mono() {
		t.IsMono = true
	}
	return t
}

func (p *Parser) expectRBracket() {
	if p.cur.current().Type != lexer.RBRACKET {
		p.errorf(p.cur.current().Pos, "expected ']'")
		return
	}
	p.cur.advance()
}

// tokensBetween returns the raw tokens spanning [from, to) of the current
// token stream, used by the self-modification check to scan a right-hand
// side token sequence without re-parsing it.
func (p *Parser) tokensBetween(from, to int) []lexer.Token {
	if to > len(p.cur.toks) {
		to = len(p.cur.toks)
	}
	return p.cur.toks[from:to]
}
