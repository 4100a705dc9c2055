package parser

import (
	"github.com/railwaylang/railway/internal/ast"
	"github.com/railwaylang/railway/internal/lexer"
)

func sb(pos lexer.Position, mono bool) ast.StmtBase {
	return ast.StmtBase{Position: pos, IsMono: mono}
}

var modOpTypes = map[lexer.TokenType]bool{
	lexer.PLUSEQ: true, lexer.MINUSEQ: true, lexer.STAREQ: true, lexer.SLASHEQ: true,
	lexer.DSTAREQ: true, lexer.PERCENTEQ: true, lexer.CARETEQ: true, lexer.AMPEQ: true, lexer.PIPEEQ: true,
}

// monoOnlyModOps are only legal as a statement operator when the target is
// mono, per spec §4.2.
var monoOnlyModOps = map[lexer.TokenType]bool{
	lexer.DSTAREQ: true, lexer.PERCENTEQ: true, lexer.CARETEQ: true, lexer.AMPEQ: true, lexer.PIPEEQ: true,
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.cur.current().Type != t {
		p.errorf(p.cur.current().Pos, "expected %v, got %q", t, p.cur.current().Literal)
		return false
	}
	p.cur.advance()
	return true
}

// parseStatementsUntil parses statements up to (but not consuming) the
// first token matching one of stop, skipping blank lines in between.
func (p *Parser) parseStatementsUntil(stop ...lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	p.cur.skipNewlines()
	for !p.atAny(stop...) && p.cur.current().Type != lexer.EOF {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.cur.skipNewlines()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.current().Type {
	case lexer.LET:
		return p.parseAssignment(false)
	case lexer.UNLET:
		return p.parseAssignment(true)
	case lexer.SWAP:
		return p.parseSwap()
	case lexer.PUSH:
		return p.parsePush()
	case lexer.POP:
		return p.parsePop()
	case lexer.IF:
		return p.parseIf()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.FOR:
		return p.parseFor()
	case lexer.DO:
		return p.parseDoYieldUndo()
	case lexer.TRY:
		return p.parseTryCatch()
	case lexer.CATCH:
		return p.parseCatch()
	case lexer.CALL:
		return p.parseCall(false)
	case lexer.UNCALL:
		return p.parseCall(true)
	case lexer.PARALLEL:
		return p.parseParallelCall()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.PROMOTE:
		return p.parsePromote()
	case lexer.BARRIER:
		return p.parseBarrier()
	case lexer.MUTEX:
		return p.parseMutex()
	case lexer.IDENT:
		return p.parseModification()
	default:
		tok := p.cur.current()
		p.errorf(tok.Pos, "unexpected token %q at start of statement", tok.Literal)
		for !p.atAny(lexer.NEWLINE, lexer.EOF) {
			p.cur.advance()
		}
		return nil
	}
}

// parseModification parses `name[idx...] OP= expr` and enforces the
// self-modification check from spec §4.4: the LHS identifier must not
// appear anywhere in the RHS token sequence, including nested inside
// index expressions. This is a syntactic, conservative check done purely
// over the raw token slice — it does not need to understand precedence.
func (p *Parser) parseModification() ast.Statement {
	lhs := p.parseLookupNode()
	if lhs == nil {
		return nil
	}

	opTok := p.cur.current()
	if !modOpTypes[opTok.Type] {
		p.errorf(opTok.Pos, "expected a modification operator, got %q", opTok.Literal)
		return nil
	}
	if monoOnlyModOps[opTok.Type] && !lhs.Mono() {
		p.errorf(opTok.Pos, "%s is only usable on a mono target", opTok.Literal)
	}
	p.cur.advance()

	rhsStart := p.cur.mark()
	value := p.parseExpression(lowest)
	if value == nil {
		return nil
	}
	rhsEnd := p.cur.mark()

	for _, t := range p.tokensBetween(rhsStart, rhsEnd) {
		if t.Type == lexer.IDENT && t.Literal == lhs.Name {
			p.errorf(t.Pos, "modification-error: %q appears on both sides of %s", lhs.Name, opTok.Literal)
			break
		}
	}

	return &ast.Modification{
		StmtBase: sb(lhs.Pos(), lhs.Mono() || value.Mono()),
		Target:   lhs,
		Op:       opTok.Type.String(),
		Value:    value,
	}
}

// parseLookupNode parses an identifier with zero or more index
// expressions, returning the concrete node (rather than the Expression
// interface) for statements that need the name itself, not just its value.
func (p *Parser) parseLookupNode() *ast.Lookup {
	tok := p.cur.current()
	if tok.Type != lexer.IDENT {
		p.errorf(tok.Pos, "expected identifier, got %q", tok.Literal)
		return nil
	}
	p.cur.advance()
	lk := &ast.Lookup{ExprBase: eb(tok.Pos, isMonoName(tok.Literal)), Name: tok.Literal}
	for p.cur.current().Type == lexer.LBRACKET {
		p.cur.advance()
		idx := p.parseExpression(lowest)
		if idx != nil && idx.Mono() {
			lk.IsMono = true
		}
		lk.Indices = append(lk.Indices, idx)
		p.expect(lexer.RBRACKET)
	}
	return lk
}

func (p *Parser) parseAssignment(isUnlet bool) ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // let/unlet
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected identifier after let/unlet")
		return nil
	}
	p.cur.advance()
	if !p.expect(lexer.EQ) {
		return nil
	}
	val := p.parseExpression(lowest)
	mono := isMonoName(nameTok.Literal)
	if isUnlet {
		return &ast.Unassignment{StmtBase: sb(pos, mono), Name: nameTok.Literal, Value: val}
	}
	return &ast.Assignment{StmtBase: sb(pos, mono), Name: nameTok.Literal, Value: val}
}

func (p *Parser) parseSwap() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'swap'
	left := p.parseLookupNode()
	p.expect(lexer.COMMA)
	right := p.parseLookupNode()
	mono := false
	if left != nil {
		mono = left.Mono()
	}
	if right != nil {
		mono = mono || right.Mono()
	}
	return &ast.Swap{StmtBase: sb(pos, mono), Left: left, Right: right}
}

func (p *Parser) parsePush() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'push'
	src := p.parseLookupNode()
	p.expect(lexer.ARROW)
	dst := p.parseLookupNode()
	return &ast.Push{StmtBase: sb(pos, false), Source: src, Dest: dst}
}

func (p *Parser) parsePop() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'pop'
	src := p.parseLookupNode()
	p.expect(lexer.ARROW)
	dst := p.parseLookupNode()
	return &ast.Pop{StmtBase: sb(pos, false), Source: src, Dest: dst}
}

// parseIf parses `if (fwd) then-stmts [else else-stmts] fi (bwd)`. An
// empty `fi ()` means "same as the forward condition" (spec §4.4); a
// non-empty one must be checked for agreement with the forward condition
// at runtime (spec §4.6), not here.
func (p *Parser) parseIf() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'if'
	p.expect(lexer.LPAREN)
	fwd := p.parseExpression(lowest)
	p.expect(lexer.RPAREN)
	p.cur.skipNewlines()

	thenStmts := p.parseStatementsUntil(lexer.ELSE, lexer.FI)
	var elseStmts []ast.Statement
	if p.cur.current().Type == lexer.ELSE {
		p.cur.advance()
		p.cur.skipNewlines()
		elseStmts = p.parseStatementsUntil(lexer.FI)
	}
	p.expect(lexer.FI)
	p.expect(lexer.LPAREN)
	var bwd ast.Expression
	if p.cur.current().Type != lexer.RPAREN {
		bwd = p.parseExpression(lowest)
	}
	p.expect(lexer.RPAREN)

	mono := fwd != nil && fwd.Mono()
	return &ast.If{StmtBase: sb(pos, mono), Forward: fwd, Backward: bwd, Then: thenStmts, Else: elseStmts}
}

// parseLoop parses `loop (fwd) body pool (bwd)`. pool's condition is
// compulsory unless the forward condition is mono (spec §4.4).
func (p *Parser) parseLoop() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'loop'
	p.expect(lexer.LPAREN)
	fwd := p.parseExpression(lowest)
	p.expect(lexer.RPAREN)
	p.cur.skipNewlines()

	body := p.parseStatementsUntil(lexer.POOL)
	p.expect(lexer.POOL)
	p.expect(lexer.LPAREN)
	var bwd ast.Expression
	if p.cur.current().Type != lexer.RPAREN {
		bwd = p.parseExpression(lowest)
	} else if fwd == nil || !fwd.Mono() {
		p.errorf(p.cur.current().Pos, "loop requires a backward condition unless the forward condition is mono")
	}
	p.expect(lexer.RPAREN)

	mono := fwd != nil && fwd.Mono()
	return &ast.Loop{StmtBase: sb(pos, mono), Forward: fwd, Backward: bwd, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'for'
	varTok := p.cur.current()
	if varTok.Type != lexer.IDENT {
		p.errorf(varTok.Pos, "expected loop variable name after 'for'")
		return nil
	}
	p.cur.advance()
	p.expect(lexer.IN)
	iter := p.parseExpression(lowest)
	p.cur.skipNewlines()
	body := p.parseStatementsUntil(lexer.ROF)
	p.expect(lexer.ROF)
	mono := iter != nil && iter.Mono()
	return &ast.ForLoop{StmtBase: sb(pos, mono), Var: varTok.Literal, Iter: iter, Body: body}
}

func (p *Parser) parseDoYieldUndo() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'do'
	p.cur.skipNewlines()
	doStmts := p.parseStatementsUntil(lexer.YIELD)
	p.expect(lexer.YIELD)
	p.cur.skipNewlines()
	yieldStmts := p.parseStatementsUntil(lexer.UNDO)
	p.expect(lexer.UNDO)
	return &ast.DoYieldUndo{StmtBase: sb(pos, false), Do: doStmts, Yield: yieldStmts}
}

func (p *Parser) parseTryCatch() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'try'
	p.expect(lexer.LPAREN)
	varTok := p.cur.current()
	if varTok.Type != lexer.IDENT {
		p.errorf(varTok.Pos, "expected iterator variable name after 'try ('")
		return nil
	}
	p.cur.advance()
	p.expect(lexer.IN)
	iter := p.parseExpression(lowest)
	p.expect(lexer.RPAREN)
	p.cur.skipNewlines()
	body := p.parseStatementsUntil(lexer.YRT)
	p.expect(lexer.YRT)
	return &ast.TryCatch{StmtBase: sb(pos, false), IterVar: varTok.Literal, Iter: iter, Body: body}
}

func (p *Parser) parseCatch() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'catch'
	p.expect(lexer.LPAREN)
	cond := p.parseExpression(lowest)
	p.expect(lexer.RPAREN)
	mono := cond != nil && cond.Mono()
	return &ast.Catch{StmtBase: sb(pos, mono), Cond: cond}
}

func (p *Parser) parseCall(isUncall bool) ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // call/uncall
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected function name after call/uncall")
		return nil
	}
	p.cur.advance()
	p.expect(lexer.LPAREN)
	borrowed := p.parseNameListUntil(lexer.COLON, lexer.RPAREN)
	var stolen []string
	if p.cur.current().Type == lexer.COLON {
		p.cur.advance()
		stolen = p.parseNameListUntil(lexer.RPAREN)
	}
	p.expect(lexer.RPAREN)
	var returns []string
	if p.cur.current().Type == lexer.ARROW {
		p.cur.advance()
		returns = p.parseNameListUntil(lexer.NEWLINE, lexer.EOF)
	}
	return &ast.Call{
		StmtBase: sb(pos, isMonoName(nameTok.Literal)),
		FuncName: nameTok.Literal, Borrowed: borrowed, Stolen: stolen, Returns: returns, Uncall: isUncall,
	}
}

func (p *Parser) parseParallelCall() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'parallel'
	isUncall := false
	switch p.cur.current().Type {
	case lexer.CALL:
		p.cur.advance()
	case lexer.UNCALL:
		isUncall = true
		p.cur.advance()
	default:
		p.errorf(p.cur.current().Pos, "expected 'call' or 'uncall' after 'parallel'")
		return nil
	}
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected function name")
		return nil
	}
	p.cur.advance()
	p.expect(lexer.LPAREN)
	borrowed := p.parseNameListUntil(lexer.COLON, lexer.RPAREN)
	var stolen []string
	if p.cur.current().Type == lexer.COLON {
		p.cur.advance()
		stolen = p.parseNameListUntil(lexer.RPAREN)
	}
	p.expect(lexer.RPAREN)
	var lanes ast.Expression
	if p.cur.current().Type == lexer.LANES {
		p.cur.advance()
		lanes = p.parseExpression(lowest)
	}
	var returns []string
	if p.cur.current().Type == lexer.ARROW {
		p.cur.advance()
		returns = p.parseNameListUntil(lexer.NEWLINE, lexer.EOF)
	}
	return &ast.ParallelCall{
		StmtBase: sb(pos, false),
		FuncName: nameTok.Literal, Borrowed: borrowed, Stolen: stolen, Returns: returns, Lanes: lanes, Uncall: isUncall,
	}
}

func (p *Parser) parsePrint() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'print'
	var args []ast.Expression
	mono := false
	first := p.parseExpression(lowest)
	if first != nil {
		args = append(args, first)
		mono = mono || first.Mono()
	}
	for p.cur.current().Type == lexer.COMMA {
		p.cur.advance()
		e := p.parseExpression(lowest)
		if e != nil {
			args = append(args, e)
			mono = mono || e.Mono()
		}
	}
	return &ast.Print{StmtBase: sb(pos, mono), Args: args}
}

func (p *Parser) parsePromote() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'promote'
	monoTok := p.cur.current()
	if monoTok.Type != lexer.IDENT || !isMonoName(monoTok.Literal) {
		p.errorf(monoTok.Pos, "expected a mono identifier after 'promote'")
		return nil
	}
	p.cur.advance()
	p.expect(lexer.ARROW)
	plainTok := p.cur.current()
	if plainTok.Type != lexer.IDENT {
		p.errorf(plainTok.Pos, "expected destination identifier after '=>'")
		return nil
	}
	p.cur.advance()
	return &ast.Promote{StmtBase: sb(pos, true), MonoName: monoTok.Literal, PlainName: plainTok.Literal}
}

func (p *Parser) parseBarrier() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'barrier'
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected barrier name")
		return nil
	}
	p.cur.advance()
	return &ast.Barrier{StmtBase: sb(pos, false), Name: nameTok.Literal}
}

func (p *Parser) parseMutex() ast.Statement {
	pos := p.cur.current().Pos
	p.cur.advance() // 'mutex'
	nameTok := p.cur.current()
	if nameTok.Type != lexer.IDENT {
		p.errorf(nameTok.Pos, "expected mutex name")
		return nil
	}
	p.cur.advance()
	p.cur.skipNewlines()
	body := p.parseStatementsUntil(lexer.XETUM)
	p.expect(lexer.XETUM)
	return &ast.Mutex{StmtBase: sb(pos, false), Name: nameTok.Literal, Body: body}
}
