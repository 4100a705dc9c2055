package parser

import "github.com/railwaylang/railway/internal/lexer"

// tokenCursor is an index into a pre-scanned token slice. Unlike the
// teacher's TokenCursor it does not need to pull lazily from the lexer
// (Railway programs are small enough to tokenize up front), but it keeps
// the same Mark/ResetTo shape. mark is used to record token offsets (the
// self-modification check scans the raw tokens of a right-hand side);
// no parser path currently backtracks with resetTo.
type tokenCursor struct {
	toks []lexer.Token
	pos  int
}

func newCursor(toks []lexer.Token) *tokenCursor {
	return &tokenCursor{toks: toks}
}

func (c *tokenCursor) current() lexer.Token {
	if c.pos >= len(c.toks) {
		return c.toks[len(c.toks)-1] // EOF
	}
	return c.toks[c.pos]
}

func (c *tokenCursor) peek(n int) lexer.Token {
	idx := c.pos + n
	if idx >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[idx]
}

func (c *tokenCursor) advance() lexer.Token {
	tok := c.current()
	if c.pos < len(c.toks)-1 {
		c.pos++
	}
	return tok
}

// mark/resetTo implement cursor backtracking, mirroring the teacher's
// TokenCursor.Mark/ResetTo pair.
func (c *tokenCursor) mark() int        { return c.pos }
func (c *tokenCursor) resetTo(mark int) { c.pos = mark }

// skipNewlines advances past any run of logical line terminators; blank
// lines carry no semantic content.
func (c *tokenCursor) skipNewlines() {
	for c.current().Type == lexer.NEWLINE {
		c.advance()
	}
}
