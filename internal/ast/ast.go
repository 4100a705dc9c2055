// Package ast defines Railway's abstract syntax tree: tagged variants for
// expressions and statements, carrying enough information (forward and
// backward conditions, stolen/borrowed parameter lists, mono taint) for the
// execution engine to replay any statement in either time direction.
package ast

import "github.com/railwaylang/railway/internal/lexer"

// Node is the base interface every AST node implements.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Expression is any node producing a Value.
type Expression interface {
	Node
	// Mono reports whether this expression may only be evaluated in
	// forward execution (it depends on a mono identifier somewhere in it).
	Mono() bool
	exprNode()
}

// Statement is any node performing an action.
type Statement interface {
	Node
	// Mono reports whether this statement is skipped during backward
	// execution. Promote is always mono and is the one exception: it still
	// runs backwards.
	Mono() bool
	stmtNode()
}

// File is the parsed form of one source file: its function table and the
// global declarations seen at parse time.
type File struct {
	Functions []*FunctionDecl
	Globals   []*GlobalDecl
}

// GlobalDecl is a `global name = expr` top-level declaration.
type GlobalDecl struct {
	Position lexer.Position
	Name     string
	Value    Expression
}

func (g *GlobalDecl) Pos() lexer.Position { return g.Position }
func (g *GlobalDecl) String() string      { return "global " + g.Name }

// FunctionDecl is a parsed `func` header plus its body.
type FunctionDecl struct {
	Position   lexer.Position
	Name       string
	Borrowed   []string
	Stolen     []string
	Body       []Statement
	Returns    []string
	Undoreturn bool
	Mono       bool // name begins with '.'
}

func (f *FunctionDecl) Pos() lexer.Position { return f.Position }
func (f *FunctionDecl) String() string      { return "func " + f.Name }
