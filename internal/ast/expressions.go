package ast

import (
	"strings"

	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/types"
)

// ExprBase carries position and mono-taint bookkeeping shared by every
// expression variant.
type ExprBase struct {
	Position lexer.Position
	IsMono   bool
}

func (e ExprBase) Pos() lexer.Position { return e.Position }
func (e ExprBase) Mono() bool          { return e.IsMono }
func (e ExprBase) exprNode()           {}

// NumberLiteral is a rational literal, e.g. 6 or 4/7.
type NumberLiteral struct {
	ExprBase
	Value types.Rational
}

func (n *NumberLiteral) String() string { return n.Value.String() }

// Lookup is a variable reference, optionally indexed: x, x[0], x[i][j].
type Lookup struct {
	ExprBase
	Name    string
	Indices []Expression
}

func (l *Lookup) String() string {
	var sb strings.Builder
	sb.WriteString(l.Name)
	for _, idx := range l.Indices {
		sb.WriteByte('[')
		sb.WriteString(idx.String())
		sb.WriteByte(']')
	}
	return sb.String()
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	ExprBase
	Op    string
	Left  Expression
	Right Expression
}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// UnaryExpr is a prefix unary operator application.
type UnaryExpr struct {
	ExprBase
	Op      string
	Operand Expression
}

func (u *UnaryExpr) String() string { return u.Op + u.Operand.String() }

// ArrayLiteral is a bracketed, comma-separated list of expressions.
type ArrayLiteral struct {
	ExprBase
	Elements []Expression
}

func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ArrayRange is a `[from to to by step]` range expression. The engine
// materialises every element into a concrete array when the range is
// evaluated (for loops included); elements are not produced one at a time.
type ArrayRange struct {
	ExprBase
	From Expression
	To   Expression
	Step Expression // nil means step 1
}

func (r *ArrayRange) String() string {
	s := "[" + r.From.String() + " to " + r.To.String()
	if r.Step != nil {
		s += " by " + r.Step.String()
	}
	return s + "]"
}

// ArrayTensor is a `tensor [dims] expr` construction: a rectangular array
// of the given dimensions, each cell initialised by evaluating expr.
type ArrayTensor struct {
	ExprBase
	Dims []Expression
	Fill Expression
}

func (t *ArrayTensor) String() string {
	parts := make([]string, len(t.Dims))
	for i, d := range t.Dims {
		parts[i] = d.String()
	}
	return "tensor [" + strings.Join(parts, ", ") + "] " + t.Fill.String()
}

// TIDExpr is the pseudo-identifier TID (lane index) or #TID (lane count),
// valid only inside a parallel-call body.
type TIDExpr struct {
	ExprBase
	Count bool // true for #TID, false for TID
}

func (t *TIDExpr) String() string {
	if t.Count {
		return "#TID"
	}
	return "TID"
}
