package ast

import "github.com/railwaylang/railway/internal/lexer"

// StmtBase carries position and mono-taint bookkeeping shared by every
// statement variant.
type StmtBase struct {
	Position lexer.Position
	IsMono   bool
}

func (s StmtBase) Pos() lexer.Position { return s.Position }
func (s StmtBase) Mono() bool          { return s.IsMono }
func (s StmtBase) stmtNode()           {}

// Modification is `name[idx...] OP= expr`.
type Modification struct {
	StmtBase
	Target *Lookup
	Op     string // one of the ModificationOps keys, e.g. "+="
	Value  Expression
}

func (m *Modification) String() string { return m.Target.String() + " " + m.Op + " ..." }

// Assignment is `let name = expr`.
type Assignment struct {
	StmtBase
	Name  string
	Value Expression
}

func (a *Assignment) String() string { return "let " + a.Name + " = " + a.Value.String() }

// Unassignment is `unlet name = expr`.
type Unassignment struct {
	StmtBase
	Name  string
	Value Expression
}

func (u *Unassignment) String() string { return "unlet " + u.Name + " = " + u.Value.String() }

// Swap is `swap name1, name2` (or indexed forms).
type Swap struct {
	StmtBase
	Left  *Lookup
	Right *Lookup
}

func (s *Swap) String() string { return "swap " + s.Left.String() + ", " + s.Right.String() }

// Push is `push name => array`.
type Push struct {
	StmtBase
	Source *Lookup
	Dest   *Lookup
}

func (p *Push) String() string { return "push " + p.Source.String() + " => " + p.Dest.String() }

// Pop is `pop array => name`.
type Pop struct {
	StmtBase
	Source *Lookup
	Dest   *Lookup
}

func (p *Pop) String() string { return "pop " + p.Source.String() + " => " + p.Dest.String() }

// If carries both the forward condition and the backward condition used
// when the construct is reversed, per spec 4.6.
type If struct {
	StmtBase
	Forward    Expression
	Backward   Expression // nil means "same as Forward" (empty fi())
	Then       []Statement
	Else       []Statement
}

func (i *If) String() string { return "if (" + i.Forward.String() + ") ... fi" }

// Loop carries the forward entry/exit condition and the backward (pool)
// condition.
type Loop struct {
	StmtBase
	Forward  Expression
	Backward Expression // nil only when Forward is mono
	Body     []Statement
}

func (l *Loop) String() string { return "loop (" + l.Forward.String() + ") ... pool" }

// ForLoop iterates an array-valued expression (an array or a range),
// copying each element into Var.
type ForLoop struct {
	StmtBase
	Var  string
	Iter Expression
	Body []Statement
}

func (f *ForLoop) String() string { return "for " + f.Var + " in " + f.Iter.String() + " ... rof" }

// DoYieldUndo is the `do ... yield ... undo` construct: self-inverse,
// leaving no residue from the do-block in the enclosing scope.
type DoYieldUndo struct {
	StmtBase
	Do    []Statement
	Yield []Statement
}

func (d *DoYieldUndo) String() string { return "do ... yield ... undo" }

// TryCatch iterates IterVar over Iter, running Body until a `catch` with a
// truthy condition is NOT hit (a "pass"); IterVar remains bound afterwards.
type TryCatch struct {
	StmtBase
	IterVar string
	Iter    Expression
	Body    []Statement
}

func (t *TryCatch) String() string { return "try (" + t.IterVar + " in " + t.Iter.String() + ") ... yrt" }

// Catch is only legal directly inside a TryCatch body; it is handled
// specially by the engine rather than being a general statement.
type Catch struct {
	StmtBase
	Cond Expression
}

func (c *Catch) String() string { return "catch (" + c.Cond.String() + ")" }

// Call is `call f(borrowed : stolen) => returns` (uncall shares this node,
// flagged by Uncall).
type Call struct {
	StmtBase
	FuncName string
	Borrowed []string
	Stolen   []string
	Returns  []string
	Uncall   bool
}

func (c *Call) String() string {
	verb := "call"
	if c.Uncall {
		verb = "uncall"
	}
	return verb + " " + c.FuncName
}

// Print writes the textual form of each argument, space separated, newline
// terminated. Has no effect when run backwards.
type Print struct {
	StmtBase
	Args []Expression
}

func (p *Print) String() string { return "print ..." }

// Promote moves a mono binding to a non-mono binding of the same value
// (forwards); backwards it demotes, destroying the non-mono binding and
// binding nothing in its place.
type Promote struct {
	StmtBase
	MonoName    string
	PlainName   string
}

func (p *Promote) String() string { return "promote " + p.MonoName + " => " + p.PlainName }

// ParallelCall spawns N lanes, one per slice-index of each stolen argument
// array, sharing borrowed cells, re-collecting per-lane returns into arrays.
type ParallelCall struct {
	StmtBase
	FuncName string
	Borrowed []string
	Stolen   []string
	Returns  []string
	Lanes    Expression // number of lanes, or nil to infer from stolen arrays' length
	Uncall   bool
}

func (p *ParallelCall) String() string { return "parallel call " + p.FuncName }

// Barrier is a named synchronisation point inside a parallel-call body.
type Barrier struct {
	StmtBase
	Name string
}

func (b *Barrier) String() string { return "barrier " + b.Name }

// Mutex is a named critical section inside a parallel-call body; lanes
// enter in ascending TID order forwards, descending backwards.
type Mutex struct {
	StmtBase
	Name string
	Body []Statement
}

func (m *Mutex) String() string { return "mutex " + m.Name + " ... xetum" }
