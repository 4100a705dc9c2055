// Package interp is Railway's execution engine: a recursive AST walker that
// runs every statement and expression forwards or backwards under a single
// `backwards` flag, per spec §4.6. Direction is never a second code path —
// every handler here takes backwards as a parameter and consults it.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/runtime"
	"github.com/railwaylang/railway/internal/types"
)

// Interpreter holds a parsed program's function table and global bindings.
type Interpreter struct {
	funcs    map[string]*ast.FunctionDecl
	globals  *runtime.Globals
	out      io.Writer
	trace    bool
	topScope *runtime.Scope
}

// New builds an Interpreter from a parsed file, populating the global table
// by evaluating each `global` declaration once, in source order, against
// the globals defined so far.
func New(file *ast.File, out io.Writer) (*Interpreter, error) {
	it := &Interpreter{funcs: make(map[string]*ast.FunctionDecl), globals: runtime.NewGlobals(), out: out}
	for _, fn := range file.Functions {
		if _, exists := it.funcs[fn.Name]; exists {
			return nil, raerr.New(raerr.KindExists, fn.Position, "function %q already defined", fn.Name)
		}
		it.funcs[fn.Name] = fn
	}
	seed := runtime.NewScope(it.globals)
	for _, g := range file.Globals {
		val, err := it.Eval(g.Value, seed, false, nil)
		if err != nil {
			return nil, err
		}
		if err := it.globals.Define(g.Name, runtime.NewCell(val)); err != nil {
			return nil, raerr.New(raerr.KindExists, g.Position, "%s", err)
		}
	}
	return it, nil
}

// SetTrace toggles per-statement tracing to standard error (--trace).
func (it *Interpreter) SetTrace(enabled bool) { it.trace = enabled }

// Run invokes `main` per spec §6. The true top level supplies main with
// nothing of its own: there is no enclosing scope to borrow from or steal
// input from, so the caller-side names are just main's own Borrowed/Stolen/
// Returns names, bound directly into a top scope that persists across
// calls on the same Interpreter. That persistence is what makes the
// round-trip property (P1) checkable: Run(false) leaves main's Returns
// bound in topScope, and Run(true) undoes the call by re-seeding the body
// from those same names and unwinding back down to Stolen.
func (it *Interpreter) Run(backwards bool) error {
	fn, ok := it.funcs["main"]
	if !ok {
		return raerr.New(raerr.KindExists, lexer.Position{}, "no function named 'main'")
	}
	if it.topScope == nil {
		it.topScope = runtime.NewScope(it.globals)
	}
	input, output := fn.Stolen, fn.Returns
	if backwards {
		input, output = fn.Returns, fn.Stolen
	}
	return it.invoke(fn, fn.Borrowed, input, output, backwards, it.topScope, nil)
}

// execCtx carries per-lane context (TID/#TID, barriers, mutexes) through a
// parallel-call body; it is nil everywhere outside one.
type execCtx struct {
	lane *laneInfo
}

// execBlock runs stmts in program order, or reverse order when backwards,
// skipping mono-tainted statements on the way back — except Promote, whose
// whole purpose is bridging mono and non-mono state in both directions
// (spec §4.6) and so is never skipped.
func (it *Interpreter) execBlock(stmts []ast.Statement, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	order := stmts
	if backwards {
		order = reversed(stmts)
	}
	for _, s := range order {
		if backwards && s.Mono() {
			if _, isPromote := s.(*ast.Promote); !isPromote {
				continue
			}
		}
		if it.trace {
			dir := "->"
			if backwards {
				dir = "<-"
			}
			fmt.Fprintf(os.Stderr, "%s %d:%d %T\n", dir, s.Pos().Line, s.Pos().Column, s)
		}
		if err := it.execStmt(s, scope, backwards, ec); err != nil {
			return err
		}
	}
	return nil
}

func reversed(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		out[len(stmts)-1-i] = s
	}
	return out
}

func (it *Interpreter) execStmt(s ast.Statement, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	switch n := s.(type) {
	case *ast.Modification:
		return it.execModification(n, scope, backwards, ec)
	case *ast.Assignment:
		return it.execAssignment(n, scope, backwards, ec)
	case *ast.Unassignment:
		return it.execUnassignment(n, scope, backwards, ec)
	case *ast.Swap:
		return it.execSwap(n, scope, backwards, ec)
	case *ast.Push:
		return it.execPush(n, scope, backwards, ec)
	case *ast.Pop:
		return it.execPop(n, scope, backwards, ec)
	case *ast.If:
		return it.execIf(n, scope, backwards, ec)
	case *ast.Loop:
		return it.execLoop(n, scope, backwards, ec)
	case *ast.ForLoop:
		return it.execForLoop(n, scope, backwards, ec)
	case *ast.DoYieldUndo:
		return it.execDoYieldUndo(n, scope, backwards, ec)
	case *ast.TryCatch:
		return it.execTryCatch(n, scope, backwards, ec)
	case *ast.Catch:
		return nil // only meaningful inside runTryBody, which intercepts it directly
	case *ast.Call:
		return it.execCall(n, scope, backwards, ec)
	case *ast.ParallelCall:
		return it.execParallelCall(n, scope, backwards, ec)
	case *ast.Print:
		if backwards {
			return nil
		}
		return it.execPrint(n, scope, ec)
	case *ast.Promote:
		return it.execPromote(n, scope, backwards)
	case *ast.Barrier:
		return it.execBarrier(n, ec)
	case *ast.Mutex:
		return it.execMutex(n, scope, backwards, ec)
	default:
		return raerr.New(raerr.KindParsing, s.Pos(), "unhandled statement type %T", s)
	}
}

// Eval evaluates an expression. Expression evaluation is direction-agnostic
// (pure): backwards only matters because the Lookup it dereferences may
// itself hold different values depending on how far the program has been
// unwound, not because operators invert. Inversion is a statement-level
// concept (Modification), not an expression one.
func (it *Interpreter) Eval(e ast.Expression, scope *runtime.Scope, backwards bool, ec *execCtx) (types.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return n.Value, nil
	case *ast.Lookup:
		cell, err := scope.Resolve(n.Name)
		if err != nil {
			return nil, wrapScopeErr(err, n.Position)
		}
		indices, err := it.evalIndices(n.Indices, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		v, err := cell.Get(indices)
		if err != nil {
			return nil, wrapScopeErr(err, n.Position)
		}
		return v, nil
	case *ast.BinaryExpr:
		l, err := it.Eval(n.Left, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		r, err := it.Eval(n.Right, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		v, err := types.BinaryOp(n.Op, l, r)
		if err != nil {
			return nil, wrapValueErr(err, n.Position)
		}
		return v, nil
	case *ast.UnaryExpr:
		v, err := it.Eval(n.Operand, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		rv, err := types.UnaryOp(n.Op, v)
		if err != nil {
			return nil, wrapValueErr(err, n.Position)
		}
		return rv, nil
	case *ast.ArrayLiteral:
		elems := make([]types.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := it.Eval(el, scope, backwards, ec)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return types.NewArray(elems), nil
	case *ast.ArrayRange:
		return it.evalRange(n, scope, backwards, ec)
	case *ast.ArrayTensor:
		return it.evalTensor(n, scope, backwards, ec)
	case *ast.TIDExpr:
		if ec == nil || ec.lane == nil {
			return nil, raerr.New(raerr.KindMemAccess, n.Position, "TID/#TID used outside a parallel call")
		}
		if n.Count {
			return types.NewRationalInt(int64(ec.lane.n)), nil
		}
		return types.NewRationalInt(int64(ec.lane.tid)), nil
	default:
		return nil, raerr.New(raerr.KindParsing, e.Pos(), "unhandled expression type %T", e)
	}
}

func (it *Interpreter) evalIndices(idxExprs []ast.Expression, scope *runtime.Scope, backwards bool, ec *execCtx) ([]int64, error) {
	out := make([]int64, len(idxExprs))
	for i, e := range idxExprs {
		v, err := it.Eval(e, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		r, ok := v.(types.Rational)
		if !ok || !r.IsInt() {
			return nil, raerr.New(raerr.KindMemAccess, e.Pos(), "array index must be an integer")
		}
		out[i] = r.Int64()
	}
	return out, nil
}

func (it *Interpreter) evalRange(r *ast.ArrayRange, scope *runtime.Scope, backwards bool, ec *execCtx) (*types.Array, error) {
	from, err := it.Eval(r.From, scope, backwards, ec)
	if err != nil {
		return nil, err
	}
	to, err := it.Eval(r.To, scope, backwards, ec)
	if err != nil {
		return nil, err
	}
	fr, ok1 := from.(types.Rational)
	tr, ok2 := to.(types.Rational)
	if !ok1 || !ok2 {
		return nil, raerr.New(raerr.KindMemAccess, r.Position, "range bounds must be rational")
	}
	step := types.NewRationalInt(1)
	if r.Step != nil {
		sv, err := it.Eval(r.Step, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		sr, ok := sv.(types.Rational)
		if !ok {
			return nil, raerr.New(raerr.KindMemAccess, r.Position, "range step must be rational")
		}
		step = sr
	}
	if !step.Truthy() {
		return nil, raerr.New(raerr.KindMemAccess, r.Position, "range step must be nonzero")
	}

	var elems []types.Value
	cur := fr
	ascending := step.Rat().Sign() > 0
	for {
		if ascending && cur.Cmp(tr) > 0 {
			break
		}
		if !ascending && cur.Cmp(tr) < 0 {
			break
		}
		elems = append(elems, cur)
		cur = addRational(cur, step)
	}
	return types.NewArray(elems), nil
}

func addRational(a, b types.Rational) types.Rational {
	v, _ := types.BinaryOp("+", a, b)
	return v.(types.Rational)
}

func (it *Interpreter) evalTensor(t *ast.ArrayTensor, scope *runtime.Scope, backwards bool, ec *execCtx) (*types.Array, error) {
	dims := make([]int, len(t.Dims))
	for i, d := range t.Dims {
		v, err := it.Eval(d, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		r, ok := v.(types.Rational)
		if !ok || !r.IsInt() || r.Int64() < 0 {
			return nil, raerr.New(raerr.KindMemAccess, d.Pos(), "tensor dimension must be a nonnegative integer")
		}
		dims[i] = int(r.Int64())
	}
	return it.buildTensor(dims, t.Fill, scope, backwards, ec)
}

func (it *Interpreter) buildTensor(dims []int, fill ast.Expression, scope *runtime.Scope, backwards bool, ec *execCtx) (*types.Array, error) {
	n := dims[0]
	elems := make([]types.Value, n)
	if len(dims) == 1 {
		for i := 0; i < n; i++ {
			v, err := it.Eval(fill, scope, backwards, ec)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return types.NewArray(elems), nil
	}
	for i := 0; i < n; i++ {
		sub, err := it.buildTensor(dims[1:], fill, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		elems[i] = sub
	}
	return types.NewArray(elems), nil
}
