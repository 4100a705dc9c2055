package interp

import (
	"fmt"
	"strings"

	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/runtime"
	"github.com/railwaylang/railway/internal/types"
)

// execModification applies the forward operator going forwards, or its
// runtime inverse going backwards, to the current value of the target
// cell (spec §4.2, §4.6).
func (it *Interpreter) execModification(m *ast.Modification, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	cell, err := scope.Resolve(m.Target.Name)
	if err != nil {
		return wrapScopeErr(err, m.Position)
	}
	indices, err := it.evalIndices(m.Target.Indices, scope, backwards, ec)
	if err != nil {
		return err
	}
	cur, err := cell.Get(indices)
	if err != nil {
		return wrapScopeErr(err, m.Position)
	}
	rhs, err := it.Eval(m.Value, scope, backwards, ec)
	if err != nil {
		return err
	}
	result, err := types.ApplyModification(m.Op, cur, rhs, backwards)
	if err != nil {
		return wrapValueErr(err, m.Position)
	}
	return wrapScopeErr(cell.Set(indices, result), m.Position)
}

// execAssignment implements `let`. Forwards it binds a fresh cell;
// backwards it behaves like an unlet — the bound value must match the
// expression or an unlet-error is raised (spec §4.6: "Unassignment is
// Assignment with the direction flipped").
func (it *Interpreter) execAssignment(a *ast.Assignment, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if !backwards {
		val, err := it.Eval(a.Value, scope, backwards, ec)
		if err != nil {
			return err
		}
		return wrapScopeErr(scope.Bind(a.Name, runtime.NewCell(val)), a.Position)
	}
	return it.unbindMatching(a.Name, a.Value, scope, ec, a.Position)
}

func (it *Interpreter) execUnassignment(u *ast.Unassignment, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if backwards {
		val, err := it.Eval(u.Value, scope, backwards, ec)
		if err != nil {
			return err
		}
		return wrapScopeErr(scope.Bind(u.Name, runtime.NewCell(val)), u.Position)
	}
	return it.unbindMatching(u.Name, u.Value, scope, ec, u.Position)
}

// unbindMatching evaluates expr in whatever direction the caller already
// ran (let backwards, or unlet forwards both take this path), compares it
// against name's currently bound value, and unbinds on a match.
func (it *Interpreter) unbindMatching(name string, expr ast.Expression, scope *runtime.Scope, ec *execCtx, pos lexer.Position) error {
	cell, err := scope.Resolve(name)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	// The expression itself never depends on direction for its own
	// evaluation (it is pure); what matters is that it is evaluated
	// against the scope as it stands right now.
	val, err := it.Eval(expr, scope, false, ec)
	if err != nil {
		return err
	}
	if !cell.Value().Equal(val) {
		return raerr.New(raerr.KindUnlet, pos, "%q is bound to %s, not %s", name, cell.Value().String(), val.String())
	}
	_, err = scope.Unbind(name)
	return wrapScopeErr(err, pos)
}

// execSwap exchanges the two cells' contents. Self-inverse: no direction
// branch needed.
func (it *Interpreter) execSwap(s *ast.Swap, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	lc, err := scope.Resolve(s.Left.Name)
	if err != nil {
		return wrapScopeErr(err, s.Position)
	}
	rc, err := scope.Resolve(s.Right.Name)
	if err != nil {
		return wrapScopeErr(err, s.Position)
	}
	li, err := it.evalIndices(s.Left.Indices, scope, backwards, ec)
	if err != nil {
		return err
	}
	ri, err := it.evalIndices(s.Right.Indices, scope, backwards, ec)
	if err != nil {
		return err
	}
	lv, err := lc.Get(li)
	if err != nil {
		return wrapScopeErr(err, s.Position)
	}
	rv, err := rc.Get(ri)
	if err != nil {
		return wrapScopeErr(err, s.Position)
	}
	if err := lc.Set(li, rv); err != nil {
		return wrapScopeErr(err, s.Position)
	}
	return wrapScopeErr(rc.Set(ri, lv), s.Position)
}

// execPush and execPop are mutual inverses (spec §4.6): push backwards is
// a pop, and vice versa.
func (it *Interpreter) execPush(p *ast.Push, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if !backwards {
		return it.doPush(p.Source, p.Dest, scope, ec, p.Position)
	}
	return it.doPop(p.Dest, p.Source, scope, ec, p.Position)
}

func (it *Interpreter) execPop(p *ast.Pop, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if !backwards {
		return it.doPop(p.Source, p.Dest, scope, ec, p.Position)
	}
	return it.doPush(p.Dest, p.Source, scope, ec, p.Position)
}

func (it *Interpreter) doPush(src, dest *ast.Lookup, scope *runtime.Scope, ec *execCtx, pos lexer.Position) error {
	cell, err := scope.Unbind(src.Name)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	arrCell, err := scope.Resolve(dest.Name)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	idx, err := it.evalIndices(dest.Indices, scope, false, ec)
	if err != nil {
		return err
	}
	target, err := arrCell.Get(idx)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	arr, ok := target.(*types.Array)
	if !ok {
		return raerr.New(raerr.KindMemAccess, pos, "push target %q is not an array", dest.Name)
	}
	arr.Push(cell.Value())
	return nil
}

func (it *Interpreter) doPop(src, dest *ast.Lookup, scope *runtime.Scope, ec *execCtx, pos lexer.Position) error {
	arrCell, err := scope.Resolve(src.Name)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	idx, err := it.evalIndices(src.Indices, scope, false, ec)
	if err != nil {
		return err
	}
	val, err := arrCell.Get(idx)
	if err != nil {
		return wrapScopeErr(err, pos)
	}
	arr, ok := val.(*types.Array)
	if !ok {
		return raerr.New(raerr.KindMemAccess, pos, "pop source %q is not an array", src.Name)
	}
	popped, ok := arr.Pop()
	if !ok {
		return raerr.New(raerr.KindMemAccess, pos, "pop from empty array %q", src.Name)
	}
	return wrapScopeErr(scope.Bind(dest.Name, runtime.NewCell(popped)), pos)
}

// execPrint is the one sanctioned impure statement; the caller (execStmt)
// already skips it entirely when backwards.
func (it *Interpreter) execPrint(p *ast.Print, scope *runtime.Scope, ec *execCtx) error {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		v, err := it.Eval(a, scope, false, ec)
		if err != nil {
			return err
		}
		parts[i] = v.String()
	}
	fmt.Fprintln(it.out, strings.Join(parts, " "))
	return nil
}

// execPromote bridges mono and non-mono bindings: forwards it promotes
// (moves the mono cell to a plain name), backwards it demotes (destroys the
// plain binding and binds nothing: the mono statements that produced the
// value are skipped on the way back). It runs in both directions
// unconditionally — see the Promote exemption in execBlock.
func (it *Interpreter) execPromote(p *ast.Promote, scope *runtime.Scope, backwards bool) error {
	if !backwards {
		cell, err := scope.Unbind(p.MonoName)
		if err != nil {
			return wrapScopeErr(err, p.Position)
		}
		return wrapScopeErr(scope.Bind(p.PlainName, cell), p.Position)
	}
	_, err := scope.Unbind(p.PlainName)
	return wrapScopeErr(err, p.Position)
}
