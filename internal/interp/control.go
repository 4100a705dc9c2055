package interp

import (
	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/runtime"
	"github.com/railwaylang/railway/internal/types"
)

// effectiveIfBackward returns n's backward condition, or its forward one
// when fi() was left empty (spec §4.4: "an empty fi() means same as the
// forward condition").
func effectiveIfBackward(n *ast.If) ast.Expression {
	if n.Backward != nil {
		return n.Backward
	}
	return n.Forward
}

// execIf implements spec §4.6: evaluate the entry condition for the
// current direction, run the chosen branch, then require the OTHER
// condition to agree that the same branch was taken (P5).
func (it *Interpreter) execIf(n *ast.If, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	entryCond, exitCond := n.Forward, effectiveIfBackward(n)
	if backwards {
		entryCond, exitCond = effectiveIfBackward(n), n.Forward
	}

	ev, err := it.Eval(entryCond, scope, backwards, ec)
	if err != nil {
		return err
	}
	taken := ev.Truthy()

	branch := n.Else
	if taken {
		branch = n.Then
	}
	if err := it.execBlock(branch, scope, backwards, ec); err != nil {
		return err
	}

	xv, err := it.Eval(exitCond, scope, backwards, ec)
	if err != nil {
		return err
	}
	if xv.Truthy() != taken {
		return raerr.New(raerr.KindIfAssert, n.Position, "if condition disagreement: branch taken=%v, exit condition=%v", taken, xv.Truthy())
	}
	return nil
}

// execLoop implements spec §4.6: assert the entry condition once, then
// repeatedly check the exit condition before running the body.
func (it *Interpreter) execLoop(n *ast.Loop, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	bwd := n.Backward
	if bwd == nil {
		bwd = n.Forward
	}

	entryCond := n.Forward
	if backwards {
		entryCond = bwd
	}
	ev, err := it.Eval(entryCond, scope, backwards, ec)
	if err != nil {
		return err
	}
	if !ev.Truthy() {
		return raerr.New(raerr.KindLoopAssert, n.Position, "loop entry condition failed")
	}

	for {
		exitCond := bwd
		if backwards {
			exitCond = n.Forward
		}
		xv, err := it.Eval(exitCond, scope, backwards, ec)
		if err != nil {
			return err
		}
		if xv.Truthy() {
			return nil
		}
		if err := it.execBlock(n.Body, scope, backwards, ec); err != nil {
			return err
		}
	}
}

// execForLoop copies each element of the iterator (an array, or a range
// materialised into one up front) into Var one at a time, running the body in the current direction;
// backwards it walks the elements in reverse (spec §4.6).
func (it *Interpreter) execForLoop(n *ast.ForLoop, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	elems, err := it.materializeForIter(n.Iter, scope, backwards, ec)
	if err != nil {
		return err
	}
	order := elems
	if backwards {
		order = make([]types.Value, len(elems))
		for i, v := range elems {
			order[len(elems)-1-i] = v
		}
	}
	for _, v := range order {
		if err := scope.Bind(n.Var, runtime.NewCell(v.Clone())); err != nil {
			return wrapScopeErr(err, n.Position)
		}
		if err := it.execBlock(n.Body, scope, backwards, ec); err != nil {
			return err
		}
		if _, err := scope.Unbind(n.Var); err != nil {
			return wrapScopeErr(err, n.Position)
		}
	}
	return nil
}

func (it *Interpreter) materializeForIter(e ast.Expression, scope *runtime.Scope, backwards bool, ec *execCtx) ([]types.Value, error) {
	if rng, ok := e.(*ast.ArrayRange); ok {
		arr, err := it.evalRange(rng, scope, backwards, ec)
		if err != nil {
			return nil, err
		}
		return arr.Elems, nil
	}
	v, err := it.Eval(e, scope, backwards, ec)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*types.Array)
	if !ok {
		return nil, raerr.New(raerr.KindMemAccess, e.Pos(), "for-loop iterator must be an array")
	}
	return arr.Elems, nil
}

// execDoYieldUndo implements spec §4.6: forwards runs do, yield, then
// undoes do; backwards runs do, undoes yield, then undoes do. The
// construct is self-inverse and leaves no residue from the do-block.
func (it *Interpreter) execDoYieldUndo(n *ast.DoYieldUndo, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if !backwards {
		if err := it.execBlock(n.Do, scope, false, ec); err != nil {
			return err
		}
		if err := it.execBlock(n.Yield, scope, false, ec); err != nil {
			return err
		}
		return it.execBlock(n.Do, scope, true, ec)
	}
	if err := it.execBlock(n.Do, scope, false, ec); err != nil {
		return err
	}
	if err := it.execBlock(n.Yield, scope, true, ec); err != nil {
		return err
	}
	return it.execBlock(n.Do, scope, true, ec)
}

// runTryBody executes stmts forward one at a time, intercepting Catch
// nodes directly: a truthy catch aborts the attempt and reports which
// statements actually ran (for the caller to unwind), a falsy one is a
// no-op continuation.
func (it *Interpreter) runTryBody(stmts []ast.Statement, scope *runtime.Scope, ec *execCtx) (executed []ast.Statement, caught bool, err error) {
	for _, s := range stmts {
		if c, ok := s.(*ast.Catch); ok {
			cv, err := it.Eval(c.Cond, scope, false, ec)
			if err != nil {
				return executed, false, err
			}
			if cv.Truthy() {
				return executed, true, nil
			}
			continue
		}
		if err := it.execStmt(s, scope, false, ec); err != nil {
			return executed, false, err
		}
		executed = append(executed, s)
	}
	return executed, false, nil
}

func nonCatchStatements(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		if _, ok := s.(*ast.Catch); ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// execTryCatch implements spec §4.6. Forwards: try each candidate in turn,
// rewinding the body on a truthy catch, until one passes (binding IterVar)
// or the iterator is exhausted (exhausted-try-error). Backwards: undo the
// body once using the current binding, then re-run the forward search on a
// scratch copy of the scope to confirm the same candidate would pass
// (defending invertibility), before unbinding IterVar.
func (it *Interpreter) execTryCatch(n *ast.TryCatch, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	if backwards {
		return it.execTryCatchBackward(n, scope, ec)
	}

	candidates, err := it.materializeForIter(n.Iter, scope, false, ec)
	if err != nil {
		return err
	}
	for _, cand := range candidates {
		if err := scope.Bind(n.IterVar, runtime.NewCell(cand.Clone())); err != nil {
			return wrapScopeErr(err, n.Position)
		}
		executed, caught, err := it.runTryBody(n.Body, scope, ec)
		if err != nil {
			return err
		}
		if caught {
			if err := it.execBlock(reversed(executed), scope, true, ec); err != nil {
				return err
			}
			if _, err := scope.Unbind(n.IterVar); err != nil {
				return wrapScopeErr(err, n.Position)
			}
			continue
		}
		return nil
	}
	return raerr.New(raerr.KindExhaustedTry, n.Position, "no candidate satisfied the try body")
}

func (it *Interpreter) execTryCatchBackward(n *ast.TryCatch, scope *runtime.Scope, ec *execCtx) error {
	cell, err := scope.Resolve(n.IterVar)
	if err != nil {
		return wrapScopeErr(err, n.Position)
	}
	bound := cell.Value().Clone()

	if err := it.execBlock(nonCatchStatements(n.Body), scope, true, ec); err != nil {
		return err
	}

	candidates, err := it.materializeForIter(n.Iter, scope, false, ec)
	if err != nil {
		return err
	}
	probe := scope.Clone()
	if _, err := probe.Unbind(n.IterVar); err != nil {
		return wrapScopeErr(err, n.Position)
	}

	var passCandidate types.Value
	passed := false
	for _, cand := range candidates {
		if err := probe.Bind(n.IterVar, runtime.NewCell(cand.Clone())); err != nil {
			return wrapScopeErr(err, n.Position)
		}
		executed, caught, err := it.runTryBody(n.Body, probe, ec)
		if err != nil {
			return err
		}
		if caught {
			if err := it.execBlock(reversed(executed), probe, true, ec); err != nil {
				return err
			}
			if _, err := probe.Unbind(n.IterVar); err != nil {
				return wrapScopeErr(err, n.Position)
			}
			continue
		}
		passCandidate, passed = cand, true
		break
	}
	if !passed {
		return raerr.New(raerr.KindExhaustedTry, n.Position, "no candidate satisfied the try body during backward replay")
	}
	if !passCandidate.Equal(bound) {
		return raerr.New(raerr.KindLoopAssert, n.Position, "try-catch backward replay selected a different candidate than the bound value")
	}

	_, err = scope.Unbind(n.IterVar)
	return wrapScopeErr(err, n.Position)
}
