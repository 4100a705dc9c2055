package interp

import (
	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/runtime"
)

// invoke runs fn's body once, in the direction bodyBackwards, wiring the
// caller's borrowed cells (shared, not copied) into the callee scope under
// fn's own borrowed names, moving the caller's `input`-named cells in under
// whichever of fn's own name lists the body starts from, and moving the
// result back out to the caller's `output` names from whichever list the
// body ends at.
//
// Per spec §4.7, call and uncall unify into a single primitive: a function
// always starts its Stolen names bound and finishes with its Returns names
// bound when run forwards, and vice versa when run backwards — undoing a
// call re-seeds the body with its own outputs and runs it back down to its
// own inputs. The caller computes bodyBackwards and the two caller-side
// name lists (input, output); invoke derives which of fn's own names are
// the start-set and which are the end-set from bodyBackwards alone.
func (it *Interpreter) invoke(fn *ast.FunctionDecl, borrowed, input, output []string, bodyBackwards bool, caller *runtime.Scope, ec *execCtx) error {
	callee := runtime.NewScope(it.globals)

	for i, name := range fn.Borrowed {
		cell, err := caller.Resolve(borrowed[i])
		if err != nil {
			return wrapScopeErr(err, fn.Position)
		}
		if err := callee.Bind(name, cell); err != nil {
			return wrapScopeErr(err, fn.Position)
		}
	}

	startNames, endNames := fn.Stolen, fn.Returns
	if bodyBackwards {
		startNames, endNames = fn.Returns, fn.Stolen
	}

	for i, name := range startNames {
		cell, err := caller.Unbind(input[i])
		if err != nil {
			return wrapScopeErr(err, fn.Position)
		}
		if err := callee.Bind(name, cell); err != nil {
			return wrapScopeErr(err, fn.Position)
		}
	}

	if fn.Undoreturn && !bodyBackwards {
		return it.invokeUndoreturnForward(fn, callee, input, output, caller, ec)
	}

	if err := it.execBlock(fn.Body, callee, bodyBackwards, ec); err != nil {
		return err
	}

	if err := it.checkLeak(fn, callee, endNames); err != nil {
		return err
	}

	for i, name := range endNames {
		cell, err := callee.Unbind(name)
		if err != nil {
			return wrapScopeErr(err, fn.Position)
		}
		if err := caller.Bind(output[i], cell); err != nil {
			return wrapScopeErr(err, fn.Position)
		}
	}
	return nil
}

// invokeUndoreturnForward implements the forward half of spec §4.7's
// undoreturn semantics: run the body forward as usual, snapshot a copy of
// each returned value, then run the same body backward over the same
// callee scope to undo whatever it did to the borrowed cells and hand the
// stolen cells back to the caller unchanged. Only the copies are ever
// visible to the caller; an undoreturn call leaves no trace on borrowed
// state even though its body executes forwards once.
func (it *Interpreter) invokeUndoreturnForward(fn *ast.FunctionDecl, callee *runtime.Scope, input, output []string, caller *runtime.Scope, ec *execCtx) error {
	if err := it.execBlock(fn.Body, callee, false, ec); err != nil {
		return err
	}
	if err := it.checkLeak(fn, callee, fn.Returns); err != nil {
		return err
	}

	copies := make([]*runtime.Cell, len(fn.Returns))
	for i, name := range fn.Returns {
		cell, err := callee.Resolve(name)
		if err != nil {
			return wrapScopeErr(err, fn.Position)
		}
		copies[i] = cell.Copy()
	}

	if err := it.execBlock(fn.Body, callee, true, ec); err != nil {
		return err
	}
	if err := it.checkLeak(fn, callee, fn.Stolen); err != nil {
		return err
	}

	for i, name := range fn.Stolen {
		cell, err := callee.Unbind(name)
		if err != nil {
			return wrapScopeErr(err, fn.Position)
		}
		if err := caller.Bind(input[i], cell); err != nil {
			return wrapScopeErr(err, fn.Position)
		}
	}
	for i, cell := range copies {
		if err := caller.Bind(output[i], cell); err != nil {
			return wrapScopeErr(err, fn.Position)
		}
	}
	return nil
}

// checkLeak enforces P3: when a function body finishes, the set of locally
// bound names must equal exactly the borrowed names (untouched, since they
// were never unbound) union endNames (freshly (re)bound by running the
// body in this direction). Anything else left bound is a leak; anything
// missing was never produced.
func (it *Interpreter) checkLeak(fn *ast.FunctionDecl, callee *runtime.Scope, endNames []string) error {
	want := make(map[string]bool, len(fn.Borrowed)+len(endNames))
	for _, n := range fn.Borrowed {
		want[n] = true
	}
	for _, n := range endNames {
		want[n] = true
	}
	got := callee.SnapshotNames()
	if len(got) != len(want) {
		return raerr.New(raerr.KindInformationLeak, fn.Position, "function %q leaked or is missing bindings at return: have %v, want %v", fn.Name, namesOf(got), namesOf(want))
	}
	for n := range want {
		if !got[n] {
			return raerr.New(raerr.KindInformationLeak, fn.Position, "function %q did not bind return name %q", fn.Name, n)
		}
	}
	return nil
}

func namesOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	return out
}

// execCall implements `call`/`uncall` (spec §4.7): bodyBackwards is the
// XOR of the statement's own execution direction and whether it names an
// explicit uncall, which uniformly covers all four combinations of
// (call/uncall) x (forwards/backwards).
func (it *Interpreter) execCall(c *ast.Call, scope *runtime.Scope, backwards bool, ec *execCtx) error {
	fn, ok := it.funcs[c.FuncName]
	if !ok {
		return raerr.New(raerr.KindExists, c.Position, "undefined function %q", c.FuncName)
	}
	bodyBackwards := backwards != c.Uncall
	input, output := c.Stolen, c.Returns
	if bodyBackwards {
		input, output = c.Returns, c.Stolen
	}
	return it.invoke(fn, c.Borrowed, input, output, bodyBackwards, scope, ec)
}
