package runtime

import "fmt"

// Scope is a flat mapping from identifier to variable cell: nested blocks
// (if/loop/for bodies) do not introduce new scopes, per spec §3. A Scope
// may fall back to a shared Globals table for names it does not itself
// bind.
type Scope struct {
	vars    map[string]*Cell
	globals *Globals
}

// NewScope creates an empty scope backed by globals (which may be nil).
func NewScope(globals *Globals) *Scope {
	return &Scope{vars: make(map[string]*Cell), globals: globals}
}

// Bind introduces name as a new binding for cell. Fails if name is already
// bound in this scope (no shadowing within a scope, per spec §3).
func (s *Scope) Bind(name string, cell *Cell) error {
	if _, ok := s.vars[name]; ok {
		return fmt.Errorf("exists-error: %q is already bound in this scope", name)
	}
	s.vars[name] = cell
	return nil
}

// Resolve looks up name: first in local bindings, then in the global
// table. A local binding shadows a global of the same name for the
// duration the local exists.
func (s *Scope) Resolve(name string) (*Cell, error) {
	if cell, ok := s.vars[name]; ok {
		return cell, nil
	}
	if s.globals != nil {
		if cell, ok := s.globals.Lookup(name); ok {
			return cell, nil
		}
	}
	return nil, fmt.Errorf("exists-error: undefined name %q", name)
}

// Unbind removes name's local binding and returns its cell. Fails if name
// is not locally bound (globals cannot be unbound).
func (s *Scope) Unbind(name string) (*Cell, error) {
	cell, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("exists-error: %q is not bound in this scope", name)
	}
	delete(s.vars, name)
	return cell, nil
}

// IsLocallyBound reports whether name has a local binding in this scope
// (ignoring globals).
func (s *Scope) IsLocallyBound(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// SnapshotNames returns the set of currently locally bound names, used by
// the leak check on function return.
func (s *Scope) SnapshotNames() map[string]bool {
	out := make(map[string]bool, len(s.vars))
	for name := range s.vars {
		out[name] = true
	}
	return out
}

// Clone deep-copies the scope's local bindings (each cell via Cell.Copy, so
// mutating the clone's arrays never touches the original's) while sharing
// the same Globals table. Used by try-catch's backward verification pass to
// probe candidate replays without disturbing live state.
func (s *Scope) Clone() *Scope {
	out := &Scope{vars: make(map[string]*Cell, len(s.vars)), globals: s.globals}
	for name, cell := range s.vars {
		out.vars[name] = cell.Copy()
	}
	return out
}

// Globals is the process-wide table populated once, before main runs, from
// the parsed `global` declarations. Names cannot be added to or removed from
// it afterwards, but its cells are not write-protected: Scope.Resolve hands
// out the global cell itself, so a statement that modifies or swaps a name
// resolving to a global changes the global's value.
type Globals struct {
	cells map[string]*Cell
}

// NewGlobals creates an empty global table.
func NewGlobals() *Globals {
	return &Globals{cells: make(map[string]*Cell)}
}

// Define adds name to the global table. Intended for use only while
// building the table from parsed `global` declarations.
func (g *Globals) Define(name string, cell *Cell) error {
	if _, ok := g.cells[name]; ok {
		return fmt.Errorf("exists-error: global %q already defined", name)
	}
	g.cells[name] = cell
	return nil
}

// Lookup returns the global cell for name, if any.
func (g *Globals) Lookup(name string) (*Cell, bool) {
	cell, ok := g.cells[name]
	return cell, ok
}
