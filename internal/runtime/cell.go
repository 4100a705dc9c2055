// Package runtime implements Railway's variable cells and scopes: the
// indirection layer that owns values and is the unit of ownership transfer
// between borrowed/stolen call parameters, per spec §3/§4.5.
package runtime

import (
	"fmt"

	"github.com/railwaylang/railway/internal/types"
)

// Cell owns a single Value and supports indexed get/set with bounds
// checking. A scalar variable is a cell whose Value is a Rational (or an
// Array) addressed with zero indices; indexing into an Array cell drills
// down one level per index, erroring with mem-access if the path runs off
// the end of an array or through a scalar.
type Cell struct {
	value types.Value
}

// NewCell wraps v in a new Cell, taking ownership of v.
func NewCell(v types.Value) *Cell {
	return &Cell{value: v}
}

// Get reads the value addressed by indices. An empty indices slice reads
// the whole cell.
func (c *Cell) Get(indices []int64) (types.Value, error) {
	return index(c.value, indices)
}

// Set writes v at the position addressed by indices, replacing the
// existing value there. An empty indices slice replaces the whole cell.
func (c *Cell) Set(indices []int64, v types.Value) error {
	if len(indices) == 0 {
		c.value = v
		return nil
	}
	arr, ok := c.value.(*types.Array)
	if !ok {
		return fmt.Errorf("mem-access: cannot index a scalar value")
	}
	i := indices[0]
	if i < 0 || int(i) >= arr.Len() {
		return fmt.Errorf("mem-access: index %d out of bounds (length %d)", i, arr.Len())
	}
	if len(indices) == 1 {
		arr.Elems[i] = v
		return nil
	}
	return setNested(arr.Elems[i], indices[1:], v)
}

func setNested(v types.Value, indices []int64, newVal types.Value) error {
	if len(indices) == 0 {
		return fmt.Errorf("internal: setNested called with no indices")
	}
	arr, ok := v.(*types.Array)
	if !ok {
		return fmt.Errorf("mem-access: cannot index a scalar value")
	}
	i := indices[0]
	if i < 0 || int(i) >= arr.Len() {
		return fmt.Errorf("mem-access: index %d out of bounds (length %d)", i, arr.Len())
	}
	if len(indices) == 1 {
		arr.Elems[i] = newVal
		return nil
	}
	return setNested(arr.Elems[i], indices[1:], newVal)
}

func index(v types.Value, indices []int64) (types.Value, error) {
	if len(indices) == 0 {
		return v, nil
	}
	arr, ok := v.(*types.Array)
	if !ok {
		return nil, fmt.Errorf("mem-access: cannot index a scalar value")
	}
	i := indices[0]
	if i < 0 || int(i) >= arr.Len() {
		return nil, fmt.Errorf("mem-access: index %d out of bounds (length %d)", i, arr.Len())
	}
	return index(arr.Elems[i], indices[1:])
}

// Value returns the cell's whole value without indexing.
func (c *Cell) Value() types.Value { return c.value }

// SetValue replaces the cell's whole value.
func (c *Cell) SetValue(v types.Value) { c.value = v }

// Copy returns a new Cell holding a deep copy of this cell's value. Used
// where Railway semantics require copying a whole cell rather than aliasing
// it: the returned cells of an undoreturn call, and Scope.Clone.
func (c *Cell) Copy() *Cell {
	return &Cell{value: c.value.Clone()}
}
