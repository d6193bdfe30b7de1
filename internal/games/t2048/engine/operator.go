package engine

import "slices"

// DefaultGridSize is the classic 4x4 board.
const DefaultGridSize = 4

// GridOperator holds the grid geometry and the traversal order used by moves.
type GridOperator struct {
	size int
	xs   []int // column visit order
	ys   []int // row visit order
}

// NewGridOperator creates an operator for a size x size grid.
// Non-positive sizes fall back to DefaultGridSize.
func NewGridOperator(size int) *GridOperator {
	if size <= 0 {
		size = DefaultGridSize
	}
	o := &GridOperator{
		size: size,
		xs:   make([]int, size),
		ys:   make([]int, size),
	}
	for i := range size {
		o.xs[i] = i
		o.ys[i] = i
	}
	return o
}

// Size returns the grid dimension.
func (o *GridOperator) Size() int {
	return o.size
}

// IsValidLocation reports whether loc is inside the grid.
func (o *GridOperator) IsValidLocation(loc Location) bool {
	return loc.IsValidFor(o.size)
}

// TraverseGrid calls visitor once per cell, columns outer and rows inner,
// in the order set by the last SortGrid. It returns the sum of the visitor results.
func (o *GridOperator) TraverseGrid(visitor func(x, y int) int) int {
	sum := 0
	for _, x := range o.xs {
		for _, y := range o.ys {
			sum += visitor(x, y)
		}
	}
	return sum
}

// SortGrid orders the next traversal so the cells closest to the wall in
// direction d are visited first. A tile then never passes a tile that has
// not moved yet, and merges resolve from the wall outwards.
func (o *GridOperator) SortGrid(d Direction) {
	slices.Sort(o.xs)
	slices.Sort(o.ys)
	switch d {
	case DirRight:
		slices.Reverse(o.xs)
	case DirDown:
		slices.Reverse(o.ys)
	}
}
