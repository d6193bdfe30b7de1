package engine

import "fmt"

// Location is a cell coordinate. X grows to the right, Y grows downward.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Loc is shorthand for Location{X: x, Y: y}.
func Loc(x, y int) Location {
	return Location{X: x, Y: y}
}

// Offset returns the neighbouring location one step in direction d.
func (l Location) Offset(d Direction) Location {
	dx, dy := d.Delta()
	return Location{X: l.X + dx, Y: l.Y + dy}
}

// IsValidFor reports whether l lies inside a size x size grid.
func (l Location) IsValidFor(size int) bool {
	return l.X >= 0 && l.X < size && l.Y >= 0 && l.Y < size
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}
