package engine

import (
	"fmt"
	"math/rand"
)

// DefaultFourProbability is the chance that a spawned tile is a 4 instead of a 2.
const DefaultFourProbability = 0.10

// Tile is a numbered piece on the grid.
// ID is assigned by the Grid when the tile is placed and is never reused
// within that grid, so renderers can key presentation state on it.
type Tile struct {
	ID     uint64
	Value  int
	merged bool // absorbed another tile during the current move
}

// NewTile creates a tile with an explicit value.
func NewTile(value int) *Tile {
	return &Tile{Value: value}
}

// NewRandomTile creates a 2 (90%) or a 4 (10%).
func NewRandomTile(rng *rand.Rand) *Tile {
	return newRandomTile(rng, DefaultFourProbability)
}

func newRandomTile(rng *rand.Rand, fourProb float64) *Tile {
	value := 2
	if rng.Float64() < fourProb {
		value = 4
	}
	return NewTile(value)
}

// IsMergeable reports whether other holds the same value as t.
// Merge history is not considered here; callers check IsMerged on the target.
func (t *Tile) IsMergeable(other *Tile) bool {
	return other != nil && other.Value == t.Value
}

// Merge absorbs other into t and marks t as merged for the current move.
func (t *Tile) Merge(other *Tile) {
	t.Value += other.Value
	t.merged = true
}

// IsMerged reports whether t already absorbed a tile during the current move.
func (t *Tile) IsMerged() bool {
	return t.merged
}

// ClearMerge resets the merged flag at the end of a move.
func (t *Tile) ClearMerge() {
	t.merged = false
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile{id=%d, value=%d}", t.ID, t.Value)
}
