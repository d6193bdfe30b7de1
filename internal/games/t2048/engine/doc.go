// Package engine implements the 2048 grid simulation: tile sliding and merging,
// random spawning and game-over detection.
//
// The package is UI-agnostic. A move is split in two phases: Move computes the
// transitions and leaves the grid in StateMoving, and Finish is called once the
// caller has presented them (or immediately, if it does not animate). Finish
// spawns the next tile and evaluates the terminal condition.
package engine
