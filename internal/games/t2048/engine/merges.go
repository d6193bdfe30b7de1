package engine

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// mergeMovementsAvailable counts adjacent equal pairs. Vertical and
// horizontal neighbours are scanned in parallel; together they cover every
// adjacency, so a zero result means no direction can merge anything.
// Callers hold g.mu; the scans only read.
func (g *Grid) mergeMovementsAvailable() int {
	var pairs atomic.Int64
	var eg errgroup.Group
	for _, d := range [...]Direction{DirUp, DirLeft} {
		eg.Go(func() error {
			pairs.Add(int64(g.countMergeablePairs(d)))
			return nil
		})
	}
	_ = eg.Wait()
	return int(pairs.Load())
}

// countMergeablePairs counts tiles whose neighbour towards d holds the same value.
func (g *Grid) countMergeablePairs(d Direction) int {
	n := 0
	for _, loc := range g.locations {
		t := g.cells[loc]
		if t == nil {
			continue
		}
		next := loc.Offset(d)
		if !g.op.IsValidLocation(next) {
			continue
		}
		if t.IsMergeable(g.cells[next]) {
			n++
		}
	}
	return n
}
