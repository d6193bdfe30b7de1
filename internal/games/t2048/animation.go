package t2048

import "github.com/vovakirdan/tui-2048/internal/games/t2048/engine"

type animPhase int

const (
	phaseNone animPhase = iota
	phaseSlide
	phasePop
)

// animator tracks the presentation of the last move. The slide phase shows
// the engine transitions; its end is the move completion signal. The pop
// phase highlights freshly spawned tiles and never blocks input.
type animator struct {
	slideTicks int
	popTicks   int

	phase  animPhase
	ticks  int
	slides []engine.Transition
	pops   []engine.Location
}

// active reports whether a slide is in progress. Moves wait for it.
func (a *animator) active() bool {
	return a.phase == phaseSlide
}

func (a *animator) startSlide(ts []engine.Transition) {
	a.pops = nil
	if a.slideTicks <= 0 {
		a.phase = phaseNone
		return
	}
	a.slides = ts
	a.phase = phaseSlide
	a.ticks = 0
}

func (a *animator) startPop(locs []engine.Location) {
	a.slides = nil
	if a.popTicks <= 0 {
		a.phase = phaseNone
		a.pops = nil
		return
	}
	a.pops = append(a.pops[:0], locs...)
	a.phase = phasePop
	a.ticks = 0
}

// advance moves the animation one tick. It returns true on the tick the
// slide phase ends.
func (a *animator) advance() bool {
	switch a.phase {
	case phaseSlide:
		a.ticks++
		if a.ticks >= a.slideTicks {
			a.phase = phaseNone
			a.slides = nil
			return true
		}
	case phasePop:
		a.ticks++
		if a.ticks >= a.popTicks {
			a.phase = phaseNone
			a.pops = nil
		}
	}
	return false
}

// progress returns the eased completion of the current phase in [0, 1].
func (a *animator) progress() float64 {
	var total int
	switch a.phase {
	case phaseSlide:
		total = a.slideTicks
	case phasePop:
		total = a.popTicks
	default:
		return 1
	}
	return easeOutQuad(min(1, float64(a.ticks)/float64(total)))
}

// popping reports whether the tile at loc is in its pop phase.
func (a *animator) popping(loc engine.Location) bool {
	if a.phase != phasePop {
		return false
	}
	for _, p := range a.pops {
		if p == loc {
			return true
		}
	}
	return false
}

func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// lerp interpolates a transition's position in board cells.
func lerp(t engine.Transition, p float64) (x, y float64) {
	x = float64(t.From.X) + float64(t.To.X-t.From.X)*p
	y = float64(t.From.Y) + float64(t.To.Y-t.From.Y)*p
	return x, y
}
