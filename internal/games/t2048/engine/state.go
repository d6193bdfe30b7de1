package engine

import "errors"

var (
	// ErrNotMoving is returned by Finish when no move is waiting for completion.
	ErrNotMoving = errors.New("engine: no move in progress")

	// ErrBadBoard is returned by Load for boards of the wrong shape or with
	// values that are not powers of two.
	ErrBadBoard = errors.New("engine: invalid board")

	// ErrInvariant wraps every internal-consistency failure found by CheckInvariants.
	ErrInvariant = errors.New("engine: invariant violated")
)

// State is the grid lifecycle state.
type State uint8

const (
	// StateIdle accepts moves.
	StateIdle State = iota
	// StateMoving has computed transitions and is waiting for Finish.
	StateMoving
	// StateGameOver is terminal until the grid is reset.
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TransitionKind tells a renderer how to animate a transition.
type TransitionKind uint8

const (
	TransitionSlide TransitionKind = iota
	TransitionMerge
)

func (k TransitionKind) String() string {
	if k == TransitionMerge {
		return "merge"
	}
	return "slide"
}

// Transition is a single tile movement produced by a move.
// For merges, TileID is the absorbed tile travelling From -> To and TargetID
// is the tile sitting at To that now holds Result.
type Transition struct {
	Kind     TransitionKind
	TileID   uint64
	TargetID uint64
	From     Location
	To       Location
	Value    int // moving tile value before the move
	Result   int // value at To after the move
}

// MoveResult is returned by Move.
type MoveResult struct {
	Direction   Direction
	Moved       bool // at least one transition happened
	Transitions []Transition
	ScoreGained int
}

// Merges returns the number of merge transitions.
func (r *MoveResult) Merges() int {
	n := 0
	for _, t := range r.Transitions {
		if t.Kind == TransitionMerge {
			n++
		}
	}
	return n
}

// Snapshot is a value copy of the grid for rendering, replay checks and transport.
type Snapshot struct {
	Size    int     `json:"size"`
	Cells   [][]int `json:"cells"` // Cells[y][x], 0 = empty
	Score   int     `json:"score"`
	MaxTile int     `json:"max_tile"`
	State   State   `json:"state"`
}
