package engine

import (
	"fmt"
	"io"
	"math/bits"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSecondTileProbability is the chance that StartGame places a second tile.
const DefaultSecondTileProbability = 0.8

// Grid owns the Location -> Tile mapping and runs the move/spawn state machine.
// All methods are safe for concurrent use; a move that is still waiting for
// Finish makes every further Move a no-op.
type Grid struct {
	mu sync.Mutex

	op        *GridOperator
	cells     map[Location]*Tile // one entry per location, nil = empty
	locations []Location
	pending   []*Tile // absorbed by merges, removed on Finish
	state     State
	score     int
	nextID    uint64

	rng        *rand.Rand
	fourProb   float64
	secondProb float64

	listener Listener
	logger   *log.Logger
	events   []Event // queued under mu, delivered after unlock
}

// Option configures a Grid.
type Option func(*Grid)

// WithSize sets the grid dimension.
func WithSize(size int) Option {
	return func(g *Grid) {
		g.op = NewGridOperator(size)
	}
}

// WithRand sets the random source used for spawn locations and values.
func WithRand(rng *rand.Rand) Option {
	return func(g *Grid) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithSeed seeds a fresh random source.
func WithSeed(seed int64) Option {
	return func(g *Grid) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithFourProbability sets the chance of spawning a 4.
func WithFourProbability(p float64) Option {
	return func(g *Grid) {
		g.fourProb = clampProbability(p)
	}
}

// WithSecondTileProbability sets the chance of a second opening tile.
func WithSecondTileProbability(p float64) Option {
	return func(g *Grid) {
		g.secondProb = clampProbability(p)
	}
}

// WithListener registers the change listener.
func WithListener(l Listener) Option {
	return func(g *Grid) {
		if l != nil {
			g.listener = l
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Grid) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates an empty grid. Call StartGame to place the opening tiles.
func New(opts ...Option) *Grid {
	g := &Grid{
		op:         NewGridOperator(DefaultGridSize),
		fourProb:   DefaultFourProbability,
		secondProb: DefaultSecondTileProbability,
		listener:   nopListener{},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g.initializeGameGrid()
	g.events = nil
	return g
}

// locked runs fn under the grid mutex and then delivers the events fn queued.
func (g *Grid) locked(fn func()) {
	g.mu.Lock()
	fn()
	events := g.events
	g.events = nil
	listener := g.listener
	g.mu.Unlock()

	for _, e := range events {
		listener.OnEvent(e)
	}
}

func (g *Grid) emit(e Event) {
	g.events = append(g.events, e)
}

// SetListener replaces the change listener. nil removes it.
func (g *Grid) SetListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l == nil {
		l = nopListener{}
	}
	g.listener = l
}

// SetFourProbability changes the spawn value distribution for later spawns.
func (g *Grid) SetFourProbability(p float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fourProb = clampProbability(p)
}

// FourProbability returns the current chance of spawning a 4.
func (g *Grid) FourProbability() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fourProb
}

// InitializeGameGrid empties every cell, rebuilds the location list and
// returns the grid to StateIdle.
func (g *Grid) InitializeGameGrid() {
	g.locked(g.initializeGameGrid)
}

func (g *Grid) initializeGameGrid() {
	size := g.op.Size()
	g.cells = make(map[Location]*Tile, size*size)
	g.locations = g.locations[:0]
	g.pending = nil
	g.score = 0
	g.state = StateIdle
	for y := range size {
		for x := range size {
			loc := Loc(x, y)
			g.locations = append(g.locations, loc)
			g.cells[loc] = nil
		}
	}
	g.emit(Event{Kind: EventGameReset})
}

// StartGame places the opening tiles: one always, a second with the
// configured probability (0.8 by default), at distinct random empty locations.
// Two opening 4s are never placed; the second one becomes a 2.
func (g *Grid) StartGame() {
	g.locked(g.startGame)
}

func (g *Grid) startGame() {
	free := make([]Location, 0, len(g.locations))
	for _, loc := range g.locations {
		if g.cells[loc] == nil {
			free = append(free, loc)
		}
	}
	g.rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	if len(free) == 0 {
		return
	}

	first := newRandomTile(g.rng, g.fourProb)
	g.place(free[0], first)

	if len(free) > 1 && g.rng.Float64() < g.secondProb {
		second := newRandomTile(g.rng, g.fourProb)
		if second.Value == 4 && first.Value == 4 {
			second = NewTile(2)
		}
		g.place(free[1], second)
	}
}

// Reset clears the grid and starts a new game.
func (g *Grid) Reset() {
	g.locked(func() {
		g.initializeGameGrid()
		g.startGame()
	})
}

// Load replaces the grid contents with values (values[y][x], 0 = empty).
// The board must be square with the grid's size, and every non-zero value
// must be a power of two >= 2. The grid returns to StateIdle.
func (g *Grid) Load(values [][]int) error {
	size := g.op.Size()
	if len(values) != size {
		return fmt.Errorf("%w: %d rows, want %d", ErrBadBoard, len(values), size)
	}
	for y, row := range values {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadBoard, y, len(row), size)
		}
		for x, v := range row {
			if v != 0 && !isTileValue(v) {
				return fmt.Errorf("%w: value %d at %v", ErrBadBoard, v, Loc(x, y))
			}
		}
	}

	g.locked(func() {
		g.initializeGameGrid()
		for _, loc := range g.locations {
			if v := values[loc.Y][loc.X]; v != 0 {
				g.place(loc, NewTile(v))
			}
		}
	})
	return nil
}

// place puts t on an empty cell, assigns its id and queues TileCreated.
func (g *Grid) place(loc Location, t *Tile) {
	g.nextID++
	t.ID = g.nextID
	g.cells[loc] = t
	g.emit(Event{Kind: EventTileCreated, TileID: t.ID, Value: t.Value, From: loc, To: loc})
}

// Move slides and merges every tile towards d.
//
// It returns false when the move was refused because a previous move is
// waiting for Finish or the game is over. A move that changes nothing returns
// a result with Moved == false and leaves the grid in StateIdle; otherwise the
// grid enters StateMoving and the caller must call Finish once the
// transitions have been presented.
func (g *Grid) Move(d Direction) (*MoveResult, bool) {
	var (
		result *MoveResult
		ok     bool
	)
	g.locked(func() {
		result, ok = g.moveTiles(d)
	})
	return result, ok
}

func (g *Grid) moveTiles(d Direction) (*MoveResult, bool) {
	if g.state != StateIdle {
		g.logger.Debug("move rejected", "direction", d, "state", g.state)
		return nil, false
	}

	g.pending = g.pending[:0]
	result := &MoveResult{Direction: d}

	g.op.SortGrid(d)
	changed := g.op.TraverseGrid(func(x, y int) int {
		loc := Loc(x, y)
		tile := g.cells[loc]
		if tile == nil {
			return 0
		}

		farthest := g.findFarthestLocation(loc, d)
		next := farthest.Offset(d)
		if g.op.IsValidLocation(next) {
			if target := g.cells[next]; target != nil && target.IsMergeable(tile) && !target.IsMerged() {
				value := tile.Value
				target.Merge(tile)
				g.cells[loc] = nil
				g.pending = append(g.pending, tile)
				g.score += target.Value
				result.ScoreGained += target.Value
				result.Transitions = append(result.Transitions, Transition{
					Kind:     TransitionMerge,
					TileID:   tile.ID,
					TargetID: target.ID,
					From:     loc,
					To:       next,
					Value:    value,
					Result:   target.Value,
				})
				g.emit(Event{Kind: EventTileMerged, TileID: target.ID, AbsorbedID: tile.ID, Value: target.Value, From: loc, To: next})
				return 1
			}
		}

		if farthest != loc {
			g.cells[farthest] = tile
			g.cells[loc] = nil
			result.Transitions = append(result.Transitions, Transition{
				Kind:   TransitionSlide,
				TileID: tile.ID,
				From:   loc,
				To:     farthest,
				Value:  tile.Value,
				Result: tile.Value,
			})
			g.emit(Event{Kind: EventTileMoved, TileID: tile.ID, Value: tile.Value, From: loc, To: farthest})
			return 1
		}
		return 0
	})

	result.Moved = changed > 0
	switch {
	case result.Moved:
		g.state = StateMoving
	case g.isFull() && g.mergeMovementsAvailable() == 0:
		// Only reachable from a loaded board; normal play catches this after the spawn.
		g.gameOver()
	}
	return result, true
}

// findFarthestLocation walks from loc towards d over empty cells and returns
// the last empty cell reached, or loc itself if the neighbour is blocked.
func (g *Grid) findFarthestLocation(loc Location, d Direction) Location {
	farthest := loc
	for next := loc.Offset(d); g.op.IsValidLocation(next) && g.cells[next] == nil; next = next.Offset(d) {
		farthest = next
	}
	return farthest
}

// Finish completes the move started by Move: absorbed tiles are removed,
// merge flags cleared, a new tile spawned and game over evaluated.
func (g *Grid) Finish() error {
	var err error
	g.locked(func() {
		err = g.finishMove()
	})
	return err
}

func (g *Grid) finishMove() error {
	if g.state != StateMoving {
		return ErrNotMoving
	}

	for _, t := range g.pending {
		g.emit(Event{Kind: EventTileRemoved, TileID: t.ID, Value: t.Value})
	}
	g.pending = g.pending[:0]
	for _, t := range g.cells {
		if t != nil {
			t.ClearMerge()
		}
	}

	loc, ok := g.randomAvailableLocation()
	if !ok && g.mergeMovementsAvailable() == 0 {
		g.gameOver()
		return nil
	}
	if ok {
		g.place(loc, newRandomTile(g.rng, g.fourProb))
	}
	g.state = StateIdle

	if g.isFull() && g.mergeMovementsAvailable() == 0 {
		g.gameOver()
	}
	return nil
}

// MoveAndFinish runs both phases of a move for callers that do not animate.
func (g *Grid) MoveAndFinish(d Direction) (*MoveResult, bool) {
	var (
		result *MoveResult
		ok     bool
	)
	g.locked(func() {
		result, ok = g.moveTiles(d)
		if ok && result.Moved {
			_ = g.finishMove() // state is StateMoving here
		}
	})
	return result, ok
}

func (g *Grid) gameOver() {
	g.state = StateGameOver
	g.logger.Debug("game over", "score", g.score, "max_tile", g.maxTile())
	g.emit(Event{Kind: EventGameOver})
}

// randomAvailableLocation picks a uniformly random empty cell.
func (g *Grid) randomAvailableLocation() (Location, bool) {
	var free []Location
	for _, loc := range g.locations {
		if g.cells[loc] == nil {
			free = append(free, loc)
		}
	}
	if len(free) == 0 {
		return Location{}, false
	}
	return free[g.rng.Intn(len(free))], true
}

func (g *Grid) isFull() bool {
	for _, t := range g.cells {
		if t == nil {
			return false
		}
	}
	return true
}

// MergeMovementsAvailable returns the number of adjacent equal-valued pairs.
// Any value above zero means a merge is still possible.
func (g *Grid) MergeMovementsAvailable() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mergeMovementsAvailable()
}

// Tile returns the tile at loc, or nil. The returned tile must not be modified.
func (g *Grid) Tile(loc Location) *Tile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[loc]
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.op.Size()
}

// State returns the lifecycle state.
func (g *Grid) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IsGameOver reports whether the grid reached its terminal state.
func (g *Grid) IsGameOver() bool {
	return g.State() == StateGameOver
}

// Score returns the sum of all merge results since the last reset.
func (g *Grid) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// MaxTile returns the highest tile value, or 0 for an empty grid.
func (g *Grid) MaxTile() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxTile()
}

func (g *Grid) maxTile() int {
	maxVal := 0
	for _, t := range g.cells {
		if t != nil && t.Value > maxVal {
			maxVal = t.Value
		}
	}
	return maxVal
}

// Locations returns every location of the grid domain in row-major order.
func (g *Grid) Locations() []Location {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.locations)
}

// EmptyLocations returns the unoccupied locations in row-major order.
func (g *Grid) EmptyLocations() []Location {
	g.mu.Lock()
	defer g.mu.Unlock()
	var free []Location
	for _, loc := range g.locations {
		if g.cells[loc] == nil {
			free = append(free, loc)
		}
	}
	return free
}

// Cells returns the tile values as Cells[y][x], 0 for empty cells.
func (g *Grid) Cells() [][]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cellValues()
}

func (g *Grid) cellValues() [][]int {
	size := g.op.Size()
	out := make([][]int, size)
	for y := range size {
		out[y] = make([]int, size)
	}
	for loc, t := range g.cells {
		if t != nil {
			out[loc.Y][loc.X] = t.Value
		}
	}
	return out
}

// Snapshot returns a value copy of the grid.
func (g *Grid) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		Size:    g.op.Size(),
		Cells:   g.cellValues(),
		Score:   g.score,
		MaxTile: g.maxTile(),
		State:   g.state,
	}
}

// CheckInvariants verifies the internal consistency of the grid.
// It never repairs anything; a non-nil result wraps ErrInvariant.
func (g *Grid) CheckInvariants() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	size := g.op.Size()
	if len(g.locations) != size*size {
		return fmt.Errorf("%w: %d locations, want %d", ErrInvariant, len(g.locations), size*size)
	}
	if len(g.cells) != size*size {
		return fmt.Errorf("%w: %d cell entries, want %d", ErrInvariant, len(g.cells), size*size)
	}

	seen := make(map[*Tile]Location, len(g.cells))
	ids := make(map[uint64]Location, len(g.cells))
	for _, loc := range g.locations {
		t, ok := g.cells[loc]
		if !ok {
			return fmt.Errorf("%w: location %v missing from grid", ErrInvariant, loc)
		}
		if t == nil {
			continue
		}
		if prev, dup := seen[t]; dup {
			return fmt.Errorf("%w: tile %d at both %v and %v", ErrInvariant, t.ID, prev, loc)
		}
		seen[t] = loc
		if prev, dup := ids[t.ID]; dup {
			return fmt.Errorf("%w: id %d at both %v and %v", ErrInvariant, t.ID, prev, loc)
		}
		ids[t.ID] = loc
		if !isTileValue(t.Value) {
			return fmt.Errorf("%w: tile %d has value %d", ErrInvariant, t.ID, t.Value)
		}
		if t.IsMerged() && g.state != StateMoving {
			return fmt.Errorf("%w: tile %d still merged in state %v", ErrInvariant, t.ID, g.state)
		}
	}
	for _, t := range g.pending {
		if loc, onGrid := seen[t]; onGrid {
			return fmt.Errorf("%w: absorbed tile %d still at %v", ErrInvariant, t.ID, loc)
		}
	}
	return nil
}

func isTileValue(v int) bool {
	return v >= 2 && bits.OnesCount(uint(v)) == 1
}

func clampProbability(p float64) float64 {
	return max(0, min(1, p))
}
