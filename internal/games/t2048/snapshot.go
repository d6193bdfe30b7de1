package t2048

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying      GameStateType = "playing"
	StateAnimating    GameStateType = "animating"
	StateLevelCleared GameStateType = "level_cleared"
	StateGameOver     GameStateType = "game_over"
	StateWin          GameStateType = "win"
	StatePaused       GameStateType = "paused"
	StatePausedSmall  GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick    uint64
	Mode    Mode
	Level   int // 1-based, 0 in endless mode
	Target  int // 0 in endless mode
	Score   int
	Size    int
	Board   [][]int // Board[y][x]
	MaxTile int
	State   GameStateType
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.won:
		state = StateWin
	case g.grid.IsGameOver():
		state = StateGameOver
	case g.levelCleared:
		state = StateLevelCleared
	case g.paused:
		state = StatePaused
	case g.anim.active():
		state = StateAnimating
	}

	board := g.grid.Snapshot()
	level := 0
	if g.variant.Mode == ModeCampaign {
		level = g.levelIndex + 1
	}
	return Snapshot{
		Tick:    g.tick,
		Mode:    g.variant.Mode,
		Level:   level,
		Target:  g.currentTarget,
		Score:   board.Score,
		Size:    board.Size,
		Board:   board.Cells,
		MaxTile: board.MaxTile,
		State:   state,
	}
}
