package t2048

import (
	"math/rand"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
	"github.com/vovakirdan/tui-2048/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeEndless  Mode = "endless"
)

// levelClearTicks is how long the "target reached" overlay stays up (2s at 60fps).
const levelClearTicks = 120

// Variant is a registered flavour of the game.
type Variant struct {
	ID    string
	Title string
	Mode  Mode
	Size  int // 0 = grid.size from config
}

// Variants lists every registered game id.
var Variants = []Variant{
	{ID: "2048", Title: "2048", Mode: ModeCampaign},
	{ID: "2048_endless", Title: "2048 (Endless)", Mode: ModeEndless},
	{ID: "2048_3x3", Title: "2048 (3x3)", Mode: ModeEndless, Size: 3},
	{ID: "2048_5x5", Title: "2048 (5x5)", Mode: ModeEndless, Size: 5},
}

func init() {
	for _, v := range Variants {
		registry.Register(v.ID, func() registry.Game {
			return NewVariant(v)
		})
	}
}

// Set from the CLI before games are created.
var (
	configPath         string
	difficultyPreset   config.DifficultyPreset
	selectedStartLevel int
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names select the
// config file's own difficulty block.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil {
		p = ""
	}
	difficultyPreset = p
}

// SetStartLevel sets the starting campaign level (1-10). 0 means start from the beginning.
// It applies to the next Reset only.
func SetStartLevel(level int) {
	selectedStartLevel = level
}

// GetStartLevel returns the currently selected start level.
func GetStartLevel() int {
	return selectedStartLevel
}

// Game adapts the grid engine to the arcade platform: it maps actions to
// moves, drives the slide/pop animation and signals move completion to the
// engine when the slide animation ends.
type Game struct {
	variant Variant
	cfg     config.T2048Config

	grid       *engine.Grid
	listener   engine.Listener // external, e.g. a spectator stream
	difficulty *config.DifficultyManager
	anim       animator
	spawned    []engine.Location // tiles created by the last Finish

	tick          uint64
	levelIndex    int
	currentTarget int
	baseFourProb  float64

	screenW int
	screenH int

	levelCleared bool
	clearTicks   int
	won          bool
	paused       bool
	tooSmall     bool

	startLevel int // applied by the next Reset
}

// New creates a new campaign mode 2048 game.
func New() *Game {
	return NewVariant(Variants[0])
}

// NewEndless creates a new endless mode 2048 game.
func NewEndless() *Game {
	return NewVariant(Variants[1])
}

// NewVariant creates a game for a registered variant.
func NewVariant(v Variant) *Game {
	return &Game{variant: v}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.variant.ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.variant.Title
}

// Mode returns the game mode.
func (g *Game) Mode() Mode {
	return g.variant.Mode
}

// SetListener registers a listener for engine events. It survives Reset.
func (g *Game) SetListener(l engine.Listener) {
	g.listener = l
	if g.grid != nil {
		g.grid.SetListener(g.engineListener())
	}
}

func (g *Game) engineListener() engine.Listener {
	record := engine.ListenerFunc(func(e engine.Event) {
		if e.Kind == engine.EventTileCreated {
			g.spawned = append(g.spawned, e.To)
		}
	})
	return engine.MultiListener{record, g.listener}
}

// SetStartLevel picks the campaign level (1-10) the next Reset starts at.
func (g *Game) SetStartLevel(level int) {
	g.startLevel = level
}

// Resize records a new terminal size without restarting the game.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	if g.grid != nil {
		g.checkScreenSize()
	}
}

// BoardSnapshot returns a copy of the current board.
func (g *Game) BoardSnapshot() engine.Snapshot {
	if g.grid == nil {
		return engine.Snapshot{}
	}
	return g.grid.Snapshot()
}

// Reset initializes/restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	cfg, err := config.LoadT2048(configPath)
	if err != nil {
		cfg = config.DefaultT2048Config()
	}
	if difficultyPreset != "" {
		config.ApplyT2048Preset(&cfg, difficultyPreset)
	}
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)

	g.tick = 0
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.levelCleared = false
	g.clearTicks = 0
	g.won = false
	g.paused = false
	g.anim = animator{slideTicks: cfg.Animation.SlideTicks, popTicks: cfg.Animation.PopTicks}
	g.spawned = nil

	g.levelIndex = 0
	start := g.startLevel
	g.startLevel = 0
	if start == 0 && selectedStartLevel > 0 {
		start = selectedStartLevel
		selectedStartLevel = 0
	}
	if g.variant.Mode == ModeCampaign && start > 0 && start <= LevelCount() {
		g.levelIndex = start - 1
	}
	g.grid = nil
	g.loadLevel()

	g.grid = engine.New(
		engine.WithSize(g.gridSize()),
		engine.WithRand(rand.New(rand.NewSource(rc.Seed))),
		engine.WithFourProbability(g.fourProbability()),
		engine.WithSecondTileProbability(cfg.Spawn.SecondTileProbability),
		engine.WithListener(g.engineListener()),
	)
	g.grid.StartGame()
	g.startPop()

	g.checkScreenSize()
}

func (g *Game) gridSize() int {
	if g.variant.Size > 0 {
		return g.variant.Size
	}
	return g.cfg.Grid.Size
}

// loadLevel sets up the current level parameters.
func (g *Game) loadLevel() {
	if g.variant.Mode == ModeEndless {
		g.currentTarget = 0
		g.baseFourProb = g.cfg.Spawn.FourProbability
		return
	}

	level, ok := LevelAt(g.levelIndex)
	if !ok {
		level, _ = LevelAt(LevelCount() - 1)
	}
	g.currentTarget = level.Target
	g.baseFourProb = level.FourProbability
}

// fourProbability applies difficulty scaling to the level's base probability.
func (g *Game) fourProbability() float64 {
	score := 0
	if g.grid != nil {
		score = g.grid.Score()
	}
	return g.difficulty.FourProbability(g.baseFourProb, score, int(g.tick))
}

func (g *Game) checkScreenSize() {
	w, h := layoutSize(g.gridSize())
	g.tooSmall = g.screenW < w || g.screenH < h
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.grid.IsGameOver() && !g.won {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if g.anim.active() {
		if g.anim.advance() {
			g.completeMove()
		}
		return core.StepResult{State: g.State()}
	}
	g.anim.advance() // pop runs alongside input

	if g.levelCleared {
		g.clearTicks++
		if g.clearTicks >= levelClearTicks {
			g.advanceLevel()
		}
		return core.StepResult{State: g.State()}
	}

	if g.grid.IsGameOver() || g.won {
		// Restart is handled by the platform calling Reset.
		return core.StepResult{State: g.State()}
	}

	if a, ok := in.FirstDirection(); ok {
		g.move(actionDirection(a))
	}
	return core.StepResult{State: g.State()}
}

func actionDirection(a core.Action) engine.Direction {
	switch a {
	case core.ActionUp:
		return engine.DirUp
	case core.ActionDown:
		return engine.DirDown
	case core.ActionLeft:
		return engine.DirLeft
	default:
		return engine.DirRight
	}
}

// move starts a move; the engine refuses it while a previous one is unfinished.
func (g *Game) move(d engine.Direction) {
	res, ok := g.grid.Move(d)
	if !ok || !res.Moved {
		return
	}
	g.anim.startSlide(res.Transitions)
	if !g.anim.active() {
		g.completeMove()
	}
}

// completeMove is the end of the slide animation: the engine spawns the next
// tile and decides whether the game is over.
func (g *Game) completeMove() {
	g.spawned = g.spawned[:0]
	if err := g.grid.Finish(); err != nil {
		return
	}
	g.startPop()

	if g.difficulty.IsEnabled() {
		g.grid.SetFourProbability(g.fourProbability())
	}

	if g.variant.Mode == ModeCampaign && g.currentTarget > 0 && g.grid.MaxTile() >= g.currentTarget {
		g.levelCleared = true
		g.clearTicks = 0
	}
}

// startPop animates the tiles placed by the last engine call.
func (g *Game) startPop() {
	if len(g.spawned) == 0 {
		return
	}
	g.anim.startPop(g.spawned)
	g.spawned = nil
}

// advanceLevel moves to the next level; the board and score carry over.
func (g *Game) advanceLevel() {
	g.levelCleared = false
	g.clearTicks = 0

	if g.levelIndex >= LevelCount()-1 {
		g.won = true
		return
	}

	g.levelIndex++
	g.loadLevel()
	g.grid.SetFourProbability(g.fourProbability())

	// A big merge can clear several targets at once.
	if g.grid.MaxTile() >= g.currentTarget {
		g.levelCleared = true
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.grid == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.grid.Score(),
		MaxTile:  g.grid.MaxTile(),
		GameOver: g.grid.IsGameOver() || g.won,
		Paused:   g.paused || g.tooSmall || g.levelCleared,
	}
}
