package t2048

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
	"github.com/vovakirdan/tui-2048/internal/registry"
)

const fastAnimation = "animation:\n  slide_ticks: 2\n  pop_ticks: 1\n"

// useConfig points the package at a temp config file for the test's duration.
func useConfig(t *testing.T, yaml string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t2048.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(path)
	t.Cleanup(func() {
		SetConfigPath("")
		SetDifficultyPreset("")
		SetStartLevel(0)
	})
}

func runtimeConfig(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: seed}
}

func press(g *Game, actions ...core.Action) core.StepResult {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

func idle(g *Game, ticks int) {
	for range ticks {
		g.Step(core.NewInputFrame())
	}
}

func loadBoard(t *testing.T, g *Game, board [][]int) {
	t.Helper()
	if err := g.grid.Load(board); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func countTiles(board [][]int) int {
	n := 0
	for _, row := range board {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func TestDeterministicReset(t *testing.T) {
	useConfig(t, fastAnimation)

	g1 := New()
	g1.Reset(runtimeConfig(12345))
	g2 := New()
	g2.Reset(runtimeConfig(12345))

	b1, b2 := g1.Snapshot().Board, g2.Snapshot().Board
	for y := range b1 {
		for x := range b1[y] {
			if b1[y][x] != b2[y][x] {
				t.Fatalf("same seed should produce same board:\n%v\nvs\n%v", b1, b2)
			}
		}
	}
	if n := countTiles(b1); n < 1 || n > 2 {
		t.Errorf("opening board has %d tiles, want 1 or 2", n)
	}
}

func TestMoveAnimatesBeforeSpawn(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(runtimeConfig(7))
	loadBoard(t, g, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 4},
	})

	press(g, core.ActionLeft)
	snap := g.Snapshot()
	if snap.State != StateAnimating {
		t.Fatalf("state after move = %s, want animating", snap.State)
	}
	if g.grid.State() != engine.StateMoving {
		t.Fatalf("engine state = %v, want moving", g.grid.State())
	}
	if countTiles(snap.Board) != 2 {
		t.Errorf("no tile should spawn before the slide ends, board %v", snap.Board)
	}

	// Input during the slide is ignored.
	press(g, core.ActionRight)
	if g.Snapshot().Board[0][0] != 4 {
		t.Errorf("move during slide changed the board: %v", g.Snapshot().Board)
	}

	idle(g, 1)
	snap = g.Snapshot()
	if g.grid.State() != engine.StateIdle {
		t.Fatalf("engine state after slide = %v, want idle", g.grid.State())
	}
	if countTiles(snap.Board) != 3 {
		t.Errorf("expected one spawned tile after the slide, board %v", snap.Board)
	}
	if snap.Score != 4 {
		t.Errorf("Score = %d, want 4", snap.Score)
	}
}

func TestZeroSlideTicksFinishesImmediately(t *testing.T) {
	useConfig(t, "animation:\n  slide_ticks: 0\n  pop_ticks: 0\n")
	g := NewEndless()
	g.Reset(runtimeConfig(3))
	loadBoard(t, g, [][]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	if g.grid.State() != engine.StateIdle {
		t.Fatalf("engine state = %v, want idle", g.grid.State())
	}
	if countTiles(g.Snapshot().Board) != 2 {
		t.Errorf("expected spawn on the same tick, board %v", g.Snapshot().Board)
	}
}

func TestNoOpMoveDoesNotAnimate(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(runtimeConfig(3))
	loadBoard(t, g, [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	if g.Snapshot().State != StatePlaying {
		t.Errorf("state = %s, want playing", g.Snapshot().State)
	}
	if countTiles(g.Snapshot().Board) != 2 {
		t.Error("a move that changes nothing must not spawn")
	}
}

func TestCampaignProgression(t *testing.T) {
	useConfig(t, fastAnimation)
	g := New()
	g.Reset(runtimeConfig(42))
	loadBoard(t, g, [][]int{
		{64, 64, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	idle(g, 2)

	if !g.levelCleared {
		t.Fatal("reaching 128 should clear level 1")
	}
	if !g.State().Paused {
		t.Error("level clear should pause the game")
	}
	if g.Snapshot().State != StateLevelCleared {
		t.Errorf("state = %s, want level_cleared", g.Snapshot().State)
	}

	idle(g, levelClearTicks)
	if g.levelIndex != 1 {
		t.Fatalf("should advance to level 2, got level %d", g.levelIndex+1)
	}
	snap := g.Snapshot()
	if snap.Target != 256 || snap.Score != 128 {
		t.Errorf("after advance: target %d score %d, want 256 and 128", snap.Target, snap.Score)
	}
	if g.grid.FourProbability() != campaign[1].FourProbability {
		t.Errorf("four probability = %v, want %v", g.grid.FourProbability(), campaign[1].FourProbability)
	}
}

func TestCampaignWin(t *testing.T) {
	useConfig(t, fastAnimation)
	SetStartLevel(LevelCount())
	g := New()
	g.Reset(runtimeConfig(42))
	loadBoard(t, g, [][]int{
		{4096, 4096, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	idle(g, 2+levelClearTicks)

	if !g.won {
		t.Fatal("clearing the last level should win the campaign")
	}
	if !g.State().GameOver {
		t.Error("a won campaign reports game over to the platform")
	}
	if g.Snapshot().State != StateWin {
		t.Errorf("state = %s, want win", g.Snapshot().State)
	}
}

func TestEndlessModeNoWin(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(runtimeConfig(42))
	loadBoard(t, g, [][]int{
		{4096, 4096, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	idle(g, 2)

	if g.levelCleared || g.won {
		t.Error("endless mode has no targets")
	}
	if g.State().MaxTile != 8192 {
		t.Errorf("MaxTile = %d, want 8192", g.State().MaxTile)
	}
}

func TestGameOver(t *testing.T) {
	useConfig(t, fastAnimation+"spawn:\n  four_probability: 0.0\n")
	g := NewEndless()
	g.Reset(runtimeConfig(1))
	loadBoard(t, g, [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{8, 4, 32, 4},
		{16, 2, 8, 0},
	})

	press(g, core.ActionRight)
	idle(g, 2)

	if !g.State().GameOver {
		t.Fatalf("board should be stuck:\n%v", g.Snapshot().Board)
	}
	if g.Snapshot().State != StateGameOver {
		t.Errorf("state = %s, want game_over", g.Snapshot().State)
	}

	press(g, core.ActionPause)
	if g.paused {
		t.Error("pause should be ignored after game over")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "GAME OVER") {
		t.Error("game over overlay missing")
	}
}

func TestPause(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(runtimeConfig(5))
	before := g.Snapshot().Board

	press(g, core.ActionPause)
	if !g.State().Paused || g.Snapshot().State != StatePaused {
		t.Fatal("P should pause")
	}
	press(g, core.ActionLeft)
	press(g, core.ActionDown)
	after := g.Snapshot().Board
	for y := range before {
		for x := range before[y] {
			if before[y][x] != after[y][x] {
				t.Fatal("moves while paused must be ignored")
			}
		}
	}

	press(g, core.ActionPause)
	if g.State().Paused {
		t.Error("second P should resume")
	}
}

func TestTooSmallWindow(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 10, Seed: 1})

	if !g.State().Paused {
		t.Error("tiny window should pause the game")
	}
	if g.Snapshot().State != StatePausedSmall {
		t.Errorf("state = %s, want paused_small_window", g.Snapshot().State)
	}

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Errorf("expected too-small message, got:\n%s", screen.String())
	}
}

func TestRender(t *testing.T) {
	useConfig(t, fastAnimation)
	g := New()
	g.Reset(runtimeConfig(9))
	loadBoard(t, g, [][]int{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 8, 0},
		{0, 0, 0, 0},
	})
	idle(g, 1) // let the opening pop finish

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Score: 0", "Level 1/10", "Target: 128", "Warm-up", "2048", "8"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	// The 8 tile sits in column 2, row 2 of a board centered on screen.
	boardW, _ := boardDims(4)
	x := (80-boardW)/2 + 1 + 2*cellWidth
	y := hudHeight + 1 + 2*cellHeight
	fg, bg := tileColors(8)
	found := false
	for i := 0; i < cellWidth-1; i++ {
		c := screen.GetCell(x+i, y)
		if c.Bg != bg {
			t.Fatalf("cell (%d,%d) bg = %v, want %v", x+i, y, c.Bg, bg)
		}
		if c.Rune == '8' && c.Fg == fg {
			found = true
		}
	}
	if !found {
		t.Errorf("tile 8 not drawn at (%d,%d): %q", x, y, screen.Row(y))
	}
}

func TestRenderDuringSlide(t *testing.T) {
	useConfig(t, "animation:\n  slide_ticks: 10\n  pop_ticks: 1\n")
	g := NewEndless()
	g.Reset(runtimeConfig(9))
	loadBoard(t, g, [][]int{
		{0, 0, 0, 16},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	idle(g, 5)

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	row := screen.Row(hudHeight + 1)
	if strings.Count(row, "16") != 1 {
		t.Fatalf("moving tile should be drawn exactly once, row %q", row)
	}
	boardW, _ := boardDims(4)
	left := (80-boardW)/2 + 1
	if col := utf8.RuneCountInString(row[:strings.Index(row, "16")]); col < left+cellWidth {
		t.Errorf("tile should still be in flight, row %q", row)
	}
}

func TestVariantsRegistered(t *testing.T) {
	useConfig(t, fastAnimation)

	for _, v := range Variants {
		t.Run(v.ID, func(t *testing.T) {
			if !registry.Exists(v.ID) {
				t.Fatalf("%s not registered", v.ID)
			}
			game, err := registry.Create(v.ID)
			if err != nil {
				t.Fatal(err)
			}
			if game.ID() != v.ID || game.Title() != v.Title {
				t.Errorf("got %s/%s, want %s/%s", game.ID(), game.Title(), v.ID, v.Title)
			}

			game.Reset(runtimeConfig(1))
			size := game.(*Game).Snapshot().Size
			want := v.Size
			if want == 0 {
				want = 4
			}
			if size != want {
				t.Errorf("grid size = %d, want %d", size, want)
			}
		})
	}
}

func TestStartLevel(t *testing.T) {
	useConfig(t, fastAnimation)
	SetStartLevel(3)

	g := New()
	g.Reset(runtimeConfig(1))
	snap := g.Snapshot()
	if snap.Level != 3 || snap.Target != 512 {
		t.Errorf("level %d target %d, want 3 and 512", snap.Level, snap.Target)
	}

	// The selection applies once.
	g.Reset(runtimeConfig(1))
	if g.Snapshot().Level != 1 {
		t.Errorf("second reset level = %d, want 1", g.Snapshot().Level)
	}
}

func TestInstanceStartLevel(t *testing.T) {
	useConfig(t, fastAnimation)

	g := New()
	g.SetStartLevel(5)
	g.Reset(runtimeConfig(1))
	if g.Snapshot().Level != 5 {
		t.Errorf("level = %d, want 5", g.Snapshot().Level)
	}

	g.Reset(runtimeConfig(1))
	if g.Snapshot().Level != 1 {
		t.Errorf("second reset level = %d, want 1", g.Snapshot().Level)
	}
}

func TestResizeKeepsGame(t *testing.T) {
	useConfig(t, fastAnimation)
	g := NewEndless()
	g.Reset(runtimeConfig(4))
	before := g.BoardSnapshot()

	g.Resize(20, 10)
	if !g.State().Paused {
		t.Error("shrinking the window should pause")
	}

	rc := runtimeConfig(4)
	g.Resize(rc.ScreenW, rc.ScreenH)
	if g.State().Paused {
		t.Error("growing the window back should resume")
	}

	after := g.BoardSnapshot()
	for y := range before.Cells {
		for x := range before.Cells[y] {
			if before.Cells[y][x] != after.Cells[y][x] {
				t.Fatalf("board changed at (%d,%d) across resize", x, y)
			}
		}
	}
}

func TestDifficultyRaisesFourProbability(t *testing.T) {
	useConfig(t, fastAnimation+`
spawn:
  four_probability: 0.1
difficulty:
  enabled: true
  initial_level: 0.0
  progression:
    type: score
    max_at: 100
  scaling:
    four_probability_increase: 0.5
`)
	g := NewEndless()
	g.Reset(runtimeConfig(1))
	loadBoard(t, g, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	idle(g, 2)

	if got := g.grid.FourProbability(); math.Abs(got-0.12) > 1e-9 {
		t.Errorf("four probability after scoring 4 = %v, want 0.12", got)
	}
}

func TestDifficultyPreset(t *testing.T) {
	useConfig(t, fastAnimation)
	SetDifficultyPreset("hard")

	g := NewEndless()
	g.Reset(runtimeConfig(1))
	// hard starts at level 0.7: 0.10 + 0.7*0.15
	if got := g.grid.FourProbability(); math.Abs(got-0.205) > 1e-9 {
		t.Errorf("four probability = %v, want 0.205", got)
	}
}

func TestListenerSurvivesReset(t *testing.T) {
	useConfig(t, fastAnimation)

	var created int
	g := NewEndless()
	g.SetListener(engine.ListenerFunc(func(e engine.Event) {
		if e.Kind == engine.EventTileCreated {
			created++
		}
	}))
	g.Reset(runtimeConfig(1))
	first := created
	if first == 0 {
		t.Fatal("listener should see the opening tiles")
	}

	g.Reset(runtimeConfig(2))
	if created == first {
		t.Error("listener lost after Reset")
	}
}

func TestLevels(t *testing.T) {
	if LevelCount() != 10 {
		t.Errorf("LevelCount() = %d, want 10", LevelCount())
	}
	levels := Levels()
	if levels[0].Name != "Warm-up" || levels[0].Target != 128 {
		t.Errorf("first level = %+v", levels[0])
	}
	if _, ok := LevelAt(10); ok {
		t.Error("LevelAt(10) should be out of range")
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Target < levels[i-1].Target {
			t.Errorf("level %d target decreases", levels[i].Number)
		}
	}
}
