package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/spectate"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// fakeGame is a registry.Game whose state the test controls.
type fakeGame struct {
	resets int
	steps  int
	moves  []core.Action
	state  core.GameState
}

func (g *fakeGame) ID() string    { return "fake" }
func (g *fakeGame) Title() string { return "Fake" }

func (g *fakeGame) Reset(core.RuntimeConfig) {
	g.resets++
	g.state = core.GameState{}
}

func (g *fakeGame) Step(in core.InputFrame) core.StepResult {
	g.steps++
	if a, ok := in.FirstDirection(); ok {
		g.moves = append(g.moves, a)
	}
	return core.StepResult{State: g.state}
}

func (g *fakeGame) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawText(0, 0, "fake game")
}

func (g *fakeGame) State() core.GameState { return g.state }

// resizingGame also follows terminal resizes.
type resizingGame struct {
	fakeGame
	w, h int
}

func (g *resizingGame) Resize(w, h int) {
	g.w, g.h = w, h
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func send(t *testing.T, m tea.Model, msgs ...tea.Msg) tea.Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{keyRune('w'), core.ActionUp, false},
		{keyRune('k'), core.ActionUp, false},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown, false},
		{keyRune('j'), core.ActionDown, false},
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{keyRune('a'), core.ActionLeft, false},
		{keyRune('h'), core.ActionLeft, false},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight, false},
		{keyRune('d'), core.ActionRight, false},
		{keyRune('l'), core.ActionRight, false},
		{keyRune('p'), core.ActionPause, false},
		{keyRune('r'), core.ActionRestart, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, false},
		{keyRune('q'), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{keyRune('x'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%s) = %v, %v; want %v, %v", tt.msg, action, quit, tt.action, tt.quit)
			}
		})
	}
}

func TestMenuActions(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{keyRune('j'), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeySpace}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{keyRune('q'), MenuActionQuit},
		{keyRune('x'), MenuActionNone},
	}

	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("MapKeyToMenuAction(%s) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "ab")
	s.DrawTextColor(2, 0, "42", core.ColorBlack, core.ColorTile4)
	s.DrawText(0, 1, "xyz")

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ab") || !strings.Contains(lines[0], "42") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "xyz   " {
		t.Errorf("uncoloured line should be plain, got %q", lines[1])
	}
}

func TestModelMovesAndSavesScoreOnce(t *testing.T) {
	store := openStore(t)
	g := &fakeGame{}

	m := NewModel(g, store, testConfig())
	m.Init()
	if g.resets != 1 {
		t.Fatalf("Init should reset the game, resets = %d", g.resets)
	}

	var tm tea.Model = m
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyLeft}, TickMsg{})
	if len(g.moves) != 1 || g.moves[0] != core.ActionLeft {
		t.Errorf("moves = %v, want [Left]", g.moves)
	}

	// Input is consumed by one tick.
	tm = send(t, tm, TickMsg{})
	if len(g.moves) != 1 {
		t.Errorf("input repeated: %v", g.moves)
	}

	g.state = core.GameState{Score: 120, MaxTile: 32, GameOver: true}
	tm = send(t, tm, TickMsg{}, TickMsg{}, TickMsg{})

	scores, err := store.TopScores("fake", 10)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one saved score, got %d", len(scores))
	}
	if scores[0].Score != 120 || scores[0].MaxTile != 32 || scores[0].Player != storage.LocalPlayer {
		t.Errorf("saved %+v", scores[0])
	}

	// R restarts after game over.
	tm = send(t, tm, keyRune('r'), TickMsg{})
	if g.resets != 2 {
		t.Errorf("restart should reset, resets = %d", g.resets)
	}
	if tm.(Model).State().GameOver {
		t.Error("state should be fresh after restart")
	}
}

func TestModelZeroScoreNotSaved(t *testing.T) {
	store := openStore(t)
	g := &fakeGame{}

	var tm tea.Model = NewModel(g, store, testConfig())
	g.state = core.GameState{GameOver: true}
	send(t, tm, TickMsg{})

	if best, _ := store.HighScore("fake"); best != 0 {
		t.Errorf("zero score saved: %d", best)
	}
}

func TestModelRestartIgnoredWhilePlaying(t *testing.T) {
	g := &fakeGame{}
	var tm tea.Model = NewModel(g, nil, testConfig())
	tm.Init()

	send(t, tm, keyRune('r'), TickMsg{})
	if g.resets != 1 {
		t.Errorf("R while playing should not reset, resets = %d", g.resets)
	}
}

func TestModelQuit(t *testing.T) {
	var tm tea.Model = NewModel(&fakeGame{}, nil, testConfig())

	tm, cmd := tm.Update(keyRune('q'))
	if cmd == nil {
		t.Error("quit should return a command")
	}
	m := tm.(Model)
	if !m.IsQuitting() {
		t.Error("model should be quitting")
	}
	if m.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModelResize(t *testing.T) {
	g := &fakeGame{}
	var tm tea.Model = NewModel(g, nil, testConfig())
	tm.Init()
	send(t, tm, tea.WindowSizeMsg{Width: 100, Height: 30})
	if g.resets != 2 {
		t.Errorf("plain games reset on resize, resets = %d", g.resets)
	}

	rg := &resizingGame{}
	tm = NewModel(rg, nil, testConfig())
	tm.Init()
	tm = send(t, tm, tea.WindowSizeMsg{Width: 100, Height: 30})
	if rg.resets != 1 {
		t.Errorf("resizable games keep running, resets = %d", rg.resets)
	}
	if rg.w != 100 || rg.h != 30 {
		t.Errorf("Resize(%d, %d), want (100, 30)", rg.w, rg.h)
	}
	if !strings.Contains(tm.View(), "fake game") {
		t.Errorf("view = %q", tm.View())
	}
}

func TestMenuListsBaseGames(t *testing.T) {
	m := NewMenuModel(nil, testConfig())
	if len(m.items) != 1 || m.items[0].GameID != "2048" {
		t.Fatalf("menu items = %+v, want just 2048", m.items)
	}

	var tm tea.Model = m
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEnter})
	if sel := tm.(MenuModel).Selected(); sel == nil || sel.GameID != "2048" {
		t.Errorf("selected = %v", sel)
	}

	tm = send(t, NewMenuModel(nil, testConfig()), tea.KeyMsg{Type: tea.KeyTab})
	if !tm.(MenuModel).WantsScoreboard() {
		t.Error("tab should open the scoreboard")
	}
}

func TestT2048ModeSelector(t *testing.T) {
	t.Run("endless", func(t *testing.T) {
		var tm tea.Model = NewT2048ModeModel(80, 24)
		tm = send(t, tm, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
		sel := tm.(T2048ModeModel).Selected()
		if sel == nil || sel.GameID != "2048_endless" || sel.Level != 0 {
			t.Errorf("selection = %+v", sel)
		}
	})

	t.Run("level", func(t *testing.T) {
		m := NewT2048ModeModel(80, 24)
		var tm tea.Model = m
		for range len(m.options) {
			tm = send(t, tm, tea.KeyMsg{Type: tea.KeyDown})
		}
		tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEnter})
		if !strings.Contains(tm.View(), "SELECT LEVEL") {
			t.Fatalf("expected level list, got:\n%s", tm.View())
		}
		tm = send(t, tm, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
		sel := tm.(T2048ModeModel).Selected()
		if sel == nil || sel.GameID != "2048" || sel.Level != 3 {
			t.Errorf("selection = %+v", sel)
		}
	})

	t.Run("back", func(t *testing.T) {
		var tm tea.Model = NewT2048ModeModel(80, 24)
		tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEsc})
		if !tm.(T2048ModeModel).WantsBack() {
			t.Error("esc should go back")
		}
	})
}

func TestScoreboardShowsScores(t *testing.T) {
	store := openStore(t)
	if _, err := store.SaveScoreWithTile("2048", "alice", 3000, 256); err != nil {
		t.Fatal(err)
	}

	m := NewScoreboardModel(store, 100, 30)
	if m.variants[m.current].ID != "2048" {
		t.Fatalf("first game = %s", m.variants[m.current].ID)
	}
	view := m.View()
	for _, want := range []string{"HIGH SCORES", "alice", "3000", "256", "Played: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("scoreboard lacks %q:\n%s", want, view)
		}
	}

	narrow := NewScoreboardModel(store, 60, 30).View()
	for _, want := range []string{"alice", "Played: 1 | Best tile: 256"} {
		if !strings.Contains(narrow, want) {
			t.Errorf("narrow scoreboard lacks %q:\n%s", want, narrow)
		}
	}

	var tm tea.Model = m
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyTab})
	if len(tm.(ScoreboardModel).scores) != 0 {
		t.Error("next game should have no scores")
	}
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := tm.(ScoreboardModel).variants[tm.(ScoreboardModel).current].ID; got != "2048" {
		t.Errorf("shift+tab should return to 2048, got %s", got)
	}
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyLeft})
	if tm.(ScoreboardModel).current != len(tm.(ScoreboardModel).variants)-1 {
		t.Error("left from the first board should wrap to the last")
	}
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEsc})
	if !tm.(ScoreboardModel).IsGoingBack() {
		t.Error("esc should go back")
	}
}

func TestSessionFlowWithSpectators(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	hub := spectate.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	var tm tea.Model = NewSessionModel(nil, testConfig(), "alice").WithSpectators(hub)
	tm.Init()

	// Menu -> mode selector -> campaign.
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEnter})
	if tm.(SessionModel).phase != phaseMode {
		t.Fatalf("phase = %v, want mode selector", tm.(SessionModel).phase)
	}
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEnter})
	if tm.(SessionModel).phase != phaseGame {
		t.Fatalf("phase = %v, want game", tm.(SessionModel).phase)
	}

	streams := hub.Streams()
	if len(streams) != 1 || !strings.HasPrefix(streams[0], "alice-") {
		t.Fatalf("streams = %v", streams)
	}
	if !strings.Contains(tm.View(), "Score") {
		t.Errorf("game view:\n%s", tm.View())
	}

	// A watcher joining before the first move gets the dealt board.
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/watch/"+streams[0], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	var greeting struct {
		Event *struct{} `json:"event"`
		Board struct {
			Size  int     `json:"size"`
			Cells [][]int `json:"cells"`
		} `json:"board"`
	}
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	_ = conn.Close()
	if greeting.Board.Size != 4 || len(greeting.Board.Cells) != 4 {
		t.Fatalf("greeting board = %+v, want a dealt 4x4 board", greeting.Board)
	}
	tiles := 0
	for _, row := range greeting.Board.Cells {
		for _, v := range row {
			if v != 0 {
				tiles++
			}
		}
	}
	if tiles == 0 {
		t.Errorf("greeting board has no tiles: %v", greeting.Board.Cells)
	}

	// Pause, then back to the menu.
	tm = send(t, tm, keyRune('p'), TickMsg{}, tea.KeyMsg{Type: tea.KeyEsc})
	if tm.(SessionModel).phase != phaseMenu {
		t.Fatalf("phase = %v, want menu", tm.(SessionModel).phase)
	}
	if len(hub.Streams()) != 0 {
		t.Errorf("stream should close with the game, got %v", hub.Streams())
	}

	// Scoreboard and back.
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyTab})
	if tm.(SessionModel).phase != phaseScoreboard {
		t.Fatalf("phase = %v, want scoreboard", tm.(SessionModel).phase)
	}
	tm = send(t, tm, tea.KeyMsg{Type: tea.KeyEsc})
	if tm.(SessionModel).phase != phaseMenu {
		t.Fatalf("phase = %v, want menu", tm.(SessionModel).phase)
	}

	_, cmd := tm.Update(keyRune('q'))
	if cmd == nil {
		t.Error("q should quit the session")
	}
}
