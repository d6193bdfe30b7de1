package t2048

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

const (
	cellWidth  = 7 // one border column + six for the value
	cellHeight = 2 // one border row + one for the value
	hudHeight  = 3
)

// boardDims returns the board frame size in screen cells.
func boardDims(size int) (w, h int) {
	return size*cellWidth + 1, size*cellHeight + 1
}

// layoutSize returns the smallest screen that fits the HUD, board and controls line.
func layoutSize(size int) (w, h int) {
	bw, bh := boardDims(size)
	return max(bw, len(controlsHint)), hudHeight + bh + 1
}

const controlsHint = "Arrows/WASD/HJKL: Move  P: Pause  Q: Quit"

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall || g.grid == nil {
		g.renderTooSmall(dst)
		return
	}

	size := g.gridSize()
	boardW, boardH := boardDims(size)
	board := core.NewRect((g.screenW-boardW)/2, hudHeight, boardW, boardH)

	g.renderHUD(dst, board)
	renderFrame(dst, board, size)
	g.renderTiles(dst, board)
	dst.DrawTextCenteredColor(board.Bottom(), controlsHint, core.ColorGray, core.ColorDefault)
	g.renderOverlays(dst, board)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	w, h := layoutSize(g.gridSize())
	y := g.screenH / 2
	dst.DrawTextCenteredColor(y-1, "Window too small", core.ColorYellow, core.ColorDefault)
	dst.DrawTextCentered(y, fmt.Sprintf("Need %dx%d, have %dx%d", w, h, g.screenW, g.screenH))
	dst.DrawTextCenteredColor(y+1, "Please resize terminal", core.ColorGray, core.ColorDefault)
}

func (g *Game) renderHUD(dst *core.Screen, board core.Rect) {
	hud := core.Centered(max(board.W, len(controlsHint)), hudHeight, g.screenW, hudHeight)

	title := "2048"
	dst.DrawTextColor(hud.X+(hud.W-len(title))/2, 0, title, core.ColorTile2048, core.ColorDefault)

	dst.DrawText(hud.X, 1, fmt.Sprintf("Score: %d", g.grid.Score()))

	var info, mode string
	if g.variant.Mode == ModeCampaign {
		level, _ := LevelAt(g.levelIndex)
		info = fmt.Sprintf("Target: %d", g.currentTarget)
		mode = fmt.Sprintf("Level %d/%d: %s", g.levelIndex+1, LevelCount(), level.Name)
	} else {
		size := g.gridSize()
		info = fmt.Sprintf("Max: %d", g.grid.MaxTile())
		mode = fmt.Sprintf("Endless %dx%d", size, size)
	}
	dst.DrawText(hud.Right()-len(info), 1, info)
	dst.DrawTextColor(hud.X+(hud.W-len(mode))/2, 2, mode, core.ColorGray, core.ColorDefault)
}

// renderFrame draws the grid lines.
func renderFrame(dst *core.Screen, board core.Rect, size int) {
	for row := 0; row <= size; row++ {
		for col := 0; col <= size; col++ {
			px := board.X + col*cellWidth
			py := board.Y + row*cellHeight
			dst.SetCell(px, py, core.Cell{Rune: junction(row, col, size), Fg: core.ColorDarkGray})

			if col < size {
				for i := 1; i < cellWidth; i++ {
					dst.SetCell(px+i, py, core.Cell{Rune: '─', Fg: core.ColorDarkGray})
				}
			}
			if row < size {
				for i := 1; i < cellHeight; i++ {
					dst.SetCell(px, py+i, core.Cell{Rune: '│', Fg: core.ColorDarkGray})
				}
			}
		}
	}
}

func junction(row, col, size int) rune {
	top, bottom := row == 0, row == size
	left, right := col == 0, col == size
	switch {
	case top && left:
		return '┌'
	case top && right:
		return '┐'
	case bottom && left:
		return '└'
	case bottom && right:
		return '┘'
	case top:
		return '┬'
	case bottom:
		return '┴'
	case left:
		return '├'
	case right:
		return '┤'
	default:
		return '┼'
	}
}

// renderTiles draws resting tiles from the engine and, during a slide, the
// moving tiles at their interpolated positions. The engine already holds the
// post-move board, so destinations of running transitions are skipped.
func (g *Game) renderTiles(dst *core.Screen, board core.Rect) {
	slides := g.anim.slides
	covered := make(map[engine.Location]bool, len(slides))
	movedIDs := make(map[uint64]bool, len(slides))
	for _, t := range slides {
		covered[t.To] = true
		if t.Kind == engine.TransitionSlide {
			movedIDs[t.TileID] = true
		}
	}

	for y, row := range g.grid.Cells() {
		for x, v := range row {
			loc := engine.Loc(x, y)
			if v == 0 || covered[loc] {
				continue
			}
			shrink := g.anim.popping(loc) && g.anim.progress() < 0.5
			drawTile(dst, board, float64(x), float64(y), v, shrink)
		}
	}

	// Merge targets that did not move show their old value until the merge lands.
	for _, t := range slides {
		if t.Kind == engine.TransitionMerge && !movedIDs[t.TargetID] {
			drawTile(dst, board, float64(t.To.X), float64(t.To.Y), t.Value, false)
		}
	}

	p := g.anim.progress()
	for _, t := range slides {
		x, y := lerp(t, p)
		drawTile(dst, board, x, y, t.Value, false)
	}
}

// drawTile paints one tile at fractional board coordinates.
func drawTile(dst *core.Screen, board core.Rect, fx, fy float64, value int, shrink bool) {
	inner := core.NewRect(
		board.X+1+int(math.Round(fx*cellWidth)),
		board.Y+1+int(math.Round(fy*cellHeight)),
		cellWidth-1,
		cellHeight-1,
	)
	fg, bg := tileColors(value)
	if shrink {
		inner = core.NewRect(inner.X+1, inner.Y, inner.W-2, inner.H)
	}
	dst.FillRect(inner, ' ', fg, bg)

	label := strconv.Itoa(value)
	pad := max(0, (inner.W-len(label))/2)
	dst.DrawTextColor(inner.X+pad, inner.Y+inner.H/2, label, fg, bg)
}

// tileColors returns the palette entries for a tile value.
func tileColors(value int) (fg, bg core.Color) {
	switch value {
	case 2:
		return core.ColorBlack, core.ColorTile2
	case 4:
		return core.ColorBlack, core.ColorTile4
	case 8:
		return core.ColorWhite, core.ColorTile8
	case 16:
		return core.ColorWhite, core.ColorTile16
	case 32:
		return core.ColorWhite, core.ColorTile32
	case 64:
		return core.ColorWhite, core.ColorTile64
	case 128:
		return core.ColorBlack, core.ColorTile128
	case 256:
		return core.ColorBlack, core.ColorTile256
	case 512:
		return core.ColorBlack, core.ColorTile512
	case 1024:
		return core.ColorBlack, core.ColorTile1024
	case 2048:
		return core.ColorBlack, core.ColorTile2048
	default:
		return core.ColorWhite, core.ColorTileSuper
	}
}

func (g *Game) renderOverlays(dst *core.Screen, board core.Rect) {
	switch {
	case g.paused:
		drawOverlay(dst, board, core.ColorCyan, "PAUSED", "Press P to resume")
	case g.levelCleared:
		reached := fmt.Sprintf("Target %d reached!", g.currentTarget)
		if g.levelIndex >= LevelCount()-1 {
			drawOverlay(dst, board, core.ColorGreen, reached, "Final level complete!")
		} else {
			drawOverlay(dst, board, core.ColorGreen, reached, fmt.Sprintf("Next: Level %d", g.levelIndex+2))
		}
	case g.won:
		drawOverlay(dst, board, core.ColorTile2048, "CAMPAIGN COMPLETE!", "You are the champion!", "Press R to restart")
	case g.grid.IsGameOver():
		drawOverlay(dst, board, core.ColorRed, "GAME OVER", fmt.Sprintf("Max tile: %d", g.grid.MaxTile()), "Press R to restart")
	}
}

// drawOverlay draws a boxed message centered on the board.
func drawOverlay(dst *core.Screen, board core.Rect, fg core.Color, lines ...string) {
	width := 0
	for _, line := range lines {
		width = max(width, len(line))
	}

	box := core.NewRect(0, 0, width+4, len(lines)+2)
	box.X = board.X + (board.W-box.W)/2
	box.Y = board.Y + (board.H-box.H)/2

	dst.FillRect(box, ' ', core.ColorDefault, core.ColorDefault)
	dst.DrawBox(box, fg)
	for i, line := range lines {
		x := box.X + (box.W-len(line))/2
		dst.DrawTextColor(x, box.Y+1+i, line, fg, core.ColorDefault)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return controlsHint
}
