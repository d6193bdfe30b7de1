package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/core"
)

// palette maps core colours to ANSI 256 colour codes. ColorDefault has no
// entry and leaves the terminal colour alone.
var palette = map[core.Color]lipgloss.Color{
	core.ColorBlack:    lipgloss.Color("0"),
	core.ColorRed:      lipgloss.Color("1"),
	core.ColorGreen:    lipgloss.Color("2"),
	core.ColorYellow:   lipgloss.Color("3"),
	core.ColorBlue:     lipgloss.Color("4"),
	core.ColorMagenta:  lipgloss.Color("5"),
	core.ColorCyan:     lipgloss.Color("6"),
	core.ColorWhite:    lipgloss.Color("15"),
	core.ColorGray:     lipgloss.Color("245"),
	core.ColorDarkGray: lipgloss.Color("238"),
	core.ColorOrange:   lipgloss.Color("208"),

	core.ColorTile2:     lipgloss.Color("254"),
	core.ColorTile4:     lipgloss.Color("223"),
	core.ColorTile8:     lipgloss.Color("215"),
	core.ColorTile16:    lipgloss.Color("209"),
	core.ColorTile32:    lipgloss.Color("203"),
	core.ColorTile64:    lipgloss.Color("196"),
	core.ColorTile128:   lipgloss.Color("229"),
	core.ColorTile256:   lipgloss.Color("228"),
	core.ColorTile512:   lipgloss.Color("227"),
	core.ColorTile1024:  lipgloss.Color("221"),
	core.ColorTile2048:  lipgloss.Color("214"),
	core.ColorTileSuper: lipgloss.Color("93"),
}

// cellStyle returns the lipgloss style for a foreground/background pair.
func cellStyle(fg, bg core.Color) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c, ok := palette[fg]; ok {
		style = style.Foreground(c)
	}
	if c, ok := palette[bg]; ok {
		style = style.Background(c)
	}
	return style
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Fg != start.Fg || cell.Bg != start.Bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if start.Fg == core.ColorDefault && start.Bg == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(cellStyle(start.Fg, start.Bg).Render(run.String()))
		}
	}
	return sb.String()
}
