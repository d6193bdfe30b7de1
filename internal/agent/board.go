package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

// FormatBoard renders a snapshot as plain text:
//
//	Score: 12  Max: 8  State: idle
//	    .     2     .     .
//	    4     8     .     2
func FormatBoard(s engine.Snapshot) string {
	width := len(strconv.Itoa(max(s.MaxTile, 2))) + 2

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d  Max: %d  State: %s\n", s.Score, s.MaxTile, s.State)
	for _, row := range s.Cells {
		for _, v := range row {
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			fmt.Fprintf(&b, "%*s", width, cell)
		}
		b.WriteByte('\n')
	}
	if s.State == engine.StateGameOver {
		b.WriteString("GAME OVER\n")
	}
	return b.String()
}
