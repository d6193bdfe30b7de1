package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Direction
	}{
		{"up", engine.DirUp},
		{"U", engine.DirUp},
		{" down ", engine.DirDown},
		{"d", engine.DirDown},
		{"Left", engine.DirLeft},
		{"l", engine.DirLeft},
		{"RIGHT", engine.DirRight},
		{"r", engine.DirRight},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := engine.ParseDirection(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := engine.ParseDirection("north")
	require.ErrorIs(t, err, engine.ErrUnknownDirection)
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range engine.Directions {
		require.Equal(t, d, d.Opposite().Opposite(), d.String())

		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		require.Equal(t, 0, dx+ox)
		require.Equal(t, 0, dy+oy)
	}
}

func TestLocationOffset(t *testing.T) {
	loc := engine.Loc(1, 1)
	require.Equal(t, engine.Loc(1, 0), loc.Offset(engine.DirUp))
	require.Equal(t, engine.Loc(1, 2), loc.Offset(engine.DirDown))
	require.Equal(t, engine.Loc(0, 1), loc.Offset(engine.DirLeft))
	require.Equal(t, engine.Loc(2, 1), loc.Offset(engine.DirRight))

	require.True(t, engine.Loc(3, 3).IsValidFor(4))
	require.False(t, engine.Loc(4, 0).IsValidFor(4))
	require.False(t, engine.Loc(0, -1).IsValidFor(4))
	require.Equal(t, "(1,1)", loc.String())
}
