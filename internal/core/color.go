package core

// Color is a palette entry for a screen cell. The platform layer maps it to
// a terminal colour; ColorDefault leaves the terminal's own colour in place.
type Color uint8

// Palette entries. The Tile* entries follow the classic 2048 progression.
const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
	ColorDarkGray
	ColorOrange

	ColorTile2
	ColorTile4
	ColorTile8
	ColorTile16
	ColorTile32
	ColorTile64
	ColorTile128
	ColorTile256
	ColorTile512
	ColorTile1024
	ColorTile2048
	ColorTileSuper // anything above 2048
)
