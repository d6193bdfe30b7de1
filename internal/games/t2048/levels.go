// Package t2048 implements the classic 2048 puzzle game with campaign and endless modes.
package t2048

// Level is a campaign stage: reach Target to clear it.
type Level struct {
	Number          int // 1-based
	Name            string
	Target          int
	FourProbability float64 // chance a spawned tile is a 4
}

// campaign grows the target up to 8192 and then tightens the spawn
// distribution instead, since 16384 is out of reach for most 4x4 games.
var campaign = []Level{
	{Number: 1, Name: "Warm-up", Target: 128, FourProbability: 0.10},
	{Number: 2, Name: "Getting Started", Target: 256, FourProbability: 0.10},
	{Number: 3, Name: "Building Momentum", Target: 512, FourProbability: 0.10},
	{Number: 4, Name: "The Climb", Target: 1024, FourProbability: 0.10},
	{Number: 5, Name: "Classic 2048", Target: 2048, FourProbability: 0.10},
	{Number: 6, Name: "Beyond Limits", Target: 4096, FourProbability: 0.12},
	{Number: 7, Name: "Master Class", Target: 8192, FourProbability: 0.15},
	{Number: 8, Name: "Expert Challenge", Target: 8192, FourProbability: 0.18},
	{Number: 9, Name: "Grandmaster", Target: 8192, FourProbability: 0.20},
	{Number: 10, Name: "Ultimate Champion", Target: 8192, FourProbability: 0.25},
}

// LevelCount returns the number of campaign levels.
func LevelCount() int {
	return len(campaign)
}

// LevelAt returns the level at a 0-based index.
func LevelAt(index int) (Level, bool) {
	if index < 0 || index >= len(campaign) {
		return Level{}, false
	}
	return campaign[index], true
}

// Levels returns a copy of the campaign.
func Levels() []Level {
	out := make([]Level, len(campaign))
	copy(out, campaign)
	return out
}
