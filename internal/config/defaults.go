package config

import (
	_ "embed"
)

//go:embed defaults/t2048.yaml
var defaultT2048YAML []byte

// DefaultT2048Config returns the default 2048 configuration.
func DefaultT2048Config() T2048Config {
	return T2048Config{
		Grid: T2048Grid{
			Size: 4,
		},
		Spawn: T2048Spawn{
			FourProbability:       0.10,
			SecondTileProbability: 0.8,
		},
		Animation: T2048Animation{
			SlideTicks: 8,
			PopTicks:   6,
		},
		Difficulty: DifficultyConfig{
			Enabled:      false,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 20000,
			},
			Scaling: ScalingConfig{
				FourProbabilityIncrease: 0.15,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "2048", "t2048":
		return defaultT2048YAML
	default:
		return nil
	}
}
