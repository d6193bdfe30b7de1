// Package config provides YAML-based game configuration loading and
// difficulty management for the arcade platform.
package config

import (
	"errors"
	"fmt"
)

// Grid size limits accepted by Validate.
const (
	MinGridSize = 2
	MaxGridSize = 8
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid value")

// T2048Config contains all configuration for the 2048 game.
type T2048Config struct {
	Grid       T2048Grid        `yaml:"grid"`
	Spawn      T2048Spawn       `yaml:"spawn"`
	Animation  T2048Animation   `yaml:"animation"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// T2048Grid defines the board geometry.
type T2048Grid struct {
	Size int `yaml:"size"`
}

// T2048Spawn defines the random tile distribution.
type T2048Spawn struct {
	FourProbability       float64 `yaml:"four_probability"`
	SecondTileProbability float64 `yaml:"second_tile_probability"`
}

// T2048Animation defines animation lengths in ticks.
type T2048Animation struct {
	SlideTicks int `yaml:"slide_ticks"`
	PopTicks   int `yaml:"pop_ticks"`
}

// Validate checks ranges. Zero animation lengths are allowed and mean
// moves complete on the next tick.
func (c T2048Config) Validate() error {
	if c.Grid.Size < MinGridSize || c.Grid.Size > MaxGridSize {
		return fmt.Errorf("%w: grid.size %d not in [%d,%d]", ErrInvalidConfig, c.Grid.Size, MinGridSize, MaxGridSize)
	}
	if c.Spawn.FourProbability < 0 || c.Spawn.FourProbability > 1 {
		return fmt.Errorf("%w: spawn.four_probability %v not in [0,1]", ErrInvalidConfig, c.Spawn.FourProbability)
	}
	if c.Spawn.SecondTileProbability < 0 || c.Spawn.SecondTileProbability > 1 {
		return fmt.Errorf("%w: spawn.second_tile_probability %v not in [0,1]", ErrInvalidConfig, c.Spawn.SecondTileProbability)
	}
	if c.Animation.SlideTicks < 0 || c.Animation.PopTicks < 0 {
		return fmt.Errorf("%w: negative animation ticks", ErrInvalidConfig)
	}
	switch c.Difficulty.Progression.Type {
	case "", "score", "time", "none":
	default:
		return fmt.Errorf("%w: difficulty.progression.type %q", ErrInvalidConfig, c.Difficulty.Progression.Type)
	}
	return nil
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	FourProbabilityIncrease float64 `yaml:"four_probability_increase"` // added to spawn.four_probability at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
