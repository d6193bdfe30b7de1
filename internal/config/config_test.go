package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME and the working directory at empty temp dirs so only
// the embedded default is visible.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadT2048Default(t *testing.T) {
	isolate(t)

	cfg, err := LoadT2048("")
	if err != nil {
		t.Fatalf("LoadT2048: %v", err)
	}
	if cfg != DefaultT2048Config() {
		t.Errorf("embedded default differs from DefaultT2048Config:\n%+v\n%+v", cfg, DefaultT2048Config())
	}
}

func TestLoadT2048CustomPath(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("grid:\n  size: 5\nspawn:\n  four_probability: 0.25\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadT2048(path)
	if err != nil {
		t.Fatalf("LoadT2048: %v", err)
	}
	if cfg.Grid.Size != 5 {
		t.Errorf("Grid.Size = %d, want 5", cfg.Grid.Size)
	}
	if cfg.Spawn.FourProbability != 0.25 {
		t.Errorf("FourProbability = %v, want 0.25", cfg.Spawn.FourProbability)
	}
	// Unset keys keep their defaults.
	if cfg.Spawn.SecondTileProbability != 0.8 {
		t.Errorf("SecondTileProbability = %v, want 0.8", cfg.Spawn.SecondTileProbability)
	}
	if cfg.Animation.SlideTicks != 8 {
		t.Errorf("SlideTicks = %d, want 8", cfg.Animation.SlideTicks)
	}
}

func TestLoadT2048CustomPathErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "missing file"},
		{name: "bad yaml", content: "grid: [\n"},
		{name: "size too large", content: "grid:\n  size: 12\n", invalid: true},
		{name: "bad probability", content: "spawn:\n  four_probability: 1.5\n", invalid: true},
		{name: "bad progression", content: "difficulty:\n  progression:\n    type: moon\n", invalid: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "cfg"+string(rune('a'+i))+".yaml")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			_, err := LoadT2048(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadT2048UserConfig(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".arcade", "configs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "t2048.yaml"), []byte("grid:\n  size: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadT2048("")
	if err != nil {
		t.Fatalf("LoadT2048: %v", err)
	}
	if cfg.Grid.Size != 3 {
		t.Errorf("Grid.Size = %d, want 3", cfg.Grid.Size)
	}
}

func TestLoadT2048SkipsInvalidLocalConfig(t *testing.T) {
	isolate(t)

	if err := os.MkdirAll("configs", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("configs", "t2048.yaml"), []byte("grid:\n  size: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadT2048("")
	if err != nil {
		t.Fatalf("LoadT2048: %v", err)
	}
	if cfg.Grid.Size != 4 {
		t.Errorf("Grid.Size = %d, want default 4", cfg.Grid.Size)
	}
}

func TestApplyT2048Preset(t *testing.T) {
	tests := []struct {
		preset  DifficultyPreset
		enabled bool
		level   float64
	}{
		{DifficultyEasy, true, 0.0},
		{DifficultyNormal, true, 0.3},
		{DifficultyHard, true, 0.7},
		{DifficultyFixed, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := DefaultT2048Config()
			ApplyT2048Preset(&cfg, tt.preset)
			if cfg.Difficulty.Enabled != tt.enabled {
				t.Errorf("Enabled = %v, want %v", cfg.Difficulty.Enabled, tt.enabled)
			}
			if cfg.Difficulty.InitialLevel != tt.level {
				t.Errorf("InitialLevel = %v, want %v", cfg.Difficulty.InitialLevel, tt.level)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	for _, s := range []string{"", "easy", "normal", "hard", "fixed"} {
		if _, err := ParsePreset(s); err != nil {
			t.Errorf("ParsePreset(%q): %v", s, err)
		}
	}
	if _, err := ParsePreset("insane"); err == nil {
		t.Error("ParsePreset(insane) should fail")
	}
}

func TestDifficultyLevel(t *testing.T) {
	cfg := DifficultyConfig{
		Enabled:      true,
		InitialLevel: 0.2,
		Progression:  ProgressionConfig{Type: "score", MaxAt: 1000},
		Scaling:      ScalingConfig{FourProbabilityIncrease: 0.2},
	}
	dm := NewDifficultyManager(cfg)

	tests := []struct {
		score int
		want  float64
	}{
		{0, 0.2},
		{500, 0.6},
		{1000, 1.0},
		{5000, 1.0},
	}
	for _, tt := range tests {
		if got := dm.Level(tt.score, 0); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Level(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}

	if got := dm.FourProbability(0.1, 1000, 0); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("FourProbability at max = %v, want 0.3", got)
	}
	if got := dm.FourProbability(0.95, 1000, 0); got != 1.0 {
		t.Errorf("FourProbability must clamp to 1, got %v", got)
	}

	dm.SetEnabled(false)
	if dm.IsEnabled() {
		t.Error("IsEnabled after SetEnabled(false)")
	}
	if got := dm.Level(1000, 0); got != 0.2 {
		t.Errorf("disabled Level = %v, want initial 0.2", got)
	}
}

func TestDifficultyTimeProgression(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: "time", MaxAt: 100},
	})
	if got := dm.Level(99999, 50); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Level(ticks=50) = %v, want 0.5", got)
	}
}

func TestGetDefaultYAML(t *testing.T) {
	if len(GetDefaultYAML("2048")) == 0 {
		t.Error("missing embedded 2048 defaults")
	}
	if GetDefaultYAML("tetris") != nil {
		t.Error("unexpected defaults for unknown game")
	}
}
