package config

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/balloonpop/internal/game"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded default does not validate: %v", err)
	}
	if cfg.GameMode() != game.ModeGuided {
		t.Errorf("mode = %q, want guided", cfg.Mode)
	}
	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 720 {
		t.Errorf("screen = %dx%d, want 1280x720", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.FPS != 30 {
		t.Errorf("fps = %d, want 30", cfg.FPS)
	}
	if cfg.Game.ReplayDebounce != 300*time.Millisecond {
		t.Errorf("replay_debounce = %v, want 300ms", cfg.Game.ReplayDebounce)
	}
	if !cfg.Camera.Mirror {
		t.Error("camera should mirror by default")
	}
	if cfg.Motion.GateGameOver {
		t.Error("game-over motion gate should be off by default so every tick is detected")
	}
	if cfg.Motion.SampleTicks != 10 {
		t.Errorf("motion.sample_ticks = %d, want 10", cfg.Motion.SampleTicks)
	}
}

func TestGameRules(t *testing.T) {
	cfg := Default()
	sizes := []image.Point{image.Pt(90, 120)}

	rules := cfg.GameRules(sizes)
	want := game.DefaultConfig()

	if rules.TotalTime != want.TotalTime {
		t.Errorf("TotalTime = %v, want %v", rules.TotalTime, want.TotalTime)
	}
	if rules.InitialSpeed != want.InitialSpeed || rules.SpeedStep != want.SpeedStep || rules.ScoreStep != want.ScoreStep {
		t.Errorf("speed/score rules differ from defaults: %+v", rules)
	}
	if rules.Start != want.Start {
		t.Errorf("Start = %v, want %v", rules.Start, want.Start)
	}
	if rules.ReplayButton != want.ReplayButton {
		t.Errorf("ReplayButton = %v, want %v", rules.ReplayButton, want.ReplayButton)
	}
	if len(rules.SpriteSizes) != 1 || rules.SpriteSizes[0] != sizes[0] {
		t.Errorf("SpriteSizes = %v", rules.SpriteSizes)
	}
}

func TestLoad_CustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := "mode: classic\nfps: 60\ngame:\n  total_seconds: 45\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GameMode() != game.ModeClassic {
		t.Errorf("mode = %q, want classic", cfg.Mode)
	}
	if cfg.FPS != 60 || cfg.Game.TotalSeconds != 45 {
		t.Errorf("fps=%d total=%d, want 60/45", cfg.FPS, cfg.Game.TotalSeconds)
	}
	// Unset keys keep their defaults.
	if cfg.Game.InitialSpeed != 15 {
		t.Errorf("initial_speed = %d, want default 15", cfg.Game.InitialSpeed)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("mode: [classic"), 0o644)
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		os.WriteFile(path, []byte("fps: 0\n"), 0o644)
		_, err := Load(path)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("error = %v, want ErrInvalid", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "arcade" }, "unknown mode"},
		{"zero width", func(c *Config) { c.Screen.Width = 0 }, "screen size"},
		{"zero total", func(c *Config) { c.Game.TotalSeconds = 0 }, "total_seconds"},
		{"still balloon", func(c *Config) { c.Game.InitialSpeed = 0 }, "initial_speed"},
		{"margin too wide", func(c *Config) { c.Game.SpawnMargin = 640 }, "spawn_margin"},
		{"no button", func(c *Config) { c.Game.ReplayButton.W = 0 }, "replay_button"},
		{"no hands", func(c *Config) { c.Detector.MaxHands = 0 }, "max_hands"},
		{"loud", func(c *Config) { c.Audio.Volume = 2 }, "volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.balloonpop/scores.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".balloonpop", "scores.db"); got != want {
		t.Errorf("ExpandHome() = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}
