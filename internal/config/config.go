// Package config provides YAML-based configuration for the game: the rules,
// the camera and detector settings, and the optional outer features.
package config

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ayusman/balloonpop/internal/capture"
	"github.com/ayusman/balloonpop/internal/detector"
	"github.com/ayusman/balloonpop/internal/game"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Mode     string         `yaml:"mode"`
	Screen   ScreenConfig   `yaml:"screen"`
	Camera   CameraConfig   `yaml:"camera"`
	FPS      int            `yaml:"fps"`
	Game     GameConfig     `yaml:"game"`
	Detector DetectorConfig `yaml:"detector"`
	Motion   MotionConfig   `yaml:"motion"`
	Assets   AssetsConfig   `yaml:"assets"`
	Audio    AudioConfig    `yaml:"audio"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Tray     TrayConfig     `yaml:"tray"`
	Log      LogConfig      `yaml:"log"`
}

// ScreenConfig is the window size.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	Device int  `yaml:"device"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Mirror bool `yaml:"mirror"`
}

// RectConfig is a screen rectangle given by its top-left corner and size.
type RectConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Rect converts to an image.Rectangle.
func (r RectConfig) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// GameConfig holds the game rules.
type GameConfig struct {
	TotalSeconds   int           `yaml:"total_seconds"`
	InitialSpeed   int           `yaml:"initial_speed"`
	SpeedStep      int           `yaml:"speed_step"`
	ScoreStep      int           `yaml:"score_step"`
	SpawnMargin    int           `yaml:"spawn_margin"`
	SpawnBelow     int           `yaml:"spawn_below"`
	StartX         int           `yaml:"start_x"`
	StartY         int           `yaml:"start_y"`
	ReplayButton   RectConfig    `yaml:"replay_button"`
	ReplayDebounce time.Duration `yaml:"replay_debounce"`
	Seed           int64         `yaml:"seed"` // 0 = time-based
}

// DetectorConfig tunes the hand detector.
type DetectorConfig struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

// MotionConfig controls skipping hand detection on a still game-over screen.
type MotionConfig struct {
	GateGameOver bool    `yaml:"gate_game_over"`
	Threshold    float64 `yaml:"threshold"` // percent of changed pixels
	HoldTicks    int     `yaml:"hold_ticks"`
	SampleTicks  int     `yaml:"sample_ticks"` // detect every n-th still frame anyway
}

// AssetsConfig points at the sprite and font directory.
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// AudioConfig controls sound cues.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// StoreConfig locates the round history database. Empty disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig enables the spectator server when Addr is set.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// TrayConfig enables the system tray menu.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate rejects configurations the game cannot run with.
func (c *Config) Validate() error {
	if _, err := game.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Screen.Width > 0 && c.Screen.Height > 0, "screen size must be positive"},
		{c.FPS > 0, "fps must be positive"},
		{c.Game.TotalSeconds > 0, "game.total_seconds must be positive"},
		{c.Game.InitialSpeed >= 1, "game.initial_speed must be at least 1"},
		{c.Game.SpeedStep >= 0, "game.speed_step must not be negative"},
		{c.Game.ScoreStep >= 0, "game.score_step must not be negative"},
		{c.Game.SpawnMargin >= 0 && 2*c.Game.SpawnMargin < c.Screen.Width, "game.spawn_margin must be under half the screen width"},
		{c.Game.ReplayButton.W > 0 && c.Game.ReplayButton.H > 0, "game.replay_button must have a size"},
		{c.Game.ReplayDebounce >= 0, "game.replay_debounce must not be negative"},
		{c.Detector.MaxHands >= 1, "detector.max_hands must be at least 1"},
		{c.Detector.MinConfidence >= 0 && c.Detector.MinConfidence <= 1, "detector.min_confidence must be within [0,1]"},
		{c.Motion.HoldTicks >= 0 && c.Motion.SampleTicks >= 0, "motion.hold_ticks and motion.sample_ticks must not be negative"},
		{c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume must be within [0,1]"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, chk.msg)
		}
	}
	return nil
}

// GameMode returns the parsed mode. Call Validate first.
func (c *Config) GameMode() game.Mode {
	m, err := game.ParseMode(c.Mode)
	if err != nil {
		return game.ModeGuided
	}
	return m
}

// GameRules converts to game rules for the given balloon sprite sizes.
func (c *Config) GameRules(spriteSizes []image.Point) game.Config {
	return game.Config{
		Width:          c.Screen.Width,
		Height:         c.Screen.Height,
		SpriteSizes:    spriteSizes,
		TotalTime:      time.Duration(c.Game.TotalSeconds) * time.Second,
		InitialSpeed:   c.Game.InitialSpeed,
		SpeedStep:      c.Game.SpeedStep,
		ScoreStep:      c.Game.ScoreStep,
		SpawnMargin:    c.Game.SpawnMargin,
		SpawnBelow:     c.Game.SpawnBelow,
		Start:          image.Pt(c.Game.StartX, c.Game.StartY),
		ReplayButton:   c.Game.ReplayButton.Rect(),
		ReplayDebounce: c.Game.ReplayDebounce,
		PopFrames:      game.DefaultPopFrames,
	}
}

// Capture converts to camera settings.
func (c *Config) Capture() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.Device,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.FPS,
	}
}

// Hands converts to detector settings.
func (c *Config) Hands() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}
