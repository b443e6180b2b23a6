// Package app wires the camera, hand tracker, game session, renderer and
// display into the fixed-rate main loop, and fans game events out to the
// optional audio, store, tray and spectator components.
package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/balloonpop/internal/audio"
	"github.com/ayusman/balloonpop/internal/capture"
	"github.com/ayusman/balloonpop/internal/detector"
	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/internal/render"
	"github.com/ayusman/balloonpop/internal/store"
)

// DefaultFPS is the loop rate when none is configured.
const DefaultFPS = 30

// DefaultSampleTicks is how often a closed motion gate still lets one frame
// through to the detector.
const DefaultSampleTicks = 10

// FramePublisher receives every composed screen.
type FramePublisher interface {
	Publish(img gocv.Mat)
}

// SnapshotPublisher receives the game state of every tick.
type SnapshotPublisher interface {
	Broadcast(snap game.Snapshot)
}

// ScoreBoard shows the result of the last finished round.
type ScoreBoard interface {
	SetScores(last, high int)
}

// MotionConfig controls the motion gate on the game-over screen. While the
// gate is closed every Sample-th frame is still analyzed, and the gate is
// bypassed as long as the last detection found a hand.
type MotionConfig struct {
	Gate      bool
	Threshold float64
	Hold      int
	Sample    int
}

// Config holds the loop settings and the components it drives. Camera,
// Detector, Renderer and Display are required; the rest are optional.
type Config struct {
	Mode   game.Mode
	Rules  game.Config
	FPS    int
	Mirror bool
	Motion MotionConfig
	Seed   int64

	Camera   capture.Camera
	Detector detector.Detector
	Renderer *render.Renderer
	Display  render.Display

	Audio  audio.Player
	Store  *store.Store
	Frames FramePublisher
	Events SnapshotPublisher
	Scores ScoreBoard
	Clock  game.Clock
	Logger *log.Logger
}

// App runs one game session.
type App struct {
	config  Config
	logger  *log.Logger
	rng     *rand.Rand
	motion  *capture.MotionGate
	session *game.Session
	ticks   uint64
	mu      sync.Mutex

	// Motion gate state, touched only by Step.
	handSeen bool
	skipped  int
}

// New creates an App. It does not open the camera.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Detector == nil:
		return nil, errors.New("app: detector is required")
	case config.Renderer == nil:
		return nil, errors.New("app: renderer is required")
	case config.Display == nil:
		return nil, errors.New("app: display is required")
	}

	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.Mode == "" {
		config.Mode = game.ModeGuided
	}
	if config.Audio == nil {
		config.Audio = audio.Nop{}
	}
	if config.Clock == nil {
		config.Clock = game.SystemClock{}
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	hold := config.Motion.Hold
	if hold <= 0 {
		hold = capture.DefaultHoldTicks
	}
	if config.Motion.Sample <= 0 {
		config.Motion.Sample = DefaultSampleTicks
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &App{
		config: config,
		logger: config.Logger.With("component", "app"),
		rng:    rand.New(rand.NewSource(seed)),
		motion: capture.NewMotionGate(config.Motion.Threshold, hold),
	}, nil
}

// NewDetector returns a MediaPipe detector, or a MockDetector with no hands
// when the helper script is not installed.
func NewDetector(config detector.Config, logger *log.Logger) detector.Detector {
	if logger == nil {
		logger = log.Default()
	}
	mp, err := detector.NewMediaPipeDetector(config, logger)
	if err != nil {
		logger.Warn("MediaPipe not available, using mock detector", "err", err)
		return detector.NewMockDetector()
	}
	logger.Info("using MediaPipe hand detection", "max_hands", config.MaxHands, "min_confidence", config.MinConfidence)
	return mp
}

// Session returns the current session, or nil before the first tick.
func (a *App) Session() *game.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Ticks returns the number of completed ticks.
func (a *App) Ticks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticks
}

// SetScoreBoard replaces the score board shown after each round.
func (a *App) SetScoreBoard(b ScoreBoard) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config.Scores = b
}

// SetSoundEnabled switches audio cues and persists the choice.
func (a *App) SetSoundEnabled(on bool) {
	a.config.Audio.SetEnabled(on)
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingSoundEnabled, on); err != nil {
			a.logger.Warn("failed to save sound setting", "err", err)
		}
	}
	a.logger.Info("sound toggled", "enabled", on)
}

// Close releases the detector and the motion gate. The camera is closed by Run.
func (a *App) Close() error {
	a.motion.Close()
	if err := a.config.Detector.Close(); err != nil {
		return fmt.Errorf("close detector: %w", err)
	}
	return nil
}
