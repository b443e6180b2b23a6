package game

import (
	"image"
	"math"
	"math/rand"
	"time"
)

// Default rules.
const (
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultTotalTime      = 30 * time.Second
	DefaultInitialSpeed   = 15
	DefaultSpeedStep      = 1
	DefaultScoreStep      = 10
	DefaultSpawnMargin    = 100
	DefaultSpawnBelow     = 50
	DefaultPopFrames      = 9
	DefaultVariants       = 5
	DefaultReplayDebounce = 300 * time.Millisecond
)

// Config holds the rules of a session.
type Config struct {
	Width  int
	Height int

	// SpriteSizes holds the balloon sprite size for each variant.
	SpriteSizes []image.Point

	TotalTime    time.Duration
	InitialSpeed int
	SpeedStep    int
	ScoreStep    int

	SpawnMargin int
	SpawnBelow  int
	Start       image.Point

	ReplayButton   image.Rectangle
	ReplayDebounce time.Duration

	PopFrames int
}

// DefaultConfig returns the standard rules on a 1280x720 screen.
func DefaultConfig() Config {
	sizes := make([]image.Point, DefaultVariants)
	for i := range sizes {
		sizes[i] = image.Pt(120, 160)
	}
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		SpriteSizes:    sizes,
		TotalTime:      DefaultTotalTime,
		InitialSpeed:   DefaultInitialSpeed,
		SpeedStep:      DefaultSpeedStep,
		ScoreStep:      DefaultScoreStep,
		SpawnMargin:    DefaultSpawnMargin,
		SpawnBelow:     DefaultSpawnBelow,
		Start:          image.Pt(500, 300),
		ReplayButton:   image.Rect(540, 400, 740, 480),
		ReplayDebounce: DefaultReplayDebounce,
		PopFrames:      DefaultPopFrames,
	}
}

func (c *Config) variants() int {
	if len(c.SpriteSizes) == 0 {
		return 1
	}
	return len(c.SpriteSizes)
}

// Event is a set of things that happened during one tick.
type Event uint8

const (
	EventPop Event = 1 << iota
	EventEscape
	EventGameOver
	EventReplay
)

// Has reports whether e contains x.
func (e Event) Has(x Event) bool {
	return e&x != 0
}

// Observation is what the hand tracker saw this tick: the index fingertip in
// screen pixels and which of the five fingers (thumb first) are extended.
type Observation struct {
	Fingertip image.Point
	Fingers   [5]bool
}

// Fist reports whether every finger is folded.
func (o *Observation) Fist() bool {
	if o == nil {
		return false
	}
	for _, up := range o.Fingers {
		if up {
			return false
		}
	}
	return true
}

// Frame is the outcome of one tick, everything the renderer needs.
type Frame struct {
	Phase       Phase
	Mode        Mode
	Score       int
	HighScore   int
	Speed       int
	Remaining   int
	Balloon     Balloon
	BalloonRect image.Rectangle
	ShowBalloon bool
	// PopFrame is the pop overlay index to draw this tick, or -1.
	PopFrame  int
	PopCenter image.Point
	// Cursor is the fingertip when the mode draws it, otherwise nil.
	Cursor       *image.Point
	ReplayButton image.Rectangle
	Events       Event
}

// Round summarizes a finished round.
type Round struct {
	Mode       Mode
	Score      int
	HighScore  int
	Pops       int
	Escapes    int
	FinalSpeed int
	StartedAt  time.Time
	EndedAt    time.Time
}

// Session is one player's game, mutated once per tick.
type Session struct {
	cfg      Config
	mode     Mode
	features Features
	clock    Clock
	rng      *rand.Rand

	phase     Phase
	score     int
	speed     int
	highScore int
	start     time.Time
	remaining int

	balloon Balloon
	pop     PopAnimation

	pops    int
	escapes int
	last    Round
}

// NewSession starts a session in the playing phase.
func NewSession(cfg Config, mode Mode, clock Clock, rng *rand.Rand) *Session {
	if clock == nil {
		clock = SystemClock{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.PopFrames <= 0 {
		cfg.PopFrames = DefaultPopFrames
	}
	s := &Session{
		cfg:      cfg,
		mode:     mode,
		features: mode.Features(),
		clock:    clock,
		rng:      rng,
		phase:    PhasePlaying,
		score:    0,
		speed:    cfg.InitialSpeed,
		start:    clock.Now(),
		balloon:  Balloon{Pos: cfg.Start, Variant: rng.Intn(cfg.variants())},
		pop:      PopAnimation{Total: cfg.PopFrames},
	}
	s.remaining = s.timeRemaining()
	return s
}

// Tick advances the session by one loop iteration. obs is nil when no hand
// was detected this tick.
func (s *Session) Tick(obs *Observation) Frame {
	f := Frame{PopFrame: -1}

	switch s.phase {
	case PhasePlaying:
		s.tickPlaying(obs, &f)
	case PhaseGameOver:
		s.tickGameOver(obs, &f)
	}

	if obs != nil && s.features.Cursor {
		tip := obs.Fingertip
		f.Cursor = &tip
	}
	s.fill(&f)
	return f
}

func (s *Session) tickPlaying(obs *Observation, f *Frame) {
	s.remaining = s.timeRemaining()
	if s.remaining < 0 {
		s.endRound()
		f.Events |= EventGameOver
		return
	}

	if s.pop.Active() {
		frame, done := s.pop.Advance()
		f.PopFrame = frame
		f.PopCenter = s.pop.Center
		if done {
			s.balloon.respawn(&s.cfg, s.rng)
		}
		return
	}

	s.balloon.Pos.Y -= s.speed
	if s.balloon.Pos.Y < 0 {
		s.balloon.respawn(&s.cfg, s.rng)
		s.speed += s.cfg.SpeedStep
		s.escapes++
		f.Events |= EventEscape
	}

	if obs != nil && obs.Fingertip.In(s.balloon.Rect(s.cfg.SpriteSizes)) {
		s.pop.Start(s.balloon.Center(s.cfg.SpriteSizes))
		s.score += s.cfg.ScoreStep
		s.speed += s.cfg.SpeedStep
		s.pops++
		f.Events |= EventPop
	}
	f.ShowBalloon = true
}

func (s *Session) tickGameOver(obs *Observation, f *Frame) {
	if !s.features.Replay || obs == nil {
		return
	}
	if obs.Fist() && obs.Fingertip.In(s.cfg.ReplayButton) {
		s.clock.Sleep(s.cfg.ReplayDebounce)
		s.restart()
		f.Events |= EventReplay
	}
}

func (s *Session) endRound() {
	s.phase = PhaseGameOver
	if s.score > s.highScore {
		s.highScore = s.score
	}
	s.last = Round{
		Mode:       s.mode,
		Score:      s.score,
		HighScore:  s.highScore,
		Pops:       s.pops,
		Escapes:    s.escapes,
		FinalSpeed: s.speed,
		StartedAt:  s.start,
		EndedAt:    s.clock.Now(),
	}
}

func (s *Session) restart() {
	s.score = 0
	s.speed = s.cfg.InitialSpeed
	s.start = s.clock.Now()
	s.pops = 0
	s.escapes = 0
	s.phase = PhasePlaying
	s.remaining = s.timeRemaining()
}

// timeRemaining is total minus elapsed, floored to whole seconds.
func (s *Session) timeRemaining() int {
	left := s.cfg.TotalTime - s.clock.Now().Sub(s.start)
	return int(math.Floor(left.Seconds()))
}

func (s *Session) fill(f *Frame) {
	f.Phase = s.phase
	f.Mode = s.mode
	f.Score = s.score
	f.HighScore = s.highScore
	f.Speed = s.speed
	f.Remaining = s.remaining
	f.Balloon = s.balloon
	f.BalloonRect = s.balloon.Rect(s.cfg.SpriteSizes)
	f.ReplayButton = s.cfg.ReplayButton
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Speed returns the balloon's rise per tick.
func (s *Session) Speed() int { return s.speed }

// HighScore returns the best score of this process.
func (s *Session) HighScore() int { return s.highScore }

// Balloon returns the balloon.
func (s *Session) Balloon() Balloon { return s.balloon }

// Popping reports whether a pop animation is playing.
func (s *Session) Popping() bool { return s.pop.Active() }

// LastRound returns the summary of the most recently finished round.
func (s *Session) LastRound() Round { return s.last }

// Config returns the session rules.
func (s *Session) Config() Config { return s.cfg }
