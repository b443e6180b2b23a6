package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/balloonpop/internal/audio"
	"github.com/ayusman/balloonpop/internal/capture"
	"github.com/ayusman/balloonpop/internal/detector"
	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/internal/store"
)

// Run opens the camera and ticks at the configured FPS until ctx is done,
// the display is closed, or a tick fails. Closing the display is not an error.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.config.Camera.Close(); err != nil {
			a.logger.Warn("error closing camera", "err", err)
		}
	}()
	a.logger.Info("camera open", "fps", a.config.FPS, "mode", a.config.Mode)

	// The round clock starts once the camera is delivering.
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			more, err := a.Step()
			if err != nil {
				return err
			}
			if !more {
				a.logger.Info("display closed")
				return nil
			}
		}
	}
}

// Step runs one loop iteration: read and mirror a frame, detect the hand,
// advance the session, dispatch events, compose and show the screen. It
// reports false once the display has been closed.
func (a *App) Step() (bool, error) {
	if a.config.Display.Closed() {
		return false, nil
	}

	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	a.mu.Lock()
	if a.session == nil {
		a.session = game.NewSession(a.config.Rules, a.config.Mode, a.config.Clock, a.rng)
	}
	session := a.session
	a.mu.Unlock()

	var obs *game.Observation
	if a.shouldDetect(session, frame) {
		hands, err := a.config.Detector.Detect(frame)
		if err != nil {
			return false, fmt.Errorf("detect hands: %w", err)
		}
		a.handSeen = len(hands) > 0
		screen := a.config.Renderer.Size()
		obs = detector.Observe(hands, screen)
	}

	f := session.Tick(obs)

	a.mu.Lock()
	a.ticks++
	tick := a.ticks
	a.mu.Unlock()

	a.dispatch(session, f)

	out := a.config.Renderer.Compose(*frame, f)
	a.config.Display.Show(*out)

	if a.config.Frames != nil {
		a.config.Frames.Publish(*out)
	}
	if a.config.Events != nil {
		a.config.Events.Broadcast(f.Snapshot(tick, a.config.Clock.Now()))
	}

	return !a.config.Display.Closed(), nil
}

// shouldDetect skips the hand tracker where its result cannot matter: on a
// terminal game-over screen, and on a still replay screen when gated. A hand
// seen on the previous detection keeps the tracker running, and a closed
// gate still samples one frame in Motion.Sample.
func (a *App) shouldDetect(session *game.Session, frame *gocv.Mat) bool {
	if session.Phase() == game.PhasePlaying {
		return true
	}
	if !session.Mode().Features().Replay {
		return false
	}
	if !a.config.Motion.Gate {
		return true
	}
	open, _ := a.motion.Open(frame)
	if open || a.handSeen {
		a.skipped = 0
		return true
	}
	a.skipped++
	if a.skipped >= a.config.Motion.Sample {
		a.skipped = 0
		return true
	}
	return false
}

func (a *App) dispatch(session *game.Session, f game.Frame) {
	if f.Events.Has(game.EventPop) {
		a.config.Audio.Play(audio.CuePop)
		a.logger.Debug("pop", "score", f.Score, "speed", f.Speed)
	}
	if f.Events.Has(game.EventEscape) {
		a.logger.Debug("escape", "speed", f.Speed)
	}
	if f.Events.Has(game.EventGameOver) {
		a.config.Audio.Play(audio.CueGameOver)
		a.motion.Reset()
		a.skipped = 0
		a.finishRound(session.LastRound())
	}
	if f.Events.Has(game.EventReplay) {
		a.config.Audio.Play(audio.CueReplay)
		a.logger.Info("replay")
	}
}

func (a *App) finishRound(r game.Round) {
	a.logger.Info("game over", "score", r.Score, "high_score", r.HighScore, "pops", r.Pops, "escapes", r.Escapes)

	a.mu.Lock()
	scores := a.config.Scores
	a.mu.Unlock()
	if scores != nil {
		scores.SetScores(r.Score, r.HighScore)
	}

	if a.config.Store == nil {
		return
	}
	rd := store.NewRound(r)
	if err := a.config.Store.Rounds().Create(rd); err != nil {
		a.logger.Warn("failed to record round", "err", err)
		return
	}
	a.logger.Info("round recorded", "id", rd.ID)
}
