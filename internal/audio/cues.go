package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue is a sound played in response to a game event.
type Cue int

const (
	CuePop Cue = iota
	CueGameOver
	CueReplay
)

func (c Cue) String() string {
	switch c {
	case CuePop:
		return "pop"
	case CueGameOver:
		return "game_over"
	case CueReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Cue durations.
const (
	PopDuration  = 120 * time.Millisecond
	ToneDuration = 180 * time.Millisecond
)

// NewCue builds a fresh streamer for c at the given volume, or nil for an
// unknown cue.
func NewCue(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CuePop:
		noise := NewDecay(NewOscillator(0, PopDuration, WaveNoise, rate), 2*time.Millisecond, 30, rate)
		body := NewDecay(NewOscillator(520, PopDuration, WaveSine, rate), 2*time.Millisecond, 20, rate)
		s = beep.Mix(newVolume(noise, 0.6), newVolume(body, 0.4))
	case CueGameOver:
		s = twoTone(660, 440, rate)
	case CueReplay:
		s = twoTone(440, 880, rate)
	default:
		return nil
	}
	return newVolume(s, volume)
}

func twoTone(first, second float64, rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		NewDecay(NewOscillator(first, ToneDuration, WaveSquare, rate), 5*time.Millisecond, 6, rate),
		NewDecay(NewOscillator(second, ToneDuration, WaveSquare, rate), 5*time.Millisecond, 6, rate),
	)
}
