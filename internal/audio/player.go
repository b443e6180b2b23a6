// Package audio synthesizes short sound cues for game events.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player plays cues.
type Player interface {
	Play(c Cue)
	SetEnabled(on bool)
	Enabled() bool
	Close()
}

// SoundManager plays cues through the system speaker.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	enabled     bool
	initialized bool
}

// NewSoundManager creates a sound manager. Call Initialize before Play.
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:   &beep.Mixer{},
		volume:  volume,
		enabled: true,
	}
}

// Initialize opens the speaker and starts the mixer.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Play queues c on the mixer. It is a no-op while disabled.
func (sm *SoundManager) Play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || !sm.enabled {
		return
	}

	s := NewCue(c, sampleRate, sm.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// SetEnabled turns playback on or off.
func (sm *SoundManager) SetEnabled(on bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = on
}

// Enabled reports whether playback is on.
func (sm *SoundManager) Enabled() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.enabled
}

// Close stops all sounds and releases the speaker.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// Recorder remembers played cues instead of making sound.
type Recorder struct {
	mu      sync.Mutex
	cues    []Cue
	enabled bool
}

// NewRecorder creates an enabled recorder.
func NewRecorder() *Recorder {
	return &Recorder{enabled: true}
}

// Play implements Player.
func (r *Recorder) Play(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		r.cues = append(r.cues, c)
	}
}

// Cues returns a copy of the cues played so far.
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.cues...)
}

// SetEnabled implements Player.
func (r *Recorder) SetEnabled(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = on
}

// Enabled implements Player.
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Close implements Player.
func (r *Recorder) Close() {}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue)        {}
func (Nop) SetEnabled(bool) {}
func (Nop) Enabled() bool   { return false }
func (Nop) Close()          {}
