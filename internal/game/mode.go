// Package game implements the balloon pop rules: a rising balloon, the pop
// animation, the countdown timer and the playing/game-over state machine.
// It has no camera, detector or drawing dependencies so every rule can be
// driven tick by tick from tests.
package game

import (
	"fmt"
	"strings"
)

// Mode selects which optional screens a session runs with.
type Mode string

const (
	// ModeClassic ends on a static "Time UP" screen with no way back.
	ModeClassic Mode = "classic"
	// ModeReplay adds a game-over screen with high score and a replay button.
	ModeReplay Mode = "replay"
	// ModeGuided adds a title, instructions and a fingertip cursor to ModeReplay.
	ModeGuided Mode = "guided"
)

// Features lists the optional behaviors enabled by a mode.
type Features struct {
	Replay       bool
	HighScore    bool
	Instructions bool
	Cursor       bool
}

// Features returns the optional behaviors for the mode.
func (m Mode) Features() Features {
	switch m {
	case ModeReplay:
		return Features{Replay: true, HighScore: true}
	case ModeGuided:
		return Features{Replay: true, HighScore: true, Instructions: true, Cursor: true}
	default:
		return Features{}
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeClassic, ModeReplay, ModeGuided:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want classic, replay or guided)", s)
	}
}

// Phase is the state of a session.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*p = PhasePlaying
	case "game_over":
		*p = PhaseGameOver
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}
