// Package tray provides a system tray menu for the game: a sound toggle,
// the last and best scores of the session and a quit item.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle     func(enabled bool)
	onScoreboard func()
	onQuit       func()
	sound        bool
	lastScore    int
	highScore    int
	played       bool
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuSound *systray.MenuItem
	menuLast  *systray.MenuItem
	menuHigh  *systray.MenuItem
}

// New creates a new Tray with sound set to the given state.
func New(sound bool) *Tray {
	return &Tray{
		sound: sound,
	}
}

// OnToggle sets the callback called when sound is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnScoreboard sets the callback for the scoreboard item. The item is only
// shown when a callback is set before Run.
func (t *Tray) OnScoreboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onScoreboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Balloon Pop")
	systray.SetTooltip("Balloon Pop")

	t.mu.Lock()
	t.menuSound = systray.AddMenuItem(soundLabel(t.sound), "Toggle sound effects")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastLabel(t.lastScore, t.played), "Score of the last round")
	t.menuLast.Disable()
	t.menuHigh = systray.AddMenuItem(highLabel(t.highScore), "Best score this session")
	t.menuHigh.Disable()
	systray.AddSeparator()

	// A nil channel never fires when no scoreboard is available.
	var scoreboard <-chan struct{}
	if t.onScoreboard != nil {
		scoreboard = systray.AddMenuItem("Open Scoreboard...", "Open the scoreboard in a browser").ClickedCh
		systray.AddSeparator()
	}

	menuQuit := systray.AddMenuItem("Quit", "Quit Balloon Pop")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuSound.ClickedCh:
				t.handleToggle()
			case <-scoreboard:
				t.handleScoreboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func soundLabel(on bool) string {
	if on {
		return "Sound: On"
	}
	return "Sound: Off"
}

func lastLabel(score int, played bool) string {
	if !played {
		return "Last score: -"
	}
	return fmt.Sprintf("Last score: %d", score)
}

func highLabel(score int) string {
	return fmt.Sprintf("High score: %d", score)
}

// handleToggle handles the sound menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.sound = !t.sound
	sound := t.sound

	if t.menuSound != nil {
		t.menuSound.SetTitle(soundLabel(sound))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(sound)
	}
}

func (t *Tray) handleScoreboard() {
	t.mu.RLock()
	callback := t.onScoreboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetScores updates the last and high score items after a round.
func (t *Tray) SetScores(last, high int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastScore, t.highScore, t.played = last, high, true
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastLabel(last, true))
	}
	if t.menuHigh != nil {
		t.menuHigh.SetTitle(highLabel(high))
	}
}

// Scores returns the last and high score shown in the menu.
func (t *Tray) Scores() (last, high int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastScore, t.highScore
}

// SoundEnabled returns the current sound state.
func (t *Tray) SoundEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sound
}
