package game

import "time"

// Snapshot is the JSON view of a tick sent to spectators.
type Snapshot struct {
	Tick        uint64    `json:"tick"`
	Time        time.Time `json:"time"`
	Mode        Mode      `json:"mode"`
	Phase       Phase     `json:"phase"`
	Score       int       `json:"score"`
	HighScore   int       `json:"high_score"`
	Speed       int       `json:"speed"`
	Remaining   int       `json:"remaining"`
	Balloon     Balloon   `json:"balloon"`
	ShowBalloon bool      `json:"show_balloon"`
	PopFrame    int       `json:"pop_frame"`
	Events      []string  `json:"events,omitempty"`
}

// Snapshot converts a tick result for publishing.
func (f Frame) Snapshot(tick uint64, at time.Time) Snapshot {
	return Snapshot{
		Tick:        tick,
		Time:        at,
		Mode:        f.Mode,
		Phase:       f.Phase,
		Score:       f.Score,
		HighScore:   f.HighScore,
		Speed:       f.Speed,
		Remaining:   f.Remaining,
		Balloon:     f.Balloon,
		ShowBalloon: f.ShowBalloon,
		PopFrame:    f.PopFrame,
		Events:      f.Events.Names(),
	}
}

// Names lists the events in e.
func (e Event) Names() []string {
	var names []string
	for _, ev := range []struct {
		bit  Event
		name string
	}{
		{EventPop, "pop"},
		{EventEscape, "escape"},
		{EventGameOver, "game_over"},
		{EventReplay, "replay"},
	} {
		if e.Has(ev.bit) {
			names = append(names, ev.name)
		}
	}
	return names
}
