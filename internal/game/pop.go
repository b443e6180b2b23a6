package game

import "image"

// PopAnimation plays a fixed number of overlay frames, one per tick, at the
// position where the balloon was hit. It cannot be restarted while running.
type PopAnimation struct {
	Center image.Point
	Frame  int
	Total  int
	active bool
}

// Start begins playback at center. It is a no-op while already active.
func (p *PopAnimation) Start(center image.Point) bool {
	if p.active {
		return false
	}
	p.Center = center
	p.Frame = 0
	p.active = true
	return true
}

// Active reports whether a pop is playing.
func (p *PopAnimation) Active() bool {
	return p.active
}

// Advance returns the frame to draw this tick and moves to the next one.
// done is true when the returned frame was the last.
func (p *PopAnimation) Advance() (frame int, done bool) {
	if !p.active {
		return -1, false
	}
	frame = p.Frame
	p.Frame++
	if p.Frame >= p.Total {
		p.active = false
		return frame, true
	}
	return frame, false
}
