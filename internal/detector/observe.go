package detector

import (
	"image"

	"github.com/ayusman/balloonpop/internal/game"
)

// Observe turns the first detected hand into a game observation in screen
// pixels. Additional hands are ignored. It returns nil when hands is empty.
func Observe(hands []HandLandmarks, screen image.Point) *game.Observation {
	if len(hands) == 0 {
		return nil
	}
	hand := &hands[0]
	tip := hand.Points[IndexTip]
	return &game.Observation{
		Fingertip: image.Pt(int(tip.X*float64(screen.X)), int(tip.Y*float64(screen.Y))),
		Fingers:   hand.FingersUp(),
	}
}
