package game

import (
	"image"
	"math/rand"
)

// Balloon is the single balloon on screen. It is never destroyed: popping or
// escaping repositions it below the screen with a new sprite variant.
type Balloon struct {
	Pos     image.Point `json:"pos"`
	Variant int         `json:"variant"`
}

// Rect returns the balloon's bounding box for the given sprite sizes.
// Points on the right and bottom edges are outside, matching image.Point.In.
func (b Balloon) Rect(sizes []image.Point) image.Rectangle {
	size := image.Point{}
	if b.Variant >= 0 && b.Variant < len(sizes) {
		size = sizes[b.Variant]
	}
	return image.Rectangle{Min: b.Pos, Max: b.Pos.Add(size)}
}

// Center returns the center of the balloon's bounding box.
func (b Balloon) Center(sizes []image.Point) image.Point {
	r := b.Rect(sizes)
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}

// respawn places the balloon below the visible area at a random x within
// the margins and picks a new random variant.
func (b *Balloon) respawn(cfg *Config, rng *rand.Rand) {
	lo := cfg.SpawnMargin
	hi := cfg.Width - cfg.SpawnMargin
	x := lo
	if hi > lo {
		x = lo + rng.Intn(hi-lo+1)
	}
	b.Pos = image.Pt(x, cfg.Height+cfg.SpawnBelow)
	b.Variant = rng.Intn(cfg.variants())
}
