// Package testdata builds synthetic frames and sprites for tests.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Frame returns a solid BGR frame of the given size.
func Frame(width, height int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		height, width, gocv.MatTypeCV8UC3,
	)
}

// Sprite returns a BGRA sprite: a transparent border of inset pixels around
// an opaque rectangle of color c.
func Sprite(width, height, inset int, c color.RGBA) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC4)
	body := image.Rect(inset, inset, width-inset, height-inset)
	gocv.Rectangle(&m, body, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, -1)
	return m
}

// Balloons returns n opaque balloon sprites of the given size.
func Balloons(n, width, height int) []gocv.Mat {
	sprites := make([]gocv.Mat, n)
	for i := range sprites {
		sprites[i] = Sprite(width, height, 0, color.RGBA{R: uint8(200 - 20*i), B: 40, A: 255})
	}
	return sprites
}

// PopFrames returns n square pop sprites with a transparent border.
func PopFrames(n, size int) []gocv.Mat {
	sprites := make([]gocv.Mat, n)
	for i := range sprites {
		sprites[i] = Sprite(size, size, size/4, color.RGBA{R: 255, G: 255, A: 255})
	}
	return sprites
}

// WriteAssets writes a complete sprite directory under dir: balloon-01..n.png
// and pop/1..m.png. No font is written.
func WriteAssets(dir string, variants, pops int) error {
	if err := os.MkdirAll(filepath.Join(dir, "balloons"), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, "pop"), 0o755); err != nil {
		return err
	}

	for i, m := range Balloons(variants, 120, 160) {
		path := filepath.Join(dir, "balloons", fmt.Sprintf("balloon-%02d.png", i+1))
		ok := gocv.IMWrite(path, m)
		m.Close()
		if !ok {
			return fmt.Errorf("write %s", path)
		}
	}
	for i, m := range PopFrames(pops, 100) {
		path := filepath.Join(dir, "pop", fmt.Sprintf("%d.png", i+1))
		ok := gocv.IMWrite(path, m)
		m.Close()
		if !ok {
			return fmt.Errorf("write %s", path)
		}
	}
	return nil
}

// Close releases every Mat in mats.
func Close(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}

// Pixel returns the BGR value at (x, y) of a three-channel frame.
func Pixel(m gocv.Mat, x, y int) [3]uint8 {
	return [3]uint8{
		m.GetUCharAt(y, x*3),
		m.GetUCharAt(y, x*3+1),
		m.GetUCharAt(y, x*3+2),
	}
}
