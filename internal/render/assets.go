// Package render draws the game onto camera frames with gocv: sprites,
// the pop animation, the HUD and the game-over screens.
package render

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"
)

// ErrAssetMissing is returned when a sprite or font file cannot be read.
var ErrAssetMissing = errors.New("asset missing")

// Asset layout below the assets directory.
const (
	BalloonDir = "balloons"
	PopDir     = "pop"
	FontFile   = "font/Marcellus-Regular.ttf"
)

// BalloonFile returns the file name of balloon variant i (zero based).
func BalloonFile(i int) string {
	return fmt.Sprintf("balloon-%02d.png", i+1)
}

// PopFile returns the file name of pop frame i (zero based).
func PopFile(i int) string {
	return fmt.Sprintf("%d.png", i+1)
}

// Assets holds the images and font loaded once at startup.
type Assets struct {
	Balloons []gocv.Mat
	Pops     []gocv.Mat
	Text     TextDrawer
}

// LoadAssets reads the balloon variants, the pop frames and the font from dir.
// A missing sprite is an error; a missing font falls back to HersheyText.
func LoadAssets(dir string, variants, popFrames int, logger *log.Logger) (*Assets, error) {
	a := &Assets{}

	for i := 0; i < variants; i++ {
		m, err := readSprite(filepath.Join(dir, BalloonDir, BalloonFile(i)))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Balloons = append(a.Balloons, m)
	}

	for i := 0; i < popFrames; i++ {
		m, err := readSprite(filepath.Join(dir, PopDir, PopFile(i)))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Pops = append(a.Pops, m)
	}

	fontPath := filepath.Join(dir, FontFile)
	text, err := NewFreeTypeText(fontPath)
	if err != nil {
		if logger != nil {
			logger.Warn("font unavailable, using built-in font", "path", fontPath)
		}
		a.Text = HersheyText{}
	} else {
		a.Text = text
	}

	return a, nil
}

func readSprite(path string) (gocv.Mat, error) {
	m := gocv.IMRead(path, gocv.IMReadUnchanged)
	if m.Empty() {
		m.Close()
		return gocv.Mat{}, fmt.Errorf("sprite %s: %w", path, ErrAssetMissing)
	}
	return m, nil
}

// SpriteSizes returns the width and height of each balloon variant.
func (a *Assets) SpriteSizes() []image.Point {
	sizes := make([]image.Point, len(a.Balloons))
	for i, m := range a.Balloons {
		sizes[i] = image.Pt(m.Cols(), m.Rows())
	}
	return sizes
}

// Close releases every loaded image and the font.
func (a *Assets) Close() error {
	for i := range a.Balloons {
		a.Balloons[i].Close()
	}
	for i := range a.Pops {
		a.Pops[i].Close()
	}
	a.Balloons, a.Pops = nil, nil
	if a.Text != nil {
		return a.Text.Close()
	}
	return nil
}
