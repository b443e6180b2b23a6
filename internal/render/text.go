package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// TextDrawer renders strings onto frames. Positions are the top-left corner
// of the rendered text and heights are in pixels.
type TextDrawer interface {
	Draw(img *gocv.Mat, text string, org image.Point, height int, c color.RGBA)
	Size(text string, height int) image.Point
	Close() error
}

// hersheyUnit is the pixel height of FontHersheySimplex at scale 1.
const hersheyUnit = 22.0

// HersheyText draws with OpenCV's built-in vector font.
type HersheyText struct{}

func (HersheyText) params(height int) (float64, int) {
	scale := float64(height) / hersheyUnit * 0.7
	thickness := height / 20
	if thickness < 1 {
		thickness = 1
	}
	return scale, thickness
}

// Draw implements TextDrawer.
func (h HersheyText) Draw(img *gocv.Mat, text string, org image.Point, height int, c color.RGBA) {
	scale, thickness := h.params(height)
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
	gocv.PutText(img, text, image.Pt(org.X, org.Y+size.Y), gocv.FontHersheySimplex, scale, c, thickness)
}

// Size implements TextDrawer.
func (h HersheyText) Size(text string, height int) image.Point {
	scale, thickness := h.params(height)
	return gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
}

// Close implements TextDrawer.
func (HersheyText) Close() error { return nil }

// FreeTypeText draws with a TrueType font through the contrib freetype module.
type FreeTypeText struct {
	ft contrib.FreeType2
}

// NewFreeTypeText loads the font at path.
func NewFreeTypeText(path string) (*FreeTypeText, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("font %s: %w", path, ErrAssetMissing)
	}
	t := &FreeTypeText{ft: contrib.NewFreeType2()}
	t.ft.LoadFontData(path, 0)
	return t, nil
}

// Draw implements TextDrawer.
func (t *FreeTypeText) Draw(img *gocv.Mat, text string, org image.Point, height int, c color.RGBA) {
	size, _ := t.ft.GetTextSize(text, height, -1)
	t.ft.PutText(img, text, image.Pt(org.X, org.Y+size.Y), height, c, -1, gocv.LineAA, false)
}

// Size implements TextDrawer.
func (t *FreeTypeText) Size(text string, height int) image.Point {
	size, _ := t.ft.GetTextSize(text, height, -1)
	return size
}

// Close releases the font.
func (t *FreeTypeText) Close() error {
	return t.ft.Close()
}
