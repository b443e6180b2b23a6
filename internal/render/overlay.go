package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Overlay copies sprite onto dst with its top-left corner at at, clipped to
// the bounds of dst. Four-channel sprites are masked by their alpha channel.
func Overlay(dst *gocv.Mat, sprite gocv.Mat, at image.Point) {
	if dst.Empty() || sprite.Empty() {
		return
	}

	bounds := image.Rect(0, 0, dst.Cols(), dst.Rows())
	target := image.Rectangle{Min: at, Max: at.Add(image.Pt(sprite.Cols(), sprite.Rows()))}.Intersect(bounds)
	if target.Empty() {
		return
	}

	src := sprite.Region(target.Sub(at))
	defer src.Close()
	roi := dst.Region(target)
	defer roi.Close()

	if sprite.Channels() != 4 {
		src.CopyTo(&roi)
		return
	}

	channels := gocv.Split(src)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.Merge(channels[:3], &bgr)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(channels[3], &mask, 127, 255, gocv.ThresholdBinary)

	bgr.CopyToWithMask(&roi, mask)
}

// OverlayCentered draws sprite centered on center.
func OverlayCentered(dst *gocv.Mat, sprite gocv.Mat, center image.Point) {
	at := center.Sub(image.Pt(sprite.Cols()/2, sprite.Rows()/2))
	Overlay(dst, sprite, at)
}
