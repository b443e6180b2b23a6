package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/balloonpop/internal/game"
)

// Colors as RGB.
var (
	ScoreColor     = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	HighScoreColor = color.RGBA{R: 255, G: 50, B: 50, A: 255}
	TitleColor     = color.RGBA{A: 255}
	BodyColor      = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	ButtonColor    = color.RGBA{G: 255, A: 255}
	LabelColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	CursorColor    = color.RGBA{R: 255, A: 255}
	Background     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Text heights in pixels.
const (
	HUDHeight   = 50
	TitleHeight = 60
	SubHeight   = 40
	SmallHeight = 30

	CursorRadius = 10
)

// Fixed text positions.
var (
	ScorePos = image.Pt(35, 35)
	TimePos  = image.Pt(1000, 35)

	TimeUpPos         = image.Pt(530, 275)
	ClassicScorePos   = image.Pt(450, 350)
	ReplayHighPos     = image.Pt(350, 200)
	ReplayScorePos    = image.Pt(450, 300)
	ReplayLabelOffset = image.Pt(25, 15)
)

// Guided screen text.
const (
	Title         = "AItech Computer Vision Game"
	Instructions1 = "Can you beat the high score?"
	Instructions2 = "Use your hand to control the red dot to 'RESTART', then make a fist to simulate a left mouse click and begin playing."
	Instructions3 = "Use your index finger to pop as many balloons as you can before the time runs out!"
)

// Renderer composes one screen per tick into a reused canvas.
type Renderer struct {
	assets *Assets
	width  int
	height int
	canvas gocv.Mat
}

// NewRenderer creates a renderer for a width x height screen.
func NewRenderer(assets *Assets, width, height int) *Renderer {
	return &Renderer{
		assets: assets,
		width:  width,
		height: height,
		canvas: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
	}
}

// Compose redraws the whole screen for f on top of the camera frame. The
// returned Mat is owned by the renderer and valid until the next call.
func (r *Renderer) Compose(camera gocv.Mat, f game.Frame) *gocv.Mat {
	if f.Phase == game.PhaseGameOver {
		r.fill(Background)
		switch f.Mode {
		case game.ModeReplay:
			r.drawReplayOver(f)
		case game.ModeGuided:
			r.drawGuidedOver(f)
		default:
			r.drawClassicOver(f)
		}
		if f.Cursor != nil {
			gocv.Circle(&r.canvas, *f.Cursor, CursorRadius, CursorColor, -1)
		}
		return &r.canvas
	}

	r.background(camera)

	if f.PopFrame >= 0 && f.PopFrame < len(r.assets.Pops) {
		OverlayCentered(&r.canvas, r.assets.Pops[f.PopFrame], f.PopCenter)
	}
	if f.ShowBalloon && f.Balloon.Variant < len(r.assets.Balloons) {
		Overlay(&r.canvas, r.assets.Balloons[f.Balloon.Variant], f.Balloon.Pos)
	}

	r.text(fmt.Sprintf("Score: %d", f.Score), ScorePos, HUDHeight, ScoreColor)
	r.text(fmt.Sprintf("Time: %d", f.Remaining), TimePos, HUDHeight, ScoreColor)

	return &r.canvas
}

func (r *Renderer) background(camera gocv.Mat) {
	if camera.Empty() {
		r.fill(color.RGBA{A: 255})
		return
	}
	if camera.Cols() == r.width && camera.Rows() == r.height && camera.Type() == r.canvas.Type() {
		camera.CopyTo(&r.canvas)
		return
	}
	gocv.Resize(camera, &r.canvas, image.Pt(r.width, r.height), 0, 0, gocv.InterpolationLinear)
}

func (r *Renderer) fill(c color.RGBA) {
	r.canvas.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
}

func (r *Renderer) text(s string, at image.Point, height int, c color.RGBA) {
	r.assets.Text.Draw(&r.canvas, s, at, height, c)
}

// centered draws s horizontally centered at row y.
func (r *Renderer) centered(s string, y, height int, c color.RGBA) {
	size := r.assets.Text.Size(s, height)
	r.text(s, image.Pt(r.width/2-size.X/2, y), height, c)
}

func (r *Renderer) drawClassicOver(f game.Frame) {
	r.text(fmt.Sprintf("Your Score: %d", f.Score), ClassicScorePos, HUDHeight, ScoreColor)
	r.text("Time UP", TimeUpPos, HUDHeight, ScoreColor)
}

func (r *Renderer) drawReplayOver(f game.Frame) {
	gocv.Rectangle(&r.canvas, f.ReplayButton, ButtonColor, -1)
	r.text("Replay", f.ReplayButton.Min.Add(ReplayLabelOffset), HUDHeight, LabelColor)
	r.text(fmt.Sprintf("Your Score: %d", f.Score), ReplayScorePos, HUDHeight, ScoreColor)
	r.text(fmt.Sprintf("High Score to Beat: %d", f.HighScore), ReplayHighPos, HUDHeight, HighScoreColor)
}

func (r *Renderer) drawGuidedOver(f game.Frame) {
	r.centered(Title, 50, TitleHeight, TitleColor)
	r.centered(Instructions1, 130, SubHeight, TitleColor)
	r.centered(Instructions2, 180, SmallHeight, BodyColor)
	r.centered(Instructions3, 220, SmallHeight, BodyColor)
	r.centered(fmt.Sprintf("Your Score: %d", f.Score), 300, SubHeight, ScoreColor)
	r.centered(fmt.Sprintf("High Score to Beat: %d", f.HighScore), 350, SubHeight, HighScoreColor)

	btn := f.ReplayButton
	gocv.Rectangle(&r.canvas, btn, ButtonColor, -1)
	label := r.assets.Text.Size("Replay", SubHeight)
	center := image.Pt((btn.Min.X+btn.Max.X)/2, (btn.Min.Y+btn.Max.Y)/2)
	r.text("Replay", center.Sub(label.Div(2)), SubHeight, LabelColor)
}

// Size returns the screen size.
func (r *Renderer) Size() image.Point {
	return image.Pt(r.width, r.height)
}

// Close releases the canvas.
func (r *Renderer) Close() error {
	return r.canvas.Close()
}
