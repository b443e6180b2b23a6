package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/testdata"
)

type drawCall struct {
	text   string
	at     image.Point
	height int
	c      color.RGBA
}

type recordingText struct {
	calls []drawCall
}

func (r *recordingText) Draw(_ *gocv.Mat, text string, org image.Point, height int, c color.RGBA) {
	r.calls = append(r.calls, drawCall{text: text, at: org, height: height, c: c})
}

func (r *recordingText) Size(text string, height int) image.Point {
	return image.Pt(len(text)*height/2, height)
}

func (r *recordingText) Close() error { return nil }

func (r *recordingText) find(text string) (drawCall, bool) {
	for _, c := range r.calls {
		if c.text == text {
			return c, true
		}
	}
	return drawCall{}, false
}

func newTestRenderer(t *testing.T) (*Renderer, *recordingText) {
	t.Helper()
	text := &recordingText{}
	assets := &Assets{
		Balloons: testdata.Balloons(game.DefaultVariants, 120, 160),
		Pops:     testdata.PopFrames(game.DefaultPopFrames, 100),
		Text:     text,
	}
	r := NewRenderer(assets, game.DefaultWidth, game.DefaultHeight)
	t.Cleanup(func() {
		r.Close()
		assets.Close()
	})
	return r, text
}

var (
	green = color.RGBA{G: 255, A: 255}
	black = color.RGBA{A: 255}
)

func bgr(c color.RGBA) [3]uint8 {
	return [3]uint8{c.B, c.G, c.R}
}

func TestOverlay(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	tests := []struct {
		name    string
		sprite  func() gocv.Mat
		at      image.Point
		painted []image.Point
		clear   []image.Point
	}{
		{
			name:    "opaque inside",
			sprite:  func() gocv.Mat { return testdata.Sprite(20, 20, 0, red) },
			at:      image.Pt(10, 10),
			painted: []image.Point{{10, 10}, {15, 15}, {29, 29}},
			clear:   []image.Point{{5, 5}, {30, 30}, {9, 15}},
		},
		{
			name:    "alpha border stays transparent",
			sprite:  func() gocv.Mat { return testdata.Sprite(40, 40, 10, red) },
			at:      image.Pt(0, 0),
			painted: []image.Point{{20, 20}, {10, 10}},
			clear:   []image.Point{{2, 2}, {9, 20}, {35, 35}},
		},
		{
			name:    "clipped at top left",
			sprite:  func() gocv.Mat { return testdata.Sprite(20, 20, 0, red) },
			at:      image.Pt(-10, -10),
			painted: []image.Point{{0, 0}, {9, 9}},
			clear:   []image.Point{{10, 10}},
		},
		{
			name:    "clipped at bottom right",
			sprite:  func() gocv.Mat { return testdata.Sprite(20, 20, 0, red) },
			at:      image.Pt(190, 90),
			painted: []image.Point{{199, 99}, {190, 90}},
			clear:   []image.Point{{189, 99}},
		},
		{
			name:   "fully outside",
			sprite: func() gocv.Mat { return testdata.Sprite(20, 20, 0, red) },
			at:     image.Pt(300, 300),
			clear:  []image.Point{{0, 0}, {199, 99}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := testdata.Frame(200, 100, black)
			defer dst.Close()
			sprite := tt.sprite()
			defer sprite.Close()

			Overlay(&dst, sprite, tt.at)

			for _, p := range tt.painted {
				if got := testdata.Pixel(dst, p.X, p.Y); got != bgr(red) {
					t.Errorf("pixel %v = %v, want sprite color", p, got)
				}
			}
			for _, p := range tt.clear {
				if got := testdata.Pixel(dst, p.X, p.Y); got != bgr(black) {
					t.Errorf("pixel %v = %v, want background", p, got)
				}
			}
		})
	}
}

func TestOverlayCentered(t *testing.T) {
	dst := testdata.Frame(200, 200, black)
	defer dst.Close()
	sprite := testdata.Sprite(20, 20, 0, green)
	defer sprite.Close()

	OverlayCentered(&dst, sprite, image.Pt(100, 100))

	if got := testdata.Pixel(dst, 90, 90); got != bgr(green) {
		t.Errorf("top-left of centered sprite = %v", got)
	}
	if got := testdata.Pixel(dst, 109, 109); got != bgr(green) {
		t.Errorf("bottom-right of centered sprite = %v", got)
	}
	if got := testdata.Pixel(dst, 110, 110); got != bgr(black) {
		t.Errorf("outside centered sprite = %v", got)
	}
}

func playingFrame() game.Frame {
	return game.Frame{
		Phase:       game.PhasePlaying,
		Mode:        game.ModeClassic,
		Score:       10,
		Remaining:   25,
		Balloon:     game.Balloon{Pos: image.Pt(500, 300)},
		ShowBalloon: true,
		PopFrame:    -1,
	}
}

func TestCompose_Playing(t *testing.T) {
	r, text := newTestRenderer(t)
	camera := testdata.Frame(game.DefaultWidth, game.DefaultHeight, green)
	defer camera.Close()

	out := r.Compose(camera, playingFrame())

	if got := testdata.Pixel(*out, 560, 380); got != [3]uint8{40, 0, 200} {
		t.Errorf("balloon pixel = %v", got)
	}
	if got := testdata.Pixel(*out, 100, 600); got != bgr(green) {
		t.Errorf("camera pixel = %v, want camera color", got)
	}

	score, ok := text.find("Score: 10")
	if !ok || score.at != ScorePos || score.height != HUDHeight || score.c != ScoreColor {
		t.Errorf("score text = %+v, found %v", score, ok)
	}
	remaining, ok := text.find("Time: 25")
	if !ok || remaining.at != TimePos {
		t.Errorf("time text = %+v, found %v", remaining, ok)
	}
}

func TestCompose_PopFrame(t *testing.T) {
	r, _ := newTestRenderer(t)
	camera := testdata.Frame(game.DefaultWidth, game.DefaultHeight, black)
	defer camera.Close()

	f := playingFrame()
	f.ShowBalloon = false
	f.PopFrame = 3
	f.PopCenter = image.Pt(200, 200)

	out := r.Compose(camera, f)

	if got := testdata.Pixel(*out, 200, 200); got != [3]uint8{0, 255, 255} {
		t.Errorf("pop center pixel = %v", got)
	}
	if got := testdata.Pixel(*out, 155, 155); got != bgr(black) {
		t.Errorf("pop transparent border pixel = %v", got)
	}
	if got := testdata.Pixel(*out, 560, 380); got != bgr(black) {
		t.Errorf("hidden balloon was drawn: %v", got)
	}
}

func TestCompose_ResizesCamera(t *testing.T) {
	r, _ := newTestRenderer(t)
	camera := testdata.Frame(640, 360, green)
	defer camera.Close()

	out := r.Compose(camera, playingFrame())

	if out.Cols() != game.DefaultWidth || out.Rows() != game.DefaultHeight {
		t.Fatalf("canvas = %dx%d", out.Cols(), out.Rows())
	}
	if got := testdata.Pixel(*out, 1200, 700); got != bgr(green) {
		t.Errorf("resized camera pixel = %v", got)
	}
}

func TestCompose_GameOver(t *testing.T) {
	button := image.Rect(540, 400, 740, 480)
	cursor := image.Pt(100, 600)

	tests := []struct {
		name   string
		mode   game.Mode
		cursor *image.Point
		texts  map[string]image.Point
		button bool
	}{
		{
			name: "classic",
			mode: game.ModeClassic,
			texts: map[string]image.Point{
				"Time UP":        TimeUpPos,
				"Your Score: 30": ClassicScorePos,
			},
		},
		{
			name: "replay",
			mode: game.ModeReplay,
			texts: map[string]image.Point{
				"Your Score: 30":         ReplayScorePos,
				"High Score to Beat: 40": ReplayHighPos,
				"Replay":                 image.Pt(565, 415),
			},
			button: true,
		},
		{
			name:   "guided",
			mode:   game.ModeGuided,
			cursor: &cursor,
			texts: map[string]image.Point{
				Title:                    image.Pt(640-len(Title)*TitleHeight/4, 50),
				Instructions1:            image.Pt(640-len(Instructions1)*SubHeight/4, 130),
				"Your Score: 30":         image.Pt(640-len("Your Score: 30")*SubHeight/4, 300),
				"High Score to Beat: 40": image.Pt(640-len("High Score to Beat: 40")*SubHeight/4, 350),
				"Replay":                 image.Pt(640-len("Replay")*SubHeight/4, 440-SubHeight/2),
			},
			button: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, text := newTestRenderer(t)
			camera := testdata.Frame(game.DefaultWidth, game.DefaultHeight, green)
			defer camera.Close()

			out := r.Compose(camera, game.Frame{
				Phase:        game.PhaseGameOver,
				Mode:         tt.mode,
				Score:        30,
				HighScore:    40,
				PopFrame:     -1,
				ReplayButton: button,
				Cursor:       tt.cursor,
			})

			for s, want := range tt.texts {
				call, ok := text.find(s)
				if !ok {
					t.Errorf("text %q not drawn", s)
					continue
				}
				if call.at != want {
					t.Errorf("text %q at %v, want %v", s, call.at, want)
				}
			}
			if _, ok := text.find("Score: 30"); ok {
				t.Error("HUD drawn on game-over screen")
			}

			if got := testdata.Pixel(*out, 5, 700); got != bgr(Background) {
				t.Errorf("background pixel = %v, want white", got)
			}
			gotButton := testdata.Pixel(*out, 545, 475) == bgr(ButtonColor)
			if gotButton != tt.button {
				t.Errorf("button drawn = %v, want %v", gotButton, tt.button)
			}
			if tt.cursor != nil {
				if got := testdata.Pixel(*out, cursor.X, cursor.Y); got != bgr(CursorColor) {
					t.Errorf("cursor pixel = %v", got)
				}
			}
		})
	}
}

func TestHersheyText_Draws(t *testing.T) {
	img := testdata.Frame(400, 100, black)
	defer img.Close()

	var h HersheyText
	size := h.Size("Score: 10", HUDHeight)
	if size.X <= 0 || size.Y <= 0 {
		t.Fatalf("Size() = %v", size)
	}

	h.Draw(&img, "Score: 10", image.Pt(10, 10), HUDHeight, ScoreColor)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("Draw() left the frame empty")
	}
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	if err := testdata.WriteAssets(dir, 5, 9); err != nil {
		t.Fatalf("WriteAssets() error = %v", err)
	}

	a, err := LoadAssets(dir, 5, 9, nil)
	if err != nil {
		t.Fatalf("LoadAssets() error = %v", err)
	}
	defer a.Close()

	if len(a.Balloons) != 5 || len(a.Pops) != 9 {
		t.Errorf("loaded %d balloons, %d pops", len(a.Balloons), len(a.Pops))
	}
	if _, ok := a.Text.(HersheyText); !ok {
		t.Errorf("Text = %T, want HersheyText fallback", a.Text)
	}
	for i, size := range a.SpriteSizes() {
		if size != image.Pt(120, 160) {
			t.Errorf("SpriteSizes()[%d] = %v", i, size)
		}
	}
	if a.Balloons[0].Channels() != 4 {
		t.Errorf("balloon channels = %d, want alpha kept", a.Balloons[0].Channels())
	}
}

func TestLoadAssets_Missing(t *testing.T) {
	dir := t.TempDir()
	if err := testdata.WriteAssets(dir, 5, 3); err != nil {
		t.Fatalf("WriteAssets() error = %v", err)
	}

	_, err := LoadAssets(dir, 5, 9, nil)
	if !errors.Is(err, ErrAssetMissing) {
		t.Errorf("LoadAssets() error = %v, want ErrAssetMissing", err)
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless(3)
	img := testdata.Frame(4, 4, black)
	defer img.Close()

	for i := 0; i < 2; i++ {
		h.Show(img)
	}
	if h.Closed() {
		t.Fatal("closed before limit")
	}
	h.Show(img)
	if !h.Closed() {
		t.Error("not closed at limit")
	}
	if h.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", h.Frames())
	}

	unlimited := NewHeadless(0)
	for i := 0; i < 10; i++ {
		unlimited.Show(img)
	}
	if unlimited.Closed() {
		t.Error("unlimited headless closed on its own")
	}
	unlimited.Close()
	if !unlimited.Closed() {
		t.Error("Close() did not close")
	}
}

func TestWindow_CreatedOnFirstShow(t *testing.T) {
	w := NewWindow("Balloon Pop", 1280, 720)

	if w.win != nil {
		t.Fatal("NewWindow created the native window before the first Show")
	}
	if w.Closed() {
		t.Error("unshown window reports closed")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() on unshown window error = %v", err)
	}
	if !w.Closed() {
		t.Error("Closed() = false after Close")
	}

	img := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer img.Close()
	w.Show(img)
	if w.win != nil {
		t.Error("Show after Close created a window")
	}
}
