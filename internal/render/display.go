package render

import (
	"sync"

	"gocv.io/x/gocv"
)

// Display shows composed frames and reports when the player closes it.
type Display interface {
	Show(img gocv.Mat)
	Closed() bool
	Close() error
}

// Keys that close the window.
const (
	KeyEscape = 27
	KeyQuit   = 'q'
)

// Window is a gocv highgui window. The native window is created by the
// first Show, so it belongs to the thread that runs the loop.
type Window struct {
	title  string
	width  int
	height int
	win    *gocv.Window
	closed bool
}

// NewWindow prepares a window of the given size.
func NewWindow(title string, width, height int) *Window {
	return &Window{title: title, width: width, height: height}
}

// Show draws img and polls the keyboard once.
func (w *Window) Show(img gocv.Mat) {
	if w.closed {
		return
	}
	if w.win == nil {
		w.win = gocv.NewWindow(w.title)
		w.win.ResizeWindow(w.width, w.height)
	}
	w.win.IMShow(img)
	switch w.win.WaitKey(1) {
	case KeyEscape, KeyQuit:
		w.closed = true
	}
}

// Closed reports whether the player pressed Esc or q or closed the window.
func (w *Window) Closed() bool {
	if w.closed {
		return true
	}
	return w.win != nil && !w.win.IsOpen()
}

// Close destroys the window, if it was ever shown.
func (w *Window) Close() error {
	w.closed = true
	if w.win == nil {
		return nil
	}
	return w.win.Close()
}

// Headless counts frames without showing them. A positive limit closes it
// after that many frames.
type Headless struct {
	mu     sync.Mutex
	limit  int
	frames int
	closed bool
}

// NewHeadless creates a headless display.
func NewHeadless(limit int) *Headless {
	return &Headless{limit: limit}
}

// Show implements Display.
func (h *Headless) Show(gocv.Mat) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
	if h.limit > 0 && h.frames >= h.limit {
		h.closed = true
	}
}

// Closed implements Display.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Frames returns how many frames were shown.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Close implements Display.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
