package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// DefaultHoldTicks keeps the gate open this many ticks after the last motion.
	DefaultHoldTicks = 15
)

// MotionGate decides whether a frame is worth sending to the hand detector.
// On the game-over screen nothing happens until the player moves, so the
// loop skips detection while the scene is still. After motion the gate
// stays open for a number of ticks so a held fist is still seen.
type MotionGate struct {
	threshold   float64
	hold        int
	openFor     int
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionGate creates a gate that opens when more than threshold percent
// of the pixels change between frames and stays open for hold ticks.
func NewMotionGate(threshold float64, hold int) *MotionGate {
	if hold < 0 {
		hold = 0
	}
	return &MotionGate{
		threshold: threshold,
		hold:      hold,
		prevGray:  gocv.NewMat(),
	}
}

// Open reports whether the frame should be analyzed, and the percentage of
// pixels that changed since the previous frame.
//
// Frames are converted to grayscale and blurred 21x21, then diffed against
// the previous frame and thresholded at 25. The very first frame only
// becomes the baseline and keeps the gate open.
func (m *MotionGate) Open(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		m.openFor = m.hold
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&m.prevGray)

	if changePercent > m.threshold {
		m.openFor = m.hold
		return true, changePercent
	}
	if m.openFor > 0 {
		m.openFor--
		return true, changePercent
	}
	return false, changePercent
}

// Reset forgets the baseline frame so the next frame opens the gate.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.openFor = 0
}

// Close releases the baseline frame.
func (m *MotionGate) Close() {
	m.Reset()
}

// SetThreshold sets the percentage of changed pixels that opens the gate.
// Values less than or equal to 0 are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
