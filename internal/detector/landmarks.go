// Package detector finds hands in camera frames and turns them into the
// fingertip pointer and finger pattern the game reacts to.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// fingerTips lists the tip landmark of each finger, thumb first.
var fingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D is a landmark in normalized image coordinates: x and y in [0,1]
// from the top-left corner, z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FingersUp classifies each finger, thumb first, as extended (true) or folded.
//
// The thumb is extended when its tip lies outside the IP joint along x, on
// the side given by handedness. The other fingers are extended when the tip
// is above (smaller y than) the PIP joint.
func (h *HandLandmarks) FingersUp() [5]bool {
	var up [5]bool
	if h == nil {
		return up
	}

	tip, ip := h.Points[ThumbTip], h.Points[ThumbIP]
	if h.Handedness == "Right" {
		up[0] = tip.X > ip.X
	} else {
		up[0] = tip.X < ip.X
	}

	for i := 1; i < len(fingerTips); i++ {
		t := fingerTips[i]
		up[i] = h.Points[t].Y < h.Points[t-2].Y
	}
	return up
}
