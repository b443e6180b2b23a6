package detector

import (
	"errors"
	"image"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.8 {
		t.Errorf("MinConfidence = %v, want 0.8", cfg.MinConfidence)
	}
}

func TestHandLandmarks_FingersUp(t *testing.T) {
	tests := []struct {
		name string
		hand HandLandmarks
		want [5]bool
	}{
		{"open palm", OpenPalmLandmarks(), [5]bool{true, true, true, true, true}},
		{"fist", FistLandmarks(), [5]bool{}},
		{"pointing", PointingLandmarks(), [5]bool{false, true, false, false, false}},
		{"fist moved", FistLandmarks().At(0.1, 0.2), [5]bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.FingersUp(); got != tt.want {
				t.Errorf("FingersUp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandLandmarks_FingersUp_Handedness(t *testing.T) {
	hand := OpenPalmLandmarks()
	hand.Handedness = "Left"

	// Thumb tip is right of the IP joint, which is folded for a left hand.
	if got := hand.FingersUp(); got[0] {
		t.Error("left hand thumb should read as folded")
	}

	var nilHand *HandLandmarks
	if got := nilHand.FingersUp(); got != [5]bool{} {
		t.Errorf("nil hand FingersUp() = %v", got)
	}
}

func TestHandLandmarks_At(t *testing.T) {
	moved := PointingLandmarks().At(0.25, 0.75)

	tip := moved.Points[IndexTip]
	if tip.X != 0.25 || tip.Y != 0.75 {
		t.Errorf("tip = (%v,%v), want (0.25,0.75)", tip.X, tip.Y)
	}
}

func TestObserve(t *testing.T) {
	screen := image.Pt(1280, 720)

	if obs := Observe(nil, screen); obs != nil {
		t.Errorf("Observe(nil) = %+v, want nil", obs)
	}

	first := PointingLandmarks().At(0.5, 0.25)
	second := FistLandmarks().At(0.9, 0.9)

	obs := Observe([]HandLandmarks{first, second}, screen)
	if obs == nil {
		t.Fatal("Observe() = nil")
	}
	if obs.Fingertip != image.Pt(640, 180) {
		t.Errorf("Fingertip = %v, want (640,180)", obs.Fingertip)
	}
	if obs.Fist() {
		t.Error("first hand is pointing, not a fist")
	}
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()

	hands, err := m.Detect(nil)
	if err != nil || len(hands) != 0 {
		t.Fatalf("empty mock Detect() = %v, %v", hands, err)
	}

	m.SetHands(FistLandmarks())
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()
	hands, err = m.Detect(&frame)
	if err != nil || len(hands) != 1 {
		t.Fatalf("Detect() = %d hands, err %v", len(hands), err)
	}

	boom := errors.New("boom")
	m.SetError(boom)
	if _, err := m.Detect(&frame); !errors.Is(err, boom) {
		t.Errorf("Detect() error = %v, want %v", err, boom)
	}

	if m.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", m.Calls())
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseHands(t *testing.T) {
	point := `{"x":0.5,"y":0.25,"z":0}`
	points := "[" + strings.TrimSuffix(strings.Repeat(point+",", NumLandmarks), ",") + "]"
	hand := `{"points":` + points + `,"handedness":"Right","score":0.9}`

	t.Run("keeps at most max hands", func(t *testing.T) {
		hands, err := parseHands([]byte(`{"hands":[`+hand+`,`+hand+`]}`+"\n"), 1)
		if err != nil {
			t.Fatalf("parseHands() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("got %d hands, want 1", len(hands))
		}
		if hands[0].Handedness != "Right" || hands[0].Points[IndexTip].Y != 0.25 {
			t.Errorf("unexpected hand %+v", hands[0])
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := parseHands([]byte(`{"hands":[]}`), 1)
		if err != nil || len(hands) != 0 {
			t.Errorf("parseHands() = %v, %v", hands, err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseHands([]byte(`{"error":"model missing"}`), 1); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := parseHands([]byte("not json"), 1); err == nil {
			t.Error("expected error")
		}
	})
}

func TestJSONHand_ShortPointList(t *testing.T) {
	h := jsonHand{Points: []jsonPoint{{X: 1, Y: 2, Z: 3}}, Handedness: "Left"}

	lm := h.toHandLandmarks()
	if lm.Points[Wrist].X != 1 || lm.Points[IndexTip] != (Point3D{}) {
		t.Errorf("toHandLandmarks() = %+v", lm.Points[:2])
	}
}

func TestMediaPipe_StaleIdleTimerKeepsHelper(t *testing.T) {
	d := &MediaPipeDetector{logger: log.New(io.Discard), idle: time.Millisecond}

	d.mu.Lock()
	d.resetIdleTimer()
	// The countdown fires and its callback waits for the lock, as it would
	// behind a running Detect.
	time.Sleep(50 * time.Millisecond)
	d.idle = time.Hour
	d.resetIdleTimer()
	d.cmd = exec.Command("true")
	d.started = true
	d.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		t.Error("stale idle countdown stopped a helper that was just used")
	}
	d.idleTimer.Stop()
	d.started = false
}
