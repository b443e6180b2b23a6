package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"
)

// ScriptName is the MediaPipe helper looked up next to the binary, under
// scripts/ or in ~/.balloonpop/scripts.
const ScriptName = "mediapipe_service.py"

// idleShutdown stops the helper when no frame arrived for this long, e.g.
// while the game sits on a still game-over screen.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Frames go to the helper's stdin as a 4-byte big-endian length followed by
// a JPEG; each reply is one JSON line {"hands": [...]}.
type MediaPipeDetector struct {
	config    Config
	script    string
	logger    *log.Logger
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idle      time.Duration
	idleTimer *time.Timer
	idleGen   uint64
}

// NewMediaPipeDetector finds the helper script. The Python process is
// started lazily on the first Detect and again after it exits.
func NewMediaPipeDetector(config Config, logger *log.Logger) (*MediaPipeDetector, error) {
	script := findMediaPipeScript()
	if script == "" {
		return nil, fmt.Errorf("%s not found", ScriptName)
	}
	if config.MaxHands <= 0 {
		config.MaxHands = 1
	}
	if logger == nil {
		logger = log.Default()
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		logger: logger.With("component", "mediapipe"),
		idle:   idleShutdown,
	}, nil
}

// Detect sends one frame to the helper and waits for its landmarks. A failed
// exchange stops the helper so the next call starts a fresh one.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	line, err := d.exchange(buf.GetBytes())
	if err != nil {
		d.logger.Warn("helper exchange failed, stopping it", "err", err)
		d.shutdown()
		return nil, err
	}

	d.resetIdleTimer()
	return parseHands(line, d.config.MaxHands)
}

// exchange writes one length-prefixed frame and reads the reply line.
func (d *MediaPipeDetector) exchange(data []byte) ([]byte, error) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := d.stdin.Write(length[:]); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	// Use virtual environment Python if available
	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	d.cmd = exec.Command(python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Helper stderr (MediaPipe and TensorFlow chatter) goes to debug logs.
	d.cmd.Stderr = d.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.logger.Info("helper started", "python", python, "script", d.script, "pid", d.cmd.Process.Pid)

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	d.idleGen++
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.logger.Debug("helper stopped", "err", err)

	return err
}

// resetIdleTimer restarts the idle countdown. Each countdown carries a
// generation so one that fired while Detect held the lock does nothing.
func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleGen++
	gen := d.idleGen
	d.idleTimer = time.AfterFunc(d.idle, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.idleGen {
			return
		}
		d.logger.Debug("helper idle, stopping it", "after", d.idle)
		d.shutdown()
	})
}

func findMediaPipeScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("scripts", ScriptName),
		filepath.Join("..", "scripts", ScriptName),
		filepath.Join(execDir, "scripts", ScriptName),
		filepath.Join(os.Getenv("HOME"), ".balloonpop", "scripts", ScriptName),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	// Get executable directory to find project root
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".balloonpop", "venv", "bin", "python"),
	)
}

// firstExisting returns the absolute form of the first path that exists.
func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// parseHands decodes one response line and keeps at most max hands.
func parseHands(line []byte, max int) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	hands := response.Hands
	if max > 0 && len(hands) > max {
		hands = hands[:max]
	}
	result := make([]HandLandmarks, len(hands))
	for i, h := range hands {
		result[i] = h.toHandLandmarks()
	}
	return result, nil
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return lm
}
