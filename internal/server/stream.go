package server

import (
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameHub fans the rendered screen out to MJPEG viewers. Frames are only
// encoded while someone is watching and slow viewers skip frames.
type FrameHub struct {
	mu      sync.Mutex
	viewers map[chan []byte]struct{}
	closed  bool
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{viewers: make(map[chan []byte]struct{})}
}

// Viewers returns the number of connected MJPEG clients.
func (h *FrameHub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Publish encodes img as JPEG and hands it to every viewer.
func (h *FrameHub) Publish(img gocv.Mat) {
	if h.Viewers() == 0 || img.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.PublishJPEG(data)
}

// PublishJPEG hands an encoded frame to every viewer, dropping it for
// viewers that have not consumed the previous one.
func (h *FrameHub) PublishJPEG(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.viewers {
		select {
		case ch <- data:
		default:
		}
	}
}

func (h *FrameHub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, 1)
	h.viewers[ch] = struct{}{}
	return ch, true
}

func (h *FrameHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[ch]; ok {
		delete(h.viewers, ch)
		close(ch)
	}
}

// Close disconnects every viewer.
func (h *FrameHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.viewers {
		delete(h.viewers, ch)
		close(ch)
	}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(ch)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
			if _, err := w.Write(data); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
