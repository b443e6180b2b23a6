// Package api provides HTTP API handlers for the round history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/internal/store"
)

// Limits for list requests.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// RoundHandler handles HTTP requests for round resources.
type RoundHandler struct {
	store *store.Store
}

// NewRoundHandler creates a new RoundHandler with the given store.
func NewRoundHandler(s *store.Store) *RoundHandler {
	return &RoundHandler{store: s}
}

// ServeHTTP routes /api/rounds and /api/rounds/{id}.
func (h *RoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/rounds")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, path)
	case http.MethodDelete:
		h.delete(w, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type roundResponse struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Score      int    `json:"score"`
	HighScore  int    `json:"high_score"`
	Pops       int    `json:"pops"`
	Escapes    int    `json:"escapes"`
	FinalSpeed int    `json:"final_speed"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at"`
}

type listRoundsResponse struct {
	Rounds []roundResponse `json:"rounds"`
}

type bestResponse struct {
	Mode  string `json:"mode,omitempty"`
	Score int    `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(rd *store.Round) roundResponse {
	return roundResponse{
		ID:         rd.ID,
		Mode:       rd.Mode,
		Score:      rd.Score,
		HighScore:  rd.HighScore,
		Pops:       rd.Pops,
		Escapes:    rd.Escapes,
		FinalSpeed: rd.FinalSpeed,
		StartedAt:  rd.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		EndedAt:    rd.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseLimit reads ?limit=N, clamped to MaxLimit.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, nil
}

// parseMode reads ?mode=, empty meaning all modes.
func parseMode(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return "", nil
	}
	m, err := game.ParseMode(raw)
	if err != nil {
		return "", err
	}
	return string(m), nil
}

// list handles GET /api/rounds?limit=N&mode=M&order=top|recent.
func (h *RoundHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := parseMode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rounds []*store.Round
	switch order := r.URL.Query().Get("order"); order {
	case "", "top":
		if mode == "" {
			rounds, err = h.store.Rounds().Top(limit)
		} else {
			rounds, err = h.store.Rounds().TopByMode(mode, limit)
		}
	case "recent":
		if mode == "" {
			rounds, err = h.store.Rounds().Recent(limit)
		} else {
			rounds, err = h.store.Rounds().RecentByMode(mode, limit)
		}
	default:
		writeError(w, http.StatusBadRequest, "order must be top or recent")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}

	response := listRoundsResponse{
		Rounds: make([]roundResponse, 0, len(rounds)),
	}
	for _, rd := range rounds {
		response.Rounds = append(response.Rounds, toResponse(rd))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/rounds/{id}.
func (h *RoundHandler) get(w http.ResponseWriter, id string) {
	rd, err := h.store.Rounds().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get round")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rd))
}

// delete handles DELETE /api/rounds/{id}.
func (h *RoundHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Rounds().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete round")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BestHandler serves GET /api/best?mode=M.
type BestHandler struct {
	store *store.Store
}

// NewBestHandler creates a new BestHandler with the given store.
func NewBestHandler(s *store.Store) *BestHandler {
	return &BestHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *BestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mode, err := parseMode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	best, err := h.store.Rounds().Best(mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read best score")
		return
	}

	writeJSON(w, http.StatusOK, bestResponse{Mode: mode, Score: best})
}
