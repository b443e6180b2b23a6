// Package server provides the optional spectator HTTP server: round history,
// an MJPEG stream of the rendered screen and a websocket feed of game state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/balloonpop/internal/server/api"
	"github.com/ayusman/balloonpop/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Frames    *FrameHub
	Events    *EventHub
	Logger    *log.Logger
}

// Server represents the spectator HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		rounds := api.NewRoundHandler(s.config.Store)
		s.mux.Handle("/api/rounds", rounds)
		s.mux.Handle("/api/rounds/", rounds)
		s.mux.Handle("/api/best", api.NewBestHandler(s.config.Store))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", s.config.Frames)
	}

	if s.config.Events != nil {
		s.mux.Handle("/api/events", s.config.Events)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Events != nil {
		response["spectators"] = s.config.Events.Clients()
	}
	if s.config.Frames != nil {
		response["viewers"] = s.config.Frames.Viewers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("server listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if s.config.Frames != nil {
			s.config.Frames.Close()
		}
		if s.config.Events != nil {
			s.config.Events.Close()
		}
		return s.http.Shutdown(shutdownCtx)
	}
}
