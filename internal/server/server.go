// Package server exposes the engine over HTTP: dataset loading, filters,
// view controls, picking and the rendered frame.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/routeblend/routeblend/internal/engine"
	"github.com/routeblend/routeblend/internal/render"
	"github.com/routeblend/routeblend/internal/source"
	"github.com/routeblend/routeblend/internal/view"
)

// Config configures the API server.
type Config struct {
	// MaxFrameSize bounds the ?w of /frame.png (default 4096). Height
	// follows the canvas aspect ratio and is never requested directly.
	MaxFrameSize int
	Logger       *slog.Logger
}

// Server wires the engine's operations to HTTP handlers.
type Server struct {
	eng     *engine.Engine
	logger  *slog.Logger
	cfg     Config
	loading atomic.Bool
}

// New creates a server around an engine.
func New(eng *engine.Engine, cfg Config) *Server {
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = 4096
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{eng: eng, logger: cfg.Logger, cfg: cfg}
}

// Handler returns the full route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/load", s.handleLoad)
	mux.HandleFunc("GET /api/activities", s.handleActivities)
	mux.HandleFunc("POST /api/filter", s.handleFilter)
	mux.HandleFunc("POST /api/view/zoom", s.handleZoom)
	mux.HandleFunc("POST /api/view/pan", s.handlePan)
	mux.HandleFunc("POST /api/view/reset", s.handleViewReset)
	mux.HandleFunc("POST /api/view/fit", s.handleViewFit)
	mux.HandleFunc("GET /api/pick", s.handlePick)
	mux.HandleFunc("GET /frame.png", s.handleFrame)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	// One load at a time; the engine serializes anyway, but rejecting early
	// keeps a queue of stale reloads from piling up behind a slow upstream.
	if !s.loading.CompareAndSwap(false, true) {
		http.Error(w, "load already in progress", http.StatusConflict)
		return
	}
	defer s.loading.Store(false)

	summary, err := s.eng.LoadDataset(r.Context())
	switch {
	case errors.Is(err, source.ErrUnauthenticated):
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	case errors.Is(err, source.ErrEmptyDataset):
		// Valid outcome: report the empty summary with 200.
	case err != nil:
		s.logger.Error("dataset load failed", "error", err)
		http.Error(w, "load failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, summary)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"activities": s.eng.Activities(),
		"filters":    s.eng.Filters(),
	})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string `json:"type"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		http.Error(w, "expected {\"type\": ..., \"enabled\": ...}", http.StatusBadRequest)
		return
	}

	s.eng.SetFilter(req.Type, req.Enabled)
	writeJSON(w, s.eng.Filters())
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Factor float64 `json:"factor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Factor <= 0 {
		http.Error(w, "expected {\"x\": ..., \"y\": ..., \"factor\": > 0}", http.StatusBadRequest)
		return
	}
	writeView(w, s.eng.ZoomAt(req.X, req.Y, req.Factor))
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "expected {\"dx\": ..., \"dy\": ...}", http.StatusBadRequest)
		return
	}
	writeView(w, s.eng.PanBy(req.DX, req.DY))
}

func (s *Server) handleViewReset(w http.ResponseWriter, r *http.Request) {
	writeView(w, s.eng.ResetView())
}

func (s *Server) handleViewFit(w http.ResponseWriter, r *http.Request) {
	writeView(w, s.eng.FitToData())
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "expected ?x=&y= screen coordinates", http.StatusBadRequest)
		return
	}

	hit, ok := s.eng.PickAt(x, y)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, hit)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	width, height := s.eng.CanvasSize()
	if v := r.URL.Query().Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > s.cfg.MaxFrameSize {
			http.Error(w, "invalid frame width", http.StatusBadRequest)
			return
		}
		// Height follows the canvas aspect ratio.
		height = n * height / width
		width = n
	}

	img := s.eng.FrameAt(width, height)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, img); err != nil {
		s.logger.Error("frame encode failed", "error", err)
	}
}

func writeView(w http.ResponseWriter, vs view.State) {
	writeJSON(w, map[string]float64{
		"scale": vs.Scale,
		"pan_x": vs.PanX,
		"pan_y": vs.PanY,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
