package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"tracefile/internal/frontend"
	"tracefile/internal/report"
)

// Server exposes a finished chart as an HTML page and as JSON.
type Server struct {
	chart    report.Chart
	renderer *frontend.Renderer
}

// New creates a Server for chart.
func New(chart report.Chart, renderer *frontend.Renderer) *Server {
	if renderer == nil {
		renderer = frontend.NewRenderer()
	}
	return &Server{chart: chart, renderer: renderer}
}

// Routes returns the HTTP handler that exposes the application endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/timeline", s.handleTimeline)
	mux.Handle("/static/", http.StripPrefix("/static/", s.renderer.StaticHandler()))
	return mux
}

// Start runs the HTTP server until the provided context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.renderer.RenderTimeline(w, s.chart); err != nil {
		http.Error(w, fmt.Sprintf("render page: %v", err), http.StatusInternalServerError)
	}
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.chart)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
	}
}

// Display shows charts in the browser. Show blocks until ctx is cancelled.
type Display struct {
	Addr     string
	Renderer *frontend.Renderer
}

// Show serves chart on d.Addr.
func (d Display) Show(ctx context.Context, chart report.Chart) error {
	log.Printf("serving timeline on http://%s (interrupt to stop)", d.Addr)
	if err := New(chart, d.Renderer).Start(ctx, d.Addr); err != nil {
		return fmt.Errorf("serve timeline: %w", err)
	}
	return nil
}
