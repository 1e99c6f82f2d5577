// Package web serves the read-only HTTP surface next to the SSH server:
// Prometheus metrics, score and run history as JSON, and a websocket feed
// for spectators watching live sessions.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/tui-invaders/internal/platform/raster"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ScoreSource is the subset of the store the API reads.
type ScoreSource interface {
	TopScores(gameID string, limit int) ([]storage.ScoreEntry, error)
	RecentRuns(gameID string, limit int) ([]storage.RunRecord, error)
	Totals(gameID string) (storage.RunTotals, error)
}

// Config holds the router dependencies. Every field is optional; routes
// whose dependency is missing are not mounted.
type Config struct {
	Scores      ScoreSource
	Hub         *Hub
	Gatherer    prometheus.Gatherer
	Frames      *raster.Renderer // serves live stills when Hub is set too
	CORSOrigins []string
	Logger      *log.Logger
}

// NewRouter builds the HTTP handler. It starts no goroutines and opens no
// listeners, so it can be wrapped by httptest.NewServer directly.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWS)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	h := &handlers{scores: cfg.Scores, hub: cfg.Hub, frames: cfg.Frames, log: logger}
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/modes", h.modes)
		if cfg.Hub != nil {
			r.Get("/live", h.live)
			if cfg.Frames != nil {
				r.Get("/live/{session}/frame.png", h.liveFrame)
			}
		}
		if cfg.Scores != nil {
			r.Route("/{mode}", func(r chi.Router) {
				r.Use(knownMode)
				r.Get("/scores", h.topScores)
				r.Get("/runs", h.recentRuns)
				r.Get("/totals", h.totals)
			})
		}
	})
	return r
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}

func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}

func knownMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !registry.Exists(chi.URLParam(r, "mode")) {
			writeError(w, "unknown mode", http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return min(n, maxLimit)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
