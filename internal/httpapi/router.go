// Package httpapi serves the diagnostics HTTP surface (§3.5): health
// checks, prometheus metrics, and a per-connection heartbeat/ack snapshot,
// kept on a separate port from the game's raw TCP listener.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Diagnostics reports the live state the /diagnostics endpoint serializes.
// One entry per connected session, mirroring the teacher's
// DiagnosticsSnapshot shape.
type Diagnostics struct {
	Connections int                  `json:"connections"`
	Tick        uint64               `json:"tick"`
	TickRate    int                  `json:"tickRate"`
	Sessions    []SessionDiagnostics `json:"sessions"`
}

// SessionDiagnostics is one connected session's heartbeat/ack summary.
type SessionDiagnostics struct {
	EntityID   uint64 `json:"entityId"`
	LastAckCID uint32 `json:"lastAckCid"`
}

// Source supplies the live state the router renders; Hub implements it.
type Source interface {
	DiagnosticsSnapshot() Diagnostics
}

// RouterConfig configures NewRouter, grounded on
// iamvalenciia-kick-game-stream/fight-club-go/internal/api's
// RouterConfig/NewRouter split: construction is pure, so tests can drive
// it with httptest.NewServer without opening a real listener.
type RouterConfig struct {
	Source      Source
	CORSOrigins []string
}

// NewRouter builds the diagnostics HTTP handler. It opens no listeners and
// starts no goroutines.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		var snap Diagnostics
		if cfg.Source != nil {
			snap = cfg.Source.DiagnosticsSnapshot()
		}
		data, err := json.Marshal(snap)
		if err != nil {
			http.Error(w, "failed to encode diagnostics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	return r
}

// Server wraps an http.Server bound to the diagnostics port.
type Server struct {
	httpServer *http.Server
}

// NewServer configures an http.Server for addr with a 5-second
// ReadHeaderTimeout, grounded on the teacher's diagnostics server
// construction. It does not listen until ListenAndServe.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks serving the diagnostics surface.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the diagnostics server immediately via http.Server.Close,
// closing active connections without waiting for in-flight requests.
func (s *Server) Shutdown() error {
	return s.httpServer.Close()
}
