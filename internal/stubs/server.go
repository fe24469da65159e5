// Package stubs hosts a standalone event-source server speaking the same
// wire contract the HTTP adapter consumes. It backs integration tests and
// local runs against a "remote" generator.
package stubs

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// Server serves POST /events/generate from a local generator. FailNext
// makes a bounded number of requests fail so clients can exercise their
// fallback paths.
type Server struct {
	mu       sync.Mutex
	gen      *event.Generator
	failures int
	latency  time.Duration
}

// NewServer wraps a generator. A nil generator gets a fresh one.
func NewServer(gen *event.Generator) *Server {
	if gen == nil {
		gen = event.NewGenerator()
	}
	return &Server{gen: gen}
}

// FailNext makes the next n generate calls return an error response.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failures = n
	s.mu.Unlock()
}

// SetLatency delays every generate response, for timeout testing.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

type generateResponse struct {
	Success bool               `json:"success"`
	Event   *event.MarketEvent `json:"event"`
	Error   string             `json:"error,omitempty"`
}

// Routes returns the stub's handler tree.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/generate", s.handleGenerate)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", observ.Handler())
	return mux
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adapters.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: "bad request body"})
		return
	}

	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	if fail {
		observ.IncCounter("stub_generate_failures_total", nil)
		writeJSON(w, http.StatusInternalServerError, generateResponse{Error: "injected failure"})
		return
	}

	var ev event.MarketEvent
	if req.ForceBlackSwan {
		ev = s.gen.NextBlackSwan()
	} else {
		ev = s.gen.Next(req.Type)
	}

	observ.IncCounter("stub_generate_total", map[string]string{"type": string(ev.Type)})
	writeJSON(w, http.StatusOK, generateResponse{Success: true, Event: &ev})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
