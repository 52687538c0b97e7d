// internal/monitoring/server.go
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// StatusServer serves liveness, Prometheus metrics, and the most recent
// run summary over HTTP.
type StatusServer struct {
	server *http.Server
	log    *logrus.Entry

	mu      sync.RWMutex
	summary *scraper.RunSummary
	started time.Time
}

// NewStatusServer builds the server on the given listen address.
func NewStatusServer(addr string, log *logrus.Entry) *StatusServer {
	s := &StatusServer{started: time.Now(), log: log}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves in the background. The status API is best-effort: a crawl
// does not abort because the port was taken.
func (s *StatusServer) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Warn("status server stopped")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SetSummary publishes the finished run's summary.
func (s *StatusServer) SetSummary(summary scraper.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = &summary
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": time.Since(s.started).Seconds(),
	})
}

func (s *StatusServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if summary == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no completed run yet"})
		return
	}
	json.NewEncoder(w).Encode(summary)
}
