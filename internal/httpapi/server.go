package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tickstats/internal/app"
	"tickstats/internal/domain"
	"tickstats/internal/metrics"
	"tickstats/internal/ports"
)

type Server struct {
	addr   string
	svc    *app.Service
	logger *slog.Logger
	cache  ports.Cache
	repo   ports.Repository
	srv    *http.Server
}

func NewServer(addr string, svc *app.Service, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		svc:    svc,
		logger: logger,
	}
}

func (s *Server) WithCache(c ports.Cache) *Server {
	s.cache = c
	return s
}

func (s *Server) WithRepo(r ports.Repository) *Server {
	s.repo = r
	return s
}

// Handler builds the route table. Exposed separately so tests can
// drive it through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ticks", s.handleTicks)
	mux.HandleFunc("/statistics", s.handleStatistics)
	mux.HandleFunc("/statistics/", s.handleInstrumentStatistics)
	mux.HandleFunc("/prices/latest/", s.handleLatest)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server starting", "addr", s.addr)
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleTicks admits one tick. Accepted ticks answer 201 Created;
// ticks older than the window answer 204 No Content, mirroring the
// engine's Accepted/Rejected outcome. Shape validation is this
// layer's job, the engine never sees malformed input.
func (s *Server) handleTicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.count("/ticks", http.StatusMethodNotAllowed)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var t domain.Tick
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.count("/ticks", http.StatusBadRequest)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if t.Instrument == "" || t.Price <= 0 || t.Timestamp <= 0 {
		s.count("/ticks", http.StatusBadRequest)
		http.Error(w, "instrument, positive price and timestamp required", http.StatusBadRequest)
		return
	}

	if !s.svc.Ingest(t) {
		s.count("/ticks", http.StatusNoContent)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if s.cache != nil {
		if err := s.cache.PushTick(r.Context(), t); err != nil {
			s.logger.Warn("cache push error", "err", err, "instrument", t.Instrument)
		}
	}
	s.count("/ticks", http.StatusCreated)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("{}"))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.count("/statistics", http.StatusOK)
	writeJSON(w, s.svc.Engine().SnapshotAll())
}

func (s *Server) handleInstrumentStatistics(w http.ResponseWriter, r *http.Request) {
	instrument := strings.TrimPrefix(r.URL.Path, "/statistics/")
	if instrument == "" || strings.Contains(instrument, "/") {
		s.count("/statistics/{instrument}", http.StatusBadRequest)
		http.Error(w, "instrument required", http.StatusBadRequest)
		return
	}
	// unknown instruments report the empty result, not an error
	s.count("/statistics/{instrument}", http.StatusOK)
	writeJSON(w, s.svc.Engine().SnapshotInstrument(instrument))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	instrument := strings.TrimPrefix(r.URL.Path, "/prices/latest/")
	if instrument == "" {
		s.count("/prices/latest/{instrument}", http.StatusBadRequest)
		http.Error(w, "instrument required", http.StatusBadRequest)
		return
	}
	if s.cache == nil {
		s.count("/prices/latest/{instrument}", http.StatusNotFound)
		http.Error(w, "no cache configured", http.StatusNotFound)
		return
	}
	t, err := s.cache.GetLatest(r.Context(), instrument)
	if err != nil {
		s.count("/prices/latest/{instrument}", http.StatusNotFound)
		http.Error(w, "no data for "+instrument, http.StatusNotFound)
		return
	}
	s.count("/prices/latest/{instrument}", http.StatusOK)
	writeJSON(w, t)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}
	healthy := true

	if s.cache != nil {
		if err := s.cache.Health(r.Context()); err != nil {
			components["cache"] = err.Error()
			healthy = false
		} else {
			components["cache"] = "ok"
		}
	}
	if s.repo != nil {
		if err := s.repo.Health(r.Context()); err != nil {
			components["storage"] = err.Error()
			healthy = false
		} else {
			components["storage"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	s.count("/healthz", status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     map[bool]string{true: "healthy", false: "degraded"}[healthy],
		"components": components,
	})
}

func (s *Server) count(route string, code int) {
	metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
