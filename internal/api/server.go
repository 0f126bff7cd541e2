// ABOUTME: HTTP API exposing ingestion, metric reads, scores and habit views as JSON.
// ABOUTME: Malformed payloads answer 400, absent data 404, backend failures 500, all with an error body.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/ingest"
	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/registry"
	"github.com/harperreed/lifeos/internal/service"
)

const (
	defaultTrendDays = 7
	maxIngestBytes   = 32 << 20
)

// Server serves the lifeos HTTP API.
type Server struct {
	svc    *service.Service
	logger *log.Logger
	mux    *http.ServeMux
}

// NewServer builds the route table. A nil logger discards output.
func NewServer(svc *service.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/ingest", s.handleIngest)
	s.mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	s.mux.HandleFunc("GET /api/metrics/{id}/latest", s.handleLatest)
	s.mux.HandleFunc("GET /api/metrics/{id}/trend", s.handleTrend)
	s.mux.HandleFunc("GET /api/metrics/{id}/average", s.handleAverage)
	s.mux.HandleFunc("GET /api/scores", s.handleScores)
	s.mux.HandleFunc("GET /api/habits/stats", s.handleHabitStats)
	s.mux.HandleFunc("GET /api/habits/today", s.handleHabitsToday)
	s.mux.HandleFunc("GET /api/flow/sessions", s.handleFlowSessions)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// ServeHTTP logs and dispatches a request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Ingester().IngestReader(r.Context(), http.MaxBytesReader(w, r.Body, maxIngestBytes))
	switch {
	case errors.Is(err, ingest.ErrMalformedPayload):
		s.logger.Warn("rejected payload", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.internalError(w, "ingest", err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, registry.All())
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeResult(w, s.svc.Metrics().GetLatest(r.Context(), id), id)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	days, err := intParam(r, "days", defaultTrendDays)
	if err != nil || days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}
	writeResult(w, s.svc.Metrics().GetTrend(r.Context(), id, days), id)
}

func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	q := r.URL.Query()

	end := s.svc.Now()
	start := end.AddDate(0, 0, -defaultTrendDays)
	var err error
	if v := q.Get("start"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC3339")
			return
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC3339")
			return
		}
	}

	res := s.svc.Metrics().GetAverage(r.Context(), id, start, end)
	if v, ok := res.Get(); ok {
		writeJSON(w, http.StatusOK, map[string]any{"metric": id, "average": v, "start": start, "end": end})
		return
	}
	writeResult(w, res, id)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", 0)
	if err != nil || days < 0 {
		writeError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}
	sc, err := s.svc.Scores(r.Context(), days)
	if err != nil {
		s.internalError(w, "scores", err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleHabitStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.HabitStats(r.Context())
	if err != nil {
		s.internalError(w, "habit stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHabitsToday(w http.ResponseWriter, r *http.Request) {
	hs, err := s.svc.HabitsToday(r.Context())
	if err != nil {
		s.internalError(w, "habits today", err)
		return
	}
	if hs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (s *Server) handleFlowSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	sessions, err := s.svc.FlowSessions(limit)
	if err != nil {
		s.internalError(w, "flow sessions", err)
		return
	}
	if sessions == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	s.logger.Error("request failed", "op", what, "err", err)
	writeError(w, http.StatusInternalServerError, what+" failed")
}

func writeResult[T any](w http.ResponseWriter, res metrics.Result[T], id string) {
	switch res.Status {
	case metrics.StatusFound:
		writeJSON(w, http.StatusOK, res.Value)
	case metrics.StatusFailed:
		writeError(w, http.StatusInternalServerError, "read failed for "+id)
	default:
		writeError(w, http.StatusNotFound, "no data for "+id)
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
