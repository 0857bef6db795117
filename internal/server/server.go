// Package server exposes the configuration tester over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"mcptest/internal/config"
	"mcptest/internal/domain"
	"mcptest/internal/metrics"
	"mcptest/internal/storage"
)

const maxBodyBytes = 1 << 20

// ReportTester runs one configuration test
type ReportTester interface {
	Test(ctx context.Context, source, input string) domain.TestReport
}

// Server serves the test endpoint, report history and metrics
type Server struct {
	config *config.Config
	tester ReportTester
	store  storage.Storage
	log    *slog.Logger
	server *http.Server
}

type testRequest struct {
	Config string `json:"config"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// New creates a Server. store may be nil, in which case reports are not kept
// and the history routes return empty results.
func New(cfg *config.Config, tester ReportTester, store storage.Storage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		tester: tester,
		store:  store,
		log:    logger,
	}
}

// Handler returns the routed handler wrapped in CORS and request accounting
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/test-mcp", s.handleTest).Methods(http.MethodPost)
	r.HandleFunc("/api/reports", s.handleListReports).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/{id}", s.handleGetReport).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	r.Use(s.accounting)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// Start listens on the configured port until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.GetAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// A test in flight may hold its request for the whole observation window.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Timeout+5*time.Second)
	defer cancel()
	s.log.Info("server shutting down")
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Config == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Configuration is required"})
		return
	}

	// A disconnecting client does not cut the observation window short.
	ctx := context.WithoutCancel(r.Context())
	report := s.tester.Test(ctx, "http", req.Config)

	s.log.Info("test finished",
		"id", report.ID,
		"outcome", report.Outcome,
		"server", report.ServerName,
		"connected", report.ConnectionStatus,
		"timed_out", report.TimedOut,
		"duration_ms", report.DurationMs,
	)
	if report.Provisional() {
		s.log.Warn("no error and no connection observed, reporting success", "id", report.ID)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, report); err != nil {
			s.log.Error("failed to save report", "id", report.ID, "error", err)
			metrics.RecordError("storage", err)
		}
	}

	status := http.StatusOK
	if !report.Success {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := s.config.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	summaries := []domain.ReportSummary{}
	if s.store != nil {
		list, err := s.store.List(r.Context(), limit)
		if err != nil {
			s.log.Error("failed to list reports", "error", err)
			metrics.RecordError("storage", err)
			s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list reports"})
			return
		}
		summaries = append(summaries, list...)
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.store == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: storage.ErrNotFound.Error()})
		return
	}

	report, err := s.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.log.Error("failed to load report", "id", id, "error", err)
		metrics.RecordError("storage", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load report"})
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK")) //nolint:errcheck
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}
