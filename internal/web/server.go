package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"roofscope/internal/domain"
	"roofscope/internal/service"
)

// analysisRunner is the subset of service.AnalysisService the server requires.
type analysisRunner interface {
	Run(ctx context.Context, req service.RunRequest) (int, error)
}

// reportGenerator is the subset of service.ReportService the server requires.
type reportGenerator interface {
	Generate(ctx context.Context, req service.ReportRequest) (*service.ReportResult, error)
}

// analysisRepository is the subset of store.AnalysisStore the server requires.
type analysisRepository interface {
	Create(ctx context.Context, analysisID, photoID, propertyID string) error
	GetByID(ctx context.Context, analysisID string) (*domain.AnalysisRecord, error)
}

// photoRepository is the subset of store.PhotoStore the server requires.
type photoRepository interface {
	Create(ctx context.Context, rec *domain.PhotoRecord) error
}

type Server struct {
	runner   analysisRunner
	reports  reportGenerator
	analyses analysisRepository
	photos   photoRepository
	mux      *http.ServeMux
	logger   *slog.Logger
}

func NewServer(
	runner analysisRunner,
	reports reportGenerator,
	analyses analysisRepository,
	photos photoRepository,
	logger *slog.Logger,
) *Server {
	s := &Server{
		runner:   runner,
		reports:  reports,
		analyses: analyses,
		photos:   photos,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /photos", s.handleCreatePhoto)
	s.mux.HandleFunc("POST /analyses", s.handleCreateAnalysis)
	s.mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)
	s.mux.HandleFunc("POST /reports", s.handleCreateReport)
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, s.mux).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:    addr,
		Handler: s,
		// Provider calls run inside the request, so the write timeout has to
		// cover a full analysis.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
