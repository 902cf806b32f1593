// Package api serves the generator operations as a JSON REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"api-testcase-generator/internal/parser"
	"api-testcase-generator/internal/plan"
	"api-testcase-generator/internal/pytestgen"
	"api-testcase-generator/internal/service"
	"api-testcase-generator/internal/testconfig"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8090"

// requestTimeout bounds a single request, LLM calls included.
const requestTimeout = 5 * time.Minute

// Server represents the API server
type Server struct {
	svc    *service.Service
	router *chi.Mux
}

// NewServer creates a new API server
func NewServer(svc *service.Service) *Server {
	s := &Server{
		svc:    svc,
		router: chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/test-plans", s.generateTestPlan)
		r.Post("/test-cases", s.generateTestCases)
		r.Post("/pipeline", s.runPipeline)

		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.showTestConfig)
			r.Put("/profile", s.switchTestProfile)
		})

		r.Route("/pytest", func(r chi.Router) {
			r.Get("/test-cases", s.readTestCases)
			r.Post("/files", s.generateTestFile)
			r.Post("/config-files", s.generateConfigFiles)
		})
	})
}

// requestLogger logs each request through zerolog; stdout stays free for tool output.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type inputRequest struct {
	InputDir string `json:"input_dir"`
}

type profileRequest struct {
	ProfileName string `json:"profile_name"`
}

type testFileRequest struct {
	CSVPath    string `json:"csv_path"`
	Component  string `json:"component"`
	OutputPath string `json:"output_path"`
	UseAI      bool   `json:"use_ai"`
}

type configFilesRequest struct {
	OutputDir string `json:"output_dir"`
}

func (s *Server) generateTestPlan(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeJSON(w, r, &req) || !requireField(w, "input_dir", req.InputDir) {
		return
	}
	result, err := s.svc.GenerateTestPlan(r.Context(), req.InputDir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) generateTestCases(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeJSON(w, r, &req) || !requireField(w, "input_dir", req.InputDir) {
		return
	}
	result, err := s.svc.GenerateTestCases(r.Context(), req.InputDir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeJSON(w, r, &req) || !requireField(w, "input_dir", req.InputDir) {
		return
	}
	result, err := s.svc.RunPipeline(r.Context(), req.InputDir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) showTestConfig(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.ShowTestConfig()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) switchTestProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) || !requireField(w, "profile_name", req.ProfileName) {
		return
	}
	result, err := s.svc.SwitchTestProfile(req.ProfileName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) readTestCases(w http.ResponseWriter, r *http.Request) {
	csvPath := r.URL.Query().Get("csv_path")
	if !requireField(w, "csv_path", csvPath) {
		return
	}
	summary, err := s.svc.ReadTestCases(csvPath, r.URL.Query().Get("component"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) generateTestFile(w http.ResponseWriter, r *http.Request) {
	var req testFileRequest
	if !decodeJSON(w, r, &req) ||
		!requireField(w, "csv_path", req.CSVPath) ||
		!requireField(w, "component", req.Component) ||
		!requireField(w, "output_path", req.OutputPath) {
		return
	}
	result, err := s.svc.GenerateTestFile(r.Context(), req.CSVPath, req.Component, req.OutputPath, req.UseAI)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) generateConfigFiles(w http.ResponseWriter, r *http.Request) {
	var req configFilesRequest
	if !decodeJSON(w, r, &req) || !requireField(w, "output_dir", req.OutputDir) {
		return
	}
	result, err := s.svc.GenerateConfigFiles(req.OutputDir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func requireField(w http.ResponseWriter, name, value string) bool {
	if value == "" {
		writeError(w, http.StatusBadRequest, name+" is required")
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		specNotFound    *parser.SpecNotFoundError
		inputNotFound   *plan.InputNotFoundError
		profileNotFound *testconfig.ProfileNotFoundError
		noMatch         *pytestgen.NoMatchingTestCasesError
		specParse       *parser.SpecParseError
		configErr       *testconfig.ConfigError
		invalidPlan     *plan.InvalidPlanError
	)
	switch {
	case errors.As(err, &specNotFound), errors.As(err, &inputNotFound),
		errors.As(err, &profileNotFound), errors.As(err, &noMatch):
		return http.StatusNotFound
	case errors.As(err, &specParse), errors.As(err, &configErr),
		errors.As(err, &invalidPlan), errors.Is(err, plan.ErrNoReadableFiles):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPlannerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
