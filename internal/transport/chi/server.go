package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mqttguard/internal/domain"
	logpkg "github.com/kailas-cloud/mqttguard/internal/logger"
	healthuc "github.com/kailas-cloud/mqttguard/internal/usecase/health"
	predictuc "github.com/kailas-cloud/mqttguard/internal/usecase/predict"
)

// Greeting is returned for every non-POST request on the public port.
const Greeting = "Hello, World! Here is a GET response"

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 64 << 10

// Error codes returned in ErrorResponse.Code.
const (
	CodeMalformedPayload = "malformed_payload"
	CodeSchemaMismatch   = "schema_mismatch"
	CodeLengthRequired   = "length_required"
	CodePayloadTooLarge  = "payload_too_large"
	CodePredictionFailed = "prediction_failed"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Missing []string              `json:"missing,omitempty"`
	Unknown []string              `json:"unknown,omitempty"`
	Invalid []domain.InvalidField `json:"invalid,omitempty"`
}

// PredictionResponse is the JSON body of a successful prediction.
type PredictionResponse struct {
	RandomForest int `json:"random_forest"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CachedItems *int              `json:"cached_items,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the prediction API and the admin endpoints.
type Server struct {
	predictions   *predictuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. health may be nil when no admin surface is served.
func NewServer(predictions *predictuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		predictions:  predictions,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		schemaMismatchHandler,
		sentinelHandler(domain.ErrMalformedPayload, http.StatusBadRequest, CodeMalformedPayload, true),
		sentinelHandler(domain.ErrLengthRequired, http.StatusLengthRequired, CodeLengthRequired, false),
		sentinelHandler(domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, false),
		sentinelHandler(domain.ErrPredictionFailed, http.StatusInternalServerError, CodePredictionFailed, false),
	}
	return s
}

// WithMaxBodyBytes sets the request body cap.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes mounts the public API: POST on any path predicts, every other
// method on any path gets the greeting.
func (s *Server) Routes(r chi.Router) {
	r.Post("/", s.Predict)
	r.Post("/*", s.Predict)
	r.MethodNotAllowed(s.Greet)
	r.NotFound(s.Greet)
}

// AdminRoutes mounts /health and /metrics.
func (s *Server) AdminRoutes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Greet handles every non-POST request.
func (s *Server) Greet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, Greeting)
}

// Predict handles POST /*.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.predictions.Predict(r.Context(), body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{RandomForest: res.Label})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		CachedItems: report.CachedItems,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readBody reads exactly Content-Length bytes. Bodies of unknown length are refused.
func (s *Server) readBody(r *http.Request) ([]byte, error) {
	switch {
	case r.ContentLength < 0:
		return nil, domain.ErrLengthRequired
	case r.ContentLength > s.maxBodyBytes:
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d",
			domain.ErrPayloadTooLarge, r.ContentLength, s.maxBodyBytes)
	}

	body := make([]byte, r.ContentLength)
	if _, err := io.ReadFull(r.Body, body); err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrMalformedPayload, err)
	}
	return body, nil
}

// requestLogger prefers the per-request logger placed in the context by middleware.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Client-caused errors may echo the full message; others only the sentinel text.
func sentinelHandler(sentinel error, status int, code string, detailed bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if detailed {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// schemaMismatchHandler reports the offending fields alongside the message.
func schemaMismatchHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		return false
	}
	var se *domain.SchemaError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    CodeSchemaMismatch,
			Message: se.Error(),
			Missing: se.Missing,
			Unknown: se.Unknown,
			Invalid: se.Invalid,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, CodeSchemaMismatch, domain.ErrSchemaMismatch.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrPredictionFailed) {
				log.Error("prediction error", zap.Error(err))
			} else {
				log.Debug("request rejected", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
