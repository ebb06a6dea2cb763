// Package chi exposes the query pipeline over HTTP.
package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	healthuc "github.com/kailas-cloud/ragquery/internal/usecase/health"
)

// genericErrorMessage replaces failure detail outside non-production envs.
const genericErrorMessage = "An error occurred processing your request"

// maxBodyBytes caps the request body size.
const maxBodyBytes = 1 << 20

// QueryAnswerer runs the query pipeline.
type QueryAnswerer interface {
	Answer(ctx context.Context, query string) (domain.QueryResult, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	query       QueryAnswerer
	health      HealthChecker
	environment string
	logger      *zap.Logger
}

// NewServer creates an HTTP API server. environment gates whether failure
// detail is exposed in error responses ("prod" hides it).
func NewServer(query QueryAnswerer, health HealthChecker, environment string, logger *zap.Logger) *Server {
	return &Server{query: query, health: health, environment: environment, logger: logger}
}

// Routes registers the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/query", s.handleQuery)
	r.Get("/health", s.handleHealth)
}

// queryRequest is the inbound payload.
type queryRequest struct {
	Query string `json:"query"`
}

// errorResponse is the failure payload.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleQuery handles POST /query.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeQueryRequest(r)
	if err != nil {
		// A body we cannot decode carries no query.
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query is required"})
		return
	}

	result, err := s.query.Answer(r.Context(), req.Query)
	switch {
	case errors.Is(err, domain.ErrQueryRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query is required"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: s.errorMessage(err),
		})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// decodeQueryRequest accepts the body either as a JSON object or as a
// double-encoded JSON string containing that object.
func decodeQueryRequest(r *http.Request) (queryRequest, error) {
	var req queryRequest

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(r.Body); err != nil {
		return req, err
	}

	data := bytes.TrimSpace(raw.Bytes())
	if len(data) == 0 {
		return req, nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return req, err
		}
		data = []byte(inner)
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	return req, nil
}

// errorMessage returns the failure detail verbatim outside production.
// In prod the detail is replaced with a fixed generic message.
func (s *Server) errorMessage(err error) string {
	if s.environment == "prod" {
		return genericErrorMessage
	}
	return err.Error()
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// writeJSON writes a JSON response with the permissive CORS header.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
