package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	apperrors "skillvet/internal/errors"
)

// healthHandler reports overall service health including collaborator circuit
// breaker state
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "skillvet",
		"version": s.Version,
	}

	overallHealthy := true
	collaborators := make(map[string]any)
	for name, c := range s.Deps.Collaborators {
		healthy := c.IsHealthy()
		collaborators[name] = map[string]any{
			"healthy": healthy,
		}
		if !healthy {
			overallHealthy = false
		}
	}
	response["collaborators"] = collaborators

	response["sessions"] = map[string]any{
		"active": s.Deps.Registry.Len(),
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statsHandler provides server statistics including rate limiting and circuit
// breaker info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "skillvet",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"active_sessions":        s.Deps.Registry.Len(),
		},
	}

	collaborators := make(map[string]any)
	for name, c := range s.Deps.Collaborators {
		collaborators[name] = c.Stats()
	}
	response["collaborators"] = collaborators

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSONResponse writes a JSON body, recording encode failures on the span
func writeJSONResponse(w http.ResponseWriter, v any, span trace.Span) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		if span != nil {
			span.RecordError(err)
		}
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps an application error onto an HTTP status and writes it
func (s *Server) writeAppError(w http.ResponseWriter, err error, fallback string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, fallback)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeErrorResponse(w, appErr.Code, appErr.Message, status)
		return
	}
	writeErrorResponse(w, fallback, err.Error(), status)
}

// statusForError picks the HTTP status for an application error
func statusForError(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeSessionBusy, apperrors.ErrCodeSessionFinished:
		return http.StatusConflict
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeIO:
		return http.StatusBadRequest
	case apperrors.ErrorTypeService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
