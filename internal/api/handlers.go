package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/auth"
	"github.com/leafsii/blog-backend/internal/blog"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
	"go.uber.org/zap"
)

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
}

// HealthChecker reports whether the store can serve requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Handler struct {
	svc    *blog.Service
	health HealthChecker
	logger *zap.SugaredLogger
}

func NewHandler(svc *blog.Service, health HealthChecker, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		svc:    svc,
		health: health,
		logger: logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.IsHealthy(r.Context()) {
		h.writeError(w, http.StatusServiceUnavailable, "NOT_READY", "database is not reachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warnw("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeErrorResponse(w, status, ErrorResponse{Code: code, Message: message})
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("API error", "code", resp.Code, "message", resp.Message, "status", status)
	} else {
		h.logger.Debugw("API error", "code", resp.Code, "message", resp.Message, "status", status)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	h.writeJSON(w, status, resp)
}

// writeServiceError maps service and store errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeErrorResponse(w, http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid input.",
			Fields:  verr.Fields,
		})
	case errors.Is(err, errMalformedBody):
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
	case errors.Is(err, interfaces.ErrInvalidQuery):
		h.writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
	case errors.Is(err, blog.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found.")
	case errors.Is(err, access.ErrUnauthenticated):
		h.writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication credentials were not provided.")
	case errors.Is(err, auth.ErrInvalidToken):
		h.writeError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid token.")
	case errors.Is(err, access.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "PERMISSION_DENIED", "You do not have permission to perform this action.")
	default:
		h.logger.Errorw("Request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error.")
	}
}

// pathID reads the numeric {id} route parameter. Routes only match digits,
// so a failure here means the id overflowed and cannot exist.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, blog.ErrNotFound
	}
	return id, nil
}

// listQuery reads search, ordering, pagination and the allowed id filters
// from the query string.
func listQuery(r *http.Request, filters ...string) (*interfaces.Query, error) {
	params := r.URL.Query()
	q := &interfaces.Query{
		Search:  params.Get("search"),
		OrderBy: query.ParseOrdering(params.Get("ordering")),
	}

	verr := &blog.ValidationError{}
	for _, name := range filters {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add(name, "Select a valid choice. That choice is not one of the available choices.")
			continue
		}
		q.Where = append(q.Where, interfaces.Filter{Field: name, Value: id})
	}

	q.Limit = nonNegative(verr, params, "limit")
	q.Offset = nonNegative(verr, params, "offset")
	return q, verr.OrNil()
}

func nonNegative(verr *blog.ValidationError, params map[string][]string, name string) *int {
	values := params[name]
	if len(values) == 0 || values[0] == "" {
		return nil
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		verr.Add(name, "A valid non-negative integer is required.")
		return nil
	}
	return &n
}
