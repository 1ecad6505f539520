package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	apperrors "github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

// Envelope is the response body shape of every JSON endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Stats   interface{} `json:"stats,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// ExposeErrors echoes the cause of 500 responses in the "error" field.
	// Never enable in production.
	ExposeErrors bool
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteList writes a listing with its count and optional stats.
func (h *BaseHandler) WriteList(w http.ResponseWriter, data interface{}, count int, stats interface{}) {
	h.WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Stats: stats, Data: data})
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// HandleServiceError maps err onto the envelope. Unknown errors become 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalError("Server error", err)
	}

	env := Envelope{
		Success: false,
		Message: appErr.Message,
		Details: appErr.Details,
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err)
		if h.ExposeErrors && appErr.Cause != nil {
			env.Error = appErr.Cause.Error()
		}
	}

	h.WriteJSON(w, appErr.StatusCode, env)
}

var errInvalidBody = apperrors.NewValidationError("Invalid request body", apperrors.ErrCodeValidationFailed)

// DecodeJSON reads the request body into dst. An empty body leaves dst
// untouched.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody.WithCause(err)
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header.
// ok is false when the header is missing or uses another scheme.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) (token string, ok bool) {
	const prefix = "Bearer "
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	return strings.TrimSpace(authHeader[len(prefix):]), true
}

// IDParam parses the {id} path parameter.
func (h *BaseHandler) IDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid id", apperrors.ErrCodeValidationFailed)
	}
	return id, nil
}

// QueryInt returns the integer query parameter name, or nil when absent.
func (h *BaseHandler) QueryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationFieldError(name, name+" must be a number", apperrors.ErrCodeValidationFailed)
	}
	return &v, nil
}
