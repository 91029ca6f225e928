// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/service"
)

// Version is reported by the index endpoint.
const Version = "1.0.0"

// Handler serves the routes that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index identifies the service.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "canteenrush",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a request body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// int64Param reads a numeric chi URL parameter, writing a 400 on failure.
func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// serviceErrors maps service sentinels to HTTP responses.
var serviceErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{service.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Not allowed for this account"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{service.ErrUserBanned, http.StatusForbidden, "USER_BANNED", "Karma too low: account is banned"},
	{service.ErrUserExists, http.StatusConflict, "USER_EXISTS", "User already exists"},
	{service.ErrInvalidPIN, http.StatusBadRequest, "INVALID_PIN", "PIN must be exactly 4 digits"},
	{service.ErrMissingField, http.StatusBadRequest, "MISSING_FIELD", "Roll number and name are required"},
	{service.ErrMenuItemNotFound, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found"},
	{service.ErrItemUnavailable, http.StatusConflict, "ITEM_UNAVAILABLE", "Menu item is not available"},
	{service.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS", "Invalid order status"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", "Status transition not allowed"},
	{service.ErrStatusConflict, http.StatusConflict, "STATUS_CONFLICT", "Order was updated by someone else"},
}

// handleServiceError maps service errors to HTTP responses.
// Anything unrecognised is logged and reported as a 500.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			writeError(w, se.status, se.code, se.message)
			return
		}
	}

	logger.Error("internal_error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
