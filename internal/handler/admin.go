package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/model"
)

// AdminService is the read-only admin behaviour the handlers need.
type AdminService interface {
	Users(ctx context.Context, sess *model.Session) ([]*model.User, error)
	RecentOrders(ctx context.Context, sess *model.Session, limit int) ([]*model.Order, error)
	OrderEvents(ctx context.Context, sess *model.Session, orderID string) ([]*model.OrderEvent, error)
}

// AdminHandler provides admin-only endpoints for operations and support.
type AdminHandler struct {
	svc    AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// Users handles GET /api/v1/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentList(users))
}

// Orders handles GET /api/v1/admin/orders?limit=.
// A missing or malformed limit falls back to the service maximum.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.svc.RecentOrders(r.Context(), auth.SessionFromContext(r.Context()), limit)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderList(orders))
}

// OrderEvents handles GET /api/v1/admin/orders/{orderID}/events.
func (h *AdminHandler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.OrderEvents(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []*model.OrderEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}
