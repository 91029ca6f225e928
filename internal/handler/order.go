package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/notify"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/service"
)

// OrderService is the order lifecycle behaviour the handlers need.
type OrderService interface {
	PlaceOrder(ctx context.Context, sess *model.Session, input service.PlaceOrderInput) (*service.PlaceOrderResult, error)
	StudentOrders(ctx context.Context, sess *model.Session) ([]*model.Order, error)
	VendorBoard(ctx context.Context, sess *model.Session) ([]*model.BoardEntry, error)
	GetByToken(ctx context.Context, sess *model.Session, token string) (*model.Order, error)
	AdvanceStatus(ctx context.Context, sess *model.Session, orderID string, to model.Status) (*model.Order, error)
	MarkNoShow(ctx context.Context, sess *model.Session, orderID string) (*service.NoShowResult, error)
}

// VendorStatsSource summarises a vendor's queue.
type VendorStatsSource interface {
	VendorStats(ctx context.Context, vendorID int64) (*predict.VendorStats, error)
}

// SeenStore remembers which order statuses a session was last shown.
type SeenStore interface {
	LastSeenStatuses(ctx context.Context, sessionID string) (map[string]model.Status, error)
	SaveLastSeen(ctx context.Context, sessionID string, statuses map[string]model.Status, ttl time.Duration) error
}

// OrderHandler handles student and vendor order endpoints.
type OrderHandler struct {
	svc     OrderService
	stats   VendorStatsSource
	seen    SeenStore
	seenTTL time.Duration
	logger  *slog.Logger
}

// NewOrderHandler creates a new OrderHandler. seenTTL bounds how long
// notification state outlives the session that polled.
func NewOrderHandler(svc OrderService, stats VendorStatsSource, seen SeenStore, seenTTL time.Duration, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		svc:     svc,
		stats:   stats,
		seen:    seen,
		seenTTL: seenTTL,
		logger:  logger,
	}
}

// Place handles POST /api/v1/orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.PlaceOrder(r.Context(), auth.SessionFromContext(r.Context()), service.PlaceOrderInput{
		MenuItemID: req.MenuItemID,
		Slot:       req.Slot,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	order := result.Order
	h.logger.Info("order_placed",
		"order_id", order.ID,
		"token", order.Token,
		"user_id", order.UserID,
		"vendor_id", order.VendorID,
		"pickup", order.PredictedPickupTime,
		"rush", result.Prediction.IsRushHour,
		"slot_missed", result.Prediction.SlotMissed,
	)

	writeJSON(w, http.StatusCreated, dto.PlaceOrderResponse{
		Order:      dto.ToOrderResponse(order),
		Prediction: result.Prediction,
	})
}

// MyOrders handles GET /api/v1/me/orders.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.StudentOrders(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderList(orders))
}

// Notifications handles GET /api/v1/me/notifications.
// Each poll reports orders that turned Ready since the previous poll.
func (h *OrderHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())

	orders, err := h.svc.StudentOrders(r.Context(), sess)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	lastSeen, err := h.seen.LastSeenStatuses(r.Context(), sess.ID)
	if err != nil {
		// Without history nothing can be reported; the next poll starts fresh.
		h.logger.Warn("notify_state_unavailable", "error", err)
		lastSeen = nil
	}

	ready, next := notify.ReadyTransitions(lastSeen, orders)

	if err := h.seen.SaveLastSeen(r.Context(), sess.ID, next, h.seenTTL); err != nil {
		h.logger.Warn("notify_state_save_failed", "error", err)
	}

	writeJSON(w, http.StatusOK, dto.NotificationsResponse{Ready: dto.ToOrderList(ready)})
}

// Board handles GET /api/v1/vendor/orders.
func (h *OrderHandler) Board(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())

	entries, err := h.svc.VendorBoard(r.Context(), sess)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	stats, err := h.stats.VendorStats(r.Context(), sess.VendorID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBoardResponse(entries, stats))
}

// Lookup handles GET /api/v1/vendor/orders/lookup?token=.
func (h *OrderHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "query parameter 'token' is required")
		return
	}

	order, err := h.svc.GetByToken(r.Context(), auth.SessionFromContext(r.Context()), token)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// Advance handles POST /api/v1/vendor/orders/{orderID}/status.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	to, ok := model.ParseStatus(req.Status)
	if !ok {
		handleServiceError(w, h.logger, service.ErrInvalidStatus)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	order, err := h.svc.AdvanceStatus(r.Context(), auth.SessionFromContext(r.Context()), orderID, to)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("order_status_changed",
		"order_id", order.ID,
		"vendor_id", order.VendorID,
		"status", order.Status,
	)

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// NoShow handles POST /api/v1/vendor/orders/{orderID}/no-show.
func (h *OrderHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	result, err := h.svc.MarkNoShow(r.Context(), auth.SessionFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if result.Success {
		h.logger.Info("order_no_show",
			"order_id", orderID,
			"user_id", result.UserID,
			"points", result.Points,
		)
	}

	writeJSON(w, http.StatusOK, dto.NoShowResponse{
		Success: result.Success,
		UserID:  result.UserID,
		Points:  result.Points,
	})
}
