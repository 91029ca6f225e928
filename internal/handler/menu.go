package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/service"
)

// MenuService is the vendor and menu behaviour the handlers need.
type MenuService interface {
	ListVendors(ctx context.Context) ([]*model.Vendor, error)
	MenuWithPredictions(ctx context.Context, vendorID int64, slot string) (*service.VendorMenu, error)
	VendorStats(ctx context.Context, vendorID int64) (*predict.VendorStats, error)
	VendorMenu(ctx context.Context, sess *model.Session) ([]*model.MenuItem, error)
	SetAvailability(ctx context.Context, sess *model.Session, itemID int64, available bool) error
	Slots() []string
}

// MenuHandler handles vendor listings and menus.
type MenuHandler struct {
	svc    MenuService
	logger *slog.Logger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		svc:    svc,
		logger: logger,
	}
}

// Vendors handles GET /api/v1/vendors.
func (h *MenuHandler) Vendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.svc.ListVendors(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if vendors == nil {
		vendors = []*model.Vendor{}
	}

	writeJSON(w, http.StatusOK, vendors)
}

// Menu handles GET /api/v1/vendors/{vendorID}/menu?slot=.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := int64Param(w, r, "vendorID")
	if !ok {
		return
	}

	menu, err := h.svc.MenuWithPredictions(r.Context(), vendorID, r.URL.Query().Get("slot"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	resp := dto.MenuResponse{
		Vendor: menu.Vendor,
		Slot:   menu.Slot,
		Slots:  h.svc.Slots(),
		Items:  make([]dto.MenuItemResponse, 0, len(menu.Items)),
	}
	for _, entry := range menu.Items {
		resp.Items = append(resp.Items, dto.MenuItemResponse{
			MenuItem:   entry.Item,
			Prediction: entry.Prediction,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/vendors/{vendorID}/stats.
func (h *MenuHandler) Stats(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := int64Param(w, r, "vendorID")
	if !ok {
		return
	}

	stats, err := h.svc.VendorStats(r.Context(), vendorID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// VendorMenu handles GET /api/v1/vendor/menu.
func (h *MenuHandler) VendorMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.VendorMenu(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	resp := make([]dto.MenuItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.MenuItemResponse{MenuItem: item})
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetAvailability handles PATCH /api/v1/vendor/menu/{itemID}.
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	itemID, ok := int64Param(w, r, "itemID")
	if !ok {
		return
	}

	var req dto.AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Available == nil {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "is_active is required")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	if err := h.svc.SetAvailability(r.Context(), sess, itemID, *req.Available); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("menu_item_availability_changed",
		"vendor_id", sess.VendorID,
		"item_id", itemID,
		"available", *req.Available,
	)

	w.WriteHeader(http.StatusNoContent)
}
