package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/service"
)

var (
	student = &model.Session{ID: "sess-student", Role: model.RoleStudent, UserID: "21CS001", Name: "Asha"}
	vendor  = &model.Session{ID: "sess-vendor", Role: model.RoleVendor, VendorID: 1, Name: "Grill Master"}
	admin   = &model.Session{ID: "sess-admin", Role: model.RoleAdmin, AdminID: 1, Name: "admin"}
)

func newTestOrderHandler(svc OrderService) *OrderHandler {
	stats := &fakeStats{stats: &predict.VendorStats{QueueLoad: 4, AvgWaitMinutes: 10}}
	return NewOrderHandler(svc, stats, newMemorySeen(), time.Hour, discardLogger())
}

func TestOrderHandler_Place(t *testing.T) {
	t.Parallel()

	svc := &fakeOrderService{
		placed: &service.PlaceOrderResult{
			Order: &model.Order{
				ID:                  "01J0ORDER",
				Token:               "#VR-1234",
				UserID:              "21CS001",
				VendorID:            1,
				ItemName:            "Veg Burger",
				Status:              model.StatusReceived,
				PredictedPickupTime: "11:48 AM",
			},
			Prediction: &predict.Prediction{PickupTime: "11:48 AM", TotalMinutes: 48},
		},
	}
	h := newTestOrderHandler(svc)

	rec := serve(http.MethodPost, "/orders", "/orders", `{"menu_item_id":7,"slot":"12:00 PM"}`, student, h.Place)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if svc.placeInput.MenuItemID != 7 || svc.placeInput.Slot != "12:00 PM" {
		t.Errorf("input = %+v", svc.placeInput)
	}

	var resp dto.PlaceOrderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.Token != "#VR-1234" {
		t.Errorf("token = %q", resp.Order.Token)
	}
	if resp.Order.Progress != 0 {
		t.Errorf("progress = %d, want 0", resp.Order.Progress)
	}
	if resp.Prediction == nil || resp.Prediction.TotalMinutes != 48 {
		t.Errorf("prediction = %+v", resp.Prediction)
	}
}

func TestOrderHandler_PlaceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{"menu_item_id":`, nil, http.StatusBadRequest, "INVALID_JSON"},
		{"banned student", `{"menu_item_id":7}`, service.ErrUserBanned, http.StatusForbidden, "USER_BANNED"},
		{"unknown item", `{"menu_item_id":99}`, service.ErrMenuItemNotFound, http.StatusNotFound, "MENU_ITEM_NOT_FOUND"},
		{"sold out", `{"menu_item_id":7}`, service.ErrItemUnavailable, http.StatusConflict, "ITEM_UNAVAILABLE"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestOrderHandler(&fakeOrderService{err: tt.err})
			rec := serve(http.MethodPost, "/orders", "/orders", tt.body, student, h.Place)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestOrderHandler_MyOrdersNeverNull(t *testing.T) {
	t.Parallel()

	h := newTestOrderHandler(&fakeOrderService{})
	rec := serve(http.MethodGet, "/me/orders", "/me/orders", "", student, h.MyOrders)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestOrderHandler_Notifications(t *testing.T) {
	t.Parallel()

	svc := &fakeOrderService{}
	h := newTestOrderHandler(svc)

	poll := func() []dto.OrderResponse {
		t.Helper()
		rec := serve(http.MethodGet, "/me/notifications", "/me/notifications", "", student, h.Notifications)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp dto.NotificationsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp.Ready
	}

	svc.setOrders(&model.Order{ID: "a", Status: model.StatusCooking})
	if ready := poll(); len(ready) != 0 {
		t.Fatalf("first poll reported %d orders", len(ready))
	}

	svc.setOrders(&model.Order{ID: "a", Status: model.StatusReady})
	ready := poll()
	if len(ready) != 1 || ready[0].ID != "a" {
		t.Fatalf("second poll = %+v, want order a", ready)
	}
	if ready[0].Progress != 100 {
		t.Errorf("progress = %d, want 100", ready[0].Progress)
	}

	if ready := poll(); len(ready) != 0 {
		t.Errorf("ready order reported twice")
	}
}

func TestOrderHandler_NotificationsStateUnavailable(t *testing.T) {
	t.Parallel()

	seen := newMemorySeen()
	seen.loadErr = errors.New("redis down")
	svc := &fakeOrderService{orders: []*model.Order{{ID: "a", Status: model.StatusReady}}}
	h := NewOrderHandler(svc, &fakeStats{}, seen, time.Hour, discardLogger())

	rec := serve(http.MethodGet, "/me/notifications", "/me/notifications", "", student, h.Notifications)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.NotificationsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Ready) != 0 {
		t.Errorf("ready = %+v, want none", resp.Ready)
	}
}

func TestOrderHandler_Board(t *testing.T) {
	t.Parallel()

	svc := &fakeOrderService{
		board: []*model.BoardEntry{{
			Order: &model.Order{ID: "a", Status: model.StatusReady},
			Flags: model.OrderFlags{Ghost: true},
		}},
	}
	h := newTestOrderHandler(svc)

	rec := serve(http.MethodGet, "/vendor/orders", "/vendor/orders", "", vendor, h.Board)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.BoardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Orders) != 1 || !resp.Orders[0].Flags.Ghost {
		t.Errorf("orders = %+v", resp.Orders)
	}
	if resp.Stats == nil || resp.Stats.QueueLoad != 4 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestOrderHandler_Lookup(t *testing.T) {
	t.Parallel()

	svc := &fakeOrderService{byToken: &model.Order{ID: "a", Token: "#VR-1234"}}
	h := newTestOrderHandler(svc)

	rec := serve(http.MethodGet, "/vendor/orders/lookup", "/vendor/orders/lookup", "", vendor, h.Lookup)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "MISSING_TOKEN" {
		t.Errorf("code = %q", resp.Code)
	}

	rec = serve(http.MethodGet, "/vendor/orders/lookup", "/vendor/orders/lookup?token=1234", "", vendor, h.Lookup)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotToken != "1234" {
		t.Errorf("token passed = %q", svc.gotToken)
	}
}

func TestOrderHandler_Advance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantTo     model.Status
	}{
		{"cooking", `{"status":"Cooking"}`, nil, http.StatusOK, "", model.StatusCooking},
		{"case insensitive", `{"status":"ready"}`, nil, http.StatusOK, "", model.StatusReady},
		{"unknown status", `{"status":"Eaten"}`, nil, http.StatusBadRequest, "INVALID_STATUS", ""},
		{"skipped step", `{"status":"Collected"}`, service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", model.StatusCollected},
		{"lost race", `{"status":"Ready"}`, service.ErrStatusConflict, http.StatusConflict, "STATUS_CONFLICT", model.StatusReady},
		{"other vendor", `{"status":"Ready"}`, service.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", model.StatusReady},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeOrderService{err: tt.err}
			h := newTestOrderHandler(svc)

			rec := serve(http.MethodPost, "/vendor/orders/{orderID}/status", "/vendor/orders/ord-1/status", tt.body, vendor, h.Advance)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, rec); resp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
				}
			}
			if svc.advanceTo != tt.wantTo {
				t.Errorf("service saw status %q, want %q", svc.advanceTo, tt.wantTo)
			}
			if tt.wantTo != "" && svc.advanceID != "ord-1" {
				t.Errorf("service saw order %q", svc.advanceID)
			}
		})
	}
}

func TestOrderHandler_NoShow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      *service.NoShowResult
		err         error
		wantStatus  int
		wantSuccess bool
		wantPoints  int
	}{
		{"penalised", &service.NoShowResult{Success: true, UserID: "21CS001", Points: 90}, nil, http.StatusOK, true, 90},
		{"unknown order", &service.NoShowResult{}, nil, http.StatusOK, false, 0},
		{"already collected", nil, service.ErrInvalidTransition, http.StatusConflict, false, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestOrderHandler(&fakeOrderService{noShow: tt.result, err: tt.err})
			rec := serve(http.MethodPost, "/vendor/orders/{orderID}/no-show", "/vendor/orders/ord-1/no-show", "", vendor, h.NoShow)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp dto.NoShowResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success != tt.wantSuccess || resp.Points != tt.wantPoints {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}
