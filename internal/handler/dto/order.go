package dto

import (
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
)

// PlaceOrderRequest is the body of POST /api/v1/orders.
// An empty slot means Immediate.
type PlaceOrderRequest struct {
	MenuItemID int64  `json:"menu_item_id"`
	Slot       string `json:"slot,omitempty"`
}

// StatusRequest is the body of POST /api/v1/vendor/orders/{orderID}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// AvailabilityRequest is the body of PATCH /api/v1/vendor/menu/{itemID}.
type AvailabilityRequest struct {
	Available *bool `json:"is_active"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID                  string       `json:"id"`
	Token               string       `json:"token"`
	UserID              string       `json:"user_id"`
	StudentName         string       `json:"student_name"`
	VendorID            int64        `json:"vendor_id"`
	VendorName          string       `json:"vendor_name,omitempty"`
	ItemName            string       `json:"item_name"`
	Status              model.Status `json:"status"`
	Progress            int          `json:"progress"`
	PredictedPickupTime string       `json:"predicted_pickup_time"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// ToOrderResponse converts an Order model to OrderResponse DTO.
func ToOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:                  o.ID,
		Token:               o.Token,
		UserID:              o.UserID,
		StudentName:         o.StudentName,
		VendorID:            o.VendorID,
		VendorName:          o.VendorName,
		ItemName:            o.ItemName,
		Status:              o.Status,
		Progress:            o.Status.Progress(),
		PredictedPickupTime: o.PredictedPickupTime,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// ToOrderList converts a slice of orders, never returning nil.
func ToOrderList(orders []*model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

// PlaceOrderResponse is a created order with its prediction.
type PlaceOrderResponse struct {
	Order      OrderResponse       `json:"order"`
	Prediction *predict.Prediction `json:"prediction"`
}

// BoardEntryResponse is an active order on the vendor board.
type BoardEntryResponse struct {
	OrderResponse
	Flags model.OrderFlags `json:"flags"`
}

// BoardResponse is the vendor's live order board.
type BoardResponse struct {
	Orders []BoardEntryResponse `json:"orders"`
	Stats  *predict.VendorStats `json:"stats"`
}

// ToBoardResponse converts board entries and queue stats.
func ToBoardResponse(entries []*model.BoardEntry, stats *predict.VendorStats) BoardResponse {
	resp := BoardResponse{
		Orders: make([]BoardEntryResponse, 0, len(entries)),
		Stats:  stats,
	}
	for _, e := range entries {
		resp.Orders = append(resp.Orders, BoardEntryResponse{
			OrderResponse: ToOrderResponse(e.Order),
			Flags:         e.Flags,
		})
	}
	return resp
}

// NotificationsResponse lists orders that became Ready since the last poll.
type NotificationsResponse struct {
	Ready []OrderResponse `json:"ready"`
}

// NoShowResponse reports the outcome of a no-show.
type NoShowResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
	Points  int    `json:"points"`
}
