package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/repository"
)

// OrderService runs the order lifecycle: placement, status advances and no-shows.
type OrderService struct {
	store     OrderStore
	predictor Predictor
	metrics   metrics.Recorder
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore, predictor Predictor, recorder metrics.Recorder) *OrderService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &OrderService{
		store:     store,
		predictor: predictor,
		metrics:   recorder,
	}
}

// PlaceOrderInput defines input for placing an order.
type PlaceOrderInput struct {
	MenuItemID int64
	Slot       string
}

// PlaceOrderResult is a created order with the prediction behind its pickup time.
type PlaceOrderResult struct {
	Order      *model.Order        `json:"order"`
	Prediction *predict.Prediction `json:"prediction"`
}

// NoShowResult reports the outcome of a no-show.
// Success is false when the order does not exist.
type NoShowResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
	Points  int    `json:"points"`
}

// PlaceOrder creates an order for the session's student.
// The pickup time is predicted once here and never recomputed.
func (s *OrderService) PlaceOrder(ctx context.Context, sess *model.Session, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := requireStudent(sess); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if user.IsBanned() {
		s.metrics.IncOrderRejected("banned")
		return nil, ErrUserBanned
	}

	item, err := s.store.GetMenuItem(ctx, input.MenuItemID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	if !item.Available {
		s.metrics.IncOrderRejected("unavailable")
		return nil, ErrItemUnavailable
	}

	slot := strings.TrimSpace(input.Slot)
	if slot == "" {
		slot = predict.ImmediateSlot
	}

	prediction, err := s.predictor.Predict(ctx, item.VendorID, item.PrepMinutes, slot)
	if err != nil {
		return nil, fmt.Errorf("predict pickup: %w", err)
	}

	order, err := s.store.CreateOrder(ctx, user.RollNo, item.VendorID, item.Name, prediction.PickupTime)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.metrics.IncOrderPlaced()
	s.metrics.ObservePredictedWait(prediction.TotalMinutes, prediction.IsRushHour)
	if prediction.SlotMissed {
		s.metrics.IncSlotMissed()
	}

	return &PlaceOrderResult{Order: order, Prediction: prediction}, nil
}

// AdvanceStatus moves one of the vendor's orders to a new status.
// Expired is routed through MarkNoShow so the karma penalty always applies.
func (s *OrderService) AdvanceStatus(ctx context.Context, sess *model.Session, orderID string, to model.Status) (*model.Order, error) {
	if err := requireVendor(sess); err != nil {
		return nil, err
	}

	order, err := s.vendorOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(order.Status, to) {
		return nil, ErrInvalidTransition
	}

	if to == model.StatusExpired {
		result, err := s.MarkNoShow(ctx, sess, orderID)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, ErrOrderNotFound
		}
		return s.vendorOrder(ctx, sess, orderID)
	}

	err = s.store.TransitionOrderStatus(ctx, orderID, order.Status, to, sess.Actor())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, ErrStatusConflict
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}

	s.metrics.IncStatusTransition(string(to))

	order.Status = to
	return order, nil
}

// MarkNoShow expires one of the vendor's orders and deducts the no-show penalty
// from the student, floored at zero. An unknown order is not an error.
func (s *OrderService) MarkNoShow(ctx context.Context, sess *model.Session, orderID string) (*NoShowResult, error) {
	if err := requireVendor(sess); err != nil {
		return nil, err
	}

	if _, err := s.vendorOrder(ctx, sess, orderID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return &NoShowResult{Success: false}, nil
		}
		return nil, err
	}

	userID, points, err := s.store.ExpireOrderWithPenalty(ctx, orderID, model.NoShowPenalty, sess.Actor())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return &NoShowResult{Success: false}, nil
		case errors.Is(err, repository.ErrOrderTerminal):
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("expire order: %w", err)
	}

	s.metrics.IncNoShow()
	s.metrics.IncStatusTransition(string(model.StatusExpired))

	return &NoShowResult{Success: true, UserID: userID, Points: points}, nil
}

// VendorBoard returns the vendor's active orders, oldest first, with derived flags.
func (s *OrderService) VendorBoard(ctx context.Context, sess *model.Session) ([]*model.BoardEntry, error) {
	if err := requireVendor(sess); err != nil {
		return nil, err
	}

	orders, err := s.store.ListActiveOrdersForVendor(ctx, sess.VendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor orders: %w", err)
	}

	now := s.predictor.Now()
	prepByItem := make(map[string]int)

	entries := make([]*model.BoardEntry, 0, len(orders))
	for _, order := range orders {
		prep, ok := prepByItem[order.ItemName]
		if !ok {
			prep, err = s.store.GetPrepTimeByItemName(ctx, order.VendorID, order.ItemName)
			if err != nil {
				return nil, fmt.Errorf("get prep time: %w", err)
			}
			prepByItem[order.ItemName] = prep
		}

		entries = append(entries, &model.BoardEntry{
			Order: order,
			Flags: DeriveFlags(order, prep, now),
		})
	}

	return entries, nil
}

// StudentOrders returns the student's active orders, newest first.
func (s *OrderService) StudentOrders(ctx context.Context, sess *model.Session) ([]*model.Order, error) {
	if err := requireStudent(sess); err != nil {
		return nil, err
	}

	orders, err := s.store.ListActiveOrdersForUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list student orders: %w", err)
	}
	return orders, nil
}

// GetByToken looks up one of the vendor's orders by the token a student presents at pickup.
func (s *OrderService) GetByToken(ctx context.Context, sess *model.Session, token string) (*model.Order, error) {
	if err := requireVendor(sess); err != nil {
		return nil, err
	}

	token = strings.ToUpper(strings.TrimSpace(token))
	if !strings.HasPrefix(token, model.TokenPrefix) {
		token = model.TokenPrefix + strings.TrimPrefix(token, "VR-")
	}

	order, err := s.store.GetOrderByToken(ctx, sess.VendorID, token)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// vendorOrder loads an order and hides it from vendors that do not own it.
func (s *OrderService) vendorOrder(ctx context.Context, sess *model.Session, orderID string) (*model.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.VendorID != sess.VendorID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
