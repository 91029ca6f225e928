package service

import (
	"context"
	"fmt"

	"github.com/canteenrush/canteenrush/internal/model"
)

// MaxRecentOrders caps the admin order listing.
const MaxRecentOrders = 50

// AdminService serves the read-only admin views.
type AdminService struct {
	store AdminStore
}

// NewAdminService creates a new AdminService.
func NewAdminService(store AdminStore) *AdminService {
	return &AdminService{store: store}
}

// Users lists every student with their karma.
func (s *AdminService) Users(ctx context.Context, sess *model.Session) ([]*model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// RecentOrders lists the latest orders across vendors.
// Limits outside 1..MaxRecentOrders are clamped.
func (s *AdminService) RecentOrders(ctx context.Context, sess *model.Session, limit int) ([]*model.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > MaxRecentOrders {
		limit = MaxRecentOrders
	}

	orders, err := s.store.ListRecentOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	return orders, nil
}

// OrderEvents returns the audit trail of an order.
func (s *AdminService) OrderEvents(ctx context.Context, sess *model.Session, orderID string) ([]*model.OrderEvent, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	events, err := s.store.ListOrderEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	return events, nil
}
