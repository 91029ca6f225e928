// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
)

// Service errors.
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBanned         = errors.New("karma too low: account is banned from ordering")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidPIN         = errors.New("PIN must be exactly 4 digits")
	ErrMissingField       = errors.New("roll number and name are required")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrStatusConflict     = errors.New("order was updated by someone else")
)

// OrderStore is the persistence the order lifecycle depends on.
type OrderStore interface {
	GetUser(ctx context.Context, rollNo string) (*model.User, error)
	GetMenuItem(ctx context.Context, id int64) (*model.MenuItem, error)
	GetPrepTimeByItemName(ctx context.Context, vendorID int64, itemName string) (int, error)
	CreateOrder(ctx context.Context, userID string, vendorID int64, itemName, predictedPickupTime string) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrderByToken(ctx context.Context, vendorID int64, token string) (*model.Order, error)
	ListActiveOrdersForVendor(ctx context.Context, vendorID int64) ([]*model.Order, error)
	ListActiveOrdersForUser(ctx context.Context, userID string) ([]*model.Order, error)
	TransitionOrderStatus(ctx context.Context, orderID string, from, to model.Status, actor model.Actor) error
	ExpireOrderWithPenalty(ctx context.Context, orderID string, penalty int, actor model.Actor) (string, int, error)
}

// AccountStore is the persistence the account service depends on.
type AccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, rollNo string) (*model.User, error)
	GetUserPoints(ctx context.Context, rollNo string) (int, error)
	GetVendorByUsername(ctx context.Context, username string) (*model.Vendor, error)
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}

// MenuStore is the persistence the menu service depends on.
type MenuStore interface {
	ListVendors(ctx context.Context) ([]*model.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*model.Vendor, error)
	ListMenu(ctx context.Context, vendorID int64, activeOnly bool) ([]*model.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, vendorID, itemID int64, available bool) error
}

// AdminStore is the persistence the admin service depends on.
type AdminStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListRecentOrders(ctx context.Context, limit int) ([]*model.Order, error)
	ListOrderEvents(ctx context.Context, orderID string) ([]*model.OrderEvent, error)
}

// SessionStore keeps login sessions keyed by token hash.
type SessionStore interface {
	SetSession(ctx context.Context, tokenHash string, sess *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// Predictor estimates pickup times and queue summaries.
type Predictor interface {
	Predict(ctx context.Context, vendorID int64, itemPrepTime int, slot string) (*predict.Prediction, error)
	VendorStats(ctx context.Context, vendorID int64) (*predict.VendorStats, error)
	ActiveOrders(ctx context.Context, vendorID int64) (int, error)
	Now() time.Time
}

// requireStudent returns ErrUnauthorized without a session and ErrForbidden for other roles.
func requireStudent(sess *model.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if !sess.IsStudent() {
		return ErrForbidden
	}
	return nil
}

func requireVendor(sess *model.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if !sess.IsVendor() {
		return ErrForbidden
	}
	return nil
}

func requireAdmin(sess *model.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
