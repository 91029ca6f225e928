package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/repository"
)

// MenuService serves vendor listings and menus.
type MenuService struct {
	store     MenuStore
	predictor Predictor
}

// NewMenuService creates a new MenuService.
func NewMenuService(store MenuStore, predictor Predictor) *MenuService {
	return &MenuService{store: store, predictor: predictor}
}

// MenuEntry is an orderable item with its current pickup estimate.
type MenuEntry struct {
	Item       *model.MenuItem     `json:"item"`
	Prediction *predict.Prediction `json:"prediction"`
}

// VendorMenu is a vendor with its available items for a chosen slot.
type VendorMenu struct {
	Vendor *model.Vendor `json:"vendor"`
	Slot   string        `json:"slot"`
	Items  []*MenuEntry  `json:"items"`
}

// ListVendors returns all vendors.
func (s *MenuService) ListVendors(ctx context.Context) ([]*model.Vendor, error) {
	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

// MenuWithPredictions returns a vendor's available items, each with a
// prediction for the requested slot. An unknown vendor has an empty menu.
// The queue is read once so every item is estimated against the same depth.
func (s *MenuService) MenuWithPredictions(ctx context.Context, vendorID int64, slot string) (*VendorMenu, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = predict.ImmediateSlot
	}

	vendor, err := s.store.GetVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrVendorNotFound) {
			return &VendorMenu{Slot: slot, Items: []*MenuEntry{}}, nil
		}
		return nil, err
	}

	items, err := s.store.ListMenu(ctx, vendorID, true)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}

	active, err := s.predictor.ActiveOrders(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	now := s.predictor.Now()

	entries := make([]*MenuEntry, 0, len(items))
	for _, item := range items {
		pred := predict.Estimate(active, item.PrepMinutes, slot, now)
		entries = append(entries, &MenuEntry{Item: item, Prediction: &pred})
	}

	return &VendorMenu{Vendor: vendor, Slot: slot, Items: entries}, nil
}

// VendorMenu returns every item of the session's vendor, unavailable ones included.
func (s *MenuService) VendorMenu(ctx context.Context, sess *model.Session) ([]*model.MenuItem, error) {
	if err := requireVendor(sess); err != nil {
		return nil, err
	}

	items, err := s.store.ListMenu(ctx, sess.VendorID, false)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

// SetAvailability toggles one of the session vendor's items.
func (s *MenuService) SetAvailability(ctx context.Context, sess *model.Session, itemID int64, available bool) error {
	if err := requireVendor(sess); err != nil {
		return err
	}

	err := s.store.SetMenuItemAvailability(ctx, sess.VendorID, itemID, available)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}

// VendorStats returns the queue summary of a vendor.
// An unknown vendor has no queue and reports the idle summary.
func (s *MenuService) VendorStats(ctx context.Context, vendorID int64) (*predict.VendorStats, error) {
	return s.predictor.VendorStats(ctx, vendorID)
}

// Slots lists the pickup slots students can choose from.
func (s *MenuService) Slots() []string {
	return predict.Slots
}
