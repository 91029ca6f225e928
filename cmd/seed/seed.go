package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/repository"
)

type seedVendor struct {
	Name     string
	Username string
	ImageURL string
	Items    []seedItem
}

type seedItem struct {
	Name        string
	Price       int
	PrepMinutes int
	ImageURL    string
}

var catalog = []seedVendor{
	{
		Name:     "Grill Master",
		Username: "grill",
		ImageURL: "https://images.unsplash.com/photo-1555939594-58d7cb561ad1?w=300",
		Items: []seedItem{
			{"Classic Burger", 120, 10, "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=300"},
			{"BBQ Chicken", 180, 15, "https://images.unsplash.com/photo-1532550907401-a500c9a57435?w=300"},
			{"Grilled Sandwich", 90, 8, "https://images.unsplash.com/photo-1528735602780-2552fd46c7af?w=300"},
		},
	},
	{
		Name:     "Fresh Brew",
		Username: "coffee",
		ImageURL: "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=300",
		Items: []seedItem{
			{"Cappuccino", 60, 5, "https://images.unsplash.com/photo-1509042239860-f550ce710b93?w=300"},
			{"Cold Brew", 80, 6, "https://images.unsplash.com/photo-1517487881594-2787fef5ebf7?w=300"},
			{"Croissant", 70, 3, "https://images.unsplash.com/photo-1555507036-ab1f4038808a?w=300"},
		},
	},
	{
		Name:     "Noodles & Co",
		Username: "noodle",
		ImageURL: "https://images.unsplash.com/photo-1612929633738-8fe44f7ec841?w=300",
		Items: []seedItem{
			{"Pad Thai", 150, 12, "https://images.unsplash.com/photo-1559314809-0d155014e29e?w=300"},
			{"Ramen Bowl", 160, 14, "https://images.unsplash.com/photo-1591814468924-caf88d1232e1?w=300"},
			{"Spring Rolls", 80, 7, "https://images.unsplash.com/photo-1563379091339-03b21ab4a4f8?w=300"},
		},
	},
}

// store is the subset of the repository the seeder writes through.
type store interface {
	CreateVendor(ctx context.Context, vendor *model.Vendor) error
	GetVendorByUsername(ctx context.Context, username string) (*model.Vendor, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	CreateMenuItem(ctx context.Context, item *model.MenuItem) error
}

type options struct {
	VendorPassword string
	AdminUsername  string
	AdminPassword  string
}

type report struct {
	VendorsCreated  int  `json:"vendors_created"`
	VendorsExisting int  `json:"vendors_existing"`
	ItemsCreated    int  `json:"items_created"`
	ItemsExisting   int  `json:"items_existing"`
	AdminCreated    bool `json:"admin_created"`
}

func seed(ctx context.Context, s store, opts options) (*report, error) {
	if opts.VendorPassword == "" || opts.AdminUsername == "" || opts.AdminPassword == "" {
		return nil, errors.New("vendor password, admin username and admin password are required")
	}

	out := &report{}

	vendorHash, err := auth.HashSecret(opts.VendorPassword)
	if err != nil {
		return nil, fmt.Errorf("hash vendor password: %w", err)
	}

	for _, sv := range catalog {
		vendor, created, err := ensureVendor(ctx, s, sv, vendorHash)
		if err != nil {
			return nil, err
		}
		if created {
			out.VendorsCreated++
		} else {
			out.VendorsExisting++
		}

		for _, si := range sv.Items {
			err := s.CreateMenuItem(ctx, &model.MenuItem{
				VendorID:    vendor.ID,
				Name:        si.Name,
				Price:       si.Price,
				PrepMinutes: si.PrepMinutes,
				ImageURL:    si.ImageURL,
				Available:   true,
			})
			switch {
			case errors.Is(err, repository.ErrMenuItemExists):
				out.ItemsExisting++
			case err != nil:
				return nil, fmt.Errorf("create menu item %q: %w", si.Name, err)
			default:
				out.ItemsCreated++
			}
		}
	}

	adminHash, err := auth.HashSecret(opts.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	err = s.CreateAdmin(ctx, &model.Admin{Username: opts.AdminUsername, PasswordHash: adminHash})
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
	case err != nil:
		return nil, fmt.Errorf("create admin: %w", err)
	default:
		out.AdminCreated = true
	}

	return out, nil
}

// ensureVendor creates the vendor, or loads it when the username is taken.
func ensureVendor(ctx context.Context, s store, sv seedVendor, passwordHash string) (*model.Vendor, bool, error) {
	vendor := &model.Vendor{
		Name:         sv.Name,
		Username:     sv.Username,
		PasswordHash: passwordHash,
		ImageURL:     sv.ImageURL,
	}

	err := s.CreateVendor(ctx, vendor)
	if err == nil {
		return vendor, true, nil
	}
	if !errors.Is(err, repository.ErrUsernameExists) {
		return nil, false, fmt.Errorf("create vendor %q: %w", sv.Username, err)
	}

	existing, err := s.GetVendorByUsername(ctx, sv.Username)
	if err != nil {
		return nil, false, fmt.Errorf("load vendor %q: %w", sv.Username, err)
	}
	return existing, false, nil
}
