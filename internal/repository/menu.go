package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/canteenrush/canteenrush/internal/model"
)

const menuColumns = `id, vendor_id, item_name, price, avg_prep_time, image_url, is_active`

// CreateMenuItem inserts a menu item and sets its generated ID.
func (r *Repository) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (vendor_id, item_name, price, avg_prep_time, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		item.VendorID,
		item.Name,
		item.Price,
		item.PrepMinutes,
		item.ImageURL,
		item.Available,
	).Scan(&item.ID)

	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrMenuItemExists
		case isForeignKeyViolation(err):
			return ErrVendorNotFound
		}
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	return nil
}

// GetMenuItem retrieves a menu item by ID.
func (r *Repository) GetMenuItem(ctx context.Context, id int64) (*model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	return item, nil
}

// ListMenu returns a vendor's items ordered by ID.
// With activeOnly set, unavailable items are skipped.
func (r *Repository) ListMenu(ctx context.Context, vendorID int64, activeOnly bool) ([]*model.MenuItem, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menu_items
		WHERE vendor_id = $1 AND (is_active OR NOT $2)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, vendorID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	defer rows.Close()

	var items []*model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

// GetPrepTimeByItemName returns the average prep time of a vendor's item.
// Falls back to model.DefaultPrepMinutes when the item no longer exists.
func (r *Repository) GetPrepTimeByItemName(ctx context.Context, vendorID int64, itemName string) (int, error) {
	query := `
		SELECT avg_prep_time
		FROM menu_items
		WHERE vendor_id = $1 AND item_name = $2
	`

	var prep int
	err := r.pool.QueryRow(ctx, query, vendorID, itemName).Scan(&prep)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultPrepMinutes, nil
		}
		return 0, fmt.Errorf("failed to get prep time: %w", err)
	}

	return prep, nil
}

// SetMenuItemAvailability toggles whether an item can be ordered.
// Returns ErrMenuItemNotFound when the item does not belong to the vendor.
func (r *Repository) SetMenuItemAvailability(ctx context.Context, vendorID, itemID int64, available bool) error {
	query := `
		UPDATE menu_items
		SET is_active = $3
		WHERE id = $1 AND vendor_id = $2
	`

	result, err := r.pool.Exec(ctx, query, itemID, vendorID, available)
	if err != nil {
		return fmt.Errorf("failed to set menu item availability: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}

	return nil
}

func scanMenuItem(row pgx.Row) (*model.MenuItem, error) {
	var item model.MenuItem
	err := row.Scan(
		&item.ID,
		&item.VendorID,
		&item.Name,
		&item.Price,
		&item.PrepMinutes,
		&item.ImageURL,
		&item.Available,
	)
	return &item, err
}
