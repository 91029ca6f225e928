package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/canteenrush/canteenrush/internal/model"
)

// CreateVendor inserts a vendor and sets its generated ID.
func (r *Repository) CreateVendor(ctx context.Context, vendor *model.Vendor) error {
	query := `
		INSERT INTO vendors (name, username, password_hash, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		vendor.Name,
		vendor.Username,
		vendor.PasswordHash,
		vendor.ImageURL,
	).Scan(&vendor.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	return nil
}

// GetVendor retrieves a vendor by ID.
func (r *Repository) GetVendor(ctx context.Context, id int64) (*model.Vendor, error) {
	query := `
		SELECT id, name, username, password_hash, image_url
		FROM vendors
		WHERE id = $1
	`

	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	return vendor, nil
}

// GetVendorByUsername retrieves a vendor by login name.
func (r *Repository) GetVendorByUsername(ctx context.Context, username string) (*model.Vendor, error) {
	query := `
		SELECT id, name, username, password_hash, image_url
		FROM vendors
		WHERE username = $1
	`

	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor by username: %w", err)
	}

	return vendor, nil
}

// ListVendors returns all vendors ordered by ID.
func (r *Repository) ListVendors(ctx context.Context) ([]*model.Vendor, error) {
	query := `
		SELECT id, name, username, password_hash, image_url
		FROM vendors
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*model.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendors: %w", err)
	}

	return vendors, nil
}

// CreateAdmin inserts an admin account and sets its generated ID.
func (r *Repository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	query := `
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, admin.Username, admin.PasswordHash).Scan(&admin.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// GetAdminByUsername retrieves an admin by login name.
func (r *Repository) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	query := `
		SELECT id, username, password_hash
		FROM admins
		WHERE username = $1
	`

	var admin model.Admin
	err := r.pool.QueryRow(ctx, query, username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin by username: %w", err)
	}

	return &admin, nil
}

func scanVendor(row pgx.Row) (*model.Vendor, error) {
	var vendor model.Vendor
	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.Username,
		&vendor.PasswordHash,
		&vendor.ImageURL,
	)
	return &vendor, err
}
