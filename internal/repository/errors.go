package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors for repository operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrMenuItemExists   = errors.New("menu item already exists")
	ErrOrderNotFound    = errors.New("order not found")
	ErrStatusConflict   = errors.New("order status changed concurrently")
	ErrOrderTerminal    = errors.New("order is already collected or expired")
	ErrForeignKey       = errors.New("referenced user or vendor does not exist")
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
