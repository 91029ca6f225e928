package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/canteenrush/canteenrush/internal/model"
)

// CreateUser inserts a new student.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (roll_no, name, pin_hash, points, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		user.RollNo,
		user.Name,
		user.PINHash,
		user.Points,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a student by roll number.
func (r *Repository) GetUser(ctx context.Context, rollNo string) (*model.User, error) {
	query := `
		SELECT roll_no, name, pin_hash, points, created_at
		FROM users
		WHERE roll_no = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, rollNo).Scan(
		&user.RollNo,
		&user.Name,
		&user.PINHash,
		&user.Points,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserPoints returns a student's karma. Unknown students have zero points.
func (r *Repository) GetUserPoints(ctx context.Context, rollNo string) (int, error) {
	var points int
	err := r.pool.QueryRow(ctx, `SELECT points FROM users WHERE roll_no = $1`, rollNo).Scan(&points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get user points: %w", err)
	}
	return points, nil
}

// AdjustUserPoints adds delta to a student's karma and returns the new balance.
// The balance never drops below zero.
func (r *Repository) AdjustUserPoints(ctx context.Context, rollNo string, delta int) (int, error) {
	query := `
		UPDATE users
		SET points = GREATEST(0, points + $2)
		WHERE roll_no = $1
		RETURNING points
	`

	var points int
	err := r.pool.QueryRow(ctx, query, rollNo, delta).Scan(&points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to adjust user points: %w", err)
	}
	return points, nil
}

// ListUsers returns every registered student, newest first.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT roll_no, name, pin_hash, points, created_at
		FROM users
		ORDER BY created_at DESC, roll_no
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.RollNo, &user.Name, &user.PINHash, &user.Points, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
