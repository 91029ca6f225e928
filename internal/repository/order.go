package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"

	"github.com/canteenrush/canteenrush/internal/model"
)

// Token generation parameters. Tokens are #VR-100 through #VR-999.
const (
	tokenMin         = 100
	tokenSpan        = 900
	maxTokenAttempts = 10
)

// orderSelect joins the vendor name so every read returns a display-ready order.
const orderSelect = `
	SELECT o.id, o.token, o.user_id, o.student_name, o.vendor_id, v.name, o.item_name,
	       o.status, o.predicted_pickup_time, o.created_at, o.updated_at
	FROM orders o
	JOIN vendors v ON v.id = o.vendor_id
`

// terminalStatuses is the array parameter used by every "active order" filter.
func terminalStatuses() any {
	statuses := make([]string, len(model.TerminalStatuses))
	for i, s := range model.TerminalStatuses {
		statuses[i] = string(s)
	}
	return pq.Array(statuses)
}

// CreateOrder inserts a Received order for a student, copying the student's
// display name, and records the creation event in the same transaction.
func (r *Repository) CreateOrder(ctx context.Context, userID string, vendorID int64, itemName, predictedPickupTime string) (*model.Order, error) {
	order := &model.Order{
		ID:                  ulid.Make().String(),
		UserID:              userID,
		VendorID:            vendorID,
		ItemName:            itemName,
		Status:              model.StatusReceived,
		PredictedPickupTime: predictedPickupTime,
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT name FROM users WHERE roll_no = $1`, userID).Scan(&order.StudentName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("user %q: %w", userID, ErrForeignKey)
			}
			return fmt.Errorf("failed to look up student name: %w", err)
		}

		token, err := uniqueToken(ctx, tx)
		if err != nil {
			return err
		}
		order.Token = token

		insert := `
			INSERT INTO orders (id, token, user_id, student_name, vendor_id, item_name, status, predicted_pickup_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(ctx, insert,
			order.ID,
			order.Token,
			order.UserID,
			order.StudentName,
			order.VendorID,
			order.ItemName,
			string(order.Status),
			order.PredictedPickupTime,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("vendor %d: %w", vendorID, ErrForeignKey)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		return insertOrderEvent(ctx, tx, &model.OrderEvent{
			OrderID:   order.ID,
			ToStatus:  model.StatusReceived,
			ActorType: model.ActorStudent,
			ActorID:   userID,
		})
	})
	if err != nil {
		return nil, err
	}

	vendorName, err := r.vendorName(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	order.VendorName = vendorName

	return order, nil
}

// uniqueToken picks a token not held by any active order.
// Uniqueness is best-effort: once every attempt collides the last candidate is used.
func uniqueToken(ctx context.Context, tx pgx.Tx) (string, error) {
	var token string
	for i := 0; i < maxTokenAttempts; i++ {
		token = generateToken()

		var taken bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE token = $1 AND status <> ALL($2))`,
			token, terminalStatuses(),
		).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("failed to check token: %w", err)
		}
		if !taken {
			return token, nil
		}
	}
	return token, nil
}

// generateToken returns a random #VR-NNN token.
func generateToken() string {
	n, err := rand.Int(rand.Reader, big.NewInt(tokenSpan))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % tokenSpan)
	}
	return fmt.Sprintf("%s%d", model.TokenPrefix, tokenMin+n.Int64())
}

// GetOrder retrieves an order by ID.
func (r *Repository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetOrderByToken finds a vendor's order by its pickup token.
// Active orders win over finished ones, newest first.
func (r *Repository) GetOrderByToken(ctx context.Context, vendorID int64, token string) (*model.Order, error) {
	query := orderSelect + `
		WHERE o.vendor_id = $1 AND o.token = $2
		ORDER BY (o.status <> ALL($3)) DESC, o.created_at DESC
		LIMIT 1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, vendorID, token, terminalStatuses()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by token: %w", err)
	}
	return order, nil
}

// CountActiveOrders counts a vendor's orders that are neither collected nor expired.
func (r *Repository) CountActiveOrders(ctx context.Context, vendorID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE vendor_id = $1 AND status <> ALL($2)`,
		vendorID, terminalStatuses(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active orders: %w", err)
	}
	return count, nil
}

// CountActiveOrdersByVendor returns the active order count of every vendor, zero included.
func (r *Repository) CountActiveOrdersByVendor(ctx context.Context) (map[int64]int, error) {
	query := `
		SELECT v.id, COUNT(o.id)
		FROM vendors v
		LEFT JOIN orders o ON o.vendor_id = v.id AND o.status <> ALL($1)
		GROUP BY v.id
	`

	rows, err := r.pool.Query(ctx, query, terminalStatuses())
	if err != nil {
		return nil, fmt.Errorf("failed to count active orders by vendor: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var vendorID int64
		var count int
		if err := rows.Scan(&vendorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vendor count: %w", err)
		}
		counts[vendorID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendor counts: %w", err)
	}

	return counts, nil
}

// CountStaleReadyOrders counts Ready orders created before the cutoff, per vendor.
func (r *Repository) CountStaleReadyOrders(ctx context.Context, cutoff time.Time) (map[int64]int, error) {
	query := `
		SELECT vendor_id, COUNT(*)
		FROM orders
		WHERE status = $1 AND created_at < $2
		GROUP BY vendor_id
	`

	rows, err := r.pool.Query(ctx, query, string(model.StatusReady), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count stale ready orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var vendorID int64
		var count int
		if err := rows.Scan(&vendorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stale count: %w", err)
		}
		counts[vendorID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stale counts: %w", err)
	}

	return counts, nil
}

// ListActiveOrdersForVendor returns a vendor's active orders, oldest first.
func (r *Repository) ListActiveOrdersForVendor(ctx context.Context, vendorID int64) ([]*model.Order, error) {
	query := orderSelect + `
		WHERE o.vendor_id = $1 AND o.status <> ALL($2)
		ORDER BY o.created_at ASC, o.id ASC
	`
	return r.queryOrders(ctx, query, vendorID, terminalStatuses())
}

// ListActiveOrdersForUser returns a student's active orders, newest first.
func (r *Repository) ListActiveOrdersForUser(ctx context.Context, userID string) ([]*model.Order, error) {
	query := orderSelect + `
		WHERE o.user_id = $1 AND o.status <> ALL($2)
		ORDER BY o.created_at DESC, o.id DESC
	`
	return r.queryOrders(ctx, query, userID, terminalStatuses())
}

// ListRecentOrders returns the most recent orders across all vendors.
func (r *Repository) ListRecentOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	query := orderSelect + `
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1
	`
	return r.queryOrders(ctx, query, limit)
}

// SetOrderStatus overwrites an order's status without checking the lifecycle.
func (r *Repository) SetOrderStatus(ctx context.Context, orderID string, status model.Status) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		orderID, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// TransitionOrderStatus moves an order from one status to another if it is
// still in the expected status, appending an audit event in the same transaction.
// Returns ErrStatusConflict when the order moved in the meantime.
func (r *Repository) TransitionOrderStatus(ctx context.Context, orderID string, from, to model.Status, actor model.Actor) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
			orderID, string(from), string(to),
		)
		if err != nil {
			return fmt.Errorf("failed to transition order: %w", err)
		}

		if result.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check order: %w", err)
			}
			if !exists {
				return ErrOrderNotFound
			}
			return ErrStatusConflict
		}

		return insertOrderEvent(ctx, tx, &model.OrderEvent{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			ActorType:  actor.Type,
			ActorID:    actor.ID,
		})
	})
}

// ExpireOrderWithPenalty marks an order Expired and deducts penalty karma from
// its student as one unit. The order row is locked for the duration.
// Returns the student's roll number and resulting points.
func (r *Repository) ExpireOrderWithPenalty(ctx context.Context, orderID string, penalty int, actor model.Actor) (string, int, error) {
	var userID string
	var points int

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx,
			`SELECT user_id, status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID,
		).Scan(&userID, &current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		from := model.Status(current)
		if from.IsTerminal() {
			return ErrOrderTerminal
		}

		if _, err := tx.Exec(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
			orderID, string(model.StatusExpired),
		); err != nil {
			return fmt.Errorf("failed to expire order: %w", err)
		}

		err = tx.QueryRow(ctx,
			`UPDATE users SET points = GREATEST(0, points - $2) WHERE roll_no = $1 RETURNING points`,
			userID, penalty,
		).Scan(&points)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to deduct points: %w", err)
		}

		return insertOrderEvent(ctx, tx, &model.OrderEvent{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   model.StatusExpired,
			ActorType:  actor.Type,
			ActorID:    actor.ID,
			KarmaDelta: -penalty,
		})
	})
	if err != nil {
		return "", 0, err
	}

	return userID, points, nil
}

// ListOrderEvents returns an order's audit trail, oldest first.
func (r *Repository) ListOrderEvents(ctx context.Context, orderID string) ([]*model.OrderEvent, error) {
	query := `
		SELECT id, order_id, from_status, to_status, actor_type, COALESCE(actor_id, ''), karma_delta, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order events: %w", err)
	}
	defer rows.Close()

	var events []*model.OrderEvent
	for rows.Next() {
		var event model.OrderEvent
		var from, to, actorType string
		if err := rows.Scan(&event.ID, &event.OrderID, &from, &to, &actorType, &event.ActorID, &event.KarmaDelta, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		event.FromStatus = model.Status(from)
		event.ToStatus = model.Status(to)
		event.ActorType = model.ActorType(actorType)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order events: %w", err)
	}

	return events, nil
}

func insertOrderEvent(ctx context.Context, tx pgx.Tx, event *model.OrderEvent) error {
	var actorID *string
	if event.ActorID != "" {
		actorID = &event.ActorID
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO order_events (order_id, from_status, to_status, actor_type, actor_id, karma_delta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		event.OrderID,
		string(event.FromStatus),
		string(event.ToStatus),
		string(event.ActorType),
		actorID,
		event.KarmaDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	return nil
}

func (r *Repository) vendorName(ctx context.Context, vendorID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM vendors WHERE id = $1`, vendorID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrVendorNotFound
		}
		return "", fmt.Errorf("failed to get vendor name: %w", err)
	}
	return name, nil
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]*model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	var status string
	err := row.Scan(
		&order.ID,
		&order.Token,
		&order.UserID,
		&order.StudentName,
		&order.VendorID,
		&order.VendorName,
		&order.ItemName,
		&status,
		&order.PredictedPickupTime,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	order.Status = model.Status(status)
	return &order, err
}
