// Package queuemon periodically samples vendor queues into metrics.
package queuemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/service"
)

// DefaultInterval is the time between samples.
const DefaultInterval = 10 * time.Second

// Store is the persistence the monitor reads from.
type Store interface {
	CountActiveOrdersByVendor(ctx context.Context) (map[int64]int, error)
	CountStaleReadyOrders(ctx context.Context, cutoff time.Time) (map[int64]int, error)
}

// Monitor samples active and ghost order counts for every vendor.
type Monitor struct {
	store    Store
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	started bool
	rush    map[int64]bool
	done    chan struct{}
}

// New creates a queue monitor. A non-positive interval uses DefaultInterval.
func New(store Store, logger *slog.Logger, recorder metrics.Recorder, interval time.Duration) *Monitor {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		store:    store,
		logger:   logger.With("component", "queuemon"),
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		rush:     make(map[int64]bool),
		done:     make(chan struct{}),
	}
}

// Run samples once immediately and then on every tick.
// Blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("queue monitor already started")
	}
	m.started = true
	m.mu.Unlock()

	defer close(m.done)

	m.logger.Info("queue monitor started", "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.SampleOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			m.logger.Error("queue sample failed", "error", err)
		}

		select {
		case <-ctx.Done():
			m.logger.Info("queue monitor stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Done is closed when Run returns.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// SampleOnce reads the current counts and publishes them.
func (m *Monitor) SampleOnce(ctx context.Context) error {
	active, err := m.store.CountActiveOrdersByVendor(ctx)
	if err != nil {
		return fmt.Errorf("count active orders: %w", err)
	}

	stale, err := m.store.CountStaleReadyOrders(ctx, m.now().Add(-service.GhostAfter))
	if err != nil {
		return fmt.Errorf("count ghost orders: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for vendorID, depth := range active {
		m.metrics.SetQueueDepth(vendorID, depth)
		// Vendors without stale orders are reset to zero.
		m.metrics.SetGhostOrders(vendorID, stale[vendorID])

		rush := predict.IsRush(depth)
		if rush != m.rush[vendorID] {
			if rush {
				m.logger.Warn("vendor_rush_started", "vendor_id", vendorID, "queue_load", depth)
			} else {
				m.logger.Info("vendor_rush_ended", "vendor_id", vendorID, "queue_load", depth)
			}
			m.rush[vendorID] = rush
		}
	}

	return nil
}
