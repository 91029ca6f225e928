// Package predict estimates pickup times from a vendor's queue load.
package predict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
)

// Model parameters.
const (
	MinutesPerOrder  = 2
	RushThreshold    = 10
	BufferMinutes    = 2
	StatsBaseMinutes = 5
)

// ImmediateSlot asks for the order as soon as it is ready.
const ImmediateSlot = "Immediate"

// Slots are the pickup slots offered to students.
var Slots = []string{ImmediateSlot, "10:30 AM", "12:00 PM", "1:30 PM", "3:00 PM"}

// Breakdown shows how the total wait was composed.
type Breakdown struct {
	BasePrep   int `json:"base_prep"`
	QueueDelay int `json:"queue_delay"`
	Buffer     int `json:"buffer"`
	Total      int `json:"total"`
}

// Prediction is the estimated pickup for one item.
// SlotMissed is set when a requested slot could not be honoured
// and the pickup fell back to now plus the total wait.
type Prediction struct {
	PickupTime   string    `json:"formatted_time"`
	PickupAt     time.Time `json:"pickup_at"`
	IsRushHour   bool      `json:"is_rush_hour"`
	TotalMinutes int       `json:"minutes"`
	ActiveOrders int       `json:"active_orders"`
	SlotMissed   bool      `json:"slot_missed"`
	Breakdown    Breakdown `json:"breakdown"`
}

// VendorStats summarises a vendor's queue.
type VendorStats struct {
	QueueLoad      int  `json:"queue_load"`
	AvgWaitMinutes int  `json:"avg_wait_minutes"`
	IsRushHour     bool `json:"is_rush_hour"`
}

// QueueCounter reports how many active orders a vendor has.
type QueueCounter interface {
	CountActiveOrders(ctx context.Context, vendorID int64) (int, error)
}

// Predictor reads live queue load and applies the wait-time model.
type Predictor struct {
	counter QueueCounter
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		p.now = now
	}
}

// WithLocation sets the canteen timezone used for slots and formatting.
func WithLocation(loc *time.Location) Option {
	return func(p *Predictor) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// New creates a Predictor.
func New(counter QueueCounter, opts ...Option) *Predictor {
	p := &Predictor{
		counter: counter,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the current time in the canteen timezone.
func (p *Predictor) Now() time.Time {
	return p.now().In(p.loc)
}

// ActiveOrders returns the vendor's current queue depth.
// Callers estimating several items pass it to Estimate directly.
func (p *Predictor) ActiveOrders(ctx context.Context, vendorID int64) (int, error) {
	active, err := p.counter.CountActiveOrders(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("count active orders: %w", err)
	}
	return active, nil
}

// Predict estimates the pickup time of an item with the given prep time.
func (p *Predictor) Predict(ctx context.Context, vendorID int64, itemPrepTime int, slot string) (*Prediction, error) {
	active, err := p.ActiveOrders(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	pred := Estimate(active, itemPrepTime, slot, p.Now())
	return &pred, nil
}

// VendorStats returns the queue summary for a vendor.
func (p *Predictor) VendorStats(ctx context.Context, vendorID int64) (*VendorStats, error) {
	active, err := p.ActiveOrders(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	stats := Stats(active)
	return &stats, nil
}

// IsRush reports whether a queue is long enough to slow the kitchen down.
func IsRush(activeOrders int) bool {
	return activeOrders > RushThreshold
}

// scaledQueue applies the rush multiplier of 1.5, rounding down.
func scaledQueue(minutes int, rush bool) int {
	if rush {
		return minutes * 3 / 2
	}
	return minutes
}

// Estimate is the pure wait-time model.
func Estimate(activeOrders, itemPrepTime int, slot string, now time.Time) Prediction {
	rush := IsRush(activeOrders)
	queueDelay := scaledQueue(activeOrders*MinutesPerOrder, rush)
	total := itemPrepTime + queueDelay + BufferMinutes

	fallback := now.Add(time.Duration(total) * time.Minute)
	pickup := fallback
	missed := false

	if slot != ImmediateSlot {
		target, ok := ParseSlot(slot, now)
		if ok && !target.Before(now) {
			pickup = target
		} else {
			missed = true
		}
	}

	return Prediction{
		PickupTime:   FormatPickup(pickup),
		PickupAt:     pickup,
		IsRushHour:   rush,
		TotalMinutes: total,
		ActiveOrders: activeOrders,
		SlotMissed:   missed,
		Breakdown: Breakdown{
			BasePrep:   itemPrepTime,
			QueueDelay: queueDelay,
			Buffer:     BufferMinutes,
			Total:      total,
		},
	}
}

// Stats is the pure queue summary. Average wait is floor(load*2*multiplier + 5).
func Stats(activeOrders int) VendorStats {
	rush := IsRush(activeOrders)
	return VendorStats{
		QueueLoad:      activeOrders,
		AvgWaitMinutes: scaledQueue(activeOrders*MinutesPerOrder, rush) + StatsBaseMinutes,
		IsRushHour:     rush,
	}
}

// ParseSlot reads the leading time of day of a slot label such as
// "10:30 AM Break", "1:30 PM" or "13:30" and places it on now's date.
func ParseSlot(slot string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(slot)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	var (
		clock time.Time
		err   error
	)
	if len(fields) > 1 && isMeridiem(fields[1]) {
		clock, err = time.Parse("3:04 PM", fields[0]+" "+strings.ToUpper(fields[1]))
	} else {
		clock, err = time.Parse("15:04", fields[0])
	}
	if err != nil {
		return time.Time{}, false
	}

	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}

func isMeridiem(s string) bool {
	return strings.EqualFold(s, "AM") || strings.EqualFold(s, "PM")
}

// FormatPickup renders a pickup time as a zero-padded 12-hour clock.
func FormatPickup(t time.Time) string {
	return t.Format(model.PickupTimeLayout)
}

// ParsePickup reads a formatted pickup time back onto now's date.
func ParsePickup(s string, now time.Time) (time.Time, bool) {
	clock, err := time.Parse("3:04 PM", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}
