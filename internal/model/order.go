package model

import (
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusReceived  Status = "Received"
	StatusCooking   Status = "Cooking"
	StatusReady     Status = "Ready"
	StatusCollected Status = "Collected"
	StatusExpired   Status = "Expired"
)

// TerminalStatuses are the statuses an order never leaves.
var TerminalStatuses = []Status{StatusCollected, StatusExpired}

// ParseStatus converts user input into a Status, ignoring case.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusReceived, StatusCooking, StatusReady, StatusCollected, StatusExpired} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether the status is Collected or Expired.
func (s Status) IsTerminal() bool {
	return slices.Contains(TerminalStatuses, s)
}

// IsActive reports whether an order in this status still counts toward the queue.
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

// Progress returns the completion percentage shown on student trackers.
func (s Status) Progress() int {
	switch s {
	case StatusCooking:
		return 50
	case StatusReady, StatusCollected:
		return 100
	default:
		return 0
	}
}

// AllowedTransitions represents the order state flow as code.
// Expired is reachable from every non-terminal state (no-show).
var AllowedTransitions = map[Status][]Status{
	StatusReceived: {StatusCooking, StatusExpired},
	StatusCooking:  {StatusReady, StatusExpired},
	StatusReady:    {StatusCollected, StatusExpired},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(AllowedTransitions[from], to)
}

// ActorType identifies who caused an order event.
type ActorType string

const (
	ActorStudent ActorType = "student"
	ActorVendor  ActorType = "vendor"
	ActorSystem  ActorType = "system"
)

// Actor is recorded on every order event.
type Actor struct {
	Type ActorType
	ID   string
}

// PickupTimeLayout is the 12-hour clock format of predicted pickup times.
const PickupTimeLayout = "03:04 PM"

// TokenPrefix starts every human-readable order token.
const TokenPrefix = "#VR-"

// Order represents a single item ordered by a student from a vendor.
type Order struct {
	ID                  string    `json:"id"`
	Token               string    `json:"token"`
	UserID              string    `json:"user_id"`
	StudentName         string    `json:"student_name"`
	VendorID            int64     `json:"vendor_id"`
	VendorName          string    `json:"vendor_name,omitempty"`
	ItemName            string    `json:"item_name"`
	Status              Status    `json:"status"`
	PredictedPickupTime string    `json:"predicted_pickup_time"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsActive reports whether the order is neither collected nor expired.
func (o *Order) IsActive() bool {
	return o.Status.IsActive()
}

// OrderEvent is an audit record of a status change.
type OrderEvent struct {
	ID         int64     `json:"id"`
	OrderID    string    `json:"order_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorType  ActorType `json:"actor_type"`
	ActorID    string    `json:"actor_id,omitempty"`
	KarmaDelta int       `json:"karma_delta"`
	CreatedAt  time.Time `json:"created_at"`
}

// PrepCue tells a vendor when to start preparing a received order.
type PrepCue struct {
	StartNow       bool `json:"start_now"`
	StartInMinutes int  `json:"start_in_minutes"`
}

// OrderFlags are derived at read time and never stored.
type OrderFlags struct {
	Urgent  bool     `json:"urgent"`
	Ghost   bool     `json:"ghost"`
	PrepCue *PrepCue `json:"prep_cue,omitempty"`
}

// BoardEntry is an active order with its derived flags.
type BoardEntry struct {
	Order *Order     `json:"order"`
	Flags OrderFlags `json:"flags"`
}
