// Package notify detects orders that became Ready since a client last looked.
package notify

import "github.com/canteenrush/canteenrush/internal/model"

// ReadyTransitions compares the current orders with the statuses last shown
// to a client. It returns the orders that are Ready now and were seen before
// in another status, plus the status map to store for the next poll.
// An order seen for the first time never triggers a notification.
func ReadyTransitions(lastSeen map[string]model.Status, current []*model.Order) ([]*model.Order, map[string]model.Status) {
	var ready []*model.Order
	next := make(map[string]model.Status, len(current))

	for _, order := range current {
		next[order.ID] = order.Status

		prev, seen := lastSeen[order.ID]
		if seen && prev != model.StatusReady && order.Status == model.StatusReady {
			ready = append(ready, order)
		}
	}

	return ready, next
}
