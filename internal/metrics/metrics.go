// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Order lifecycle metrics
	IncOrderPlaced()
	IncOrderRejected(reason string) // reason: "banned", "unavailable"
	IncStatusTransition(status string)
	IncNoShow()

	// Prediction metrics
	ObservePredictedWait(minutes int, rush bool)
	IncSlotMissed()

	// Queue monitor metrics
	SetQueueDepth(vendorID int64, depth int)
	SetGhostOrders(vendorID int64, count int)

	// Account metrics
	IncLogin(role, result string) // result: "success", "invalid", "banned"

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
