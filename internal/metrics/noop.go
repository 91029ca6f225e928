package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncOrderPlaced is a no-op.
func (n *NoopRecorder) IncOrderPlaced() {}

// IncOrderRejected is a no-op.
func (n *NoopRecorder) IncOrderRejected(reason string) {}

// IncStatusTransition is a no-op.
func (n *NoopRecorder) IncStatusTransition(status string) {}

// IncNoShow is a no-op.
func (n *NoopRecorder) IncNoShow() {}

// ObservePredictedWait is a no-op.
func (n *NoopRecorder) ObservePredictedWait(minutes int, rush bool) {}

// IncSlotMissed is a no-op.
func (n *NoopRecorder) IncSlotMissed() {}

// SetQueueDepth is a no-op.
func (n *NoopRecorder) SetQueueDepth(vendorID int64, depth int) {}

// SetGhostOrders is a no-op.
func (n *NoopRecorder) SetGhostOrders(vendorID int64, count int) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(role, result string) {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
