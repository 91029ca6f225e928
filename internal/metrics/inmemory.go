package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	OrdersPlaced      uint64
	OrdersRejected    map[string]uint64
	StatusTransitions map[string]uint64
	NoShows           uint64
	PredictionCount   uint64
	PredictionRush    uint64
	PredictedMinutes  int64
	SlotsMissed       uint64
	QueueDepth        map[int64]int
	GhostOrders       map[int64]int
	Logins            map[string]uint64
	HTTPRequests      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	ordersPlaced     uint64
	noShows          uint64
	predictionCount  uint64
	predictionRush   uint64
	predictedMinutes int64
	slotsMissed      uint64
	httpRequests     uint64

	mu                sync.Mutex
	ordersRejected    map[string]uint64
	statusTransitions map[string]uint64
	queueDepth        map[int64]int
	ghostOrders       map[int64]int
	logins            map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		ordersRejected:    make(map[string]uint64),
		statusTransitions: make(map[string]uint64),
		queueDepth:        make(map[int64]int),
		ghostOrders:       make(map[int64]int),
		logins:            make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		OrdersPlaced:      atomic.LoadUint64(&m.ordersPlaced),
		OrdersRejected:    maps.Clone(m.ordersRejected),
		StatusTransitions: maps.Clone(m.statusTransitions),
		NoShows:           atomic.LoadUint64(&m.noShows),
		PredictionCount:   atomic.LoadUint64(&m.predictionCount),
		PredictionRush:    atomic.LoadUint64(&m.predictionRush),
		PredictedMinutes:  atomic.LoadInt64(&m.predictedMinutes),
		SlotsMissed:       atomic.LoadUint64(&m.slotsMissed),
		QueueDepth:        maps.Clone(m.queueDepth),
		GhostOrders:       maps.Clone(m.ghostOrders),
		Logins:            maps.Clone(m.logins),
		HTTPRequests:      atomic.LoadUint64(&m.httpRequests),
	}
}

// IncOrderPlaced increments the placed order counter.
func (m *InMemoryRecorder) IncOrderPlaced() {
	atomic.AddUint64(&m.ordersPlaced, 1)
}

// IncOrderRejected increments the rejected order counter for a reason.
func (m *InMemoryRecorder) IncOrderRejected(reason string) {
	m.mu.Lock()
	m.ordersRejected[reason]++
	m.mu.Unlock()
}

// IncStatusTransition increments the counter for the target status.
func (m *InMemoryRecorder) IncStatusTransition(status string) {
	m.mu.Lock()
	m.statusTransitions[status]++
	m.mu.Unlock()
}

// IncNoShow increments the no-show counter.
func (m *InMemoryRecorder) IncNoShow() {
	atomic.AddUint64(&m.noShows, 1)
}

// ObservePredictedWait records a prediction.
func (m *InMemoryRecorder) ObservePredictedWait(minutes int, rush bool) {
	atomic.AddUint64(&m.predictionCount, 1)
	atomic.AddInt64(&m.predictedMinutes, int64(minutes))
	if rush {
		atomic.AddUint64(&m.predictionRush, 1)
	}
}

// IncSlotMissed increments the missed slot counter.
func (m *InMemoryRecorder) IncSlotMissed() {
	atomic.AddUint64(&m.slotsMissed, 1)
}

// SetQueueDepth stores the latest queue depth for a vendor.
func (m *InMemoryRecorder) SetQueueDepth(vendorID int64, depth int) {
	m.mu.Lock()
	m.queueDepth[vendorID] = depth
	m.mu.Unlock()
}

// SetGhostOrders stores the latest ghost order count for a vendor.
func (m *InMemoryRecorder) SetGhostOrders(vendorID int64, count int) {
	m.mu.Lock()
	m.ghostOrders[vendorID] = count
	m.mu.Unlock()
}

// IncLogin increments the login counter keyed by "role:result".
func (m *InMemoryRecorder) IncLogin(role, result string) {
	m.mu.Lock()
	m.logins[role+":"+result]++
	m.mu.Unlock()
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}
