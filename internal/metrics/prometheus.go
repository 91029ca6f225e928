package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "canteenrush"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	ordersPlaced      prometheus.Counter
	ordersRejected    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	noShows           prometheus.Counter
	predictedWait     *prometheus.HistogramVec
	slotsMissed       prometheus.Counter
	queueDepth        *prometheus.GaugeVec
	ghostOrders       *prometheus.GaugeVec
	logins            *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders accepted from students.",
		}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders declined before creation, by reason.",
		}, []string{"reason"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes, by target status.",
		}, []string{"status"}),
		noShows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_no_shows_total",
			Help:      "Orders expired as no-shows.",
		}),
		predictedWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_wait_minutes",
			Help:      "Predicted wait of placed orders in minutes.",
			Buckets:   []float64{5, 10, 15, 20, 30, 45, 60, 90},
		}, []string{"rush"}),
		slotsMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickup_slots_missed_total",
			Help:      "Requested pickup slots that fell back to an immediate estimate.",
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vendor_queue_depth",
			Help:      "Active orders per vendor.",
		}, []string{"vendor_id"}),
		ghostOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vendor_ghost_orders",
			Help:      "Ready orders left uncollected past the ghost threshold, per vendor.",
		}, []string{"vendor_id"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by role and result.",
		}, []string{"role", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		p.ordersPlaced,
		p.ordersRejected,
		p.statusTransitions,
		p.noShows,
		p.predictedWait,
		p.slotsMissed,
		p.queueDepth,
		p.ghostOrders,
		p.logins,
		p.httpDuration,
	)

	return p
}

// IncOrderPlaced increments the placed order counter.
func (p *PrometheusRecorder) IncOrderPlaced() {
	p.ordersPlaced.Inc()
}

// IncOrderRejected increments the rejected order counter.
func (p *PrometheusRecorder) IncOrderRejected(reason string) {
	p.ordersRejected.WithLabelValues(reason).Inc()
}

// IncStatusTransition increments the transition counter.
func (p *PrometheusRecorder) IncStatusTransition(status string) {
	p.statusTransitions.WithLabelValues(status).Inc()
}

// IncNoShow increments the no-show counter.
func (p *PrometheusRecorder) IncNoShow() {
	p.noShows.Inc()
}

// ObservePredictedWait records a prediction.
func (p *PrometheusRecorder) ObservePredictedWait(minutes int, rush bool) {
	p.predictedWait.WithLabelValues(strconv.FormatBool(rush)).Observe(float64(minutes))
}

// IncSlotMissed increments the missed slot counter.
func (p *PrometheusRecorder) IncSlotMissed() {
	p.slotsMissed.Inc()
}

// SetQueueDepth sets the queue depth gauge for a vendor.
func (p *PrometheusRecorder) SetQueueDepth(vendorID int64, depth int) {
	p.queueDepth.WithLabelValues(strconv.FormatInt(vendorID, 10)).Set(float64(depth))
}

// SetGhostOrders sets the ghost order gauge for a vendor.
func (p *PrometheusRecorder) SetGhostOrders(vendorID int64, count int) {
	p.ghostOrders.WithLabelValues(strconv.FormatInt(vendorID, 10)).Set(float64(count))
}

// IncLogin increments the login counter.
func (p *PrometheusRecorder) IncLogin(role, result string) {
	p.logins.WithLabelValues(role, result).Inc()
}

// ObserveHTTPRequest records request latency.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
