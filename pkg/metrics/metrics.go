package metrics

import (
	"net/http"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housekeeping"

// Collector holds the service's Prometheus collectors
type Collector struct {
	registry *prometheus.Registry

	assignmentRuns *prometheus.CounterVec
	roomsAssigned  prometheus.Counter
	imbalance      prometheus.Histogram
	fairness       prometheus.Histogram
	roomMoves      *prometheus.CounterVec
	rateLimited    prometheus.Counter
}

// New creates a collector on its own registry, with Go runtime and process
// collectors alongside the service metrics.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		assignmentRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assignment_runs_total",
				Help:      "Total number of auto-assignment runs by input source",
			},
			[]string{"source"},
		),
		roomsAssigned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rooms_assigned_total",
				Help:      "Total number of rooms placed by auto-assignment",
			},
		),
		imbalance: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assignment_imbalance",
				Help:      "Weight gap between the heaviest and lightest workload of a run",
				Buckets:   prometheus.LinearBuckets(0, 1, 10), // 0, 1, ..., 9
			},
		),
		fairness: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assignment_fairness_score",
				Help:      "Fairness score (0-100) of each run",
				Buckets:   prometheus.LinearBuckets(50, 10, 6), // 50, 60, ..., 100
			},
		),
		roomMoves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "room_moves_total",
				Help:      "Manual room moves by result",
			},
			[]string{"result"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-key rate limiter",
			},
		),
	}
}

// ObserveAssignment records one auto-assignment run
func (c *Collector) ObserveAssignment(source string, resp models.AssignResponse) {
	c.assignmentRuns.WithLabelValues(source).Inc()
	c.roomsAssigned.Add(float64(resp.Summary.TotalRooms))
	c.imbalance.Observe(resp.Summary.MaxWeightImbalance)
	c.fairness.Observe(resp.FairnessScore)
}

// ObserveMove records a manual move; applied is false when it was a no-op
func (c *Collector) ObserveMove(applied bool) {
	result := "applied"
	if !applied {
		result = "noop"
	}
	c.roomMoves.WithLabelValues(result).Inc()
}

// ObserveRateLimited counts a rejected request
func (c *Collector) ObserveRateLimited() {
	c.rateLimited.Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
