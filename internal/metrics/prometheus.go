package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/divvylib/divvy/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	balanceCycles    prometheus.Histogram
	proposedClaims   prometheus.Counter
	partitionCount   prometheus.Gauge
	claimResults     *prometheus.CounterVec
	renewalResults   *prometheus.CounterVec
	ownedPartitions  prometheus.Gauge
	storeOpLatencies *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "divvy" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "divvy"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.balanceCycles = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "processor",
			Name:      "balance_cycle_seconds",
			Help:      "Duration of one balancing round in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		})
		p.proposedClaims = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "processor",
			Name:      "proposed_claims_total",
			Help:      "Total partitions proposed for claiming by the load balancer.",
		})
		p.partitionCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "processor",
			Name:      "partitions_current",
			Help:      "Current number of candidate partitions.",
		})
		p.claimResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ownership",
			Name:      "claims_total",
			Help:      "Total claim attempts by result (won/lost).",
		}, []string{"result"})
		p.renewalResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ownership",
			Name:      "renewals_total",
			Help:      "Total heartbeat renewal attempts by result (renewed/lost).",
		}, []string{"result"})
		p.ownedPartitions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "ownership",
			Name:      "owned_partitions_current",
			Help:      "Number of partitions currently owned by this instance.",
		})
		p.storeOpLatencies = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Latency of ownership store operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"op"})

		for _, c := range []prometheus.Collector{
			p.balanceCycles, p.proposedClaims, p.partitionCount,
			p.claimResults, p.renewalResults, p.ownedPartitions,
			p.storeOpLatencies,
		} {
			// AlreadyRegisteredError is fine when multiple processors share a
			// registry; other registration errors surface at scrape time.
			_ = p.reg.Register(c)
		}
	})
}

// RecordBalanceCycle records one completed balancing round.
func (p *PrometheusCollector) RecordBalanceCycle(duration float64, proposed int) {
	p.ensureRegistered()
	p.balanceCycles.Observe(duration)
	p.proposedClaims.Add(float64(proposed))
}

// RecordPartitionCount sets the candidate partition gauge.
func (p *PrometheusCollector) RecordPartitionCount(count int) {
	p.ensureRegistered()
	p.partitionCount.Set(float64(count))
}

// RecordClaim records a claim attempt outcome.
func (p *PrometheusCollector) RecordClaim(success bool) {
	p.ensureRegistered()
	p.claimResults.WithLabelValues(claimResult(success, "won", "lost")).Inc()
}

// RecordRenewal records a renewal attempt outcome.
func (p *PrometheusCollector) RecordRenewal(success bool) {
	p.ensureRegistered()
	p.renewalResults.WithLabelValues(claimResult(success, "renewed", "lost")).Inc()
}

// RecordOwnedPartitions sets the owned partition gauge.
func (p *PrometheusCollector) RecordOwnedPartitions(count int) {
	p.ensureRegistered()
	p.ownedPartitions.Set(float64(count))
}

// RecordStoreOperationDuration records one store call latency.
func (p *PrometheusCollector) RecordStoreOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.storeOpLatencies.WithLabelValues(operation).Observe(duration)
}

func claimResult(success bool, ok, failed string) string {
	if success {
		return ok
	}

	return failed
}
