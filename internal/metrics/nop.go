// Package metrics provides types.MetricsCollector implementations: a
// Prometheus-backed collector and a no-op collector.
package metrics

import "github.com/divvylib/divvy/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards everything
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordBalanceCycle discards the balance cycle metric.
func (n *NopMetrics) RecordBalanceCycle(_ /* duration */ float64, _ /* proposed */ int) {
	// No-op
}

// RecordPartitionCount discards the partition count metric.
func (n *NopMetrics) RecordPartitionCount(_ /* count */ int) {
	// No-op
}

// RecordClaim discards the claim outcome metric.
func (n *NopMetrics) RecordClaim(_ /* success */ bool) {
	// No-op
}

// RecordRenewal discards the renewal outcome metric.
func (n *NopMetrics) RecordRenewal(_ /* success */ bool) {
	// No-op
}

// RecordOwnedPartitions discards the owned partition gauge.
func (n *NopMetrics) RecordOwnedPartitions(_ /* count */ int) {
	// No-op
}

// RecordStoreOperationDuration discards the store latency metric.
func (n *NopMetrics) RecordStoreOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}
