package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations must be non-blocking and safe for concurrent use; methods
// are called from the processor loop and the renewal goroutine.
type MetricsCollector interface {
	BalanceMetrics
	OwnershipMetrics
	StoreMetrics
}

// BalanceMetrics covers the balancing loop itself.
type BalanceMetrics interface {
	// RecordBalanceCycle records one completed balancing round.
	//
	// Parameters:
	//   - duration: Round duration in seconds
	//   - proposed: Number of partitions the balancer proposed to claim
	RecordBalanceCycle(duration float64, proposed int)

	// RecordPartitionCount sets the current candidate partition count (gauge).
	RecordPartitionCount(count int)
}

// OwnershipMetrics covers claim, renewal, and loss events.
type OwnershipMetrics interface {
	// RecordClaim records a claim attempt and its outcome.
	//
	// Parameters:
	//   - success: true if the claim persisted, false if the race was lost
	RecordClaim(success bool)

	// RecordRenewal records a heartbeat renewal attempt and its outcome.
	RecordRenewal(success bool)

	// RecordOwnedPartitions sets the number of partitions this instance
	// currently owns (gauge).
	RecordOwnedPartitions(count int)
}

// StoreMetrics covers ownership-store access latency.
type StoreMetrics interface {
	// RecordStoreOperationDuration records one store call.
	//
	// Parameters:
	//   - operation: Operation name ("list", "claim", "renew", "release")
	//   - duration: Time taken in seconds
	RecordStoreOperationDuration(operation string, duration float64)
}
