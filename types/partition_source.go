package types

import "context"

// PartitionSource provides the current list of partition IDs for the target
// entity.
//
// The partition count may grow over time (the source must reflect newly added
// partitions); it is not expected to shrink. The Processor queries the source
// on every balancing tick so growth is picked up without restarts.
//
// Implementations can query a management endpoint, a metadata store, or
// return a fixed list (see source.Static).
type PartitionSource interface {
	// ListPartitions returns all partition IDs that currently exist.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []string: Current partition IDs
	//   - error: Discovery error (transient failures are retried next tick)
	ListPartitions(ctx context.Context) ([]string, error)
}
