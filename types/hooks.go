package types

import "context"

// Hooks defines callbacks for Processor lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they cannot stall the balancing loop. The context passed to a hook is
// the processor's lifecycle context and is cancelled during Stop.
//
// Hook implementations should complete quickly, respect context cancellation,
// and be idempotent; errors are logged, never acted on.
type Hooks struct {
	// OnPartitionClaimed is called after a claim persists and the partition
	// is owned by this instance.
	OnPartitionClaimed func(ctx context.Context, partitionID string) error

	// OnPartitionLost is called when ownership of a partition is lost:
	// a renewal failed its revision check, or the record was taken over.
	OnPartitionLost func(ctx context.Context, partitionID string) error

	// OnError is called when a recoverable error occurs in the balancing or
	// renewal loop (store unavailable, source listing failed, ...).
	OnError func(ctx context.Context, err error) error
}
