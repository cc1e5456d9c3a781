package types

// LoadBalancer decides which partitions a consumer instance should attempt to
// claim in the current balancing round.
//
// Implementations are pure decision logic: they perform no I/O, never mutate
// or retain the ledger, and never claim on behalf of any instance other than
// the one they were constructed for. The returned partition IDs are a
// proposal; the ownership store's optimistic-concurrency write is the true
// arbiter when several instances race for the same partition.
//
// Built-in implementations live in the balancer package:
//   - Fair: competitive rebalancing toward an even spread across active owners
//   - Greedy: static claim of a pinned (or unrestricted) partition set
//
// Implementations should:
//   - Handle edge cases (empty ledger, empty candidates, malformed records)
//   - Run quickly (called on every balancing tick)
//   - Hold no state beyond construction-time parameters and an RNG
type LoadBalancer interface {
	// LoadBalance returns the partition IDs this instance should try to claim.
	//
	// Parameters:
	//   - ledger: Read-only snapshot of current ownership, one record per partition
	//   - partitions: All partition IDs that currently exist for the entity
	//
	// Returns:
	//   - []string: Partition IDs to claim this round (possibly empty, never nil-unsafe)
	LoadBalance(ledger Ledger, partitions []string) []string
}
