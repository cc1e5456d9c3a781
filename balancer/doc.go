// Package balancer provides the built-in partition load-balancing strategies.
//
// A load balancer decides which partitions the calling consumer instance
// should attempt to claim in the current round, given a snapshot of the
// shared ownership ledger and the full candidate partition list. It is pure
// decision logic: no I/O, no ledger mutation, no knowledge of how claims are
// persisted. When two instances propose the same partition in the same round,
// the ownership store's optimistic-concurrency write decides the winner.
//
// # Strategy Selection Guide
//
// Fair:
//   - Use when a fleet of instances should share partitions evenly
//   - Converges toward floor(P/C)..floor(P/C)+1 partitions per active owner
//   - Claims at most one partition per round; repeated rounds converge
//   - Reclaims partitions whose heartbeat expired, steals when necessary
//
// Greedy:
//   - Use to pin an instance to a fixed partition set (or grab everything)
//   - Claims every unowned watched partition in a single round
//   - Never steals, never competes for balance
//
// Custom strategies can be implemented by satisfying the types.LoadBalancer
// interface.
package balancer
