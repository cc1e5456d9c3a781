// Package store provides built-in ownership store implementations.
//
// An ownership store persists partition ownership records and arbitrates
// claim races through optimistic concurrency: every write carries the
// revision the writer last observed, and a write against a record that moved
// on is rejected with types.ErrClaimLost.
//
// Two implementations are provided:
//
//   - NATS: records in a JetStream KV bucket, KV revisions as CAS tokens.
//     The production store; any number of processes sharing the bucket
//     coordinate through it.
//   - Memory: an in-process map with the same CAS contract. Useful for tests
//     and single-process simulations.
//
// Custom stores can be implemented by satisfying the types.OwnershipStore
// interface.
package store
