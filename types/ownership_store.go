package types

import "context"

// OwnershipStore persists partition ownership records with optimistic
// concurrency.
//
// The store is the arbiter of claim races: every write carries the revision
// the caller last observed, and the store must reject the write when the
// stored record has moved on since. Implementations report that rejection as
// ErrClaimLost so callers can discard the claim silently and retry on the
// next balancing round.
//
// Built-in implementations live in the store package:
//   - NATS: JetStream KV bucket, revisions as CAS tokens
//   - Memory: in-process map with the same CAS contract, for tests
type OwnershipStore interface {
	// ListOwnership returns a fresh snapshot of every ownership record.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - Ledger: Partition ID to latest record, including stale entries
	//   - error: Store access error (nil on success)
	ListOwnership(ctx context.Context) (Ledger, error)

	// Claim attempts to take ownership of a partition.
	//
	// The record's Revision must be the one observed in the ledger snapshot
	// the claim was derived from: zero to create a brand-new record, non-zero
	// to overwrite an existing (typically stale) one. The store stamps
	// LastModified with the current time.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - o: Proposed record (PartitionID, OwnerID, Revision set by caller)
	//
	// Returns:
	//   - Ownership: Persisted record with the new Revision and LastModified
	//   - error: ErrClaimLost if another instance won the race, otherwise a store error
	Claim(ctx context.Context, o Ownership) (Ownership, error)

	// Renew refreshes the heartbeat timestamp of a record the caller owns.
	//
	// The write is revision-checked: if the stored record changed since the
	// caller's copy, ownership has been lost and ErrClaimLost is returned.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - o: Currently held record (Revision from the last successful write)
	//
	// Returns:
	//   - Ownership: Record with refreshed LastModified and new Revision
	//   - error: ErrClaimLost if ownership moved, otherwise a store error
	Renew(ctx context.Context, o Ownership) (Ownership, error)

	// Release removes a record the caller owns, making the partition
	// immediately claimable instead of waiting out the expiry.
	//
	// The delete is revision-checked; releasing a record that already moved
	// on is not an error (the partition is simply no longer ours to release).
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - o: Currently held record
	//
	// Returns:
	//   - error: Store access error (nil on success or lost ownership)
	Release(ctx context.Context, o Ownership) error
}
