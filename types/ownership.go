package types

import "time"

// Ownership is a record asserting that a partition is (or was) owned by a
// consumer instance.
//
// Records live in a shared ownership store and are the only coordination
// medium between competing instances: there is no direct inter-instance
// communication. An owner proves liveness by periodically refreshing
// LastModified (a heartbeat); a record whose heartbeat is older than the
// configured expiry is treated as abandoned regardless of its OwnerID.
type Ownership struct {
	// PartitionID identifies the owned partition. Unique within the scope of
	// one ledger (one entity + consumer group).
	PartitionID string `json:"partitionId"`

	// OwnerID identifies the owning consumer instance. Stable for the
	// instance's lifetime. An empty OwnerID marks the record as unowned.
	OwnerID string `json:"ownerId"`

	// LastModified is the wall-clock time of the last claim or heartbeat
	// renewal for this record.
	LastModified time.Time `json:"lastModifiedTime"`

	// Revision is the store's optimistic-concurrency token for this record.
	// It is carried through load balancing untouched and checked by the store
	// on write; load balancers never interpret it. Zero means "no existing
	// record" (a claim must create, not update).
	Revision uint64 `json:"-"`
}

// IsActive reports whether the record represents live ownership at the given
// instant.
//
// A record is active when it has a non-empty OwnerID, a non-zero LastModified,
// and its heartbeat is younger than expiry. Malformed records (missing owner
// or timestamp) are conservatively inactive.
//
// Parameters:
//   - now: Evaluation instant
//   - expiry: Duration after which an unrenewed record is abandoned
//
// Returns:
//   - bool: true if the record is live ownership
func (o Ownership) IsActive(now time.Time, expiry time.Duration) bool {
	if o.OwnerID == "" || o.LastModified.IsZero() {
		return false
	}

	return now.Sub(o.LastModified) < expiry
}

// Ledger is a snapshot of the ownership store: partition ID to its most
// recent ownership record, at most one record per partition.
//
// Ledgers are rebuilt fresh for every balancing round. Consumers of a Ledger
// must treat it as an immutable value; load balancers never retain or mutate
// one across calls.
type Ledger = map[string]Ownership
