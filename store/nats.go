package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/divvylib/divvy/internal/kvutil"
	"github.com/divvylib/divvy/internal/logging"
	"github.com/divvylib/divvy/types"
)

// NATS implements an ownership store backed by a JetStream KV bucket.
//
// Each partition maps to one KV key holding a JSON ownership record. KV
// revisions are the optimistic-concurrency tokens: claims over fresh
// partitions use Create (atomic, fails if the key appeared), claims over
// stale records and renewals use Update with the observed revision.
//
// The bucket must NOT be configured with a TTL. Staleness is decided by the
// load balancer from the record's timestamp, and the raw ledger is expected
// to keep stale keys visible (a greedy balancer treats any key as owned).
type NATS struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

var _ types.OwnershipStore = (*NATS)(nil)

// NATSConfig configures the NATS ownership store.
type NATSConfig struct {
	// Bucket is the KV bucket name holding ownership records.
	Bucket string

	// Replicas is the bucket replication factor (0 means 1).
	Replicas int

	// Logger is used for debug output (nil means no logging).
	Logger types.Logger
}

// NewNATS creates or opens the ownership KV bucket and returns a store on it.
//
// Bucket creation is idempotent and safe to race: every instance calls this
// at startup and the first one wins, the rest open the existing bucket.
//
// Parameters:
//   - ctx: Context for bucket provisioning
//   - js: JetStream context
//   - cfg: Store configuration
//
// Returns:
//   - *NATS: Initialized store
//   - error: Bucket provisioning error
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	st, err := store.NewNATS(ctx, js, store.NATSConfig{Bucket: "divvy-ownership"})
func NewNATS(ctx context.Context, js jetstream.JetStream, cfg NATSConfig) (*NATS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("ownership bucket name is required")
	}

	replicas := cfg.Replicas
	if replicas == 0 {
		replicas = 1
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Replicas: replicas,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to provision ownership bucket: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &NATS{kv: kv, logger: logger}, nil
}

// ownershipValue is the JSON wire form of a record. The revision travels in
// KV metadata, not in the value.
type ownershipValue struct {
	OwnerID      string    `json:"ownerId"`
	LastModified time.Time `json:"lastModifiedTime"`
}

// ListOwnership returns a snapshot of every record in the bucket.
//
// Records whose value fails to decode are returned with an empty OwnerID and
// zero timestamp so balancers treat them as unowned while greedy balancers
// still see the key.
func (s *NATS) ListOwnership(ctx context.Context) (types.Ledger, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return types.Ledger{}, nil
		}

		return nil, fmt.Errorf("failed to list ownership keys: %w", err)
	}

	ledger := make(types.Ledger, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			// Deleted between Keys and Get: the partition is simply unowned.
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, fmt.Errorf("failed to read ownership of %s: %w", key, err)
		}

		o := types.Ownership{PartitionID: key, Revision: entry.Revision()}

		var v ownershipValue
		if err := json.Unmarshal(entry.Value(), &v); err != nil {
			s.logger.Warn("malformed ownership record", "partition", key, "error", err)
		} else {
			o.OwnerID = v.OwnerID
			o.LastModified = v.LastModified
		}

		ledger[key] = o
	}

	return ledger, nil
}

// Claim attempts to persist ownership of a partition.
//
// Revision zero creates the key atomically; a non-zero revision overwrites
// the record observed in the snapshot. Either way, losing the race yields
// types.ErrClaimLost.
func (s *NATS) Claim(ctx context.Context, o types.Ownership) (types.Ownership, error) {
	o.LastModified = time.Now()

	data, err := json.Marshal(ownershipValue{OwnerID: o.OwnerID, LastModified: o.LastModified})
	if err != nil {
		return types.Ownership{}, fmt.Errorf("failed to encode ownership record: %w", err)
	}

	var revision uint64
	if o.Revision == 0 {
		revision, err = s.kv.Create(ctx, o.PartitionID, data)
	} else {
		revision, err = s.kv.Update(ctx, o.PartitionID, data, o.Revision)
	}
	if err != nil {
		if isCASConflict(err) {
			s.logger.Debug("ownership claim lost", "partition", o.PartitionID, "owner", o.OwnerID)
			return types.Ownership{}, types.ErrClaimLost
		}

		return types.Ownership{}, fmt.Errorf("failed to claim partition %s: %w", o.PartitionID, err)
	}

	o.Revision = revision

	return o, nil
}

// Renew refreshes the heartbeat timestamp of a held record.
//
// The revision check guarantees the record has not been taken over; a
// conflict means ownership moved and is reported as types.ErrClaimLost.
func (s *NATS) Renew(ctx context.Context, o types.Ownership) (types.Ownership, error) {
	o.LastModified = time.Now()

	data, err := json.Marshal(ownershipValue{OwnerID: o.OwnerID, LastModified: o.LastModified})
	if err != nil {
		return types.Ownership{}, fmt.Errorf("failed to encode ownership record: %w", err)
	}

	revision, err := s.kv.Update(ctx, o.PartitionID, data, o.Revision)
	if err != nil {
		if isCASConflict(err) || errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Ownership{}, types.ErrClaimLost
		}

		return types.Ownership{}, fmt.Errorf("failed to renew partition %s: %w", o.PartitionID, err)
	}

	o.Revision = revision

	return o, nil
}

// Release deletes a held record so the partition is immediately claimable.
//
// A revision conflict or missing key means the record already moved on, which
// is not an error during release.
func (s *NATS) Release(ctx context.Context, o types.Ownership) error {
	err := s.kv.Delete(ctx, o.PartitionID, jetstream.LastRevision(o.Revision))
	if err != nil && !isCASConflict(err) && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to release partition %s: %w", o.PartitionID, err)
	}

	return nil
}

// isCASConflict reports whether a KV write failed its optimistic-concurrency
// check: Create on an existing key, or Update/Delete against a stale revision.
func isCASConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return false
}
