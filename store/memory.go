package store

import (
	"context"
	"sync"
	"time"

	"github.com/divvylib/divvy/types"
)

// Memory implements an in-process ownership store.
//
// It enforces the same optimistic-concurrency contract as the NATS store
// with a mutex-guarded map and a monotonic revision counter, which makes it
// a faithful stand-in for multi-instance simulations in tests.
type Memory struct {
	mu      sync.Mutex
	records map[string]types.Ownership
	nextRev uint64
}

var _ types.OwnershipStore = (*Memory)(nil)

// NewMemory creates an empty in-memory ownership store.
//
// Returns:
//   - *Memory: Initialized store
//
// Example:
//
//	st := store.NewMemory()
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb)
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]types.Ownership),
	}
}

// ListOwnership returns a copy of every record.
func (s *Memory) ListOwnership(_ context.Context) (types.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := make(types.Ledger, len(s.records))
	for pid, o := range s.records {
		ledger[pid] = o
	}

	return ledger, nil
}

// Claim attempts to persist ownership of a partition.
//
// Revision zero requires the partition to have no record; a non-zero revision
// must match the stored one. Conflicts return types.ErrClaimLost.
func (s *Memory) Claim(_ context.Context, o types.Ownership) (types.Ownership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.records[o.PartitionID]
	if o.Revision == 0 {
		if exists {
			return types.Ownership{}, types.ErrClaimLost
		}
	} else if !exists || existing.Revision != o.Revision {
		return types.Ownership{}, types.ErrClaimLost
	}

	return s.commit(o), nil
}

// Renew refreshes the heartbeat timestamp of a held record.
func (s *Memory) Renew(_ context.Context, o types.Ownership) (types.Ownership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.records[o.PartitionID]
	if !exists || existing.Revision != o.Revision {
		return types.Ownership{}, types.ErrClaimLost
	}

	return s.commit(o), nil
}

// Release deletes a held record. Lost ownership is not an error.
func (s *Memory) Release(_ context.Context, o types.Ownership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.records[o.PartitionID]
	if exists && existing.Revision == o.Revision {
		delete(s.records, o.PartitionID)
	}

	return nil
}

// commit stamps the record and stores it under a fresh revision.
// Caller must hold s.mu.
func (s *Memory) commit(o types.Ownership) types.Ownership {
	s.nextRev++
	o.Revision = s.nextRev
	o.LastModified = time.Now()
	s.records[o.PartitionID] = o

	return o
}
