package source

import (
	"context"
	"sync"

	"github.com/divvylib/divvy/types"
)

// Static implements a partition source with a fixed list of partition IDs.
type Static struct {
	mu         sync.RWMutex
	partitions []string
}

var _ types.PartitionSource = (*Static)(nil)

// NewStatic creates a new static partition source.
//
// Useful for testing and for entities whose partition count is known at
// startup.
//
// Parameters:
//   - partitions: Fixed list of partition IDs
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]string{"0", "1", "2", "3"})
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb)
func NewStatic(partitions []string) *Static {
	s := &Static{}
	s.Update(partitions)

	return s
}

// ListPartitions returns the current list of partition IDs.
//
// Returns:
//   - []string: Copy of the partition list
//   - error: Always nil (never fails)
func (s *Static) ListPartitions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, len(s.partitions))
	copy(result, s.partitions)

	return result, nil
}

// Update replaces the partition list.
//
// This lets tests simulate partition-count growth: the processor sees the
// new list on its next balancing round.
//
// Parameters:
//   - partitions: New list of partition IDs
func (s *Static) Update(partitions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partitions = make([]string, len(partitions))
	copy(s.partitions, partitions)
}
