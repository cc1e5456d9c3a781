package divvy

import "github.com/divvylib/divvy/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces via type aliases. Implementation packages depend on the `types`
// subpackage directly, which avoids import cycles, while users get the
// convenient divvy.Ownership, divvy.LoadBalancer, etc.
type (
	Ownership = types.Ownership
	Ledger    = types.Ledger
)

// Re-export interfaces from the types subpackage for convenience.
type (
	LoadBalancer     = types.LoadBalancer
	OwnershipStore   = types.OwnershipStore
	PartitionSource  = types.PartitionSource
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// ErrClaimLost is re-exported so callers can test store errors without
// importing the types subpackage.
var ErrClaimLost = types.ErrClaimLost
