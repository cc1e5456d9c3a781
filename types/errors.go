package types

import "errors"

// ErrClaimLost is returned by OwnershipStore implementations when an
// optimistic-concurrency write is rejected because another instance modified
// the record first. Callers discard the claim and retry on a later round.
var ErrClaimLost = errors.New("ownership claim lost to another instance")
