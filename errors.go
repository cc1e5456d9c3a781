package divvy

import "errors"

// Sentinel errors returned by the Processor.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOwnershipStoreRequired is returned when the ownership store is nil.
	ErrOwnershipStoreRequired = errors.New("ownership store is required")

	// ErrPartitionSourceRequired is returned when the partition source is nil.
	ErrPartitionSourceRequired = errors.New("partition source is required")

	// ErrLoadBalancerRequired is returned when the load balancer is nil.
	ErrLoadBalancerRequired = errors.New("load balancer is required")

	// ErrAlreadyStarted is returned when Start is called on a running processor.
	ErrAlreadyStarted = errors.New("processor already started")

	// ErrNotStarted is returned when Stop is called on a processor that hasn't been started.
	ErrNotStarted = errors.New("processor not started")
)
