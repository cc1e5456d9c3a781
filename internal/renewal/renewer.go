// Package renewal runs the background heartbeat loop that keeps this
// instance's ownership records alive.
package renewal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/divvylib/divvy/types"
)

// Common errors for renewer operations.
var (
	ErrNotStarted     = errors.New("renewer not started")
	ErrAlreadyStarted = errors.New("renewer already started")
)

// Renewer periodically refreshes the LastModified heartbeat of every
// partition this instance owns.
//
// Other instances treat a record as abandoned once its heartbeat is older
// than the ownership expiry, so the renewal interval must be strictly
// shorter than the expiry (the Processor config validation enforces a 1/3
// ratio by default). When a renewal fails its revision check the partition
// has been taken over: the renewer drops it from the owned set and notifies
// the owner loop through the onLost callback.
//
// The owned set is shared with the Processor's balancing loop, which adds
// entries as claims persist; xsync.Map keeps both sides coordination-free.
type Renewer struct {
	store    types.OwnershipStore
	owned    *xsync.Map[string, types.Ownership]
	interval time.Duration
	timeout  time.Duration
	onLost   func(partitionID string)
	logger   types.Logger
	metrics  types.MetricsCollector

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a renewer over a shared owned-partition set.
//
// Parameters:
//   - store: Ownership store to renew through
//   - owned: Shared map of currently owned records, keyed by partition ID
//   - interval: Renewal interval (must be < ownership expiry)
//   - timeout: Per-round store operation timeout
//   - onLost: Called for each partition whose renewal lost its revision check
//   - logger: Logger for renewal failures
//   - metrics: Collector for renewal outcomes
//
// Returns:
//   - *Renewer: New renewer instance (not yet started)
func New(
	store types.OwnershipStore,
	owned *xsync.Map[string, types.Ownership],
	interval time.Duration,
	timeout time.Duration,
	onLost func(partitionID string),
	logger types.Logger,
	metrics types.MetricsCollector,
) *Renewer {
	return &Renewer{
		store:    store,
		owned:    owned,
		interval: interval,
		timeout:  timeout,
		onLost:   onLost,
		logger:   logger,
		metrics:  metrics,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins renewing in the background until Stop is called.
//
// Returns:
//   - error: ErrAlreadyStarted if already running
func (r *Renewer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	go r.renewLoop()

	return nil
}

// Stop stops the renewal loop and waits for it to exit.
//
// Owned records are left in place; the Processor releases them explicitly
// during shutdown.
//
// Returns:
//   - error: ErrNotStarted if not running
func (r *Renewer) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.started = false
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh

	return nil
}

// renewLoop is the background goroutine that renews owned records.
func (r *Renewer) renewLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			r.renewAll(ctx)
			cancel()
		}
	}
}

// renewAll renews every currently owned record once.
func (r *Renewer) renewAll(ctx context.Context) {
	r.owned.Range(func(pid string, o types.Ownership) bool {
		renewed, err := r.store.Renew(ctx, o)
		switch {
		case err == nil:
			r.owned.Store(pid, renewed)
			r.metrics.RecordRenewal(true)
		case errors.Is(err, types.ErrClaimLost):
			// Taken over after our heartbeat expired, or deliberately stolen.
			r.owned.Delete(pid)
			r.metrics.RecordRenewal(false)
			r.logger.Warn("partition ownership lost during renewal", "partition", pid)
			if r.onLost != nil {
				r.onLost(pid)
			}
		default:
			// Transient store failure: keep the record and retry next tick.
			// If failures persist past the expiry the partition is lost anyway.
			r.metrics.RecordRenewal(false)
			r.logger.Error("failed to renew partition ownership", "partition", pid, "error", err)
		}

		return true
	})

	r.metrics.RecordOwnedPartitions(r.owned.Size())
}
