package divvy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/divvylib/divvy/internal/logging"
	"github.com/divvylib/divvy/internal/metrics"
	"github.com/divvylib/divvy/internal/renewal"
	"github.com/divvylib/divvy/types"
)

// Processor is the per-instance balancing loop.
//
// On every tick it lists the candidate partitions, snapshots the ownership
// ledger, asks the load balancer which partitions to claim, and persists the
// claims. A claim that loses its optimistic-concurrency race is discarded
// silently and simply re-evaluated next round. A background renewer keeps
// owned records alive; losing a renewal race triggers OnPartitionLost.
//
// One Processor per consumer instance; all coordination between instances
// happens through the shared ownership store.
type Processor struct {
	cfg      Config
	store    OwnershipStore
	source   PartitionSource
	balancer LoadBalancer

	logger  Logger
	metrics MetricsCollector
	hooks   *Hooks

	// owned is shared with the renewer: the balancing loop adds entries as
	// claims persist, the renewer refreshes or evicts them.
	owned   *xsync.Map[string, types.Ownership]
	renewer *renewal.Renewer

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	runCtx  context.Context
	doneCh  chan struct{}
}

// NewProcessor creates a new processor.
//
// The configuration is defaulted and validated in place; a missing OwnerID
// gets a random UUID, so two processors built from separate Config values
// never collide accidentally.
//
// Parameters:
//   - cfg: Processor configuration (defaults applied in place)
//   - store: Ownership store shared by the fleet
//   - source: Partition directory for the target entity
//   - lb: Load balancing strategy (see the balancer package)
//   - opts: Optional dependencies (WithLogger, WithMetrics, WithHooks)
//
// Returns:
//   - *Processor: Initialized processor (not yet started)
//   - error: Missing dependency or invalid configuration
//
// Example:
//
//	cfg := divvy.DefaultConfig()
//	lb := balancer.NewFair(cfg.OwnerID, cfg.OwnershipExpiry)
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb)
func NewProcessor(cfg *Config, store OwnershipStore, source PartitionSource, lb LoadBalancer, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, ErrOwnershipStoreRequired
	}
	if source == nil {
		return nil, ErrPartitionSourceRequired
	}
	if lb == nil {
		return nil, ErrLoadBalancerRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &processorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return &Processor{
		cfg:      *cfg,
		store:    store,
		source:   source,
		balancer: lb,
		logger:   options.logger,
		metrics:  options.metrics,
		hooks:    options.hooks,
		owned:    xsync.NewMap[string, types.Ownership](),
	}, nil
}

// Start runs an immediate balancing round and then balances in the
// background until Stop is called.
//
// The provided context bounds only the initial round; the background loops
// run on the processor's own lifecycle context.
//
// Parameters:
//   - ctx: Context for the initial balancing round
//
// Returns:
//   - error: ErrAlreadyStarted if already running
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}

	p.runCtx, p.cancel = context.WithCancel(context.Background())
	p.doneCh = make(chan struct{})
	p.started = true

	// A fresh renewer per run keeps the processor restartable after Stop.
	p.renewer = renewal.New(
		p.store,
		p.owned,
		p.cfg.RenewalInterval,
		p.cfg.OperationTimeout,
		p.partitionLost,
		p.logger,
		p.metrics,
	)

	p.logger.Info("processor starting",
		"owner_id", p.cfg.OwnerID,
		"balancing_interval", p.cfg.LoadBalancingInterval,
		"ownership_expiry", p.cfg.OwnershipExpiry,
	)

	// First round runs synchronously so the caller sees initial claims (and
	// the fleet sees this instance) as soon as Start returns.
	p.balanceOnce(ctx)

	if err := p.renewer.Start(); err != nil {
		p.cancel()
		p.started = false
		return fmt.Errorf("failed to start ownership renewer: %w", err)
	}

	go p.balanceLoop()

	return nil
}

// Stop gracefully shuts the processor down.
//
// The balancing loop and renewer are stopped, then every owned partition is
// released so the rest of the fleet can absorb them immediately instead of
// waiting out the ownership expiry.
//
// Parameters:
//   - ctx: Context bounding the shutdown (combined with ShutdownTimeout)
//
// Returns:
//   - error: ErrNotStarted if not running, or the first release error
func (p *Processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	p.cancel()
	p.mu.Unlock()

	<-p.doneCh

	if err := p.renewer.Stop(); err != nil && !errors.Is(err, renewal.ErrNotStarted) {
		p.logger.Error("failed to stop renewer", "error", err)
	}

	releaseCtx, cancel := context.WithTimeout(ctx, p.cfg.ShutdownTimeout)
	defer cancel()

	var firstErr error
	p.owned.Range(func(pid string, o types.Ownership) bool {
		if err := p.store.Release(releaseCtx, o); err != nil {
			p.logger.Error("failed to release partition", "partition", pid, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		p.owned.Delete(pid)

		return true
	})

	p.metrics.RecordOwnedPartitions(0)
	p.logger.Info("processor stopped", "owner_id", p.cfg.OwnerID)

	return firstErr
}

// OwnerID returns this instance's identity in the ownership ledger.
func (p *Processor) OwnerID() string {
	return p.cfg.OwnerID
}

// OwnedPartitions returns the partitions this instance currently owns,
// sorted by partition ID.
//
// Returns:
//   - []string: Owned partition IDs (empty when none)
func (p *Processor) OwnedPartitions() []string {
	owned := make([]string, 0, p.owned.Size())
	p.owned.Range(func(pid string, _ types.Ownership) bool {
		owned = append(owned, pid)
		return true
	})
	slices.Sort(owned)

	return owned
}

// balanceLoop drives periodic balancing rounds until the processor stops.
func (p *Processor) balanceLoop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.cfg.LoadBalancingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.runCtx.Done():
			return
		case <-ticker.C:
			p.balanceOnce(p.runCtx)
		}
	}
}

// balanceOnce runs a single balancing round: list, snapshot, balance, claim.
func (p *Processor) balanceOnce(ctx context.Context) {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.OperationTimeout)
	defer cancel()

	partitions, err := p.source.ListPartitions(opCtx)
	if err != nil {
		p.reportError(fmt.Errorf("failed to list partitions: %w", err))
		return
	}
	p.metrics.RecordPartitionCount(len(partitions))

	listStart := time.Now()
	ledger, err := p.store.ListOwnership(opCtx)
	p.metrics.RecordStoreOperationDuration("list", time.Since(listStart).Seconds())
	if err != nil {
		p.reportError(fmt.Errorf("failed to snapshot ownership ledger: %w", err))
		return
	}

	claims := p.balancer.LoadBalance(ledger, partitions)
	p.metrics.RecordBalanceCycle(time.Since(start).Seconds(), len(claims))

	for _, pid := range claims {
		p.claim(opCtx, pid, ledger[pid].Revision)
	}

	p.metrics.RecordOwnedPartitions(p.owned.Size())
}

// claim persists one proposed claim. Losing the CAS race is expected and
// discarded silently; the next round re-evaluates from a fresh snapshot.
func (p *Processor) claim(ctx context.Context, pid string, revision uint64) {
	proposal := types.Ownership{
		PartitionID: pid,
		OwnerID:     p.cfg.OwnerID,
		Revision:    revision,
	}

	claimStart := time.Now()
	persisted, err := p.store.Claim(ctx, proposal)
	p.metrics.RecordStoreOperationDuration("claim", time.Since(claimStart).Seconds())

	switch {
	case err == nil:
		p.owned.Store(pid, persisted)
		p.metrics.RecordClaim(true)
		p.logger.Info("partition claimed", "partition", pid, "owner_id", p.cfg.OwnerID)
		if p.hooks != nil {
			p.dispatchHook(p.hooks.OnPartitionClaimed, pid)
		}
	case errors.Is(err, types.ErrClaimLost):
		p.metrics.RecordClaim(false)
		p.logger.Debug("claim race lost", "partition", pid)
	default:
		p.metrics.RecordClaim(false)
		p.reportError(fmt.Errorf("failed to claim partition %s: %w", pid, err))
	}
}

// partitionLost is the renewer's callback for records evicted after losing
// their revision check.
func (p *Processor) partitionLost(pid string) {
	if p.hooks != nil {
		p.dispatchHook(p.hooks.OnPartitionLost, pid)
	}
}

// dispatchHook runs a partition hook asynchronously on the lifecycle context.
func (p *Processor) dispatchHook(hook func(context.Context, string) error, pid string) {
	if hook == nil {
		return
	}

	go func() {
		if err := hook(p.runCtx, pid); err != nil {
			p.logger.Error("hook failed", "partition", pid, "error", err)
		}
	}()
}

// reportError logs a recoverable error and forwards it to the OnError hook.
func (p *Processor) reportError(err error) {
	p.logger.Error("balancing round failed", "error", err)

	if p.hooks == nil || p.hooks.OnError == nil {
		return
	}

	go func() {
		if hookErr := p.hooks.OnError(p.runCtx, err); hookErr != nil {
			p.logger.Error("error hook failed", "error", hookErr)
		}
	}()
}
