package balancer

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/divvylib/divvy/types"
)

// Fair implements competitive partition rebalancing across all currently
// active consumer instances.
//
// Each round it claims at most one partition, so a fleet of instances running
// the same algorithm against the same ledger converges toward an even spread
// over successive rounds without any central coordinator.
//
// Fair is not safe for concurrent use: it owns a private RNG and expects to
// be driven from a single balancing loop, which is how the Processor uses it.
type Fair struct {
	ownerID string
	expiry  time.Duration
	rng     *rand.Rand
}

var _ types.LoadBalancer = (*Fair)(nil)

// FairOption configures a Fair balancer.
type FairOption func(*Fair)

// NewFair creates a fair load balancer for one consumer instance.
//
// The expiry is the duration after which an unrenewed ownership record is
// considered abandoned and its partition reclaimable. Owners must renew at an
// interval strictly shorter than expiry or they will legitimately lose their
// partitions.
//
// Parameters:
//   - ownerID: This instance's identity, stable for the process lifetime
//   - expiry: Ownership record expiry (inactivity threshold)
//   - opts: Optional configuration (WithRand)
//
// Returns:
//   - *Fair: Initialized fair balancer
//
// Example:
//
//	lb := balancer.NewFair("consumer-a", 30*time.Second)
//	claims := lb.LoadBalance(ledger, partitions)
func NewFair(ownerID string, expiry time.Duration, opts ...FairOption) *Fair {
	f := &Fair{
		ownerID: ownerID,
		expiry:  expiry,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.rng == nil {
		// Seed from the owner identity and the clock so instances started at
		// the same instant with identical ledgers still pick different
		// partitions in the randomized paths.
		f.rng = rand.New(rand.NewPCG(xxh3.HashString(ownerID), uint64(time.Now().UnixNano())))
	}

	return f
}

// WithRand sets the randomness source used for bootstrap and claim selection.
//
// Supplying a seeded generator makes claim choices deterministic, which tests
// rely on to assert exact picks.
//
// Parameters:
//   - rng: Randomness source
//
// Returns:
//   - FairOption: Configuration option
func WithRand(rng *rand.Rand) FairOption {
	return func(f *Fair) {
		f.rng = rng
	}
}

// LoadBalance decides which partition, if any, this instance should claim.
//
// The algorithm:
//  1. Drop expired and malformed ledger records to get the active view
//  2. Bootstrap: nothing actively owned, claim one partition at random
//  3. Group active ownership by owner, counting this instance even if it
//     owns nothing yet
//  4. Compute targets: minPerOwner = floor(P/C), extra = P mod C owners get
//     one more
//  5. Already balanced: no-op
//  6. At or above fair share: no-op (never steal past the target)
//  7. Otherwise claim one unclaimed partition at random, or steal one at
//     random from the most loaded owner
//
// The returned slice holds at most one partition ID. The steal victim is
// chosen deterministically: owners are scanned in ascending owner-ID order
// and the first one at the maximum count is picked.
//
// Parameters:
//   - ledger: Read-only ownership snapshot (never retained or mutated)
//   - partitions: All candidate partition IDs
//
// Returns:
//   - []string: Empty, or a single partition ID to claim
func (f *Fair) LoadBalance(ledger types.Ledger, partitions []string) []string {
	if len(partitions) == 0 {
		return nil
	}

	now := time.Now()

	// Active ownership view. A record past expiry, or missing its owner or
	// timestamp, is invisible here and its partition counts as unclaimed.
	active := make(map[string]types.Ownership, len(ledger))
	for pid, o := range ledger {
		if o.IsActive(now, f.expiry) {
			active[pid] = o
		}
	}

	// Bootstrap: first instance up, or every previous owner is gone. Claim a
	// random partition; racing instances are settled by the store's CAS write.
	if len(active) == 0 {
		return []string{partitions[f.rng.IntN(len(partitions))]}
	}

	owned := f.groupByOwner(active)

	totalOwned := 0
	for _, ps := range owned {
		totalOwned += len(ps)
	}

	minPerOwner := len(partitions) / len(owned)
	extra := len(partitions) % len(owned)

	if isBalanced(owned, minPerOwner, extra) {
		return nil
	}

	mine := len(owned[f.ownerID])
	switch {
	case mine < minPerOwner:
		// Below fair share, keep growing.
	case mine == minPerOwner && totalOwned < len(partitions):
		// At the floor with partitions still unclaimed; eligible for the +1.
	default:
		// At or above fair share while others catch up.
		return nil
	}

	if unclaimed := f.unclaimedOf(active, partitions); len(unclaimed) > 0 {
		return []string{unclaimed[f.rng.IntN(len(unclaimed))]}
	}

	// Everything is actively owned, steal from the most loaded owner.
	victim := mostLoadedOwner(owned)
	theirs := owned[victim]

	return []string{theirs[f.rng.IntN(len(theirs))]}
}

// groupByOwner maps each active owner to the partitions it holds. The calling
// instance always appears, even with no partitions, so it counts as one of
// the active consumers in the target computation.
func (f *Fair) groupByOwner(active map[string]types.Ownership) map[string][]string {
	owned := make(map[string][]string, len(active)+1)
	owned[f.ownerID] = nil

	for pid, o := range active {
		owned[o.OwnerID] = append(owned[o.OwnerID], pid)
	}

	return owned
}

// unclaimedOf returns the candidate partitions absent from the active view.
func (f *Fair) unclaimedOf(active map[string]types.Ownership, partitions []string) []string {
	var unclaimed []string
	for _, pid := range partitions {
		if _, ok := active[pid]; !ok {
			unclaimed = append(unclaimed, pid)
		}
	}

	return unclaimed
}

// isBalanced reports whether every owner holds minPerOwner or minPerOwner+1
// partitions and exactly extra owners hold the larger share.
func isBalanced(owned map[string][]string, minPerOwner, extra int) bool {
	withExtra := 0
	for _, ps := range owned {
		switch len(ps) {
		case minPerOwner:
		case minPerOwner + 1:
			withExtra++
		default:
			return false
		}
	}

	return withExtra == extra
}

// mostLoadedOwner returns the owner holding the most partitions. Ties break
// to the lexicographically smallest owner ID so the choice is stable for a
// given ledger.
func mostLoadedOwner(owned map[string][]string) string {
	ids := make([]string, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	victim := ""
	maxCount := -1
	for _, id := range ids {
		if n := len(owned[id]); n > maxCount {
			victim = id
			maxCount = n
		}
	}

	return victim
}
