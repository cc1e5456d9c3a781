package balancer

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divvylib/divvy/types"
)

const testExpiry = 30 * time.Second

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func activeRecord(pid, owner string) types.Ownership {
	return types.Ownership{
		PartitionID:  pid,
		OwnerID:      owner,
		LastModified: time.Now(),
	}
}

func TestFair_LoadBalance(t *testing.T) {
	partitions := []string{"0", "1", "2", "3"}

	t.Run("returns empty list with no candidate partitions", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{"0": activeRecord("0", "other")}

		require.Empty(t, lb.LoadBalance(ledger, nil))
	})

	t.Run("bootstrap claims exactly one partition", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))

		claims := lb.LoadBalance(types.Ledger{}, partitions)

		require.Len(t, claims, 1)
		require.Contains(t, partitions, claims[0])
	})

	t.Run("seeded rng makes the bootstrap pick deterministic", func(t *testing.T) {
		first := NewFair("me", testExpiry, WithRand(seededRand())).
			LoadBalance(types.Ledger{}, partitions)
		second := NewFair("me", testExpiry, WithRand(seededRand())).
			LoadBalance(types.Ledger{}, partitions)

		require.Equal(t, first, second)
	})

	t.Run("stale records count as unclaimed", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": {PartitionID: "0", OwnerID: "x", LastModified: time.Now().Add(-2 * testExpiry)},
		}

		// Only stale ownership exists, so this is the bootstrap path.
		claims := lb.LoadBalance(ledger, partitions)
		require.Len(t, claims, 1)
	})

	t.Run("stale partition is claimable even though the key exists", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "x"),
			"1": {PartitionID: "1", OwnerID: "y", LastModified: time.Now().Add(-time.Minute)},
		}

		claims := lb.LoadBalance(ledger, []string{"0", "1"})

		require.Equal(t, []string{"1"}, claims)
	})

	t.Run("malformed records are treated as unowned", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": {PartitionID: "0", OwnerID: "", LastModified: time.Now()},
			"1": {PartitionID: "1", OwnerID: "x"}, // zero LastModified
		}

		claims := lb.LoadBalance(ledger, partitions)
		require.Len(t, claims, 1)
	})

	t.Run("balanced assignment is a no-op", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "me"),
			"1": activeRecord("1", "me"),
			"2": activeRecord("2", "a"),
			"3": activeRecord("3", "b"),
		}

		// P=4, C=3: minPerOwner=1, one owner entitled to the extra partition.
		require.Empty(t, lb.LoadBalance(ledger, partitions))
	})

	t.Run("does not over-claim above fair share while others catch up", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "me"),
			"1": activeRecord("1", "me"),
			"2": activeRecord("2", "a"),
			"3": activeRecord("3", "b"),
		}

		// P=5, C=3: minPerOwner=1, two owners get the extra. This instance
		// already holds minPerOwner+1, so partition "4" belongs to a or b.
		require.Empty(t, lb.LoadBalance(ledger, []string{"0", "1", "2", "3", "4"}))
	})

	t.Run("claims one unclaimed partition when below fair share", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "a"),
			"1": activeRecord("1", "a"),
			"2": activeRecord("2", "b"),
		}

		claims := lb.LoadBalance(ledger, partitions)

		require.Equal(t, []string{"3"}, claims)
	})

	t.Run("steals from the most loaded owner when everything is owned", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "a"),
			"1": activeRecord("1", "a"),
			"2": activeRecord("2", "a"),
			"3": activeRecord("3", "b"),
		}

		claims := lb.LoadBalance(ledger, partitions)

		require.Len(t, claims, 1)
		require.Contains(t, []string{"0", "1", "2"}, claims[0])
	})

	t.Run("steal tie-break targets the smallest owner id at max count", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "a"),
			"1": activeRecord("1", "a"),
			"2": activeRecord("2", "b"),
			"3": activeRecord("3", "b"),
		}

		claims := lb.LoadBalance(ledger, partitions)

		require.Len(t, claims, 1)
		require.Contains(t, []string{"0", "1"}, claims[0], "victim must be owner a")
	})

	t.Run("counts itself as an active owner before owning anything", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "a"),
			"1": activeRecord("1", "a"),
			"2": activeRecord("2", "a"),
			"3": activeRecord("3", "a"),
		}

		// From a's point of view alone the ledger is balanced. Once this
		// instance registers itself, C=2 and a holds above its fair share.
		claims := lb.LoadBalance(ledger, partitions)
		require.Len(t, claims, 1)
	})

	t.Run("never mutates or retains the ledger", func(t *testing.T) {
		lb := NewFair("me", testExpiry, WithRand(seededRand()))
		ledger := types.Ledger{
			"0": activeRecord("0", "a"),
			"1": {PartitionID: "1", OwnerID: "b", LastModified: time.Now().Add(-time.Minute)},
		}
		before := make(types.Ledger, len(ledger))
		for k, v := range ledger {
			before[k] = v
		}

		lb.LoadBalance(ledger, partitions)

		require.Equal(t, before, ledger)
	})
}

// TestFair_Convergence simulates several instances sharing one ledger, each
// persisting its claim immediately after balancing. The fleet must settle
// into the floor(P/C)..floor(P/C)+1 spread and then go quiet.
func TestFair_Convergence(t *testing.T) {
	partitions := []string{"0", "1", "2", "3"}
	owners := []string{"a", "b", "c"}

	balancers := make(map[string]*Fair, len(owners))
	for i, id := range owners {
		balancers[id] = NewFair(id, testExpiry, WithRand(rand.New(rand.NewPCG(uint64(i), 7))))
	}

	ledger := types.Ledger{}
	persist := func(owner, pid string) {
		ledger[pid] = types.Ownership{PartitionID: pid, OwnerID: owner, LastModified: time.Now()}
	}

	// At most P rounds of claims are needed to place every partition.
	for range len(partitions) {
		for _, id := range owners {
			claims := balancers[id].LoadBalance(ledger, partitions)
			require.LessOrEqual(t, len(claims), 1, "never more than one claim per round")
			for _, pid := range claims {
				persist(id, pid)
			}
		}
	}

	counts := make(map[string]int, len(owners))
	for _, o := range ledger {
		counts[o.OwnerID]++
	}

	// P=4, C=3: two owners with 1 partition, one owner with 2.
	total := 0
	withExtra := 0
	for _, id := range owners {
		require.GreaterOrEqual(t, counts[id], 1)
		require.LessOrEqual(t, counts[id], 2)
		total += counts[id]
		if counts[id] == 2 {
			withExtra++
		}
	}
	require.Equal(t, len(partitions), total)
	require.Equal(t, 1, withExtra)

	// Balanced state is idempotent: every further call is a no-op.
	for _, id := range owners {
		require.Empty(t, balancers[id].LoadBalance(ledger, partitions))
	}
}
