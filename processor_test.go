package divvy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divvylib/divvy"
	"github.com/divvylib/divvy/balancer"
	"github.com/divvylib/divvy/source"
	"github.com/divvylib/divvy/store"
	divvytest "github.com/divvylib/divvy/testing"
	"github.com/divvylib/divvy/types"
)

func fastConfig(ownerID string) divvy.Config {
	return divvy.Config{
		OwnerID:               ownerID,
		LoadBalancingInterval: 25 * time.Millisecond,
		OwnershipExpiry:       300 * time.Millisecond,
		RenewalInterval:       50 * time.Millisecond,
		OperationTimeout:      time.Second,
		ShutdownTimeout:       2 * time.Second,
	}
}

func startProcessor(t *testing.T, st divvy.OwnershipStore, src divvy.PartitionSource, ownerID string, opts ...divvy.Option) *divvy.Processor {
	t.Helper()

	cfg := fastConfig(ownerID)
	lb := balancer.NewFair(ownerID, cfg.OwnershipExpiry)

	opts = append(opts, divvy.WithLogger(divvytest.NewTestLogger(t)))
	proc, err := divvy.NewProcessor(&cfg, st, src, lb, opts...)
	require.NoError(t, err)
	require.NoError(t, proc.Start(context.Background()))
	t.Cleanup(func() {
		_ = proc.Stop(context.Background())
	})

	return proc
}

func TestNewProcessor_Validation(t *testing.T) {
	cfg := fastConfig("a")
	st := store.NewMemory()
	src := source.NewStatic([]string{"0"})
	lb := balancer.NewFair("a", cfg.OwnershipExpiry)

	t.Run("requires an ownership store", func(t *testing.T) {
		_, err := divvy.NewProcessor(&cfg, nil, src, lb)
		require.ErrorIs(t, err, divvy.ErrOwnershipStoreRequired)
	})

	t.Run("requires a partition source", func(t *testing.T) {
		_, err := divvy.NewProcessor(&cfg, st, nil, lb)
		require.ErrorIs(t, err, divvy.ErrPartitionSourceRequired)
	})

	t.Run("requires a load balancer", func(t *testing.T) {
		_, err := divvy.NewProcessor(&cfg, st, src, nil)
		require.ErrorIs(t, err, divvy.ErrLoadBalancerRequired)
	})

	t.Run("rejects renewal interval at or above expiry", func(t *testing.T) {
		bad := fastConfig("a")
		bad.RenewalInterval = bad.OwnershipExpiry
		_, err := divvy.NewProcessor(&bad, st, src, lb)
		require.ErrorIs(t, err, divvy.ErrInvalidConfig)
	})
}

func TestProcessor_Lifecycle(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1"})
	cfg := fastConfig("a")
	lb := balancer.NewFair("a", cfg.OwnershipExpiry)

	proc, err := divvy.NewProcessor(&cfg, st, src, lb)
	require.NoError(t, err)

	require.ErrorIs(t, proc.Stop(context.Background()), divvy.ErrNotStarted)

	require.NoError(t, proc.Start(context.Background()))
	require.ErrorIs(t, proc.Start(context.Background()), divvy.ErrAlreadyStarted)

	require.NoError(t, proc.Stop(context.Background()))
	require.ErrorIs(t, proc.Stop(context.Background()), divvy.ErrNotStarted)
}

func TestProcessor_SingleInstanceClaimsEverything(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1", "2", "3"})

	proc := startProcessor(t, st, src, "solo")

	require.Eventually(t, func() bool {
		return len(proc.OwnedPartitions()) == 4
	}, 5*time.Second, 10*time.Millisecond, "solo instance should absorb every partition")

	require.Equal(t, []string{"0", "1", "2", "3"}, proc.OwnedPartitions())
}

func TestProcessor_FleetConvergesToEvenSplit(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1", "2", "3"})

	a := startProcessor(t, st, src, "a")
	b := startProcessor(t, st, src, "b")

	require.Eventually(t, func() bool {
		return len(a.OwnedPartitions()) == 2 && len(b.OwnedPartitions()) == 2
	}, 5*time.Second, 10*time.Millisecond, "fleet should settle at two partitions each")
}

func TestProcessor_StopReleasesPartitionsToFleet(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1", "2", "3"})

	a := startProcessor(t, st, src, "a")
	b := startProcessor(t, st, src, "b")

	require.Eventually(t, func() bool {
		return len(a.OwnedPartitions()) == 2 && len(b.OwnedPartitions()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, b.Stop(context.Background()))

	require.Eventually(t, func() bool {
		return len(a.OwnedPartitions()) == 4
	}, 5*time.Second, 10*time.Millisecond, "survivor should absorb released partitions")
}

func TestProcessor_ReclaimsAbandonedPartitions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1", "2", "3"})

	// A "crashed" owner: records exist but are never renewed.
	_, err := st.Claim(ctx, types.Ownership{PartitionID: "0", OwnerID: "ghost"})
	require.NoError(t, err)
	_, err = st.Claim(ctx, types.Ownership{PartitionID: "1", OwnerID: "ghost"})
	require.NoError(t, err)

	proc := startProcessor(t, st, src, "survivor")

	require.Eventually(t, func() bool {
		return len(proc.OwnedPartitions()) == 4
	}, 5*time.Second, 10*time.Millisecond, "abandoned partitions should be reclaimed after expiry")
}

func TestProcessor_PicksUpPartitionGrowth(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1"})

	proc := startProcessor(t, st, src, "solo")

	require.Eventually(t, func() bool {
		return len(proc.OwnedPartitions()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	src.Update([]string{"0", "1", "2", "3"})

	require.Eventually(t, func() bool {
		return len(proc.OwnedPartitions()) == 4
	}, 5*time.Second, 10*time.Millisecond, "new partitions should be claimed on later rounds")
}

func TestProcessor_Hooks(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0"})

	claimed := make(chan string, 4)
	hooks := &divvy.Hooks{
		OnPartitionClaimed: func(_ context.Context, pid string) error {
			claimed <- pid
			return nil
		},
	}

	startProcessor(t, st, src, "a", divvy.WithHooks(hooks))

	select {
	case pid := <-claimed:
		require.Equal(t, "0", pid)
	case <-time.After(5 * time.Second):
		t.Fatal("OnPartitionClaimed hook was not invoked")
	}
}

func TestProcessor_GreedyPinnedInstance(t *testing.T) {
	st := store.NewMemory()
	src := source.NewStatic([]string{"0", "1", "2", "3"})

	cfg := fastConfig("pinned")
	proc, err := divvy.NewProcessor(&cfg, st, src, balancer.NewGreedy([]string{"0", "2"}))
	require.NoError(t, err)
	require.NoError(t, proc.Start(context.Background()))
	t.Cleanup(func() { _ = proc.Stop(context.Background()) })

	require.Eventually(t, func() bool {
		return len(proc.OwnedPartitions()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.Equal(t, []string{"0", "2"}, proc.OwnedPartitions())
}
