package renewal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/stretchr/testify/require"

	"github.com/divvylib/divvy/internal/logging"
	"github.com/divvylib/divvy/internal/metrics"
	"github.com/divvylib/divvy/store"
	"github.com/divvylib/divvy/types"
)

func newRenewer(st types.OwnershipStore, owned *xsync.Map[string, types.Ownership], onLost func(string)) *Renewer {
	return New(st, owned, 20*time.Millisecond, time.Second, onLost, logging.NewNop(), metrics.NewNop())
}

func TestRenewer(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps owned records alive", func(t *testing.T) {
		st := store.NewMemory()
		held, err := st.Claim(ctx, types.Ownership{PartitionID: "0", OwnerID: "a"})
		require.NoError(t, err)

		owned := xsync.NewMap[string, types.Ownership]()
		owned.Store("0", held)

		r := newRenewer(st, owned, nil)
		require.NoError(t, r.Start())
		defer func() { _ = r.Stop() }()

		require.Eventually(t, func() bool {
			o, ok := owned.Load("0")
			return ok && o.Revision > held.Revision
		}, 2*time.Second, 5*time.Millisecond, "renewals should advance the revision")
	})

	t.Run("evicts and reports records lost to takeover", func(t *testing.T) {
		st := store.NewMemory()
		held, err := st.Claim(ctx, types.Ownership{PartitionID: "0", OwnerID: "a"})
		require.NoError(t, err)

		owned := xsync.NewMap[string, types.Ownership]()
		owned.Store("0", held)

		var mu sync.Mutex
		var lost []string
		r := newRenewer(st, owned, func(pid string) {
			mu.Lock()
			lost = append(lost, pid)
			mu.Unlock()
		})

		// Another instance steals the partition before renewal starts.
		_, err = st.Claim(ctx, types.Ownership{PartitionID: "0", OwnerID: "b", Revision: held.Revision})
		require.NoError(t, err)

		require.NoError(t, r.Start())
		defer func() { _ = r.Stop() }()

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			_, stillOwned := owned.Load("0")
			return !stillOwned && len(lost) == 1 && lost[0] == "0"
		}, 2*time.Second, 5*time.Millisecond, "takeover should evict the record and fire onLost")
	})

	t.Run("start and stop guard against double calls", func(t *testing.T) {
		st := store.NewMemory()
		r := newRenewer(st, xsync.NewMap[string, types.Ownership](), nil)

		require.ErrorIs(t, r.Stop(), ErrNotStarted)
		require.NoError(t, r.Start())
		require.ErrorIs(t, r.Start(), ErrAlreadyStarted)
		require.NoError(t, r.Stop())
	})
}
