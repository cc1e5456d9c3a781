package balancer

import "github.com/divvylib/divvy/types"

// Greedy implements static, non-competitive partition claiming.
//
// The instance claims every watched partition that no one else holds a ledger
// record for, all in one round. It never steals and never weighs its share
// against other instances; use it to pin an instance to a fixed partition
// set, or to grab every partition in a single-consumer deployment.
type Greedy struct {
	// watched limits claims to these partitions. nil watches everything;
	// an empty non-nil set watches nothing.
	watched map[string]struct{}
}

var _ types.LoadBalancer = (*Greedy)(nil)

// NewGreedy creates a greedy load balancer.
//
// Parameters:
//   - watched: Partition IDs to claim. Pass nil to watch all partitions ever
//     presented; an explicitly empty slice pins nothing and always yields an
//     empty claim list.
//
// Returns:
//   - *Greedy: Initialized greedy balancer
//
// Example:
//
//	lb := balancer.NewGreedy([]string{"0", "2"})
//	claims := lb.LoadBalance(ledger, partitions) // ["0", "2"] when unowned
func NewGreedy(watched []string) *Greedy {
	g := &Greedy{}

	if watched != nil {
		g.watched = make(map[string]struct{}, len(watched))
		for _, pid := range watched {
			g.watched[pid] = struct{}{}
		}
	}

	return g
}

// LoadBalance returns every watched candidate partition without a ledger
// record.
//
// A partition with any record in the raw ledger is skipped, no matter who the
// owner is or how stale the record's heartbeat; greedy instances never
// contest existing records.
//
// Parameters:
//   - ledger: Read-only ownership snapshot
//   - partitions: All candidate partition IDs
//
// Returns:
//   - []string: Unowned watched partitions, in candidate order
func (g *Greedy) LoadBalance(ledger types.Ledger, partitions []string) []string {
	var claims []string
	for _, pid := range partitions {
		if g.watched != nil {
			if _, ok := g.watched[pid]; !ok {
				continue
			}
		}
		if _, owned := ledger[pid]; owned {
			continue
		}
		claims = append(claims, pid)
	}

	return claims
}
