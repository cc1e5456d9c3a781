// Package divvy distributes event-stream partition ownership across a
// dynamic fleet of competing consumer instances, coordinated only through a
// shared ownership ledger.
//
// Each instance runs a Processor that periodically snapshots the ledger,
// asks a load balancer which partitions to claim, persists claims with
// optimistic concurrency, and keeps its ownership alive with heartbeat
// renewals. There is no central coordinator and no inter-instance
// communication: the ledger's compare-and-set writes arbitrate every race.
//
// # Quick Start
//
//	cfg := divvy.DefaultConfig()
//	cfg.OwnerID = "consumer-a"
//
//	js, _ := jetstream.New(nc)
//	st, _ := store.NewNATS(ctx, js, store.NATSConfig{Bucket: "divvy-ownership"})
//	src := source.NewStatic([]string{"0", "1", "2", "3"})
//	lb := balancer.NewFair(cfg.OwnerID, cfg.OwnershipExpiry)
//
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := proc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Stop(context.Background())
//
// # Key Behaviors
//
//   - Fair balancing: a fleet converges toward floor(P/C)..floor(P/C)+1
//     partitions per instance, one claim per round, no locking
//   - Failure recovery: an instance that stops renewing loses its partitions
//     to the rest of the fleet after the ownership expiry
//   - Partition growth: new partitions from the source are picked up on the
//     next balancing round
//   - Pinning: the greedy balancer claims a fixed partition set instead of
//     competing for balance
//
// # Advanced Usage
//
// Hooks and observability:
//
//	hooks := &divvy.Hooks{
//	    OnPartitionClaimed: func(ctx context.Context, pid string) error {
//	        return startPump(ctx, pid)
//	    },
//	    OnPartitionLost: func(ctx context.Context, pid string) error {
//	        return stopPump(ctx, pid)
//	    },
//	}
//
//	proc, _ := divvy.NewProcessor(&cfg, st, src, lb,
//	    divvy.WithHooks(hooks),
//	    divvy.WithLogger(logger),
//	    divvy.WithMetrics(metrics.NewPrometheus(nil, "")),
//	)
//
// See the examples/ directory for complete working examples.
package divvy
