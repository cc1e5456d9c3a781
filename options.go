package divvy

// Option configures a Processor with optional dependencies.
type Option func(*processorOptions)

// processorOptions holds optional Processor configuration.
type processorOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewProcessor
//
// Example:
//
//	hooks := &divvy.Hooks{
//	    OnPartitionClaimed: func(ctx context.Context, pid string) error {
//	        return startPump(ctx, pid)
//	    },
//	}
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb, divvy.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *processorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewProcessor
//
// Example:
//
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb,
//	    divvy.WithMetrics(metrics.NewPrometheus(nil, "")))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *processorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewProcessor
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	proc, err := divvy.NewProcessor(&cfg, st, src, lb, divvy.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *processorOptions) {
		o.logger = logger
	}
}
