package divvy

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// Timing Model
// ============================================================================
//
// Three durations govern ownership dynamics, and their ordering matters:
//
//	RenewalInterval  <  OwnershipExpiry
//	    Owned records must be renewed faster than they expire, or the rest of
//	    the fleet legitimately reclaims them. Default is expiry/3, tolerating
//	    two missed renewals.
//
//	LoadBalancingInterval
//	    How often each instance re-evaluates the ledger and claims at most
//	    one partition (fair balancer). Convergence after a topology change
//	    takes up to P such rounds fleet-wide; shorter intervals converge
//	    faster at the cost of more store traffic.
//
//	OwnershipExpiry
//	    How long a crashed instance's partitions stay orphaned before the
//	    fleet absorbs them. This is the recovery-time / false-takeover
//	    trade-off knob.
//
// ============================================================================

// Config is the configuration for the Processor.
//
// All duration fields accept standard Go duration strings like "30s", "5m"
// when loaded from YAML.
type Config struct {
	// OwnerID identifies this consumer instance in the ownership ledger.
	// Must be unique across the fleet and stable for the process lifetime.
	// Left empty, a random UUID is generated.
	OwnerID string `yaml:"ownerId"`

	// LoadBalancingInterval is how often the processor runs a balancing round.
	// Recommended: 10 seconds.
	LoadBalancingInterval time.Duration `yaml:"loadBalancingInterval"`

	// OwnershipExpiry is how long an unrenewed ownership record stays valid
	// before other instances treat the partition as abandoned.
	// Recommended: 30 seconds.
	OwnershipExpiry time.Duration `yaml:"ownershipExpiry"`

	// RenewalInterval is how often owned records have their heartbeat
	// refreshed. Must be strictly less than OwnershipExpiry.
	// Default: OwnershipExpiry / 3.
	RenewalInterval time.Duration `yaml:"renewalInterval"`

	// OperationTimeout is the timeout for individual store and source calls.
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout bounds graceful shutdown, including releasing every
	// owned partition. Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// The OwnerID is left empty; SetDefaults (called by NewProcessor) fills it
// with a random UUID.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		LoadBalancingInterval: 10 * time.Second,
		OwnershipExpiry:       30 * time.Second,
		RenewalInterval:       10 * time.Second,
		OperationTimeout:      10 * time.Second,
		ShutdownTimeout:       10 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.OwnerID == "" {
		cfg.OwnerID = uuid.NewString()
	}
	if cfg.LoadBalancingInterval == 0 {
		cfg.LoadBalancingInterval = defaults.LoadBalancingInterval
	}
	if cfg.OwnershipExpiry == 0 {
		cfg.OwnershipExpiry = defaults.OwnershipExpiry
	}
	if cfg.RenewalInterval == 0 {
		cfg.RenewalInterval = cfg.OwnershipExpiry / 3
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// Validate checks the configuration for consistency.
//
// Returns:
//   - error: ErrInvalidConfig (wrapped with detail) on the first violation
func (cfg *Config) Validate() error {
	if cfg.OwnerID == "" {
		return fmt.Errorf("%w: ownerId must not be empty", ErrInvalidConfig)
	}
	if cfg.LoadBalancingInterval <= 0 {
		return fmt.Errorf("%w: loadBalancingInterval must be positive", ErrInvalidConfig)
	}
	if cfg.OwnershipExpiry <= 0 {
		return fmt.Errorf("%w: ownershipExpiry must be positive", ErrInvalidConfig)
	}
	if cfg.RenewalInterval <= 0 {
		return fmt.Errorf("%w: renewalInterval must be positive", ErrInvalidConfig)
	}
	if cfg.RenewalInterval >= cfg.OwnershipExpiry {
		return fmt.Errorf("%w: renewalInterval (%s) must be less than ownershipExpiry (%s)",
			ErrInvalidConfig, cfg.RenewalInterval, cfg.OwnershipExpiry)
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: operationTimeout must be positive", ErrInvalidConfig)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdownTimeout must be positive", ErrInvalidConfig)
	}

	return nil
}

// LoadConfig reads a YAML configuration file and applies defaults.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Loaded configuration with defaults applied
//   - error: Read, parse, or validation error
//
// Example:
//
//	cfg, err := divvy.LoadConfig("divvy.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
