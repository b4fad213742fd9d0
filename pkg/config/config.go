// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/opd-ai/go-thrustalloc/pkg/allocator"
)

// Config contains the tuning surface of the allocation core. The cache and
// drift constants are deliberately configuration rather than constants:
// their useful values depend on the host engine's length-unit scale, so
// there is no universally correct default.
type Config struct {
	// ThrustScale is the global multiplier applied to every applied force.
	ThrustScale float64 `json:"thrustScale"`

	// ForceCoarseness and TorqueCoarseness set the quantization bucket
	// width of the firing cache, per desire axis. Coarser buckets trade
	// allocation fidelity for cache hit rate: a hand-flown craft wants
	// fine buckets, an AI swarm tolerates wide ones.
	ForceCoarseness  float64 `json:"forceCoarseness"`
	TorqueCoarseness float64 `json:"torqueCoarseness"`

	// CoMDriftThresholdSq is the squared center-of-mass displacement that
	// invalidates cached allocations. Depends on the host's length units.
	CoMDriftThresholdSq float64 `json:"comDriftThresholdSq"`

	// Objective weights, see allocator.Weights.
	FuelWeight         float64 `json:"fuelWeight"`
	TorqueWeightFactor float64 `json:"torqueWeightFactor"`
	ForceWeight        float64 `json:"forceWeight"`

	// Circuit breaker guarding the solver against repeated invariant
	// violations.
	BreakerMaxConsecutiveFails uint32        `json:"breakerMaxConsecutiveFails"`
	BreakerTimeout             time.Duration `json:"breakerTimeout"`
}

// DefaultConfig returns the configuration the allocator ships with. The
// quantization coarseness defaults to pi/1000 per axis.
func DefaultConfig() *Config {
	return &Config{
		ThrustScale:                1.0,
		ForceCoarseness:            math.Pi / 1000,
		TorqueCoarseness:           math.Pi / 1000,
		CoMDriftThresholdSq:        0.5,
		FuelWeight:                 0.0001,
		TorqueWeightFactor:         10.0,
		ForceWeight:                1.0,
		BreakerMaxConsecutiveFails: 5,
		BreakerTimeout:             30 * time.Second,
	}
}

// Weights extracts the solver objective weights
func (c *Config) Weights() allocator.Weights {
	return allocator.Weights{
		Fuel:         c.FuelWeight,
		TorqueFactor: c.TorqueWeightFactor,
		Force:        c.ForceWeight,
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.ThrustScale <= 0 {
		return fmt.Errorf("thrust scale must be positive, got %v", c.ThrustScale)
	}
	if c.ForceCoarseness <= 0 || c.TorqueCoarseness <= 0 {
		return fmt.Errorf("quantization coarseness must be positive, got force %v torque %v",
			c.ForceCoarseness, c.TorqueCoarseness)
	}
	if c.CoMDriftThresholdSq < 0 {
		return fmt.Errorf("CoM drift threshold must be non-negative, got %v", c.CoMDriftThresholdSq)
	}
	if c.FuelWeight < 0 || c.TorqueWeightFactor < 0 || c.ForceWeight < 0 {
		return fmt.Errorf("objective weights must be non-negative")
	}
	return nil
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfigFromEnv builds a configuration from THRUST_* environment
// variables on top of the defaults. Unset variables keep their defaults;
// malformed values are an error.
func LoadConfigFromEnv() (*Config, error) {
	config := DefaultConfig()

	var err error
	if config.ThrustScale, err = getEnvFloat("THRUST_SCALE", config.ThrustScale); err != nil {
		return nil, err
	}
	if config.ForceCoarseness, err = getEnvFloat("THRUST_FORCE_COARSENESS", config.ForceCoarseness); err != nil {
		return nil, err
	}
	if config.TorqueCoarseness, err = getEnvFloat("THRUST_TORQUE_COARSENESS", config.TorqueCoarseness); err != nil {
		return nil, err
	}
	if config.CoMDriftThresholdSq, err = getEnvFloat("THRUST_COM_DRIFT_THRESHOLD_SQ", config.CoMDriftThresholdSq); err != nil {
		return nil, err
	}
	if config.FuelWeight, err = getEnvFloat("THRUST_FUEL_WEIGHT", config.FuelWeight); err != nil {
		return nil, err
	}
	if config.TorqueWeightFactor, err = getEnvFloat("THRUST_TORQUE_WEIGHT_FACTOR", config.TorqueWeightFactor); err != nil {
		return nil, err
	}
	if config.ForceWeight, err = getEnvFloat("THRUST_FORCE_WEIGHT", config.ForceWeight); err != nil {
		return nil, err
	}
	if config.BreakerMaxConsecutiveFails, err = getEnvUint32("THRUST_BREAKER_MAX_CONSECUTIVE_FAILS", config.BreakerMaxConsecutiveFails); err != nil {
		return nil, err
	}
	if config.BreakerTimeout, err = getEnvDuration("THRUST_BREAKER_TIMEOUT", config.BreakerTimeout); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	return config, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %w", key, err)
	}
	return value, nil
}

func getEnvUint32(key string, fallback uint32) (uint32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid unsigned integer for %s: %w", key, err)
	}
	return uint32(value), nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return value, nil
}
