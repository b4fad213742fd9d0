// pkg/config/config_test.go
package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.ThrustScale != 1.0 {
		t.Errorf("ThrustScale = %v, expected 1.0", cfg.ThrustScale)
	}
	if math.Abs(cfg.ForceCoarseness-math.Pi/1000) > 1e-15 {
		t.Errorf("ForceCoarseness = %v, expected pi/1000", cfg.ForceCoarseness)
	}
	if cfg.CoMDriftThresholdSq != 0.5 {
		t.Errorf("CoMDriftThresholdSq = %v, expected 0.5", cfg.CoMDriftThresholdSq)
	}
	if cfg.FuelWeight != 0.0001 {
		t.Errorf("FuelWeight = %v, expected 0.0001", cfg.FuelWeight)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults_valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero_thrust_scale", mutate: func(c *Config) { c.ThrustScale = 0 }, wantErr: true},
		{name: "negative_force_coarseness", mutate: func(c *Config) { c.ForceCoarseness = -1 }, wantErr: true},
		{name: "zero_torque_coarseness", mutate: func(c *Config) { c.TorqueCoarseness = 0 }, wantErr: true},
		{name: "negative_drift_threshold", mutate: func(c *Config) { c.CoMDriftThresholdSq = -0.1 }, wantErr: true},
		{name: "negative_fuel_weight", mutate: func(c *Config) { c.FuelWeight = -1 }, wantErr: true},
		{name: "zero_drift_threshold_ok", mutate: func(c *Config) { c.CoMDriftThresholdSq = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	original := DefaultConfig()
	original.ThrustScale = 2.5
	original.TorqueCoarseness = 0.01
	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if loaded.ThrustScale != 2.5 {
		t.Errorf("ThrustScale = %v, expected 2.5", loaded.ThrustScale)
	}
	if loaded.TorqueCoarseness != 0.01 {
		t.Errorf("TorqueCoarseness = %v, expected 0.01", loaded.TorqueCoarseness)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadConfig() on missing file should fail")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	envVars := []string{
		"THRUST_SCALE",
		"THRUST_FORCE_COARSENESS",
		"THRUST_TORQUE_COARSENESS",
		"THRUST_COM_DRIFT_THRESHOLD_SQ",
		"THRUST_FUEL_WEIGHT",
		"THRUST_BREAKER_MAX_CONSECUTIVE_FAILS",
		"THRUST_BREAKER_TIMEOUT",
	}
	for _, key := range envVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Run("DefaultValues", func(t *testing.T) {
		cfg, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("env config without overrides = %+v, expected defaults", cfg)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("THRUST_SCALE", "3.5")
		t.Setenv("THRUST_FORCE_COARSENESS", "0.02")
		t.Setenv("THRUST_COM_DRIFT_THRESHOLD_SQ", "2.0")
		t.Setenv("THRUST_BREAKER_MAX_CONSECUTIVE_FAILS", "9")
		t.Setenv("THRUST_BREAKER_TIMEOUT", "45s")

		cfg, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}
		if cfg.ThrustScale != 3.5 {
			t.Errorf("ThrustScale = %v, expected 3.5", cfg.ThrustScale)
		}
		if cfg.ForceCoarseness != 0.02 {
			t.Errorf("ForceCoarseness = %v, expected 0.02", cfg.ForceCoarseness)
		}
		if cfg.CoMDriftThresholdSq != 2.0 {
			t.Errorf("CoMDriftThresholdSq = %v, expected 2.0", cfg.CoMDriftThresholdSq)
		}
		if cfg.BreakerMaxConsecutiveFails != 9 {
			t.Errorf("BreakerMaxConsecutiveFails = %v, expected 9", cfg.BreakerMaxConsecutiveFails)
		}
		if cfg.BreakerTimeout != 45*time.Second {
			t.Errorf("BreakerTimeout = %v, expected 45s", cfg.BreakerTimeout)
		}
	})

	t.Run("MalformedValue", func(t *testing.T) {
		t.Setenv("THRUST_SCALE", "not-a-number")
		if _, err := LoadConfigFromEnv(); err == nil {
			t.Error("LoadConfigFromEnv() with malformed value should fail")
		}
	})

	t.Run("InvalidAfterOverride", func(t *testing.T) {
		t.Setenv("THRUST_SCALE", "-1")
		if _, err := LoadConfigFromEnv(); err == nil {
			t.Error("LoadConfigFromEnv() with invalid value should fail")
		}
	})
}
