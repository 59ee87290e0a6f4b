package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, e := range originalEnv {
			pair := splitEnvPair(e)
			os.Setenv(pair[0], pair[1])
		}
	}()

	t.Run("loads defaults when no env vars set", func(t *testing.T) {
		os.Clearenv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}

		assertEqual(t, "ELAAnomalyThreshold", cfg.ELAAnomalyThreshold, 0.15)
		assertEqual(t, "CloneRegionSize", cfg.CloneRegionSize, 32)
		assertEqual(t, "RiskThresholdLow", cfg.RiskThresholdLow, 25.0)
		assertEqual(t, "RiskThresholdMedium", cfg.RiskThresholdMedium, 50.0)
		assertEqual(t, "RiskThresholdHigh", cfg.RiskThresholdHigh, 75.0)
		assertEqual(t, "NormalizationReductionLow", cfg.NormalizationReductionLow, 0.4)
		assertEqual(t, "MaxFileSize", cfg.MaxFileSize, int64(10*1024*1024))
	})

	t.Run("loads values from environment", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("ELA_ANOMALY_THRESHOLD", "0.2")
		os.Setenv("CLONE_REGION_SIZE", "16")
		os.Setenv("RISK_THRESHOLD_LOW", "20")
		os.Setenv("MAX_IMAGE_FILE_SIZE", "5242880")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}

		assertEqual(t, "ELAAnomalyThreshold", cfg.ELAAnomalyThreshold, 0.2)
		assertEqual(t, "CloneRegionSize", cfg.CloneRegionSize, 16)
		assertEqual(t, "RiskThresholdLow", cfg.RiskThresholdLow, 20.0)
		assertEqual(t, "MaxFileSize", cfg.MaxFileSize, int64(5242880))
	})

	t.Run("handles invalid numeric values gracefully", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("CLONE_REGION_SIZE", "not-a-number")
		os.Setenv("ELA_ANOMALY_THRESHOLD", "invalid")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}

		assertEqual(t, "CloneRegionSize", cfg.CloneRegionSize, 32)
		assertEqual(t, "ELAAnomalyThreshold", cfg.ELAAnomalyThreshold, 0.15)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *ForensicConfig {
		cfg, _ := Load()
		return cfg
	}

	t.Run("accepts defaults", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() returned error for default config: %v", err)
		}
	})

	t.Run("rejects out-of-range ELA threshold", func(t *testing.T) {
		cfg := valid()
		cfg.ELAAnomalyThreshold = 1.5
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject ELAAnomalyThreshold > 1")
		}
	})

	t.Run("rejects non-increasing risk thresholds", func(t *testing.T) {
		cfg := valid()
		cfg.RiskThresholdMedium = cfg.RiskThresholdLow
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject non-increasing risk thresholds")
		}
	})

	t.Run("rejects normalization factor out of (0,1]", func(t *testing.T) {
		cfg := valid()
		cfg.NormalizationReductionHigh = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject a zero reduction factor")
		}
	})

	t.Run("rejects too small MaxFileSize", func(t *testing.T) {
		cfg := valid()
		cfg.MaxFileSize = 100
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject MaxFileSize < 1024")
		}
	})

	t.Run("rejects zero clone region size", func(t *testing.T) {
		cfg := valid()
		cfg.CloneRegionSize = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject CloneRegionSize < 1")
		}
	})
}

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func splitEnvPair(env string) [2]string {
	for i := 0; i < len(env); i++ {
		if env[i] == '=' {
			return [2]string{env[:i], env[i+1:]}
		}
	}
	return [2]string{env, ""}
}
