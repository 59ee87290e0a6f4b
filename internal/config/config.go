// Package config holds the immutable threshold snapshot the forensic
// pipeline and risk scorer read at startup.
//
// This is deliberately narrower than a full application config: ports,
// database URLs, and CORS origins belong to the HTTP surface that sits
// outside this module. ForensicConfig only carries the numeric thresholds
// the image forensic pipeline and risk scorer consume, loaded from
// environment variables following the same 12-factor pattern with sensible
// defaults, validated at startup to fail fast if misconfigured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ForensicConfig holds every threshold the forensic pipeline and risk
// scorer consume. Values are read once into an immutable snapshot; tests
// construct a ForensicConfig literal directly to override values.
type ForensicConfig struct {
	// ELA thresholds.
	ELAAnomalyThreshold float64 // ELA_ANOMALY_THRESHOLD (default 0.15)
	ELAVeryLow          float64 // ELA_VERY_LOW (default 15)
	ELALow              float64 // ELA_LOW (default 40)
	ELAHigh             float64 // ELA_HIGH (default 600)
	ELAVeryHigh         float64 // ELA_VERY_HIGH (default 1000)
	ELAConfidenceScale  float64 // fixed multiplier, kept here for testability

	// Clone detection thresholds.
	CloneRegionSize           int     // CLONE_REGION_SIZE (default 32)
	CloneDuplicateRatioThresh float64 // CLONE_DUPLICATE_RATIO_THRESHOLD (default 0.05)
	CloneDistanceMinBlocks    int     // CLONE_DISTANCE_MIN_BLOCKS (default 2) - read but unused, see DESIGN.md

	// Compression consistency.
	CompressionVarianceThreshold float64 // COMPRESSION_VARIANCE_THRESHOLD (default 1000.0)

	// Advanced forensic thresholds.
	NoiseRatioMax          float64 // NOISE_RATIO_MAX (default 3.0)
	EdgeConsistencyDiff    float64 // EDGE_CONSISTENCY_DIFF (default 20)
	ResamplingFFTPeakRatio float64 // RESAMPLING_FFT_PEAK_RATIO (default 8.0)
	ColorCorrLow           float64 // COLOR_CORR_LOW (default 0.85)
	MedianFilterThreshold  float64 // MEDIAN_FILTER_THRESHOLD (default 1.0)

	// Risk categorization thresholds.
	RiskThresholdLow    float64 // RISK_THRESHOLD_LOW (default 25)
	RiskThresholdMedium float64 // RISK_THRESHOLD_MEDIUM (default 50)
	RiskThresholdHigh   float64 // RISK_THRESHOLD_HIGH (default 75)

	// Compression normalization reduction factors.
	NormalizationReductionLow    float64 // RISK_NORMALIZATION_REDUCTION_LOW (default 0.4)
	NormalizationReductionMedium float64 // RISK_NORMALIZATION_REDUCTION_MEDIUM (default 0.5)
	NormalizationReductionHigh   float64 // RISK_NORMALIZATION_REDUCTION_HIGH (default 0.65)

	// MaxFileSize bounds the input raster file size in bytes.
	MaxFileSize int64 // MAX_IMAGE_FILE_SIZE (default 10 MiB)
}

// Load reads the threshold snapshot from environment variables. Missing
// values fall back to the defaults from spec.md §6. Load never returns an
// error itself; use Validate to check the result.
func Load() (*ForensicConfig, error) {
	cfg := &ForensicConfig{
		ELAAnomalyThreshold:          getEnvAsFloat64("ELA_ANOMALY_THRESHOLD", 0.15),
		ELAVeryLow:                   getEnvAsFloat64("ELA_VERY_LOW", 15),
		ELALow:                       getEnvAsFloat64("ELA_LOW", 40),
		ELAHigh:                      getEnvAsFloat64("ELA_HIGH", 600),
		ELAVeryHigh:                  getEnvAsFloat64("ELA_VERY_HIGH", 1000),
		ELAConfidenceScale:           3.0,
		CloneRegionSize:              getEnvAsInt("CLONE_REGION_SIZE", 32),
		CloneDuplicateRatioThresh:    getEnvAsFloat64("CLONE_DUPLICATE_RATIO_THRESHOLD", 0.05),
		CloneDistanceMinBlocks:       getEnvAsInt("CLONE_DISTANCE_MIN_BLOCKS", 2),
		CompressionVarianceThreshold: getEnvAsFloat64("COMPRESSION_VARIANCE_THRESHOLD", 1000.0),
		NoiseRatioMax:                getEnvAsFloat64("NOISE_RATIO_MAX", 3.0),
		EdgeConsistencyDiff:          getEnvAsFloat64("EDGE_CONSISTENCY_DIFF", 20),
		ResamplingFFTPeakRatio:       getEnvAsFloat64("RESAMPLING_FFT_PEAK_RATIO", 8.0),
		ColorCorrLow:                 getEnvAsFloat64("COLOR_CORR_LOW", 0.85),
		MedianFilterThreshold:        getEnvAsFloat64("MEDIAN_FILTER_THRESHOLD", 1.0),
		RiskThresholdLow:             getEnvAsFloat64("RISK_THRESHOLD_LOW", 25),
		RiskThresholdMedium:          getEnvAsFloat64("RISK_THRESHOLD_MEDIUM", 50),
		RiskThresholdHigh:            getEnvAsFloat64("RISK_THRESHOLD_HIGH", 75),
		NormalizationReductionLow:    getEnvAsFloat64("RISK_NORMALIZATION_REDUCTION_LOW", 0.4),
		NormalizationReductionMedium: getEnvAsFloat64("RISK_NORMALIZATION_REDUCTION_MEDIUM", 0.5),
		NormalizationReductionHigh:   getEnvAsFloat64("RISK_NORMALIZATION_REDUCTION_HIGH", 0.65),
		MaxFileSize:                  getEnvAsInt64("MAX_IMAGE_FILE_SIZE", 10*1024*1024),
	}

	return cfg, nil
}

// Validate checks that the threshold snapshot is internally consistent.
// Returns an error describing everything that's wrong at once.
func (c *ForensicConfig) Validate() error {
	var errs []string

	if c.ELAAnomalyThreshold <= 0 || c.ELAAnomalyThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("invalid ELA_ANOMALY_THRESHOLD: %v (must be in (0,1))", c.ELAAnomalyThreshold))
	}
	if c.CloneRegionSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid CLONE_REGION_SIZE: %d (must be >= 1)", c.CloneRegionSize))
	}
	if c.CloneDuplicateRatioThresh < 0 || c.CloneDuplicateRatioThresh > 1 {
		errs = append(errs, fmt.Sprintf("invalid CLONE_DUPLICATE_RATIO_THRESHOLD: %v (must be in [0,1])", c.CloneDuplicateRatioThresh))
	}
	if !(c.RiskThresholdLow < c.RiskThresholdMedium && c.RiskThresholdMedium < c.RiskThresholdHigh) {
		errs = append(errs, fmt.Sprintf("risk thresholds must be strictly increasing: low=%v medium=%v high=%v",
			c.RiskThresholdLow, c.RiskThresholdMedium, c.RiskThresholdHigh))
	}
	for name, v := range map[string]float64{
		"RISK_NORMALIZATION_REDUCTION_LOW":    c.NormalizationReductionLow,
		"RISK_NORMALIZATION_REDUCTION_MEDIUM": c.NormalizationReductionMedium,
		"RISK_NORMALIZATION_REDUCTION_HIGH":   c.NormalizationReductionHigh,
	} {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("invalid %s: %v (must be in (0,1])", name, v))
		}
	}
	if c.MaxFileSize < 1024 {
		errs = append(errs, fmt.Sprintf("MAX_IMAGE_FILE_SIZE too small: %d (minimum 1024)", c.MaxFileSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
