// Package forensic implements the image forensic pipeline and risk-scoring
// engine: metadata analysis, AI-generation detection, tampering detection
// (ELA, clone, quantization, resampling, median-filter, color-correlation,
// noise-ratio, edge-consistency), compression profiling, and the weighted
// risk scorer with compression normalization.
package forensic

import "github.com/docforensics/core/internal/validation"

// MetadataAnalysisResult is produced by the Metadata Analyzer.
type MetadataAnalysisResult struct {
	HasEXIF                     bool              `json:"has_exif"`
	HasEditingSoftwareSigns      bool              `json:"has_editing_software_signs"`
	HasTimestampInconsistencies  bool              `json:"has_timestamp_inconsistencies"`
	HasCameraInfo                bool              `json:"has_camera_info"`
	EXIFData                     map[string]string `json:"exif_data,omitempty"`
	Issues                       []validation.Issue `json:"issues"`
}

// AIDetectionResult is produced by the AI-Generation Detector.
type AIDetectionResult struct {
	IsAIGenerated        bool     `json:"is_ai_generated"`
	Confidence           float64  `json:"confidence"`
	NoiseLevel           float64  `json:"noise_level"`
	ColorEntropy         float64  `json:"color_entropy"`
	EdgeConsistencyScore float64  `json:"edge_consistency_score"`
	HasAIArtifacts       bool     `json:"has_ai_artifacts"`
	DetectionFactors     []string `json:"detection_factors"`
}

// TamperingDetectionResult is produced by the Tampering Detector.
//
// Invariant: if ELAPerformed is false, ELAAnomalyRatio and ELAVariance are
// both nil. If true, both are non-nil, except an identical-under-
// recompression image may still report a zero-valued ELAAnomalyRatio.
type TamperingDetectionResult struct {
	IsTampered              bool               `json:"is_tampered"`
	Confidence              float64            `json:"confidence"`
	ELAPerformed            bool               `json:"ela_performed"`
	ELAAnomalyRatio         *float64           `json:"ela_anomaly_ratio"`
	ELAVariance             *float64           `json:"ela_variance"`
	HasClonedRegions        bool               `json:"has_cloned_regions"`
	CompressionConsistent   bool               `json:"compression_consistent"`
	Issues                  []validation.Issue `json:"issues"`
}

// Confidence level strings used by CompressionProfile.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// CompressionProfile is one matching entry from the Compression Profiler.
type CompressionProfile struct {
	Profile      string     `json:"profile"`
	Message      string     `json:"message"`
	Confidence   string     `json:"confidence"`
	SizeMatch    bool       `json:"size_match"`
	ELARange     [2]float64 `json:"ela_range"`
	TypicalSize  [2]int     `json:"typical_size"`
}

// ForensicAnalysisResult aggregates the four per-stage results produced by
// the Forensic Orchestrator.
type ForensicAnalysisResult struct {
	IsAuthentic           bool                      `json:"is_authentic"`
	ReverseImageMatches   int                        `json:"reverse_image_matches"`
	MetadataAnalysis      MetadataAnalysisResult     `json:"metadata_analysis"`
	AIDetection           AIDetectionResult          `json:"ai_detection"`
	TamperingDetection    TamperingDetectionResult   `json:"tampering_detection"`
	CompressionProfiles   []CompressionProfile       `json:"compression_profiles"`
	AllIssues             []validation.Issue         `json:"all_issues"`
	AuthenticityScore     float64                    `json:"authenticity_score"`
}

// ToRiskInput flattens a ForensicAnalysisResult into the
// validation.ImageAnalysisResult the risk scorer consumes.
func ToRiskInput(r ForensicAnalysisResult) validation.ImageAnalysisResult {
	refs := make([]validation.CompressionProfileRef, 0, len(r.CompressionProfiles))
	for _, p := range r.CompressionProfiles {
		refs = append(refs, validation.CompressionProfileRef{Profile: p.Profile, Message: p.Message})
	}

	return validation.ImageAnalysisResult{
		IsAIGenerated:         r.AIDetection.IsAIGenerated,
		AIDetectionConfidence: r.AIDetection.Confidence,
		IsTampered:            r.TamperingDetection.IsTampered,
		TamperingConfidence:   r.TamperingDetection.Confidence,
		ReverseImageMatches:   r.ReverseImageMatches,
		MetadataIssues:        r.MetadataAnalysis.Issues,
		ForensicFindings:      r.TamperingDetection.Issues,
		IsAuthentic:           r.IsAuthentic,
		ELAVariance:           r.TamperingDetection.ELAVariance,
		CompressionProfiles:   refs,
	}
}
