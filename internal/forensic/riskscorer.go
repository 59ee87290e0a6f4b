package forensic

import (
	"strings"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/validation"
)

// componentWeights mirrors the risk scorer's fixed component weighting:
// image forensics carries the most weight since it's the hardest signal
// to fabricate convincingly.
var componentWeights = map[string]float64{
	"format":    0.15,
	"structure": 0.25,
	"content":   0.20,
	"image":     0.40,
}

// realTamperingKeywords are the real_tampering_keywords from
// original_source: any forensic finding description containing one of
// these (case-insensitively) is treated as genuine tampering evidence
// that compression normalization must never suppress.
var realTamperingKeywords = []string{
	"CLONE", "CLONING", "DUPLICATE", "DUPLICATED",
	"RESAMPLING", "RESAMPLE",
	"MEDIAN_FILTER", "MEDIAN FILTER", "SMOOTHING",
	"COLOR_CORRELATION", "COLOR CORRELATION",
	"EDGE_CONSISTENCY", "EDGE INCONSISTENCY",
}

// RiskScore is the final weighted output of the risk scoring engine.
type RiskScore struct {
	OverallScore        float64            `json:"overall_score"`
	RiskLevel           string             `json:"risk_level"`
	Confidence          float64            `json:"confidence"`
	ComponentScores     map[string]float64 `json:"component_scores"`
	ContributingFactors []validation.Factor `json:"contributing_factors"`
	Recommendations     []string           `json:"recommendations"`
}

// RiskScorer combines format/structure/content/image validation results
// into a single weighted risk score, with compression-aware normalization
// of the image-forensics component.
type RiskScorer struct {
	cfg *config.ForensicConfig
}

// NewRiskScorer constructs a RiskScorer bound to cfg.
func NewRiskScorer(cfg *config.ForensicConfig) *RiskScorer {
	return &RiskScorer{cfg: cfg}
}

// CalculateRiskScore aggregates whichever of the four validation inputs
// are present (nil inputs are skipped) into a weighted RiskScore.
func (s *RiskScorer) CalculateRiskScore(
	format *validation.FormatValidationResult,
	structure *validation.StructureValidationResult,
	content *validation.ContentValidationResult,
	image *validation.ImageAnalysisResult,
) RiskScore {
	componentScores := map[string]float64{}
	var factors []validation.Factor
	var confidences []float64
	weightedSum := 0.0

	if format != nil {
		score, confidence, fs := scoreFormatValidation(*format)
		componentScores["format"] = score
		factors = append(factors, fs...)
		confidences = append(confidences, confidence)
		weightedSum += score * componentWeights["format"]
	}
	if structure != nil {
		score, confidence, fs := scoreStructureValidation(*structure)
		componentScores["structure"] = score
		factors = append(factors, fs...)
		confidences = append(confidences, confidence)
		weightedSum += score * componentWeights["structure"]
	}
	if content != nil {
		score, confidence, fs := scoreContentValidation(*content)
		componentScores["content"] = score
		factors = append(factors, fs...)
		confidences = append(confidences, confidence)
		weightedSum += score * componentWeights["content"]
	}

	var imageScore float64
	if image != nil {
		score, confidence, fs := scoreImageAnalysis(*image)
		imageScore = score
		componentScores["image"] = score
		factors = append(factors, fs...)
		confidences = append(confidences, confidence)
		weightedSum += score * componentWeights["image"]
	}

	overall := weightedSum

	if image != nil && len(image.CompressionProfiles) > 0 {
		normalized, factor := s.applyCompressionNormalization(imageScore, image.CompressionProfiles, image.ForensicFindings, image.ELAVariance)
		if normalized != imageScore {
			delta := componentWeights["image"] * (imageScore - normalized)
			overall -= delta
			factors = append(factors, factor)
			componentScores["image"] = normalized
		}
	}

	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	confidence := 0.5
	if len(confidences) > 0 {
		confidence = meanOf(confidences)
	}

	return RiskScore{
		OverallScore:        round3(overall),
		RiskLevel:           s.categorizeRiskLevel(overall),
		Confidence:          round3(confidence),
		ComponentScores:     componentScores,
		ContributingFactors: factors,
		Recommendations:     s.generateRecommendations(overall, factors, image),
	}
}

func (s *RiskScorer) categorizeRiskLevel(score float64) string {
	switch {
	case score < s.cfg.RiskThresholdLow:
		return "LOW"
	case score < s.cfg.RiskThresholdMedium:
		return "MEDIUM"
	case score < s.cfg.RiskThresholdHigh:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// applyCompressionNormalization reduces the image-forensics score when
// the compression profiler matched a known social-media re-encode and
// no forensic finding names a real-tampering technique (clone, resample,
// median-filter, color/edge inconsistency) - routine re-compression by a
// messaging app shouldn't score the same as deliberate tampering.
func (s *RiskScorer) applyCompressionNormalization(
	score float64,
	profiles []validation.CompressionProfileRef,
	findings []validation.Issue,
	elaVariance *float64,
) (float64, validation.Factor) {
	if !IsSocialMediaCompressedRefs(profiles) {
		return score, validation.Factor{}
	}
	for _, f := range findings {
		upper := strings.ToUpper(f.Description)
		for _, kw := range realTamperingKeywords {
			if strings.Contains(upper, kw) {
				return score, validation.Factor{}
			}
		}
	}

	var factor float64
	var reason string
	switch {
	case elaVariance == nil:
		factor, reason = s.cfg.NormalizationReductionMedium, "medium compression consistent with routine platform re-encoding"
	case *elaVariance < 100:
		factor, reason = s.cfg.NormalizationReductionLow, "heavy compression consistent with routine platform re-encoding"
	case *elaVariance < 200:
		factor, reason = s.cfg.NormalizationReductionMedium, "moderate compression consistent with routine platform re-encoding"
	default:
		factor, reason = s.cfg.NormalizationReductionHigh, "light compression consistent with routine platform re-encoding"
	}

	normalized := score * factor
	impact := score - normalized

	return round3(normalized), validation.Factor{
		Component: "image",
		Factor:    "compression_normalization",
		Severity:  "low",
		Impact:    round3(-impact),
		Details: map[string]any{
			"reason":            reason,
			"reduction_factor":  factor,
			"original_score":    round3(score),
			"normalized_score":  round3(normalized),
		},
	}
}

func scoreFormatValidation(r validation.FormatValidationResult) (score, confidence float64, factors []validation.Factor) {
	for _, issue := range r.Issues {
		score += issue.Severity.Score() * 0.1
		factors = append(factors, issueFactor("format", issue))
	}
	if r.HasSpellingErrors && r.SpellingErrorCount > 10 {
		score += 20
		factors = append(factors, validation.Factor{Component: "format", Factor: "excessive_spelling_errors", Severity: "medium", Impact: 20})
	}
	if r.HasIndentationIssues {
		score += 10
		factors = append(factors, validation.Factor{Component: "format", Factor: "indentation_issues", Severity: "low", Impact: 10})
	}
	return clamp100(score), 0.9, factors
}

func scoreStructureValidation(r validation.StructureValidationResult) (score, confidence float64, factors []validation.Factor) {
	templatePenalty := (1 - r.TemplateMatchScore) * 50
	score += templatePenalty
	if r.TemplateMatchScore < 0.7 {
		factors = append(factors, validation.Factor{Component: "structure", Factor: "poor_template_match", Severity: "high", Impact: templatePenalty})
	}
	score += float64(len(r.MissingSections)) * 15
	if !r.IsComplete {
		score += 40
		factors = append(factors, validation.Factor{Component: "structure", Factor: "incomplete_document", Severity: "critical", Impact: 40})
	}
	for _, issue := range r.Issues {
		score += issue.Severity.Score() * 0.15
		factors = append(factors, issueFactor("structure", issue))
	}
	return clamp100(score), 0.85, factors
}

func scoreContentValidation(r validation.ContentValidationResult) (score, confidence float64, factors []validation.Factor) {
	score += (1 - r.QualityScore) * 30
	if r.QualityScore < 0.5 {
		factors = append(factors, validation.Factor{Component: "content", Factor: "low_quality_content", Severity: "medium", Impact: (1 - r.QualityScore) * 30})
	}
	if r.HasSensitiveData {
		score += 25
		factors = append(factors, validation.Factor{Component: "content", Factor: "pii_detected", Severity: "high", Impact: 25})
	}
	if r.ReadabilityScore < 30 {
		score += 15
		factors = append(factors, validation.Factor{Component: "content", Factor: "low_readability", Severity: "low", Impact: 15})
	}
	if r.WordCount < 50 {
		score += 20
		factors = append(factors, validation.Factor{Component: "content", Factor: "insufficient_content", Severity: "medium", Impact: 20})
	}
	for _, issue := range r.Issues {
		score += issue.Severity.Score() * 0.12
		factors = append(factors, issueFactor("content", issue))
	}
	return clamp100(score), 0.8, factors
}

func scoreImageAnalysis(r validation.ImageAnalysisResult) (score, confidence float64, factors []validation.Factor) {
	if r.IsAIGenerated {
		score += r.AIDetectionConfidence * 80
		factors = append(factors, validation.Factor{Component: "image", Factor: "ai_generated", Severity: "critical", Impact: r.AIDetectionConfidence * 80})
	}
	if r.IsTampered {
		score += r.TamperingConfidence * 90
		factors = append(factors, validation.Factor{Component: "image", Factor: "tampering_detected", Severity: "critical", Impact: r.TamperingConfidence * 90})
	}
	if r.ReverseImageMatches > 5 {
		impact := float64(r.ReverseImageMatches) * 5
		if impact > 50 {
			impact = 50
		}
		score += impact
		factors = append(factors, validation.Factor{Component: "image", Factor: "reverse_image_matches", Severity: "medium", Impact: impact})
	}
	for _, issue := range r.MetadataIssues {
		score += issue.Severity.Score() * 0.2
		factors = append(factors, issueFactor("image", issue))
	}
	for _, issue := range r.ForensicFindings {
		score += issue.Severity.Score() * 0.25
		factors = append(factors, issueFactor("image", issue))
	}
	if !r.IsAuthentic {
		score += 30
	}

	conf := 0.7
	if r.AIDetectionConfidence > 0 || r.TamperingConfidence > 0 {
		conf = 0.9
	}
	return clamp100(score), conf, factors
}

func (s *RiskScorer) generateRecommendations(overall float64, factors []validation.Factor, image *validation.ImageAnalysisResult) []string {
	var recs []string

	for _, f := range factors {
		if f.Factor == "compression_normalization" && f.Impact < 0 {
			recs = append(recs, "risk score reduced: "+f.Details["reason"].(string))
			break
		}
	}

	switch {
	case overall > 75:
		recs = append(recs, "REJECT: escalate for manual review")
	case overall > 50:
		recs = append(recs, "HOLD: request supporting documentation")
	case overall > 25:
		recs = append(recs, "REVIEW: flag for analyst review")
	default:
		recs = append(recs, "ACCEPT: proceed with standard processing")
	}

	if image != nil {
		if image.IsAIGenerated {
			recs = append(recs, "request original document or high-resolution scan")
		}
		if image.IsTampered {
			recs = append(recs, "open a fraud investigation and compare against prior submissions")
		}
		if image.ReverseImageMatches > 5 {
			recs = append(recs, "image matches stock or previously submitted material")
		}
	}

	for _, f := range factors {
		switch f.Factor {
		case "incomplete_document":
			recs = append(recs, "request a complete version of the document")
		case "pii_detected":
			recs = append(recs, "route to compliance for PII handling review")
		}
	}

	if len(recs) > 10 {
		recs = recs[:10]
	}
	return recs
}

func issueFactor(component string, issue validation.Issue) validation.Factor {
	return validation.Factor{
		Component: component,
		Factor:    issue.Category,
		Severity:  issue.Severity.String(),
		Impact:    issue.Severity.Score(),
		Details:   issue.Details,
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// IsSocialMediaCompressedRefs is the validation.CompressionProfileRef
// analogue of IsSocialMediaCompressed, used at the risk-scorer boundary
// where only the flattened ref type is available.
func IsSocialMediaCompressedRefs(refs []validation.CompressionProfileRef) bool {
	for _, r := range refs {
		if socialMediaProfiles[r.Profile] {
			return true
		}
	}
	return false
}
