package forensic

import (
	"strings"
	"testing"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/validation"
)

func testConfig(t *testing.T) *config.ForensicConfig {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	return cfg
}

func TestCalculateRiskScoreAllClean(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))

	format := validation.FormatValidationResult{}
	structure := validation.StructureValidationResult{IsComplete: true, TemplateMatchScore: 1.0}
	content := validation.ContentValidationResult{QualityScore: 1.0, ReadabilityScore: 80, WordCount: 500}
	image := validation.ImageAnalysisResult{IsAuthentic: true}

	result := scorer.CalculateRiskScore(&format, &structure, &content, &image)

	if result.RiskLevel != "LOW" {
		t.Errorf("expected LOW risk for an all-clean submission, got %s (score %v)", result.RiskLevel, result.OverallScore)
	}
	if result.OverallScore < 0 || result.OverallScore > 100 {
		t.Errorf("overall score out of bounds: %v", result.OverallScore)
	}
}

func TestCalculateRiskScoreAllProblematic(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))

	format := validation.FormatValidationResult{
		HasSpellingErrors: true, SpellingErrorCount: 25, HasIndentationIssues: true,
		Issues: []validation.Issue{validation.NewIssue("format", validation.SeverityHigh, "malformed header")},
	}
	structure := validation.StructureValidationResult{
		IsComplete: false, TemplateMatchScore: 0.2, MissingSections: []string{"signature", "date"},
	}
	content := validation.ContentValidationResult{
		QualityScore: 0.1, HasSensitiveData: true, ReadabilityScore: 10, WordCount: 5,
	}
	ela := 50.0
	image := validation.ImageAnalysisResult{
		IsAIGenerated: true, AIDetectionConfidence: 0.9,
		IsTampered: true, TamperingConfidence: 0.9,
		ReverseImageMatches: 20,
		IsAuthentic:         false,
		ELAVariance:         &ela,
	}

	result := scorer.CalculateRiskScore(&format, &structure, &content, &image)

	if result.RiskLevel != "CRITICAL" {
		t.Errorf("expected CRITICAL risk for an all-problematic submission, got %s (score %v)", result.RiskLevel, result.OverallScore)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected at least one recommendation")
	}
	if len(result.Recommendations) > 10 {
		t.Errorf("recommendations should be capped at 10, got %d", len(result.Recommendations))
	}
}

func TestCompressionNormalizationSuppressedByRealTampering(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))
	ela := 50.0

	image := validation.ImageAnalysisResult{
		IsTampered: true, TamperingConfidence: 0.8,
		CompressionProfiles: []validation.CompressionProfileRef{{Profile: "whatsapp_low", Message: "likely whatsapp_low compression signature"}},
		ForensicFindings: []validation.Issue{
			validation.NewIssue("tampering", validation.SeverityHigh, "CLONE: duplicated pixel blocks detected, possible copy-move forgery"),
		},
		ELAVariance: &ela,
	}

	result := scorer.CalculateRiskScore(nil, nil, nil, &image)

	for _, f := range result.ContributingFactors {
		if f.Factor == "compression_normalization" {
			t.Error("normalization should not apply when a real-tampering keyword is present in forensic findings")
		}
	}
}

func TestCompressionNormalizationAppliesForRoutineCompression(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))
	ela := 50.0

	image := validation.ImageAnalysisResult{
		IsTampered: true, TamperingConfidence: 0.6,
		CompressionProfiles: []validation.CompressionProfileRef{{Profile: "whatsapp_low", Message: "likely whatsapp_low compression signature"}},
		ForensicFindings: []validation.Issue{
			validation.NewIssue("tampering", validation.SeverityMedium, "compression variance is inconsistent across image quadrants"),
		},
		ELAVariance: &ela,
	}

	result := scorer.CalculateRiskScore(nil, nil, nil, &image)

	found := false
	for _, f := range result.ContributingFactors {
		if f.Factor == "compression_normalization" {
			found = true
			if f.Impact >= 0 {
				t.Errorf("expected a negative impact (score reduction), got %v", f.Impact)
			}
		}
	}
	if !found {
		t.Error("expected a compression_normalization factor for a social-media profile with no real-tampering finding")
	}
}

func TestCalculateRiskScoreAIGeneratedRecommendsOriginalDocument(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))

	image := validation.ImageAnalysisResult{
		IsAIGenerated: true, AIDetectionConfidence: 0.9,
	}

	result := scorer.CalculateRiskScore(nil, nil, nil, &image)

	found := false
	for _, rec := range result.Recommendations {
		if strings.Contains(strings.ToLower(rec), "original document") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected a recommendation containing %q for an AI-generated image, got %v", "original document", result.Recommendations)
	}
}

func TestCategorizeRiskLevelMonotonic(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))

	scores := []float64{0, 10, 24, 25, 49, 50, 74, 75, 90, 100}
	levels := map[string]int{"LOW": 0, "MEDIUM": 1, "HIGH": 2, "CRITICAL": 3}

	prevRank := -1
	for _, s := range scores {
		level := scorer.categorizeRiskLevel(s)
		rank, ok := levels[level]
		if !ok {
			t.Fatalf("unknown risk level %q for score %v", level, s)
		}
		if rank < prevRank {
			t.Errorf("risk level regressed at score %v: got %s after a higher-ranked level", s, level)
		}
		prevRank = rank
	}
}

func TestCalculateRiskScoreNoInputsDefaultsConfidence(t *testing.T) {
	scorer := NewRiskScorer(testConfig(t))
	result := scorer.CalculateRiskScore(nil, nil, nil, nil)

	if result.Confidence != 0.5 {
		t.Errorf("expected default confidence of 0.5 with no inputs, got %v", result.Confidence)
	}
	if result.OverallScore != 0 {
		t.Errorf("expected a zero overall score with no inputs, got %v", result.OverallScore)
	}
}
