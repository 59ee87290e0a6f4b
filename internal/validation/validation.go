// Package validation defines the data contracts consumed by the risk
// scorer: the severity enum shared across every component, the issue
// record every analyzer emits, and the four validation-result records
// (format, structure, content, image) the risk scorer accepts.
//
// The format/structure/content validators that populate these records are
// external collaborators (text/structure/content validation, OCR, document
// parsing) and are out of scope here — this package only defines the typed
// shape of what they hand back, the same way the risk scorer only consumes
// an ImageAnalysisResult rather than re-deriving it.
package validation

import "encoding/json"

// Severity is an ordered severity level. Higher values are more severe;
// the numeric value also doubles as the per-issue score contribution used
// by the risk scorer.
type Severity int

const (
	SeverityLow      Severity = 10
	SeverityMedium   Severity = 30
	SeverityHigh     Severity = 60
	SeverityCritical Severity = 100
)

// String returns the lowercase name used in factor/issue JSON output,
// matching the "severity.value" string the risk scorer records.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Score returns the numeric contribution this severity adds to a
// component score (spec.md §3: LOW=10, MEDIUM=30, HIGH=60, CRITICAL=100).
func (s Severity) Score() float64 {
	return float64(s)
}

// Issue is an immutable, append-only finding emitted by any analyzer.
type Issue struct {
	Category    string         `json:"category"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

// NewIssue constructs an Issue with no details.
func NewIssue(category string, severity Severity, description string) Issue {
	return Issue{Category: category, Severity: severity, Description: description}
}

// Factor is one line item in a RiskScore's ContributingFactors list.
type Factor struct {
	Component string         `json:"component"`
	Factor    string         `json:"factor"`
	Severity  string         `json:"severity"`
	Impact    float64        `json:"impact"`
	Details   map[string]any `json:"details,omitempty"`
}

// FormatValidationResult is the opaque record the (external) format
// validator hands back.
type FormatValidationResult struct {
	HasSpellingErrors     bool
	SpellingErrorCount    int
	HasIndentationIssues  bool
	Issues                []Issue
}

// StructureValidationResult is the opaque record the (external) structure
// validator hands back.
type StructureValidationResult struct {
	IsComplete        bool
	TemplateMatchScore float64
	MissingSections    []string
	Issues             []Issue
}

// ContentValidationResult is the opaque record the (external) content
// validator hands back.
type ContentValidationResult struct {
	QualityScore     float64
	HasSensitiveData bool
	ReadabilityScore float64
	WordCount        int
	Issues           []Issue
}

// ImageAnalysisResult is the flattened view of the forensic pipeline's
// output that the risk scorer consumes. It is produced from a
// ForensicAnalysisResult by forensic.ToRiskInput and read by
// forensic.RiskScorer; the scorer's input contract is this one struct, so
// it can be built directly in tests without running the pipeline.
type ImageAnalysisResult struct {
	IsAIGenerated         bool
	AIDetectionConfidence float64
	IsTampered            bool
	TamperingConfidence   float64
	ReverseImageMatches   int
	MetadataIssues        []Issue
	ForensicFindings      []Issue
	IsAuthentic           bool
	ELAVariance           *float64
	CompressionProfiles   []CompressionProfileRef
}

// CompressionProfileRef is the minimal view of a compression profile the
// risk scorer's normalization step needs: the profile name (for the
// social-media-platform set check) and a human-readable message. Defined
// here rather than importing the forensic package to avoid a dependency
// cycle (forensic depends on validation, not the other way around).
type CompressionProfileRef struct {
	Profile string
	Message string
}
