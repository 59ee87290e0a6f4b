package forensic

import (
	"context"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/validation"
)

// Pipeline runs the full forensic analysis: metadata scan, AI-generation
// detection, tampering detection, and compression profiling, then
// aggregates them into a single authenticity verdict.
type Pipeline struct {
	cfg       *config.ForensicConfig
	metadata  *MetadataAnalyzer
	ai        *AIDetector
	tampering *TamperingDetector
	profiler  *CompressionProfiler
}

// NewPipeline constructs a Pipeline bound to cfg.
func NewPipeline(cfg *config.ForensicConfig) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		metadata:  NewMetadataAnalyzer(),
		ai:        NewAIDetector(),
		tampering: NewTamperingDetector(cfg),
		profiler:  NewCompressionProfiler(),
	}
}

// Analyze runs every forensic stage over the given image bytes and
// returns the aggregated ForensicAnalysisResult. Metadata and AI
// detection work directly off the raw bytes; tampering detection decodes
// the image once and reuses the decoded raster for every sub-analysis.
func (p *Pipeline) Analyze(ctx context.Context, data []byte) (ForensicAnalysisResult, error) {
	format := detectFormat(data)

	metadataResult := p.metadata.Analyze(data)
	aiResult := p.ai.Analyze(data, format)
	tamperingResult, err := p.tampering.Detect(ctx, data, format)
	if err != nil {
		return ForensicAnalysisResult{}, err
	}

	var profiles []CompressionProfile
	if tamperingResult.ELAVariance != nil {
		if w, h, ok := dimensions(data, format); ok {
			profiles = p.profiler.DetectProfile(*tamperingResult.ELAVariance, w, h)
		}
	}

	allIssues := make([]validation.Issue, 0, len(metadataResult.Issues)+len(tamperingResult.Issues))
	allIssues = append(allIssues, metadataResult.Issues...)
	allIssues = append(allIssues, tamperingResult.Issues...)

	isAuthentic := !aiResult.IsAIGenerated && !tamperingResult.IsTampered

	result := ForensicAnalysisResult{
		IsAuthentic:         isAuthentic,
		ReverseImageMatches: 0,
		MetadataAnalysis:    metadataResult,
		AIDetection:         aiResult,
		TamperingDetection:  tamperingResult,
		CompressionProfiles: profiles,
		AllIssues:           allIssues,
	}
	result.AuthenticityScore = authenticityScore(result)

	return result, nil
}

// authenticityScore collapses the pipeline's findings into a single
// 0-100 confidence-in-authenticity figure: it starts at 100 and is
// pulled down by AI-generation confidence, tampering confidence, and the
// severity of every recorded issue.
func authenticityScore(r ForensicAnalysisResult) float64 {
	score := 100.0

	if r.AIDetection.IsAIGenerated {
		score -= r.AIDetection.Confidence * 80
	}
	if r.TamperingDetection.IsTampered {
		score -= r.TamperingDetection.Confidence * 90
	}
	for _, issue := range r.AllIssues {
		score -= issue.Severity.Score() * 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return round3(score)
}
