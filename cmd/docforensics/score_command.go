package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/forensic"
	"github.com/docforensics/core/pkg/logger"
)

// scoreRunResult is the JSON-mode payload for `docforensics score`.
type scoreRunResult struct {
	RunID string              `json:"run_id"`
	Score forensic.RiskScore  `json:"risk_score"`
}

func newScoreCommand(logLevel *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "score <image-path>",
		Short: "Run the forensic pipeline and compute a weighted risk score",
		Long: "Runs the forensic pipeline over an image and feeds its findings into the\n" +
			"weighted risk scorer. Format, structure, and content validation inputs are\n" +
			"an external collaborator's responsibility and are not supplied here, so the\n" +
			"score reflects the image component alone.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			log := logger.New(*logLevel).With("run_id", runID, "command", "score")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			data, err := readImageFile(args[0], cfg.MaxFileSize)
			if err != nil {
				return err
			}

			log.Info("analyzing image for risk score", "path", args[0], "bytes", len(data))

			pipeline := forensic.NewPipeline(cfg)
			result, err := pipeline.Analyze(cmd.Context(), data)
			if err != nil {
				log.Error("analysis failed", "error", err)
				return fmt.Errorf("analyze: %w", err)
			}

			riskInput := forensic.ToRiskInput(result)
			scorer := forensic.NewRiskScorer(cfg)
			score := scorer.CalculateRiskScore(nil, nil, nil, &riskInput)

			log.Info("risk score computed", "overall_score", score.OverallScore, "risk_level", score.RiskLevel)

			if *jsonOutput {
				return writeJSON(cmd, scoreRunResult{RunID: runID, Score: score})
			}

			printScoreTable(cmd, runID, score)
			return nil
		},
	}
}

func printScoreTable(cmd *cobra.Command, runID string, score forensic.RiskScore) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s\n", runID)
	fmt.Fprintf(out, "Overall: %.1f    Risk level: %s    Confidence: %.2f\n\n",
		score.OverallScore, score.RiskLevel, score.Confidence)

	if len(score.ComponentScores) > 0 {
		rows := make([][]string, 0, len(score.ComponentScores))
		for _, component := range []string{"format", "structure", "content", "image"} {
			if v, ok := score.ComponentScores[component]; ok {
				rows = append(rows, []string{component, fmt.Sprintf("%.1f", v)})
			}
		}
		fmt.Fprint(out, renderTable([]string{"Component", "Score"}, rows, []columnAlignment{alignLeft, alignRight}))
	}

	if len(score.ContributingFactors) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Contributing Factors")
		rows := make([][]string, 0, len(score.ContributingFactors))
		for _, f := range score.ContributingFactors {
			rows = append(rows, []string{f.Component, f.Factor, f.Severity, fmt.Sprintf("%.1f", f.Impact)})
		}
		fmt.Fprint(out, renderTable(
			[]string{"Component", "Factor", "Severity", "Impact"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
	}

	if len(score.Recommendations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recommendations")
		for _, rec := range score.Recommendations {
			fmt.Fprintf(out, "  - %s\n", rec)
		}
	}
}
