package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/forensic"
	"github.com/docforensics/core/pkg/logger"
)

// analyzeRunResult is the JSON-mode payload for `docforensics analyze`: the
// forensic result plus the run ID it was logged under.
type analyzeRunResult struct {
	RunID  string                          `json:"run_id"`
	Result forensic.ForensicAnalysisResult `json:"result"`
}

func newAnalyzeCommand(logLevel *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <image-path>",
		Short: "Run the forensic pipeline over an image and print its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			log := logger.New(*logLevel).With("run_id", runID, "command", "analyze")

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

			log.Info("analyzing image", "path", args[0], "bytes", len(data))

			pipeline := forensic.NewPipeline(cfg)
			result, err := pipeline.Analyze(cmd.Context(), data)
			if err != nil {
				log.Error("analysis failed", "error", err)
				return fmt.Errorf("analyze: %w", err)
			}

			log.Info("analysis complete",
				"is_authentic", result.IsAuthentic,
				"authenticity_score", result.AuthenticityScore,
				"is_tampered", result.TamperingDetection.IsTampered,
				"is_ai_generated", result.AIDetection.IsAIGenerated,
			)

			if *jsonOutput {
				return writeJSON(cmd, analyzeRunResult{RunID: runID, Result: result})
			}

			printAnalyzeTable(cmd, runID, result)
			return nil
		},
	}
}

func readImageFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%s is %d bytes, exceeds the %d byte limit", path, info.Size(), maxSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printAnalyzeTable(cmd *cobra.Command, runID string, result forensic.ForensicAnalysisResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s\n", runID)
	fmt.Fprintf(out, "Authentic: %v    Score: %.1f/100\n\n", result.IsAuthentic, result.AuthenticityScore)

	summaryRows := [][]string{
		{"AI generated", fmt.Sprintf("%v", result.AIDetection.IsAIGenerated), fmt.Sprintf("%.3f", result.AIDetection.Confidence)},
		{"Tampered", fmt.Sprintf("%v", result.TamperingDetection.IsTampered), fmt.Sprintf("%.3f", result.TamperingDetection.Confidence)},
		{"Cloned regions", fmt.Sprintf("%v", result.TamperingDetection.HasClonedRegions), "-"},
		{"Compression consistent", fmt.Sprintf("%v", result.TamperingDetection.CompressionConsistent), "-"},
		{"Has EXIF", fmt.Sprintf("%v", result.MetadataAnalysis.HasEXIF), "-"},
	}
	fmt.Fprint(out, renderTable(
		[]string{"Signal", "Value", "Confidence"},
		summaryRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))

	if len(result.CompressionProfiles) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Compression Profiles")
		rows := make([][]string, 0, len(result.CompressionProfiles))
		for _, p := range result.CompressionProfiles {
			rows = append(rows, []string{p.Profile, p.Confidence, fmt.Sprintf("%v", p.SizeMatch), p.Message})
		}
		fmt.Fprint(out, renderTable(
			[]string{"Profile", "Confidence", "Size Match", "Message"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		))
	}

	if len(result.AllIssues) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Findings")
		rows := make([][]string, 0, len(result.AllIssues))
		for _, issue := range result.AllIssues {
			rows = append(rows, []string{issue.Category, issue.Severity.String(), issue.Description})
		}
		fmt.Fprint(out, renderTable(
			[]string{"Category", "Severity", "Description"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	} else {
		fmt.Fprintln(out, "\nNo findings recorded")
	}
}
