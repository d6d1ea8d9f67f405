package cli

import (
	"fmt"
	"path/filepath"

	"skillvet/internal/common"
	"skillvet/internal/errors"
	"skillvet/internal/services"
	"skillvet/internal/utils"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume for scoring, skills, and vulnerabilities",
	Long: `Analyze a resume file through the resume analysis service and print the
resulting report.

The report includes:
- Overall and per-category scoring
- Detected skills
- Vulnerability findings (unverifiable or inflated claims)`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	outputHandler := common.NewOutputHandler(logger)

	if !utils.IsResumeFile(args[0]) {
		return errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Unsupported resume file type: %s", filepath.Ext(args[0])), nil)
	}

	// Resumes are uploaded as-is, so read raw bytes rather than text.
	content, err := fileProcessor.ReadFileBytes(args[0])
	if err != nil {
		return err
	}
	fileName := filepath.Base(args[0])

	logger.Info("Starting resume analysis",
		"file", fileName,
		"bytes", len(content),
		"output_format", analyzeConfig.OutputFormat)

	analysis := services.NewAnalysisClient(&cfg.Services.Analysis, logger)
	report, err := analysis.Analyze(cmd.Context(), fileName, content)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	if err := outputHandler.HandleOutput(report, analyzeConfig); err != nil {
		return err
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
