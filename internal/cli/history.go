package cli

import (
	"context"
	"fmt"

	"skillvet/internal/common"
	"skillvet/internal/history"
	"skillvet/internal/store"
	"skillvet/internal/types"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis and verification history",
	Long: `List the attempt history recorded by feedback aggregation, newest last.

Each entry combines a resume analysis with its interview summary into a
blended final score. Use --attempts for the detailed per-question records.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if historyConfig.OutputFormat == "" {
			historyConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Detailed attempts have no text rendering, only JSON.
		if historyAttempts {
			historyConfig.OutputFormat = "json"
		}
		return common.ValidateOutputFormat(historyConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runHistory,
}

var (
	historyConfig   common.CommandConfig
	historyAttempts bool
)

func init() {
	historyCmd.Flags().StringVarP(&historyConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	historyCmd.Flags().StringVar(&historyConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	historyCmd.Flags().BoolVar(&historyAttempts, "attempts", false, "List detailed verification attempts instead of history entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	durable, err := openDurableStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := durable.Close(); err != nil {
			logger.LogError(err, "Failed to close durable store")
		}
	}()

	aggregator := history.NewAggregator(durable, store.NewMemoryStore(), logger)

	if historyAttempts {
		operation := func(ctx context.Context) ([]types.VerificationAttempt, error) {
			return aggregator.Attempts(ctx)
		}
		if err := common.RunCommand(cmd.Context(), logger, historyConfig, operation); err != nil {
			return fmt.Errorf("failed to list verification attempts: %w", err)
		}
		return nil
	}

	operation := func(ctx context.Context) ([]types.HistoryEntry, error) {
		return aggregator.Entries(ctx)
	}
	if err := common.RunCommand(cmd.Context(), logger, historyConfig, operation); err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	return nil
}
