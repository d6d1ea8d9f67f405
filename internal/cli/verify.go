package cli

import (
	"context"
	"fmt"
	"strings"

	"skillvet/internal/common"
	"skillvet/internal/store"
	"skillvet/internal/types"
	"skillvet/internal/verify"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [answers-file]",
	Short: "Run a skill verification session from the command line",
	Long: `Run an adaptive verification session for one skill, answering each
question with the next line from the answers file, and print the resulting
interview summary.

Questions adapt to performance: strong answers promote to harder bands,
weak answers demote to easier ones. The session ends when the target
question count is reached, the answers run out, or the pool is exhausted.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if verifyConfig.OutputFormat == "" {
			verifyConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(verifyConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runVerify,
}

var (
	verifyConfig    common.CommandConfig
	verifySkill     string
	verifyQuestions int
	verifyBand      string
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	verifyCmd.Flags().StringVar(&verifyConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	verifyCmd.Flags().StringVarP(&verifySkill, "skill", "s", "", "Skill to verify (required)")
	verifyCmd.Flags().IntVarP(&verifyQuestions, "questions", "n", 0, "Target question count (default from config)")
	verifyCmd.Flags().StringVar(&verifyBand, "band", "", "Starting difficulty band (default from config)")
	_ = verifyCmd.MarkFlagRequired("skill")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	bank, _, bankStop, err := buildQuestionBank(cfg, logger)
	if err != nil {
		return err
	}
	defer bankStop()

	// The recency ledger lives in the durable store so repeated CLI runs
	// still avoid recently served questions.
	durable, err := openDurableStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := durable.Close(); err != nil {
			logger.LogError(err, "Failed to close durable store")
		}
	}()

	targetCount := verifyQuestions
	if targetCount <= 0 {
		targetCount = cfg.Verify.DefaultQuestionCount
	}
	startBand := verifyBand
	if startBand == "" {
		startBand = cfg.Verify.StartBand
	}

	createInput := func(contents []string) ([]string, error) {
		if len(contents) != 1 {
			return nil, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		var answers []string
		for _, line := range strings.Split(contents[0], "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				answers = append(answers, trimmed)
			}
		}
		if len(answers) == 0 {
			return nil, fmt.Errorf("answers file contains no answers")
		}
		return answers, nil
	}

	logDetails := func(answers []string, cmdCfg common.CommandConfig) {
		logger.Info("Starting verification session",
			"skill", verifySkill,
			"answers", len(answers),
			"target_count", targetCount,
			"start_band", startBand,
			"output_format", cmdCfg.OutputFormat)
	}

	seed := cfg.Verify.RandomSeed
	sessionCfg := verify.SessionConfig{
		Skill:        verifySkill,
		StartBand:    verify.MapLevel(startBand),
		TargetCount:  targetCount,
		Questions:    bank,
		Selector:     verify.NewSelector(verify.NewRand(seed)),
		Recency:      verify.NewRecencyTracker(durable),
		SessionStore: store.NewMemoryStore(),
		Logger:       logger,
	}

	operation := func(ctx context.Context, answers []string) (types.InterviewSummary, error) {
		return driveSession(ctx, sessionCfg, answers)
	}

	err = common.RunFileCommand(
		cmd.Context(),
		logger,
		verifyConfig,
		args,
		createInput,
		operation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to run verification session: %w", err)
	}
	logger.Info("Verification session completed successfully")
	return nil
}

// driveSession answers each question with the next prepared answer until the
// session finishes or the answers run out.
func driveSession(ctx context.Context, cfg verify.SessionConfig, answers []string) (types.InterviewSummary, error) {
	session, err := verify.StartSession(ctx, cfg)
	if err != nil {
		return types.InterviewSummary{}, err
	}

	for _, answer := range answers {
		if session.State().Terminal() {
			break
		}
		if err := session.SubmitAnswer(ctx, answer); err != nil {
			return types.InterviewSummary{}, err
		}
	}
	return session.Summary(), nil
}
