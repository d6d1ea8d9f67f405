package cli

import (
	"fmt"
	"time"

	"skillvet/internal/config"
	"skillvet/internal/errors"
	"skillvet/internal/events"
	"skillvet/internal/history"
	"skillvet/internal/server"
	"skillvet/internal/services"
	"skillvet/internal/store"
	"skillvet/internal/verify"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis and skill verification",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis,
adaptive skill verification sessions, feedback aggregation, and history.

Available endpoints:
- POST /analyze: Analyze an uploaded resume
- GET  /templates: List resume templates
- POST /skills/match: Match resume skills to question banks
- POST /verify/start: Start a verification session
- POST /verify/{id}/answer: Submit an answer to a session
- GET  /verify/{id}: Inspect a session
- POST /feedback: Aggregate feedback and record history
- GET  /history: List history entries
- GET  /history/attempts: List detailed verification attempts
- POST /generate: Generate a resume document
- GET  /health: Health check endpoint
- GET  /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("bank-mode", "", "Question bank mode: remote or local (overrides config)")
	serveCmd.Flags().String("bank-dir", "", "Directory of local question bank files (overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("questionBank.mode", "bank-mode")
	bindFlag("questionBank.localDir", "bank-dir")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to apply vault secrets: %w", err)
	}

	// Durable store backs history and the recency ledger; the session store
	// only holds short-lived handoff values.
	durable, err := openDurableStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := durable.Close(); err != nil {
			logger.LogError(err, "Failed to close durable store")
		}
	}()
	sessionStore := store.NewMemoryStore()

	bank, bankStatus, bankStop, err := buildQuestionBank(cfg, logger)
	if err != nil {
		return err
	}
	defer bankStop()

	analysis := services.NewAnalysisClient(&cfg.Services.Analysis, logger)
	docGen := services.NewDocGenClient(&cfg.Services.DocGen, logger)

	seed := cfg.Verify.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	bus := events.NewBus()
	if cfg.Events.Enabled {
		publisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		publisher.Attach(bus)
		defer publisher.Close()
	}

	deps := server.Dependencies{
		Analysis:     analysis,
		Bank:         bank,
		DocGen:       docGen,
		History:      history.NewAggregator(durable, sessionStore, logger),
		SessionStore: sessionStore,
		Recency:      verify.NewRecencyTracker(durable),
		Selector:     verify.NewSelector(verify.NewRand(seed)),
		Registry:     server.NewSessionRegistry(),
		Events:       bus,
		Collaborators: map[string]server.CollaboratorStatus{
			"analysis":     analysis,
			"questionBank": bankStatus,
			"docGen":       docGen,
		},
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start()
}

// openDurableStore opens the configured history store.
func openDurableStore(cfg *config.Config, logger *errors.Logger) (*store.BadgerStore, error) {
	if cfg.Storage.InMemory {
		return store.OpenBadgerInMemory()
	}
	return store.OpenBadger(store.BadgerConfig{
		Path:           cfg.Storage.Path,
		SyncWrites:     cfg.Storage.SyncWrites,
		GCInterval:     cfg.Storage.GCInterval,
		GCDiscardRatio: cfg.Storage.GCDiscardRatio,
		Logger:         logger,
	})
}

// buildQuestionBank constructs the configured question bank provider and
// returns it together with its status view and a stop function.
func buildQuestionBank(cfg *config.Config, logger *errors.Logger) (services.QuestionBank, server.CollaboratorStatus, func(), error) {
	if cfg.QuestionBank.Mode == "local" {
		local, err := services.NewLocalBank(cfg.QuestionBank.LocalDir, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load local question banks: %w", err)
		}
		if cfg.QuestionBank.HotReload {
			if err := local.Start(); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to start question bank watcher: %w", err)
			}
		}
		stop := func() {
			if err := local.Stop(); err != nil {
				logger.LogError(err, "Failed to stop question bank watcher")
			}
		}
		return local, local, stop, nil
	}

	remote := services.NewRemoteBank(&cfg.Services.QuestionBank, logger)
	return remote, remote, func() {}, nil
}
