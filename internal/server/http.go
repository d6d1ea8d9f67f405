package server

import (
	"time"

	"skillvet/internal/config"
	apperrors "skillvet/internal/errors"
	"skillvet/internal/events"
	"skillvet/internal/history"
	"skillvet/internal/services"
	"skillvet/internal/store"
	"skillvet/internal/types"
	"skillvet/internal/verify"
)

// StartVerifyRequest starts a verification session for one skill.
type StartVerifyRequest struct {
	Skill         string `json:"skill"`
	QuestionCount int    `json:"questionCount,omitempty"`
	StartBand     string `json:"startBand,omitempty"`
}

// AnswerRequest submits one answer to an in-flight session.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// MatchSkillsRequest maps resume skills onto question bank skills.
type MatchSkillsRequest struct {
	Skills []string `json:"skills"`
}

// SessionResponse is the wire view of a verification session.
type SessionResponse struct {
	SessionID      string                  `json:"sessionId"`
	State          string                  `json:"state"`
	Skill          string                  `json:"skill"`
	Band           string                  `json:"band"`
	QuestionNumber int                     `json:"questionNumber"`
	TargetCount    int                     `json:"targetCount"`
	Question       *types.Question         `json:"question,omitempty"`
	LastAnswer     *types.AnswerRecord     `json:"lastAnswer,omitempty"`
	Summary        *types.InterviewSummary `json:"summary,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CollaboratorStatus is what each collaborator client exposes for the health
// and stats endpoints.
type CollaboratorStatus interface {
	Stats() map[string]any
	IsHealthy() bool
}

// Dependencies carries the application collaborators the HTTP layer drives.
type Dependencies struct {
	Analysis services.AnalysisService
	Bank     services.QuestionBank
	DocGen   services.DocumentGenerator
	History  *history.Aggregator

	// SessionStore holds short-lived handoff values (pending report and
	// interview summary); DurableStore backs the recency ledger and history.
	SessionStore store.Store

	Recency  *verify.RecencyTracker
	Selector *verify.Selector
	Registry *SessionRegistry
	Events   *events.Bus

	// Collaborators keyed by name for health and stats reporting.
	Collaborators map[string]CollaboratorStatus
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Application collaborators
	Deps Dependencies

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *apperrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *apperrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	if deps.Registry == nil {
		deps.Registry = NewSessionRegistry()
	}
	if deps.Events == nil {
		deps.Events = events.NewBus()
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Deps:           deps,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
