package services

import (
	"context"

	"skillvet/internal/config"
	apperrors "skillvet/internal/errors"
	"skillvet/internal/types"
)

// RemoteBank talks to the question bank collaborator over HTTP.
type RemoteBank struct {
	http    *httpClient
	breaker *Breaker[[]byte]
	logger  *apperrors.Logger
}

// NewRemoteBank creates the question bank collaborator client.
func NewRemoteBank(cfg *config.ServiceConfig, logger *apperrors.Logger) *RemoteBank {
	return &RemoteBank{
		http:    newHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		breaker: NewBreaker[[]byte]("question-bank", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// GetQuestions fetches the question pool for a skill.
func (b *RemoteBank) GetQuestions(ctx context.Context, skill string) ([]types.Question, error) {
	payload := map[string]string{"skill": skill}
	var pool types.QuestionPool
	_, err := b.breaker.Execute(func() ([]byte, error) {
		return nil, b.http.postJSON(ctx, "/skill-verification/questions", payload, &pool)
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeBankUnavailable, "failed to fetch questions")
	}
	return pool.Questions, nil
}

// ScoreAnswer submits one answer for keyword scoring.
func (b *RemoteBank) ScoreAnswer(ctx context.Context, skill, questionID, answer string) (*types.ScoreResult, error) {
	payload := map[string]string{
		"skill":       skill,
		"question_id": questionID,
		"answer":      answer,
	}
	var result types.ScoreResult
	_, err := b.breaker.Execute(func() ([]byte, error) {
		return nil, b.http.postJSON(ctx, "/skill-verification/score", payload, &result)
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeScoringFailed, "failed to score answer")
	}
	return &result, nil
}

// Stats exposes the breaker state for the stats endpoint.
func (b *RemoteBank) Stats() map[string]any { return b.breaker.Stats() }

// IsHealthy reports the breaker state for health checks.
func (b *RemoteBank) IsHealthy() bool { return b.breaker.IsHealthy() }
