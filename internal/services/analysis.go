package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"skillvet/internal/config"
	apperrors "skillvet/internal/errors"
	"skillvet/internal/types"
)

// AnalysisClient talks to the resume analysis collaborator.
type AnalysisClient struct {
	http    *httpClient
	breaker *Breaker[[]byte]
	logger  *apperrors.Logger
}

// NewAnalysisClient creates the analysis collaborator client.
func NewAnalysisClient(cfg *config.ServiceConfig, logger *apperrors.Logger) *AnalysisClient {
	return &AnalysisClient{
		http:    newHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		breaker: NewBreaker[[]byte]("analysis", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// Analyze uploads a resume file and returns the extracted report.
func (c *AnalysisClient) Analyze(ctx context.Context, fileName string, content []byte) (*types.AnalysisReport, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, apperrors.NewInternalError(
			apperrors.ErrCodeAnalysisFailed,
			"failed to build upload request",
			err,
		)
	}
	if _, err := part.Write(content); err != nil {
		return nil, apperrors.NewInternalError(
			apperrors.ErrCodeAnalysisFailed,
			"failed to build upload request",
			err,
		)
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.NewInternalError(
			apperrors.ErrCodeAnalysisFailed,
			"failed to build upload request",
			err,
		)
	}

	var report types.AnalysisReport
	_, err = c.breaker.Execute(func() ([]byte, error) {
		req, err := c.http.newRequest(ctx, http.MethodPost, "/analyze-resume", bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return nil, c.http.doJSON(req, &report)
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeAnalysisFailed, "resume analysis failed")
	}

	report.FileName = fileName
	return &report, nil
}

// ListTemplates returns the resume template catalog.
func (c *AnalysisClient) ListTemplates(ctx context.Context) (*types.TemplateList, error) {
	var list types.TemplateList
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.http.getJSON(ctx, "/resume-templates", &list)
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeAnalysisFailed, "failed to fetch templates")
	}
	return &list, nil
}

// MatchSkills maps resume skills onto question bank skills.
func (c *AnalysisClient) MatchSkills(ctx context.Context, skills []string) ([]types.MatchedSkill, error) {
	payload := map[string][]string{"skills": skills}
	var response struct {
		Skills []types.MatchedSkill `json:"skills"`
	}
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.http.postJSON(ctx, "/skill-verification/matched-skills", payload, &response)
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeAnalysisFailed, "skill matching failed")
	}
	return response.Skills, nil
}

// Stats exposes the breaker state for the stats endpoint.
func (c *AnalysisClient) Stats() map[string]any { return c.breaker.Stats() }

// IsHealthy reports the breaker state for health checks.
func (c *AnalysisClient) IsHealthy() bool { return c.breaker.IsHealthy() }

// wrapServiceError keeps AppError values intact and wraps raw transport
// failures with the given code.
func wrapServiceError(err error, code, message string) error {
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}
	return apperrors.NewServiceError(code, message, err)
}
