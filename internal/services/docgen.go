package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"skillvet/internal/config"
	apperrors "skillvet/internal/errors"
	"skillvet/internal/types"
)

const defaultGeneratedFileName = "generated_resume.pdf"

// DocGenClient talks to the document generation collaborator.
type DocGenClient struct {
	http    *httpClient
	breaker *Breaker[*types.GeneratedDocument]
	logger  *apperrors.Logger
}

// NewDocGenClient creates the document generation collaborator client.
func NewDocGenClient(cfg *config.ServiceConfig, logger *apperrors.Logger) *DocGenClient {
	return &DocGenClient{
		http:    newHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		breaker: NewBreaker[*types.GeneratedDocument]("doc-generation", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// Generate renders the form into a document. The suggested file name comes
// from the Content-Disposition header when the collaborator provides one.
func (c *DocGenClient) Generate(ctx context.Context, form types.ResumeForm) (*types.GeneratedDocument, error) {
	doc, err := c.breaker.Execute(func() (*types.GeneratedDocument, error) {
		raw, err := json.Marshal(form)
		if err != nil {
			return nil, err
		}

		req, err := c.http.newRequest(ctx, http.MethodPost, "/generate-resume", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, decodeServiceError(resp)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		return &types.GeneratedDocument{
			FileName:    fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
			ContentType: resp.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	})
	if err != nil {
		return nil, wrapServiceError(err, apperrors.ErrCodeGenerationFailed, "document generation failed")
	}
	return doc, nil
}

func fileNameFromDisposition(disposition string) string {
	if disposition == "" {
		return defaultGeneratedFileName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return defaultGeneratedFileName
	}
	return params["filename"]
}

// Stats exposes the breaker state for the stats endpoint.
func (c *DocGenClient) Stats() map[string]any { return c.breaker.Stats() }

// IsHealthy reports the breaker state for health checks.
func (c *DocGenClient) IsHealthy() bool { return c.breaker.IsHealthy() }
