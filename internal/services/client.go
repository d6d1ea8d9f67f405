package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apperrors "skillvet/internal/errors"
)

// errorBody is the collaborator error envelope: a detail field holding either
// a plain string or structured validation output.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// httpClient is the shared plumbing for the collaborator clients.
type httpClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func newHTTPClient(baseURL, apiKey string, timeout time.Duration) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *httpClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

// postJSON sends payload as JSON and decodes the response into out.
func (c *httpClient) postJSON(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, out)
}

// getJSON fetches path and decodes the response into out.
func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *httpClient) doJSON(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeServiceError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeServiceError converts a collaborator error response into a
// human-readable message, falling back to the status code when the body
// carries no detail.
func decodeServiceError(resp *http.Response) error {
	message := fmt.Sprintf("request failed with status %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var envelope errorBody
		if json.Unmarshal(body, &envelope) == nil && len(envelope.Detail) > 0 {
			var detail string
			if json.Unmarshal(envelope.Detail, &detail) == nil && detail != "" {
				message = detail
			} else {
				message = string(envelope.Detail)
			}
		}
	}

	return apperrors.NewServiceError(
		apperrors.ErrCodeInvalidRequest,
		message,
		nil,
	).WithContext("status", resp.StatusCode).WithContext("url", resp.Request.URL.Path)
}
