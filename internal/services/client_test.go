package services

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillvet/internal/errors"
)

func errorResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: &url.URL{Path: "/test"}},
	}
}

func TestDecodeServiceError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "string detail",
			status:      422,
			body:        `{"detail": "skill is required"}`,
			wantMessage: "skill is required",
		},
		{
			name:        "structured detail",
			status:      422,
			body:        `{"detail": [{"loc": ["body", "skill"], "msg": "field required"}]}`,
			wantMessage: `[{"loc": ["body", "skill"], "msg": "field required"}]`,
		},
		{
			name:        "empty body falls back to status",
			status:      503,
			body:        "",
			wantMessage: "request failed with status 503",
		},
		{
			name:        "non-json body falls back to status",
			status:      500,
			body:        "<html>Internal Server Error</html>",
			wantMessage: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeServiceError(errorResponse(tt.status, tt.body))
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrCodeInvalidRequest, appErr.Code)
			assert.Equal(t, tt.wantMessage, appErr.Message)
			assert.Equal(t, tt.status, appErr.Context["status"])
		})
	}
}

func TestNewHTTPClientTrimsBaseURL(t *testing.T) {
	c := newHTTPClient("http://bank:9000///", "secret", 0)
	assert.Equal(t, "http://bank:9000", c.baseURL)
}

func TestNewRequestSetsAPIKeyHeader(t *testing.T) {
	c := newHTTPClient("http://bank:9000", "secret", 0)
	req, err := c.newRequest(t.Context(), http.MethodGet, "/health", nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", req.Header.Get("X-API-Key"))
	assert.Equal(t, "http://bank:9000/health", req.URL.String())

	c = newHTTPClient("http://bank:9000", "", 0)
	req, err = c.newRequest(t.Context(), http.MethodGet, "/health", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("X-API-Key"))
}
