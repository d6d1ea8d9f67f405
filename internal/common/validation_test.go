package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   bool
	}{
		{"json accepted", "json", supported, false},
		{"text accepted", "text", supported, false},
		{"markdown accepted", "markdown", supported, false},
		{"yaml rejected", "yaml", supported, true},
		{"uppercase rejected", "JSON", supported, true},
		{"empty format rejected", "", supported, true},
		{"no restriction allows anything", "yaml", nil, false},
		{"single format list", "text", []string{"json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOutputFormatListsChoices(t *testing.T) {
	err := ValidateOutputFormat("xml", []string{"json", "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml"`)
	assert.Contains(t, err.Error(), "json, text")
}

func TestGetSupportedFormats(t *testing.T) {
	formats := []string{"json", "text", "markdown"}
	assert.Equal(t, formats, GetSupportedFormats(formats))
	assert.Empty(t, GetSupportedFormats(nil))
}
