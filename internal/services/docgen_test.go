package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileNameFromDisposition(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
	}{
		{"standard attachment", `attachment; filename="resume_final.pdf"`, "resume_final.pdf"},
		{"unquoted filename", `attachment; filename=resume.docx`, "resume.docx"},
		{"missing header", "", defaultGeneratedFileName},
		{"no filename param", "attachment", defaultGeneratedFileName},
		{"malformed header", `;;;`, defaultGeneratedFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fileNameFromDisposition(tt.disposition))
		})
	}
}
