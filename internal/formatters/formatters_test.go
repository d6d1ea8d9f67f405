package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillvet/internal/types"
)

func sampleReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		FileName:     "resume.pdf",
		OverallScore: 82.5,
		CategoryScores: map[string]float64{
			"experience": 80,
		},
		Skills:          []string{"Go", "SQL"},
		Vulnerabilities: []string{"Unverifiable certification claim"},
	}
}

func sampleSummary() types.InterviewSummary {
	return types.InterviewSummary{
		Skill:      "go",
		TotalScore: 75,
		Answers: []types.AnswerRecord{
			{
				QuestionNumber:  1,
				Question:        "Explain channels.",
				Difficulty:      types.BandIntermediate,
				Score:           75,
				Verdict:         "Strong",
				MissingKeywords: []string{"select"},
			},
		},
	}
}

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]int{"a": 1}, decoded)
}

func TestFormatReport(t *testing.T) {
	registry := NewFormatterRegistry()

	t.Run("text", func(t *testing.T) {
		out, err := registry.Format(sampleReport(), "text")
		require.NoError(t, err)
		assert.Contains(t, out, "RESUME ANALYSIS")
		assert.Contains(t, out, "resume.pdf")
		assert.Contains(t, out, "82.5/100")
		assert.Contains(t, out, "Unverifiable certification claim")
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := registry.Format(sampleReport(), "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "# Resume Analysis")
		assert.Contains(t, out, "**Overall Score:** 82.5/100")
	})

	t.Run("value type", func(t *testing.T) {
		out, err := registry.Format(*sampleReport(), "text")
		require.NoError(t, err)
		assert.Contains(t, out, "resume.pdf")
	})

	t.Run("no vulnerabilities", func(t *testing.T) {
		report := sampleReport()
		report.Vulnerabilities = nil
		out, err := registry.Format(report, "text")
		require.NoError(t, err)
		assert.Contains(t, out, "No vulnerabilities detected.")
	})
}

func TestFormatSummary(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleSummary(), "text")
	require.NoError(t, err)
	assert.Contains(t, out, "INTERVIEW SUMMARY")
	assert.Contains(t, out, "Skill: go")
	assert.Contains(t, out, "Total Score: 75/100")
	assert.Contains(t, out, "Missing: select")

	out, err = registry.Format(sampleSummary(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Interview Summary")
	assert.Contains(t, out, "**Difficulty:** intermediate")
}

func TestFormatFeedback(t *testing.T) {
	registry := NewFormatterRegistry()
	delta := 5
	feedback := &types.Feedback{
		FinalScore:     74,
		ResumeScore:    80,
		InterviewScore: 70,
		Label:          "Good Performance",
		Strengths:      []string{"Strong resume profile"},
		WeakAreas:      []string{"Interview answers need more depth"},
		Delta:          &delta,
	}

	out, err := registry.Format(feedback, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Final Score: 74/100 (Good Performance)")
	assert.Contains(t, out, "Change Since Last Attempt: +5")
	assert.Contains(t, out, "Strong resume profile")

	out, err = registry.Format(feedback, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Feedback")
	assert.Contains(t, out, "## Weak Areas")
}

func TestFormatHistoryEntries(t *testing.T) {
	registry := NewFormatterRegistry()
	entries := []types.HistoryEntry{
		{Skill: "go", FileName: "resume.pdf", FinalScore: 74, ResumeScore: 80, InterviewScore: 70},
		{Skill: "python", FinalScore: 60, ResumeScore: 55, InterviewScore: 63},
	}

	out, err := registry.Format(entries, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "1. go (resume.pdf)")
	assert.Contains(t, out, "Final: 74 | Resume: 80 | Interview: 70")
	assert.Contains(t, out, "2. python")

	out, err = registry.Format(entries, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| 1 | go | 74 | 80 | 70 |")

	out, err = registry.Format([]types.HistoryEntry{}, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No attempts recorded yet.")
}

func TestFormatUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()
	_, err := registry.Format(sampleReport(), "yaml")
	assert.Error(t, err)
}

func TestTextFormatRejectsUnknownTypes(t *testing.T) {
	registry := NewFormatterRegistry()
	_, err := registry.Format(struct{ X int }{1}, "text")
	assert.Error(t, err, "text has no generic fallback")
}
