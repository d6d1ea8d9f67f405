package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"skillvet/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "InterviewSummary", &SummaryTextFormatter{})
	registry.RegisterFormatter("markdown", "InterviewSummary", &SummaryMarkdownFormatter{})
	registry.RegisterFormatter("text", "Feedback", &FeedbackTextFormatter{})
	registry.RegisterFormatter("markdown", "Feedback", &FeedbackMarkdownFormatter{})
	registry.RegisterFormatter("text", "HistoryEntries", &HistoryTextFormatter{})
	registry.RegisterFormatter("markdown", "HistoryEntries", &HistoryMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case types.InterviewSummary, *types.InterviewSummary:
		return "InterviewSummary"
	case types.Feedback, *types.Feedback:
		return "Feedback"
	case []types.HistoryEntry:
		return "HistoryEntries"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asReport(data any) (*types.AnalysisReport, error) {
	switch v := data.(type) {
	case *types.AnalysisReport:
		return v, nil
	case types.AnalysisReport:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected AnalysisReport, got %T", data)
	}
}

func asSummary(data any) (*types.InterviewSummary, error) {
	switch v := data.(type) {
	case *types.InterviewSummary:
		return v, nil
	case types.InterviewSummary:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected InterviewSummary, got %T", data)
	}
}

func asFeedback(data any) (*types.Feedback, error) {
	switch v := data.(type) {
	case *types.Feedback:
		return v, nil
	case types.Feedback:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected Feedback, got %T", data)
	}
}

// ReportTextFormatter handles text formatting for analysis reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	if report.FileName != "" {
		output.WriteString(fmt.Sprintf("File: %s\n", report.FileName))
	}
	output.WriteString(fmt.Sprintf("Overall Score: %.1f/100\n\n", report.OverallScore))

	if len(report.CategoryScores) > 0 {
		output.WriteString("Category Scores:\n")
		for category, score := range report.CategoryScores {
			output.WriteString(fmt.Sprintf("- %s: %.1f\n", category, score))
		}
		output.WriteString("\n")
	}

	if len(report.Skills) > 0 {
		output.WriteString("Skills:\n")
		for _, skill := range report.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(report.Vulnerabilities) > 0 {
		output.WriteString("Vulnerabilities:\n")
		for _, v := range report.Vulnerabilities {
			output.WriteString(fmt.Sprintf("- %s\n", v))
		}
		output.WriteString("\n")
	} else {
		output.WriteString("No vulnerabilities detected.\n")
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// ReportMarkdownFormatter handles markdown formatting for analysis reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	if report.FileName != "" {
		output.WriteString(fmt.Sprintf("**File:** %s\n\n", report.FileName))
	}
	output.WriteString(fmt.Sprintf("**Overall Score:** %.1f/100\n\n", report.OverallScore))

	if len(report.CategoryScores) > 0 {
		output.WriteString("## Category Scores\n\n")
		for category, score := range report.CategoryScores {
			output.WriteString(fmt.Sprintf("- **%s:** %.1f\n", category, score))
		}
		output.WriteString("\n")
	}

	if len(report.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		for _, skill := range report.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Vulnerabilities\n\n")
	if len(report.Vulnerabilities) > 0 {
		for _, v := range report.Vulnerabilities {
			output.WriteString(fmt.Sprintf("- %s\n", v))
		}
		output.WriteString("\n")
	} else {
		output.WriteString("No vulnerabilities detected.\n")
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// SummaryTextFormatter handles text formatting for interview summaries
type SummaryTextFormatter struct{}

func (stf *SummaryTextFormatter) Format(data any) (string, error) {
	summary, err := asSummary(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW SUMMARY ===\n\n")
	output.WriteString(fmt.Sprintf("Skill: %s\n", summary.Skill))
	output.WriteString(fmt.Sprintf("Total Score: %d/100\n", summary.TotalScore))
	output.WriteString(fmt.Sprintf("Questions Answered: %d\n\n", len(summary.Answers)))

	for _, answer := range summary.Answers {
		output.WriteString(fmt.Sprintf("%d. [%s] %s\n", answer.QuestionNumber, answer.Difficulty, answer.Question))
		output.WriteString(fmt.Sprintf("   Score: %.1f (%s)\n", answer.Score, answer.Verdict))
		if len(answer.MissingKeywords) > 0 {
			output.WriteString(fmt.Sprintf("   Missing: %s\n", strings.Join(answer.MissingKeywords, ", ")))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (stf *SummaryTextFormatter) SupportedType() string {
	return "InterviewSummary"
}

// SummaryMarkdownFormatter handles markdown formatting for interview summaries
type SummaryMarkdownFormatter struct{}

func (smf *SummaryMarkdownFormatter) Format(data any) (string, error) {
	summary, err := asSummary(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Interview Summary\n\n")
	output.WriteString(fmt.Sprintf("**Skill:** %s\n\n", summary.Skill))
	output.WriteString(fmt.Sprintf("**Total Score:** %d/100\n\n", summary.TotalScore))

	if len(summary.Answers) > 0 {
		output.WriteString("## Answers\n\n")
		for _, answer := range summary.Answers {
			output.WriteString(fmt.Sprintf("### %d. %s\n\n", answer.QuestionNumber, answer.Question))
			output.WriteString(fmt.Sprintf("**Difficulty:** %s | **Score:** %.1f (%s)\n\n", answer.Difficulty, answer.Score, answer.Verdict))
			if len(answer.MissingKeywords) > 0 {
				output.WriteString(fmt.Sprintf("**Missing keywords:** %s\n\n", strings.Join(answer.MissingKeywords, ", ")))
			}
		}
	}

	return output.String(), nil
}

func (smf *SummaryMarkdownFormatter) SupportedType() string {
	return "InterviewSummary"
}

// FeedbackTextFormatter handles text formatting for aggregated feedback
type FeedbackTextFormatter struct{}

func (ftf *FeedbackTextFormatter) Format(data any) (string, error) {
	feedback, err := asFeedback(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== FEEDBACK ===\n\n")
	output.WriteString(fmt.Sprintf("Final Score: %d/100 (%s)\n", feedback.FinalScore, feedback.Label))
	output.WriteString(fmt.Sprintf("Resume Score: %d\n", feedback.ResumeScore))
	output.WriteString(fmt.Sprintf("Interview Score: %d\n", feedback.InterviewScore))
	if feedback.Delta != nil {
		output.WriteString(fmt.Sprintf("Change Since Last Attempt: %+d\n", *feedback.Delta))
	}
	output.WriteString("\nStrengths:\n")
	for _, s := range feedback.Strengths {
		output.WriteString(fmt.Sprintf("- %s\n", s))
	}
	output.WriteString("\nWeak Areas:\n")
	for _, w := range feedback.WeakAreas {
		output.WriteString(fmt.Sprintf("- %s\n", w))
	}

	return output.String(), nil
}

func (ftf *FeedbackTextFormatter) SupportedType() string {
	return "Feedback"
}

// FeedbackMarkdownFormatter handles markdown formatting for aggregated feedback
type FeedbackMarkdownFormatter struct{}

func (fmf *FeedbackMarkdownFormatter) Format(data any) (string, error) {
	feedback, err := asFeedback(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Feedback\n\n")
	output.WriteString(fmt.Sprintf("**Final Score:** %d/100 (%s)\n\n", feedback.FinalScore, feedback.Label))
	output.WriteString(fmt.Sprintf("**Resume Score:** %d | **Interview Score:** %d\n\n", feedback.ResumeScore, feedback.InterviewScore))
	if feedback.Delta != nil {
		output.WriteString(fmt.Sprintf("**Change Since Last Attempt:** %+d\n\n", *feedback.Delta))
	}

	output.WriteString("## Strengths\n\n")
	for _, s := range feedback.Strengths {
		output.WriteString(fmt.Sprintf("- %s\n", s))
	}
	output.WriteString("\n## Weak Areas\n\n")
	for _, w := range feedback.WeakAreas {
		output.WriteString(fmt.Sprintf("- %s\n", w))
	}

	return output.String(), nil
}

func (fmf *FeedbackMarkdownFormatter) SupportedType() string {
	return "Feedback"
}

// HistoryTextFormatter handles text formatting for history entry lists
type HistoryTextFormatter struct{}

func (htf *HistoryTextFormatter) Format(data any) (string, error) {
	entries, ok := data.([]types.HistoryEntry)
	if !ok {
		return "", fmt.Errorf("expected []HistoryEntry, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== HISTORY ===\n\n")
	if len(entries) == 0 {
		output.WriteString("No attempts recorded yet.\n")
		return output.String(), nil
	}

	for i, entry := range entries {
		output.WriteString(fmt.Sprintf("%d. %s", i+1, entry.Skill))
		if entry.FileName != "" {
			output.WriteString(fmt.Sprintf(" (%s)", entry.FileName))
		}
		output.WriteString("\n")
		output.WriteString(fmt.Sprintf("   Final: %d | Resume: %d | Interview: %d\n",
			entry.FinalScore, entry.ResumeScore, entry.InterviewScore))
		if len(entry.Vulnerabilities) > 0 {
			output.WriteString(fmt.Sprintf("   Vulnerabilities: %d\n", len(entry.Vulnerabilities)))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (htf *HistoryTextFormatter) SupportedType() string {
	return "HistoryEntries"
}

// HistoryMarkdownFormatter handles markdown formatting for history entry lists
type HistoryMarkdownFormatter struct{}

func (hmf *HistoryMarkdownFormatter) Format(data any) (string, error) {
	entries, ok := data.([]types.HistoryEntry)
	if !ok {
		return "", fmt.Errorf("expected []HistoryEntry, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# History\n\n")
	if len(entries) == 0 {
		output.WriteString("No attempts recorded yet.\n")
		return output.String(), nil
	}

	output.WriteString("| # | Skill | Final | Resume | Interview |\n")
	output.WriteString("|---|-------|-------|--------|-----------|\n")
	for i, entry := range entries {
		output.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d |\n",
			i+1, entry.Skill, entry.FinalScore, entry.ResumeScore, entry.InterviewScore))
	}

	return output.String(), nil
}

func (hmf *HistoryMarkdownFormatter) SupportedType() string {
	return "HistoryEntries"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
