package types

import "time"

// Band is one of the three canonical difficulty tiers every question level
// label maps onto.
type Band string

const (
	BandBeginner     Band = "beginner"
	BandIntermediate Band = "intermediate"
	BandAdvanced     Band = "advanced"
)

// Rank returns the position of the band in the beginner < intermediate <
// advanced ordering. Unknown values rank as intermediate.
func (b Band) Rank() int {
	switch b {
	case BandBeginner:
		return 0
	case BandAdvanced:
		return 2
	default:
		return 1
	}
}

// BandFromRank is the inverse of Rank, clamped to the valid range.
func BandFromRank(rank int) Band {
	switch {
	case rank <= 0:
		return BandBeginner
	case rank >= 2:
		return BandAdvanced
	default:
		return BandIntermediate
	}
}

// Question is a single entry in a skill's question pool. Level is the bank's
// free-form label ("Beginner", "Trap", "Scenario", ...), not a Band.
type Question struct {
	ID       string `json:"id"`
	Level    string `json:"level"`
	Question string `json:"question"`
}

// QuestionPool is the question bank response for one skill
type QuestionPool struct {
	Skill     string     `json:"skill"`
	Questions []Question `json:"questions"`
}

// ScoreResult is the question bank's verdict on one answer
type ScoreResult struct {
	Percentage       float64  `json:"percentage"`
	Verdict          string   `json:"verdict"`
	MarksAwarded     float64  `json:"marks_awarded"`
	TotalMarks       float64  `json:"total_marks"`
	FoundKeywords    []string `json:"found_keywords"`
	MissingKeywords  []string `json:"missing_keywords"`
	ExpectedKeywords []string `json:"expected_keywords,omitempty"`
	ExpectedAnswer   string   `json:"expected_answer,omitempty"`
}

// AnswerRecord captures one answered question. Created at scoring time and
// immutable thereafter.
type AnswerRecord struct {
	QuestionNumber   int      `json:"questionNumber"`
	Question         string   `json:"question"`
	QuestionID       string   `json:"questionId"`
	Answer           string   `json:"answer"`
	Score            float64  `json:"score"`
	Difficulty       Band     `json:"difficulty"`
	Verdict          string   `json:"verdict"`
	MarksAwarded     float64  `json:"marksAwarded"`
	TotalMarks       float64  `json:"totalMarks"`
	FoundKeywords    []string `json:"foundKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
	ExpectedKeywords []string `json:"expectedKeywords"`
	ExpectedAnswer   string   `json:"expectedAnswer"`
}

// InterviewSummary is written once when a verification session completes and
// read downstream by the feedback aggregator.
type InterviewSummary struct {
	Skill      string         `json:"skill"`
	TotalScore int            `json:"totalScore"`
	AnsweredAt int64          `json:"answeredAt"`
	Answers    []AnswerRecord `json:"answers"`
}

// AnalysisReport is the resume analysis service output
type AnalysisReport struct {
	FileName        string             `json:"fileName"`
	OverallScore    float64            `json:"overall_score"`
	CategoryScores  map[string]float64 `json:"category_scores,omitempty"`
	Sections        map[string]string  `json:"sections,omitempty"`
	Skills          []string           `json:"skills"`
	Vulnerabilities []string           `json:"vulnerabilities"`
}

// TemplateList is the resume template catalog
type TemplateList struct {
	Templates       []string `json:"templates"`
	DefaultTemplate string   `json:"default_template"`
}

// MatchedSkill links a resume skill to a question-bank skill
type MatchedSkill struct {
	ResumeSkill   string `json:"resume_skill"`
	BankSkill     string `json:"bank_skill"`
	QuestionCount int    `json:"question_count"`
	Level         string `json:"level,omitempty"`
}

// HistoryEntry is the durable aggregate record of one completed attempt.
// Appended, never mutated or removed.
type HistoryEntry struct {
	ID              string   `json:"id"`
	CreatedAt       int64    `json:"createdAt"`
	FileName        string   `json:"fileName"`
	ResumeScore     int      `json:"resumeScore"`
	InterviewScore  int      `json:"interviewScore"`
	FinalScore      int      `json:"finalScore"`
	Vulnerabilities []string `json:"vulnerabilities"`
	Skill           string   `json:"skill"`
}

// VerificationAttempt is the durable detailed record of one completed
// attempt, parallel to HistoryEntry but with full per-question detail.
type VerificationAttempt struct {
	ID             string         `json:"id"`
	CreatedAt      int64          `json:"createdAt"`
	AnsweredAt     int64          `json:"answeredAt"`
	Skill          string         `json:"skill"`
	InterviewScore int            `json:"interviewScore"`
	ResumeScore    int            `json:"resumeScore"`
	FinalScore     int            `json:"finalScore"`
	Answers        []AnswerRecord `json:"answers"`
}

// Feedback is the derived presentation of one completed attempt
type Feedback struct {
	FinalScore     int      `json:"finalScore"`
	ResumeScore    int      `json:"resumeScore"`
	InterviewScore int      `json:"interviewScore"`
	Label          string   `json:"label"`
	Strengths      []string `json:"strengths"`
	WeakAreas      []string `json:"weakAreas"`
	Delta          *int     `json:"delta,omitempty"`
}

// GeneratedDocument is the document generation service output
type GeneratedDocument struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// ResumeForm carries the structured fields sent to the document generator
type ResumeForm struct {
	Template   string            `json:"template"`
	Fields     map[string]string `json:"fields"`
	SkillsList []string          `json:"skills,omitempty"`
}

// Now returns the current time in unix milliseconds, the timestamp unit used
// throughout the stored records.
func Now() int64 {
	return time.Now().UnixMilli()
}
