// Package history persists completed verification attempts and derives the
// blended feedback shown after each session.
package history

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/store"
	"skillvet/internal/types"
)

// Durable list keys. Both lists are append-only.
const (
	HistoryKey  = "analysisHistory"
	AttemptsKey = "skillVerificationHistory"
)

// ReportKey is the short-lived store key holding the most recent analysis
// report until feedback aggregation consumes it.
const ReportKey = "analysisReport"

// Score blend weights for the final score.
const (
	resumeWeight    = 0.4
	interviewWeight = 0.6
)

// Aggregator combines an analysis report with an interview summary into
// durable history entries and user-facing feedback.
type Aggregator struct {
	durable store.Store
	session store.Store
	logger  *apperrors.Logger
}

// NewAggregator creates an aggregator over the durable and short-lived
// stores.
func NewAggregator(durable, session store.Store, logger *apperrors.Logger) *Aggregator {
	return &Aggregator{durable: durable, session: session, logger: logger}
}

// FinalScore blends the resume and interview scores. Absent scores read as 0.
func FinalScore(resumeScore, interviewScore float64) int {
	return int(math.Round(resumeScore*resumeWeight + interviewScore*interviewWeight))
}

// Record appends one history entry and, when the summary carries answers, one
// detailed attempt, then returns the derived feedback. Recording the same
// summary twice is a no-op beyond recomputing feedback: per-attempt markers
// in the short-lived store guard each durable list.
func (a *Aggregator) Record(ctx context.Context, report *types.AnalysisReport, summary *types.InterviewSummary) (*types.Feedback, error) {
	resumeScore := 0.0
	fileName := ""
	var skills, vulnerabilities []string
	if report != nil {
		resumeScore = report.OverallScore
		fileName = report.FileName
		skills = report.Skills
		vulnerabilities = report.Vulnerabilities
	}
	interviewScore := 0.0
	skill := ""
	var answers []types.AnswerRecord
	answeredAt := int64(0)
	if summary != nil {
		interviewScore = float64(summary.TotalScore)
		skill = summary.Skill
		answers = summary.Answers
		answeredAt = summary.AnsweredAt
	}

	final := FinalScore(resumeScore, interviewScore)

	if err := a.appendEntry(ctx, answeredAt, types.HistoryEntry{
		ID:              uuid.NewString(),
		CreatedAt:       types.Now(),
		FileName:        fileName,
		ResumeScore:     int(math.Round(resumeScore)),
		InterviewScore:  int(math.Round(interviewScore)),
		FinalScore:      final,
		Vulnerabilities: vulnerabilities,
		Skill:           skill,
	}); err != nil {
		return nil, err
	}

	if len(answers) > 0 {
		if err := a.appendAttempt(ctx, answeredAt, types.VerificationAttempt{
			ID:             uuid.NewString(),
			CreatedAt:      types.Now(),
			AnsweredAt:     answeredAt,
			Skill:          skill,
			InterviewScore: int(math.Round(interviewScore)),
			ResumeScore:    int(math.Round(resumeScore)),
			FinalScore:     final,
			Answers:        answers,
		}); err != nil {
			return nil, err
		}
	}

	feedback := BuildFeedback(resumeScore, interviewScore, skills, vulnerabilities)

	delta, err := a.Delta(ctx)
	if err != nil {
		a.logger.LogError(err, "failed to compute history delta")
	} else {
		feedback.Delta = delta
	}
	return feedback, nil
}

// appendEntry writes the aggregate entry unless this attempt was already
// recorded.
func (a *Aggregator) appendEntry(ctx context.Context, answeredAt int64, entry types.HistoryEntry) error {
	marker := fmt.Sprintf("analysis-report-saved-%d", answeredAt)
	done, err := a.markerSet(ctx, marker)
	if err != nil || done {
		return err
	}
	if err := store.AppendJSONList(ctx, a.durable, HistoryKey, entry); err != nil {
		return err
	}
	return a.setMarker(ctx, marker)
}

// appendAttempt writes the detailed attempt unless already recorded.
func (a *Aggregator) appendAttempt(ctx context.Context, answeredAt int64, attempt types.VerificationAttempt) error {
	marker := fmt.Sprintf("skill-verification-saved-%d", answeredAt)
	done, err := a.markerSet(ctx, marker)
	if err != nil || done {
		return err
	}
	if err := store.AppendJSONList(ctx, a.durable, AttemptsKey, attempt); err != nil {
		return err
	}
	return a.setMarker(ctx, marker)
}

func (a *Aggregator) markerSet(ctx context.Context, key string) (bool, error) {
	_, err := a.session.Get(ctx, key)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Aggregator) setMarker(ctx context.Context, key string) error {
	return a.session.Set(ctx, key, []byte("true"))
}

// Entries returns the aggregate history list in insertion order.
func (a *Aggregator) Entries(ctx context.Context) ([]types.HistoryEntry, error) {
	return store.ReadJSONList[types.HistoryEntry](ctx, a.durable, HistoryKey)
}

// Attempts returns the detailed attempt list in insertion order.
func (a *Aggregator) Attempts(ctx context.Context) ([]types.VerificationAttempt, error) {
	return store.ReadJSONList[types.VerificationAttempt](ctx, a.durable, AttemptsKey)
}

// Delta compares the two most recent history entries by insertion order.
// It returns nil when fewer than two entries exist.
func (a *Aggregator) Delta(ctx context.Context) (*int, error) {
	entries, err := a.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, nil
	}
	d := entries[len(entries)-1].FinalScore - entries[len(entries)-2].FinalScore
	return &d, nil
}

// ScoreLabel names a final score for display.
func ScoreLabel(finalScore int) string {
	switch {
	case finalScore >= 85:
		return "Excellent"
	case finalScore >= 70:
		return "Good Performance"
	case finalScore >= 50:
		return "Average"
	default:
		return "Needs Improvement"
	}
}

// BuildFeedback derives strengths and weak areas from a fixed rule set, with
// generic fallbacks so neither list is ever empty.
func BuildFeedback(resumeScore, interviewScore float64, skills, vulnerabilities []string) *types.Feedback {
	final := FinalScore(resumeScore, interviewScore)

	var strengths []string
	if resumeScore >= 75 {
		strengths = append(strengths, "Strong resume profile")
	}
	if len(skills) >= 5 {
		strengths = append(strengths, "Broad skill coverage across the resume")
	}
	if interviewScore >= 75 {
		strengths = append(strengths, "Strong interview performance")
	}
	if len(vulnerabilities) == 0 {
		strengths = append(strengths, "No resume vulnerabilities detected")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Consistent effort across resume and interview")
	}

	var weakAreas []string
	for i, v := range vulnerabilities {
		if i >= 3 {
			break
		}
		weakAreas = append(weakAreas, v)
	}
	if interviewScore < 60 {
		weakAreas = append(weakAreas, "Interview answers need more depth")
	}
	if resumeScore < 60 {
		weakAreas = append(weakAreas, "Resume needs stronger alignment with target roles")
	}
	if len(weakAreas) == 0 {
		weakAreas = append(weakAreas, "Keep practicing to maintain your edge")
	}

	return &types.Feedback{
		FinalScore:     final,
		ResumeScore:    int(math.Round(resumeScore)),
		InterviewScore: int(math.Round(interviewScore)),
		Label:          ScoreLabel(final),
		Strengths:      strengths,
		WeakAreas:      weakAreas,
	}
}
