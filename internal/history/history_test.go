package history

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/store"
	"skillvet/internal/types"
)

func newTestAggregator() (*Aggregator, *store.MemoryStore, *store.MemoryStore) {
	durable := store.NewMemoryStore()
	session := store.NewMemoryStore()
	return NewAggregator(durable, session, apperrors.NewLogger(slog.LevelError)), durable, session
}

func sampleReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		FileName:        "resume.pdf",
		OverallScore:    80,
		Skills:          []string{"go", "python", "sql", "docker", "linux"},
		Vulnerabilities: []string{"Unverifiable certification claim"},
	}
}

func sampleSummary(answeredAt int64) *types.InterviewSummary {
	return &types.InterviewSummary{
		Skill:      "go",
		TotalScore: 70,
		AnsweredAt: answeredAt,
		Answers: []types.AnswerRecord{
			{QuestionNumber: 1, QuestionID: "q1", Score: 70, Difficulty: types.BandIntermediate},
		},
	}
}

func TestFinalScore(t *testing.T) {
	tests := []struct {
		name      string
		resume    float64
		interview float64
		want      int
	}{
		{"weighted blend", 80, 70, 74},
		{"interview dominates", 0, 100, 60},
		{"resume only", 100, 0, 40},
		{"both zero", 0, 0, 0},
		{"fractional blend rounds", 82, 71, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalScore(tt.resume, tt.interview))
		})
	}
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Excellent", ScoreLabel(85))
	assert.Equal(t, "Excellent", ScoreLabel(100))
	assert.Equal(t, "Good Performance", ScoreLabel(70))
	assert.Equal(t, "Good Performance", ScoreLabel(84))
	assert.Equal(t, "Average", ScoreLabel(50))
	assert.Equal(t, "Average", ScoreLabel(69))
	assert.Equal(t, "Needs Improvement", ScoreLabel(49))
	assert.Equal(t, "Needs Improvement", ScoreLabel(0))
}

func TestRecordAppendsEntryAndAttempt(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator()

	feedback, err := agg.Record(ctx, sampleReport(), sampleSummary(1000))
	require.NoError(t, err)

	assert.Equal(t, 74, feedback.FinalScore)
	assert.Equal(t, "Good Performance", feedback.Label)
	assert.Nil(t, feedback.Delta, "first entry has nothing to compare against")

	entries, err := agg.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "resume.pdf", entries[0].FileName)
	assert.Equal(t, 80, entries[0].ResumeScore)
	assert.Equal(t, 70, entries[0].InterviewScore)
	assert.Equal(t, 74, entries[0].FinalScore)
	assert.Equal(t, "go", entries[0].Skill)
	assert.NotEmpty(t, entries[0].ID)

	attempts, err := agg.Attempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, int64(1000), attempts[0].AnsweredAt)
	require.Len(t, attempts[0].Answers, 1)
}

func TestRecordIsIdempotentPerAttempt(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator()

	_, err := agg.Record(ctx, sampleReport(), sampleSummary(1000))
	require.NoError(t, err)
	_, err = agg.Record(ctx, sampleReport(), sampleSummary(1000))
	require.NoError(t, err)

	entries, err := agg.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "same answeredAt must not append twice")

	attempts, err := agg.Attempts(ctx)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)

	// A different attempt appends normally.
	_, err = agg.Record(ctx, sampleReport(), sampleSummary(2000))
	require.NoError(t, err)
	entries, err = agg.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordWithoutAnswersSkipsAttempt(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator()

	summary := sampleSummary(1000)
	summary.Answers = nil

	_, err := agg.Record(ctx, sampleReport(), summary)
	require.NoError(t, err)

	entries, err := agg.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	attempts, err := agg.Attempts(ctx)
	require.NoError(t, err)
	assert.Empty(t, attempts, "no per-question detail means no attempt record")
}

func TestRecordWithNilReport(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator()

	feedback, err := agg.Record(ctx, nil, sampleSummary(1000))
	require.NoError(t, err)
	assert.Equal(t, FinalScore(0, 70), feedback.FinalScore)
	assert.Zero(t, feedback.ResumeScore)
}

func TestDelta(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator()

	delta, err := agg.Delta(ctx)
	require.NoError(t, err)
	assert.Nil(t, delta)

	_, err = agg.Record(ctx, sampleReport(), sampleSummary(1000))
	require.NoError(t, err)
	delta, err = agg.Delta(ctx)
	require.NoError(t, err)
	assert.Nil(t, delta, "one entry is not enough for a delta")

	better := sampleSummary(2000)
	better.TotalScore = 90
	feedback, err := agg.Record(ctx, sampleReport(), better)
	require.NoError(t, err)

	require.NotNil(t, feedback.Delta)
	assert.Equal(t, FinalScore(80, 90)-FinalScore(80, 70), *feedback.Delta)
}

func TestBuildFeedback(t *testing.T) {
	t.Run("strong profile", func(t *testing.T) {
		f := BuildFeedback(85, 80, []string{"go", "sql", "docker", "k8s", "aws"}, nil)
		assert.Contains(t, f.Strengths, "Strong resume profile")
		assert.Contains(t, f.Strengths, "Broad skill coverage across the resume")
		assert.Contains(t, f.Strengths, "Strong interview performance")
		assert.Contains(t, f.Strengths, "No resume vulnerabilities detected")
		assert.Equal(t, []string{"Keep practicing to maintain your edge"}, f.WeakAreas)
	})

	t.Run("weak profile", func(t *testing.T) {
		vulns := []string{"v1", "v2", "v3", "v4"}
		f := BuildFeedback(40, 30, nil, vulns)
		assert.Equal(t, []string{"Consistent effort across resume and interview"}, f.Strengths)
		assert.Len(t, f.WeakAreas, 5, "three vulnerabilities plus both low-score findings")
		assert.NotContains(t, f.WeakAreas, "v4", "vulnerabilities cap at three")
	})

	t.Run("label matches final score", func(t *testing.T) {
		f := BuildFeedback(90, 90, nil, nil)
		assert.Equal(t, 90, f.FinalScore)
		assert.Equal(t, "Excellent", f.Label)
	})
}
