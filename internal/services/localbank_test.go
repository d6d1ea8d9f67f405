package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillvet/internal/errors"
)

func writeBankFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newTestBank(t *testing.T) *LocalBank {
	t.Helper()
	dir := t.TempDir()

	writeBankFile(t, dir, "python.json", `{
		"skill": "Python",
		"questions": [
			{"id": "py1", "level": "Beginner", "question": "What is a list?", "keywords": ["ordered", "mutable", "sequence"], "marks": 6},
			{"id": "py2", "level": "Advanced", "question": "Explain the GIL.", "keywords": ["lock", "thread"]},
			{"id": "", "level": "Beginner", "question": "ignored, blank id"}
		]
	}`)
	writeBankFile(t, dir, "ml.json", `{
		"skill": "ml",
		"questions": [
			{"id": "ml1", "level": "Intermediate", "question": "What is overfitting?", "keywords": ["variance", "training"]}
		]
	}`)
	writeBankFile(t, dir, "broken.json", `{not valid json`)
	writeBankFile(t, dir, "empty.json", `{"skill": "empty", "questions": []}`)

	bank, err := NewLocalBank(dir, apperrors.NewLogger(slog.LevelError))
	require.NoError(t, err)
	return bank
}

func TestLocalBankLoadsValidFilesOnly(t *testing.T) {
	bank := newTestBank(t)

	stats := bank.Stats()
	assert.Equal(t, 2, stats["banks"], "malformed and empty files are skipped")
	assert.True(t, bank.IsHealthy())
}

func TestLocalBankGetQuestions(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank(t)

	questions, err := bank.GetQuestions(ctx, "Python")
	require.NoError(t, err)
	require.Len(t, questions, 2, "blank-id questions are dropped")
	assert.Equal(t, "py1", questions[0].ID)
	assert.Equal(t, "Beginner", questions[0].Level)
}

func TestLocalBankResolvesAliases(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank(t)

	for _, alias := range []string{"Machine Learning", "AI", "artificial-intelligence", "ML"} {
		questions, err := bank.GetQuestions(ctx, alias)
		require.NoError(t, err, "alias %q", alias)
		require.Len(t, questions, 1)
		assert.Equal(t, "ml1", questions[0].ID)
	}

	// Normalization ignores case and punctuation.
	questions, err := bank.GetQuestions(ctx, "  PYTHON3 ")
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestLocalBankUnknownSkill(t *testing.T) {
	bank := newTestBank(t)

	_, err := bank.GetQuestions(context.Background(), "cobol")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBankUnavailable, appErr.Code)
}

func TestLocalBankScoreAnswer(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank(t)

	t.Run("all keywords found", func(t *testing.T) {
		result, err := bank.ScoreAnswer(ctx, "python", "py1", "A list is an ordered, mutable sequence type.")
		require.NoError(t, err)
		assert.Equal(t, 100.0, result.Percentage)
		assert.Equal(t, "Strong", result.Verdict)
		assert.Equal(t, 6.0, result.MarksAwarded)
		assert.Equal(t, 6.0, result.TotalMarks)
		assert.Empty(t, result.MissingKeywords)
	})

	t.Run("partial match", func(t *testing.T) {
		result, err := bank.ScoreAnswer(ctx, "python", "py1", "It keeps things in order. It is ORDERED!")
		require.NoError(t, err)
		assert.InDelta(t, 33.33, result.Percentage, 0.01)
		assert.Equal(t, "Needs Improvement", result.Verdict)
		assert.Equal(t, []string{"ordered"}, result.FoundKeywords)
		assert.ElementsMatch(t, []string{"mutable", "sequence"}, result.MissingKeywords)
	})

	t.Run("moderate verdict", func(t *testing.T) {
		result, err := bank.ScoreAnswer(ctx, "python", "py2", "A global lock serializes bytecode execution.")
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.Percentage)
		assert.Equal(t, "Moderate", result.Verdict)
	})

	t.Run("marks default to keyword count", func(t *testing.T) {
		result, err := bank.ScoreAnswer(ctx, "python", "py2", "lock and thread contention")
		require.NoError(t, err)
		assert.Equal(t, 2.0, result.TotalMarks)
		assert.Equal(t, 2.0, result.MarksAwarded)
	})

	t.Run("expected fields populated", func(t *testing.T) {
		result, err := bank.ScoreAnswer(ctx, "python", "py2", "no idea")
		require.NoError(t, err)
		assert.Equal(t, []string{"lock", "thread"}, result.ExpectedKeywords)
		assert.Equal(t, "lock, thread", result.ExpectedAnswer)
	})

	t.Run("unknown question id", func(t *testing.T) {
		_, err := bank.ScoreAnswer(ctx, "python", "nope", "answer")
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrCodeInvalidRequest, appErr.Code)
	})
}

func TestScoreKeywordsMatchingIsCaseAndPunctuationInsensitive(t *testing.T) {
	result := scoreKeywords("The GIL (Global Interpreter Lock) blocks THREADS.", []string{"lock", "threads"}, 4)
	assert.Equal(t, 100.0, result.Percentage)
	assert.Equal(t, 4.0, result.MarksAwarded)
}

func TestScoreKeywordsNoKeywords(t *testing.T) {
	result := scoreKeywords("anything", nil, 5)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Equal(t, "Needs Improvement", result.Verdict)
}

func TestLocalBankMatchSkills(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank(t)

	matched, err := bank.MatchSkills(ctx, []string{"Python", "python", "Machine Learning", "COBOL", ""})
	require.NoError(t, err)
	require.Len(t, matched, 2, "duplicates, unknowns, and blanks are dropped")

	assert.Equal(t, "Python", matched[0].ResumeSkill)
	assert.Equal(t, "Python", matched[0].BankSkill)
	assert.Equal(t, 3, matched[0].QuestionCount)

	assert.Equal(t, "Machine Learning", matched[1].ResumeSkill)
	assert.Equal(t, "ml", matched[1].BankSkill)
}

func TestLocalBankReloadPicksUpChanges(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeBankFile(t, dir, "go.json", `{"skill": "go", "questions": [{"id": "g1", "level": "Beginner", "question": "What is a goroutine?"}]}`)

	bank, err := NewLocalBank(dir, apperrors.NewLogger(slog.LevelError))
	require.NoError(t, err)

	writeBankFile(t, dir, "rust.json", `{"skill": "rust", "questions": [{"id": "r1", "level": "Beginner", "question": "What is ownership?"}]}`)
	require.NoError(t, bank.reload())

	questions, err := bank.GetQuestions(ctx, "rust")
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}
