package verify

import (
	"context"
	"math"
	"strings"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/store"
	"skillvet/internal/types"
)

// SessionState is the lifecycle state of a verification session
type SessionState string

const (
	StateInitializing   SessionState = "initializing"
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateScoring        SessionState = "scoring"
	StateAdvancing      SessionState = "advancing"
	StateCompleted      SessionState = "completed"
	StateExhausted      SessionState = "exhausted"
	StateFailed         SessionState = "failed"
)

// Terminal reports whether the session can accept no further answers.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateExhausted || s == StateFailed
}

// MaxQuestionCount caps how many questions one session may ask.
const MaxQuestionCount = 20

// QuestionService is the slice of the question bank the session depends on.
type QuestionService interface {
	GetQuestions(ctx context.Context, skill string) ([]types.Question, error)
	ScoreAnswer(ctx context.Context, skill, questionID, answer string) (*types.ScoreResult, error)
}

// SummaryKey is the short-lived store key holding the pending interview
// summary between session completion and feedback aggregation.
const SummaryKey = "interviewSession"

// Session runs one adaptive verification attempt for a single skill. It is
// not safe for concurrent use; callers serialize access per session.
type Session struct {
	skill         string
	state         SessionState
	pool          []types.Question
	recent        map[string]bool
	used          map[string]bool
	servedIDs     []string
	current       *types.Question
	currentIndex  int
	targetCount   int
	currentBand   types.Band
	correctStreak int
	weakStreak    int
	records       []types.AnswerRecord
	answeredAt    int64

	questions QuestionService
	selector  *Selector
	recency   *RecencyTracker
	sessions  store.Store
	logger    *apperrors.Logger
}

// SessionConfig wires a session's collaborators and starting parameters.
type SessionConfig struct {
	Skill        string
	StartBand    types.Band
	TargetCount  int
	Questions    QuestionService
	Selector     *Selector
	Recency      *RecencyTracker
	SessionStore store.Store
	Logger       *apperrors.Logger
}

// StartSession fetches the question pool, snapshots the recency ledger, and
// serves the first question. A pool fetch failure yields a Failed session and
// the error; an empty pool yields an Exhausted session without error.
func StartSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	s := &Session{
		skill:       strings.TrimSpace(cfg.Skill),
		state:       StateInitializing,
		used:        make(map[string]bool),
		currentBand: cfg.StartBand,
		targetCount: cfg.TargetCount,
		questions:   cfg.Questions,
		selector:    cfg.Selector,
		recency:     cfg.Recency,
		sessions:    cfg.SessionStore,
		logger:      cfg.Logger,
	}
	if s.currentBand == "" {
		s.currentBand = types.BandIntermediate
	}

	pool, err := s.questions.GetQuestions(ctx, s.skill)
	if err != nil {
		s.state = StateFailed
		return s, apperrors.NewServiceError(
			apperrors.ErrCodeBankUnavailable,
			"failed to load questions for skill",
			err,
		).WithContext("skill", s.skill)
	}
	s.pool = pool

	// Target count is clamped then capped by what the pool can actually serve.
	if s.targetCount < 1 {
		s.targetCount = 1
	}
	if s.targetCount > MaxQuestionCount {
		s.targetCount = MaxQuestionCount
	}
	if s.targetCount > len(pool) {
		s.targetCount = len(pool)
	}

	// Snapshot taken once; mid-session selection never re-reads the ledger.
	s.recent = s.recency.Recent(ctx, s.skill)

	first := s.selector.Select(s.currentBand, s.pool, s.used, s.recent)
	if first == nil {
		s.state = StateExhausted
		return s, nil
	}
	s.serve(first)
	s.state = StateAwaitingAnswer
	return s, nil
}

func (s *Session) serve(q *types.Question) {
	s.current = q
	s.used[q.ID] = true
	s.servedIDs = append(s.servedIDs, q.ID)
	s.currentIndex++
}

// SubmitAnswer scores one answer and advances the session. An empty or
// whitespace-only answer is rejected without a state change. A scoring
// failure leaves the session in AwaitingAnswer so the same answer can be
// resubmitted. Pool exhaustion mid-session completes the session with the
// records gathered so far.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) error {
	if s.state.Terminal() {
		return apperrors.NewValidationError(
			apperrors.ErrCodeSessionFinished,
			"session already finished",
			nil,
		).WithContext("state", string(s.state))
	}
	if s.state != StateAwaitingAnswer {
		return apperrors.NewValidationError(
			apperrors.ErrCodeSessionBusy,
			"session is not awaiting an answer",
			nil,
		).WithContext("state", string(s.state))
	}
	if strings.TrimSpace(answer) == "" {
		return apperrors.NewValidationError(
			apperrors.ErrCodeEmptyAnswer,
			"answer must not be empty",
			nil,
		)
	}

	s.state = StateScoring
	result, err := s.questions.ScoreAnswer(ctx, s.skill, s.current.ID, answer)
	if err != nil {
		s.state = StateAwaitingAnswer
		return apperrors.NewServiceError(
			apperrors.ErrCodeScoringFailed,
			"failed to score answer",
			err,
		).WithContext("questionId", s.current.ID)
	}

	record := normalizeRecord(s.currentIndex, s.current, answer, s.currentBand, result)
	s.records = append(s.records, record)

	// Streaks include the answer just scored, then feed the band decision.
	s.correctStreak, s.weakStreak = UpdateStreaks(record.Score, s.correctStreak, s.weakStreak)
	s.currentBand = NextBand(s.currentBand, record.Score, s.correctStreak, s.weakStreak)

	s.state = StateAdvancing
	return s.advance(ctx)
}

func (s *Session) advance(ctx context.Context) error {
	if s.currentIndex >= s.targetCount {
		return s.complete(ctx)
	}

	next := s.selector.Select(s.currentBand, s.pool, s.used, s.recent)
	if next == nil {
		// Not an error; the session just ends with what was gathered.
		return s.complete(ctx)
	}

	s.serve(next)
	s.state = StateAwaitingAnswer
	return nil
}

func (s *Session) complete(ctx context.Context) error {
	s.state = StateCompleted
	s.current = nil
	// Stamped once so the persisted summary and every later Summary() call
	// carry the same timestamp.
	s.answeredAt = types.Now()

	if err := s.recency.RecordServed(ctx, s.skill, s.servedIDs); err != nil {
		s.logger.LogError(err, "failed to record served questions", "skill", s.skill)
	}

	summary := s.Summary()
	if err := store.SetJSON(ctx, s.sessions, SummaryKey, summary); err != nil {
		s.logger.LogError(err, "failed to persist interview summary", "skill", s.skill)
	}
	return nil
}

// normalizeRecord converts a raw score result into an immutable answer
// record, synthesizing expected keywords and answer when the bank omits them.
func normalizeRecord(number int, q *types.Question, answer string, band types.Band, result *types.ScoreResult) types.AnswerRecord {
	expectedKeywords := result.ExpectedKeywords
	if len(expectedKeywords) == 0 {
		expectedKeywords = append(expectedKeywords, result.FoundKeywords...)
		expectedKeywords = append(expectedKeywords, result.MissingKeywords...)
	}
	expectedAnswer := result.ExpectedAnswer
	if expectedAnswer == "" {
		expectedAnswer = strings.Join(expectedKeywords, ", ")
	}

	return types.AnswerRecord{
		QuestionNumber:   number,
		Question:         q.Question,
		QuestionID:       q.ID,
		Answer:           answer,
		Score:            result.Percentage,
		Difficulty:       band,
		Verdict:          result.Verdict,
		MarksAwarded:     result.MarksAwarded,
		TotalMarks:       result.TotalMarks,
		FoundKeywords:    result.FoundKeywords,
		MissingKeywords:  result.MissingKeywords,
		ExpectedKeywords: expectedKeywords,
		ExpectedAnswer:   expectedAnswer,
	}
}

// Summary builds the interview summary for the records gathered so far. For
// a completed session the timestamp is the one fixed at completion.
func (s *Session) Summary() types.InterviewSummary {
	total := 0
	if len(s.records) > 0 {
		sum := 0.0
		for _, r := range s.records {
			sum += r.Score
		}
		total = int(math.Round(sum / float64(len(s.records))))
	}
	answeredAt := s.answeredAt
	if answeredAt == 0 {
		answeredAt = types.Now()
	}
	return types.InterviewSummary{
		Skill:      s.skill,
		TotalScore: total,
		AnsweredAt: answeredAt,
		Answers:    s.records,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Skill returns the skill under verification.
func (s *Session) Skill() string { return s.skill }

// CurrentQuestion returns the question awaiting an answer, nil once terminal.
func (s *Session) CurrentQuestion() *types.Question { return s.current }

// CurrentBand returns the difficulty band of the next question to serve.
func (s *Session) CurrentBand() types.Band { return s.currentBand }

// Progress returns the 1-based index of the current question and the target
// question count.
func (s *Session) Progress() (current, target int) {
	return s.currentIndex, s.targetCount
}

// Records returns the answer records gathered so far.
func (s *Session) Records() []types.AnswerRecord { return s.records }
