package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/events"
	"skillvet/internal/observability"
	"skillvet/internal/store"
	"skillvet/internal/types"
	"skillvet/internal/verify"
)

type staticBank struct{}

func (staticBank) GetQuestions(ctx context.Context, skill string) ([]types.Question, error) {
	return []types.Question{
		{ID: "q1", Level: "Intermediate", Question: "Explain channels."},
		{ID: "q2", Level: "Intermediate", Question: "Explain select."},
	}, nil
}

func (staticBank) ScoreAnswer(ctx context.Context, skill, questionID, answer string) (*types.ScoreResult, error) {
	return &types.ScoreResult{Percentage: 60, Verdict: "Moderate"}, nil
}

type zeroRand struct{}

func (zeroRand) Intn(n int) int { return 0 }

func newTestSession(t *testing.T) *verify.Session {
	t.Helper()
	session, err := verify.StartSession(context.Background(), verify.SessionConfig{
		Skill:        "go",
		StartBand:    types.BandIntermediate,
		TargetCount:  2,
		Questions:    staticBank{},
		Selector:     verify.NewSelector(zeroRand{}),
		Recency:      verify.NewRecencyTracker(store.NewMemoryStore()),
		SessionStore: store.NewMemoryStore(),
		Logger:       apperrors.NewLogger(slog.LevelError),
	})
	require.NoError(t, err)
	return session
}

func TestRegistryAddAndWith(t *testing.T) {
	r := NewSessionRegistry()
	defer r.Close()

	id := r.Add(newTestSession(t))
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())

	var skill string
	err := r.With(id, func(s *verify.Session) error {
		skill = s.Skill()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "go", skill)
}

func TestRegistryUnknownID(t *testing.T) {
	r := NewSessionRegistry()
	defer r.Close()

	err := r.With("no-such-id", func(s *verify.Session) error { return nil })
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, appErr.Code)
}

func TestRegistryReportsBusySession(t *testing.T) {
	r := NewSessionRegistry()
	defer r.Close()

	id := r.Add(newTestSession(t))

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.With(id, func(s *verify.Session) error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err := r.With(id, func(s *verify.Session) error { return nil })
	close(release)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeSessionBusy, appErr.Code)
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	r := &SessionRegistry{
		sessions: make(map[string]*managedSession),
		done:     make(chan struct{}),
	}

	stale := r.Add(newTestSession(t))
	fresh := r.Add(newTestSession(t))

	r.mu.Lock()
	r.sessions[stale].lastUsed = time.Now().Add(-2 * sessionIdleTTL)
	r.mu.Unlock()

	r.evictIdle()

	assert.Equal(t, 1, r.Len())
	assert.Error(t, r.With(stale, func(s *verify.Session) error { return nil }))
	assert.NoError(t, r.With(fresh, func(s *verify.Session) error { return nil }))
}

func TestRegistryEvictionSkipsLockedSessions(t *testing.T) {
	r := &SessionRegistry{
		sessions: make(map[string]*managedSession),
		done:     make(chan struct{}),
	}

	id := r.Add(newTestSession(t))
	r.mu.Lock()
	managed := r.sessions[id]
	managed.lastUsed = time.Now().Add(-2 * sessionIdleTTL)
	r.mu.Unlock()

	managed.mu.Lock()
	r.evictIdle()
	managed.mu.Unlock()

	assert.Equal(t, 1, r.Len(), "a session mid-request is never evicted")
}

func TestSessionCompletedEventPublishesOutsideSessionLock(t *testing.T) {
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{}, nil)
	require.NoError(t, err)

	registry := NewSessionRegistry()
	defer registry.Close()
	id := registry.Add(newTestSession(t))

	// Bus delivery is synchronous, so a subscriber touching the session
	// observes the lock state at publish time.
	bus := events.NewBus()
	var completedEvents int
	var lockErr error
	bus.Subscribe(events.TypeSessionCompleted, func(e events.Event) {
		completedEvents++
		lockErr = registry.With(id, func(s *verify.Session) error { return nil })
	})

	srv := &Server{
		Deps:   Dependencies{Registry: registry, Events: bus},
		Logger: apperrors.NewLogger(slog.LevelError),
	}
	handler := srv.createAnswerHandler(om)

	submit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/verify/"+id+"/answer",
			strings.NewReader(`{"answer": "an answer"}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, submit())
	require.Equal(t, http.StatusOK, submit(), "second answer completes the session")

	require.Equal(t, 1, completedEvents)
	assert.NoError(t, lockErr, "subscribers can use the session while the completion event is delivered")
}

func TestSessionView(t *testing.T) {
	session := newTestSession(t)

	view := sessionView("abc", session, true)
	assert.Equal(t, "abc", view.SessionID)
	assert.Equal(t, "awaiting_answer", view.State)
	assert.Equal(t, "go", view.Skill)
	assert.Equal(t, "intermediate", view.Band)
	assert.Equal(t, 1, view.QuestionNumber)
	assert.Equal(t, 2, view.TargetCount)
	require.NotNil(t, view.Question)
	assert.Nil(t, view.LastAnswer, "no answers recorded yet")
	assert.Nil(t, view.Summary)

	require.NoError(t, session.SubmitAnswer(context.Background(), "an answer"))
	view = sessionView("abc", session, true)
	require.NotNil(t, view.LastAnswer)
	assert.Equal(t, "q1", view.LastAnswer.QuestionID)

	view = sessionView("abc", session, false)
	assert.Nil(t, view.LastAnswer, "last answer only attaches when requested")
}
