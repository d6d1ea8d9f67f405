package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillvet/internal/types"
)

func TestBusRoutesByType(t *testing.T) {
	bus := NewBus()

	var sessionEvents, historyEvents []Event
	bus.Subscribe(TypeSessionCompleted, func(e Event) {
		sessionEvents = append(sessionEvents, e)
	})
	bus.Subscribe(TypeHistoryAppended, func(e Event) {
		historyEvents = append(historyEvents, e)
	})

	bus.Publish(Event{Type: TypeSessionCompleted})
	bus.Publish(Event{Type: TypeSessionCompleted})
	bus.Publish(Event{Type: TypeHistoryAppended})

	assert.Len(t, sessionEvents, 2)
	assert.Len(t, historyEvents, 1)
}

func TestBusWildcardSubscription(t *testing.T) {
	bus := NewBus()

	var all []Event
	bus.Subscribe("", func(e Event) {
		all = append(all, e)
	})

	bus.Publish(Event{Type: TypeSessionCompleted})
	bus.Publish(Event{Type: TypeHistoryAppended})
	bus.Publish(Event{Type: "something.else"})

	assert.Len(t, all, 3)
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBus().Publish(Event{Type: TypeSessionCompleted})
	})
}

func TestNewSessionCompleted(t *testing.T) {
	summary := types.InterviewSummary{
		Skill:      "go",
		TotalScore: 82,
		AnsweredAt: 1234,
		Answers:    []types.AnswerRecord{{QuestionNumber: 1}, {QuestionNumber: 2}},
	}

	e := NewSessionCompleted(summary)
	assert.Equal(t, TypeSessionCompleted, e.Type)

	payload, ok := e.Payload.(SessionCompleted)
	require.True(t, ok)
	assert.Equal(t, "go", payload.Skill)
	assert.Equal(t, 82, payload.TotalScore)
	assert.Equal(t, int64(1234), payload.AnsweredAt)
	assert.Equal(t, 2, payload.Questions)
}

func TestNewHistoryAppended(t *testing.T) {
	entry := types.HistoryEntry{ID: "e1", Skill: "go", FinalScore: 74}

	e := NewHistoryAppended(entry)
	assert.Equal(t, TypeHistoryAppended, e.Type)

	payload, ok := e.Payload.(HistoryAppended)
	require.True(t, ok)
	assert.Equal(t, "e1", payload.EntryID)
	assert.Equal(t, "go", payload.Skill)
	assert.Equal(t, 74, payload.FinalScore)
}
