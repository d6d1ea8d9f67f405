// Package events carries the typed notifications emitted when sessions
// complete and history grows, with an optional bridge onto a RabbitMQ topic
// exchange.
package events

import (
	"sync"

	"skillvet/internal/types"
)

// Event routing keys.
const (
	TypeSessionCompleted = "verification.session.completed"
	TypeHistoryAppended  = "history.appended"
)

// SessionCompleted is emitted once per completed verification session.
type SessionCompleted struct {
	Skill      string `json:"skill"`
	TotalScore int    `json:"totalScore"`
	AnsweredAt int64  `json:"answeredAt"`
	Questions  int    `json:"questions"`
}

// HistoryAppended is emitted when an attempt first lands in durable history.
type HistoryAppended struct {
	EntryID    string `json:"entryId"`
	Skill      string `json:"skill"`
	FinalScore int    `json:"finalScore"`
}

// Event pairs a routing key with its payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewSessionCompleted builds the event for a finished summary.
func NewSessionCompleted(summary types.InterviewSummary) Event {
	return Event{
		Type: TypeSessionCompleted,
		Payload: SessionCompleted{
			Skill:      summary.Skill,
			TotalScore: summary.TotalScore,
			AnsweredAt: summary.AnsweredAt,
			Questions:  len(summary.Answers),
		},
	}
}

// NewHistoryAppended builds the event for a new history entry.
func NewHistoryAppended(entry types.HistoryEntry) Event {
	return Event{
		Type: TypeHistoryAppended,
		Payload: HistoryAppended{
			EntryID:    entry.ID,
			Skill:      entry.Skill,
			FinalScore: entry.FinalScore,
		},
	}
}

// Handler consumes one event. Handlers must not block.
type Handler func(Event)

// Bus is a minimal in-process publish/subscribe hub. Subscriptions are
// per-type; an empty type subscribes to everything.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for the given event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers the event synchronously to every matching handler.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := append([]Handler{}, b.handlers[e.Type]...)
	handlers = append(handlers, b.handlers[""]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
