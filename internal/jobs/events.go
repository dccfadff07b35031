package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"xliff-manager/internal/domain"
)

// EventType is the UI channel an event is delivered on.
type EventType string

const (
	EventConversionCompleted EventType = "conversion-completed"
	EventMergeCompleted      EventType = "merge-completed"
	EventValidationResult    EventType = "validation-result"
	EventAnalysisCompleted   EventType = "analysis-completed"
	EventProcessCompleted    EventType = "process-completed"
	EventSetStatus           EventType = "set-status"
	EventShowError           EventType = "show-error"
	EventShowMessage         EventType = "show-message"
	EventShowUpdates         EventType = "show-updates"
	EventShowView            EventType = "show-view"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq       int64           `json:"seq"`
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"type"`
	Kind      domain.JobKind  `json:"kind,omitempty"`
	ProcessID string          `json:"processId,omitempty"`
	State     domain.JobState `json:"state,omitempty"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	Payload   map[string]any  `json:"payload,omitempty"`
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence, id and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Count returns how many buffered events have the given type.
func (b *EventBus) Count(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, event := range b.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}
