package ingest

import "github.com/autoops-ai/backend/internal/models"

// EventKind identifies a document lifecycle event.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
)

// Event is delivered to observers after the document state has changed.
// Document is a copy; Message is set for terminal events only.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Document models.Document `json:"document"`
	Message  string          `json:"message,omitempty"`
}

// Observer receives document lifecycle events.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Notifier is the user-facing message sink (toast messages).
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}
