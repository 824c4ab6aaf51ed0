// Package event routes typed engine notifications from queues to listener
// handlers. Each payload type gets its own queue; a shared any-typed queue
// observes everything published, which tests and audit tooling tap into.
package event

import "time"

// Context carries routing metadata of a notification event.
type Context struct {
	RunID     string `json:"runId,omitempty"`
	Element   string `json:"element,omitempty"`
	EventType string `json:"eventType,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Event wraps a notification payload with its metadata.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event for the supplied payload.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
