// Package event describes what happens while units run: every lifecycle
// milestone is published as an Event to the listeners registered on the unit
// and to the publisher carried by the run context.
package event

import (
	"time"
)

// Type identifies a lifecycle milestone.
type Type string

const (
	NodeStart     Type = "node.start"
	NodeEnd       Type = "node.end"
	NodeRetry     Type = "node.retry"
	NodeFallback  Type = "node.fallback"
	FlowUnmatched Type = "flow.unmatched"
	FlowPass      Type = "flow.pass"
)

// Context locates an event within a run.
type Context struct {
	RunID     string        `json:"runID,omitempty"`
	Node      string        `json:"node"`
	Kind      string        `json:"kind"`
	EventType Type          `json:"eventType"`
	Action    string        `json:"action,omitempty"`
	Attempt   int           `json:"attempt,omitempty"`
	Pass      int           `json:"pass,omitempty"`
	TimeTaken time.Duration `json:"timeTaken,omitempty"`
}

// Event is a single lifecycle notification.
type Event struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Err       error                  `json:"-"`
}

// NewEvent creates an event for the supplied context; err may be nil.
func NewEvent(context *Context, err error) *Event {
	ret := &Event{
		Context:   context,
		CreatedAt: time.Now(),
		Err:       err,
	}
	if err != nil {
		ret.Error = err.Error()
	}
	return ret
}

// Failed reports whether the event carries an error.
func (e *Event) Failed() bool {
	return e != nil && e.Err != nil
}
