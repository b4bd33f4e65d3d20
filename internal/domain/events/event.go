// Package events provides the telemetry event types
package events

import "time"

// Context carries the capture-time context bundle stamped onto every event.
type Context struct {
	Source         string `json:"source"`
	Referrer       string `json:"referrer,omitempty"`
	UserAgent      string `json:"userAgent,omitempty"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
	Locale         string `json:"locale,omitempty"`
}

// Event is a normalized interaction event. Immutable once created.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"eventName"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	Payload   map[string]any `json:"data,omitempty"`
	Context   Context        `json:"context"`
}

// Category returns the leading dotted segment of the event name
// ("content.image.view" -> "content"). Events without a dot map to
// their full name.
func (e Event) Category() string {
	for i := 0; i < len(e.Name); i++ {
		if e.Name[i] == '.' {
			return e.Name[:i]
		}
	}
	return e.Name
}

// Batch groups queued events for one delivery attempt. A failed attempt
// requeues the raw events; the next flush builds a fresh batch.
type Batch struct {
	ID     string  `json:"batchId"`
	Events []Event `json:"events"`
}

// FeedbackRecord captures a user reaction to recommended content.
// Append-only; never mutated.
type FeedbackRecord struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	ContentID string        `json:"contentId"`
	Action    string        `json:"action"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}
