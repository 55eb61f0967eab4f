// Package models defines the event records and formatted description blocks.
package models

// Event is one game event as exported from the event store.
type Event struct {
	EventID        string `json:"eventId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	StartTimestamp int64  `json:"startTimestamp,omitempty"`
	EndTimestamp   int64  `json:"endTimestamp,omitempty"`
	Version        string `json:"version,omitempty"`
	Sentiment      string `json:"sentiment,omitempty"`
	LastUpdated    string `json:"lastUpdated,omitempty"`
}

// HasPeriod reports whether both ends of the event period are known.
func (e *Event) HasPeriod() bool {
	return e.StartDate != "" && e.EndDate != ""
}

// FormattedEvent is an event with its parsed description.
type FormattedEvent struct {
	Event
	Document Document `json:"formatted"`
}
