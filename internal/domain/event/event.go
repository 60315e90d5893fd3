package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event emitted after a committed workflow change.
// Side-effect handlers (notification, certificate rendering) consume events
// asynchronously; the workflow transition itself never depends on them.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApplicationID int64                  `json:"application_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a domain event with a generated ID and timestamp
func New(eventType Type, applicationID int64, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, applicationID int64, payload map[string]interface{}, correlationID string) *Event {
	e := New(eventType, applicationID, payload)
	e.CorrelationID = correlationID
	return e
}

// GetString retrieves a string value from the payload
func (e *Event) GetString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt retrieves an int64 value from the payload
func (e *Event) GetInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// GetBool retrieves a bool value from the payload
func (e *Event) GetBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
