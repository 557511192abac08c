package observability

import "time"

// eventSchemaVersion is bumped whenever the envelope layout changes so
// downstream consumers can branch on it.
const eventSchemaVersion = 1

// EventEnvelope wraps every domain and websocket event published to the
// topic exchange. Payloads carry ids, not aggregates; consumers re-fetch
// whatever state they need.
type EventEnvelope struct {
	SchemaVersion int         `json:"schema_version"`
	Service       string      `json:"service"`
	EventType     string      `json:"event_type"`
	EventName     string      `json:"event_name"`
	OccurredAt    string      `json:"occurred_at"`
	Payload       interface{} `json:"payload"`
}

// NewEventEnvelope stamps an envelope with the service name and the
// current time.
func NewEventEnvelope(eventType, eventName string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		SchemaVersion: eventSchemaVersion,
		Service:       "mom-app",
		EventType:     eventType,
		EventName:     eventName,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Payload:       payload,
	}
}

// BuildHeaders assembles AMQP message headers from request correlation
// ids, omitting empty values.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
