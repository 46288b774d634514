package event

import "time"

type Type string

// Event is a telemetry envelope published on the telemetry channel.
// Payload concrete type depends on Type.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func New(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}
