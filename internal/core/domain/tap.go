package domain

import "time"

// Station identifies which physical station recorded a tap.
type Station string

const (
	StationStart Station = "start"
	StationStop  Station = "stop"
)

// EventEnvelope carries the fields every tap event shares. IdentityName is a
// denormalized snapshot taken at write time so the log stays meaningful even
// if the identity record later changes.
type EventEnvelope struct {
	ID           string
	IdentityID   string
	IdentityName string
	Timestamp    time.Time
}

// TapEvent is the union of the two tap variants. The log is append-only:
// events are never mutated or deleted outside an administrative clear.
type TapEvent interface {
	Station() Station
	Envelope() EventEnvelope
}

// StartEvent records an identity tapping in at the start station.
type StartEvent struct {
	EventEnvelope
}

func (StartEvent) Station() Station { return StationStart }

func (e StartEvent) Envelope() EventEnvelope { return e.EventEnvelope }

// StopEvent records an identity tapping out. DurationSeconds is derived at
// write time from the active session being closed and may be zero.
type StopEvent struct {
	EventEnvelope
	DurationSeconds int64
}

func (StopEvent) Station() Station { return StationStop }

func (e StopEvent) Envelope() EventEnvelope { return e.EventEnvelope }
