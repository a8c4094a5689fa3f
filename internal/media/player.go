// Package media defines the playback backend abstraction. The controller
// owns exactly one Player and is the only writer to it; backends report
// lifecycle changes through the Events channel.
package media

import "context"

// EventType identifies a playback lifecycle event.
type EventType string

// Playback lifecycle events.
const (
	// EventMetadata fires once the source's duration is known.
	EventMetadata EventType = "metadata"
	// EventTime fires on playback position updates (roughly 1Hz).
	EventTime EventType = "time"
	// EventEnded fires when playback reaches the end of the source.
	EventEnded EventType = "ended"
	// EventError fires on an unrecoverable backend failure.
	EventError EventType = "error"
)

// Event is a single playback lifecycle notification.
type Event struct {
	Type EventType
	// Position in seconds. Set for EventTime.
	Position float64
	// Duration in seconds. Set for EventMetadata and EventTime.
	Duration float64
	// Err is set for EventError.
	Err error
}

// Player is a media playback backend.
//
// Load replaces the current source; implementations must complete or fail a
// pending load before accepting another (the controller guarantees it never
// reassigns the source while a load is in flight).
type Player interface {
	Load(ctx context.Context, url string) error
	Play() error
	Pause() error
	// Seek moves to an absolute position in seconds. The backend does not
	// clamp; the controller passes positions already clamped to [0, duration].
	Seek(position float64) error
	SetRate(rate float64) error
	Position() (float64, error)
	Duration() (float64, error)
	Events() <-chan Event
	Close() error
}
