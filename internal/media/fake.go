package media

import (
	"context"
	"sync"
)

// Fake is a scriptable in-memory Player for tests. Event emission is
// explicit: tests call EmitMetadata/EmitTime/EmitEnded/EmitError to simulate
// the backend's lifecycle.
type Fake struct {
	mu sync.Mutex

	LoadedURL string
	LoadErr   error
	PlayErr   error

	playing  bool
	position float64
	duration float64
	rate     float64

	LoadCalls []string
	SeekCalls []float64
	RateCalls []float64

	events chan Event
	closed bool
}

// NewFake creates a fake player with a generous event buffer.
func NewFake() *Fake {
	return &Fake{
		rate:   1.0,
		events: make(chan Event, 64),
	}
}

// Load records the URL and resets position state.
func (f *Fake) Load(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.LoadedURL = url
	f.LoadCalls = append(f.LoadCalls, url)
	f.position = 0
	f.playing = false
	return nil
}

// Play marks the fake as playing.
func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.playing = true
	return nil
}

// Pause marks the fake as paused.
func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	return nil
}

// Seek records and applies the position.
func (f *Fake) Seek(position float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SeekCalls = append(f.SeekCalls, position)
	f.position = position
	return nil
}

// SetRate records and applies the rate.
func (f *Fake) SetRate(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RateCalls = append(f.RateCalls, rate)
	f.rate = rate
	return nil
}

// Position returns the scripted position.
func (f *Fake) Position() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

// Duration returns the scripted duration.
func (f *Fake) Duration() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, nil
}

// Events returns the event stream.
func (f *Fake) Events() <-chan Event {
	return f.events
}

// Close closes the event stream.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// Playing reports the scripted playing state.
func (f *Fake) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Rate returns the last applied rate.
func (f *Fake) Rate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

// SetDuration scripts the duration without emitting an event.
func (f *Fake) SetDuration(d float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration = d
}

// EmitMetadata scripts the duration and emits a metadata event.
func (f *Fake) EmitMetadata(duration float64) {
	f.mu.Lock()
	f.duration = duration
	f.mu.Unlock()
	f.events <- Event{Type: EventMetadata, Duration: duration}
}

// EmitTime advances the position and emits a time event.
func (f *Fake) EmitTime(position float64) {
	f.mu.Lock()
	f.position = position
	duration := f.duration
	f.mu.Unlock()
	f.events <- Event{Type: EventTime, Position: position, Duration: duration}
}

// EmitEnded emits an end-of-source event.
func (f *Fake) EmitEnded() {
	f.mu.Lock()
	f.playing = false
	f.mu.Unlock()
	f.events <- Event{Type: EventEnded}
}

// EmitError emits a backend failure event.
func (f *Fake) EmitError(err error) {
	f.events <- Event{Type: EventError, Err: err}
}
