// Package player implements the playback controller state machine and the
// progress persistence gate around a media backend.
package player

import (
	"context"
	"sync"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/media"
)

// State is the playback controller state.
type State string

// Controller states. Ended is terminal per book; opening another book
// re-enters Loading.
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// RelativeSeekStep is the transport jump used by the ±30s controls.
const RelativeSeekStep = 30.0

// BookSource resolves books, prior progress and stream URLs for playback.
// Implemented by the catalog loader plus API client composition in app.
type BookSource interface {
	// ResolveBook returns the book from already-loaded state or by fetch.
	ResolveBook(ctx context.Context, id int64) (*domain.Book, error)
	// ResolveProgress returns prior progress, or nil when unavailable.
	ResolveProgress(ctx context.Context, id int64) *domain.UserProgress
	// AudioURL returns the stream URL for the media backend.
	AudioURL(id int64) string
}

// RateStore persists the chosen playback rate across sessions.
type RateStore interface {
	PlaybackRate() (float64, error)
	SetPlaybackRate(rate float64) error
}

// Status is a point-in-time snapshot of the controller.
type Status struct {
	State    State
	Book     *domain.Book
	Position float64
	Duration float64
	Rate     float64
}

// Controller owns the one media backend instance. All mutations of the
// backend go through it; media lifecycle events are fed back via Apply.
type Controller struct {
	backend media.Player
	source  BookSource
	rates   RateStore
	logger  *logger.Logger

	mu       sync.Mutex
	state    State
	current  *domain.Book
	position float64
	duration float64
	rate     float64
	loadGen  uint64
}

// NewController creates an idle controller. The playback rate persisted in
// a previous session is restored immediately.
func NewController(backend media.Player, source BookSource, rates RateStore, log *logger.Logger) *Controller {
	rate := DefaultRate
	if rates != nil {
		if saved, err := rates.PlaybackRate(); err == nil && ValidRate(saved) {
			rate = saved
		}
	}
	return &Controller{
		backend: backend,
		source:  source,
		rates:   rates,
		logger:  log,
		state:   StateIdle,
		rate:    rate,
	}
}

// Play opens a book: resolve it, resolve prior progress (position 0 when
// unavailable), assign the source, seek to the starting position and start
// playback. A Play call issued while an earlier resolution is still in
// flight wins; the stale resolution is discarded when it completes.
func (c *Controller) Play(ctx context.Context, bookID int64) error {
	c.mu.Lock()
	c.state = StateLoading
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	book, err := c.source.ResolveBook(ctx, bookID)
	if err != nil {
		c.abortLoad(gen)
		return errors.Wrapf(err, errors.CodeNotFound, "book %d unavailable", bookID)
	}

	start := 0.0
	if progress := c.source.ResolveProgress(ctx, bookID); progress != nil {
		start = float64(progress.CurrentPosition)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer Play superseded this resolution; its result must not touch
	// the backend.
	if gen != c.loadGen {
		return nil
	}

	if err := c.backend.Load(ctx, c.source.AudioURL(bookID)); err != nil {
		c.state = StateIdle
		c.current = nil
		return errors.Wrap(err, errors.CodeMedia, "failed to load audio")
	}

	c.current = book
	c.position = start
	c.duration = float64(book.DurationSeconds)

	if start > 0 {
		if err := c.backend.Seek(start); err != nil {
			c.logger.WithError(err).Warn("failed to seek to saved position", "book", bookID)
		}
	}
	if err := c.backend.SetRate(c.rate); err != nil {
		c.logger.WithError(err).Warn("failed to apply playback rate")
	}
	if err := c.backend.Play(); err != nil {
		c.state = StateIdle
		c.current = nil
		return errors.Wrap(err, errors.CodeMedia, "failed to start playback")
	}

	c.logger.Info("playing book", "book", bookID, "title", book.Title, "position", start)
	return nil
}

func (c *Controller) abortLoad(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.loadGen && c.state == StateLoading {
		c.state = StateIdle
		c.current = nil
	}
}

// TogglePause flips between Playing and Paused. Other states ignore it.
func (c *Controller) TogglePause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying:
		if err := c.backend.Pause(); err != nil {
			return errors.Wrap(err, errors.CodeMedia, "pause failed")
		}
		c.state = StatePaused
	case StatePaused:
		if err := c.backend.Play(); err != nil {
			return errors.Wrap(err, errors.CodeMedia, "resume failed")
		}
		c.state = StatePlaying
	}
	return nil
}

// SeekBy moves the position by delta seconds, clamped to [0, duration].
func (c *Controller) SeekBy(delta float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(c.position + delta)
}

// SeekTo moves to an absolute position, clamped to [0, duration]. Works in
// any loaded state regardless of play/pause (bookmark jumps rely on this).
func (c *Controller) SeekTo(position float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(position)
}

// SeekFraction maps a progress-bar click, f in [0,1], onto the duration.
func (c *Controller) SeekFraction(f float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(f * c.duration)
}

func (c *Controller) seekLocked(position float64) error {
	switch c.state {
	case StatePlaying, StatePaused, StateEnded:
	default:
		return nil
	}

	position = clamp(position, 0, c.duration)
	if err := c.backend.Seek(position); err != nil {
		return errors.Wrap(err, errors.CodeMedia, "seek failed")
	}
	c.position = position
	// Seeking back out of the end re-arms the session.
	if c.state == StateEnded {
		c.state = StatePaused
	}
	return nil
}

// CycleRate advances to the next playback rate, wrapping at the end of the
// set. Legal in any non-Idle state; takes effect without interrupting the
// position. The chosen rate is persisted for the next session.
func (c *Controller) CycleRate() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return c.rate, nil
	}

	next := NextRate(c.rate)
	if err := c.backend.SetRate(next); err != nil {
		return c.rate, errors.Wrap(err, errors.CodeMedia, "rate change failed")
	}
	c.rate = next

	if c.rates != nil {
		if err := c.rates.SetPlaybackRate(next); err != nil {
			c.logger.WithError(err).Warn("failed to persist playback rate")
		}
	}
	return next, nil
}

// Apply folds a media lifecycle event into the state machine.
func (c *Controller) Apply(event media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Type {
	case media.EventMetadata:
		if event.Duration > 0 {
			c.duration = event.Duration
		}
		if c.state == StateLoading {
			c.state = StatePlaying
		}
	case media.EventTime:
		c.position = event.Position
		if event.Duration > 0 {
			c.duration = event.Duration
		}
	case media.EventEnded:
		if c.state == StatePlaying || c.state == StatePaused {
			c.state = StateEnded
			c.position = c.duration
		}
	case media.EventError:
		c.logger.WithError(event.Err).Error("media backend failure")
		c.state = StateIdle
		c.current = nil
	}
}

// Snapshot returns the current controller status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:    c.state,
		Book:     c.current,
		Position: c.position,
		Duration: c.duration,
		Rate:     c.rate,
	}
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if high > low && v > high {
		return high
	}
	return v
}
