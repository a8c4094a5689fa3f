package player

import (
	"context"
	"math"
	"time"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/logger"
)

// ProgressPusher is the backend surface the persister needs.
type ProgressPusher interface {
	PushProgress(ctx context.Context, bookID int64, position, duration int) error
	FinishBook(ctx context.Context, bookID int64) error
}

// ProgressCache keeps a local copy of pushed progress as a read fallback.
type ProgressCache interface {
	CacheProgress(p *domain.UserProgress) error
}

// Persister pushes playback positions to the backend, throttled by a
// combined gate: a push happens only when both the elapsed time since the
// last push reaches Interval and the position moved by at least MinDelta.
// Finishing a book bypasses the gate. Persistence failures never interrupt
// playback; they are logged and swallowed.
type Persister struct {
	pusher  ProgressPusher
	cache   ProgressCache
	logger  *logger.Logger
	enabled func() bool

	interval time.Duration
	minDelta float64

	// now is replaceable for tests.
	now func() time.Time

	bookID   int64
	lastPush time.Time
	lastPos  float64
}

// NewPersister creates a persister. enabled gates all pushes; an anonymous
// session silently records nothing.
func NewPersister(pusher ProgressPusher, cache ProgressCache, log *logger.Logger, interval, minDelta time.Duration, enabled func() bool) *Persister {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Persister{
		pusher:   pusher,
		cache:    cache,
		logger:   log,
		enabled:  enabled,
		interval: interval,
		minDelta: minDelta.Seconds(),
		now:      time.Now,
	}
}

// Sample records a playback position observation. The first sample for a
// book establishes the baseline without pushing.
func (p *Persister) Sample(ctx context.Context, bookID int64, position, duration float64) {
	if !p.enabled() || bookID == 0 {
		return
	}

	if bookID != p.bookID {
		p.bookID = bookID
		p.lastPush = p.now()
		p.lastPos = position
		return
	}

	if p.now().Sub(p.lastPush) < p.interval {
		return
	}
	if math.Abs(position-p.lastPos) < p.minDelta {
		return
	}

	p.push(ctx, bookID, position, duration)
}

// Flush pushes the current position regardless of the time gate. Used when
// playback stops or the app shuts down. Positions that never moved since
// the last push are skipped.
func (p *Persister) Flush(ctx context.Context, bookID int64, position, duration float64) {
	if !p.enabled() || bookID == 0 || bookID != p.bookID {
		return
	}
	if position == p.lastPos {
		return
	}
	p.push(ctx, bookID, position, duration)
}

// Finish reports book completion, bypassing the gate entirely.
func (p *Persister) Finish(ctx context.Context, bookID int64, duration float64) {
	if !p.enabled() || bookID == 0 {
		return
	}

	if err := p.pusher.FinishBook(ctx, bookID); err != nil {
		p.logger.WithError(err).Warn("failed to mark book finished", "book", bookID)
		return
	}
	p.remember(bookID, duration, duration, true)
	p.lastPush = p.now()
	p.lastPos = duration
	p.logger.Info("book finished", "book", bookID)
}

func (p *Persister) push(ctx context.Context, bookID int64, position, duration float64) {
	pos := int(math.Floor(position))
	dur := int(math.Floor(duration))

	if err := p.pusher.PushProgress(ctx, bookID, pos, dur); err != nil {
		// Never block or interrupt playback over a failed push; the next
		// gate window retries naturally.
		p.logger.WithError(err).Warn("failed to push progress", "book", bookID, "position", pos)
		p.lastPush = p.now()
		return
	}

	p.lastPush = p.now()
	p.lastPos = position
	p.remember(bookID, position, duration, false)
	p.logger.Debug("progress pushed", "book", bookID, "position", pos)
}

func (p *Persister) remember(bookID int64, position, duration float64, finished bool) {
	if p.cache == nil {
		return
	}
	err := p.cache.CacheProgress(&domain.UserProgress{
		BookID:          bookID,
		CurrentPosition: int(math.Floor(position)),
		TotalDuration:   int(math.Floor(duration)),
		IsFinished:      finished,
	})
	if err != nil {
		p.logger.WithError(err).Debug("failed to cache progress locally")
	}
}
