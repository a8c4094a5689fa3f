package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
)

type pushCall struct {
	bookID   int64
	position int
	duration int
}

type fakePusher struct {
	pushes   []pushCall
	finished []int64
	pushErr  error
}

func (f *fakePusher) PushProgress(_ context.Context, bookID int64, position, duration int) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, pushCall{bookID, position, duration})
	return nil
}

func (f *fakePusher) FinishBook(_ context.Context, bookID int64) error {
	f.finished = append(f.finished, bookID)
	return nil
}

type fakeCache struct {
	entries []*domain.UserProgress
}

func (f *fakeCache) CacheProgress(p *domain.UserProgress) error {
	f.entries = append(f.entries, p)
	return nil
}

// manualClock advances only when told to, so gate windows are exact.
type manualClock struct {
	t time.Time
}

func (c *manualClock) now() time.Time { return c.t }

func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newPersisterFixture(enabled bool) (*Persister, *fakePusher, *fakeCache, *manualClock) {
	pusher := &fakePusher{}
	cache := &fakeCache{}
	clock := &manualClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	p := NewPersister(pusher, cache, quietLogger(), 30*time.Second, 5*time.Second, func() bool { return enabled })
	p.now = clock.now
	return p, pusher, cache, clock
}

func TestPersister_FirstSampleIsBaselineOnly(t *testing.T) {
	p, pusher, _, _ := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 100, 3600)

	assert.Empty(t, pusher.pushes, "first observation must not push")
}

func TestPersister_GateRequiresBothElapsedAndDelta(t *testing.T) {
	tests := []struct {
		name     string
		advance  time.Duration
		position float64
		want     bool
	}{
		{"too soon and too close", 10 * time.Second, 102, false},
		{"enough time, too close", 31 * time.Second, 103, false},
		{"enough movement, too soon", 10 * time.Second, 200, false},
		{"both satisfied", 31 * time.Second, 200, true},
		{"backwards movement counts", 31 * time.Second, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, pusher, _, clock := newPersisterFixture(true)
			p.Sample(context.Background(), 1, 100, 3600)

			clock.advance(tt.advance)
			p.Sample(context.Background(), 1, tt.position, 3600)

			if tt.want {
				require.Len(t, pusher.pushes, 1)
				assert.Equal(t, pushCall{1, int(tt.position), 3600}, pusher.pushes[0])
			} else {
				assert.Empty(t, pusher.pushes)
			}
		})
	}
}

func TestPersister_TickingSamplesPushPeriodically(t *testing.T) {
	p, pusher, _, clock := newPersisterFixture(true)

	// One observation per second for two minutes of playback.
	pos := 0.0
	for i := 0; i < 120; i++ {
		p.Sample(context.Background(), 1, pos, 3600)
		clock.advance(time.Second)
		pos++
	}

	// The gate opens at most once per interval.
	require.Len(t, pusher.pushes, 3)
	assert.Equal(t, 30, pusher.pushes[0].position)
	assert.Equal(t, 60, pusher.pushes[1].position)
	assert.Equal(t, 90, pusher.pushes[2].position)
}

func TestPersister_SwitchingBooksResetsBaseline(t *testing.T) {
	p, pusher, _, clock := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 100, 3600)
	clock.advance(31 * time.Second)

	// A different book starts a new baseline instead of pushing.
	p.Sample(context.Background(), 2, 500, 1800)
	assert.Empty(t, pusher.pushes)

	clock.advance(31 * time.Second)
	p.Sample(context.Background(), 2, 540, 1800)
	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, int64(2), pusher.pushes[0].bookID)
}

func TestPersister_FlushBypassesTimeGate(t *testing.T) {
	p, pusher, _, clock := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 100, 3600)
	clock.advance(2 * time.Second)

	p.Flush(context.Background(), 1, 107, 3600)
	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, 107, pusher.pushes[0].position)
}

func TestPersister_FlushSkipsUnmovedPosition(t *testing.T) {
	p, pusher, _, _ := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 100, 3600)
	p.Flush(context.Background(), 1, 100, 3600)

	assert.Empty(t, pusher.pushes)
}

func TestPersister_FinishBypassesGate(t *testing.T) {
	p, pusher, cache, _ := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 3590, 3600)
	p.Finish(context.Background(), 1, 3600)

	assert.Equal(t, []int64{1}, pusher.finished)
	require.Len(t, cache.entries, 1)
	assert.True(t, cache.entries[0].IsFinished)
	assert.Equal(t, 3600, cache.entries[0].CurrentPosition)
}

func TestPersister_PushFailureIsSwallowed(t *testing.T) {
	p, pusher, cache, clock := newPersisterFixture(true)
	pusher.pushErr = errors.Unavailable("backend down")

	p.Sample(context.Background(), 1, 0, 3600)
	clock.advance(31 * time.Second)
	p.Sample(context.Background(), 1, 31, 3600)

	assert.Empty(t, pusher.pushes)
	assert.Empty(t, cache.entries, "failed pushes are not cached")

	// After recovery the next window retries from the old baseline.
	pusher.pushErr = nil
	clock.advance(31 * time.Second)
	p.Sample(context.Background(), 1, 62, 3600)
	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, 62, pusher.pushes[0].position)
}

func TestPersister_DisabledRecordsNothing(t *testing.T) {
	p, pusher, _, clock := newPersisterFixture(false)

	p.Sample(context.Background(), 1, 0, 3600)
	clock.advance(time.Minute)
	p.Sample(context.Background(), 1, 60, 3600)
	p.Flush(context.Background(), 1, 90, 3600)
	p.Finish(context.Background(), 1, 3600)

	assert.Empty(t, pusher.pushes)
	assert.Empty(t, pusher.finished)
}

func TestPersister_SuccessfulPushIsCached(t *testing.T) {
	p, pusher, cache, clock := newPersisterFixture(true)

	p.Sample(context.Background(), 1, 0, 3600)
	clock.advance(31 * time.Second)
	p.Sample(context.Background(), 1, 31.7, 3600)

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, 31, pusher.pushes[0].position, "positions are floored to whole seconds")
	require.Len(t, cache.entries, 1)
	assert.Equal(t, 31, cache.entries[0].CurrentPosition)
	assert.False(t, cache.entries[0].IsFinished)
}
