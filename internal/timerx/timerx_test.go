package timerx

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_FiresAfterDelay(t *testing.T) {
	d := New()
	fired := make(chan struct{})

	d.Start(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.False(t, d.Pending())
}

func TestTimer_StartReplacesPending(t *testing.T) {
	d := New()
	var first, second atomic.Int32

	d.Start(20*time.Millisecond, func() { first.Add(1) })
	d.Start(20*time.Millisecond, func() { second.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load(), "replaced callback must not fire")
	assert.Equal(t, int32(1), second.Load())
}

func TestTimer_Cancel(t *testing.T) {
	d := New()
	var fired atomic.Int32

	d.Start(20*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, d.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, d.Cancel(), "nothing pending after cancel")
}

func TestTimer_FlushBypassesDelay(t *testing.T) {
	d := New()
	var fired atomic.Int32

	d.Start(time.Hour, func() { fired.Add(1) })
	d.Flush()

	assert.Equal(t, int32(1), fired.Load())
	assert.False(t, d.Pending())

	// Flushing with nothing pending is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), fired.Load())
}
