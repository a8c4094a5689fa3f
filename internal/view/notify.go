package view

import (
	"sync"
	"time"

	"github.com/Cossomoj/booksmood/internal/timerx"
)

// DefaultNotifyDuration is how long a notification stays visible.
const DefaultNotifyDuration = 3 * time.Second

// Notifier holds a single transient status message. Showing a new message
// replaces the current one and restarts the dismiss timer.
type Notifier struct {
	mu       sync.Mutex
	message  string
	timer    *timerx.Timer
	duration time.Duration
	onChange func()
}

func NewNotifier(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultNotifyDuration
	}
	return &Notifier{timer: timerx.New(), duration: duration}
}

// OnChange registers a callback invoked whenever the message appears or
// clears.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Show displays a message and schedules its dismissal.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	n.message = message
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
	n.timer.Start(n.duration, n.dismiss)
}

// Current returns the visible message, empty when dismissed.
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Dismiss clears the message ahead of the timer.
func (n *Notifier) Dismiss() {
	n.timer.Cancel()
	n.dismiss()
}

func (n *Notifier) dismiss() {
	n.mu.Lock()
	cleared := n.message != ""
	n.message = ""
	fn := n.onChange
	n.mu.Unlock()

	if cleared && fn != nil {
		fn()
	}
}
