package notification

import (
	"sync"
	"time"
)

// Toast is a transient banner for a single incoming notification.
type Toast struct {
	Title       string
	Description string
	Color       Color
	ShownAt     time.Time
}

// Announcer holds at most one visible toast. A new announcement replaces the
// current one immediately; toasts are never queued.
type Announcer struct {
	mu       sync.Mutex
	current  *Toast
	timer    *time.Timer
	duration time.Duration
	onChange func(*Toast)
}

// NewAnnouncer creates an announcer with the given visibility duration.
// onChange is invoked with the new toast on every announcement and with nil
// when the toast clears; it may be nil.
func NewAnnouncer(duration time.Duration, onChange func(*Toast)) *Announcer {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Announcer{duration: duration, onChange: onChange}
}

// Announce shows a toast for the record, replacing any pending toast and
// restarting the auto-dismiss timer.
func (a *Announcer) Announce(n *Notification) {
	display := Classify(n)
	toast := &Toast{
		Title:       display.Title,
		Description: display.Description,
		Color:       display.Color,
		ShownAt:     time.Now(),
	}

	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.current = toast
	a.timer = time.AfterFunc(a.duration, func() { a.clear(toast) })
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(toast)
	}
}

// clear removes the toast if it is still the visible one. A toast replaced
// before its timer fires must not clear its successor.
func (a *Announcer) clear(toast *Toast) {
	a.mu.Lock()
	if a.current != toast {
		a.mu.Unlock()
		return
	}
	a.current = nil
	a.timer = nil
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(nil)
	}
}

// Current returns the visible toast, or nil.
func (a *Announcer) Current() *Toast {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Stop cancels the pending dismiss timer and drops the current toast.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.current = nil
}
