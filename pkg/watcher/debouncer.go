// Package watcher re-solves a fixture file on every edit it sees on disk.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the debounce window used for fixture edits. An
// editor's save is often several writes in quick succession (truncate, then
// content, then a rename-into-place); without coalescing, each would trigger
// its own re-solve of what is likely still a mid-edit, invalid graph.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces a burst of fixture-change events into a single
// re-solve. Only the last Trigger call within the debounce window actually
// runs its callback.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	seq      uint64
}

// NewDebouncer creates a Debouncer with the given duration. A zero duration
// uses DefaultDebounceDuration.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{
		duration: duration,
	}
}

// Trigger schedules callback (typically a re-solve) to run after the
// debounce duration. A Trigger call before the duration elapses cancels the
// pending run and restarts the window, so a flurry of writes to the same
// fixture collapses into one solve of its final state.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		shouldRun := func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()

			// Only run the most recently scheduled callback. This avoids races where
			// Stop() returns false because the timer has already fired and the old
			// callback starts running concurrently.
			if seq != d.seq {
				return false
			}
			d.timer = nil
			return true
		}()
		if !shouldRun {
			return
		}

		callback()
	})
}

// Cancel cancels any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Invalidate any callback that might already be executing due to timer races.
	d.seq++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the debounce duration.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
