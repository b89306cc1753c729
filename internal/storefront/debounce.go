package storefront

import (
	"sync"
	"time"
)

// SearchDebounce is how long the search box waits for typing to settle
const SearchDebounce = 300 * time.Millisecond

// Debouncer runs only the last of a burst of triggers, once the burst has
// been quiet for the window. At most one call is pending at a time.
type Debouncer struct {
	window time.Duration
	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn and cancels whatever was pending
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a timer that fired while being replaced must not run
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Stop drops the pending call, if any. A timer that already fired but has
// not yet run fn is dropped too.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
