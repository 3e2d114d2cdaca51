package notify

import (
	"sync"
	"time"
)

// Debouncer collapses rapid successive triggers for the same key into a
// single callback after a quiet period. Change storms (an order save
// touches the header plus every item) therefore produce one broadcast,
// not one per row.
type Debouncer struct {
	window time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer creates a debouncer with the given quiet window
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger schedules fn to run once the key has been quiet for the full
// window. A trigger during the window restarts it.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels all pending callbacks
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
