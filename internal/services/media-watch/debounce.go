package media_watch

import "time"

const pruneAbove = 1024

// Debouncer remembers when each key was last let through.
// It is owned by the event loop and is not safe for concurrent use.
type Debouncer struct {
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if now == nil {
		now = time.Now
	}
	return &Debouncer{window: window, now: now, last: make(map[string]time.Time)}
}

// Allow reports whether key may fire now, and how long ago it last fired.
func (d *Debouncer) Allow(key string) (bool, time.Duration) {
	now := d.now()
	if t, ok := d.last[key]; ok {
		since := now.Sub(t)
		if since < d.window {
			return false, since
		}
	}
	d.last[key] = now
	if len(d.last) > pruneAbove {
		d.prune(now)
	}
	return true, 0
}

func (d *Debouncer) prune(now time.Time) {
	for k, t := range d.last {
		if now.Sub(t) >= d.window {
			delete(d.last, k)
		}
	}
}
