package aggregate

import "time"

// defaultRingSize bounds the per-entity recent-event sample.
const defaultRingSize = 32

// minRateSpan floors the denominator so a burst arriving within a few
// milliseconds does not produce an absurd events-per-hour figure.
const minRateSpan = time.Minute

// RecentRing is a fixed-size ring of recent event timestamps used to
// derive a windowed events-per-hour rate. It is a bounded sample, not a
// full window: once the ring wraps, the rate is computed over the span
// actually covered by retained samples.
type RecentRing struct {
	buf     []time.Time
	next    int
	n       int
	wrapped bool
}

// NewRecentRing creates a ring holding up to size samples. A size of
// zero or less selects the default.
func NewRecentRing(size int) *RecentRing {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RecentRing{buf: make([]time.Time, size)}
}

// Observe records one event timestamp, evicting the oldest sample when
// the ring is full.
func (r *RecentRing) Observe(t time.Time) {
	r.buf[r.next] = t
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	} else {
		r.wrapped = true
	}
}

// Len returns the number of retained samples.
func (r *RecentRing) Len() int {
	return r.n
}

// RatePerHour returns the events-per-hour rate over the part of
// [now-window, now] covered by retained samples. The second return is
// false when no retained sample falls inside the window, which callers
// treat as "no recent sample available".
func (r *RecentRing) RatePerHour(now time.Time, window time.Duration) (float64, bool) {
	if r.n == 0 || window <= 0 {
		return 0, false
	}
	windowStart := now.Add(-window)

	var inWindow int
	oldest := now
	for i := 0; i < r.n; i++ {
		t := r.buf[i]
		if t.Before(windowStart) || t.After(now) {
			continue
		}
		inWindow++
		if t.Before(oldest) {
			oldest = t
		}
	}
	if inWindow == 0 {
		return 0, false
	}

	span := window
	if r.wrapped {
		// Older events were evicted; only the span back to the oldest
		// retained sample is actually observed.
		span = now.Sub(oldest)
	}
	if span < minRateSpan {
		span = minRateSpan
	}
	return float64(inWindow) / span.Hours(), true
}
