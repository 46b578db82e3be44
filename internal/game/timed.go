package game

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// Timers tracks "active until T" state for a closed set of keys.
// Expiries are absolute and compared against the single per-tick now.
// Activating an already-active key overwrites its expiry.
type Timers[K cmp.Ordered] struct {
	expiry map[K]time.Time
}

// NewTimers creates an empty tracker.
func NewTimers[K cmp.Ordered]() *Timers[K] {
	return &Timers[K]{expiry: make(map[K]time.Time)}
}

// Activate records expiry = now + d for key.
func (t *Timers[K]) Activate(key K, now time.Time, d time.Duration) {
	t.expiry[key] = now.Add(d)
}

// Deactivate removes key. Unknown keys are a no-op.
func (t *Timers[K]) Deactivate(key K) {
	delete(t.expiry, key)
}

// Active reports whether key is currently tracked.
func (t *Timers[K]) Active(key K) bool {
	_, ok := t.expiry[key]
	return ok
}

// Expiry returns key's deadline, or the zero time when unset.
func (t *Timers[K]) Expiry(key K) time.Time {
	return t.expiry[key]
}

// Remaining returns the time left for key at now, zero if inactive or past.
func (t *Timers[K]) Remaining(key K, now time.Time) time.Duration {
	exp, ok := t.expiry[key]
	if !ok || !now.Before(exp) {
		return 0
	}
	return exp.Sub(now)
}

// Tick removes and returns every key whose expiry is at or before now,
// in ascending key order.
func (t *Timers[K]) Tick(now time.Time) []K {
	var expired []K
	for k, exp := range t.expiry {
		if !now.Before(exp) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(t.expiry, k)
	}
	slices.Sort(expired)
	return expired
}

// Len returns the number of active keys.
func (t *Timers[K]) Len() int {
	return len(t.expiry)
}

// Each calls fn for every active key in ascending key order.
func (t *Timers[K]) Each(fn func(key K, expiry time.Time)) {
	for _, k := range slices.Sorted(maps.Keys(t.expiry)) {
		fn(k, t.expiry[k])
	}
}

// Clear removes every key.
func (t *Timers[K]) Clear() {
	clear(t.expiry)
}
