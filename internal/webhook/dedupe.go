package webhook

import (
	"sync"
	"time"
)

// Deduper remembers recently seen message ids so transport-level
// delivery retries do not trigger duplicate turns. Entries expire after
// the TTL; the set is additionally capped so a webhook flood cannot
// grow it without bound.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	max  int
	now  func() time.Time
}

// NewDeduper creates a Deduper with the given entry TTL and size cap.
func NewDeduper(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 4096
	}
	return &Deduper{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		max:  max,
		now:  time.Now,
	}
}

// Seen marks id and reports whether it was already present. The first
// call for an id returns false, every call within the TTL returns true.
func (d *Deduper) Seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.evict(now)

	if expiry, ok := d.seen[id]; ok && now.Before(expiry) {
		return true
	}
	d.seen[id] = now.Add(d.ttl)
	return false
}

// evict drops expired entries, and if the cap is still exceeded, the
// entries closest to expiry.
func (d *Deduper) evict(now time.Time) {
	for id, expiry := range d.seen {
		if !now.Before(expiry) {
			delete(d.seen, id)
		}
	}
	for len(d.seen) >= d.max {
		var oldestID string
		var oldest time.Time
		for id, expiry := range d.seen {
			if oldestID == "" || expiry.Before(oldest) {
				oldestID, oldest = id, expiry
			}
		}
		delete(d.seen, oldestID)
	}
}
