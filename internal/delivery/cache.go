package delivery

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache remembers the last quote per store so repeated previews for the same
// customer location skip the directions API. A new location overwrites the
// old entry; the latest write wins.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	customer Point
	info     *Info
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached quote for the store if it was computed for the same
// customer point and has not expired.
func (c *Cache) Get(storeID uuid.UUID, customer Point) (*Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[storeID]
	if !ok || e.customer != customer {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, storeID)
		return nil, false
	}
	return e.info, true
}

func (c *Cache) Put(storeID uuid.UUID, customer Point, info *Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[storeID] = cacheEntry{customer: customer, info: info, storedAt: c.now()}
}
