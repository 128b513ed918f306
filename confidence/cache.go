package confidence

import (
	"container/list"
	"sync"
	"time"
)

// cacheKey is the full input tuple the pipeline is a pure function of
// (spec §4.3, "Determinism").
type cacheKey struct {
	Text        string
	Position    int
	RuleID      string
	ContentType string
	Threshold   float64
	Evidence    float64
	HasEvidence bool
}

type cacheEntry struct {
	key        cacheKey
	confidence float64
	breakdown  Breakdown
	storedAt   time.Time
}

// LRU is a bounded, TTL-invalidated cache of (inputs) -> (confidence,
// breakdown), keyed by the pipeline's full input tuple (spec §4.3,
// "Caching"). Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	index    map[cacheKey]*list.Element
}

// NewLRU returns an LRU with the given capacity (default 1000 per spec) and
// TTL (config-driven; entries never outlive a reload because Invalidate is
// called on every config swap).
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1000
	}
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[cacheKey]*list.Element),
	}
}

// Get returns a cached result for key if present and not expired.
func (c *LRU) Get(key cacheKey) (float64, Breakdown, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return 0, Breakdown{}, false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && time.Since(entry.storedAt) > c.ttl {
		c.ll.Remove(el)
		delete(c.index, key)
		return 0, Breakdown{}, false
	}
	c.ll.MoveToFront(el)
	return entry.confidence, entry.breakdown, true
}

// Put stores a result for key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *LRU) Put(key cacheKey, confidence float64, breakdown Breakdown) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).confidence = confidence
		el.Value.(*cacheEntry).breakdown = breakdown
		el.Value.(*cacheEntry).storedAt = time.Now()
		c.ll.MoveToFront(el)
		return
	}

	entry := &cacheEntry{key: key, confidence: confidence, breakdown: breakdown, storedAt: time.Now()}
	el := c.ll.PushFront(entry)
	c.index[key] = el

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).key)
	}
}

// Invalidate empties the cache. Called whenever any config layer reloads
// (spec §4.3, "TTL-based invalidation when any config layer reloads").
func (c *LRU) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.index = make(map[cacheKey]*list.Element)
}

// Len returns the number of cached entries, for diagnostics and tests.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
