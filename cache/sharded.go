package cache

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
)

const (
	// DefaultShardCount is the number of independent shards. A power
	// of two, so shard selection is a single mask.
	DefaultShardCount = 16

	// DefaultCapacity is the per-shard capacity used when NewSharded
	// is given a non-positive capacity.
	DefaultCapacity = 256

	shardMask = DefaultShardCount - 1
)

// Hasher computes the hash used for shard selection. It must be
// deterministic for a given key.
type Hasher[K any] func(K) uint64

// StringHasher computes an FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// IntHasher computes an FNV-1a hash of an int key.
func IntHasher(i int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i)) //nolint:gosec // hashing, sign is irrelevant
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Uint64Hasher uses the key itself as the hash.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// shardEntry is one resident key/value pair with the shard's recency
// list threaded through it.
type shardEntry[K comparable, V any] struct {
	key   K
	value V
	newer *shardEntry[K, V]
	older *shardEntry[K, V]
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*shardEntry[K, V]
	head    *shardEntry[K, V]
	tail    *shardEntry[K, V]
}

func (s *shard[K, V]) pushFront(e *shardEntry[K, V]) {
	e.newer = nil
	e.older = s.head
	if s.head != nil {
		s.head.newer = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *shard[K, V]) unlink(e *shardEntry[K, V]) {
	if e.newer != nil {
		e.newer.older = e.older
	} else {
		s.head = e.older
	}
	if e.older != nil {
		e.older.newer = e.newer
	} else {
		s.tail = e.newer
	}
	e.newer, e.older = nil, nil
}

func (s *shard[K, V]) touch(e *shardEntry[K, V]) {
	if s.head == e {
		return
	}
	s.unlink(e)
	s.pushFront(e)
}

// ShardedCache is a thread-safe LRU cache split into DefaultShardCount
// shards, each with its own lock, entry map and recency list. It backs
// concerns that are read from many goroutines at once, such as shaping
// memoization, where a single lock would serialize everything.
//
// Unlike Tiered it stores arbitrary values rather than cells, grows
// nothing past capacity*DefaultShardCount entries, and needs no batch
// protection: callers receive values, not handles into shared storage.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int
	stats    Stats
}

// NewSharded creates a sharded cache holding up to capacity entries per
// shard. A non-positive capacity uses DefaultCapacity. The hasher picks
// the shard for each key; StringHasher, IntHasher and Uint64Hasher
// cover common key types, composite keys supply their own.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{
		hasher:   hasher,
		capacity: capacity,
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*shardEntry[K, V])
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value for key and refreshes its recency.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.stats.Misses.Add(1)
		var zero V
		return zero, false
	}
	s.touch(e)
	value := e.value
	s.mu.Unlock()
	c.stats.Hits.Add(1)
	return value, true
}

// Set stores a value, evicting the shard's least recently used entry if
// the shard is full. The value is stored as-is, not copied; callers
// must not modify it afterwards.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		s.touch(e)
		return
	}
	if len(s.entries) >= c.capacity {
		c.evictOldest(s)
	}
	e := &shardEntry[K, V]{key: key, value: value}
	s.entries[key] = e
	s.pushFront(e)
	c.stats.Insertions.Add(1)
}

// GetOrCreate returns the cached value for key, calling create to fill
// the cache on a miss. create runs with the shard lock held so
// concurrent lookups of the same key compute at most once; keep it
// fast, or prefer Get/Set when it is not.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.touch(e)
		c.stats.Hits.Add(1)
		return e.value
	}
	c.stats.Misses.Add(1)

	value := create()
	if len(s.entries) >= c.capacity {
		c.evictOldest(s)
	}
	e := &shardEntry[K, V]{key: key, value: value}
	s.entries[key] = e
	s.pushFront(e)
	c.stats.Insertions.Add(1)
	return value
}

// evictOldest drops the shard's least recently used entry. The shard
// lock must be held.
func (c *ShardedCache[K, V]) evictOldest(s *shard[K, V]) {
	e := s.tail
	if e == nil {
		return
	}
	s.unlink(e)
	delete(s.entries, e.key)
	c.stats.Evictions.Add(1)
}

// Delete removes an entry, reporting whether it was resident.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(e)
	delete(s.entries, key)
	return true
}

// Clear removes all entries from all shards.
func (c *ShardedCache[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.entries)
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the per-shard capacity.
func (c *ShardedCache[K, V]) Capacity() int { return c.capacity }

// TotalCapacity returns the capacity summed across all shards.
func (c *ShardedCache[K, V]) TotalCapacity() int {
	return c.capacity * DefaultShardCount
}

// Stats returns the cache's live counters.
func (c *ShardedCache[K, V]) Stats() *Stats { return &c.stats }
