package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestNewSharded(t *testing.T) {
	c := NewSharded[string, int](100, StringHasher)
	if c.Capacity() != 100 {
		t.Errorf("Capacity = %d, want 100", c.Capacity())
	}
	if c.TotalCapacity() != 100*DefaultShardCount {
		t.Errorf("TotalCapacity = %d, want %d", c.TotalCapacity(), 100*DefaultShardCount)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}

	c = NewSharded[string, int](0, StringHasher)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity with zero argument = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}

func TestShardedGetSet(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)
	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = (%d, %v), want (42, true)", val, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("Get(nonexistent) reported a hit")
	}

	// Overwriting keeps a single entry.
	c.Set("key1", 43)
	if val, _ := c.Get("key1"); val != 43 {
		t.Errorf("Get after overwrite = %d, want 43", val)
	}
	if c.Len() != 1 {
		t.Errorf("Len after overwrite = %d, want 1", c.Len())
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	createCalled := 0

	val := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 {
		t.Errorf("GetOrCreate = %d, want 100", val)
	}
	if createCalled != 1 {
		t.Errorf("create called %d times, want 1", createCalled)
	}

	val = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 {
		t.Errorf("cached GetOrCreate = %d, want 100", val)
	}
	if createCalled != 1 {
		t.Errorf("create called %d times after cached lookup, want 1", createCalled)
	}
}

func TestShardedDelete(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)
	if !c.Delete("key1") {
		t.Error("Delete(key1) = false, want true")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("Get after Delete reported a hit")
	}
	if c.Delete("nonexistent") {
		t.Error("Delete(nonexistent) = true, want false")
	}
}

func TestShardedClear(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Set("key3", 3)
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestShardedEviction(t *testing.T) {
	// All keys hash to the same shard, so capacity 2 holds exactly the
	// two most recently used entries.
	sameShard := func(string) uint64 { return 0 }
	c := NewSharded[string, int](2, sameShard)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("new entry missing after eviction")
	}
	if got := c.Stats().Evictions.Load(); got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestShardedStats(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Get("key1")
	c.Get("key1")
	c.Get("nonexistent")

	s := c.Stats()
	if got := s.Hits.Load(); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := s.Misses.Load(); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := s.Insertions.Load(); got != 2 {
		t.Errorf("insertions = %d, want 2", got)
	}

	s.Reset()
	if s.Hits.Load() != 0 || s.Misses.Load() != 0 || s.Evictions.Load() != 0 {
		t.Error("counters nonzero after Reset")
	}
}

func TestShardedConcurrent(t *testing.T) {
	c := NewSharded[int, int](100, IntHasher)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(n*100+j, n*100+j)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() == 0 {
		t.Error("cache empty after concurrent operations")
	}
}

func TestShardedConcurrentGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](100, StringHasher)
	var wg sync.WaitGroup
	var created sync.Map

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				key := strconv.Itoa(j)
				c.GetOrCreate(key, func() int {
					if _, loaded := created.LoadOrStore(key, true); loaded {
						t.Errorf("create ran twice for %q", key)
					}
					return j
				})
			}
		}()
	}
	wg.Wait()
}

func TestHashers(t *testing.T) {
	if StringHasher("hello") != StringHasher("hello") {
		t.Error("StringHasher not deterministic")
	}
	if StringHasher("hello") == StringHasher("world") {
		t.Error("StringHasher collision for test inputs")
	}
	if IntHasher(42) != IntHasher(42) {
		t.Error("IntHasher not deterministic")
	}
	if IntHasher(42) == IntHasher(43) {
		t.Error("IntHasher collision for test inputs")
	}
	if Uint64Hasher(12345) != 12345 {
		t.Errorf("Uint64Hasher(12345) = %d, want identity", Uint64Hasher(12345))
	}
}
