package cache

import "sync/atomic"

// Handle identifies a resident cell as a (tier, cell) pair. A handle
// stays valid until its entry is evicted or the cache is cleared;
// callers that defer work against handles should use batch protection
// to keep them alive until the work is submitted.
type Handle struct {
	tier int
	cell int
}

// Tier returns the index of the tier holding the cell.
func (h Handle) Tier() int { return h.tier }

// Cell returns the cell index within the tier, counted across all of
// the tier's pages.
func (h Handle) Cell() int { return h.cell }

// Stats tracks cache effectiveness counters. All fields are atomic so
// they can be read while the cache is in use.
type Stats struct {
	Hits       atomic.Uint64
	Misses     atomic.Uint64
	Evictions  atomic.Uint64
	Insertions atomic.Uint64
}

// HitRate returns the fraction of lookups served from the cache.
func (s *Stats) HitRate() float64 {
	hits := s.Hits.Load()
	total := hits + s.Misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.Hits.Store(0)
	s.Misses.Store(0)
	s.Evictions.Store(0)
	s.Insertions.Store(0)
}

type options struct {
	protect bool
}

// Option configures a cache at construction.
type Option func(*options)

// WithBatchProtection keeps every cell resolved since the last NewBatch
// call safe from eviction. Resolve returns ErrTierBusy instead of
// recycling such a cell, which lets renderers that accumulate draw
// commands against handles flush before any referenced cell is
// overwritten. Caches backing immediate-mode consumers do not need it.
func WithBatchProtection() Option {
	return func(o *options) { o.protect = true }
}

// Tiered is a glyph cache with one LRU arena per size class. Lookups
// pick the smallest tier whose cells accommodate the requested
// dimensions, then recycle least recently used cells in place once the
// tier is full. Cell storage never moves and never grows past the
// configured capacity.
//
// A Tiered cache expects a single goroutine to drive Resolve, NewBatch
// and Clear. Stats may be read concurrently.
type Tiered[K comparable] struct {
	tiers   []tier[K]
	protect bool
	batch   uint64
	stats   Stats
}

// New builds a cache from the given tier list. The list is validated
// and sorted by ascending cell size; an empty list returns ErrNoTiers.
func New[K comparable](configs []TierConfig, opts ...Option) (*Tiered[K], error) {
	normalized, err := normalizeTiers(configs)
	if err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &Tiered[K]{
		tiers:   make([]tier[K], len(normalized)),
		protect: o.protect,
	}
	for i, cfg := range normalized {
		c.tiers[i] = newTier[K](cfg)
	}
	return c, nil
}

// pickTier returns the smallest tier that fits a w x h bitmap, or -1
// when none does.
func (c *Tiered[K]) pickTier(w, h int) int {
	dim := w
	if h > dim {
		dim = h
	}
	for i := range c.tiers {
		if c.tiers[i].cfg.CellSize >= dim {
			return i
		}
	}
	return -1
}

// Resolve returns the cell assigned to key, allocating or recycling one
// on a miss. The boolean reports a hit: on a hit the cell still holds
// the previously stored bitmap, on a miss the caller must fill the cell
// before using it.
//
// A bitmap larger than the largest cell size returns an OversizedError.
// Under batch protection, a full tier whose least recently used cell was
// resolved in the current batch returns ErrTierBusy.
func (c *Tiered[K]) Resolve(key K, w, h int) (Handle, bool, error) {
	ti := c.pickTier(w, h)
	if ti < 0 {
		return Handle{}, false, &OversizedError{
			Width:   w,
			Height:  h,
			MaxCell: c.tiers[len(c.tiers)-1].cfg.CellSize,
		}
	}
	t := &c.tiers[ti]
	if i, ok := t.index[key]; ok {
		t.touch(i)
		t.nodes[i].lastBatch = c.batch
		c.stats.Hits.Add(1)
		return Handle{tier: ti, cell: int(i)}, true, nil
	}
	c.stats.Misses.Add(1)

	var i int32
	if len(t.nodes) < t.cfg.Capacity {
		i = int32(len(t.nodes)) //nolint:gosec // capacity is validated positive and bounded
		t.nodes = append(t.nodes, node[K]{key: key, newer: noNode, older: noNode, lastBatch: c.batch})
		t.pushFront(i)
	} else {
		i = t.tail
		if c.protect && t.nodes[i].lastBatch == c.batch {
			return Handle{}, false, ErrTierBusy
		}
		delete(t.index, t.nodes[i].key)
		t.touch(i)
		n := &t.nodes[i]
		n.key = key
		n.lastBatch = c.batch
		c.stats.Evictions.Add(1)
	}
	t.index[key] = i
	c.stats.Insertions.Add(1)
	return Handle{tier: ti, cell: int(i)}, false, nil
}

// NewBatch starts a new protection batch. Cells resolved before this
// call become eligible for recycling again; renderers call it after
// flushing the draw commands that reference them.
func (c *Tiered[K]) NewBatch() {
	c.batch++
}

// Clear drops every entry from every tier. All previously returned
// handles become invalid immediately. Backing storage is retained.
func (c *Tiered[K]) Clear() {
	for i := range c.tiers {
		c.tiers[i].reset()
	}
}

// Len returns the number of resident entries across all tiers.
func (c *Tiered[K]) Len() int {
	n := 0
	for i := range c.tiers {
		n += len(c.tiers[i].index)
	}
	return n
}

// NumTiers returns the number of tiers after normalization.
func (c *Tiered[K]) NumTiers() int { return len(c.tiers) }

// Tier returns the normalized configuration of tier i.
func (c *Tiered[K]) Tier(i int) TierConfig { return c.tiers[i].cfg }

// Stats returns the cache's live counters.
func (c *Tiered[K]) Stats() *Stats { return &c.stats }

// TileOf returns the texture placement of a handle's cell: the page
// index within its tier and the pixel origin of the cell on that page.
// For block-backed tiers the page is 0 and the origin is meaningless.
func (c *Tiered[K]) TileOf(h Handle) (page, x, y int) {
	t := &c.tiers[h.tier]
	page = h.cell / t.cellsPerPage
	local := h.cell % t.cellsPerPage
	if t.cfg.TilesPerAxis > 0 {
		x = (local % t.cfg.TilesPerAxis) * t.cfg.CellSize
		y = (local / t.cfg.TilesPerAxis) * t.cfg.CellSize
	}
	return page, x, y
}

// GlobalPage returns the handle's page index counted across all tiers,
// matching the page order produced by PagePlan for the same tier list.
func (c *Tiered[K]) GlobalPage(h Handle) int {
	page := 0
	for i := 0; i < h.tier; i++ {
		page += c.tiers[i].cfg.pages()
	}
	return page + h.cell/c.tiers[h.tier].cellsPerPage
}
