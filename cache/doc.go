// Package cache implements the tiered LRU glyph cache shared by the CPU
// and GPU text renderers.
//
// # Architecture
//
// A cache is an ordered list of tiers, one per cell size class, sorted
// smallest first. A glyph bitmap goes into the smallest tier whose
// square cells fit both of its dimensions, so small glyphs never waste
// large cells. Each tier is an arena of at most Capacity cells with an
// intrusive recency list threaded through it: once the arena is full,
// the least recently used cell is recycled in place. Storage is
// allocated up front and never freed, moved, or grown.
//
// Cells map onto backing storage in two ways. Texture-backed tiers
// (TilesPerAxis set) arrange cells as a tile grid across one or more
// texture pages; TileOf and GlobalPage translate a handle into page and
// pixel coordinates for atlas uploads. Block-backed tiers store each
// cell as a flat byte block in a Blocks arena for direct CPU reads.
//
// # Batch protection
//
// GPU renderers accumulate draw instances that reference cells and
// submit them later. WithBatchProtection keeps every cell resolved
// since the last NewBatch call safe from recycling: Resolve reports
// ErrTierBusy instead, the renderer flushes its pending draws, starts a
// new batch, and retries.
//
// # Usage
//
//	c, err := cache.New[uint64]([]cache.TierConfig{
//		{CellSize: 32, Capacity: 1024, TilesPerAxis: 16},
//		{CellSize: 64, Capacity: 256, TilesPerAxis: 8},
//	}, cache.WithBatchProtection())
//	if err != nil {
//		return err
//	}
//	h, hit, err := c.Resolve(key, w, ht)
//	if err != nil {
//		// oversized glyph or busy tier
//	}
//	if !hit {
//		// rasterize and upload into the cell behind h
//	}
package cache
