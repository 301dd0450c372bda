package cache

// Blocks is flat byte storage for the cells of a tiered cache, used by
// CPU rasterization where a "page" is main memory rather than a
// texture. Each tier owns one allocation of Capacity*CellSize*CellSize
// bytes made up front; recycling a cell overwrites its block in place
// and never frees or moves memory.
type Blocks struct {
	tiers []blockTier
}

type blockTier struct {
	cellSize int
	data     []byte
}

// NewBlocks allocates cell storage matching the cache's tiers. The
// returned Blocks accepts handles resolved by that cache.
func NewBlocks[K comparable](c *Tiered[K]) *Blocks {
	b := &Blocks{tiers: make([]blockTier, len(c.tiers))}
	for i := range c.tiers {
		cfg := c.tiers[i].cfg
		b.tiers[i] = blockTier{
			cellSize: cfg.CellSize,
			data:     make([]byte, cfg.Capacity*cfg.CellSize*cfg.CellSize),
		}
	}
	return b
}

// CellSize returns the cell edge of tier i in pixels, which is also the
// row stride of every cell in the tier.
func (b *Blocks) CellSize(tier int) int { return b.tiers[tier].cellSize }

// Cell returns the backing bytes of a handle's cell: CellSize*CellSize
// coverage values in row-major order.
func (b *Blocks) Cell(h Handle) []byte {
	t := &b.tiers[h.tier]
	n := t.cellSize * t.cellSize
	off := h.cell * n
	return t.data[off : off+n : off+n]
}

// Fill stores a w x h coverage bitmap into the handle's cell, replacing
// whatever the cell held. pix carries w bytes per row at the given
// stride. A nil pix zeroes the cell, which composites as a fully
// transparent glyph. Dimensions beyond the cell edge are clipped.
func (b *Blocks) Fill(h Handle, w, ht int, pix []byte, stride int) {
	t := &b.tiers[h.tier]
	cell := b.Cell(h)
	clear(cell)
	if pix == nil || w <= 0 || ht <= 0 {
		return
	}
	if w > t.cellSize {
		w = t.cellSize
	}
	if ht > t.cellSize {
		ht = t.cellSize
	}
	for row := 0; row < ht; row++ {
		copy(cell[row*t.cellSize:row*t.cellSize+w], pix[row*stride:row*stride+w])
	}
}
