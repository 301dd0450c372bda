package typeset

import "github.com/gogpu/typeset/cache"

// DefaultCPUTiers returns the block tier list used when NewCPURenderer
// is given none: four size classes covering glyphs up to 128px.
func DefaultCPUTiers() []cache.TierConfig {
	return []cache.TierConfig{
		{CellSize: 16, Capacity: 2048},
		{CellSize: 32, Capacity: 1024},
		{CellSize: 64, Capacity: 512},
		{CellSize: 128, Capacity: 128},
	}
}

// CPURenderer rasterizes layouts into caller-owned pixels. It resolves
// each glyph through a tiered cache of coverage blocks and hands every
// covered pixel to a sink callback; it never touches a pixel buffer
// itself, so callers control the surface format and compositing rule.
//
// A CPURenderer must be driven from one goroutine at a time.
type CPURenderer[P any] struct {
	cache    *cache.Tiered[GlyphKey]
	blocks   *cache.Blocks
	subpixel SubpixelConfig
}

// NewCPURenderer creates a CPU glyph renderer. A nil tier list uses
// DefaultCPUTiers. Tile geometry in the configs is ignored; cells are
// stored as byte blocks.
func NewCPURenderer[P any](tiers []cache.TierConfig, subpixel SubpixelConfig) (*CPURenderer[P], error) {
	if tiers == nil {
		tiers = DefaultCPUTiers()
	}
	c, err := cache.New[GlyphKey](tiers)
	if err != nil {
		return nil, err
	}
	return &CPURenderer[P]{
		cache:    c,
		blocks:   cache.NewBlocks(c),
		subpixel: subpixel,
	}, nil
}

// Render composites a layout into a width x height pixel extent by
// calling sink once per covered pixel with the pixel's position, its
// coverage, and the payload of the glyph that produced it. Positions
// passed to sink are always inside the extent.
//
// Glyphs wholly outside the extent are skipped before any cache work.
// Glyphs that no cache tier can hold are logged and skipped; everything
// else degrades per glyph rather than failing the render.
func (r *CPURenderer[P]) Render(layout *Layout[P], width, height int, sink func(x, y int, coverage uint8, payload P)) error {
	if sink == nil {
		return ErrNilTarget
	}
	if layout == nil || width <= 0 || height <= 0 {
		return nil
	}

	for li := range layout.Lines {
		line := &layout.Lines[li]
		for gi := range line.Glyphs {
			g := &line.Glyphs[gi]
			if g.Source == nil {
				continue
			}
			parsed := g.Source.Parsed()
			if parsed == nil {
				continue
			}
			w, h, _, _ := parsed.GlyphExtent(g.GID, g.Size)
			if w <= 0 || h <= 0 {
				continue
			}

			intX, intY, subX, subY := QuantizePoint(g.X, g.Y, r.subpixel)
			if intX >= width || intY >= height || intX+w <= 0 || intY+h <= 0 {
				continue
			}

			handle, hit, err := r.cache.Resolve(MakeGlyphKey(g, r.subpixel), w, h)
			if err != nil {
				slogger().Warn("typeset: glyph too large for cache, skipped",
					"glyph", g.GID, "width", w, "height", h)
				continue
			}
			if !hit {
				dx, dy := SubpixelOffsets(subX, subY, r.subpixel)
				img := rasterizeGlyph(parsed, g.GID, g.Size, dx, dy)
				r.blocks.Fill(handle, w, h, img.Coverage(), w)
			}

			r.composite(handle, w, h, intX, intY, width, height, sink, g.Payload)
		}
	}
	return nil
}

// composite feeds one cached glyph block through the sink, clipping rows
// and columns to the extent.
func (r *CPURenderer[P]) composite(handle cache.Handle, w, h, intX, intY, width, height int, sink func(x, y int, coverage uint8, payload P), payload P) {
	cell := r.blocks.Cell(handle)
	stride := r.blocks.CellSize(handle.Tier())
	for row := 0; row < h; row++ {
		y := intY + row
		if y < 0 {
			continue
		}
		if y >= height {
			break
		}
		rowPix := cell[row*stride : row*stride+w]
		for col, cov := range rowPix {
			if cov == 0 {
				continue
			}
			x := intX + col
			if x < 0 || x >= width {
				continue
			}
			sink(x, y, cov, payload)
		}
	}
}

// ClearCache drops all cached glyph bitmaps. The next render refills
// cells on demand.
func (r *CPURenderer[P]) ClearCache() {
	r.cache.Clear()
}

// CacheStats returns the live counters of the glyph cache.
func (r *CPURenderer[P]) CacheStats() *cache.Stats {
	return r.cache.Stats()
}
