package typeset

import (
	"errors"
	"image/color"
	"slices"

	"github.com/gogpu/typeset/cache"
)

// DefaultGPUTiers returns the texture tier list used when NewGPURenderer
// is given none: four size classes on 1024px pages, one page each.
func DefaultGPUTiers() []cache.TierConfig {
	return []cache.TierConfig{
		{CellSize: 16, Capacity: 4096, TilesPerAxis: 64},
		{CellSize: 32, Capacity: 1024, TilesPerAxis: 32},
		{CellSize: 64, Capacity: 256, TilesPerAxis: 16},
		{CellSize: 128, Capacity: 64, TilesPerAxis: 8},
	}
}

// payloadColor is the default payload-to-color mapping: payloads
// implementing color.Color render in that color, everything else in
// opaque white. Returned components are straight RGBA in [0, 1].
func payloadColor[P any](p P) [4]float32 {
	if c, ok := any(p).(color.Color); ok {
		r, g, b, a := c.RGBA()
		if a == 0 {
			return [4]float32{}
		}
		return [4]float32{
			float32(r) / float32(a),
			float32(g) / float32(a),
			float32(b) / float32(a),
			float32(a) / 0xffff,
		}
	}
	return [4]float32{1, 1, 1, 1}
}

// GPURenderer translates layouts into atlas uploads and instanced glyph
// quads for a DrawTarget. Glyph bitmaps live in a batch-protected tiered
// cache mapped onto texture pages; each rendered glyph becomes exactly
// one DrawInstance referencing its cell, or one StandaloneGlyph when no
// cell can hold it.
//
// A GPURenderer must be driven from one goroutine at a time.
type GPURenderer[P any] struct {
	cache    *cache.Tiered[GlyphKey]
	plan     []cache.PageInfo
	subpixel SubpixelConfig
	colorFn  func(P) [4]float32
}

// NewGPURenderer creates a GPU glyph renderer. A nil tier list uses
// DefaultGPUTiers; every tier must carry tile geometry. A nil colorFn
// uses payloadColor, which honors payloads implementing color.Color.
func NewGPURenderer[P any](tiers []cache.TierConfig, subpixel SubpixelConfig, colorFn func(P) [4]float32) (*GPURenderer[P], error) {
	if tiers == nil {
		tiers = DefaultGPUTiers()
	}
	plan, err := cache.PagePlan(tiers)
	if err != nil {
		return nil, err
	}
	c, err := cache.New[GlyphKey](tiers, cache.WithBatchProtection())
	if err != nil {
		return nil, err
	}
	if colorFn == nil {
		colorFn = payloadColor[P]
	}
	return &GPURenderer[P]{
		cache:    c,
		plan:     plan,
		subpixel: subpixel,
		colorFn:  colorFn,
	}, nil
}

// PagePlan returns the texture pages the renderer's cache spans, in
// global page order. A DrawTarget backs each entry with one texture of
// the listed size.
func (r *GPURenderer[P]) PagePlan() []cache.PageInfo {
	return slices.Clone(r.plan)
}

// gpuFrame accumulates one render call's pending work: bitmap uploads
// and per-page instance batches in first-use page order.
type gpuFrame struct {
	updates   []AtlasUpdate
	pageOrder []int
	batches   map[int][]DrawInstance
}

// Render walks the layout and emits the uploads and draws it needs onto
// target. Pending uploads are always submitted before the instance
// batches that sample them. When a cache tier runs out of unreferenced
// cells mid-frame, the pending work is flushed, a new batch begins, and
// the glyph is retried; a glyph no tier can ever hold is drawn
// standalone. Errors from the target abort the render.
func (r *GPURenderer[P]) Render(layout *Layout[P], target DrawTarget) error {
	if target == nil {
		return ErrNilTarget
	}
	if layout == nil || layout.IsEmpty() {
		return nil
	}

	frame := gpuFrame{batches: make(map[int][]DrawInstance)}
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
			key := MakeGlyphKey(g, r.subpixel)

			handle, hit, err := r.cache.Resolve(key, w, h)
			if errors.Is(err, cache.ErrTierBusy) {
				// Every cell of the tier is referenced by pending
				// draws. Submit them, then retry in a fresh batch.
				if ferr := r.flush(&frame, target); ferr != nil {
					return ferr
				}
				r.cache.NewBatch()
				handle, hit, err = r.cache.Resolve(key, w, h)
			}
			if err != nil {
				if derr := r.drawStandalone(target, parsed, g, w, h, intX, intY, subX, subY); derr != nil {
					return derr
				}
				continue
			}

			_, cellX, cellY := r.cache.TileOf(handle)
			page := r.cache.GlobalPage(handle)
			if !hit {
				dx, dy := SubpixelOffsets(subX, subY, r.subpixel)
				img := rasterizeGlyph(parsed, g.GID, g.Size, dx, dy)
				pix := img.Coverage()
				if pix == nil {
					// Upload zeros so the recycled cell cannot bleed a
					// previous glyph into this key's later hits.
					pix = make([]byte, w*h)
				}
				frame.updates = append(frame.updates, AtlasUpdate{
					Page: page, X: cellX, Y: cellY,
					Width: w, Height: h, Pixels: pix,
				})
			}

			if _, ok := frame.batches[page]; !ok {
				frame.pageOrder = append(frame.pageOrder, page)
			}
			frame.batches[page] = append(frame.batches[page], DrawInstance{
				X0: float32(intX), Y0: float32(intY),
				X1: float32(intX + w), Y1: float32(intY + h),
				U0: float32(cellX), V0: float32(cellY),
				U1: float32(cellX + w), V1: float32(cellY + h),
				Color: r.colorFn(g.Payload),
			})
		}
	}

	if err := r.flush(&frame, target); err != nil {
		return err
	}
	r.cache.NewBatch()
	return nil
}

// flush submits the frame's pending uploads, then its instance batches
// in first-use page order, and resets the frame.
func (r *GPURenderer[P]) flush(frame *gpuFrame, target DrawTarget) error {
	if len(frame.updates) > 0 {
		if err := target.UpdateAtlas(frame.updates); err != nil {
			return err
		}
		frame.updates = frame.updates[:0]
	}
	for _, page := range frame.pageOrder {
		insts := frame.batches[page]
		if len(insts) == 0 {
			continue
		}
		if err := target.DrawInstances(page, insts); err != nil {
			return err
		}
	}
	frame.pageOrder = frame.pageOrder[:0]
	clear(frame.batches)
	return nil
}

// drawStandalone rasterizes a glyph that fits no cache cell and hands it
// to the target as a one-off draw. Glyphs without coverage draw nothing.
func (r *GPURenderer[P]) drawStandalone(target DrawTarget, parsed ParsedFont, g *PositionedGlyph[P], w, h, intX, intY int, subX, subY uint8) error {
	dx, dy := SubpixelOffsets(subX, subY, r.subpixel)
	img := rasterizeGlyph(parsed, g.GID, g.Size, dx, dy)
	pix := img.Coverage()
	if pix == nil {
		return nil
	}
	slogger().Debug("typeset: glyph drawn outside atlas",
		"glyph", g.GID, "width", w, "height", h)
	return target.DrawStandalone(StandaloneGlyph{
		Width: w, Height: h, Pixels: pix,
		X0: float32(intX), Y0: float32(intY),
		X1: float32(intX + w), Y1: float32(intY + h),
		Color: r.colorFn(g.Payload),
	})
}

// ClearCache drops all cached glyph bitmaps and invalidates every atlas
// cell. Subsequent renders repopulate the pages on demand.
func (r *GPURenderer[P]) ClearCache() {
	r.cache.Clear()
}

// CacheStats returns the live counters of the glyph cache.
func (r *GPURenderer[P]) CacheStats() *cache.Stats {
	return r.cache.Stats()
}
