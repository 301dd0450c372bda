package cache

import "slices"

// TierConfig describes one size class of a tiered glyph cache.
//
// Every cell in a tier is a square of CellSize pixels. A glyph bitmap is
// stored in the smallest tier whose CellSize accommodates both of its
// dimensions, so a typical configuration lists a few tiers with growing
// cell sizes (say 16, 32, 64) to keep small glyphs from wasting large
// cells.
//
// TilesPerAxis and TextureSize only matter for texture-backed (GPU)
// tiers. When TilesPerAxis is positive, cells are laid out as a
// TilesPerAxis x TilesPerAxis grid per texture page and capacity beyond
// one page spills onto additional pages. When TilesPerAxis is zero the
// tier is block-backed (CPU): cells are plain byte blocks with no page
// geometry.
type TierConfig struct {
	// CellSize is the pixel edge length of one square cell.
	CellSize int

	// Capacity is the maximum number of resident cells in this tier,
	// summed across all of its pages. Once full, the least recently
	// used cell is recycled in place.
	Capacity int

	// TilesPerAxis is the cell grid edge per texture page. Zero for
	// block-backed tiers.
	TilesPerAxis int

	// TextureSize is the pixel edge length of one texture page. Zero
	// defaults to CellSize*TilesPerAxis. Ignored for block-backed
	// tiers.
	TextureSize int
}

// cellsPerPage reports how many cells one page of the tier holds. For
// block-backed tiers the whole capacity counts as a single page.
func (c TierConfig) cellsPerPage() int {
	if c.TilesPerAxis > 0 {
		return c.TilesPerAxis * c.TilesPerAxis
	}
	return c.Capacity
}

// pages reports how many pages the tier needs for its full capacity.
func (c TierConfig) pages() int {
	per := c.cellsPerPage()
	if per <= 0 {
		return 0
	}
	return (c.Capacity + per - 1) / per
}

// normalizeTiers validates the tier list and returns a copy sorted by
// ascending cell size, which is the lookup order for Resolve.
func normalizeTiers(configs []TierConfig) ([]TierConfig, error) {
	if len(configs) == 0 {
		return nil, ErrNoTiers
	}
	tiers := slices.Clone(configs)
	for i := range tiers {
		t := &tiers[i]
		if t.CellSize < 1 {
			return nil, &ConfigError{Tier: i, Field: "CellSize", Reason: "must be at least 1"}
		}
		if t.Capacity < 1 {
			return nil, &ConfigError{Tier: i, Field: "Capacity", Reason: "must be at least 1"}
		}
		if t.TilesPerAxis < 0 {
			return nil, &ConfigError{Tier: i, Field: "TilesPerAxis", Reason: "must not be negative"}
		}
		if t.TilesPerAxis > 0 {
			if t.TextureSize == 0 {
				t.TextureSize = t.CellSize * t.TilesPerAxis
			}
			if t.TextureSize < t.CellSize*t.TilesPerAxis {
				return nil, &ConfigError{Tier: i, Field: "TextureSize",
					Reason: "smaller than CellSize*TilesPerAxis"}
			}
		} else {
			t.TextureSize = 0
		}
	}
	slices.SortStableFunc(tiers, func(a, b TierConfig) int {
		return a.CellSize - b.CellSize
	})
	return tiers, nil
}

// PageInfo describes one texture page of a planned atlas, in global page
// order. Global page indices match the Page field of handles resolved by
// a Tiered cache built from the same tier list.
type PageInfo struct {
	// Tier is the index of the owning tier after normalization.
	Tier int

	// CellSize is the owning tier's cell edge in pixels.
	CellSize int

	// TextureSize is the page's texture edge in pixels.
	TextureSize int
}

// PagePlan expands a tier list into the flat sequence of texture pages a
// renderer must back with textures. All tiers must be texture-backed
// (TilesPerAxis set). The plan is deterministic for a given tier list,
// so a cache and a renderer configured from the same list agree on page
// indices.
func PagePlan(configs []TierConfig) ([]PageInfo, error) {
	tiers, err := normalizeTiers(configs)
	if err != nil {
		return nil, err
	}
	var plan []PageInfo
	for i, t := range tiers {
		if t.TilesPerAxis <= 0 {
			return nil, &ConfigError{Tier: i, Field: "TilesPerAxis",
				Reason: "texture pages need a tile grid"}
		}
		for p := 0; p < t.pages(); p++ {
			plan = append(plan, PageInfo{Tier: i, CellSize: t.CellSize, TextureSize: t.TextureSize})
		}
	}
	return plan, nil
}
