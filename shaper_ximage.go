package typeset

// XImageShaper shapes text using the parsed font's own metrics: per-rune
// glyph lookup, advances, and pair kerning via golang.org/x/image. It does
// no ligature substitution, contextual alternates, or complex-script
// shaping; use GoTextShaper (the default) for scripts that need those.
//
// XImageShaper is stateless and safe for concurrent use.
type XImageShaper struct{}

// NewXImageShaper creates the x/image-backed shaper.
func NewXImageShaper() *XImageShaper {
	return &XImageShaper{}
}

// Shape implements the Shaper interface.
// It converts text to positioned glyphs using the font's glyph metrics.
func (s *XImageShaper) Shape(text string, source *FontSource, size float64) []ShapedGlyph {
	if text == "" || source == nil {
		return nil
	}

	parsed := source.Parsed()
	if parsed == nil {
		return nil
	}

	runes := []rune(text)
	result := make([]ShapedGlyph, 0, len(runes))

	var x float64
	var prev GlyphID

	for cluster, r := range runes {
		gid := parsed.GlyphIndex(r)

		if cluster > 0 {
			if k := parsed.Kern(prev, gid, size); k != 0 {
				// Fold the pair adjustment into the preceding advance so
				// cluster widths stay consistent with glyph positions.
				x += k
				result[len(result)-1].XAdvance += k
			}
		}

		advance := parsed.GlyphAdvance(gid, size)

		result = append(result, ShapedGlyph{
			GID:      gid,
			Cluster:  cluster,
			X:        x,
			XAdvance: advance,
		})

		x += advance
		prev = gid
	}

	return result
}
