package typeset

import "image"

// GlyphImage is a rasterized glyph bitmap.
type GlyphImage struct {
	// Mask is the single-channel coverage mask with bounds (0,0)-(Width,Height).
	Mask *image.Alpha

	// Width and Height are the bitmap dimensions in pixels.
	Width, Height int

	// Left and Top offset the bitmap's top-left corner relative to the pen
	// position on the baseline (y-down, Top is typically negative).
	Left, Top int

	// Advance width in pixels.
	Advance float64
}

// Coverage returns the coverage bytes as a tightly packed row-major slice
// of Width×Height values. The mask's own slice is returned directly when
// its stride already matches.
func (g *GlyphImage) Coverage() []byte {
	if g == nil || g.Mask == nil {
		return nil
	}
	if g.Mask.Stride == g.Width {
		return g.Mask.Pix[:g.Width*g.Height]
	}
	pix := make([]byte, g.Width*g.Height)
	for row := 0; row < g.Height; row++ {
		src := g.Mask.Pix[row*g.Mask.Stride:]
		copy(pix[row*g.Width:(row+1)*g.Width], src[:g.Width])
	}
	return pix
}

// rasterizeGlyph renders a glyph through its parsed font, degrading failures
// to an absent bitmap: a malformed outline logs a warning and yields nil so
// the caller caches zero coverage for the key instead of failing the render.
func rasterizeGlyph(parsed ParsedFont, glyph GlyphID, ppem float64, dx, dy float64) *GlyphImage {
	if parsed == nil {
		return nil
	}
	img, err := parsed.Rasterize(glyph, ppem, dx, dy)
	if err != nil {
		slogger().Warn("typeset: glyph rasterization failed",
			"glyph", glyph, "size", ppem, "error", err)
		return nil
	}
	return img
}
