package typeset

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ximageParser implements FontParser using golang.org/x/image/font/opentype.
type ximageParser struct{}

// Parse implements FontParser.Parse.
func (p *ximageParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("typeset: failed to parse font: %w", err)
	}
	return &ximageParsedFont{font: f}, nil
}

// ximageParsedFont implements ParsedFont using sfnt.Font.
type ximageParsedFont struct {
	font *opentype.Font
}

// Name implements ParsedFont.Name.
func (f *ximageParsedFont) Name() string {
	if buf, err := f.font.Name(nil, sfnt.NameIDFamily); err == nil && buf != "" {
		return buf
	}
	return ""
}

// FullName implements ParsedFont.FullName.
func (f *ximageParsedFont) FullName() string {
	if buf, err := f.font.Name(nil, sfnt.NameIDFull); err == nil && buf != "" {
		return buf
	}
	return ""
}

// NumGlyphs implements ParsedFont.NumGlyphs.
func (f *ximageParsedFont) NumGlyphs() int {
	return f.font.NumGlyphs()
}

// UnitsPerEm implements ParsedFont.UnitsPerEm.
func (f *ximageParsedFont) UnitsPerEm() int {
	return int(f.font.UnitsPerEm())
}

// GlyphIndex implements ParsedFont.GlyphIndex.
func (f *ximageParsedFont) GlyphIndex(r rune) GlyphID {
	idx, err := f.font.GlyphIndex(nil, r)
	if err != nil {
		return 0
	}
	return GlyphID(idx)
}

// GlyphAdvance implements ParsedFont.GlyphAdvance.
func (f *ximageParsedFont) GlyphAdvance(glyph GlyphID, ppem float64) float64 {
	var buf sfnt.Buffer

	advance, err := f.font.GlyphAdvance(&buf, sfnt.GlyphIndex(glyph), floatToFixed(ppem), font.HintingFull)
	if err != nil {
		return 0
	}

	return fixedToFloat(advance)
}

// GlyphBounds implements ParsedFont.GlyphBounds.
func (f *ximageParsedFont) GlyphBounds(glyph GlyphID, ppem float64) Rect {
	var buf sfnt.Buffer

	bounds, _, err := f.font.GlyphBounds(&buf, sfnt.GlyphIndex(glyph), floatToFixed(ppem), font.HintingFull)
	if err != nil {
		return Rect{}
	}

	return Rect{
		MinX: fixedToFloat(bounds.Min.X),
		MinY: fixedToFloat(bounds.Min.Y),
		MaxX: fixedToFloat(bounds.Max.X),
		MaxY: fixedToFloat(bounds.Max.Y),
	}
}

// GlyphExtent implements ParsedFont.GlyphExtent.
// The extent snaps the fractional outline bounds to the pixel grid: the
// top-left corner is floored, the bottom-right ceiled, so the bitmap fully
// covers the outline at integer dimensions.
func (f *ximageParsedFont) GlyphExtent(glyph GlyphID, ppem float64) (w, h, left, top int) {
	bounds := f.GlyphBounds(glyph, ppem)
	if bounds.Empty() {
		return 0, 0, 0, 0
	}
	left = int(math.Floor(bounds.MinX))
	top = int(math.Floor(bounds.MinY))
	w = int(math.Ceil(bounds.MaxX)) - left
	h = int(math.Ceil(bounds.MaxY)) - top
	return w, h, left, top
}

// Rasterize implements ParsedFont.Rasterize.
// The outline is loaded as quadratic/cubic segments and scan-converted with
// golang.org/x/image/vector into an alpha mask of exactly the GlyphExtent
// dimensions. dx/dy shift the outline within the mask for sub-pixel
// positioning; coverage pushed past the right/bottom edge by the shift is
// clipped.
func (f *ximageParsedFont) Rasterize(glyph GlyphID, ppem float64, dx, dy float64) (*GlyphImage, error) {
	w, h, left, top := f.GlyphExtent(glyph, ppem)
	if w <= 0 || h <= 0 {
		return nil, nil
	}

	var buf sfnt.Buffer
	segments, err := f.font.LoadGlyph(&buf, sfnt.GlyphIndex(glyph), floatToFixed(ppem), nil)
	if err != nil {
		return nil, fmt.Errorf("typeset: failed to load glyph %d: %w", glyph, err)
	}
	if len(segments) == 0 {
		return nil, nil
	}

	// The vector rasterizer expects coordinates in the positive quadrant,
	// so outline points are translated by the bitmap's top-left offset.
	offX := float32(dx - float64(left))
	offY := float32(dy - float64(top))

	var r vector.Rasterizer
	r.Reset(w, h)
	r.DrawOp = draw.Src

	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			r.MoveTo(
				fixedToFloat32(seg.Args[0].X)+offX,
				fixedToFloat32(seg.Args[0].Y)+offY,
			)
		case sfnt.SegmentOpLineTo:
			r.LineTo(
				fixedToFloat32(seg.Args[0].X)+offX,
				fixedToFloat32(seg.Args[0].Y)+offY,
			)
		case sfnt.SegmentOpQuadTo:
			r.QuadTo(
				fixedToFloat32(seg.Args[0].X)+offX,
				fixedToFloat32(seg.Args[0].Y)+offY,
				fixedToFloat32(seg.Args[1].X)+offX,
				fixedToFloat32(seg.Args[1].Y)+offY,
			)
		case sfnt.SegmentOpCubeTo:
			r.CubeTo(
				fixedToFloat32(seg.Args[0].X)+offX,
				fixedToFloat32(seg.Args[0].Y)+offY,
				fixedToFloat32(seg.Args[1].X)+offX,
				fixedToFloat32(seg.Args[1].Y)+offY,
				fixedToFloat32(seg.Args[2].X)+offX,
				fixedToFloat32(seg.Args[2].Y)+offY,
			)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphImage{
		Mask:    mask,
		Width:   w,
		Height:  h,
		Left:    left,
		Top:     top,
		Advance: f.GlyphAdvance(glyph, ppem),
	}, nil
}

// Kern implements ParsedFont.Kern.
func (f *ximageParsedFont) Kern(left, right GlyphID, ppem float64) float64 {
	var buf sfnt.Buffer

	k, err := f.font.Kern(&buf, sfnt.GlyphIndex(left), sfnt.GlyphIndex(right), floatToFixed(ppem), font.HintingFull)
	if err != nil {
		return 0
	}

	return fixedToFloat(k)
}

// Metrics implements ParsedFont.Metrics.
func (f *ximageParsedFont) Metrics(ppem float64) FontMetrics {
	var buf sfnt.Buffer

	metrics, err := f.font.Metrics(&buf, floatToFixed(ppem), font.HintingFull)
	if err != nil {
		return FontMetrics{}
	}

	ascent := fixedToFloat(metrics.Ascent)
	descent := -fixedToFloat(metrics.Descent)

	return FontMetrics{
		Ascent:    ascent,
		Descent:   descent,
		LineGap:   fixedToFloat(metrics.Height) - ascent + descent,
		XHeight:   fixedToFloat(metrics.XHeight),
		CapHeight: fixedToFloat(metrics.CapHeight),
	}
}

// floatToFixed converts a float64 pixel value to fixed.Int26_6.
// The fixed-point representation uses 6 fractional bits.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// fixedToFloat32 converts a fixed.Int26_6 value to float32.
func fixedToFloat32(v fixed.Int26_6) float32 {
	return float32(v) / 64.0
}
