package typeset

import (
	"image"
	"sync"
	"testing"
)

// fakeFont is a deterministic ParsedFont for layout tests: every glyph
// advances exactly ppem pixels, vertical metrics are fixed fractions of
// ppem, and coverage is a solid square. The space glyph reports no
// coverage, like a real font.
type fakeFont struct {
	// kern is applied between every glyph pair.
	kern float64
}

func (fakeFont) Name() string     { return "Fake" }
func (fakeFont) FullName() string { return "Fake Regular" }
func (fakeFont) NumGlyphs() int   { return 0x10000 }
func (fakeFont) UnitsPerEm() int  { return 1000 }

func (fakeFont) GlyphIndex(r rune) GlyphID {
	return GlyphID(r) //nolint:gosec // test runes stay within uint16
}

func (fakeFont) GlyphAdvance(_ GlyphID, ppem float64) float64 { return ppem }

func (fakeFont) GlyphBounds(g GlyphID, ppem float64) Rect {
	if g == GlyphID(' ') {
		return Rect{}
	}
	e := 0.8 * ppem
	return Rect{MinX: 0, MinY: -e, MaxX: e, MaxY: 0}
}

func (f fakeFont) GlyphExtent(g GlyphID, ppem float64) (w, h, left, top int) {
	if g == GlyphID(' ') {
		return 0, 0, 0, 0
	}
	e := int(0.8 * ppem)
	return e, e, 0, -e
}

func (f fakeFont) Rasterize(g GlyphID, ppem float64, dx, dy float64) (*GlyphImage, error) {
	w, h, left, top := f.GlyphExtent(g, ppem)
	if w == 0 || h == 0 {
		return nil, nil
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = 0xFF
	}
	return &GlyphImage{Mask: mask, Width: w, Height: h, Left: left, Top: top, Advance: ppem}, nil
}

func (f fakeFont) Kern(GlyphID, GlyphID, float64) float64 { return f.kern }

func (fakeFont) Metrics(ppem float64) FontMetrics {
	return FontMetrics{
		Ascent:    0.8 * ppem,
		Descent:   -0.2 * ppem,
		LineGap:   0,
		XHeight:   0.4 * ppem,
		CapHeight: 0.7 * ppem,
	}
}

// fakeParser serves a fixed ParsedFont regardless of the data bytes.
type fakeParser struct {
	font ParsedFont
}

func (p fakeParser) Parse([]byte) (ParsedFont, error) { return p.font, nil }

var fakeParsersOnce sync.Once

// registerFakeParsers installs the fake parser backends once per process.
func registerFakeParsers() {
	fakeParsersOnce.Do(func() {
		RegisterParser("fake", fakeParser{font: fakeFont{}})
		RegisterParser("fakekern", fakeParser{font: fakeFont{kern: -2}})
	})
}

// newFakeSource builds a FontSource over fakeFont. The parsers are
// registered once per process.
func newFakeSource(t *testing.T) *FontSource {
	t.Helper()
	registerFakeParsers()
	src, err := NewFontSource([]byte("fake font stub"), WithParser("fake"))
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

// useXImageShaper routes shaping through the metrics-only shaper so
// tests stay deterministic and independent of HarfBuzz behavior.
func useXImageShaper(t *testing.T) {
	t.Helper()
	SetShaper(NewXImageShaper())
	t.Cleanup(func() { SetShaper(nil) })
}

// fakeData wraps text into a single-element TextData on the fake font.
func fakeData(src *FontSource, text string, size float64) *TextData[int] {
	return NewTextData(TextElement[int]{Text: text, Source: src, Size: size})
}

// fakeStorage returns a storage holding src as its default.
func fakeStorage(src *FontSource) *FontStorage {
	fs := NewFontStorage()
	fs.Add(src)
	return fs
}
