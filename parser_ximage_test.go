package typeset

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// parsedGoRegular parses goregular through the default backend.
func parsedGoRegular(t *testing.T) ParsedFont {
	t.Helper()
	parsed, err := (&ximageParser{}).Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return parsed
}

func TestXImageParserNames(t *testing.T) {
	parsed := parsedGoRegular(t)

	if parsed.Name() == "" {
		t.Error("Name() is empty")
	}
	if parsed.FullName() == "" {
		t.Error("FullName() is empty")
	}
	if parsed.NumGlyphs() <= 0 {
		t.Errorf("NumGlyphs() = %d, want > 0", parsed.NumGlyphs())
	}
	if parsed.UnitsPerEm() <= 0 {
		t.Errorf("UnitsPerEm() = %d, want > 0", parsed.UnitsPerEm())
	}
}

func TestXImageParserGlyphIndex(t *testing.T) {
	parsed := parsedGoRegular(t)

	if gid := parsed.GlyphIndex('A'); gid == 0 {
		t.Error("GlyphIndex('A') = 0, want a mapped glyph")
	}
	if gid := parsed.GlyphIndex('￾'); gid != 0 {
		t.Errorf("GlyphIndex of unmapped rune = %d, want 0", gid)
	}
}

func TestXImageParserGlyphAdvance(t *testing.T) {
	parsed := parsedGoRegular(t)
	gid := parsed.GlyphIndex('A')

	adv := parsed.GlyphAdvance(gid, 16)
	if adv <= 0 || adv > 32 {
		t.Errorf("GlyphAdvance = %v, want within (0, 32]", adv)
	}

	// Advances scale with size.
	if big := parsed.GlyphAdvance(gid, 32); big <= adv {
		t.Errorf("advance at 32px (%v) not larger than at 16px (%v)", big, adv)
	}
}

func TestXImageParserGlyphBounds(t *testing.T) {
	parsed := parsedGoRegular(t)
	gid := parsed.GlyphIndex('A')

	bounds := parsed.GlyphBounds(gid, 16)
	if bounds.Empty() {
		t.Fatal("GlyphBounds of 'A' is empty")
	}
	// y-down: the cap rises above the baseline.
	if bounds.MinY >= 0 {
		t.Errorf("MinY = %v, want < 0 (above baseline)", bounds.MinY)
	}
}

func TestXImageParserGlyphExtent(t *testing.T) {
	parsed := parsedGoRegular(t)
	gid := parsed.GlyphIndex('A')

	w, h, _, top := parsed.GlyphExtent(gid, 16)
	if w <= 0 || h <= 0 {
		t.Fatalf("GlyphExtent = %dx%d, want positive", w, h)
	}
	if top >= 0 {
		t.Errorf("top = %d, want < 0 (bitmap starts above baseline)", top)
	}

	// The space glyph carries no coverage.
	if sw, sh, _, _ := parsed.GlyphExtent(parsed.GlyphIndex(' '), 16); sw != 0 || sh != 0 {
		t.Errorf("space extent = %dx%d, want 0x0", sw, sh)
	}
}

func TestXImageParserRasterize(t *testing.T) {
	parsed := parsedGoRegular(t)
	gid := parsed.GlyphIndex('A')
	w, h, left, top := parsed.GlyphExtent(gid, 16)

	img, err := parsed.Rasterize(gid, 16, 0, 0)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img == nil {
		t.Fatal("Rasterize returned nil image for visible glyph")
	}
	if img.Width != w || img.Height != h {
		t.Errorf("bitmap %dx%d does not match extent %dx%d", img.Width, img.Height, w, h)
	}
	if img.Left != left || img.Top != top {
		t.Errorf("bitmap offset (%d, %d) does not match extent (%d, %d)",
			img.Left, img.Top, left, top)
	}
	if img.Advance <= 0 {
		t.Errorf("Advance = %v, want > 0", img.Advance)
	}

	cov := img.Coverage()
	if len(cov) != w*h {
		t.Fatalf("Coverage length = %d, want %d", len(cov), w*h)
	}
	nonzero := 0
	for _, c := range cov {
		if c != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("rasterized glyph has no coverage")
	}
}

func TestXImageParserRasterizeSubpixel(t *testing.T) {
	parsed := parsedGoRegular(t)
	gid := parsed.GlyphIndex('A')
	w, h, _, _ := parsed.GlyphExtent(gid, 16)

	// A sub-pixel shift changes coverage but never the bitmap dimensions.
	img, err := parsed.Rasterize(gid, 16, 0.5, 0.25)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img == nil {
		t.Fatal("Rasterize returned nil image")
	}
	if img.Width != w || img.Height != h {
		t.Errorf("shifted bitmap %dx%d does not match extent %dx%d",
			img.Width, img.Height, w, h)
	}
}

func TestXImageParserRasterizeSpace(t *testing.T) {
	parsed := parsedGoRegular(t)

	img, err := parsed.Rasterize(parsed.GlyphIndex(' '), 16, 0, 0)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img != nil {
		t.Error("space glyph rasterized to a non-nil image")
	}
}

func TestXImageParserMetrics(t *testing.T) {
	parsed := parsedGoRegular(t)
	m := parsed.Metrics(16)

	if m.Ascent <= 0 {
		t.Errorf("Ascent = %v, want > 0", m.Ascent)
	}
	if m.Descent >= 0 {
		t.Errorf("Descent = %v, want < 0", m.Descent)
	}
	if m.XHeight <= 0 {
		t.Errorf("XHeight = %v, want > 0", m.XHeight)
	}
	if m.CapHeight <= 0 {
		t.Errorf("CapHeight = %v, want > 0", m.CapHeight)
	}
	if got := m.Height(); got < m.Ascent-m.Descent {
		t.Errorf("Height() = %v, want >= ascent - descent = %v", got, m.Ascent-m.Descent)
	}
}

func TestXImageParserKern(t *testing.T) {
	parsed := parsedGoRegular(t)

	// Kerning values are font-dependent; the call just must not fail for
	// any glyph pair.
	k := parsed.Kern(parsed.GlyphIndex('A'), parsed.GlyphIndex('V'), 16)
	if k > 0 {
		t.Logf("Kern(A, V) = %v", k)
	}
}
