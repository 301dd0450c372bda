package typeset

import "sync"

// Shaper converts text to positioned glyphs.
// Implementations provide different levels of text shaping support:
//   - GoTextShaper: HarfBuzz-level shaping via go-text/typesetting (default)
//   - XImageShaper: per-rune advances with pair kerning via golang.org/x/image
type Shaper interface {
	// Shape converts text into positioned glyphs using the given source at
	// the given pixel size. Positions are relative to the run origin.
	Shape(text string, source *FontSource, size float64) []ShapedGlyph
}

var (
	shaperMu     sync.RWMutex
	globalShaper Shaper = NewGoTextShaper()
)

// SetShaper sets the global shaper used by the shaping pass.
// Pass nil to reset to the default GoTextShaper.
//
// Example usage with a custom shaper:
//
//	typeset.SetShaper(myShaper)
//	defer typeset.SetShaper(nil) // Reset to default
func SetShaper(s Shaper) {
	shaperMu.Lock()
	defer shaperMu.Unlock()
	if s == nil {
		s = NewGoTextShaper()
	}
	globalShaper = s
}

// GetShaper returns the current global shaper.
func GetShaper() Shaper {
	shaperMu.RLock()
	defer shaperMu.RUnlock()
	return globalShaper
}

// Shape is a convenience function that uses the global shaper.
func Shape(text string, source *FontSource, size float64) []ShapedGlyph {
	return GetShaper().Shape(text, source, size)
}
