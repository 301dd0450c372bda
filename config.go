package typeset

// HorizontalAlign specifies horizontal line placement within the layout box.
type HorizontalAlign uint8

const (
	// AlignLeft places each line at the left edge. This is the default.
	AlignLeft HorizontalAlign = iota
	// AlignCenter centers each line within the target width.
	AlignCenter
	// AlignRight places each line at the right edge.
	AlignRight
	// AlignJustify stretches inter-word gaps so soft-wrapped lines fill
	// the target width. The last line of a paragraph stays left-aligned.
	AlignJustify
)

// String returns the string representation of the alignment.
func (a HorizontalAlign) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	case AlignJustify:
		return "Justify"
	default:
		return unknownStr
	}
}

// VerticalAlign specifies vertical block placement within the layout box.
type VerticalAlign uint8

const (
	// AlignTop anchors the block at the top. This is the default.
	AlignTop VerticalAlign = iota
	// AlignMiddle centers the block within the target height.
	AlignMiddle
	// AlignBottom anchors the block at the bottom.
	AlignBottom
)

// String returns the string representation of the alignment.
func (a VerticalAlign) String() string {
	switch a {
	case AlignTop:
		return "Top"
	case AlignMiddle:
		return "Middle"
	case AlignBottom:
		return "Bottom"
	default:
		return unknownStr
	}
}

// TextLayoutConfig controls the arrange pass. It is the sole
// layout-affecting input besides the text itself: shaping never consults
// it, so one ShapedText can be arranged under many configurations.
type TextLayoutConfig struct {
	// MaxWidth bounds line width in pixels. Zero or negative means
	// unbounded (no soft wrapping regardless of Wrap).
	MaxWidth float64

	// MaxHeight bounds the block height in pixels. Lines that do not fit
	// entirely are dropped. Zero or negative means unbounded.
	MaxHeight float64

	// HorizontalAlign places lines within the target width.
	HorizontalAlign HorizontalAlign

	// VerticalAlign places the block within the target height.
	VerticalAlign VerticalAlign

	// LineHeightScale multiplies the font-derived line height.
	// Zero is normalized to 1.
	LineHeightScale float64

	// Wrap selects the soft-wrap style. The default is WrapNone.
	Wrap WrapMode

	// TabWidth is the tab advance in multiples of the space advance of
	// the tab's font. Zero is normalized to 4.
	TabWidth int

	// LetterSpacing is extra advance in pixels added after every glyph
	// cluster. Negative values are clamped to zero so pen positions stay
	// monotonic within a line.
	LetterSpacing float64
}

// DefaultTextLayoutConfig returns the default layout configuration:
// unbounded box, top-left alignment, no wrapping, unscaled line height.
func DefaultTextLayoutConfig() TextLayoutConfig {
	return TextLayoutConfig{
		LineHeightScale: 1.0,
		TabWidth:        4,
	}
}

// normalize fixes zero values so the zero config behaves like the default.
func (c TextLayoutConfig) normalize() TextLayoutConfig {
	if c.LineHeightScale == 0 {
		c.LineHeightScale = 1.0
	}
	if c.TabWidth <= 0 {
		c.TabWidth = 4
	}
	if c.LetterSpacing < 0 {
		c.LetterSpacing = 0
	}
	return c
}

// wrapping reports whether the config enables soft wrapping.
func (c TextLayoutConfig) wrapping() bool {
	return c.Wrap != WrapNone && c.MaxWidth > 0
}
