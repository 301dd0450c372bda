package typeset

// TextElement is a uniformly styled span of text. The payload is opaque to
// the engine and carried through to every positioned glyph produced from
// the element, where renderers may interpret it (e.g. as a color).
type TextElement[P any] struct {
	// Text is the element content. Hard line breaks (\n, \r, \r\n) are
	// honored; tabs advance without rendering; other control characters
	// are ignored.
	Text string

	// Source is the font the element is shaped with. A nil Source falls
	// back to the storage default font at shaping time.
	Source *FontSource

	// Size is the font size in pixels.
	Size float64

	// Payload is caller-defined per-element data.
	Payload P
}

// TextData is an ordered sequence of text elements forming one logical
// paragraph or block. It is mutated only by Append and must not be modified
// once passed to layout.
type TextData[P any] struct {
	elements []TextElement[P]
}

// NewTextData creates a TextData holding the given elements.
func NewTextData[P any](elements ...TextElement[P]) *TextData[P] {
	d := &TextData[P]{}
	d.elements = append(d.elements, elements...)
	return d
}

// Append adds an element to the end of the sequence.
func (d *TextData[P]) Append(elem TextElement[P]) {
	d.elements = append(d.elements, elem)
}

// Len returns the number of elements.
func (d *TextData[P]) Len() int {
	return len(d.elements)
}

// Empty reports whether the sequence holds no elements.
func (d *TextData[P]) Empty() bool {
	return len(d.elements) == 0
}

// Element returns the element at index i.
func (d *TextData[P]) Element(i int) TextElement[P] {
	return d.elements[i]
}
