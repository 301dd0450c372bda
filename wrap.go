package typeset

import "unicode"

// WrapMode specifies how text is wrapped when it exceeds the maximum width.
type WrapMode uint8

const (
	// WrapNone disables soft wrapping; only hard line breaks start new
	// lines and text may exceed MaxWidth. This is the default.
	WrapNone WrapMode = iota

	// WrapWord breaks at word boundaries only.
	// A single word wider than MaxWidth overflows on its own line.
	WrapWord

	// WrapChar breaks at any glyph-cluster boundary.
	WrapChar
)

// String returns the string representation of the wrap mode.
func (m WrapMode) String() string {
	switch m {
	case WrapNone:
		return "None"
	case WrapWord:
		return "Word"
	case WrapChar:
		return "Char"
	default:
		return unknownStr
	}
}

// BreakKind classifies a break opportunity.
type BreakKind uint8

const (
	// BreakAllowed marks an optional break (after an inter-word gap).
	BreakAllowed BreakKind = iota
	// BreakMandatory marks a hard break (newline).
	BreakMandatory
)

// String returns the string representation of the break kind.
func (k BreakKind) String() string {
	switch k {
	case BreakAllowed:
		return "Allowed"
	case BreakMandatory:
		return "Mandatory"
	default:
		return unknownStr
	}
}

// runeBehavior classifies how a rune participates in shaping and breaking.
type runeBehavior uint8

const (
	// runeRegular is ordinary renderable content.
	runeRegular runeBehavior = iota
	// runeSpace separates words and renders as a glyph.
	runeSpace
	// runeTab separates words, is not rendered, and advances by a
	// configurable multiple of the space advance.
	runeTab
	// runeLinebreak terminates the line and is not rendered.
	runeLinebreak
	// runeIgnore is dropped entirely (non-printable control characters).
	runeIgnore
)

// classifyRune maps a rune onto its layout behavior. Line breaks win over
// separators; separators that are control characters (tab) do not render;
// remaining control characters are ignored.
func classifyRune(r rune) runeBehavior {
	switch r {
	case '\n', '\r':
		return runeLinebreak
	case ' ':
		return runeSpace
	case '\t':
		return runeTab
	}
	if unicode.IsControl(r) {
		return runeIgnore
	}
	return runeRegular
}
