package typeset

import "errors"

// Sentinel errors for the typeset package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("typeset: empty font data")

	// ErrSourceClosed is returned when an operation is attempted on a
	// FontSource after Close.
	ErrSourceClosed = errors.New("typeset: font source is closed")

	// ErrNilTarget is returned by a renderer whose output, the CPU pixel
	// sink or the GPU draw target, is nil.
	ErrNilTarget = errors.New("typeset: render target is nil")

	// ErrRendererNotInitialized is returned by FontSystem render calls made
	// before the corresponding Init method.
	ErrRendererNotInitialized = errors.New("typeset: renderer not initialized")
)
