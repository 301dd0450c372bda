package typeset

// AtlasUpdate is one pending upload of a glyph coverage bitmap into a
// cache texture page.
type AtlasUpdate struct {
	// Page is the global texture page index, matching cache.PagePlan
	// for the renderer's tier list.
	Page int

	// X, Y are the destination cell origin on the page in pixels.
	X, Y int

	// Width, Height are the bitmap dimensions in pixels.
	Width, Height int

	// Pixels holds Width*Height coverage bytes in row-major order. It
	// is only valid during the UpdateAtlas call.
	Pixels []byte
}

// DrawInstance is one glyph quad referencing a cached atlas cell.
//
// X0..Y1 are the quad corners in surface pixels, y-down. U0..V1 are the
// source rectangle on the page texture, also in pixels; consumers that
// sample in normalized coordinates divide by the page's texture size.
// Color is straight (not premultiplied) RGBA in [0, 1]; the shader
// multiplies by coverage and premultiplies for blending.
type DrawInstance struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
	Color          [4]float32
}

// StandaloneGlyph is a glyph drawn outside the atlas because no cache
// cell could hold it. Pixels carries its full coverage bitmap.
type StandaloneGlyph struct {
	Width, Height  int
	Pixels         []byte
	X0, Y0, X1, Y1 float32
	Color          [4]float32
}

// DrawTarget receives the ordered upload and draw commands produced by a
// GPURenderer. Implementations encode them for a graphics API; the
// render subpackage provides one for wgpu.
//
// Within a single Render call, UpdateAtlas for a cell is always invoked
// before any DrawInstances batch referencing that cell, and instance
// batches arrive grouped per page in first-use order. An error from any
// method aborts the render.
type DrawTarget interface {
	// UpdateAtlas applies pending bitmap uploads to the page textures.
	UpdateAtlas(updates []AtlasUpdate) error

	// DrawInstances draws a batch of glyph quads sampling the given
	// global page. The slice is only valid during the call.
	DrawInstances(page int, instances []DrawInstance) error

	// DrawStandalone draws one oversized glyph from its own bitmap.
	DrawStandalone(glyph StandaloneGlyph) error
}
