// Package typeset lays out styled text and renders it through a tiered,
// evicting glyph cache.
//
// The pipeline follows a separation of concerns:
//
//   - FontSource / FontStorage: heavyweight, shared font resources
//     (parses TTF/OTF files, system font discovery, family queries)
//   - Shaper: pluggable shaping backend (default: go-text/typesetting)
//   - ShapeText / Arrange: two-pass layout engine; shaping and measuring
//     are width-independent so a ShapedText can be re-arranged under
//     different configurations without re-shaping
//   - CPURenderer / GPURenderer: walk a Layout and resolve glyphs through
//     a tiered glyph cache, compositing into a pixel sink or emitting
//     batched draw instances
//
// # Example usage
//
//	storage := typeset.NewFontStorage()
//	source, err := storage.LoadFontFile("Roboto-Regular.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var data typeset.TextData[color.RGBA]
//	data.Append(typeset.TextElement[color.RGBA]{
//	    Text:    "Hello, world",
//	    Source:  source,
//	    Size:    24,
//	    Payload: color.RGBA{R: 255, G: 255, B: 255, A: 255},
//	})
//
//	cfg := typeset.DefaultTextLayoutConfig()
//	cfg.MaxWidth = 320
//	cfg.Wrap = typeset.WrapWord
//	layout := typeset.LayoutText(&data, storage, cfg)
//
// The resulting Layout can be fed to a CPURenderer (caller-supplied pixel
// sink) or a GPURenderer (DrawTarget adapter; see the render subpackage
// for a wgpu-backed implementation).
//
// # Pluggable shaping backend
//
// Shaping is abstracted through the Shaper interface. By default a
// HarfBuzz-compatible shaper from go-text/typesetting is used; an
// advance-and-kerning shaper built on golang.org/x/image is available for
// environments that do not need complex script support:
//
//	typeset.SetShaper(typeset.NewXImageShaper())
//	defer typeset.SetShaper(nil) // reset to default
package typeset
