package typeset

import (
	"sync"

	"github.com/gogpu/typeset/cache"
)

// FontSystem bundles font storage, shaping, layout and both renderers
// behind a single handle, for callers that want one object to own the
// whole text pipeline rather than wiring the pieces themselves.
//
// The storage side (loading and querying fonts, layout) is safe for
// concurrent use. The render side drives single-goroutine renderers:
// RenderCPU and RenderGPU calls must not overlap with themselves.
type FontSystem[P any] struct {
	storage *FontStorage

	mu  sync.Mutex
	cpu *CPURenderer[P]
	gpu *GPURenderer[P]
}

// NewFontSystem creates a FontSystem around the given storage. A nil
// storage gets a fresh empty one.
func NewFontSystem[P any](storage *FontStorage) *FontSystem[P] {
	if storage == nil {
		storage = NewFontStorage()
	}
	return &FontSystem[P]{storage: storage}
}

// Storage returns the underlying font storage.
func (fs *FontSystem[P]) Storage() *FontStorage { return fs.storage }

// LoadFont parses font data and registers it with the storage.
func (fs *FontSystem[P]) LoadFont(data []byte, opts ...SourceOption) (*FontSource, error) {
	return fs.storage.LoadFont(data, opts...)
}

// LoadFontFile reads and registers a font file.
func (fs *FontSystem[P]) LoadFontFile(path string, opts ...SourceOption) (*FontSource, error) {
	return fs.storage.LoadFontFile(path, opts...)
}

// LoadSystemFonts indexes the platform's installed fonts for Query
// lookup by family name.
func (fs *FontSystem[P]) LoadSystemFonts() error {
	return fs.storage.LoadSystemFonts()
}

// LayoutText shapes and arranges text into a renderable layout.
func (fs *FontSystem[P]) LayoutText(data *TextData[P], cfg TextLayoutConfig) *Layout[P] {
	return LayoutText(data, fs.storage, cfg)
}

// Measure returns the laid-out dimensions of text without building
// positioned glyphs.
func (fs *FontSystem[P]) Measure(data *TextData[P], cfg TextLayoutConfig) (width, height float64) {
	return Measure(data, fs.storage, cfg)
}

// InitCPU creates the system's CPU renderer. A nil tier list uses
// DefaultCPUTiers. Calling it again replaces the renderer and drops its
// cache.
func (fs *FontSystem[P]) InitCPU(tiers []cache.TierConfig, subpixel SubpixelConfig) error {
	r, err := NewCPURenderer[P](tiers, subpixel)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.cpu = r
	fs.mu.Unlock()
	return nil
}

// InitGPU creates the system's GPU renderer. A nil tier list uses
// DefaultGPUTiers, a nil colorFn the color.Color-aware default.
func (fs *FontSystem[P]) InitGPU(tiers []cache.TierConfig, subpixel SubpixelConfig, colorFn func(P) [4]float32) error {
	r, err := NewGPURenderer[P](tiers, subpixel, colorFn)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.gpu = r
	fs.mu.Unlock()
	return nil
}

// CPU returns the CPU renderer, or nil before InitCPU.
func (fs *FontSystem[P]) CPU() *CPURenderer[P] {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.cpu
}

// GPU returns the GPU renderer, or nil before InitGPU.
func (fs *FontSystem[P]) GPU() *GPURenderer[P] {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.gpu
}

// RenderCPU composites a layout through the CPU renderer's sink
// interface. InitCPU must have been called.
func (fs *FontSystem[P]) RenderCPU(layout *Layout[P], width, height int, sink func(x, y int, coverage uint8, payload P)) error {
	r := fs.CPU()
	if r == nil {
		return ErrRendererNotInitialized
	}
	return r.Render(layout, width, height, sink)
}

// RenderGPU emits a layout's uploads and draws onto a DrawTarget.
// InitGPU must have been called.
func (fs *FontSystem[P]) RenderGPU(layout *Layout[P], target DrawTarget) error {
	r := fs.GPU()
	if r == nil {
		return ErrRendererNotInitialized
	}
	return r.Render(layout, target)
}

// ClearCaches drops the glyph bitmaps of both renderers. Renderers not
// yet initialized are skipped.
func (fs *FontSystem[P]) ClearCaches() {
	if r := fs.CPU(); r != nil {
		r.ClearCache()
	}
	if r := fs.GPU(); r != nil {
		r.ClearCache()
	}
}
