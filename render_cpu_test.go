package typeset

import (
	"errors"
	"testing"

	"github.com/gogpu/typeset/cache"
)

// renderFake lays out text on the fake font and renders it into a
// coverage grid of the given extent.
func renderFake(t *testing.T, text string, width, height int) []uint8 {
	t.Helper()
	useXImageShaper(t)
	src := newFakeSource(t)
	layout := LayoutText(fakeData(src, text, 10), fakeStorage(src), DefaultTextLayoutConfig())

	r, err := NewCPURenderer[int](nil, NoSubpixelConfig())
	if err != nil {
		t.Fatalf("NewCPURenderer failed: %v", err)
	}

	grid := make([]uint8, width*height)
	err = r.Render(layout, width, height, func(x, y int, cov uint8, _ int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			t.Fatalf("sink position (%d, %d) outside %dx%d extent", x, y, width, height)
		}
		grid[y*width+x] = cov
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return grid
}

func countCovered(grid []uint8) int {
	n := 0
	for _, c := range grid {
		if c != 0 {
			n++
		}
	}
	return n
}

func TestCPURender(t *testing.T) {
	// Each fake glyph is a solid 8x8 square at 10px, advancing 10.
	grid := renderFake(t, "ab", 20, 10)

	if got := countCovered(grid); got != 128 {
		t.Fatalf("covered pixels = %d, want 128 (two 8x8 glyphs)", got)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if grid[y*20+x] != 0xFF {
				t.Fatalf("pixel (%d, %d) = %d, want 255", x, y, grid[y*20+x])
			}
			if grid[y*20+x+10] != 0xFF {
				t.Fatalf("pixel (%d, %d) = %d, want 255", x+10, y, grid[y*20+x+10])
			}
		}
	}
	// The inter-glyph gap stays clear.
	for y := 0; y < 10; y++ {
		if grid[y*20+9] != 0 {
			t.Errorf("gap pixel (9, %d) = %d, want 0", y, grid[y*20+9])
		}
	}
}

func TestCPURenderClipsToExtent(t *testing.T) {
	grid := renderFake(t, "ab", 5, 5)

	// Only the 5x5 overlap of the first glyph fits.
	if got := countCovered(grid); got != 25 {
		t.Errorf("covered pixels = %d, want 25", got)
	}
}

func TestCPURenderSkipsSpaces(t *testing.T) {
	grid := renderFake(t, "a b", 30, 10)

	if got := countCovered(grid); got != 128 {
		t.Fatalf("covered pixels = %d, want 128", got)
	}
	// 'b' starts at pen 20; the space column stays clear.
	for y := 0; y < 10; y++ {
		for x := 8; x < 20; x++ {
			if grid[y*30+x] != 0 {
				t.Fatalf("space pixel (%d, %d) = %d, want 0", x, y, grid[y*30+x])
			}
		}
	}
}

func TestCPURenderNilArguments(t *testing.T) {
	r, err := NewCPURenderer[int](nil, NoSubpixelConfig())
	if err != nil {
		t.Fatalf("NewCPURenderer failed: %v", err)
	}

	if err := r.Render(&Layout[int]{}, 10, 10, nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("Render with nil sink error = %v, want ErrNilTarget", err)
	}

	calls := 0
	sink := func(int, int, uint8, int) { calls++ }
	if err := r.Render(nil, 10, 10, sink); err != nil {
		t.Errorf("Render(nil layout) error = %v, want nil", err)
	}
	if err := r.Render(&Layout[int]{}, 0, 10, sink); err != nil {
		t.Errorf("Render with zero width error = %v, want nil", err)
	}
	if calls != 0 {
		t.Errorf("sink called %d times for empty renders, want 0", calls)
	}
}

func TestCPURenderCacheStats(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	layout := LayoutText(fakeData(src, "ab", 10), fakeStorage(src), DefaultTextLayoutConfig())

	r, err := NewCPURenderer[int](nil, NoSubpixelConfig())
	if err != nil {
		t.Fatalf("NewCPURenderer failed: %v", err)
	}
	sink := func(int, int, uint8, int) {}

	if err := r.Render(layout, 20, 10, sink); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	stats := r.CacheStats()
	if got := stats.Misses.Load(); got != 2 {
		t.Errorf("misses after first render = %d, want 2", got)
	}
	if got := stats.Hits.Load(); got != 0 {
		t.Errorf("hits after first render = %d, want 0", got)
	}

	if err := r.Render(layout, 20, 10, sink); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := stats.Hits.Load(); got != 2 {
		t.Errorf("hits after second render = %d, want 2", got)
	}

	r.ClearCache()
	if err := r.Render(layout, 20, 10, sink); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := stats.Misses.Load(); got != 4 {
		t.Errorf("misses after ClearCache = %d, want 4", got)
	}
}

func TestCPURenderOversizedGlyphSkipped(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)

	// 30px text yields 24px bitmaps; a single 16px tier cannot hold them.
	layout := LayoutText(fakeData(src, "a", 30), fakeStorage(src), DefaultTextLayoutConfig())

	r, err := NewCPURenderer[int]([]cache.TierConfig{{CellSize: 16, Capacity: 4}}, NoSubpixelConfig())
	if err != nil {
		t.Fatalf("NewCPURenderer failed: %v", err)
	}

	calls := 0
	err = r.Render(layout, 40, 40, func(int, int, uint8, int) { calls++ })
	if err != nil {
		t.Errorf("Render error = %v, want nil (skip, not fail)", err)
	}
	if calls != 0 {
		t.Errorf("sink called %d times for oversized glyph, want 0", calls)
	}
}

func TestNewCPURendererBadTiers(t *testing.T) {
	if _, err := NewCPURenderer[int]([]cache.TierConfig{}, NoSubpixelConfig()); err == nil {
		t.Error("empty tier list accepted")
	}
	if _, err := NewCPURenderer[int]([]cache.TierConfig{{CellSize: 0, Capacity: 8}}, NoSubpixelConfig()); err == nil {
		t.Error("zero cell size accepted")
	}
}
