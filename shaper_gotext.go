package typeset

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xlanguage "golang.org/x/text/language"

	"github.com/gogpu/typeset/cache"
)

// GoTextShaper provides HarfBuzz-level text shaping using go-text/typesetting.
// It supports advanced OpenType features including:
//   - Ligature substitution (fi, fl, ffi, etc.)
//   - Kerning pairs (AV, To, etc.)
//   - Contextual alternates
//   - Complex scripts (Devanagari, Thai, etc.)
//
// Mixed-script text is split into uniform-script runs before shaping, so a
// single element can combine, say, Latin and Han without degraded output.
//
// GoTextShaper is safe for concurrent use. It caches parsed font.Font objects
// (which are thread-safe) and creates lightweight font.Face instances per
// Shape() call (font.Face is NOT safe for concurrent use). The HarfbuzzShaper
// instances are pooled via sync.Pool since they also are not concurrent-safe.
// Whole shaping runs are additionally memoized in a sharded LRU, so repeated
// layout of the same text skips HarfBuzz entirely.
type GoTextShaper struct {
	// shaperPool pools HarfbuzzShaper instances for concurrent use.
	// HarfbuzzShaper has internal mutable state (buffer) and is NOT safe
	// for concurrent use, but reusing across sequential calls is efficient.
	shaperPool sync.Pool

	// mu protects the font cache.
	mu sync.RWMutex

	// fontCache maps FontSource pointers to parsed go-text Font objects.
	// font.Font is read-only and safe for concurrent use, unlike font.Face.
	// This avoids re-parsing the font data on every Shape() call.
	fontCache map[*FontSource]*font.Font

	// shapeCache memoizes whole shaping runs keyed by source, quantized
	// size and text. Values are shared: Shape returns the cached slice
	// directly, so callers must treat the result as read-only.
	shapeCache *cache.ShardedCache[shapeKey, []ShapedGlyph]

	dir  di.Direction
	lang language.Language
}

// shapeKey identifies one memoized shaping run.
type shapeKey struct {
	source uint64
	sizeQ  uint32
	text   string
}

func hashShapeKey(k shapeKey) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[:8], k.source)
	binary.LittleEndian.PutUint32(buf[8:], k.sizeQ)
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(k.text))
	return h.Sum64()
}

// GoTextShaperOption configures a GoTextShaper.
type GoTextShaperOption func(*GoTextShaper)

// WithDirection sets the shaping direction. The default is left-to-right;
// there is no bidirectional reordering, so right-to-left input should
// arrive already segmented into uniform runs.
func WithDirection(d Direction) GoTextShaperOption {
	return func(s *GoTextShaper) {
		if d == DirectionRTL {
			s.dir = di.DirectionRTL
		} else {
			s.dir = di.DirectionLTR
		}
	}
}

// WithLanguage sets the BCP 47 language used for language-system lookup
// during shaping. The default is English.
func WithLanguage(tag xlanguage.Tag) GoTextShaperOption {
	return func(s *GoTextShaper) {
		s.lang = language.NewLanguage(tag.String())
	}
}

// NewGoTextShaper creates a new GoTextShaper backed by go-text/typesetting's
// HarfBuzz implementation.
func NewGoTextShaper(opts ...GoTextShaperOption) *GoTextShaper {
	s := &GoTextShaper{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fontCache:  make(map[*FontSource]*font.Font),
		shapeCache: cache.NewSharded[shapeKey, []ShapedGlyph](0, hashShapeKey),
		dir:        di.DirectionLTR,
		lang:       language.NewLanguage("en"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shape implements the Shaper interface.
// It converts text into positioned glyphs using HarfBuzz shaping via
// go-text/typesetting.
//
// Runs are memoized per (source, size, text), so the returned slice may
// be shared with other callers and must be treated as read-only.
func (s *GoTextShaper) Shape(text string, source *FontSource, size float64) []ShapedGlyph {
	if text == "" || source == nil {
		return nil
	}

	key := shapeKey{source: source.ID(), sizeQ: QuantizeSize(size), text: text}
	if glyphs, ok := s.shapeCache.Get(key); ok {
		return glyphs
	}

	// Get or create the cached go-text Font for this source.
	goTextFont, err := s.getOrCreateFont(source)
	if err != nil {
		// The layout pass degrades missing fonts to placeholders, so a
		// parse failure surfaces as unshapeable rather than fatal.
		slogger().Warn("typeset: shaping font unavailable",
			"font", source.Name(), "error", err)
		return nil
	}

	// Create a lightweight font.Face for this shaping call.
	// font.Face is NOT safe for concurrent use, so each Shape() call
	// gets its own instance. font.NewFace is cheap: it wraps the
	// thread-safe *Font and initializes glyph caches.
	goTextFace := font.NewFace(goTextFont)

	runes := []rune(text)

	// Get a HarfbuzzShaper from the pool (not concurrent-safe, so each
	// goroutine needs its own instance).
	hbShaper := s.shaperPool.Get().(*shaping.HarfbuzzShaper)

	var result []ShapedGlyph
	var pen float64
	for _, run := range splitScriptRuns(runes) {
		input := shaping.Input{
			Text:      runes,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: s.dir,
			Face:      goTextFace,
			Size:      floatToFixed(size),
			Script:    run.script,
			Language:  s.lang,
		}
		output := hbShaper.Shape(input)
		result, pen = appendRunGlyphs(result, output.Glyphs, pen)
	}

	s.shaperPool.Put(hbShaper)
	s.shapeCache.Set(key, result)
	return result
}

// getOrCreateFont returns a cached go-text font.Font for the given source,
// or parses the font data and caches the Font (not Face).
// font.Font is read-only and safe for concurrent use.
func (s *GoTextShaper) getOrCreateFont(source *FontSource) (*font.Font, error) {
	// Fast path: check cache with read lock.
	s.mu.RLock()
	if f, ok := s.fontCache[source]; ok {
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	// Slow path: parse font and update cache with write lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if f, ok := s.fontCache[source]; ok {
		return f, nil
	}

	data := source.fontData()
	if data == nil {
		return nil, ErrSourceClosed
	}

	// Parse font data using go-text/typesetting.
	// ParseTTF returns a *Face which embeds the thread-safe *Font.
	goTextFace, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// Cache the Font (thread-safe), not the Face.
	s.fontCache[source] = goTextFace.Font
	return goTextFace.Font, nil
}

// ClearCache removes all cached parsed fonts and memoized shaping runs.
// Call this if you no longer need previously loaded fonts and want to free memory.
func (s *GoTextShaper) ClearCache() {
	s.mu.Lock()
	s.fontCache = make(map[*FontSource]*font.Font)
	s.mu.Unlock()
	s.shapeCache.Clear()
}

// RemoveSource removes the cached parsed font for a specific FontSource.
// This is useful when a FontSource is closed. Memoized shaping runs for
// the source age out of their LRU on their own; source ids are never
// reused.
func (s *GoTextShaper) RemoveSource(source *FontSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fontCache, source)
}

// scriptRun is a span of runes sharing one script.
type scriptRun struct {
	start, end int
	script     language.Script
}

// splitScriptRuns divides runes into runs of uniform script. Runes in the
// Common class (punctuation, digits, spaces) attach to the run in
// progress, matching the segmentation HarfBuzz expects.
func splitScriptRuns(runes []rune) []scriptRun {
	runs := make([]scriptRun, 0, 1)
	cur := scriptRun{start: 0, script: language.Common}
	for i, r := range runes {
		rs := language.LookupScript(r)
		if rs == language.Common {
			continue
		}
		if cur.script == language.Common {
			// First concrete script claims the run, including any leading
			// Common runes.
			cur.script = rs
			continue
		}
		if rs != cur.script {
			cur.end = i
			runs = append(runs, cur)
			cur = scriptRun{start: i, script: rs}
		}
	}
	cur.end = len(runes)
	if cur.script == language.Common {
		cur.script = language.Latin
	}
	return append(runs, cur)
}

// appendRunGlyphs converts go-text output glyphs to ShapedGlyphs, carrying
// the pen across runs so positions stay relative to the whole shaped text.
func appendRunGlyphs(dst []ShapedGlyph, glyphs []shaping.Glyph, pen float64) ([]ShapedGlyph, float64) {
	for _, g := range glyphs {
		// XOffset and YOffset represent fine-grained positioning adjustments
		// applied on top of the current pen position.
		xOff := fixedToFloat(g.XOffset)
		yOff := fixedToFloat(g.YOffset)
		adv := fixedToFloat(g.XAdvance)

		dst = append(dst, ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)), //nolint:gosec // fonts addressable here stay within uint16 glyph space
			Cluster:  g.ClusterIndex,
			X:        pen + xOff,
			Y:        yOff,
			XAdvance: adv,
		})
		pen += adv
	}
	return dst, pen
}
