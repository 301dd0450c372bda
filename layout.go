package typeset

// PositionedGlyph is a glyph with its final placement resolved.
type PositionedGlyph[P any] struct {
	// GID is the glyph index within the source font.
	GID GlyphID

	// Source is the font the glyph renders from. Nil for placeholder
	// glyphs of elements whose font was unavailable; renderers skip
	// those.
	Source *FontSource

	// Size is the font size in pixels.
	Size float64

	// X, Y locate the glyph bitmap's top-left corner in layout space,
	// y-down: the pen position plus the integer bitmap bearing reported
	// by GlyphExtent. The fractional part is therefore the pen's own
	// subpixel phase, which renderers quantize into the cache key.
	X, Y float64

	// Payload is the caller value carried through from the TextElement.
	Payload P
}

// Line is one laid-out line of text.
type Line[P any] struct {
	// X is the pen-start offset of the line, including horizontal
	// alignment.
	X float64

	// Top is the line's top edge, including vertical alignment.
	Top float64

	// Baseline is the absolute baseline position of the line.
	Baseline float64

	// Width is the rendered width of the line, including justification.
	Width float64

	// Height is the scaled line height the line occupies.
	Height float64

	// Glyphs are the line's glyphs in pen order.
	Glyphs []PositionedGlyph[P]
}

// Layout is the final arrangement of a text block: lines stacked top to
// bottom, every glyph positioned. It is immutable once produced and is
// the input both renderers consume.
type Layout[P any] struct {
	// Lines in top-to-bottom order.
	Lines []Line[P]

	// Width is the widest line width.
	Width float64

	// Height is the stacked height of all retained lines.
	Height float64
}

// NumGlyphs returns the total glyph count across all lines.
func (l *Layout[P]) NumGlyphs() int {
	n := 0
	for i := range l.Lines {
		n += len(l.Lines[i].Glyphs)
	}
	return n
}

// IsEmpty reports whether the layout holds no lines.
func (l *Layout[P]) IsEmpty() bool {
	return len(l.Lines) == 0
}

// LayoutText shapes and arranges text in one call.
// Callers re-arranging the same text under several configurations should
// instead call ShapeText once and Arrange per configuration.
func LayoutText[P any](data *TextData[P], storage *FontStorage, cfg TextLayoutConfig) *Layout[P] {
	return Arrange(ShapeText(data, storage), cfg)
}

// Measure returns the dimensions text would occupy under cfg without
// building glyph positions for rendering.
func Measure[P any](data *TextData[P], storage *FontStorage, cfg TextLayoutConfig) (width, height float64) {
	l := LayoutText(data, storage, cfg)
	return l.Width, l.Height
}

// Arrange runs the arrange pass: wrap, stack, align. All decisions walk
// the break-opportunity list recorded at shaping time, so the outcome is
// deterministic for identical inputs and stable under width changes that
// do not force an earlier break.
func Arrange[P any](shaped *ShapedText[P], cfg TextLayoutConfig) *Layout[P] {
	cfg = cfg.normalize()
	if shaped == nil || len(shaped.payloads) == 0 {
		return &Layout[P]{}
	}

	var spans []lineSpan
	if cfg.Wrap == WrapChar && cfg.wrapping() {
		spans = shaped.charSpans(&cfg)
	} else {
		spans = shaped.wordSpans(&cfg)
	}
	return shaped.stack(&cfg, spans)
}

// lineSpan is a committed line before stacking: the rendered cluster
// range, whether a soft wrap produced it, and the element supplying
// metrics when the range is empty.
type lineSpan struct {
	start, end int
	soft       bool
	elem       int
}

func isSepCluster(c *Cluster) bool {
	return c.Kind != ClusterGlyphs
}

// wordSpans walks the break list greedily: first candidate exceeding the
// limit commits the line at the previous fitting break, the scan resumes
// from the new line start, and no committed line is ever revisited.
// Separator runs consumed by a soft wrap are dropped from both lines.
// With wrapping off (WrapNone, or no width limit) only mandatory breaks
// commit.
func (s *ShapedText[P]) wordSpans(cfg *TextLayoutConfig) []lineSpan {
	n := len(s.clusters)
	spans := make([]lineSpan, 0, len(s.breaks)+1)
	wrap := cfg.Wrap == WrapWord && cfg.wrapping()

	anchor := 0 // cluster index of the current line start
	prev := -1  // index of the last fitting optional break on this line

	for bi := 0; bi < len(s.breaks); bi++ {
		b := s.breaks[bi]
		if b.Kind == BreakMandatory {
			spans = append(spans, lineSpan{start: anchor, end: b.Pos, elem: b.Elem})
			anchor = b.Pos
			prev = -1
			continue
		}
		if !wrap {
			continue
		}

		// Candidate width excludes the break's own separators.
		if s.effWidth(anchor, b.TrimPos, cfg) <= cfg.MaxWidth {
			prev = bi
			continue
		}

		if prev >= 0 {
			pb := s.breaks[prev]
			if pb.TrimPos > anchor {
				spans = append(spans, lineSpan{start: anchor, end: pb.TrimPos, soft: true, elem: pb.Elem})
			}
			anchor = pb.Pos
			prev = -1
			bi-- // retest this break against the new line start
			continue
		}

		// No prior break on the line: a single unbreakable run wider
		// than the limit goes on its own line.
		if b.TrimPos > anchor {
			spans = append(spans, lineSpan{start: anchor, end: b.TrimPos, soft: true, elem: b.Elem})
		}
		anchor = b.Pos
	}

	// The end of text is the final wrap candidate.
	if wrap && n > anchor && prev >= 0 && s.effWidth(anchor, n, cfg) > cfg.MaxWidth {
		pb := s.breaks[prev]
		if pb.TrimPos > anchor {
			spans = append(spans, lineSpan{start: anchor, end: pb.TrimPos, soft: true, elem: pb.Elem})
		}
		anchor = pb.Pos
	}

	// Always commit the tail, even empty, so a trailing forced break
	// yields a line.
	return append(spans, lineSpan{start: anchor, end: n, elem: len(s.payloads) - 1})
}

// charSpans wraps at every cluster boundary: each cluster is its own wrap
// candidate, so an unbreakable run subdivides instead of overflowing. A
// line never holds fewer than one cluster.
func (s *ShapedText[P]) charSpans(cfg *TextLayoutConfig) []lineSpan {
	n := len(s.clusters)
	spans := make([]lineSpan, 0, 8)

	mand := make([]Break, 0, len(s.breaks))
	for _, b := range s.breaks {
		if b.Kind == BreakMandatory {
			mand = append(mand, b)
		}
	}
	mi := 0
	anchor := 0

	for c := 0; c <= n; c++ {
		for mi < len(mand) && mand[mi].Pos == c {
			spans = append(spans, lineSpan{start: anchor, end: c, elem: mand[mi].Elem})
			anchor = c
			mi++
		}
		if c == n {
			break
		}
		if s.effWidth(anchor, c+1, cfg) <= cfg.MaxWidth || c == anchor {
			continue
		}

		end := c
		for end > anchor && isSepCluster(&s.clusters[end-1]) {
			end--
		}
		if end > anchor {
			spans = append(spans, lineSpan{start: anchor, end: end, soft: true, elem: s.clusters[c].Elem})
		}

		// Consume the separator run at the wrap point, stopping at any
		// mandatory break position.
		a := c
		for a < n && isSepCluster(&s.clusters[a]) {
			if mi < len(mand) && mand[mi].Pos == a {
				break
			}
			a++
		}
		anchor = a
		c = a - 1
	}

	return append(spans, lineSpan{start: anchor, end: n, elem: len(s.payloads) - 1})
}

// lineBuild carries per-line measurements between the two stacking loops.
type lineBuild struct {
	span   lineSpan
	ascent float64
	height float64
	natW   float64
	gaps   int
}

// stack turns committed spans into the final layout: vertical stacking
// with height truncation, then alignment offsets and glyph placement.
func (s *ShapedText[P]) stack(cfg *TextLayoutConfig, spans []lineSpan) *Layout[P] {
	builds := make([]lineBuild, 0, len(spans))
	var totalH, maxNatW float64

	for _, sp := range spans {
		asc, desc, gap := s.spanMetrics(sp)
		scaled := (asc - desc + gap) * cfg.LineHeightScale
		if scaled < 0 {
			scaled = 0
		}
		// A line that does not fit entirely is dropped, along with
		// everything after it.
		if cfg.MaxHeight > 0 && totalH+scaled > cfg.MaxHeight {
			break
		}

		natW := s.effWidth(sp.start, sp.end, cfg)
		gaps := 0
		for ci := sp.start; ci < sp.end; ci++ {
			if isSepCluster(&s.clusters[ci]) {
				gaps++
			}
		}
		builds = append(builds, lineBuild{span: sp, ascent: asc, height: scaled, natW: natW, gaps: gaps})
		totalH += scaled
		if natW > maxNatW {
			maxNatW = natW
		}
	}

	targetW := cfg.MaxWidth
	if targetW <= 0 {
		targetW = maxNatW
	}
	targetH := cfg.MaxHeight
	if targetH <= 0 {
		targetH = totalH
	}

	var vOff float64
	switch cfg.VerticalAlign {
	case AlignMiddle:
		vOff = (targetH - totalH) / 2
	case AlignBottom:
		vOff = targetH - totalH
	}

	out := &Layout[P]{Lines: make([]Line[P], 0, len(builds)), Height: totalH}
	var cursor float64
	for _, lb := range builds {
		lineW := lb.natW
		extra := 0.0
		if cfg.HorizontalAlign == AlignJustify && lb.span.soft && lb.gaps > 0 {
			if slack := targetW - lb.natW; slack > 0 {
				extra = slack / float64(lb.gaps)
				lineW = targetW
			}
		}

		var hOff float64
		switch cfg.HorizontalAlign {
		case AlignCenter:
			hOff = (targetW - lineW) / 2
		case AlignRight:
			hOff = targetW - lineW
		}

		baseline := cursor + lb.ascent + vOff
		line := Line[P]{
			X:        hOff,
			Top:      cursor + vOff,
			Baseline: baseline,
			Width:    lineW,
			Height:   lb.height,
			Glyphs:   s.fillGlyphs(cfg, lb.span, hOff, baseline, extra),
		}
		out.Lines = append(out.Lines, line)
		if lineW > out.Width {
			out.Width = lineW
		}
		cursor += lb.height
	}
	return out
}

// spanMetrics returns the line metrics for a span: the maximum ascent and
// line gap and the deepest (most negative) descent across the elements
// present. Empty spans take the metrics of the break's element.
func (s *ShapedText[P]) spanMetrics(sp lineSpan) (ascent, descent, lineGap float64) {
	if sp.start >= sp.end {
		m := s.metrics[sp.elem]
		return m.ascent, m.descent, m.lineGap
	}
	first := true
	lastElem := -1
	for ci := sp.start; ci < sp.end; ci++ {
		e := s.clusters[ci].Elem
		if e == lastElem {
			continue
		}
		lastElem = e
		m := s.metrics[e]
		if first {
			ascent, descent, lineGap = m.ascent, m.descent, m.lineGap
			first = false
			continue
		}
		if m.ascent > ascent {
			ascent = m.ascent
		}
		if m.descent < descent {
			descent = m.descent
		}
		if m.lineGap > lineGap {
			lineGap = m.lineGap
		}
	}
	return
}

// fillGlyphs places a span's glyphs along the pen, applying letter
// spacing, tab expansion, and justification extra per separator gap.
func (s *ShapedText[P]) fillGlyphs(cfg *TextLayoutConfig, sp lineSpan, penStart, baseline, extra float64) []PositionedGlyph[P] {
	count := 0
	for ci := sp.start; ci < sp.end; ci++ {
		count += len(s.clusters[ci].Glyphs)
	}
	if count == 0 {
		return nil
	}

	glyphs := make([]PositionedGlyph[P], 0, count)
	pen := penStart
	lastElem := -1
	var parsed ParsedFont

	for ci := sp.start; ci < sp.end; ci++ {
		c := &s.clusters[ci]
		if c.Kind == ClusterTab {
			pen += float64(cfg.TabWidth)*c.TabAdvance + cfg.LetterSpacing + extra
			continue
		}

		if c.Elem != lastElem {
			lastElem = c.Elem
			parsed = nil
			if src := s.sources[c.Elem]; src != nil {
				parsed = src.Parsed()
			}
		}
		size := s.sizes[c.Elem]

		for _, g := range c.Glyphs {
			var left, top int
			if parsed != nil {
				_, _, left, top = parsed.GlyphExtent(g.GID, size)
			}
			glyphs = append(glyphs, PositionedGlyph[P]{
				GID:     g.GID,
				Source:  s.sources[c.Elem],
				Size:    size,
				X:       pen + g.X + float64(left),
				Y:       baseline + g.Y + float64(top),
				Payload: s.payloads[c.Elem],
			})
		}

		pen += c.Advance + cfg.LetterSpacing
		if c.Kind == ClusterSpace {
			pen += extra
		}
	}
	return glyphs
}
