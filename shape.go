package typeset

// ShapeText runs the shape-and-measure pass over a block of text.
//
// The result is a pure function of the text, fonts, and sizes: no layout
// configuration is consulted, so the same ShapedText can be arranged any
// number of times under different configurations (narrowing a container,
// toggling alignment) without reshaping. Break opportunities are recorded
// against the width-independent cumulative advance, which is what makes
// re-wrapping at a narrower width stable for lines the new width does not
// actually disturb.
//
// Elements with a nil Source use the storage default. An element whose
// font is missing or closed degrades to zero-width placeholder clusters:
// the block still lays out, and break opportunities inside the degraded
// element survive.
func ShapeText[P any](data *TextData[P], storage *FontStorage) *ShapedText[P] {
	shaped := &ShapedText[P]{}
	if data == nil || data.Len() == 0 {
		shaped.finish()
		return shaped
	}

	shaper := GetShaper()
	st := shapeState{sepRun: -1}

	for ei := range data.elements {
		el := &data.elements[ei]

		source := el.Source
		if source == nil {
			source = storage.Default()
		}
		var parsed ParsedFont
		if source != nil {
			parsed = source.Parsed()
		}

		var rm runMetrics
		if parsed != nil {
			m := parsed.Metrics(el.Size)
			rm = runMetrics{
				ascent:       m.Ascent,
				descent:      m.Descent,
				lineGap:      m.LineGap,
				spaceAdvance: parsed.GlyphAdvance(parsed.GlyphIndex(' '), el.Size),
			}
		} else {
			slogger().Warn("typeset: element has no usable font, shaping placeholders",
				"element", ei)
		}

		shaped.payloads = append(shaped.payloads, el.Payload)
		shaped.sources = append(shaped.sources, source)
		shaped.sizes = append(shaped.sizes, el.Size)
		shaped.metrics = append(shaped.metrics, rm)

		shaped.shapeElement(shaper, &st, ei, el.Text, source, el.Size, rm.spaceAdvance)
	}

	shaped.finish()
	return shaped
}

// shapeState tracks the pending separator run feeding break detection.
// sepRun is the cluster index where the current run of separators began,
// or -1 when the last cluster was renderable content.
type shapeState struct {
	sepRun int
}

// appendCluster adds a cluster and maintains break opportunities: a
// separator run followed by renderable content yields an optional break
// positioned at the content, with TrimPos marking the run start.
func (s *ShapedText[P]) appendCluster(st *shapeState, c Cluster) {
	i := len(s.clusters)
	if c.Kind == ClusterGlyphs {
		if st.sepRun >= 0 {
			s.breaks = append(s.breaks, Break{
				Pos:     i,
				TrimPos: st.sepRun,
				Kind:    BreakAllowed,
				Elem:    c.Elem,
			})
			st.sepRun = -1
		}
	} else if st.sepRun < 0 {
		st.sepRun = i
	}
	s.clusters = append(s.clusters, c)
}

// appendMandatory records a forced line break before the next cluster.
// It terminates any separator run, so no optional break is emitted at the
// same position.
func (s *ShapedText[P]) appendMandatory(st *shapeState, elem int) {
	p := len(s.clusters)
	s.breaks = append(s.breaks, Break{Pos: p, TrimPos: p, Kind: BreakMandatory, Elem: elem})
	st.sepRun = -1
}

// shapeElement walks one element's text, splitting it into shapeable
// segments at tabs, line breaks, and ignored control characters. Segments
// are shaped whole so kerning and ligatures apply across word boundaries
// within the segment.
func (s *ShapedText[P]) shapeElement(shaper Shaper, st *shapeState, elem int, text string, source *FontSource, size, spaceAdvance float64) {
	segStart := -1
	flush := func(end int) {
		if segStart >= 0 {
			s.shapeSegment(shaper, st, elem, text[segStart:end], segStart, source, size)
			segStart = -1
		}
	}

	skip := false
	for i, r := range text {
		if skip {
			skip = false
			continue
		}
		switch classifyRune(r) {
		case runeLinebreak:
			flush(i)
			// Fold CRLF into a single break.
			if r == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				skip = true
			}
			s.appendMandatory(st, elem)
		case runeTab:
			flush(i)
			s.appendCluster(st, Cluster{
				Elem:       elem,
				Kind:       ClusterTab,
				ByteStart:  i,
				ByteEnd:    i + 1,
				TabAdvance: spaceAdvance,
			})
		case runeIgnore:
			flush(i)
		default:
			if segStart < 0 {
				segStart = i
			}
		}
	}
	flush(len(text))
}

// shapeSegment shapes one segment and groups the output glyphs into
// clusters. Glyph positions are rebased from the segment origin to each
// cluster's own origin so the arrange pass can place clusters freely.
func (s *ShapedText[P]) shapeSegment(shaper Shaper, st *shapeState, elem int, seg string, byteBase int, source *FontSource, size float64) {
	runes := make([]rune, 0, len(seg))
	offs := make([]int, 0, len(seg)+1)
	for off, r := range seg {
		runes = append(runes, r)
		offs = append(offs, off)
	}
	offs = append(offs, len(seg))

	glyphs := shaper.Shape(seg, source, size)
	if len(glyphs) == 0 {
		// Degraded: no usable font. Emit one zero-width placeholder
		// cluster per rune so breaks and byte ranges stay intact.
		for ri, r := range runes {
			kind := ClusterGlyphs
			if r == ' ' {
				kind = ClusterSpace
			}
			s.appendCluster(st, Cluster{
				Elem:      elem,
				Kind:      kind,
				ByteStart: byteBase + offs[ri],
				ByteEnd:   byteBase + offs[ri+1],
			})
		}
		return
	}

	// Group consecutive glyphs sharing a cluster index. Shapers emit
	// non-decreasing cluster indices for left-to-right runs, so one sweep
	// suffices. penBefore is the segment-relative pen at the group start.
	var penBefore float64
	for gi := 0; gi < len(glyphs); {
		gj := gi + 1
		for gj < len(glyphs) && glyphs[gj].Cluster == glyphs[gi].Cluster {
			gj++
		}

		// Clamp cluster indices so malformed custom shaper output cannot
		// index outside the segment.
		runeStart := glyphs[gi].Cluster
		if runeStart < 0 {
			runeStart = 0
		}
		if runeStart >= len(runes) {
			runeStart = len(runes) - 1
		}
		runeEnd := len(runes)
		if gj < len(glyphs) {
			runeEnd = glyphs[gj].Cluster
		}
		if runeEnd <= runeStart {
			runeEnd = runeStart + 1
		}
		if runeEnd > len(runes) {
			runeEnd = len(runes)
		}

		kind := ClusterSpace
		for ri := runeStart; ri < runeEnd; ri++ {
			if runes[ri] != ' ' {
				kind = ClusterGlyphs
				break
			}
		}

		c := Cluster{
			Elem:      elem,
			Kind:      kind,
			ByteStart: byteBase + offs[runeStart],
			ByteEnd:   byteBase + offs[runeEnd],
			Glyphs:    make([]ShapedGlyph, gj-gi),
		}
		for k := gi; k < gj; k++ {
			g := glyphs[k]
			g.X -= penBefore
			c.Glyphs[k-gi] = g
			c.Advance += g.XAdvance
		}
		penBefore += c.Advance

		s.appendCluster(st, c)
		gi = gj
	}
}
