package typeset

// ShapedGlyph is a single glyph produced by shaping, in pixels, y-down.
// Shapers emit positions relative to the run origin; once grouped into a
// Cluster the positions are rebased to the cluster origin.
type ShapedGlyph struct {
	// GID is the glyph index within the font.
	GID GlyphID

	// Cluster is the rune index within the shaped text that this glyph
	// originates from.
	Cluster int

	// X and Y are pen-relative positioning adjustments.
	X, Y float64

	// XAdvance is the horizontal pen advance contributed by this glyph.
	XAdvance float64

	// YAdvance is the vertical pen advance (unused for horizontal text).
	YAdvance float64
}

// ClusterKind classifies a glyph cluster for the arrange pass.
type ClusterKind uint8

const (
	// ClusterGlyphs is ordinary renderable content.
	ClusterGlyphs ClusterKind = iota
	// ClusterSpace is a rendered inter-word separator.
	ClusterSpace
	// ClusterTab is an unrendered separator advancing by a configurable
	// multiple of the space advance.
	ClusterTab
)

// Cluster is an indivisible shaped unit: one or more glyphs sharing a
// source text range. Lines may only begin and end at cluster boundaries.
type Cluster struct {
	// Elem is the index of the originating TextElement.
	Elem int

	// Kind classifies the cluster.
	Kind ClusterKind

	// ByteStart and ByteEnd delimit the cluster's source range within the
	// element text.
	ByteStart, ByteEnd int

	// Advance is the natural pen advance of the cluster. Zero for tabs;
	// their advance is configuration-dependent and derived from
	// TabAdvance at arrange time.
	Advance float64

	// TabAdvance is the element's single-space advance, recorded for tab
	// clusters only.
	TabAdvance float64

	// Glyphs are the shaped glyphs of the cluster, empty for tabs.
	Glyphs []ShapedGlyph
}

// Break is a line-break opportunity between clusters.
type Break struct {
	// Pos is the cluster index the break sits before: a line committed at
	// this break ends before Pos and the next line starts at Pos.
	Pos int

	// TrimPos is the start of the separator run immediately before Pos.
	// Clusters in [TrimPos, Pos) are consumed invisibly when a soft wrap
	// commits at this break. TrimPos equals Pos for mandatory breaks.
	TrimPos int

	// Kind is the break kind.
	Kind BreakKind

	// Elem is the element owning the break, supplying line metrics when
	// the break commits an empty line.
	Elem int
}

// runMetrics carries the per-element vertical metrics and space advance
// sampled once during shaping.
type runMetrics struct {
	ascent, descent, lineGap float64
	spaceAdvance             float64
}

// ShapedText is the width-independent artifact of the shape-and-measure
// pass: shaped clusters, break opportunities, and cumulative natural
// advances. It never depends on a TextLayoutConfig, so it can be arranged
// repeatedly under different configurations (and cached by the caller
// across re-layouts).
type ShapedText[P any] struct {
	clusters []Cluster
	breaks   []Break
	payloads []P
	sources  []*FontSource
	sizes    []float64
	metrics  []runMetrics

	// cumAdv[i] is the natural advance of clusters[:i]; len(clusters)+1.
	cumAdv []float64
	// cumTab[i] is the accumulated TabAdvance of tab clusters in
	// clusters[:i]; len(clusters)+1.
	cumTab []float64
}

// IsEmpty reports whether shaping produced no clusters and no breaks.
func (s *ShapedText[P]) IsEmpty() bool {
	return len(s.clusters) == 0 && len(s.breaks) == 0
}

// NumClusters returns the number of shaped clusters.
func (s *ShapedText[P]) NumClusters() int {
	return len(s.clusters)
}

// NumBreaks returns the number of break opportunities.
func (s *ShapedText[P]) NumBreaks() int {
	return len(s.breaks)
}

// NaturalWidth returns the total natural advance of all clusters, ignoring
// configuration-dependent adjustments (letter spacing, tab width).
func (s *ShapedText[P]) NaturalWidth() float64 {
	return s.cumAdv[len(s.clusters)]
}

// effCum returns the effective cumulative advance at cluster boundary i
// under cfg: natural advances plus letter spacing per cluster plus the
// configured tab expansion. O(1) per query, which keeps the arrange pass
// linear in the number of breaks.
func (s *ShapedText[P]) effCum(i int, cfg *TextLayoutConfig) float64 {
	return s.cumAdv[i] + cfg.LetterSpacing*float64(i) + float64(cfg.TabWidth)*s.cumTab[i]
}

// effWidth returns the effective width of the cluster range [from, to).
func (s *ShapedText[P]) effWidth(from, to int, cfg *TextLayoutConfig) float64 {
	return s.effCum(to, cfg) - s.effCum(from, cfg)
}

// effAdvance returns the effective advance of cluster i under cfg.
func (s *ShapedText[P]) effAdvance(i int, cfg *TextLayoutConfig) float64 {
	c := &s.clusters[i]
	adv := c.Advance + cfg.LetterSpacing
	if c.Kind == ClusterTab {
		adv += float64(cfg.TabWidth) * c.TabAdvance
	}
	return adv
}

// finish seals the shaped text by computing the cumulative advance arrays.
func (s *ShapedText[P]) finish() {
	n := len(s.clusters)
	s.cumAdv = make([]float64, n+1)
	s.cumTab = make([]float64, n+1)
	for i := 0; i < n; i++ {
		s.cumAdv[i+1] = s.cumAdv[i] + s.clusters[i].Advance
		s.cumTab[i+1] = s.cumTab[i] + s.clusters[i].TabAdvance
	}
}
