package typeset

import "testing"

func TestShapeClustersAndBreaks(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	shaped := ShapeText(fakeData(src, "aa bb", 10), storage)

	if got := shaped.NumClusters(); got != 5 {
		t.Fatalf("NumClusters() = %d, want 5", got)
	}
	wantKinds := []ClusterKind{ClusterGlyphs, ClusterGlyphs, ClusterSpace, ClusterGlyphs, ClusterGlyphs}
	for i, want := range wantKinds {
		if got := shaped.clusters[i].Kind; got != want {
			t.Errorf("cluster %d kind = %v, want %v", i, got, want)
		}
	}
	for i := range shaped.clusters {
		c := &shaped.clusters[i]
		if !floatEq(c.Advance, 10) {
			t.Errorf("cluster %d advance = %v, want 10", i, c.Advance)
		}
		if c.ByteStart != i || c.ByteEnd != i+1 {
			t.Errorf("cluster %d byte range = [%d, %d), want [%d, %d)",
				i, c.ByteStart, c.ByteEnd, i, i+1)
		}
	}

	if got := shaped.NumBreaks(); got != 1 {
		t.Fatalf("NumBreaks() = %d, want 1", got)
	}
	b := shaped.breaks[0]
	if b.Pos != 3 || b.TrimPos != 2 || b.Kind != BreakAllowed {
		t.Errorf("break = {Pos: %d, TrimPos: %d, Kind: %v}, want {3, 2, Allowed}",
			b.Pos, b.TrimPos, b.Kind)
	}
	if !floatEq(shaped.NaturalWidth(), 50) {
		t.Errorf("NaturalWidth() = %v, want 50", shaped.NaturalWidth())
	}
}

func TestShapeMandatoryBreak(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	shaped := ShapeText(fakeData(src, "aa\nbb", 10), storage)

	if got := shaped.NumClusters(); got != 4 {
		t.Fatalf("NumClusters() = %d, want 4 (newline is no cluster)", got)
	}
	if got := shaped.NumBreaks(); got != 1 {
		t.Fatalf("NumBreaks() = %d, want 1", got)
	}
	b := shaped.breaks[0]
	if b.Pos != 2 || b.TrimPos != 2 || b.Kind != BreakMandatory {
		t.Errorf("break = {Pos: %d, TrimPos: %d, Kind: %v}, want {2, 2, Mandatory}",
			b.Pos, b.TrimPos, b.Kind)
	}
}

func TestShapeLineBreakVariants(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	tests := []struct {
		name         string
		text         string
		wantClusters int
		wantBreaks   int
	}{
		{"lf", "a\nb", 2, 1},
		{"cr", "a\rb", 2, 1},
		{"crlf", "a\r\nb", 2, 1},
		{"lf lf", "a\n\nb", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shaped := ShapeText(fakeData(src, tt.text, 10), storage)
			if got := shaped.NumClusters(); got != tt.wantClusters {
				t.Errorf("NumClusters() = %d, want %d", got, tt.wantClusters)
			}
			if got := shaped.NumBreaks(); got != tt.wantBreaks {
				t.Errorf("NumBreaks() = %d, want %d", got, tt.wantBreaks)
			}
		})
	}
}

func TestShapeTabCluster(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	shaped := ShapeText(fakeData(src, "a\tb", 10), storage)

	if got := shaped.NumClusters(); got != 3 {
		t.Fatalf("NumClusters() = %d, want 3", got)
	}
	tab := &shaped.clusters[1]
	if tab.Kind != ClusterTab {
		t.Fatalf("cluster 1 kind = %v, want Tab", tab.Kind)
	}
	if len(tab.Glyphs) != 0 {
		t.Errorf("tab glyph count = %d, want 0", len(tab.Glyphs))
	}
	if !floatEq(tab.Advance, 0) || !floatEq(tab.TabAdvance, 10) {
		t.Errorf("tab Advance/TabAdvance = %v/%v, want 0/10", tab.Advance, tab.TabAdvance)
	}
	// The natural width excludes the configuration-dependent tab.
	if !floatEq(shaped.NaturalWidth(), 20) {
		t.Errorf("NaturalWidth() = %v, want 20", shaped.NaturalWidth())
	}
	// A tab is a break opportunity like a space.
	if got := shaped.NumBreaks(); got != 1 {
		t.Fatalf("NumBreaks() = %d, want 1", got)
	}
	if b := shaped.breaks[0]; b.Pos != 2 || b.TrimPos != 1 {
		t.Errorf("break = {Pos: %d, TrimPos: %d}, want {2, 1}", b.Pos, b.TrimPos)
	}
}

func TestShapeIgnoresControlRunes(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	shaped := ShapeText(fakeData(src, "a\x01b", 10), storage)

	if got := shaped.NumClusters(); got != 2 {
		t.Fatalf("NumClusters() = %d, want 2", got)
	}
	if got := shaped.NumBreaks(); got != 0 {
		t.Errorf("NumBreaks() = %d, want 0", got)
	}
	if c := shaped.clusters[1]; c.ByteStart != 2 || c.ByteEnd != 3 {
		t.Errorf("cluster 1 byte range = [%d, %d), want [2, 3)", c.ByteStart, c.ByteEnd)
	}
}

func TestShapeSeparatorRunAcrossElements(t *testing.T) {
	useXImageShaper(t)
	src := newFakeSource(t)
	storage := fakeStorage(src)

	data := NewTextData(
		TextElement[int]{Text: "a ", Source: src, Size: 10},
		TextElement[int]{Text: "b", Source: src, Size: 10},
	)
	shaped := ShapeText(data, storage)

	if got := shaped.NumBreaks(); got != 1 {
		t.Fatalf("NumBreaks() = %d, want 1", got)
	}
	b := shaped.breaks[0]
	if b.Pos != 2 || b.TrimPos != 1 || b.Elem != 1 {
		t.Errorf("break = {Pos: %d, TrimPos: %d, Elem: %d}, want {2, 1, 1}",
			b.Pos, b.TrimPos, b.Elem)
	}
	if e := shaped.clusters[2].Elem; e != 1 {
		t.Errorf("cluster 2 element = %d, want 1", e)
	}
}

func TestShapeDegradedWithoutFont(t *testing.T) {
	useXImageShaper(t)
	storage := NewFontStorage()

	data := NewTextData(TextElement[int]{Text: "a b", Size: 10})
	shaped := ShapeText(data, storage)

	// No usable font: placeholder clusters with zero width, breaks intact.
	if got := shaped.NumClusters(); got != 3 {
		t.Fatalf("NumClusters() = %d, want 3", got)
	}
	if !floatEq(shaped.NaturalWidth(), 0) {
		t.Errorf("NaturalWidth() = %v, want 0", shaped.NaturalWidth())
	}
	if shaped.clusters[1].Kind != ClusterSpace {
		t.Errorf("cluster 1 kind = %v, want Space", shaped.clusters[1].Kind)
	}
	if got := shaped.NumBreaks(); got != 1 {
		t.Fatalf("NumBreaks() = %d, want 1", got)
	}
	for i := range shaped.clusters {
		if len(shaped.clusters[i].Glyphs) != 0 {
			t.Errorf("cluster %d has %d glyphs, want placeholder", i, len(shaped.clusters[i].Glyphs))
		}
	}

	// The degraded block still lays out.
	l := Arrange(shaped, DefaultTextLayoutConfig())
	if len(l.Lines) != 1 {
		t.Errorf("degraded layout has %d lines, want 1", len(l.Lines))
	}
}

func TestShapeEmptyInputs(t *testing.T) {
	useXImageShaper(t)
	storage := NewFontStorage()

	shaped := ShapeText[int](nil, storage)
	if !shaped.IsEmpty() {
		t.Error("ShapeText(nil) not empty")
	}
	shaped = ShapeText(NewTextData[int](), storage)
	if !shaped.IsEmpty() {
		t.Error("ShapeText(empty data) not empty")
	}
}
