package typeset

import "testing"

func TestTextData(t *testing.T) {
	data := NewTextData[string]()
	if !data.Empty() || data.Len() != 0 {
		t.Errorf("new data Len = %d, Empty = %v, want 0, true", data.Len(), data.Empty())
	}

	data.Append(TextElement[string]{Text: "hello", Size: 12, Payload: "first"})
	data.Append(TextElement[string]{Text: "world", Size: 14, Payload: "second"})

	if data.Empty() || data.Len() != 2 {
		t.Errorf("after appends Len = %d, Empty = %v, want 2, false", data.Len(), data.Empty())
	}
	if e := data.Element(0); e.Text != "hello" || e.Payload != "first" {
		t.Errorf("Element(0) = %+v, want hello/first", e)
	}
	if e := data.Element(1); e.Text != "world" || e.Size != 14 {
		t.Errorf("Element(1) = %+v, want world at 14px", e)
	}
}

func TestNewTextDataVariadic(t *testing.T) {
	data := NewTextData(
		TextElement[int]{Text: "a"},
		TextElement[int]{Text: "b"},
	)
	if data.Len() != 2 {
		t.Errorf("Len() = %d, want 2", data.Len())
	}
}
