package marker

import (
	"errors"
	"testing"

	"github.com/dshills/unfold/internal/engine/buffer"
)

func pr(sl, sc, el, ec uint32) buffer.PointRange {
	return buffer.NewPointRange(buffer.NewPoint(sl, sc), buffer.NewPoint(el, ec))
}

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset buffer.ByteOffset
		edit   buffer.Edit
		sticky bool
		want   buffer.ByteOffset
	}{
		{"insert before", 10, buffer.NewInsert(2, "abc"), false, 13},
		{"insert after", 10, buffer.NewInsert(12, "abc"), false, 10},
		{"insert at sticky", 10, buffer.NewInsert(10, "abc"), true, 10},
		{"insert at non-sticky", 10, buffer.NewInsert(10, "abc"), false, 13},
		{"delete before", 10, buffer.NewDelete(2, 5), false, 7},
		{"delete spanning", 10, buffer.NewDelete(8, 12), false, 8},
		{"replace spanning", 10, buffer.NewEdit(buffer.NewRange(8, 12), "xy"), true, 10},
		{"delete ending at offset", 10, buffer.NewDelete(8, 10), true, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transformOffset(tt.offset, tt.edit, tt.sticky); got != tt.want {
				t.Errorf("transformOffset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInvalidation(t *testing.T) {
	m := buffer.NewRange(10, 20)

	tests := []struct {
		name string
		edit buffer.Range
		want map[Invalidation]bool
	}{
		{"strictly inside", buffer.NewRange(12, 15), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: false, InvalidateInside: true,
		}},
		{"insert inside", buffer.NewRange(15, 15), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: false, InvalidateInside: true,
		}},
		{"crosses start", buffer.NewRange(5, 12), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: true, InvalidateInside: true,
		}},
		{"crosses end", buffer.NewRange(18, 25), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: true, InvalidateInside: true,
		}},
		{"exact", buffer.NewRange(10, 20), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: true, InvalidateOverlap: true, InvalidateInside: true,
		}},
		{"before", buffer.NewRange(0, 10), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: false, InvalidateInside: false,
		}},
		{"insert at end", buffer.NewRange(20, 20), map[Invalidation]bool{
			InvalidateNever: false, InvalidateSurround: false, InvalidateOverlap: false, InvalidateInside: false,
		}},
	}

	for _, tt := range tests {
		for inv, want := range tt.want {
			t.Run(tt.name+"/"+inv.String(), func(t *testing.T) {
				if got := inv.invalidates(m, tt.edit); got != want {
					t.Errorf("invalidates = %v, want %v", got, want)
				}
			})
		}
	}
}

func TestParseInvalidation(t *testing.T) {
	for _, inv := range []Invalidation{InvalidateOverlap, InvalidateNever, InvalidateSurround, InvalidateInside} {
		got, err := ParseInvalidation(inv.String())
		if err != nil || got != inv {
			t.Errorf("ParseInvalidation(%q) = %v, %v", inv.String(), got, err)
		}
	}

	if _, err := ParseInvalidation("sometimes"); !errors.Is(err, ErrUnknownInvalidation) {
		t.Errorf("expected ErrUnknownInvalidation, got %v", err)
	}
}

func TestMarkerFollowsEdits(t *testing.T) {
	buf := buffer.NewBufferFromString("aaa\nbbb call() bbb\nccc")
	layer := NewLayer(buf)
	defer layer.Close()

	m, err := layer.Mark(pr(1, 4, 1, 10))
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	if _, err := buf.Insert(0, "// header\n"); err != nil {
		t.Fatal(err)
	}

	if got, want := m.Range(), pr(2, 4, 2, 10); got != want {
		t.Errorf("after insert above: got %s, want %s", got, want)
	}

	if buf.TextInRange(m.Range()) != "call()" {
		t.Errorf("marker drifted: %q", buf.TextInRange(m.Range()))
	}

	// Same line, before the marker.
	if _, err := buf.ReplaceRange(pr(2, 0, 2, 3), "b"); err != nil {
		t.Fatal(err)
	}

	if got, want := m.Range(), pr(2, 2, 2, 8); got != want {
		t.Errorf("after edit on same line: got %s, want %s", got, want)
	}

	if !m.IsValid() {
		t.Error("edits outside the marker should keep it valid")
	}
}

func TestMarkerGrowsWithNestedEdit(t *testing.T) {
	buf := buffer.NewBufferFromString("{ f(); }")
	layer := NewLayer(buf)
	defer layer.Close()

	outer, _ := layer.Mark(pr(0, 0, 0, 8))

	if _, err := buf.ReplaceRange(pr(0, 2, 0, 5), "{\n  g();\n}"); err != nil {
		t.Fatal(err)
	}

	if !outer.IsValid() {
		t.Error("edit strictly inside should not invalidate")
	}

	if got := buf.TextInRange(outer.Range()); got != buf.Text() {
		t.Errorf("outer marker should cover whole text, got %q", got)
	}
}

func TestMarkerInvalidatedByReplacement(t *testing.T) {
	buf := buffer.NewBufferFromString("x = expanded_text;")
	layer := NewLayer(buf)
	defer layer.Close()

	outer, _ := layer.Mark(pr(0, 4, 0, 17))
	inner, _ := layer.Mark(pr(0, 4, 0, 12))

	if _, err := buf.ReplaceRange(outer.Range(), "f()"); err != nil {
		t.Fatal(err)
	}

	if outer.IsValid() || inner.IsValid() {
		t.Error("replacing the outer range should invalidate both markers")
	}

	if got := buf.TextInRange(outer.Range()); got != "f()" {
		t.Errorf("outer marker should track the replacement, got %q", got)
	}
}

func TestMarkerNeverInvalidates(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdef")
	layer := NewLayer(buf, WithInvalidation(InvalidateNever))
	defer layer.Close()

	if layer.Invalidation() != InvalidateNever {
		t.Fatalf("unexpected strategy %s", layer.Invalidation())
	}

	m, _ := layer.Mark(pr(0, 1, 0, 4))
	if err := buf.Delete(0, 6); err != nil {
		t.Fatal(err)
	}

	if !m.IsValid() {
		t.Error("InvalidateNever markers stay valid")
	}
	if !m.Range().IsEmpty() {
		t.Errorf("expected collapsed range, got %s", m.Range())
	}
}

func TestMarkerContainment(t *testing.T) {
	buf := buffer.NewBufferFromString("0123456789\n0123456789")
	layer := NewLayer(buf)
	defer layer.Close()

	m, _ := layer.Mark(pr(0, 2, 1, 5))

	if !m.ContainsPoint(buffer.NewPoint(0, 2)) || !m.ContainsPoint(buffer.NewPoint(1, 5)) {
		t.Error("endpoints should be contained")
	}
	if m.ContainsPoint(buffer.NewPoint(1, 6)) || m.ContainsPoint(buffer.NewPoint(0, 1)) {
		t.Error("points outside should not be contained")
	}
	if !m.ContainsRange(pr(0, 5, 1, 0)) {
		t.Error("nested range should be contained")
	}
	if m.Start() != buffer.NewPoint(0, 2) || m.End() != buffer.NewPoint(1, 5) {
		t.Errorf("unexpected endpoints %s %s", m.Start(), m.End())
	}
}

func TestMarkerDestroy(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdef")
	layer := NewLayer(buf)
	defer layer.Close()

	m, _ := layer.Mark(pr(0, 1, 0, 3))
	if got, ok := layer.Get(m.ID()); !ok || got != m {
		t.Fatal("marker should be registered")
	}

	m.Destroy()
	m.Destroy()

	if !m.IsDestroyed() || m.IsValid() {
		t.Error("destroyed marker should report destroyed and invalid")
	}
	if layer.Len() != 0 {
		t.Errorf("expected empty layer, got %d", layer.Len())
	}

	before := m.Offsets()
	if _, err := buf.Insert(0, "xx"); err != nil {
		t.Fatal(err)
	}
	if m.Offsets() != before {
		t.Error("destroyed marker should not move")
	}
}

func TestLayerClearAndClose(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdef")
	layer := NewLayer(buf)

	a, _ := layer.Mark(pr(0, 0, 0, 1))
	b, _ := layer.Mark(pr(0, 2, 0, 3))

	layer.Clear()
	if !a.IsDestroyed() || !b.IsDestroyed() || layer.Len() != 0 {
		t.Error("Clear should destroy all markers")
	}

	c, _ := layer.Mark(pr(0, 4, 0, 5))
	layer.Close()
	layer.Close()

	if !c.IsDestroyed() {
		t.Error("Close should destroy remaining markers")
	}
	if _, err := layer.Mark(pr(0, 0, 0, 1)); !errors.Is(err, ErrLayerClosed) {
		t.Errorf("expected ErrLayerClosed, got %v", err)
	}
}

func TestLayerMarkRejectsReversedRange(t *testing.T) {
	buf := buffer.NewBufferFromString("abcdef")
	layer := NewLayer(buf)
	defer layer.Close()

	if _, err := layer.Mark(pr(0, 4, 0, 1)); !errors.Is(err, buffer.ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}
