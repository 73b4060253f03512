package expansion

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/dshills/unfold/internal/engine/buffer"
)

func TestUpperBoundEqualRows(t *testing.T) {
	buckets := [][]*Entry{
		{newEntry(rng(2, 0, 2, 1), "", pt(0, 0))},
		{newEntry(rng(2, 6, 2, 7), "", pt(0, 0))},
		{newEntry(rng(5, 0, 5, 1), "", pt(0, 0))},
	}

	if got := upperBound(buckets, pt(2, 6)); got != 1 {
		t.Errorf("upperBound = %d, want last bucket on row 2 (1)", got)
	}
	if got := upperBound(buckets, pt(4, 0)); got != 1 {
		t.Errorf("upperBound = %d, want 1", got)
	}
}

func TestFindAfterRowsJoin(t *testing.T) {
	s := NewSet()
	p := rng(2, 0, 2, 1)
	r := rng(3, 4, 3, 5)
	add(s, rng(0, 0, 0, 1))
	add(s, p)
	er := add(s, r)

	// Joining rows 2 and 3 moves r up behind p.
	r.r = buffer.NewPointRange(pt(2, 6), pt(2, 7))

	got, ok := s.Find(pt(2, 6))
	if !ok || got != er {
		t.Fatal("expansion moved onto an occupied row should still be found")
	}
	if want := []uint32{0, 2}; !slices.Equal(s.Rows(), want) {
		t.Errorf("rows = %v, want %v", s.Rows(), want)
	}

	removed, ok := s.Remove(pt(2, 6))
	if !ok || removed != er {
		t.Fatal("expansion moved onto an occupied row should be removable")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries left, got %d", s.Len())
	}
}

func TestFindAfterRowSplit(t *testing.T) {
	s := NewSet()
	a := rng(2, 0, 2, 1)
	b := rng(2, 4, 2, 5)
	add(s, a)
	eb := add(s, b)
	add(s, rng(6, 0, 6, 1))

	// A newline inserted between a and b pushes b to the next row.
	b.r = buffer.NewPointRange(pt(3, 0), pt(3, 1))

	if got, ok := s.Find(pt(3, 0)); !ok || got != eb {
		t.Fatal("expansion split off its row should still be found")
	}
	if want := []uint32{2, 3, 6}; !slices.Equal(s.Rows(), want) {
		t.Errorf("rows = %v, want %v", s.Rows(), want)
	}
}

// joinRows moves row+1 onto the end of row, whose last column is width-1.
func joinRows(p buffer.Point, row, width uint32) buffer.Point {
	switch {
	case p.Line == row+1:
		return pt(row, p.Column+width)
	case p.Line > row+1:
		return pt(p.Line-1, p.Column)
	}
	return p
}

// splitRow breaks row at column col.
func splitRow(p buffer.Point, row, col uint32) buffer.Point {
	switch {
	case p.Line == row && p.Column >= col:
		return pt(row+1, p.Column-col)
	case p.Line > row:
		return pt(p.Line+1, p.Column)
	}
	return p
}

func randomMarker(r *rand.Rand) *fakeMarker {
	sl := uint32(r.Intn(20))
	el := sl + uint32(r.Intn(4))
	sc := uint32(r.Intn(10))
	ec := uint32(r.Intn(10))
	if el == sl && ec <= sc {
		ec = sc + 1 + uint32(r.Intn(3))
	}
	return rng(sl, sc, el, ec)
}

// compatible reports whether c is strictly disjoint from or strictly nested
// with every live entry.
func compatible(c buffer.PointRange, live []*Entry) bool {
	for _, e := range live {
		er := e.Range()
		disjoint := c.End.Before(er.Start) || er.End.Before(c.Start)
		nested := c != er && (er.ContainsRange(c) || c.ContainsRange(er))
		if !disjoint && !nested {
			return false
		}
	}
	return true
}

// innermostOf scans every entry for the innermost one covering p.
func innermostOf(live []*Entry, p buffer.Point) *Entry {
	var best *Entry
	for _, e := range live {
		if e.ContainsPoint(p) && (best == nil || best.Contains(e)) {
			best = e
		}
	}
	return best
}

func randomPoint(r *rand.Rand, live []*Entry) buffer.Point {
	if len(live) > 0 && r.Intn(2) == 0 {
		rg := live[r.Intn(len(live))].Range()
		if r.Intn(2) == 0 {
			return rg.Start
		}
		return rg.End
	}
	return pt(uint32(r.Intn(24)), uint32(r.Intn(64)))
}

// drift applies a line join or split to every marker, the way an edit
// elsewhere in the document would. Both keep points in order.
func drift(r *rand.Rand, live []*Entry) {
	row := uint32(r.Intn(22))
	col := uint32(r.Intn(12))
	join := r.Intn(2) == 0

	var width uint32 = 1
	for _, e := range live {
		for _, p := range []buffer.Point{e.Range().Start, e.Range().End} {
			if p.Line == row && p.Column >= width {
				width = p.Column + 1
			}
		}
	}

	for _, e := range live {
		m := e.Marker().(*fakeMarker)
		if join {
			m.r = buffer.NewPointRange(joinRows(m.r.Start, row, width), joinRows(m.r.End, row, width))
		} else {
			m.r = buffer.NewPointRange(splitRow(m.r.Start, row, col), splitRow(m.r.End, row, col))
		}
	}
}

func checkFind(t *testing.T, s *Set, live []*Entry, r *rand.Rand) {
	t.Helper()
	for range 20 {
		p := randomPoint(r, live)
		want := innermostOf(live, p)
		got, ok := s.Find(p)
		if want == nil {
			if ok {
				t.Fatalf("Find(%s) = %s, want not found", p, got.Range())
			}
			continue
		}
		if !ok || got != want {
			t.Fatalf("Find(%s) = %v, want %s", p, got, want.Range())
		}
	}

	rows := s.Rows()
	for i := 1; i < len(rows); i++ {
		if rows[i] <= rows[i-1] {
			t.Fatalf("rows not strictly increasing: %v", rows)
		}
	}
}

func TestSetMatchesBruteForce(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		r := rand.New(rand.NewSource(seed))
		s := NewSet()
		var live []*Entry

		for range 30 {
			m := randomMarker(r)
			if compatible(m.r, live) {
				live = append(live, add(s, m))
			}
		}
		checkFind(t, s, live, r)

		for range 10 {
			drift(r, live)
			checkFind(t, s, live, r)
		}

		for len(live) > 0 {
			if r.Intn(3) == 0 {
				drift(r, live)
			}

			p := live[r.Intn(len(live))].Start()
			want := innermostOf(live, p)

			got, ok := s.Remove(p)
			if !ok || got != want {
				t.Fatalf("seed %d: Remove(%s) = %v, want %s", seed, p, got, want.Range())
			}

			var rest []*Entry
			for _, e := range live {
				if e == want {
					continue
				}
				if want.Contains(e) {
					if !e.IsDestroyed() {
						t.Fatalf("seed %d: nested %s survived removal of %s", seed, e.Range(), want.Range())
					}
					continue
				}
				if e.IsDestroyed() {
					t.Fatalf("seed %d: %s destroyed by removal of %s", seed, e.Range(), want.Range())
				}
				rest = append(rest, e)
			}
			got.Release()
			live = rest

			entries := s.Entries()
			if len(entries) != len(live) {
				t.Fatalf("seed %d: %d entries in set, want %d", seed, len(entries), len(live))
			}
			for _, e := range entries {
				if !slices.Contains(live, e) {
					t.Fatalf("seed %d: unexpected entry %s", seed, e.Range())
				}
			}
			checkFind(t, s, live, r)
		}
	}
}
