package expansion

import (
	"cmp"
	"slices"

	"github.com/dshills/unfold/internal/engine/buffer"
)

// Set is an ordered multimap of expansions keyed by start row.
//
// Entries are kept in buckets, one per start row, and buckets are sorted by
// row. Rows are looked up by binary search; within a row a linear scan is
// enough because only one or two expansions ever start on the same row.
//
// Any two entries in a set are either disjoint or nested; callers must never
// add an expansion that partially overlaps another one.
//
// Markers move with edits, so the row an entry starts on can change after it
// was added. Every operation first regroups entries whose rows drifted.
//
// Set is not safe for concurrent use. The set owns the markers of the
// entries it holds and destroys them when they leave the set, except for the
// entry returned by Remove, which is handed to the caller.
type Set struct {
	buckets [][]*Entry
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add records a new expansion covering m.
// The set takes ownership of m.
func (s *Set) Add(m Marker, originalText string, originalLocation buffer.Point) *Entry {
	s.normalize()

	entry := newEntry(m, originalText, originalLocation)
	index := lowerBound(s.buckets, entry.Start())

	if index < len(s.buckets) && s.buckets[index][0].Top() == entry.Top() {
		s.buckets[index] = append(s.buckets[index], entry)
		return entry
	}

	s.buckets = slices.Insert(s.buckets, index, []*Entry{entry})
	return entry
}

// Find returns the innermost entry whose range contains point.
func (s *Set) Find(point buffer.Point) (*Entry, bool) {
	s.normalize()
	pos, ok := indexOf(s.buckets, point)
	if !ok {
		return nil, false
	}
	return s.buckets[pos.bucket][pos.entry], true
}

// Remove takes the innermost entry containing point out of the set and
// returns it. Every entry nested inside it is destroyed, since restoring the
// original text wipes out the text those entries mark.
//
// The returned entry's marker is still live so the caller can restore the
// document from it; the caller must Release it afterwards.
func (s *Set) Remove(point buffer.Point) (*Entry, bool) {
	s.normalize()
	pos, ok := indexOf(s.buckets, point)
	if !ok {
		return nil, false
	}

	entry := s.buckets[pos.bucket][pos.entry]
	s.buckets[pos.bucket] = slices.Delete(s.buckets[pos.bucket], pos.entry, pos.entry+1)

	// Siblings on the same row are either nested in the entry or enclose
	// it; only the nested ones go.
	s.buckets[pos.bucket] = cascade(entry, s.buckets[pos.bucket])

	// Entries never overlap partially, so anything starting before the
	// entry's last row ends inside the entry as well. Buckets on the last
	// row itself may also hold expansions that start after the entry ends.
	bottom := entry.Bottom()
	end := pos.bucket + 1
	for end < len(s.buckets) && s.buckets[end][0].Top() <= bottom {
		s.buckets[end] = cascade(entry, s.buckets[end])
		end++
	}

	live := pos.bucket
	for i := pos.bucket; i < end; i++ {
		if len(s.buckets[i]) > 0 {
			s.buckets[live] = s.buckets[i]
			live++
		}
	}
	s.buckets = slices.Delete(s.buckets, live, end)

	return entry, true
}

// Clear destroys every entry in the set.
func (s *Set) Clear() {
	for len(s.buckets) > 0 {
		last := len(s.buckets) - 1
		for _, entry := range s.buckets[last] {
			entry.destroy()
		}
		s.buckets[last] = nil
		s.buckets = s.buckets[:last]
	}
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	n := 0
	for _, bucket := range s.buckets {
		n += len(bucket)
	}
	return n
}

// IsEmpty returns true if the set holds no entries.
func (s *Set) IsEmpty() bool {
	return len(s.buckets) == 0
}

// Entries returns all entries ordered by start row, then insertion order.
func (s *Set) Entries() []*Entry {
	s.normalize()
	return s.entries()
}

func (s *Set) entries() []*Entry {
	result := make([]*Entry, 0, s.Len())
	for _, bucket := range s.buckets {
		result = append(result, bucket...)
	}
	return result
}

// Rows returns the start row of every bucket in ascending order.
func (s *Set) Rows() []uint32 {
	s.normalize()
	rows := make([]uint32, len(s.buckets))
	for i, bucket := range s.buckets {
		rows[i] = bucket[0].Top()
	}
	return rows
}

// cascade destroys the entries of bucket nested inside outer and returns
// the rest.
func cascade(outer *Entry, bucket []*Entry) []*Entry {
	return slices.DeleteFunc(bucket, func(other *Entry) bool {
		if outer.Contains(other) {
			other.destroy()
			return true
		}
		return false
	})
}

// normalize restores one bucket per start row, in increasing row order.
// Edits that join lines can move entries of different buckets onto one row;
// edits that split a line can move entries of one bucket apart.
func (s *Set) normalize() {
	if s.ordered() {
		return
	}

	entries := s.entries()
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		return cmp.Compare(a.Top(), b.Top())
	})

	buckets := make([][]*Entry, 0, len(s.buckets))
	for _, e := range entries {
		if n := len(buckets); n > 0 && buckets[n-1][0].Top() == e.Top() {
			buckets[n-1] = append(buckets[n-1], e)
			continue
		}
		buckets = append(buckets, []*Entry{e})
	}
	s.buckets = buckets
}

// ordered reports whether bucket rows are strictly increasing and every
// entry still starts on its bucket's row.
func (s *Set) ordered() bool {
	for i, bucket := range s.buckets {
		row := bucket[0].Top()
		if i > 0 && row <= s.buckets[i-1][0].Top() {
			return false
		}
		for _, e := range bucket[1:] {
			if e.Top() != row {
				return false
			}
		}
	}
	return true
}
