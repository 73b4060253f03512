package expansion

import "github.com/dshills/unfold/internal/engine/buffer"

// lowerBound returns the index of the first bucket whose start row is not
// less than target's row, or len(buckets) if there is none.
func lowerBound(buckets [][]*Entry, target buffer.Point) int {
	begin, end := 0, len(buckets)
	for begin < end {
		middle := begin + (end-begin)/2
		if target.Line <= buckets[middle][0].Top() {
			end = middle
		} else {
			begin = middle + 1
		}
	}
	return begin
}

// upperBound returns the index of the last bucket whose start row is not
// greater than target's row, or -1 if every bucket starts after it.
//
// This is the bucket that may contain target, not the first bucket past it
// as in the usual meaning of "upper bound".
func upperBound(buckets [][]*Entry, target buffer.Point) int {
	begin, end := 0, len(buckets)
	for begin < end {
		middle := begin + (end-begin)/2
		if target.Line < buckets[middle][0].Top() {
			end = middle
		} else {
			begin = middle + 1
		}
	}
	return begin - 1
}

// position locates an entry inside the bucket sequence.
type position struct {
	bucket int
	entry  int
}

// innermost returns the index of the innermost entry of bucket that contains
// target, or -1 if none does. Entries never partially overlap, so every
// containing entry nests inside the previous best.
func innermost(bucket []*Entry, target buffer.Point) int {
	best := -1
	for i, e := range bucket {
		if !e.ContainsPoint(target) {
			continue
		}
		if best == -1 || bucket[best].Contains(e) {
			best = i
		}
	}
	return best
}

// indexOf finds the innermost entry containing target.
//
// The search starts at the candidate bucket chosen by upperBound. When that
// bucket holds no containing entry, target can still lie inside an expansion
// that starts on an earlier row and encloses the candidate, so earlier
// buckets are scanned in turn. The first bucket with a containing entry holds
// the innermost one, since enclosing expansions start no later than those
// they enclose.
func indexOf(buckets [][]*Entry, target buffer.Point) (position, bool) {
	for b := upperBound(buckets, target); b >= 0; b-- {
		if e := innermost(buckets[b], target); e >= 0 {
			return position{bucket: b, entry: e}, true
		}
	}
	return position{}, false
}
