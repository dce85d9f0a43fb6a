package index

import (
	"container/heap"
	"strings"

	"github.com/viant/tracknn/track"
)

// Neighbor is a candidate produced by a query.
type Neighbor struct {
	Distance float64
	Point    track.Point
}

// CompareDistance orders two distances ascending. Distances that are not
// strictly ordered, including NaN, compare equal.
func CompareDistance(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare is the selection order used by every engine: ascending distance,
// then ascending point id.
func Compare(a, b Neighbor) int {
	if c := CompareDistance(a.Distance, b.Distance); c != 0 {
		return c
	}
	return strings.Compare(a.Point.ID, b.Point.ID)
}

// neighbors implements heap.Interface with the worst candidate on top.
type neighbors []Neighbor

func (h neighbors) Len() int           { return len(h) }
func (h neighbors) Less(i, j int) bool { return Compare(h[i], h[j]) > 0 }
func (h neighbors) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK retains the k best neighbors offered to it.
type TopK struct {
	k int
	h neighbors
}

// NewTopK returns a selector for k neighbors.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	capacity := k
	if capacity > 64 {
		capacity = 64
	}
	return &TopK{k: k, h: make(neighbors, 0, capacity)}
}

// Len returns the number of retained neighbors.
func (t *TopK) Len() int { return len(t.h) }

// Full reports whether k neighbors are retained.
func (t *TopK) Full() bool { return len(t.h) >= t.k }

// Worst returns the worst retained neighbor; ok is false when empty.
func (t *TopK) Worst() (n Neighbor, ok bool) {
	if len(t.h) == 0 {
		return n, false
	}
	return t.h[0], true
}

// Offer retains n when fewer than k neighbors are held or n orders before
// the current worst, which is evicted. It reports whether n was retained.
func (t *TopK) Offer(n Neighbor) bool {
	if t.k == 0 {
		return false
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, n)
		return true
	}
	if Compare(n, t.h[0]) < 0 {
		t.h[0] = n
		heap.Fix(&t.h, 0)
		return true
	}
	return false
}

// Sorted drains the selector, returning neighbors in ascending order.
func (t *TopK) Sorted() []Neighbor {
	result := make([]Neighbor, len(t.h))
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&t.h).(Neighbor)
	}
	return result
}
