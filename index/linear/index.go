package linear

import (
	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/track"
)

// Index is a brute-force nearest-neighbor index keyed by track id.
type Index struct {
	index.IgnoreList
	points map[string]track.Point
}

// New returns an empty index.
func New(opts ...index.Option) *Index {
	o := index.NewOptions(opts...)
	i := &Index{points: make(map[string]track.Point)}
	i.SetIgnoreCapacity(o.IgnoreCapacity)
	return i
}

// Kind implements index.Engine.
func (i *Index) Kind() index.Kind { return index.KindLinear }

// Insert stores point, replacing any point with the same id.
func (i *Index) Insert(point track.Point) {
	if i.points == nil {
		i.points = make(map[string]track.Point)
	}
	i.points[point.ID] = point
}

// Build replaces the stored points.
func (i *Index) Build(points []track.Point) {
	i.points = make(map[string]track.Point, len(points))
	for _, p := range points {
		i.points[p.ID] = p
	}
}

// Size returns the number of distinct ids.
func (i *Index) Size() int { return len(i.points) }

// NearestNeighbors scans all points, keeping the k best in a bounded heap.
func (i *Index) NearestNeighbors(query track.Point, k int) []index.Neighbor {
	if k <= 0 || len(i.points) == 0 {
		return nil
	}
	sel := index.NewTopK(k)
	for id, p := range i.points {
		if id == query.ID || i.Ignored(id) {
			continue
		}
		sel.Offer(index.Neighbor{Distance: track.Distance(query, p), Point: p})
	}
	return sel.Sorted()
}

var _ index.Engine = (*Index)(nil)
