package kdtree

import (
	"math"
	"sort"

	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/track"
)

// Tree is a KD-tree nearest-neighbor index over track points.
//
// Re-inserting an id adds a new node and supersedes the earlier one: the old
// node keeps routing searches but is never returned.
type Tree struct {
	index.IgnoreList
	root      *node
	rootDepth int
	latest    map[string]*node
}

// New returns an empty tree.
func New(opts ...index.Option) *Tree {
	o := index.NewOptions(opts...)
	t := &Tree{latest: make(map[string]*node)}
	t.SetIgnoreCapacity(o.IgnoreCapacity)
	return t
}

// Kind implements index.Engine.
func (t *Tree) Kind() index.Kind { return index.KindTree }

// Insert descends to a leaf position and attaches point there. The tree is
// not rebalanced, so sorted input degrades to a linear chain.
func (t *Tree) Insert(point track.Point) {
	if t.latest == nil {
		t.latest = make(map[string]*node)
	}
	n := &node{point: point}
	t.latest[point.ID] = n
	if t.root == nil {
		t.root = n
		return
	}
	cur := t.root
	for depth := t.rootDepth; ; depth++ {
		axis := depth % 2
		if point.Coord(axis) < cur.point.Coord(axis) {
			if cur.left == nil {
				cur.left = n
				return
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				return
			}
			cur = cur.right
		}
	}
}

// Build replaces the tree with a median-balanced tree over points.
func (t *Tree) Build(points []track.Point) {
	t.BuildAt(points, 0)
}

// BuildAt replaces the tree with a median-balanced tree whose root splits on
// the axis of depth. Later inserts and queries follow the same schedule.
func (t *Tree) BuildAt(points []track.Point, depth int) {
	if depth < 0 {
		depth = 0
	}
	unique := dedup(points)
	t.latest = make(map[string]*node, len(unique))
	t.rootDepth = depth
	t.root = build(unique, depth, t.latest)
}

// dedup copies points keeping the last point of each id in the position of
// its first occurrence.
func dedup(points []track.Point) []track.Point {
	pos := make(map[string]int, len(points))
	out := make([]track.Point, 0, len(points))
	for _, p := range points {
		if i, ok := pos[p.ID]; ok {
			out[i] = p
			continue
		}
		pos[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

func build(points []track.Point, depth int, latest map[string]*node) *node {
	if len(points) == 0 {
		return nil
	}
	axis := depth % 2
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Coord(axis) < points[j].Coord(axis)
	})
	median := len(points) / 2
	n := &node{point: points[median]}
	latest[n.point.ID] = n
	n.left = build(points[:median], depth+1, latest)
	n.right = build(points[median+1:], depth+1, latest)
	return n
}

// Size returns the number of distinct ids.
func (t *Tree) Size() int { return len(t.latest) }

// Height returns the number of levels in the tree.
func (t *Tree) Height() int { return height(t.root) }

// NearestNeighbors runs a depth-first branch-and-bound search.
func (t *Tree) NearestNeighbors(query track.Point, k int) []index.Neighbor {
	if k <= 0 || t.root == nil {
		return nil
	}
	sel := index.NewTopK(k)
	t.search(t.root, query, t.rootDepth, sel)
	return sel.Sorted()
}

func (t *Tree) search(n *node, query track.Point, depth int, sel *index.TopK) {
	if n == nil {
		return
	}
	if t.eligible(n, query) {
		sel.Offer(index.Neighbor{Distance: track.Distance(query, n.point), Point: n.point})
	}

	axis := depth % 2
	diff := query.Coord(axis) - n.point.Coord(axis)
	near, far := n.right, n.left
	if diff < 0 {
		near, far = n.left, n.right
	}
	t.search(near, query, depth+1, sel)
	if far == nil {
		return
	}
	// Every point across the split plane is at least |diff| away.
	if worst, ok := sel.Worst(); !sel.Full() || (ok && math.Abs(diff) <= worst.Distance) {
		t.search(far, query, depth+1, sel)
	}
}

func (t *Tree) eligible(n *node, query track.Point) bool {
	id := n.point.ID
	if id == query.ID || t.Ignored(id) {
		return false
	}
	return t.latest[id] == n
}

var _ index.Engine = (*Tree)(nil)
