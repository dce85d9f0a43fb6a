package kdtree

import "github.com/viant/tracknn/track"

// node owns one point and its two subtrees. Points in left compare below
// the node along the split axis, points in right compare at or above it.
type node struct {
	point track.Point
	left  *node
	right *node
}

// height returns the number of levels below and including n.
func height(n *node) int {
	if n == nil {
		return 0
	}
	l, r := height(n.left), height(n.right)
	if l > r {
		return l + 1
	}
	return r + 1
}
