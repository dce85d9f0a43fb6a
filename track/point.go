package track

// Point is one track on the feature map.
//
// X is the "upbeat" axis and Y the "ambient" axis, both derived by the
// loader from normalized audio features. Points are values: engines copy
// them on insert and callers that need a moving query point keep their own
// copy.
type Point struct {
	X          float64
	Y          float64
	DurationMs uint32
	Explicit   bool
	ID         string
	Name       string
	Artists    []string
}

// Coord returns the coordinate along axis (0 for X, 1 for Y).
func (p Point) Coord(axis int) float64 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

// Moved returns a copy of p translated by (dx, dy).
func (p Point) Moved(dx, dy float64) Point {
	p.X += dx
	p.Y += dy
	return p
}
