// Package index defines the capability contract shared by the track
// nearest-neighbor engines, together with the pieces every engine uses:
// the canonical neighbor ordering, bounded k-selection and the ignore list.
// Implementations live in the linear (exhaustive scan) and kdtree
// (2-D KD-tree) subpackages.
package index
