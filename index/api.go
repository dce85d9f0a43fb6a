package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/tracknn/track"
)

// Engine defines a track nearest-neighbor index. Engines are not safe for
// concurrent use; callers serialize access.
type Engine interface {
	// Kind reports which implementation backs the engine.
	Kind() Kind

	// Insert adds one point. A point whose ID is already stored replaces the
	// earlier one (last insert wins).
	Insert(point track.Point)

	// Build replaces the stored points with points. The ignore list is kept.
	Build(points []track.Point)

	// Size returns the number of distinct ids stored.
	Size() int

	// NearestNeighbors returns up to k stored points closest to query in
	// ascending distance order. Points whose id is ignored or equal to the
	// query's id are skipped. k <= 0 yields an empty result.
	NearestNeighbors(query track.Point, k int) []Neighbor

	// AddIgnore appends id to the ignore list.
	AddIgnore(id string)

	// IgnoreSize returns the ignore list length.
	IgnoreSize() int

	// PopIgnore removes the oldest ignore entry; no-op when empty.
	PopIgnore()
}

// Kind names an engine implementation.
type Kind string

const (
	KindLinear Kind = "linear"
	KindTree   Kind = "tree"
)

// ErrUnknownKind is returned by ParseKind for unsupported names.
var ErrUnknownKind = errors.New("index: unknown engine kind")

// ParseKind resolves an engine name. "standard" and "kdtree" are accepted
// as aliases of linear and tree.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "standard", "brute":
		return KindLinear, nil
	case "tree", "kdtree", "kd":
		return KindTree, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Options configures an engine.
type Options struct {
	// IgnoreCapacity bounds the ignore list; 0 means unbounded.
	IgnoreCapacity int
}

// Option mutates Options.
type Option func(*Options)

// WithIgnoreCapacity bounds the ignore list to n entries, evicting the
// oldest on overflow.
func WithIgnoreCapacity(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.IgnoreCapacity = n
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
