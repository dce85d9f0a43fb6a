package session

import (
	"fmt"

	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/index/kdtree"
	"github.com/viant/tracknn/index/linear"
)

// NewEngine returns an empty engine of kind.
func NewEngine(kind index.Kind, opts ...index.Option) (index.Engine, error) {
	switch kind {
	case index.KindLinear:
		return linear.New(opts...), nil
	case index.KindTree:
		return kdtree.New(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", index.ErrUnknownKind, kind)
}
