package session

import (
	"go.uber.org/zap"

	"github.com/viant/tracknn/internal/metrics"
	"github.com/viant/tracknn/track"
)

// UserID is the id of the session's query point.
const UserID = "user"

// DefaultIgnoreCapacity bounds the ignore list unless overridden.
const DefaultIgnoreCapacity = 100

type options struct {
	logger         *zap.Logger
	metrics        *metrics.Registry
	ignoreCapacity int
	start          track.Point
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics reports query and rebuild metrics to r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) { o.metrics = r }
}

// WithIgnoreCapacity bounds every engine's ignore list; 0 means unbounded.
func WithIgnoreCapacity(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.ignoreCapacity = n
		}
	}
}

// WithStart sets the initial query position.
func WithStart(x, y float64) Option {
	return func(o *options) {
		o.start.X = x
		o.start.Y = y
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:         zap.NewNop(),
		ignoreCapacity: DefaultIgnoreCapacity,
		start:          track.Point{X: 0.1, Y: 0.1},
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.start.ID = UserID
	return o
}
