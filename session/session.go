package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/internal/metrics"
	"github.com/viant/tracknn/loader"
	"github.com/viant/tracknn/track"
)

// Session serializes commands against one engine.
type Session struct {
	id       string
	source   loader.Source
	capacity int
	logger   *zap.Logger
	metrics  *metrics.Registry

	// rebuild serializes Switch calls so two rebuilds never race to swap.
	rebuild sync.Mutex

	mu      sync.Mutex
	engine  index.Engine
	query   track.Point
	elapsed time.Duration
}

// New loads source into a fresh engine of kind and returns a ready session.
func New(ctx context.Context, source loader.Source, kind index.Kind, opts ...Option) (*Session, error) {
	if source == nil {
		return nil, fmt.Errorf("session: source is nil")
	}
	o := newOptions(opts)
	s := &Session{
		id:       uuid.NewString(),
		source:   source,
		capacity: o.ignoreCapacity,
		metrics:  o.metrics,
		query:    o.start,
	}
	s.logger = o.logger.With(zap.String("session", s.id))
	engine, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	s.publish()
	return s, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Kind reports the active engine kind.
func (s *Session) Kind() index.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Kind()
}

// Size returns the active engine's point count.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Size()
}

// IgnoreSize returns the active engine's ignore list length.
func (s *Session) IgnoreSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IgnoreSize()
}

// Current returns a copy of the query point.
func (s *Session) Current() track.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Nudge moves the query point by (dx, dy) and returns its new position.
func (s *Session) Nudge(dx, dy float64) track.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = s.query.Moved(dx, dy)
	return s.query
}

// Switch rebuilds the data set into a new engine of kind and makes it
// active. The new engine starts with an empty ignore list. On failure the
// current engine stays active.
func (s *Session) Switch(ctx context.Context, kind index.Kind) error {
	s.rebuild.Lock()
	defer s.rebuild.Unlock()
	engine, err := s.load(ctx, kind)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.engine = engine
	s.publish()
	s.mu.Unlock()
	return nil
}

// Nearest finds the single closest point to the query, records how long the
// search took and ignores the result for subsequent calls. ok is false when
// every point is ignored or the index is empty.
func (s *Session) Nearest() (index.Neighbor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	result := s.engine.NearestNeighbors(s.query, 1)
	s.elapsed = time.Since(started)

	kind := string(s.engine.Kind())
	if s.metrics != nil {
		s.metrics.ObserveQuery(kind, s.elapsed, len(result) > 0)
	}
	if len(result) == 0 {
		s.logger.Debug("nearest: no eligible point", zap.String("engine", kind), zap.Duration("elapsed", s.elapsed))
		s.publish()
		return index.Neighbor{}, false
	}
	nearest := result[0]
	s.engine.AddIgnore(nearest.Point.ID)
	s.publish()
	s.logger.Debug("nearest",
		zap.String("engine", kind),
		zap.String("id", nearest.Point.ID),
		zap.Float64("distance", nearest.Distance),
		zap.Duration("elapsed", s.elapsed),
	)
	return nearest, true
}

// Timing returns the duration of the last Nearest call.
func (s *Session) Timing() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// NearestNeighbors runs an ad-hoc query against the active engine without
// touching the ignore list or the recorded timing.
func (s *Session) NearestNeighbors(q track.Point, k int) []index.Neighbor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.NearestNeighbors(q, k)
}

func (s *Session) load(ctx context.Context, kind index.Kind) (index.Engine, error) {
	started := time.Now()
	engine, err := s.build(ctx, kind)
	elapsed := time.Since(started)
	if s.metrics != nil {
		s.metrics.ObserveRebuild(string(kind), elapsed, err)
	}
	if err != nil {
		s.logger.Error("engine build failed", zap.String("engine", string(kind)), zap.Error(err))
		return nil, err
	}
	s.logger.Info("engine built",
		zap.String("engine", string(kind)),
		zap.Int("size", engine.Size()),
		zap.Duration("elapsed", elapsed),
	)
	return engine, nil
}

func (s *Session) build(ctx context.Context, kind index.Kind) (index.Engine, error) {
	engine, err := NewEngine(kind, index.WithIgnoreCapacity(s.capacity))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	points, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load %s engine: %w", kind, err)
	}
	engine.Build(points)
	return engine, nil
}

// publish must be called with mu held.
func (s *Session) publish() {
	if s.metrics != nil {
		s.metrics.SetEngineState(string(s.engine.Kind()), s.engine.Size(), s.engine.IgnoreSize())
	}
}
