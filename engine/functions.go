package engine

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sync"

	"github.com/viant/vec/search"
	sqlite "modernc.org/sqlite"

	"github.com/viant/tracknn/track"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterFunctions registers track_distance, feature_l2 and feature_cosine
// with the driver. It is idempotent; connections opened before the first
// call do not see the functions.
func RegisterFunctions() error {
	registerOnce.Do(func() {
		for name, fn := range map[string]struct {
			args int
			impl func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)
		}{
			"track_distance": {4, trackDistanceImpl},
			"feature_l2":     {2, featureL2Impl},
			"feature_cosine": {2, featureCosineImpl},
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(name, int32(fn.args), fn.impl); err != nil {
				registerErr = fmt.Errorf("engine: register %s: %w", name, err)
				return
			}
		}
	})
	return registerErr
}

// track_distance(x1, y1, x2, y2) returns the Euclidean distance of two map
// positions.
func trackDistanceImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("track_distance: expected 4 arguments, got %d", len(args))
	}
	var c [4]float64
	for i, arg := range args {
		v, ok, err := asFloat(arg)
		if err != nil {
			return nil, fmt.Errorf("track_distance: argument %d: %w", i+1, err)
		}
		if !ok {
			return nil, nil
		}
		c[i] = v
	}
	return track.Distance(track.Point{X: c[0], Y: c[1]}, track.Point{X: c[2], Y: c[3]}), nil
}

func featureL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := profileArgs("feature_l2", args)
	if a == nil || b == nil || err != nil {
		return nil, err
	}
	return float64(search.Float32s(a).EuclideanDistance(b)), nil
}

// feature_cosine returns 1 - cosine similarity; NULL when either profile
// has zero magnitude.
func featureCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := profileArgs("feature_cosine", args)
	if a == nil || b == nil || err != nil {
		return nil, err
	}
	ma, mb := search.Float32s(a).Magnitude(), search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		return nil, nil
	}
	return float64(search.Float32s(a).CosineDistanceWithMagnitude(b, ma, mb)), nil
}

func profileArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asProfile(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	b, err := asProfile(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, b, nil
}

func asProfile(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		p, err := track.DecodeProfile(v)
		if err != nil {
			return nil, err
		}
		return p[:], nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T for profile; want BLOB", arg)
	}
}

func asFloat(arg driver.Value) (float64, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int64:
		return float64(v), true, nil
	default:
		return math.NaN(), false, fmt.Errorf("unsupported argument type %T; want REAL", arg)
	}
}
