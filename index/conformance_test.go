package index_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/index/kdtree"
	"github.com/viant/tracknn/index/linear"
	"github.com/viant/tracknn/track"
)

// fixture builds the same data set into every engine variant.
type fixture struct {
	engines map[string]index.Engine
	points  []track.Point
}

// newFixture generates n points on a coarse grid so that equal distances
// are common and the tie-break rule is exercised.
func newFixture(seed int64, n int) *fixture {
	r := rand.New(rand.NewSource(seed))
	points := make([]track.Point, n)
	for i := range points {
		points[i] = track.Point{
			ID: fmt.Sprintf("t%03d", i),
			X:  math.Round(r.Float64()*20) / 20,
			Y:  math.Round(r.Float64()*20) / 20,
		}
	}
	incremental := kdtree.New()
	bulk := kdtree.New()
	lin := linear.New()
	for _, p := range points {
		incremental.Insert(p)
		lin.Insert(p)
	}
	bulk.Build(points)
	return &fixture{
		points: points,
		engines: map[string]index.Engine{
			"linear":      lin,
			"incremental": incremental,
			"bulk":        bulk,
		},
	}
}

func (f *fixture) ignore(ids ...string) {
	for _, e := range f.engines {
		for _, id := range ids {
			e.AddIgnore(id)
		}
	}
}

func idDistances(ns []index.Neighbor) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = fmt.Sprintf("%s@%v", n.Point.ID, n.Distance)
	}
	return out
}

func TestEnginesAgree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("all engines return identical neighbors", prop.ForAll(
		func(seed int64, n, k, ignored int) bool {
			f := newFixture(seed, n)
			for i := 0; i < ignored && i < n; i++ {
				f.ignore(f.points[(i*7)%n].ID)
			}
			r := rand.New(rand.NewSource(seed + 1))
			for q := 0; q < 5; q++ {
				query := track.Point{ID: "query", X: r.Float64(), Y: r.Float64()}
				want := idDistances(f.engines["linear"].NearestNeighbors(query, k))
				for name, e := range f.engines {
					got := idDistances(e.NearestNeighbors(query, k))
					if fmt.Sprint(got) != fmt.Sprint(want) {
						t.Logf("%s: got %v, want %v", name, got, want)
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 120),
		gen.IntRange(0, 15),
		gen.IntRange(0, 10),
	))

	properties.Property("results are sorted and sized min(k, eligible)", prop.ForAll(
		func(seed int64, n, k, ignored int) bool {
			f := newFixture(seed, n)
			ignoredSet := map[string]bool{}
			for i := 0; i < ignored && i < n; i++ {
				id := f.points[(i*3)%n].ID
				ignoredSet[id] = true
				f.ignore(id)
			}
			eligible := n - len(ignoredSet)
			want := k
			if eligible < want {
				want = eligible
			}
			query := track.Point{ID: "query", X: 0.5, Y: 0.5}
			for _, e := range f.engines {
				got := e.NearestNeighbors(query, k)
				if len(got) != want {
					return false
				}
				for i := range got {
					if ignoredSet[got[i].Point.ID] {
						return false
					}
					if i > 0 && got[i].Distance < got[i-1].Distance {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 80),
		gen.IntRange(0, 20),
		gen.IntRange(0, 30),
	))

	properties.Property("size counts distinct inserts", prop.ForAll(
		func(seed int64, n int) bool {
			f := newFixture(seed, n)
			for _, e := range f.engines {
				if e.Size() != n {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}

// gridPoint draws a point from a small id pool so ids repeat.
func gridPoint(r *rand.Rand, pool int) track.Point {
	return track.Point{
		ID: fmt.Sprintf("d%02d", r.Intn(pool)),
		X:  math.Round(r.Float64()*10) / 10,
		Y:  math.Round(r.Float64()*10) / 10,
	}
}

func TestEnginesAgreeOnDuplicateIDs(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("mixed Build and Insert keep the last point per id", prop.ForAll(
		func(seed int64, built, inserted, pool, k int) bool {
			r := rand.New(rand.NewSource(seed))
			base := make([]track.Point, built)
			for i := range base {
				base[i] = gridPoint(r, pool)
			}
			extra := make([]track.Point, inserted)
			for i := range extra {
				extra[i] = gridPoint(r, pool)
			}
			last := map[string]track.Point{}
			for _, p := range append(append([]track.Point(nil), base...), extra...) {
				last[p.ID] = p
			}

			lin := linear.New()
			lin.Build(base)
			bulk := kdtree.New()
			bulk.Build(base)
			shifted := kdtree.New()
			shifted.BuildAt(base, 1)
			incremental := kdtree.New()
			for _, p := range base {
				incremental.Insert(p)
			}
			engines := map[string]index.Engine{
				"linear": lin, "bulk": bulk, "shifted": shifted, "incremental": incremental,
			}
			for _, e := range engines {
				for _, p := range extra {
					e.Insert(p)
				}
			}
			if pool > 2 {
				for _, e := range engines {
					e.AddIgnore("d01")
				}
			}

			for q := 0; q < 4; q++ {
				query := track.Point{ID: "query", X: r.Float64(), Y: r.Float64()}
				want := lin.NearestNeighbors(query, k)
				for name, e := range engines {
					if e.Size() != len(last) {
						t.Logf("%s: size %d, want %d", name, e.Size(), len(last))
						return false
					}
					got := e.NearestNeighbors(query, k)
					if fmt.Sprint(idDistances(got)) != fmt.Sprint(idDistances(want)) {
						t.Logf("%s: got %v, want %v", name, idDistances(got), idDistances(want))
						return false
					}
					for _, n := range got {
						if w := last[n.Point.ID]; n.Point.X != w.X || n.Point.Y != w.Y {
							t.Logf("%s: stale point %+v for %s", name, n.Point, n.Point.ID)
							return false
						}
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 60),
		gen.IntRange(0, 40),
		gen.IntRange(1, 20),
		gen.IntRange(0, 25),
	))

	properties.TestingRun(t)
}

func TestEnginesScenario(t *testing.T) {
	points := []track.Point{
		{ID: "A", X: 12, Y: 6},
		{ID: "B", X: 10, Y: 6},
		{ID: "C", X: 24, Y: 6},
	}
	engines := []index.Engine{linear.New(), kdtree.New()}
	for _, e := range engines {
		for _, p := range points {
			e.Insert(p)
		}
		query := track.Point{ID: "user", X: 10, Y: 6}
		assert.Equal(t, []string{"B@0", "A@2"}, idDistances(e.NearestNeighbors(query, 2)), e.Kind())

		e.AddIgnore("B")
		assert.Equal(t, []string{"A@2", "C@14"}, idDistances(e.NearestNeighbors(query, 2)), e.Kind())

		e.PopIgnore()
		e.PopIgnore()
		assert.Equal(t, 0, e.IgnoreSize(), e.Kind())
		assert.Equal(t, []string{"B@0"}, idDistances(e.NearestNeighbors(query, 1)), e.Kind())
	}
}

func TestEnginesIgnoreRollover(t *testing.T) {
	engines := []index.Engine{linear.New(index.WithIgnoreCapacity(100)), kdtree.New(index.WithIgnoreCapacity(100))}
	for _, e := range engines {
		for i := 0; i < 150; i++ {
			e.Insert(track.Point{ID: fmt.Sprintf("t%03d", i), X: float64(i)})
		}
		query := track.Point{ID: "user"}
		seen := map[string]bool{}
		for i := 0; i < 150; i++ {
			got := e.NearestNeighbors(query, 1)
			if !assert.Len(t, got, 1) {
				return
			}
			id := got[0].Point.ID
			assert.False(t, seen[id] && i < 101, "%s returned twice within the ignore window", id)
			seen[id] = true
			e.AddIgnore(id)
			assert.LessOrEqual(t, e.IgnoreSize(), 100)
		}
	}
}
