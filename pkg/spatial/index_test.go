package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
)

func unitAt(id entity.ID, cx, cy float64) *entity.Unit {
	u := &entity.Unit{ID: id, Type: entity.TypeTank, Health: 100, X: cx - 16, Y: cy - 16}
	u.UpdateCenter()
	return u
}

func ids(units []*entity.Unit) []entity.ID {
	out := make([]entity.ID, 0, len(units))
	for _, u := range units {
		out = append(out, u.ID)
	}
	return out
}

func TestQueryNeverReturnsSelf(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	units := make([]*entity.Unit, 0, 200)
	for i := range 200 {
		units = append(units, unitAt(entity.ID(i+1), r.Float64()*640, r.Float64()*640))
	}
	ix := NewIndex(640, 640, DefaultSettings())
	ix.Rebuild(units)
	require.Equal(t, 200, ix.Len(entity.DomainGround))

	for _, u := range units {
		for _, radius := range []float64{0, 10, 100, 1000} {
			got := ix.QueryNearby(u.Center(), radius, entity.DomainGround, u.ID)
			assert.NotContains(t, ids(got), u.ID)
		}
	}
}

func TestQueryMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	units := make([]*entity.Unit, 0, 300)
	for i := range 300 {
		units = append(units, unitAt(entity.ID(i+1), r.Float64()*1024, r.Float64()*768))
	}
	ix := NewIndex(1024, 768, Settings{Capacity: 4, MaxDepth: 6})
	ix.Rebuild(units)

	center := geometry.Vector2D{X: 500, Y: 400}
	const radius = 120.0
	var want []entity.ID
	for _, u := range units {
		if u.Center().DistanceTo(center) <= radius {
			want = append(want, u.ID)
		}
	}
	got := ix.QueryNearby(center, radius, entity.DomainGround, 0)
	assert.ElementsMatch(t, want, ids(got))
}

func TestRebuildSkipsDeadAndSplitsDomains(t *testing.T) {
	alive := unitAt(1, 100, 100)
	dead := unitAt(2, 105, 100)
	dead.Health = 0
	heli := unitAt(3, 110, 100)
	heli.Type = entity.TypeHelicopter
	heli.Flight = entity.Airborne

	ix := NewIndex(320, 320, DefaultSettings())
	ix.Rebuild([]*entity.Unit{alive, dead, heli})

	ground := ids(ix.QueryNearby(geometry.Vector2D{X: 100, Y: 100}, 50, entity.DomainGround, 0))
	assert.Equal(t, []entity.ID{1}, ground)

	air := ids(ix.QueryNearby(geometry.Vector2D{X: 100, Y: 100}, 50, entity.DomainAir, 0))
	assert.Equal(t, []entity.ID{3}, air)
}

func TestUnitKilledAfterRebuildIsFiltered(t *testing.T) {
	a := unitAt(1, 50, 50)
	b := unitAt(2, 60, 50)
	ix := NewIndex(320, 320, DefaultSettings())
	ix.Rebuild([]*entity.Unit{a, b})

	b.Health = 0
	got := ix.QueryNearby(a.Center(), 40, entity.DomainGround, a.ID)
	assert.Empty(t, got)
}

func TestOutOfBoundsAndNaNDropped(t *testing.T) {
	out := unitAt(1, -50, 10)
	nan := unitAt(2, 10, 10)
	nan.X = math.NaN()

	q := NewQuadtree(geometry.NewAABB(0, 0, 100, 100), DefaultSettings())
	assert.False(t, q.Insert(out))
	nan.UpdateCenter()
	assert.False(t, q.Insert(nan))
	assert.Equal(t, 0, q.Len())
}

func TestSubdivisionKeepsEveryUnitOnce(t *testing.T) {
	q := NewQuadtree(geometry.NewAABB(0, 0, 256, 256), Settings{Capacity: 2, MaxDepth: 3})
	var n int
	for x := 8.0; x < 256; x += 32 {
		for y := 8.0; y < 256; y += 32 {
			n++
			require.True(t, q.Insert(unitAt(entity.ID(n), x, y)))
		}
	}
	assert.Equal(t, n, q.Len())

	leaves, maxDepth := 0, 0
	q.Walk(func(_ geometry.AABB, depth int, leaf bool) {
		if leaf {
			leaves++
		}
		maxDepth = max(maxDepth, depth)
	})
	assert.Greater(t, leaves, 1)
	assert.LessOrEqual(t, maxDepth, 3)

	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestStackedUnitsAtMaxDepth(t *testing.T) {
	q := NewQuadtree(geometry.NewAABB(0, 0, 64, 64), Settings{Capacity: 1, MaxDepth: 2})
	for i := range 10 {
		q.Insert(unitAt(entity.ID(i+1), 20, 20))
	}
	assert.Equal(t, 10, q.Len())
	got := q.QueryCircle(geometry.Vector2D{X: 20, Y: 20}, 0, 0, nil)
	assert.Len(t, got, 10)
}

func TestNilIndexIsSafe(t *testing.T) {
	var ix *Index
	ix.Rebuild([]*entity.Unit{unitAt(1, 1, 1)})
	assert.Empty(t, ix.QueryNearby(geometry.Zero, 10, entity.DomainGround, 0))
	assert.Equal(t, 0, ix.Len(entity.DomainAir))
}

func BenchmarkRebuild(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	units := make([]*entity.Unit, 0, 500)
	for i := range 500 {
		units = append(units, unitAt(entity.ID(i+1), r.Float64()*2048, r.Float64()*2048))
	}
	ix := NewIndex(2048, 2048, DefaultSettings())
	b.ResetTimer()
	for b.Loop() {
		ix.Rebuild(units)
	}
}

func BenchmarkQueryNearby(b *testing.B) {
	r := rand.New(rand.NewPCG(5, 6))
	units := make([]*entity.Unit, 0, 500)
	for i := range 500 {
		units = append(units, unitAt(entity.ID(i+1), r.Float64()*2048, r.Float64()*2048))
	}
	ix := NewIndex(2048, 2048, DefaultSettings())
	ix.Rebuild(units)
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		u := units[i%len(units)]
		ix.QueryNearby(u.Center(), 64, entity.DomainGround, u.ID)
	}
}
