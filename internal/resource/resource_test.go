package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critterworld/internal/vec"
)

func testNodes() []Node {
	return []Node{
		{ID: "berry-1", Type: TypeFood, Position: vec.Vec3{X: 1, Z: 0}, Capacity: 1},
		{ID: "berry-2", Type: TypeFood, Position: vec.Vec3{X: 5, Z: 0}, Capacity: 1},
		{ID: "pad-1", Type: TypeEnergy, Position: vec.Vec3{X: 2, Z: 0}, Capacity: 1},
		{ID: "berry-far", Type: TypeFood, Position: vec.Vec3{X: 100, Z: 0}, Capacity: 1},
		{ID: "berry-empty", Type: TypeFood, Position: vec.Vec3{X: 0.5, Z: 0}, Capacity: 0},
	}
}

func TestGetNearbySortedAndFiltered(t *testing.T) {
	r := NewRegistry(testNodes())

	got := r.GetNearby(0, 0, 10, []Type{TypeFood})
	require.Len(t, got, 2)
	assert.Equal(t, "berry-1", got[0].ID)
	assert.Equal(t, "berry-2", got[1].ID)
	assert.Less(t, got[0].Distance, got[1].Distance)
}

func TestGetNearbyEmptyTypesMeansAll(t *testing.T) {
	r := NewRegistry(testNodes())
	got := r.GetNearby(0, 0, 10, nil)
	assert.Len(t, got, 3)
}

func TestConsumeStrictConservation(t *testing.T) {
	r := NewRegistry([]Node{{ID: "n", Type: TypeFood, Capacity: 1}})

	var mu sync.Mutex
	total := 0.0
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			taken := r.Consume("n", 0.1)
			mu.Lock()
			total += taken
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Concurrent grazing never over-spends the node.
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.0, r.Consume("n", 0.1))
}

func TestConsumePartial(t *testing.T) {
	r := NewRegistry([]Node{{ID: "n", Type: TypeFood, Capacity: 0.25}})
	assert.InDelta(t, 0.25, r.Consume("n", 1.0), 1e-9)
	assert.Equal(t, 0.0, r.Consume("n", 1.0))
	assert.Equal(t, 0.0, r.Consume("missing", 1.0))
}

func TestRegenerateCapsAtMax(t *testing.T) {
	r := NewRegistry([]Node{{ID: "n", Type: TypeFood, Capacity: 1}})
	r.Consume("n", 0.6)
	r.Regenerate(1000)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1.0, snap[0].Capacity)
	assert.Equal(t, 1.0, snap[0].MaxCap)
}
