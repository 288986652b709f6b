package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critterworld/internal/entity"
	"github.com/talgya/critterworld/internal/lifecycle"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/terrain"
)

func newTestWorld(t *testing.T, critters int) *World {
	t.Helper()
	cfg := Config{
		Seed:            42,
		InitialCritters: critters,
		PopulationCap:   lifecycle.DefaultPopulationCap,
		DayLength:       600,
	}
	return New(cfg, store.New(), nil, nil)
}

func TestNewWorldPopulation(t *testing.T) {
	w := newTestWorld(t, 4)
	assert.Len(t, w.Entities(), 5, "robot plus founders")
	assert.Equal(t, entity.KindRobot, w.Robot().Kind)
	assert.Equal(t, 4, w.AliveCritters())

	// Every spawn landed on dry ground.
	for _, e := range w.Entities() {
		b := w.Terrain().BiomeAt(e.Position.X, e.Position.Z).Biome
		assert.NotEqual(t, terrain.BiomeWater, b, "%s spawned in water", e.Name)
	}
}

func TestTickAdvancesClockAndCommits(t *testing.T) {
	w := newTestWorld(t, 2)
	sub := w.Store().Subscribe()

	w.Tick(0.05)

	env := w.Store().Environment()
	assert.Greater(t, env.TimeOfDay, 8.0)
	assert.Equal(t, "spring", env.Season)

	select {
	case <-sub:
	default:
		t.Fatal("tick did not commit to subscribers")
	}
}

func TestClockDayRollover(t *testing.T) {
	c := clock{dayLength: 100, timeOfDay: 23.5}
	c.advance(5) // 5s = 1.2 sim hours
	assert.Equal(t, 1, c.day)
	assert.Less(t, c.timeOfDay, 1.0)
}

func TestClockEdges(t *testing.T) {
	c := clock{dayLength: 240, timeOfDay: 4.9}
	dawn, nightfall := c.advance(2) // 0.2 sim hours
	assert.True(t, dawn)
	assert.False(t, nightfall)

	c.timeOfDay = 20.9
	dawn, nightfall = c.advance(2)
	assert.False(t, dawn)
	assert.True(t, nightfall)
	assert.True(t, c.isNight())
}

func TestSeasonRotation(t *testing.T) {
	c := clock{}
	c.day = 0
	assert.Equal(t, "spring", c.season())
	c.day = daysPerSeason
	assert.Equal(t, "summer", c.season())
	c.day = daysPerSeason * 4
	assert.Equal(t, "spring", c.season())
}

func TestDeathRemovesAfterFade(t *testing.T) {
	w := newTestWorld(t, 1)
	var victim *entity.Entity
	for _, e := range w.Entities() {
		if e.Kind == entity.KindCritter {
			victim = e
		}
	}
	require.NotNil(t, victim)
	victim.Needs.Hunger = 0
	victim.Life.Health = 0.004

	w.Tick(1.0)
	assert.False(t, victim.Alive())
	assert.Len(t, w.Entities(), 2, "corpse lingers through the fade")

	for i := 0; i < 4; i++ {
		w.Tick(1.0)
	}
	assert.Len(t, w.Entities(), 1, "corpse removed after the fade")
	_, ok := w.Store().Position(victim.ID)
	assert.False(t, ok, "store state cleared on removal")
}

func TestBirthSpawnsChildAndCooldown(t *testing.T) {
	w := newTestWorld(t, 1)
	var parent *entity.Entity
	for _, e := range w.Entities() {
		if e.Kind == entity.KindCritter {
			parent = e
		}
	}
	require.NotNil(t, parent)
	parent.Needs.Hunger = 1
	parent.Needs.Comfort = 1

	w.Tick(1.0)

	assert.Equal(t, 2, w.AliveCritters())
	assert.Greater(t, parent.Life.CooldownRemaining, 0.0, "parent enters cooldown")

	var child *entity.Entity
	for _, e := range w.Entities() {
		if e.Kind == entity.KindCritter && e.ID != parent.ID {
			child = e
		}
	}
	require.NotNil(t, child)
	assert.Equal(t, parent.Life.Generation+1, child.Life.Generation)
	assert.Less(t, parent.Position.DistXZ(child.Position), 5.0)
}

func TestPopulationCapHolds(t *testing.T) {
	w := newTestWorld(t, 1)
	w.cfg.PopulationCap = 1
	var parent *entity.Entity
	for _, e := range w.Entities() {
		if e.Kind == entity.KindCritter {
			parent = e
		}
	}
	parent.Needs.Hunger = 1
	parent.Needs.Comfort = 1

	for i := 0; i < 5; i++ {
		w.Tick(1.0)
	}
	assert.Equal(t, 1, w.AliveCritters(), "the cap refuses new births silently")
}

func TestNeighborsSortedAndExcludeSelf(t *testing.T) {
	w := newTestWorld(t, 3)
	self := w.Robot()
	nbs := w.neighborsOf(self)
	require.Len(t, nbs, 3)
	for i := 1; i < len(nbs); i++ {
		assert.GreaterOrEqual(t, nbs[i].Distance, nbs[i-1].Distance)
	}
	for _, nb := range nbs {
		assert.NotEqual(t, self.ID, nb.ID)
	}
}

func TestSnapshotShape(t *testing.T) {
	w := newTestWorld(t, 2)
	w.Tick(0.05)

	snap := w.Snapshot()
	assert.Len(t, snap.Entities, 3)
	assert.NotEmpty(t, snap.Resources)

	robots := 0
	for _, ev := range snap.Entities {
		assert.NotEmpty(t, ev.Color)
		assert.NotEmpty(t, ev.Activity)
		if ev.Kind == "robot" {
			robots++
		}
	}
	assert.Equal(t, 1, robots)
}

func TestSnapshotConcurrentWithTicks(t *testing.T) {
	w := newTestWorld(t, 3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			w.Tick(0.05)
		}
	}()

	// Frame the world from another goroutine the whole time, the way the
	// feed hub does. The race detector flags any unserialized access.
	frames := 0
	for {
		select {
		case <-done:
			assert.Greater(t, frames, 0)
			return
		default:
			snap := w.Snapshot()
			assert.NotEmpty(t, snap.Entities)
			frames++
		}
	}
}

func TestChildNamesStayUnique(t *testing.T) {
	w := newTestWorld(t, 1)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		w.childSerial++
		n := w.childName()
		assert.False(t, seen[n], "duplicate child name %q", n)
		seen[n] = true
	}
}
