// Package world owns the simulation: the population registry, the day/night
// clock, the sky, and the per-frame tick that feeds every entity its
// perception of the world and consumes the outcomes (births, deaths,
// removals).
package world

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/entity"
	"github.com/talgya/critterworld/internal/lifecycle"
	"github.com/talgya/critterworld/internal/llm"
	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/resource"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/terrain"
	"github.com/talgya/critterworld/internal/vec"
	"github.com/talgya/critterworld/internal/weather"
)

// broadcastRadius bounds how far births and deaths emotionally reach.
const broadcastRadius = 20.0

// Config tunes a world at construction time.
type Config struct {
	Seed            int64
	InitialCritters int
	PopulationCap   int
	DayLength       float64 // real seconds per sim day
	AIEnabled       bool
}

// DefaultConfig returns sensible sandbox settings.
func DefaultConfig() Config {
	return Config{
		Seed:            time.Now().UnixNano(),
		InitialCritters: 4,
		PopulationCap:   lifecycle.DefaultPopulationCap,
		DayLength:       600,
	}
}

// World is the whole running simulation. Tick and Snapshot serialize on mu so
// the feed goroutine can frame the world mid-run; everything else belongs to
// the sim goroutine.
type World struct {
	mu sync.Mutex

	cfg       Config
	rng       *rand.Rand
	store     *store.Store
	resources *resource.Registry
	terrain   *terrain.Terrain
	worker    *llm.Worker
	sky       weather.Source

	entities []*entity.Entity
	byID     map[string]*entity.Entity
	robot    *entity.Entity

	features []entity.Feature

	clock   clock
	weather weather.Condition

	// OnDialogue mirrors spoken lines out (persistence hook).
	OnDialogue func(store.Dialogue)

	childSerial int
}

// New builds a world: terrain, resource nodes, landmarks, the robot, and the
// founding critters.
func New(cfg Config, s *store.Store, worker *llm.Worker, sky weather.Source) *World {
	if cfg.PopulationCap <= 0 {
		cfg.PopulationCap = lifecycle.DefaultPopulationCap
	}
	if cfg.DayLength <= 0 {
		cfg.DayLength = 600
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if sky == nil {
		sky = weather.NewProceduralSource(cfg.Seed + 1)
	}

	tcfg := terrain.DefaultConfig()
	tcfg.Seed = cfg.Seed
	w := &World{
		cfg:       cfg,
		rng:       rng,
		store:     s,
		terrain:   terrain.New(tcfg),
		worker:    worker,
		sky:       sky,
		byID:      make(map[string]*entity.Entity),
		clock:     clock{dayLength: cfg.DayLength, timeOfDay: 8}, // start at morning
		weather:   weather.Clear,
	}
	w.robot = entity.NewRobot("Widget", w.landPoint(10), rng.Int63())
	w.resources = resource.NewRegistry(w.scatterResources())
	w.features = w.placeFeatures()
	w.add(w.robot)

	for i := 0; i < cfg.InitialCritters; i++ {
		w.add(w.newFounder(i))
	}

	slog.Info("world created",
		"seed", cfg.Seed,
		"critters", cfg.InitialCritters,
		"cap", cfg.PopulationCap,
	)
	return w
}

// Store exposes the shared state service.
func (w *World) Store() *store.Store { return w.store }

// Resources exposes the node registry.
func (w *World) Resources() *resource.Registry { return w.resources }

// Terrain exposes the heightfield.
func (w *World) Terrain() *terrain.Terrain { return w.terrain }

// Robot returns the singleton robot.
func (w *World) Robot() *entity.Entity { return w.robot }

// Entities returns the live entity list (not a copy; callers on the sim
// goroutine only).
func (w *World) Entities() []*entity.Entity { return w.entities }

func (w *World) add(e *entity.Entity) {
	w.entities = append(w.entities, e)
	w.byID[e.ID] = e
	w.store.SetPosition(e.ID, e.Position)
}

func (w *World) remove(id string) {
	delete(w.byID, id)
	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
	w.store.Remove(id)
}

// AliveCritters counts living critters (the robot excluded).
func (w *World) AliveCritters() int {
	n := 0
	for _, e := range w.entities {
		if e.Kind == entity.KindCritter && e.Alive() {
			n++
		}
	}
	return n
}

// Tick advances the whole world by dt seconds.
func (w *World) Tick(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()

	dawn, nightfall := w.clock.advance(dt)
	if dawn {
		w.broadcast(emotion.EventDawn, vec.Vec3{}, -1)
		w.log("", "world", "dawn breaks")
	}
	if nightfall {
		w.broadcast(emotion.EventNightFall, vec.Vec3{}, -1)
		w.log("", "world", "night falls")
	}

	w.advanceWeather(dt)
	w.resources.Regenerate(dt)

	relationships := w.store.Relationships()
	envFor := func(e *entity.Entity) entity.Env {
		return entity.Env{
			Now:           now,
			TimeOfDay:     w.clock.timeOfDay,
			Night:         w.clock.isNight(),
			Raining:       w.weather.Raining(),
			Weather:       string(w.weather),
			Nearby:        w.neighborsOf(e),
			Relationships: relationships,
			AliveCritters: w.AliveCritters(),
			PopulationCap: w.cfg.PopulationCap,
			RobotID:       w.robot.ID,
			Store:         w.store,
			Resources:     w.resources,
			HeightAt:      w.terrain.HeightAt,
			Features:      w.features,
			Worker:        w.worker,
			AIEnabled:     w.cfg.AIEnabled && w.worker != nil,
			DialogueSeen:  w.OnDialogue,
		}
	}

	// Drain worker responses first so this frame's updates see their results.
	if w.worker != nil {
		for _, resp := range w.worker.Drain() {
			if e, ok := w.byID[resp.EntityID]; ok {
				e.HandleResponse(resp, envFor(e))
			}
		}
	}

	type result struct {
		e   *entity.Entity
		out entity.Outcome
	}
	var results []result
	for _, e := range w.entities {
		results = append(results, result{e, e.Update(dt, envFor(e))})
	}

	for _, r := range results {
		if r.out.FellSick {
			w.log(r.e.ID, "lifecycle", fmt.Sprintf("%s has fallen ill", r.e.Name))
		}
		if r.out.Recovered {
			w.log(r.e.ID, "lifecycle", fmt.Sprintf("%s has recovered", r.e.Name))
		}
		if r.out.JustDied {
			w.handleDeath(r.e)
		}
		if r.out.ReproductionReady {
			w.handleBirth(r.e)
		}
		if r.out.RemovalReady {
			w.remove(r.e.ID)
		}
	}

	w.store.SetEnvironment(store.Environment{
		TimeOfDay: w.clock.timeOfDay,
		Day:       w.clock.day,
		Season:    w.clock.season(),
		Weather:   string(w.weather),
		Raining:   w.weather.Raining(),
	})
	w.store.Commit()
}

func (w *World) advanceWeather(dt float64) {
	cond, changed := w.sky.Poll(dt)
	if !changed {
		w.weather = cond
		return
	}
	prevRaining := w.weather.Raining()
	w.weather = cond
	switch {
	case cond == weather.Storm:
		w.broadcast(emotion.EventStorm, vec.Vec3{}, -1)
		w.log("", "weather", "a storm rolls in")
	case cond.Raining() && !prevRaining:
		w.broadcast(emotion.EventRainStart, vec.Vec3{}, -1)
		w.log("", "weather", "rain starts to fall")
	default:
		w.log("", "weather", fmt.Sprintf("the sky turns %s", cond))
	}
}

// broadcast applies an emotion event to every living entity within radius of
// origin. A negative radius reaches everyone.
func (w *World) broadcast(ev emotion.Event, origin vec.Vec3, radius float64) {
	for _, e := range w.entities {
		if !e.Alive() {
			continue
		}
		if radius >= 0 && e.Position.DistXZ(origin) > radius {
			continue
		}
		e.ApplyEmotionEvent(ev, 1)
	}
}

// handleDeath broadcasts grief to everyone nearby, the robot included, and
// leaves a memory with the witnesses.
func (w *World) handleDeath(dead *entity.Entity) {
	w.log(dead.ID, "lifecycle", fmt.Sprintf("%s has died (generation %d, age %.0fs)",
		dead.Name, dead.Life.Generation, dead.Life.Age))

	for _, e := range w.entities {
		if e.ID == dead.ID || !e.Alive() {
			continue
		}
		if e.Position.DistXZ(dead.Position) > broadcastRadius {
			continue
		}
		e.ApplyEmotionEvent(emotion.EventEntityDied, 1)
		w.store.AddMemory(e.ID, memory.Record{
			Content:    fmt.Sprintf("%s died nearby", dead.Name),
			Kind:       memory.KindDeath,
			RelatedIDs: []string{dead.ID},
			Salience:   0.9,
			At:         time.Now(),
		})
	}
}

// handleBirth spawns a child next to the parent, applies the parent's
// cooldown, and cheers up the neighborhood.
func (w *World) handleBirth(parent *entity.Entity) {
	if w.AliveCritters() >= w.cfg.PopulationCap {
		return
	}
	w.childSerial++
	child := parent.SpawnChild(w.childName(), w.rng.Int63())
	child.Position = w.groundAt(child.Position.X, child.Position.Z)
	child.Home = child.Position
	parent.Life.StartReproductionCooldown()
	w.add(child)

	w.log(child.ID, "lifecycle", fmt.Sprintf("%s is born to %s (generation %d)",
		child.Name, parent.Name, child.Life.Generation))

	for _, e := range w.entities {
		if e.ID == child.ID || !e.Alive() {
			continue
		}
		if e.Position.DistXZ(child.Position) > broadcastRadius {
			continue
		}
		e.ApplyEmotionEvent(emotion.EventNewBirth, 1)
		w.store.AddMemory(e.ID, memory.Record{
			Content:    fmt.Sprintf("%s was born", child.Name),
			Kind:       memory.KindBirth,
			RelatedIDs: []string{child.ID, parent.ID},
			Salience:   0.7,
			At:         time.Now(),
		})
	}
}

// neighborsOf returns all other living entities sorted by distance ascending.
func (w *World) neighborsOf(self *entity.Entity) []entity.Neighbor {
	var out []entity.Neighbor
	for _, e := range w.entities {
		if e.ID == self.ID || !e.Alive() {
			continue
		}
		out = append(out, entity.Neighbor{
			ID:       e.ID,
			Name:     e.Name,
			Kind:     e.Kind,
			Position: e.Position,
			Distance: self.Position.DistXZ(e.Position),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func (w *World) log(entityID, category, text string) {
	w.store.AppendLog(store.LogEntry{
		At:       time.Now(),
		EntityID: entityID,
		Category: category,
		Text:     text,
	})
}

// groundAt drops a point onto the terrain surface.
func (w *World) groundAt(x, z float64) vec.Vec3 {
	return vec.Vec3{X: x, Y: w.terrain.HeightAt(x, z), Z: z}
}
