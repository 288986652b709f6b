// World population seeding: founder critters, child naming, resource node
// scattering, and landmark placement. Placement samples the terrain so food
// grows in meadows and forests, charge pads sit near the robot's origin, and
// nothing spawns in open water.
package world

import (
	"fmt"
	"math"

	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/entity"
	"github.com/talgya/critterworld/internal/resource"
	"github.com/talgya/critterworld/internal/terrain"
	"github.com/talgya/critterworld/internal/vec"
)

// worldRadius bounds where anything spawns.
const worldRadius = 60.0

var founderNames = []string{"Pip", "Momo", "Tilly", "Gus", "Fern", "Rolo", "Nib", "Clover"}

var founderColors = []string{"#88cc66", "#cc8866", "#6688cc", "#cc66aa", "#66ccc0", "#ccb866"}

var childNames = []string{"Sprout", "Pebble", "Wisp", "Dot", "Twig", "Bean", "Mote", "Puff"}

func (w *World) newFounder(i int) *entity.Entity {
	name := founderNames[i%len(founderNames)]
	color := founderColors[i%len(founderColors)]
	p := emotion.Personality(1 + w.rng.Intn(emotion.NumPersonalities))
	pos := w.landPoint(25)
	return entity.NewCritter(name, p, color, pos, w.rng.Int63())
}

func (w *World) childName() string {
	base := childNames[(w.childSerial-1)%len(childNames)]
	gen := (w.childSerial - 1) / len(childNames)
	if gen == 0 {
		return base
	}
	return fmt.Sprintf("%s %d", base, gen+1)
}

// scatterResources places food in growable biomes, water at the shoreline,
// and a few charge pads near the center for the robot.
func (w *World) scatterResources() []resource.Node {
	var nodes []resource.Node
	serial := 0
	id := func(t resource.Type) string {
		serial++
		return fmt.Sprintf("%s-%d", t, serial)
	}

	for i := 0; i < 14; i++ {
		pos := w.landPoint(worldRadius)
		b := w.terrain.BiomeAt(pos.X, pos.Z).Biome
		if b != terrain.BiomeMeadow && b != terrain.BiomeForest && b != terrain.BiomeSwamp {
			continue
		}
		nodes = append(nodes, resource.Node{
			ID:       id(resource.TypeFood),
			Type:     resource.TypeFood,
			Position: pos,
			Capacity: 0.6 + w.rng.Float64()*0.4,
		})
	}

	for i := 0; i < 5; i++ {
		pos := w.landPoint(worldRadius)
		nodes = append(nodes, resource.Node{
			ID:       id(resource.TypeWater),
			Type:     resource.TypeWater,
			Position: pos,
			Capacity: 1,
		})
	}

	// Charge pads cluster around the robot's spawn point.
	for i := 0; i < 3; i++ {
		angle := float64(i) / 3 * 2 * math.Pi
		pos := w.groundAt(w.robot.Position.X+math.Sin(angle)*8, w.robot.Position.Z+math.Cos(angle)*8)
		nodes = append(nodes, resource.Node{
			ID:       id(resource.TypeEnergy),
			Type:     resource.TypeEnergy,
			Position: pos,
			Capacity: 1,
		})
	}

	return nodes
}

// placeFeatures drops a handful of named landmarks entities can discover.
func (w *World) placeFeatures() []entity.Feature {
	names := []string{"the old spring", "the mossy boulder", "the hollow stump", "the tall cairn", "the berry thicket"}
	var out []entity.Feature
	for i, n := range names {
		out = append(out, entity.Feature{
			ID:       fmt.Sprintf("feature-%d", i+1),
			Name:     n,
			Position: w.landPoint(worldRadius * 0.8),
		})
	}
	return out
}

// landPoint draws a random dry point within radius of the origin. Falls back
// to the origin after a bounded number of rejections so a watery seed cannot
// spin forever.
func (w *World) landPoint(radius float64) vec.Vec3 {
	for i := 0; i < 32; i++ {
		angle := w.rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(w.rng.Float64()) * radius
		x := math.Sin(angle) * dist
		z := math.Cos(angle) * dist
		if w.terrain.BiomeAt(x, z).Biome == terrain.BiomeWater {
			continue
		}
		return w.groundAt(x, z)
	}
	return w.groundAt(0, 0)
}
