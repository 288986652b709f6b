// Package terrain provides the procedural height and biome queries the
// simulation consumes. Layered simplex noise produces elevation, moisture,
// and temperature fields; biomes are derived from the three.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Biome classifies a point of ground.
type Biome string

const (
	BiomeWater    Biome = "water"
	BiomeBeach    Biome = "beach"
	BiomeMeadow   Biome = "meadow"
	BiomeForest   Biome = "forest"
	BiomeDesert   Biome = "desert"
	BiomeSwamp    Biome = "swamp"
	BiomeMountain Biome = "mountain"
	BiomeSnow     Biome = "snow"
)

// BiomeParams describes a sampled point for callers that want the raw fields
// alongside the classification.
type BiomeParams struct {
	Biome       Biome   `json:"biome"`
	Elevation   float64 `json:"elevation"`   // 0..1
	Moisture    float64 `json:"moisture"`    // 0..1
	Temperature float64 `json:"temperature"` // 0..1
}

// Config holds generation parameters.
type Config struct {
	Seed        int64
	HeightScale float64 // world units of relief above sea level
	SeaLevel    float64 // elevation threshold, 0..1
	MountainLvl float64
}

// DefaultConfig returns the tuning the sandbox ships with.
func DefaultConfig() Config {
	return Config{
		Seed:        42,
		HeightScale: 12,
		SeaLevel:    0.3,
		MountainLvl: 0.75,
	}
}

// Terrain samples height and biome at any world coordinate. Queries are pure
// and safe for concurrent use.
type Terrain struct {
	cfg       Config
	elevNoise opensimplex.Noise
	wetNoise  opensimplex.Noise
	tempNoise opensimplex.Noise
}

// New creates a terrain sampler from a config.
func New(cfg Config) *Terrain {
	return &Terrain{
		cfg:       cfg,
		elevNoise: opensimplex.NewNormalized(cfg.Seed),
		wetNoise:  opensimplex.NewNormalized(cfg.Seed + 1),
		tempNoise: opensimplex.NewNormalized(cfg.Seed + 2),
	}
}

// HeightAt returns ground height (world units) at (x,z). Water surfaces
// report height 0.
func (t *Terrain) HeightAt(x, z float64) float64 {
	elev := t.elevation(x, z)
	if elev < t.cfg.SeaLevel {
		return 0
	}
	return (elev - t.cfg.SeaLevel) / (1 - t.cfg.SeaLevel) * t.cfg.HeightScale
}

// BiomeAt classifies the ground at (x,z).
func (t *Terrain) BiomeAt(x, z float64) BiomeParams {
	elev := t.elevation(x, z)
	wet := octave(t.wetNoise, x, z, 3, 0.015, 0.5)
	temp := octave(t.tempNoise, x, z, 3, 0.012, 0.5)
	// Highlands run colder.
	temp = temp*0.8 + (1-elev)*0.2

	return BiomeParams{
		Biome:       classify(elev, wet, temp, t.cfg),
		Elevation:   elev,
		Moisture:    wet,
		Temperature: temp,
	}
}

func (t *Terrain) elevation(x, z float64) float64 {
	return octave(t.elevNoise, x, z, 4, 0.02, 0.5)
}

func classify(elev, wet, temp float64, cfg Config) Biome {
	switch {
	case elev < cfg.SeaLevel:
		return BiomeWater
	case elev < cfg.SeaLevel+0.04:
		return BiomeBeach
	case elev > cfg.MountainLvl && temp < 0.3:
		return BiomeSnow
	case elev > cfg.MountainLvl:
		return BiomeMountain
	case wet < 0.25 && temp > 0.6:
		return BiomeDesert
	case wet > 0.7 && elev < 0.5:
		return BiomeSwamp
	case wet > 0.45:
		return BiomeForest
	default:
		return BiomeMeadow
	}
}

// octave sums falling-amplitude noise layers, normalized back to 0..1.
func octave(n opensimplex.Noise, x, z float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxAmp := 0.0
	f := freq
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*f, z*f) * amplitude
		maxAmp += amplitude
		amplitude *= persistence
		f *= 2
	}
	v := total / maxAmp
	return math.Max(0, math.Min(1, v))
}
