package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightDeterministic(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())
	for _, p := range [][2]float64{{0, 0}, {12.5, -40}, {-300, 7}} {
		assert.Equal(t, a.HeightAt(p[0], p[1]), b.HeightAt(p[0], p[1]))
	}
}

func TestHeightBounds(t *testing.T) {
	tr := New(DefaultConfig())
	for x := -50.0; x < 50; x += 3.7 {
		for z := -50.0; z < 50; z += 3.7 {
			h := tr.HeightAt(x, z)
			assert.GreaterOrEqual(t, h, 0.0)
			assert.LessOrEqual(t, h, DefaultConfig().HeightScale)
		}
	}
}

func TestBiomeMatchesHeight(t *testing.T) {
	tr := New(DefaultConfig())
	for x := -80.0; x < 80; x += 5.1 {
		for z := -80.0; z < 80; z += 5.1 {
			bp := tr.BiomeAt(x, z)
			if bp.Biome == BiomeWater {
				assert.Equal(t, 0.0, tr.HeightAt(x, z))
			}
			assert.GreaterOrEqual(t, bp.Elevation, 0.0)
			assert.LessOrEqual(t, bp.Elevation, 1.0)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	cfg := DefaultConfig()
	a := New(cfg)
	cfg.Seed = 7
	b := New(cfg)

	same := true
	for x := 0.0; x < 40 && same; x += 1.3 {
		if a.HeightAt(x, x) != b.HeightAt(x, x) {
			same = false
		}
	}
	assert.False(t, same)
}
