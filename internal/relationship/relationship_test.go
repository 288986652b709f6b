package relationship

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeySymmetry(t *testing.T) {
	assert.Equal(t, PairKey("robo", "pip"), PairKey("pip", "robo"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
}

func TestAffinityDefaultsNeutral(t *testing.T) {
	m := New()
	assert.Equal(t, 0.0, m.Affinity("A", "B"))
}

func TestAdjustClampsAndStaysSymmetric(t *testing.T) {
	m := New()
	m = m.Adjust("A", "B", -0.5)
	m = m.Adjust("B", "A", -0.8)

	// Saturates at the floor regardless of argument order.
	assert.Equal(t, -1.0, m.Affinity("A", "B"))
	assert.Equal(t, m.Affinity("A", "B"), m.Affinity("B", "A"))

	m = m.Adjust("A", "B", 3.5)
	assert.Equal(t, 1.0, m.Affinity("A", "B"))
}

func TestAdjustNilMap(t *testing.T) {
	var m Map
	m = m.Adjust("x", "y", 0.2)
	assert.InDelta(t, 0.2, m.Affinity("y", "x"), 1e-9)
}

func TestApproachAvoidThresholds(t *testing.T) {
	assert.False(t, ShouldApproach(0.3))
	assert.True(t, ShouldApproach(0.31))
	assert.False(t, ShouldAvoid(-0.3))
	assert.True(t, ShouldAvoid(-0.31))
	assert.False(t, ShouldApproach(0))
	assert.False(t, ShouldAvoid(0))
}

func TestDialogueProbabilityMultiplier(t *testing.T) {
	assert.InDelta(t, 0.25, DialogueProbabilityMultiplier(-1), 1e-9)
	assert.InDelta(t, 1.0, DialogueProbabilityMultiplier(0), 1e-9)
	assert.InDelta(t, 1.75, DialogueProbabilityMultiplier(1), 1e-9)
}

func TestClone(t *testing.T) {
	m := New().Adjust("A", "B", 0.4)
	c := m.Clone()
	c = c.Adjust("A", "B", 0.4)
	assert.InDelta(t, 0.4, m.Affinity("A", "B"), 1e-9)
	assert.InDelta(t, 0.8, c.Affinity("A", "B"), 1e-9)
}
