// Package relationship tracks the symmetric pairwise affinity between
// entities. Affinity is a single scalar in [-1,1]; missing pairs are neutral.
// The map is process-wide shared state, owned by the store and mutated only
// through Adjust.
package relationship

import "strings"

// Map holds affinity keyed by canonical pair key. Callers must replace their
// stored reference with Adjust's return value.
type Map map[string]float64

// Thresholds converting affinity into movement bias. Load-bearing for
// socialization checks; do not tune casually.
const (
	approachThreshold = 0.3
	avoidThreshold    = -0.3
)

// New returns an empty relationship map.
func New() Map {
	return make(Map)
}

// PairKey canonicalizes an unordered id pair by sorting and joining, so the
// argument order never affects the stored entry.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}

// Affinity returns the stored affinity between a and b, defaulting to 0.
func (m Map) Affinity(a, b string) float64 {
	return m[PairKey(a, b)]
}

// Adjust applies a delta to the pair's affinity, clamping to [-1,1], and
// returns the updated map.
func (m Map) Adjust(a, b string, delta float64) Map {
	if m == nil {
		m = New()
	}
	key := PairKey(a, b)
	v := m[key] + delta
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	m[key] = v
	return m
}

// Clone returns a copy safe to hand to another goroutine.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ShouldApproach reports whether an affinity is friendly enough to bias
// movement toward the other entity.
func ShouldApproach(affinity float64) bool {
	return affinity > approachThreshold
}

// ShouldAvoid reports whether an affinity is hostile enough to bias movement
// away from the other entity.
func ShouldAvoid(affinity float64) bool {
	return affinity < avoidThreshold
}

// DialogueProbabilityMultiplier scales the base chance of striking up a
// conversation by disposition: 0.25x for hated company up to 1.75x for
// close friends.
func DialogueProbabilityMultiplier(affinity float64) float64 {
	return 1 + affinity*0.75
}
