// Derived read-only views of an emotional state: dominant label, body tint,
// movement speed multiplier, and dialogue prompt tags.
package emotion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSyncThreshold is the per-field change below which a state push to
// the shared store is skipped.
const DefaultSyncThreshold = 0.005

// Changed reports whether any field of a and b differs by more than threshold.
// Used to throttle store syncs.
func Changed(a, b State, threshold float64) bool {
	return math.Abs(a.Happiness-b.Happiness) > threshold ||
		math.Abs(a.Curiosity-b.Curiosity) > threshold ||
		math.Abs(a.Fear-b.Fear) > threshold ||
		math.Abs(a.Anger-b.Anger) > threshold ||
		math.Abs(a.Energy-b.Energy) > threshold
}

// Dominant returns a one-word label for the strongest current emotion.
func (s State) Dominant() string {
	if s.Energy < 0.2 {
		return "exhausted"
	}
	type cand struct {
		name  string
		level float64
	}
	cands := []cand{
		{"happy", math.Max(s.Happiness, 0)},
		{"sad", math.Max(-s.Happiness, 0)},
		{"curious", s.Curiosity},
		{"fearful", s.Fear},
		{"angry", s.Anger},
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.level > best.level {
			best = c
		}
	}
	if best.level < 0.2 {
		return "calm"
	}
	return best.name
}

// Per-channel tint weights. Anger reddens, fear shifts blue, happiness warms
// toward yellow, curiosity greens, and low energy darkens the whole body.
const (
	tintAngerR = 0.35
	tintAngerG = -0.15
	tintAngerB = -0.10

	tintFearR = -0.10
	tintFearB = 0.30

	tintHappyR = 0.15
	tintHappyG = 0.10
	tintHappyB = -0.05

	tintCuriousG = 0.25

	tintEnergyFloor = 0.55
	tintEnergySpan  = 0.45
)

// ToColor blends the state into a base "#rrggbb" color. Malformed input is
// returned unchanged.
func (s State) ToColor(baseHex string) string {
	r, g, b, ok := parseHex(baseHex)
	if !ok {
		return baseHex
	}

	r += s.Anger*tintAngerR + s.Fear*tintFearR + math.Max(s.Happiness, 0)*tintHappyR
	g += s.Anger*tintAngerG + math.Max(s.Happiness, 0)*tintHappyG + s.Curiosity*tintCuriousG
	b += s.Anger*tintAngerB + s.Fear*tintFearB + math.Max(s.Happiness, 0)*tintHappyB

	// Darken when drained.
	brightness := tintEnergyFloor + tintEnergySpan*s.Energy
	r *= brightness
	g *= brightness
	b *= brightness

	return fmt.Sprintf("#%02x%02x%02x",
		int(clamp(r, 0, 1)*255+0.5),
		int(clamp(g, 0, 1)*255+0.5),
		int(clamp(b, 0, 1)*255+0.5),
	)
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 0, 0, 0, false
	}
	ri, err1 := strconv.ParseUint(h[0:2], 16, 8)
	gi, err2 := strconv.ParseUint(h[2:4], 16, 8)
	bi, err3 := strconv.ParseUint(h[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255, true
}

// Speed multiplier weights: fear penalizes, energy/curiosity boost, anger acts
// as adrenaline. Clamped to [0.3, 1.5].
const (
	SpeedMin = 0.3
	SpeedMax = 1.5
)

// ToSpeedMultiplier maps the state to a movement speed factor.
func (s State) ToSpeedMultiplier() float64 {
	m := 1.0 + s.Energy*0.4 + s.Curiosity*0.15 + s.Anger*0.25 - s.Fear*0.6
	return clamp(m, SpeedMin, SpeedMax)
}

// ToDialogueContextTags returns short mood tags for LLM prompt assembly.
func (s State) ToDialogueContextTags() []string {
	tags := []string{s.Dominant()}
	if s.Energy > 0.8 {
		tags = append(tags, "energetic")
	} else if s.Energy < 0.3 {
		tags = append(tags, "tired")
	}
	if s.Fear > 0.5 {
		tags = append(tags, "on edge")
	}
	if s.Anger > 0.5 {
		tags = append(tags, "irritable")
	}
	if s.Curiosity > 0.7 {
		tags = append(tags, "inquisitive")
	}
	return tags
}
