// Package emotion implements the five-dimensional affect model that colors
// every creature's behavior: event-driven deltas, exponential relaxation
// toward a rest baseline, and the derived read-only views (tint, speed,
// dialogue tags) the rest of the simulation consumes.
package emotion

import "math"

// State is one creature's affect vector. Happiness ranges -1..1, the rest 0..1.
// Mutation happens only through ApplyEvent and Decay, both of which clamp.
type State struct {
	Happiness float64 `json:"happiness"`
	Curiosity float64 `json:"curiosity"`
	Fear      float64 `json:"fear"`
	Anger     float64 `json:"anger"`
	Energy    float64 `json:"energy"`
}

// rest is the baseline every state relaxes toward when nothing happens.
var rest = State{
	Happiness: 0.2,
	Curiosity: 0.4,
	Fear:      0.05,
	Anger:     0.0,
	Energy:    0.6,
}

// decayRate gives a ~70-second half-life for the gap to the rest baseline.
const decayRate = math.Ln2 / 70.0

// Personality selects an initial emotional preset at spawn time.
type Personality uint8

const (
	PersonalityDefault     Personality = iota
	PersonalityCheerful
	PersonalityTimid
	PersonalityGrumpy
	PersonalityInquisitive
	PersonalityStoic
)

// NumPersonalities is the count of spawnable presets (excluding the default).
const NumPersonalities = 5

var presets = map[Personality]State{
	PersonalityDefault:     {Happiness: 0.3, Curiosity: 0.5, Fear: 0.1, Anger: 0, Energy: 0.7},
	PersonalityCheerful:    {Happiness: 0.6, Curiosity: 0.5, Fear: 0.05, Anger: 0, Energy: 0.8},
	PersonalityTimid:       {Happiness: 0.1, Curiosity: 0.3, Fear: 0.35, Anger: 0, Energy: 0.5},
	PersonalityGrumpy:      {Happiness: -0.1, Curiosity: 0.3, Fear: 0.1, Anger: 0.3, Energy: 0.6},
	PersonalityInquisitive: {Happiness: 0.3, Curiosity: 0.8, Fear: 0.1, Anger: 0, Energy: 0.75},
	PersonalityStoic:       {Happiness: 0.2, Curiosity: 0.35, Fear: 0.05, Anger: 0.05, Energy: 0.6},
}

// New returns the emotional preset for a personality, falling back to the
// default baseline for unknown tags.
func New(p Personality) State {
	if s, ok := presets[p]; ok {
		return s
	}
	return presets[PersonalityDefault]
}

// Rest returns the baseline state that Decay converges to.
func Rest() State {
	return rest
}

// Decay relaxes the state toward the rest baseline by dt seconds of
// exponential half-life. It is applied every tick regardless of activity.
func (s State) Decay(dt float64) State {
	if dt <= 0 {
		return s
	}
	f := 1 - math.Exp(-decayRate*dt)
	s.Happiness += (rest.Happiness - s.Happiness) * f
	s.Curiosity += (rest.Curiosity - s.Curiosity) * f
	s.Fear += (rest.Fear - s.Fear) * f
	s.Anger += (rest.Anger - s.Anger) * f
	s.Energy += (rest.Energy - s.Energy) * f
	return s.clamped()
}

func (s State) clamped() State {
	s.Happiness = clamp(s.Happiness, -1, 1)
	s.Curiosity = clamp(s.Curiosity, 0, 1)
	s.Fear = clamp(s.Fear, 0, 1)
	s.Anger = clamp(s.Anger, 0, 1)
	s.Energy = clamp(s.Energy, 0, 1)
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
