// Activity selection cascade. Rules are evaluated top to bottom; the first
// rule whose condition holds AND whose probability roll passes wins. The rule
// order and thresholds are a behavioral contract.
package activity

import (
	"math/rand"
	"time"

	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/relationship"
)

// Neighbor is a nearby entity as seen by the selector.
type Neighbor struct {
	ID       string
	Distance float64
}

// Inputs bundles everything the cascade reads.
type Inputs struct {
	Emotion       emotion.State
	TimeOfDay     float64 // hours, 0..24
	Raining       bool
	Relationships relationship.Map
	SelfID        string
	Nearby        []Neighbor // sorted by distance ascending
	Desires       []needs.Desire
}

// socializeRange is how close a friend must be for rule 4 to consider them.
const socializeRange = 15.0

// SelectNext picks the next activity. The rng is injected so callers can make
// the roll sequence deterministic.
func SelectNext(rng *rand.Rand, now time.Time, in Inputs) State {
	a, target := selectActivity(rng, in)
	return State{
		Current:        a,
		StartedAt:      now,
		Duration:       rollDuration(rng, a),
		TargetEntityID: target,
	}
}

func selectActivity(rng *rand.Rand, in Inputs) (Activity, string) {
	e := in.Emotion
	night := IsNight(in.TimeOfDay)

	// 1. An urgent desire is deterministic — no roll.
	if len(in.Desires) > 0 && in.Desires[0].Urgency > 0.4 {
		switch in.Desires[0].Type {
		case needs.DesireEat, needs.DesireRecharge:
			return ActivitySeekResource, ""
		case needs.DesireRest:
			return ActivityRest, ""
		}
	}

	// 2. Tired at night: bed down.
	if night && e.Energy < 0.4 && rng.Float64() < 0.85 {
		return ActivityRest, ""
	}

	// 3. Frightened in the rain: run for it.
	if in.Raining && e.Fear > 0.3 && rng.Float64() < 0.5 {
		return ActivityFlee, ""
	}

	// 4. A friend nearby, and in the mood for company.
	if e.Happiness > 0.3 && e.Energy > 0.3 {
		for _, nb := range in.Nearby {
			if nb.Distance > socializeRange {
				continue
			}
			if relationship.ShouldApproach(in.Relationships.Affinity(in.SelfID, nb.ID)) {
				if rng.Float64() < 0.4 {
					return ActivitySocialize, nb.ID
				}
				break
			}
		}
	}

	// 5. Daytime wanderlust.
	if !night && e.Energy > 0.3 {
		p := 0.25
		if e.Curiosity > 0.4 {
			p = 0.45
		}
		if rng.Float64() < p {
			return ActivityExplore, ""
		}
	}

	// 6. Worked up: stalk the perimeter.
	if e.Anger > 0.25 && e.Energy > 0.3 && rng.Float64() < 0.25 {
		return ActivityPatrol, ""
	}

	// 7. Running on fumes.
	if e.Energy < 0.25 && rng.Float64() < 0.6 {
		return ActivityRest, ""
	}

	// 8. Weighted default.
	switch roll := rng.Float64(); {
	case roll < 0.4:
		return ActivityForage, ""
	case roll < 0.65:
		return ActivityExplore, ""
	default:
		return ActivityIdle, ""
	}
}
