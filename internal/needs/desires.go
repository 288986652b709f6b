// Desires — ephemeral, ranked motivations recomputed each decision cycle
// from unmet needs. The descending-urgency order is the tie-break contract
// activity selection relies on.
package needs

import (
	"fmt"
	"sort"
	"strings"
)

// DesireType names what an unmet need asks for.
type DesireType string

const (
	DesireEat         DesireType = "eat"
	DesireRecharge    DesireType = "recharge"
	DesireSocialize   DesireType = "socialize"
	DesireRest        DesireType = "rest"
	DesireSeekShelter DesireType = "seek_shelter"
)

// Desire is one ranked motivation. Never persisted.
type Desire struct {
	Type    DesireType `json:"type"`
	Urgency float64    `json:"urgency"`
}

// Inclusion thresholds: a desire only surfaces once its urgency (1 - level)
// clears these.
const (
	desireThreshold       = 0.2
	socialDesireThreshold = 0.5
)

// ComputeDesires converts unmet needs into a list sorted by descending
// urgency. Robots never hunger; their energy deficit maps to recharge.
func (s State) ComputeDesires(kind Kind) []Desire {
	var out []Desire

	if kind != KindRobot {
		if u := 1 - s.Hunger; u > desireThreshold {
			out = append(out, Desire{Type: DesireEat, Urgency: u})
		}
	}
	if u := 1 - s.Energy; u > desireThreshold {
		t := DesireRest
		if kind == KindRobot {
			t = DesireRecharge
		}
		out = append(out, Desire{Type: t, Urgency: u})
	}
	if u := 1 - s.Social; u > socialDesireThreshold {
		out = append(out, Desire{Type: DesireSocialize, Urgency: u})
	}
	if u := 1 - s.Comfort; u > desireThreshold {
		out = append(out, Desire{Type: DesireSeekShelter, Urgency: u})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Urgency > out[j].Urgency
	})
	return out
}

// ToDialogueContext renders a short needs summary for prompt assembly.
func (s State) ToDialogueContext() string {
	var parts []string
	if s.Hunger < 0.3 {
		parts = append(parts, "very hungry")
	} else if s.Hunger < 0.6 {
		parts = append(parts, "peckish")
	}
	if s.Energy < 0.3 {
		parts = append(parts, "worn out")
	}
	if s.Social < 0.3 {
		parts = append(parts, "lonely")
	}
	if s.Comfort < 0.3 {
		parts = append(parts, "uncomfortable")
	}
	if len(parts) == 0 {
		return "feeling fine"
	}
	return strings.Join(parts, ", ")
}

// EmotionInfluence describes the physiological pull low needs exert on
// emotion each cycle. Returned as adjustments the caller applies via the
// emotion event table.
type EmotionInfluence struct {
	HungerLow bool
	EnergyLow bool
}

// ToEmotionInfluence reports which physiological triggers are active.
func (s State) ToEmotionInfluence() EmotionInfluence {
	return EmotionInfluence{
		HungerLow: s.Hunger < 0.25,
		EnergyLow: s.Energy < 0.2,
	}
}

func (d Desire) String() string {
	return fmt.Sprintf("%s(%.2f)", d.Type, d.Urgency)
}
