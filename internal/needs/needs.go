// Package needs implements the four-dimensional physiological resource model.
// Needs drain continuously with time, are topped up by satisfaction events,
// and convert into ranked desires that drive activity selection.
package needs

// Kind selects the per-species drain profile.
type Kind uint8

const (
	KindRobot Kind = iota
	KindCritter
	KindWildAnimal
)

// Field names one need dimension.
type Field uint8

const (
	FieldHunger Field = iota
	FieldEnergy
	FieldSocial
	FieldComfort
)

// State tracks the fulfillment of each need, all in [0,1] where 1 is sated.
type State struct {
	Hunger  float64 `json:"hunger"`
	Energy  float64 `json:"energy"`
	Social  float64 `json:"social"`
	Comfort float64 `json:"comfort"`
}

// drainProfile holds per-second linear drain rates for one kind.
type drainProfile struct {
	hunger, energy, social, comfort float64
}

// Robots track hunger for protocol parity but never drain it; their "eating"
// is recharging.
var drains = map[Kind]drainProfile{
	KindRobot:      {hunger: 0, energy: 0.004, social: 0.002, comfort: 0.0015},
	KindCritter:    {hunger: 0.008, energy: 0.005, social: 0.003, comfort: 0.002},
	KindWildAnimal: {hunger: 0.010, energy: 0.005, social: 0.001, comfort: 0.001},
}

// nightEnergyFactor boosts energy drain after dark.
const nightEnergyFactor = 1.5

// NewDefault returns the starting needs for a kind. Everyone spawns sated;
// the robot's hunger pins at full.
func NewDefault(kind Kind) State {
	switch kind {
	case KindRobot:
		return State{Hunger: 1, Energy: 1, Social: 0.8, Comfort: 0.9}
	case KindWildAnimal:
		return State{Hunger: 0.8, Energy: 0.9, Social: 0.5, Comfort: 0.7}
	default:
		return State{Hunger: 0.9, Energy: 0.9, Social: 0.7, Comfort: 0.8}
	}
}

// Decay drains every applicable field by dt seconds, flooring at 0.
func (s State) Decay(dt float64, kind Kind, isNight bool) State {
	p, ok := drains[kind]
	if !ok {
		p = drains[KindCritter]
	}
	energyRate := p.energy
	if isNight {
		energyRate *= nightEnergyFactor
	}
	s.Hunger = floor0(s.Hunger - p.hunger*dt)
	s.Energy = floor0(s.Energy - energyRate*dt)
	s.Social = floor0(s.Social - p.social*dt)
	s.Comfort = floor0(s.Comfort - p.comfort*dt)
	return s
}

// Satisfy raises one field by amount, capped at 1. Negative amounts are ignored.
func (s State) Satisfy(field Field, amount float64) State {
	if amount <= 0 {
		return s
	}
	switch field {
	case FieldHunger:
		s.Hunger = cap1(s.Hunger + amount)
	case FieldEnergy:
		s.Energy = cap1(s.Energy + amount)
	case FieldSocial:
		s.Social = cap1(s.Social + amount)
	case FieldComfort:
		s.Comfort = cap1(s.Comfort + amount)
	}
	return s
}

func floor0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func cap1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
