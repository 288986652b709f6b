// Package lifecycle implements the per-critter health/age/generation state
// machine: sickness onset and recovery, death with a visual fade-out, and
// reproduction gating against needs, cooldowns, and the population cap.
package lifecycle

import (
	"github.com/talgya/critterworld/internal/needs"
)

// HealthStatus is the critter's position in the healthy -> sick -> dead chain.
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy"
	StatusSick    HealthStatus = "sick"
	StatusDead    HealthStatus = "dead"
)

// Tuning constants. The tick cadence is fixed at one simulated second,
// decoupled from the render frame rate.
const (
	TickInterval = 1.0 // seconds per lifecycle tick

	// Starvation: this many consecutive ticks at empty hunger brings sickness.
	starvationOnsetTicks = 30
	starvationHealthLoss = 0.005
	sicknessHealthLoss   = 0.01

	// Recovery: a sick critter that keeps hunger and comfort above this level
	// for this many consecutive ticks becomes healthy again.
	recoveryNeedLevel = 0.6
	recoveryTicks     = 30
	recoveryHealthGain = 0.004

	// Old age: past this age health erodes a little every tick.
	oldAge           = 900.0 // seconds
	oldAgeHealthLoss = 0.0008

	// Reproduction gates.
	reproductionHunger   = 0.7
	reproductionComfort  = 0.6
	ReproductionCooldown = 120.0 // seconds applied to the parent after a birth

	// DeathFadeDuration is how long a corpse lingers (opacity decay) before
	// removal from the population registry.
	DeathFadeDuration = 3.0 // seconds

	// DefaultPopulationCap is the maximum alive critter count.
	DefaultPopulationCap = 8
)

// State is one critter's lifecycle record, advanced once per lifecycle tick.
type State struct {
	Health     float64      `json:"health"`
	Age        float64      `json:"age"` // seconds alive
	Generation int          `json:"generation"`
	Status     HealthStatus `json:"health_status"`

	// CooldownRemaining blocks reproduction while positive.
	CooldownRemaining float64 `json:"reproduction_cooldown"`

	// FadeRemaining counts down the death fade once Status is dead.
	FadeRemaining float64 `json:"fade_remaining,omitempty"`

	starvingTicks int
	thrivingTicks int
}

// New creates a lifecycle record for a fresh spawn. Generation is the
// parent's generation + 1, or 0 for root entities.
func New(generation int) State {
	return State{
		Health:     1.0,
		Generation: generation,
		Status:     StatusHealthy,
	}
}

// TickResult reports the transitions a tick produced.
type TickResult struct {
	FellSick  bool
	Recovered bool
	Died      bool
}

// Tick advances the state machine by one lifecycle tick (one simulated
// second), evaluating health against the entity's current needs. Dead states
// are terminal; ticking them is a no-op.
func (s *State) Tick(n needs.State) TickResult {
	var res TickResult
	if s.Status == StatusDead {
		return res
	}

	s.Age += TickInterval
	if s.CooldownRemaining > 0 {
		s.CooldownRemaining -= TickInterval
		if s.CooldownRemaining < 0 {
			s.CooldownRemaining = 0
		}
	}

	// Prolonged starvation makes a healthy critter sick.
	if n.Hunger <= 0 {
		s.starvingTicks++
		s.Health -= starvationHealthLoss
	} else {
		s.starvingTicks = 0
	}
	if s.Status == StatusHealthy && s.starvingTicks >= starvationOnsetTicks {
		s.Status = StatusSick
		s.thrivingTicks = 0
		res.FellSick = true
	}

	switch s.Status {
	case StatusSick:
		s.Health -= sicknessHealthLoss
		// Sustained good condition heals.
		if n.Hunger > recoveryNeedLevel && n.Comfort > recoveryNeedLevel {
			s.thrivingTicks++
			s.Health += recoveryHealthGain
		} else {
			s.thrivingTicks = 0
		}
		if s.thrivingTicks >= recoveryTicks {
			s.Status = StatusHealthy
			s.thrivingTicks = 0
			res.Recovered = true
		}
	case StatusHealthy:
		if s.Age > oldAge {
			s.Health -= oldAgeHealthLoss
		}
	}

	if s.Health > 1 {
		s.Health = 1
	}
	if s.Health <= 0 {
		s.Health = 0
		s.Status = StatusDead
		s.FadeRemaining = DeathFadeDuration
		res.Died = true
	}
	return res
}

// TickFade decays the death fade by dt render seconds and reports whether the
// corpse is ready for removal from the registry.
func (s *State) TickFade(dt float64) bool {
	if s.Status != StatusDead {
		return false
	}
	s.FadeRemaining -= dt
	return s.FadeRemaining <= 0
}

// Opacity returns the render opacity during the death fade, 1 while alive.
func (s *State) Opacity() float64 {
	if s.Status != StatusDead {
		return 1
	}
	o := s.FadeRemaining / DeathFadeDuration
	if o < 0 {
		return 0
	}
	return o
}

// CheckReproduction reports whether this critter may reproduce right now.
// Requires a healthy state, an expired cooldown, well-met hunger and comfort,
// and headroom under the population cap. Cap violations are a silent skip,
// never an error.
func CheckReproduction(s *State, n needs.State, aliveCount, cap int) bool {
	if aliveCount >= cap {
		return false
	}
	if s.Status != StatusHealthy {
		return false
	}
	if s.CooldownRemaining > 0 {
		return false
	}
	return n.Hunger > reproductionHunger && n.Comfort > reproductionComfort
}

// StartReproductionCooldown applies the post-birth cooldown to the parent.
func (s *State) StartReproductionCooldown() {
	s.CooldownRemaining = ReproductionCooldown
}
