package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critterworld/internal/needs"
)

func sated() needs.State {
	return needs.State{Hunger: 1, Energy: 1, Social: 1, Comfort: 1}
}

func TestStarvationLeadsToSicknessThenDeath(t *testing.T) {
	s := New(0)
	starving := needs.State{Hunger: 0, Energy: 0.5, Social: 0.5, Comfort: 0.5}

	fellSick := false
	died := false
	for i := 0; i < 10000 && !died; i++ {
		res := s.Tick(starving)
		if res.FellSick {
			fellSick = true
			assert.Equal(t, StatusSick, s.Status)
		}
		died = res.Died
	}

	require.True(t, fellSick, "prolonged starvation should bring sickness")
	require.True(t, died, "untreated sickness plus starvation should kill")
	assert.Equal(t, StatusDead, s.Status)
	assert.Equal(t, 0.0, s.Health)
	assert.InDelta(t, DeathFadeDuration, s.FadeRemaining, 1e-9)
}

func TestDeadIsTerminal(t *testing.T) {
	s := New(2)
	s.Status = StatusDead
	s.Health = 0
	before := s
	res := s.Tick(sated())
	assert.Equal(t, TickResult{}, res)
	assert.Equal(t, before.Age, s.Age)
	assert.Equal(t, StatusDead, s.Status)
}

func TestSickRecoversWhenThriving(t *testing.T) {
	s := New(0)
	s.Status = StatusSick
	s.Health = 0.9

	recovered := false
	for i := 0; i < recoveryTicks+5 && !recovered; i++ {
		recovered = s.Tick(sated()).Recovered
	}
	assert.True(t, recovered)
	assert.Equal(t, StatusHealthy, s.Status)
}

func TestSickRecoveryResetsOnBadDay(t *testing.T) {
	s := New(0)
	s.Status = StatusSick
	s.Health = 1

	hungry := needs.State{Hunger: 0.3, Comfort: 1}
	for i := 0; i < recoveryTicks-1; i++ {
		s.Tick(sated())
	}
	// One bad tick resets the streak.
	s.Tick(hungry)
	res := s.Tick(sated())
	assert.False(t, res.Recovered)
	assert.Equal(t, StatusSick, s.Status)
}

func TestDeathFadeAndOpacity(t *testing.T) {
	s := New(0)
	s.Status = StatusDead
	s.FadeRemaining = DeathFadeDuration

	assert.False(t, s.TickFade(1.0))
	assert.InDelta(t, 2.0/3.0, s.Opacity(), 1e-9)
	assert.False(t, s.TickFade(1.5))
	assert.True(t, s.TickFade(0.6))
	assert.Equal(t, 0.0, s.Opacity())
}

func TestCheckReproductionGates(t *testing.T) {
	good := needs.State{Hunger: 0.9, Energy: 0.9, Social: 0.9, Comfort: 0.9}

	cases := []struct {
		name  string
		mod   func(*State) needs.State
		alive int
		want  bool
	}{
		{"all gates pass", func(s *State) needs.State { return good }, 3, true},
		{"population at cap", func(s *State) needs.State { return good }, DefaultPopulationCap, false},
		{"population over cap", func(s *State) needs.State { return good }, DefaultPopulationCap + 1, false},
		{"active cooldown", func(s *State) needs.State {
			s.StartReproductionCooldown()
			return good
		}, 3, false},
		{"sick parent", func(s *State) needs.State {
			s.Status = StatusSick
			return good
		}, 3, false},
		{"hungry parent", func(s *State) needs.State {
			return needs.State{Hunger: 0.5, Comfort: 0.9}
		}, 3, false},
		{"uncomfortable parent", func(s *State) needs.State {
			return needs.State{Hunger: 0.9, Comfort: 0.4}
		}, 3, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(1)
			n := tc.mod(&s)
			assert.Equal(t, tc.want, CheckReproduction(&s, n, tc.alive, DefaultPopulationCap))
		})
	}
}

func TestCapOverridesEverything(t *testing.T) {
	// Maximal needs and zero cooldown still refuse at the cap.
	s := New(0)
	assert.False(t, CheckReproduction(&s, sated(), 8, 8))
}

func TestCooldownExpires(t *testing.T) {
	s := New(0)
	s.StartReproductionCooldown()
	for i := 0.0; i < ReproductionCooldown; i++ {
		s.Tick(sated())
	}
	assert.Equal(t, 0.0, s.CooldownRemaining)
	assert.True(t, CheckReproduction(&s, sated(), 1, 8))
}

func TestRobotStatusTick(t *testing.T) {
	r := NewRobotStatus()
	lowEnergy := needs.State{Hunger: 1, Energy: 0.1, Social: 1, Comfort: 1}

	for i := 0; i < 100; i++ {
		r.Tick(lowEnergy)
	}
	assert.Less(t, r.Battery, 1.0)
	assert.Less(t, r.Durability, 1.0)
	assert.Greater(t, r.Temperature, ambientTemp)

	r.Recharge(5)
	assert.Equal(t, 1.0, r.Battery)
}
