// Package activity implements behavior-mode selection: a priority-ordered
// probabilistic rule cascade that converts emotion, desires, relationships,
// time of day, weather, and company into one Activity plus a movement pattern
// and a randomized duration.
package activity

import (
	"math/rand"
	"time"
)

// Activity is a high-level behavior mode.
type Activity string

const (
	ActivityIdle         Activity = "idle"
	ActivityExplore      Activity = "explore"
	ActivityForage       Activity = "forage"
	ActivityRest         Activity = "rest"
	ActivitySocialize    Activity = "socialize"
	ActivityFlee         Activity = "flee"
	ActivityPatrol       Activity = "patrol"
	ActivitySeekResource Activity = "seek_resource"

	// ActivityDialogue is entered by the update loop, never by the cascade.
	ActivityDialogue Activity = "dialogue"
)

// MovementPattern shapes how an entity moves while an activity is active.
type MovementPattern struct {
	WanderRadius    float64 `json:"wander_radius"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
	PauseChance     float64 `json:"pause_chance"`
	HomeAffinity    float64 `json:"home_affinity"`
}

// State is the current activity record, replaced wholesale on re-selection.
type State struct {
	Current          Activity      `json:"current"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	TargetEntityID   string        `json:"target_entity_id,omitempty"`
	TargetResourceID string        `json:"target_resource_id,omitempty"`
}

// Pattern returns the movement pattern for the current activity.
func (s *State) Pattern() MovementPattern {
	return patterns[s.Current]
}

var patterns = map[Activity]MovementPattern{
	ActivityIdle:         {WanderRadius: 2, SpeedMultiplier: 0.3, PauseChance: 0.6, HomeAffinity: 0.5},
	ActivityExplore:      {WanderRadius: 25, SpeedMultiplier: 1.0, PauseChance: 0.1, HomeAffinity: 0.1},
	ActivityForage:       {WanderRadius: 10, SpeedMultiplier: 0.8, PauseChance: 0.3, HomeAffinity: 0.3},
	ActivityRest:         {WanderRadius: 1, SpeedMultiplier: 0.2, PauseChance: 0.8, HomeAffinity: 0.9},
	ActivitySocialize:    {WanderRadius: 8, SpeedMultiplier: 0.9, PauseChance: 0.2, HomeAffinity: 0.2},
	ActivityFlee:         {WanderRadius: 30, SpeedMultiplier: 1.4, PauseChance: 0, HomeAffinity: 0.6},
	ActivityPatrol:       {WanderRadius: 18, SpeedMultiplier: 1.1, PauseChance: 0.05, HomeAffinity: 0.4},
	ActivitySeekResource: {WanderRadius: 20, SpeedMultiplier: 1.0, PauseChance: 0.05, HomeAffinity: 0.1},
	ActivityDialogue:     {WanderRadius: 0.5, SpeedMultiplier: 0.1, PauseChance: 0.9, HomeAffinity: 0.5},
}

// durationRange is the [min,max] seconds an activity runs before re-selection.
type durationRange struct{ min, max float64 }

var durations = map[Activity]durationRange{
	ActivityIdle:         {5, 10},
	ActivityExplore:      {15, 30},
	ActivityForage:       {10, 20},
	ActivityRest:         {10, 25},
	ActivitySocialize:    {8, 15},
	ActivityFlee:         {5, 10},
	ActivityPatrol:       {12, 20},
	ActivitySeekResource: {8, 15},
	ActivityDialogue:     {10, 10},
}

// rollDuration draws a uniform duration from the activity's range.
func rollDuration(rng *rand.Rand, a Activity) time.Duration {
	r, ok := durations[a]
	if !ok {
		r = durationRange{5, 10}
	}
	secs := r.min + rng.Float64()*(r.max-r.min)
	return time.Duration(secs * float64(time.Second))
}

// NewState starts the given activity directly, bypassing the cascade. Used
// when an externally classified action (an AI intent) overrides selection.
func NewState(rng *rand.Rand, now time.Time, a Activity) State {
	return State{
		Current:   a,
		StartedAt: now,
		Duration:  rollDuration(rng, a),
	}
}

// ShouldSwitch reports whether the activity has run its course. A nil state
// always switches.
func ShouldSwitch(s *State, now time.Time) bool {
	if s == nil {
		return true
	}
	return now.Sub(s.StartedAt) >= s.Duration
}

// Valid reports whether name is a selectable activity, used to validate
// untrusted LLM-classified actions against the allow-list.
func Valid(name string) (Activity, bool) {
	a := Activity(name)
	switch a {
	case ActivityIdle, ActivityExplore, ActivityForage, ActivityRest,
		ActivitySocialize, ActivityFlee, ActivityPatrol, ActivitySeekResource:
		return a, true
	}
	return "", false
}

// IsNight reports whether a time-of-day hour falls in the night window.
func IsNight(timeOfDay float64) bool {
	return timeOfDay < 5 || timeOfDay > 21
}
