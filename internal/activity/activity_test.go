package activity

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/relationship"
)

func rng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestUrgentEatIsDeterministic(t *testing.T) {
	in := Inputs{
		// Hostile conditions for every other rule.
		Emotion:   emotion.State{Happiness: 1, Curiosity: 1, Fear: 1, Anger: 1, Energy: 0.1},
		TimeOfDay: 23,
		Raining:   true,
		Desires:   []needs.Desire{{Type: needs.DesireEat, Urgency: 0.6}},
	}

	// Whatever the rolls, rule 1 fires first.
	for seed := int64(0); seed < 50; seed++ {
		st := SelectNext(rng(seed), time.Now(), in)
		assert.Equal(t, ActivitySeekResource, st.Current)
	}
}

func TestUrgentRechargeSeeksResource(t *testing.T) {
	in := Inputs{Desires: []needs.Desire{{Type: needs.DesireRecharge, Urgency: 0.9}}}
	st := SelectNext(rng(1), time.Now(), in)
	assert.Equal(t, ActivitySeekResource, st.Current)
}

func TestUrgentRestRests(t *testing.T) {
	in := Inputs{Desires: []needs.Desire{{Type: needs.DesireRest, Urgency: 0.5}}}
	st := SelectNext(rng(1), time.Now(), in)
	assert.Equal(t, ActivityRest, st.Current)
}

func TestMildDesireFallsThrough(t *testing.T) {
	in := Inputs{
		Emotion:   emotion.State{Energy: 0.5},
		TimeOfDay: 12,
		Desires:   []needs.Desire{{Type: needs.DesireEat, Urgency: 0.3}},
	}
	seen := map[Activity]bool{}
	for seed := int64(0); seed < 200; seed++ {
		seen[SelectNext(rng(seed), time.Now(), in).Current] = true
	}
	assert.False(t, seen[ActivitySeekResource], "urgency 0.3 must not trigger rule 1")
}

func TestNightRestRule(t *testing.T) {
	in := Inputs{
		Emotion:   emotion.State{Energy: 0.3},
		TimeOfDay: 23,
	}
	rests := 0
	const n = 2000
	for seed := int64(0); seed < n; seed++ {
		if SelectNext(rng(seed), time.Now(), in).Current == ActivityRest {
			rests++
		}
	}
	// Rule 2 fires with p=0.85.
	assert.InDelta(t, 0.85, float64(rests)/n, 0.04)
}

func TestSocializeTargetsFirstFriendInRange(t *testing.T) {
	rel := relationship.New().
		Adjust("me", "far-friend", 0.8).
		Adjust("me", "stranger", 0.0).
		Adjust("me", "buddy", 0.5)

	in := Inputs{
		Emotion:       emotion.State{Happiness: 0.5, Energy: 0.5},
		TimeOfDay:     12,
		Relationships: rel,
		SelfID:        "me",
		Nearby: []Neighbor{
			{ID: "stranger", Distance: 3},
			{ID: "buddy", Distance: 10},
			{ID: "far-friend", Distance: 40},
		},
	}

	sawSocialize := false
	for seed := int64(0); seed < 200; seed++ {
		st := SelectNext(rng(seed), time.Now(), in)
		if st.Current == ActivitySocialize {
			sawSocialize = true
			assert.Equal(t, "buddy", st.TargetEntityID)
		}
	}
	assert.True(t, sawSocialize)
}

func TestFleeRequiresRainAndFear(t *testing.T) {
	in := Inputs{
		Emotion:   emotion.State{Fear: 0.6, Energy: 0.1},
		TimeOfDay: 12,
		Raining:   false,
	}
	for seed := int64(0); seed < 100; seed++ {
		assert.NotEqual(t, ActivityFlee, SelectNext(rng(seed), time.Now(), in).Current)
	}

	in.Raining = true
	sawFlee := false
	for seed := int64(0); seed < 100; seed++ {
		if SelectNext(rng(seed), time.Now(), in).Current == ActivityFlee {
			sawFlee = true
		}
	}
	assert.True(t, sawFlee)
}

func TestDefaultDistribution(t *testing.T) {
	// Conditions that dodge rules 1-7 entirely: energy above both rest
	// cutoffs, night (skips rule 5), no anger, no rain, no friends.
	in := Inputs{
		Emotion:   emotion.State{Energy: 0.5},
		TimeOfDay: 23,
	}

	counts := map[Activity]int{}
	const n = 5000
	for seed := int64(0); seed < n; seed++ {
		counts[SelectNext(rng(seed), time.Now(), in).Current]++
	}

	assert.InDelta(t, 0.40, float64(counts[ActivityForage])/n, 0.05)
	assert.InDelta(t, 0.25, float64(counts[ActivityExplore])/n, 0.05)
	assert.InDelta(t, 0.35, float64(counts[ActivityIdle])/n, 0.05)
}

func TestShouldSwitch(t *testing.T) {
	now := time.Now()
	st := &State{Current: ActivityIdle, StartedAt: now, Duration: 10 * time.Second}

	assert.False(t, ShouldSwitch(st, now))
	assert.False(t, ShouldSwitch(st, now.Add(9999*time.Millisecond)))
	assert.True(t, ShouldSwitch(st, now.Add(10*time.Second)))
	assert.True(t, ShouldSwitch(st, now.Add(time.Minute)))
	assert.True(t, ShouldSwitch(nil, now))
}

func TestDurationWithinRange(t *testing.T) {
	r := rng(7)
	for i := 0; i < 200; i++ {
		st := SelectNext(r, time.Now(), Inputs{Emotion: emotion.State{Energy: 0.5}})
		dr, ok := durations[st.Current]
		require.True(t, ok)
		secs := st.Duration.Seconds()
		assert.GreaterOrEqual(t, secs, dr.min)
		assert.LessOrEqual(t, secs, dr.max)
	}
}

func TestValidAllowList(t *testing.T) {
	for _, name := range []string{"explore", "forage", "rest", "socialize", "flee", "patrol", "seek_resource", "idle"} {
		a, ok := Valid(name)
		assert.True(t, ok)
		assert.Equal(t, Activity(name), a)
	}
	for _, name := range []string{"dialogue", "fly", "", "EXPLORE", "eat"} {
		_, ok := Valid(name)
		assert.False(t, ok, name)
	}
}

func TestIsNight(t *testing.T) {
	assert.True(t, IsNight(2))
	assert.True(t, IsNight(22))
	assert.False(t, IsNight(5))
	assert.False(t, IsNight(12))
	assert.False(t, IsNight(21))
}

func TestEveryActivityHasPatternAndDuration(t *testing.T) {
	for a := range patterns {
		_, ok := durations[a]
		assert.True(t, ok, a)
	}
	p := (&State{Current: ActivityFlee}).Pattern()
	assert.Equal(t, 1.4, p.SpeedMultiplier)
}
