// Movement: activity re-selection, wander-target choice shaped by the active
// movement pattern, social steering toward friends and away from disliked
// neighbors, and velocity integration onto the terrain.
package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/talgya/critterworld/internal/activity"
	"github.com/talgya/critterworld/internal/relationship"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/vec"
)

const (
	baseSpeed       = 2.0 // world units per second before multipliers
	arriveRadius    = 0.6
	steerRange      = 10.0 // social steering considers neighbors this close
	approachBlend   = 0.2
	avoidBlend      = 0.3
	resourceScanFar = 40.0 // how far seek_resource looks for a node
)

func (e *Entity) updateMovement(dt float64, env Env) {
	if e.InDialogue {
		e.freezeFacing(dt, env)
		return
	}

	if activity.ShouldSwitch(e.Activity, env.Now) {
		e.selectActivity(env)
	}

	if env.Now.Before(e.pausedUntil) {
		e.Velocity = vec.Vec3{}
		return
	}

	if !e.hasMoveTarget || e.Position.DistXZ(e.moveTarget) < arriveRadius {
		if e.hasMoveTarget && e.rng.Float64() < e.Activity.Pattern().PauseChance {
			e.pausedUntil = env.Now.Add(time.Duration((1 + e.rng.Float64()) * float64(time.Second)))
			e.hasMoveTarget = false
			e.Velocity = vec.Vec3{}
			return
		}
		e.chooseTarget(env)
	}

	speed := baseSpeed * e.Activity.Pattern().SpeedMultiplier * e.Emotion.ToSpeedMultiplier()
	desired := e.moveTarget.Sub(e.Position)
	desired.Y = 0
	desired = desired.Normalized().Scale(speed)

	// Social steering: drift toward friends, shear away from bad blood.
	for _, nb := range env.Nearby {
		if nb.Distance > steerRange {
			break
		}
		aff := env.Relationships.Affinity(e.ID, nb.ID)
		toward := nb.Position.Sub(e.Position)
		toward.Y = 0
		toward = toward.Normalized().Scale(speed)
		if relationship.ShouldApproach(aff) {
			desired = desired.Lerp(toward, approachBlend)
		} else if relationship.ShouldAvoid(aff) {
			desired = desired.Lerp(toward.Scale(-1), avoidBlend)
		}
	}

	e.Velocity = desired
	e.Position = e.Position.Add(e.Velocity.Scale(dt))
	if env.HeightAt != nil {
		e.Position.Y = env.HeightAt(e.Position.X, e.Position.Z)
	}
	if e.Velocity.Length() > 0.01 {
		e.Rotation = e.Velocity.HeadingXZ()
	}
}

// selectActivity replaces the current activity: a validated AI intent wins,
// otherwise the rule cascade decides.
func (e *Entity) selectActivity(env Env) {
	prev := activity.ActivityIdle
	if e.Activity != nil {
		prev = e.Activity.Current
	}

	if e.aiIntent != "" {
		next := activity.NewState(e.rng, env.Now, e.aiIntent)
		e.Activity = &next
		e.aiIntent = ""
	} else {
		in := activity.Inputs{
			Emotion:       e.Emotion,
			TimeOfDay:     env.TimeOfDay,
			Raining:       env.Raining,
			Relationships: env.Relationships,
			SelfID:        e.ID,
			Desires:       e.Needs.ComputeDesires(e.NeedsKind()),
		}
		for _, nb := range env.Nearby {
			in.Nearby = append(in.Nearby, activity.Neighbor{ID: nb.ID, Distance: nb.Distance})
		}
		next := activity.SelectNext(e.rng, env.Now, in)
		e.Activity = &next
	}

	e.hasMoveTarget = false
	if e.Activity.Current != prev {
		env.Store.AppendLog(store.LogEntry{
			At:       env.Now,
			EntityID: e.ID,
			Category: "activity",
			Text:     fmt.Sprintf("%s starts to %s", e.Name, e.Activity.Current),
		})
	}
}

// chooseTarget picks the next waypoint for the active pattern.
func (e *Entity) chooseTarget(env Env) {
	switch e.Activity.Current {
	case activity.ActivitySocialize:
		if pos, ok := e.targetEntityPos(env); ok {
			e.moveTarget = pos
			e.hasMoveTarget = true
			return
		}
	case activity.ActivitySeekResource:
		if env.Resources != nil {
			near := env.Resources.GetNearby(e.Position.X, e.Position.Z, resourceScanFar, e.PermittedResourceTypes())
			if len(near) > 0 {
				e.Activity.TargetResourceID = near[0].ID
				e.moveTarget = near[0].Position
				e.hasMoveTarget = true
				return
			}
		}
	}
	e.moveTarget = e.wanderPoint()
	e.hasMoveTarget = true
}

func (e *Entity) targetEntityPos(env Env) (vec.Vec3, bool) {
	id := e.DialogueWith
	if e.Activity != nil && e.Activity.TargetEntityID != "" {
		id = e.Activity.TargetEntityID
	}
	if id == "" {
		return vec.Vec3{}, false
	}
	for _, nb := range env.Nearby {
		if nb.ID == id {
			return nb.Position, true
		}
	}
	return env.Store.Position(id)
}

// wanderPoint draws a random point inside the pattern's wander radius around
// an anchor pulled toward home by the pattern's home affinity.
func (e *Entity) wanderPoint() vec.Vec3 {
	p := e.Activity.Pattern()
	anchor := e.Position.Lerp(e.Home, p.HomeAffinity)
	angle := e.rng.Float64() * 2 * math.Pi
	dist := e.rng.Float64() * p.WanderRadius
	return vec.Vec3{
		X: anchor.X + math.Sin(angle)*dist,
		Z: anchor.Z + math.Cos(angle)*dist,
	}
}

// freezeFacing halts movement during a conversation and turns the entity
// toward its partner. Quarreling entities twitch in place instead of standing
// still.
func (e *Entity) freezeFacing(dt float64, env Env) {
	e.Velocity = vec.Vec3{}
	if e.dialogueQuarrel {
		e.Position.X += (e.rng.Float64() - 0.5) * 0.4 * dt
		e.Position.Z += (e.rng.Float64() - 0.5) * 0.4 * dt
		if env.HeightAt != nil {
			e.Position.Y = env.HeightAt(e.Position.X, e.Position.Z)
		}
	}
	if pos, ok := e.targetEntityPos(env); ok {
		dir := pos.Sub(e.Position)
		if dir.Length() > 0.01 {
			e.Rotation = dir.HeadingXZ()
		}
	}
}
