// The per-frame update pipeline. Order matters: models decay first, lifecycle
// consequences land on a fixed 1-second cadence, then the entity perceives
// (resources, features), converses, thinks, and finally moves.
package entity

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/critterworld/internal/activity"
	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/lifecycle"
	"github.com/talgya/critterworld/internal/llm"
	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/relationship"
	"github.com/talgya/critterworld/internal/resource"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/vec"
)

// Neighbor is another entity as perceived this tick.
type Neighbor struct {
	ID       string
	Name     string
	Kind     Kind
	Position vec.Vec3
	Distance float64
}

// Feature is a named world landmark entities can notice and remember.
type Feature struct {
	ID       string
	Name     string
	Position vec.Vec3
}

// Env is everything outside the entity that a single update reads. The world
// loop builds one per entity per tick; Nearby is sorted by distance ascending
// and contains only alive entities.
type Env struct {
	Now       time.Time
	TimeOfDay float64
	Night     bool
	Raining   bool
	Weather   string

	Nearby        []Neighbor
	Relationships relationship.Map
	AliveCritters int
	PopulationCap int
	RobotID       string

	Store     *store.Store
	Resources *resource.Registry
	HeightAt  func(x, z float64) float64
	Features  []Feature
	Worker    *llm.Worker
	AIEnabled bool

	// DialogueSeen is invoked for every dialogue line this entity speaks, so
	// the world can mirror lines into persistence.
	DialogueSeen func(store.Dialogue)
}

// Outcome reports the tick's population-level consequences; the world loop
// consumes them (spawning children, broadcasting deaths, removing corpses).
type Outcome struct {
	ReproductionReady bool
	FellSick          bool
	Recovered         bool
	JustDied          bool
	RemovalReady      bool
}

// Update advances the entity by dt seconds of simulated time.
func (e *Entity) Update(dt float64, env Env) Outcome {
	var out Outcome

	if !e.Alive() {
		if e.Life.TickFade(dt) {
			out.RemovalReady = true
		}
		return out
	}

	e.Emotion = e.Emotion.Decay(dt)
	e.Needs = e.Needs.Decay(dt, e.NeedsKind(), env.Night)
	e.sinceEmotionSync += dt
	e.sinceNeedsSync += dt

	out = e.tickLifecycle(dt, env)
	if out.JustDied {
		e.Velocity = vec.Vec3{}
		e.releaseDialogueOnDeath(env)
		e.syncModels(env, true)
		return out
	}

	e.syncModels(env, false)
	e.consumeNearbyResource(env)
	e.observeFeatures(env)
	e.updateDialogue(env)
	e.updateThinking(dt, env)
	e.updateMovement(dt, env)

	env.Store.SetPosition(e.ID, e.Position)
	return out
}

// tickLifecycle runs the fixed 1-second cadence: lifecycle state machine (or
// robot status), physiological emotion triggers, and the reproduction check.
func (e *Entity) tickLifecycle(dt float64, env Env) Outcome {
	var out Outcome
	e.lifecycleAcc += dt
	for e.lifecycleAcc >= lifecycle.TickInterval {
		e.lifecycleAcc -= lifecycle.TickInterval

		infl := e.Needs.ToEmotionInfluence()
		if infl.HungerLow {
			e.Emotion = e.Emotion.ApplyEvent(emotion.EventHungerLow, 0.2)
		}
		if infl.EnergyLow {
			e.Emotion = e.Emotion.ApplyEvent(emotion.EventEnergyLow, 0.2)
		}

		if e.Kind == KindRobot {
			e.Robot.Tick(e.Needs)
			continue
		}

		res := e.Life.Tick(e.Needs)
		out.FellSick = out.FellSick || res.FellSick
		out.Recovered = out.Recovered || res.Recovered
		if res.Died {
			out.JustDied = true
			return out
		}
		if lifecycle.CheckReproduction(&e.Life, e.Needs, env.AliveCritters, env.PopulationCap) {
			out.ReproductionReady = true
		}
	}
	return out
}

// syncModels pushes emotion/needs snapshots to the store at most once per
// second, and only when they moved past the sync threshold. force bypasses
// both gates (used for the final push on death).
func (e *Entity) syncModels(env Env, force bool) {
	if force || e.shouldSyncEmotion() {
		env.Store.SetEmotion(e.ID, e.Emotion)
		e.lastSyncedEmotion = e.Emotion
		e.emotionSynced = true
		e.sinceEmotionSync = 0
	}
	if force || e.shouldSyncNeeds() {
		env.Store.SetNeeds(e.ID, e.Needs)
		e.lastSyncedNeeds = e.Needs
		e.needsSynced = true
		e.sinceNeedsSync = 0
	}
}

func (e *Entity) shouldSyncEmotion() bool {
	if !e.emotionSynced {
		return true
	}
	if e.sinceEmotionSync < syncInterval {
		return false
	}
	return emotion.Changed(e.Emotion, e.lastSyncedEmotion, emotion.DefaultSyncThreshold)
}

func (e *Entity) shouldSyncNeeds() bool {
	if !e.needsSynced {
		return true
	}
	if e.sinceNeedsSync < syncInterval {
		return false
	}
	return needsChanged(e.Needs, e.lastSyncedNeeds)
}

func needsChanged(a, b needs.State) bool {
	const th = emotion.DefaultSyncThreshold
	return abs(a.Hunger-b.Hunger) > th || abs(a.Energy-b.Energy) > th ||
		abs(a.Social-b.Social) > th || abs(a.Comfort-b.Comfort) > th
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// consumeNearbyResource takes a bite from the closest permitted node in reach
// and routes the yield into the matching need. Robots recharge; critters eat
// and drink.
func (e *Entity) consumeNearbyResource(env Env) {
	if env.Resources == nil {
		return
	}
	near := env.Resources.GetNearby(e.Position.X, e.Position.Z, consumeRange, e.PermittedResourceTypes())
	if len(near) == 0 {
		return
	}
	n := near[0]
	taken := env.Resources.Consume(n.ID, resourceBite)
	if taken <= 0 {
		return
	}

	switch n.Type {
	case resource.TypeFood:
		e.Needs = e.Needs.Satisfy(needs.FieldHunger, taken)
		e.Emotion = e.Emotion.ApplyEvent(emotion.EventFed, 1)
	case resource.TypeWater:
		e.Needs = e.Needs.Satisfy(needs.FieldComfort, taken)
	case resource.TypeEnergy:
		e.Needs = e.Needs.Satisfy(needs.FieldEnergy, taken)
		if e.Kind == KindRobot {
			e.Robot.Recharge(taken)
		}
		e.Emotion = e.Emotion.ApplyEvent(emotion.EventRested, 0.5)
	}

	if e.Activity != nil && e.Activity.TargetResourceID == n.ID {
		// Goal reached; let the cascade pick something new next frame.
		e.Activity = nil
	}
	env.Store.AppendLog(store.LogEntry{
		At:       env.Now,
		EntityID: e.ID,
		Category: "resource",
		Text:     fmt.Sprintf("%s consumed %s", e.Name, n.Type),
	})
}

// observeFeatures records a one-time observation memory for each landmark the
// entity walks within range of.
func (e *Entity) observeFeatures(env Env) {
	for _, f := range env.Features {
		if e.visitedFeatures[f.ID] {
			continue
		}
		if e.Position.DistXZ(f.Position) > observationRange {
			continue
		}
		e.visitedFeatures[f.ID] = true
		env.Store.AddMemory(e.ID, memory.Record{
			Content:  fmt.Sprintf("discovered %s", f.Name),
			Kind:     memory.KindObservation,
			Salience: 0.4,
			At:       env.Now,
		})
	}
}

// updateThinking runs the personality-staggered AI thinking cycle. At most one
// request is in flight per entity; the correlation id discards stale replies.
func (e *Entity) updateThinking(dt float64, env Env) {
	if !e.ThoughtExpires.IsZero() && env.Now.After(e.ThoughtExpires) {
		e.CurrentThought = ""
		e.ThoughtExpires = time.Time{}
	}

	// Safety valve: a response should always come back, but a wedged pending
	// id must not block thinking forever.
	if e.pendingRequestID != "" && env.Now.Sub(e.pendingSince) > llm.RequestTimeout+2*time.Second {
		slog.Warn("clearing stale llm request", "entity", e.Name, "request_id", e.pendingRequestID)
		e.pendingRequestID = ""
	}

	e.sinceThink += dt
	if e.sinceThink < e.thinkInterval {
		return
	}
	e.sinceThink = 0

	if env.Worker == nil || !env.AIEnabled || e.pendingRequestID != "" || e.InDialogue {
		return
	}

	ok := env.Worker.Submit(llm.Request{
		ID:       e.newCorrelationID(env.Now),
		EntityID: e.ID,
		Kind:     llm.KindThought,
		Context:  e.thoughtContext(env),
	})
	if !ok {
		e.pendingRequestID = ""
	}
}

func (e *Entity) thoughtContext(env Env) llm.ThoughtContext {
	species := "critter"
	if e.Kind == KindRobot {
		species = "robot"
	}
	var nearby []string
	for _, nb := range e.nearestNeighbors(env, 3, visionRange) {
		nearby = append(nearby, fmt.Sprintf("%s (%.1f units away)", nb.Name, nb.Distance))
	}
	var relatedIDs []string
	for _, nb := range env.Nearby {
		relatedIDs = append(relatedIDs, nb.ID)
	}
	mems := memory.SelectRelevant(env.Store.Memories(e.ID), relatedIDs, 5)

	return llm.ThoughtContext{
		Name:        e.Name,
		Species:     species,
		Personality: e.PersonalityName(),
		Position:    fmt.Sprintf("x=%.1f z=%.1f", e.Position.X, e.Position.Z),
		TimeOfDay:   describeTimeOfDay(env.TimeOfDay),
		Weather:     env.Weather,
		Nearby:      nearby,
		MoodTags:    e.Emotion.ToDialogueContextTags(),
		NeedsState:  e.Needs.ToDialogueContext(),
		Memories:    memory.ToPromptContext(mems),
	}
}

func (e *Entity) nearestNeighbors(env Env, limit int, within float64) []Neighbor {
	var out []Neighbor
	for _, nb := range env.Nearby {
		if nb.Distance > within {
			break
		}
		out = append(out, nb)
		if len(out) == limit {
			break
		}
	}
	return out
}

func describeTimeOfDay(hour float64) string {
	switch {
	case hour < 5:
		return "deep night"
	case hour < 8:
		return "early morning"
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	case hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// HandleResponse routes a drained worker response into the entity. Responses
// whose correlation id does not match the pending one are stale and dropped.
func (e *Entity) HandleResponse(resp llm.Response, env Env) {
	if resp.ID != e.pendingRequestID {
		slog.Debug("discarding stale llm response", "entity", e.Name, "response_id", resp.ID)
		return
	}
	e.pendingRequestID = ""

	switch resp.Kind {
	case llm.KindThought:
		e.handleThoughtResponse(resp, env)
	case llm.KindReply:
		e.handleReplyResponse(resp, env)
	}
}

func (e *Entity) handleThoughtResponse(resp llm.Response, env Env) {
	if resp.Err != nil {
		return
	}
	e.CurrentThought = resp.Thought.Text
	e.ThoughtExpires = env.Now.Add(thoughtDisplay)

	env.Store.AddMemory(e.ID, memory.Record{
		Content:  fmt.Sprintf("thought: %s", resp.Thought.Text),
		Kind:     memory.KindThought,
		Salience: 0.2,
		At:       env.Now,
	})
	if a, ok := activity.Valid(resp.Thought.Action); ok {
		e.aiIntent = a
	}
	env.Store.AppendLog(store.LogEntry{
		At:       env.Now,
		EntityID: e.ID,
		Category: "thought",
		Text:     fmt.Sprintf("%s: %s", e.Name, resp.Thought.Text),
	})
}
