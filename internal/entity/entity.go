// Package entity aggregates the four behavioral models (emotion, needs,
// lifecycle, relationships) under one creature and orchestrates them once per
// render tick: decay and sync, lifecycle consequences, resource seeking,
// observation memory, dialogue gating, AI thinking, and movement integration.
package entity

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/critterworld/internal/activity"
	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/lifecycle"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/resource"
	"github.com/talgya/critterworld/internal/vec"
)

// Kind distinguishes the singleton robot from the critter population.
type Kind uint8

const (
	KindRobot Kind = iota
	KindCritter
)

// Cadences and ranges used by the update loop.
const (
	syncInterval      = 1.0  // seconds between store pushes per model
	observationRange  = 8.0  // units within which world features are noticed
	consumeRange      = 1.5  // units within which a resource node is usable
	resourceBite      = 0.3  // capacity taken per consumption event
	visionRange       = 12.0 // units within which dialogue can be initiated
	baseThinkInterval = 20.0 // seconds, staggered per personality
	thoughtDisplay    = 5 * time.Second
)

// Entity is one simulated creature. The robot is a singleton; critters are a
// capped, dynamic population.
type Entity struct {
	ID          string
	Name        string
	Kind        Kind
	Personality emotion.Personality
	BaseColor   string

	Position vec.Vec3
	Velocity vec.Vec3
	Rotation float64
	Home     vec.Vec3

	Emotion emotion.State
	Needs   needs.State
	Life    lifecycle.State     // critters only
	Robot   lifecycle.RobotStatus // robot only

	Activity *activity.State

	// Dialogue state. InDialogue freezes movement; the failsafe clears a
	// stuck flag after dialogueFailsafe.
	InDialogue      bool
	DialogueWith    string
	dialogueRounds  int
	dialogueStarted time.Time
	dialogueQuarrel bool
	holdsGlobalLock bool
	lockReleaseAt   time.Time
	pairCooldowns   map[string]time.Time
	replyCooldownAt time.Time

	// In-flight LLM correlation; responses with any other id are stale.
	pendingRequestID string
	pendingSince     time.Time

	// CurrentThought is the last generated inner monologue, displayed until
	// ThoughtExpires.
	CurrentThought string
	ThoughtExpires time.Time
	aiIntent       activity.Activity

	rng *rand.Rand

	sinceEmotionSync  float64
	sinceNeedsSync    float64
	lastSyncedEmotion emotion.State
	lastSyncedNeeds   needs.State
	emotionSynced     bool
	needsSynced       bool
	lifecycleAcc      float64
	sinceThink        float64
	thinkInterval     float64

	visitedFeatures map[string]bool
	hasMoveTarget   bool
	moveTarget      vec.Vec3
	pausedUntil     time.Time
}

// NewRobot creates the singleton robot entity.
func NewRobot(name string, pos vec.Vec3, seed int64) *Entity {
	e := newEntity(name, KindRobot, emotion.PersonalityInquisitive, pos, seed)
	e.BaseColor = "#9fb4c7"
	e.Robot = lifecycle.NewRobotStatus()
	return e
}

// NewCritter creates a root critter (generation 0).
func NewCritter(name string, p emotion.Personality, baseColor string, pos vec.Vec3, seed int64) *Entity {
	e := newEntity(name, KindCritter, p, pos, seed)
	e.BaseColor = baseColor
	e.Life = lifecycle.New(0)
	return e
}

// SpawnChild creates a critter offspring: generation bumped, color mutated,
// position jittered near the parent, personality re-rolled.
func (parent *Entity) SpawnChild(name string, seed int64) *Entity {
	jitter := vec.Vec3{
		X: parent.rng.Float64()*4 - 2,
		Z: parent.rng.Float64()*4 - 2,
	}
	p := emotion.Personality(1 + parent.rng.Intn(emotion.NumPersonalities))
	child := newEntity(name, KindCritter, p, parent.Position.Add(jitter), seed)
	child.BaseColor = mutateColor(parent.BaseColor, parent.rng)
	child.Life = lifecycle.New(parent.Life.Generation + 1)
	return child
}

func newEntity(name string, kind Kind, p emotion.Personality, pos vec.Vec3, seed int64) *Entity {
	nk := needs.KindCritter
	if kind == KindRobot {
		nk = needs.KindRobot
	}
	return &Entity{
		ID:              uuid.NewString(),
		Name:            name,
		Kind:            kind,
		Personality:     p,
		Position:        pos,
		Home:            pos,
		Emotion:         emotion.New(p),
		Needs:           needs.NewDefault(nk),
		rng:             rand.New(rand.NewSource(seed)),
		pairCooldowns:   make(map[string]time.Time),
		visitedFeatures: make(map[string]bool),
		thinkInterval:   baseThinkInterval + float64(p)*7,
	}
}

// NeedsKind maps the entity kind to its needs drain profile.
func (e *Entity) NeedsKind() needs.Kind {
	if e.Kind == KindRobot {
		return needs.KindRobot
	}
	return needs.KindCritter
}

// PermittedResourceTypes returns the node types this entity may consume.
func (e *Entity) PermittedResourceTypes() []resource.Type {
	if e.Kind == KindRobot {
		return []resource.Type{resource.TypeEnergy}
	}
	return []resource.Type{resource.TypeFood, resource.TypeWater}
}

// Alive reports whether the entity still participates in the simulation.
// The robot never dies.
func (e *Entity) Alive() bool {
	return e.Kind == KindRobot || e.Life.Status != lifecycle.StatusDead
}

// Color returns the current emotion-tinted body color.
func (e *Entity) Color() string {
	return e.Emotion.ToColor(e.BaseColor)
}

// Opacity returns render opacity; fading corpses go transparent.
func (e *Entity) Opacity() float64 {
	if e.Kind == KindRobot {
		return 1
	}
	return e.Life.Opacity()
}

// ApplyEmotionEvent routes a world event into the emotion model.
func (e *Entity) ApplyEmotionEvent(ev emotion.Event, intensity float64) {
	e.Emotion = e.Emotion.ApplyEvent(ev, intensity)
}

// PersonalityName returns the human-readable personality tag for prompts.
func (e *Entity) PersonalityName() string {
	switch e.Personality {
	case emotion.PersonalityCheerful:
		return "cheerful"
	case emotion.PersonalityTimid:
		return "timid"
	case emotion.PersonalityGrumpy:
		return "grumpy"
	case emotion.PersonalityInquisitive:
		return "inquisitive"
	case emotion.PersonalityStoic:
		return "stoic"
	default:
		return "even-tempered"
	}
}

// mutateColor perturbs each channel of a #rrggbb color by up to ±20/255.
func mutateColor(hex string, rng *rand.Rand) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	out := "#"
	for i := 1; i < 7; i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return hex
		}
		nv := int(v) + rng.Intn(41) - 20
		if nv < 0 {
			nv = 0
		}
		if nv > 255 {
			nv = 255
		}
		out += fmt.Sprintf("%02x", nv)
	}
	return out
}

// newCorrelationID stamps an outbound LLM request.
func (e *Entity) newCorrelationID(now time.Time) string {
	id := uuid.NewString()
	e.pendingRequestID = id
	e.pendingSince = now
	return id
}
