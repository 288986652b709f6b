// Dialogue gating. Incoming lines are consumed from the store mailbox and
// answered; proactive initiation is throttled by pairwise cooldowns, a global
// busy lock (one initiated conversation world-wide), affinity, and curiosity.
// A failsafe force-resets any conversation stuck past its deadline so a lost
// reply can never freeze an entity.
package entity

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/critterworld/internal/activity"
	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/llm"
	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/relationship"
	"github.com/talgya/critterworld/internal/store"
)

const (
	dialogueFailsafe   = 10 * time.Second // hard reset for stuck conversations
	lockWindDown       = 2 * time.Second  // lock lingers briefly after the last line
	pairCooldown       = 45 * time.Second // per-pair gap between conversations
	robotReplyCooldown = 8 * time.Second  // gap between robot-prompted replies

	maxReplyRounds   = 3 // lines this entity speaks per conversation
	maxQuarrelRounds = 2

	// Per-tick initiation chance before affinity/curiosity multipliers; at
	// ~20 updates/sec this works out to a few attempts per minute.
	baseInitiateChance = 0.002

	affinityPerChat    = 0.05
	affinityPerQuarrel = -0.05
)

func (e *Entity) updateDialogue(env Env) {
	now := env.Now

	// Failsafe: a conversation that outlives its deadline is force-reset.
	if e.InDialogue && now.Sub(e.dialogueStarted) > dialogueFailsafe {
		slog.Warn("dialogue failsafe triggered", "entity", e.Name, "with", e.DialogueWith)
		e.endDialogue(env)
	}

	// Deferred lock release after the conversation wound down.
	if e.holdsGlobalLock && !e.lockReleaseAt.IsZero() && now.After(e.lockReleaseAt) {
		env.Store.ReleaseDialogueLock()
		e.holdsGlobalLock = false
		e.lockReleaseAt = time.Time{}
	}

	if d, ok := env.Store.TakeDialogueFor(e.ID); ok {
		e.receiveLine(d, env)
		return
	}

	e.maybeInitiate(env)
}

// receiveLine reacts to a spoken line directed at this entity: emotional and
// relational effects always land, and a reply is generated when the turn
// budget and cooldowns allow.
func (e *Entity) receiveLine(d store.Dialogue, env Env) {
	fromRobot := d.Speaker == env.RobotID
	hostile := e.dialogueQuarrel || relationship.ShouldAvoid(env.Relationships.Affinity(e.ID, d.Speaker))

	switch {
	case fromRobot:
		if env.Now.Before(e.replyCooldownAt) {
			return
		}
		e.Emotion = e.Emotion.ApplyEvent(emotion.EventRobotChat, 1)
		env.Store.AdjustAffinity(e.ID, d.Speaker, affinityPerChat/2)
		e.replyCooldownAt = env.Now.Add(robotReplyCooldown)
	case hostile:
		e.dialogueQuarrel = true
		e.Emotion = e.Emotion.ApplyEvent(emotion.EventQuarrel, 1)
		env.Store.AdjustAffinity(e.ID, d.Speaker, affinityPerQuarrel)
	default:
		e.Emotion = e.Emotion.ApplyEvent(emotion.EventFriendlyChat, 1)
		env.Store.AdjustAffinity(e.ID, d.Speaker, affinityPerChat)
		e.Needs = e.Needs.Satisfy(needs.FieldSocial, 0.1)
	}

	env.Store.AddMemory(e.ID, memory.Record{
		Content:    fmt.Sprintf("%s said: %s", speakerName(d.Speaker, env), d.Text),
		Kind:       memory.KindDialogue,
		RelatedIDs: []string{d.Speaker},
		Salience:   0.5,
		At:         env.Now,
	})

	if !e.InDialogue {
		e.beginDialogue(d.Speaker, env)
	}

	roundCap := maxReplyRounds
	if e.dialogueQuarrel {
		roundCap = maxQuarrelRounds
	}
	if e.dialogueRounds >= roundCap || env.Worker == nil || !env.AIEnabled || e.pendingRequestID != "" {
		e.endDialogue(env)
		return
	}

	ok := env.Worker.Submit(llm.Request{
		ID:       e.newCorrelationID(env.Now),
		EntityID: e.ID,
		Kind:     llm.KindReply,
		System:   e.personaSystem(env),
		Prompt:   fmt.Sprintf("%s says to you: %q\nReply in character with one short line.", speakerName(d.Speaker, env), d.Text),
	})
	if !ok {
		e.pendingRequestID = ""
		e.endDialogue(env)
	}
}

// maybeInitiate rolls for proactive conversation with a nearby acquaintance.
// Exactly one initiated conversation may run world-wide (the global lock); the
// lock is released on every exit path, including submit failure.
func (e *Entity) maybeInitiate(env Env) {
	if e.InDialogue || e.pendingRequestID != "" || env.Worker == nil || !env.AIEnabled {
		return
	}
	if e.Activity != nil && e.Activity.Current == activity.ActivityFlee {
		return
	}
	if env.Store.DialogueBusy() {
		return
	}

	for _, nb := range env.Nearby {
		if nb.Distance > visionRange {
			break
		}
		if until, ok := e.pairCooldowns[nb.ID]; ok && env.Now.Before(until) {
			continue
		}
		aff := env.Relationships.Affinity(e.ID, nb.ID)
		if relationship.ShouldAvoid(aff) {
			continue
		}

		p := baseInitiateChance *
			relationship.DialogueProbabilityMultiplier(aff) *
			(1 + e.Emotion.Curiosity*0.5)
		if e.rng.Float64() >= p {
			continue
		}

		if !env.Store.TryAcquireDialogueLock() {
			return
		}
		e.holdsGlobalLock = true
		e.pairCooldowns[nb.ID] = env.Now.Add(pairCooldown)
		e.beginDialogue(nb.ID, env)

		ok := env.Worker.Submit(llm.Request{
			ID:       e.newCorrelationID(env.Now),
			EntityID: e.ID,
			Kind:     llm.KindReply,
			System:   e.personaSystem(env),
			Prompt:   fmt.Sprintf("You walk up to %s. Open a conversation with one short line in character.", nb.Name),
		})
		if !ok {
			e.pendingRequestID = ""
			e.endDialogue(env)
		}
		return
	}
}

// handleReplyResponse posts a generated line to the conversation partner. On
// failure the conversation winds down; the response itself already cleared the
// pending flag, so nothing can stay stuck.
func (e *Entity) handleReplyResponse(resp llm.Response, env Env) {
	if !e.InDialogue || resp.Err != nil {
		e.endDialogue(env)
		return
	}

	e.dialogueRounds++
	d := store.Dialogue{
		ID:      resp.ID,
		Speaker: e.ID,
		Target:  e.DialogueWith,
		Text:    resp.Text,
		At:      env.Now,
	}
	env.Store.PostDialogue(d)
	if env.DialogueSeen != nil {
		env.DialogueSeen(d)
	}
	env.Store.AppendLog(store.LogEntry{
		At:       env.Now,
		EntityID: e.ID,
		Category: "dialogue",
		Text:     fmt.Sprintf("%s: %s", e.Name, resp.Text),
	})
	env.Store.AddMemory(e.ID, memory.Record{
		Content:    fmt.Sprintf("told %s: %s", speakerName(e.DialogueWith, env), resp.Text),
		Kind:       memory.KindDialogue,
		RelatedIDs: []string{e.DialogueWith},
		Salience:   0.4,
		At:         env.Now,
	})

	roundCap := maxReplyRounds
	if e.dialogueQuarrel {
		roundCap = maxQuarrelRounds
	}
	if e.dialogueRounds >= roundCap {
		e.endDialogue(env)
	}
}

// beginDialogue freezes movement behind the dialogue activity.
func (e *Entity) beginDialogue(withID string, env Env) {
	e.InDialogue = true
	e.DialogueWith = withID
	e.dialogueStarted = env.Now
	e.dialogueRounds = 0
	e.dialogueQuarrel = relationship.ShouldAvoid(env.Relationships.Affinity(e.ID, withID))
	e.Activity = &activity.State{
		Current:        activity.ActivityDialogue,
		StartedAt:      env.Now,
		Duration:       dialogueFailsafe,
		TargetEntityID: withID,
	}
}

// endDialogue clears conversation state and schedules the global lock release
// so the partner's last line can still land before another pair may start.
func (e *Entity) endDialogue(env Env) {
	e.InDialogue = false
	e.DialogueWith = ""
	e.dialogueRounds = 0
	e.dialogueQuarrel = false
	if e.Activity != nil && e.Activity.Current == activity.ActivityDialogue {
		e.Activity = nil
	}
	if e.holdsGlobalLock {
		e.lockReleaseAt = env.Now.Add(lockWindDown)
	}
}

// releaseDialogueOnDeath unwinds conversation state when the entity dies.
// Dead entities skip updateDialogue, so a scheduled wind-down would never run;
// the global lock has to be released right here or it leaks for good.
func (e *Entity) releaseDialogueOnDeath(env Env) {
	e.InDialogue = false
	e.DialogueWith = ""
	e.dialogueRounds = 0
	e.dialogueQuarrel = false
	if e.holdsGlobalLock {
		env.Store.ReleaseDialogueLock()
		e.holdsGlobalLock = false
		e.lockReleaseAt = time.Time{}
	}
}

// personaSystem is the in-character system prompt for dialogue replies.
func (e *Entity) personaSystem(env Env) string {
	species := "small critter"
	if e.Kind == KindRobot {
		species = "caretaker robot"
	}
	return fmt.Sprintf(
		"You are %s, a %s in a sandbox world. Your personality is %s and right now you feel %s, %s. Speak in one short casual line, always in character.",
		e.Name, species, e.PersonalityName(), e.Emotion.Dominant(), e.Needs.ToDialogueContext(),
	)
}

func speakerName(id string, env Env) string {
	for _, nb := range env.Nearby {
		if nb.ID == id {
			return nb.Name
		}
	}
	if id == env.RobotID {
		return "the robot"
	}
	return "someone"
}
