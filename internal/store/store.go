// Package store is the process-wide shared state service: entity positions
// and model snapshots, the relationship map, memory streams, the activity
// log, active dialogues and the dialogue-busy lock, and the current
// time/weather. Everything the renderers and entities share flows through
// here under one mutex, so each mutation applies a delta to the latest
// snapshot (last-writer-wins per key).
package store

import (
	"sync"
	"time"

	"github.com/talgya/critterworld/internal/emotion"
	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/needs"
	"github.com/talgya/critterworld/internal/relationship"
	"github.com/talgya/critterworld/internal/vec"
)

// Environment is the world-level context every entity reads each tick.
type Environment struct {
	TimeOfDay float64 `json:"time_of_day"` // hours, 0..24
	Day       int     `json:"day"`
	Season    string  `json:"season"`
	Weather   string  `json:"weather"`
	Raining   bool    `json:"raining"`
}

// Dialogue is one active spoken line, directed speaker -> target.
type Dialogue struct {
	ID      string    `json:"id"`
	Speaker string    `json:"speaker"`
	Target  string    `json:"target"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// LogEntry is one line of the world activity log.
type LogEntry struct {
	At       time.Time `json:"at"`
	EntityID string    `json:"entity_id,omitempty"`
	Category string    `json:"category"`
	Text     string    `json:"text"`
}

const logCapacity = 500

// Store holds all shared simulation state.
type Store struct {
	mu sync.RWMutex

	positions map[string]vec.Vec3
	emotions  map[string]emotion.State
	needsMap  map[string]needs.State
	rel       relationship.Map
	memories  map[string][]memory.Record
	log       []LogEntry

	dialogues    map[string]Dialogue // keyed by target id
	dialogueBusy bool

	env Environment

	subs []chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		positions: make(map[string]vec.Vec3),
		emotions:  make(map[string]emotion.State),
		needsMap:  make(map[string]needs.State),
		rel:       relationship.New(),
		memories:  make(map[string][]memory.Record),
		dialogues: make(map[string]Dialogue),
	}
}

// ── Positions ─────────────────────────────────────────────────────────

// SetPosition records an entity's position.
func (s *Store) SetPosition(id string, p vec.Vec3) {
	s.mu.Lock()
	s.positions[id] = p
	s.mu.Unlock()
}

// Position returns an entity's last known position.
func (s *Store) Position(id string) (vec.Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	return p, ok
}

// Positions returns a snapshot copy of all tracked positions.
func (s *Store) Positions() map[string]vec.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]vec.Vec3, len(s.positions))
	for k, v := range s.positions {
		out[k] = v
	}
	return out
}

// Remove clears all per-entity state for a removed entity. Relationship
// entries are kept; a dead friend is still remembered.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.positions, id)
	delete(s.emotions, id)
	delete(s.needsMap, id)
	delete(s.dialogues, id)
	s.mu.Unlock()
}

// ── Model snapshots ───────────────────────────────────────────────────

// SetEmotion records an entity's emotion snapshot.
func (s *Store) SetEmotion(id string, e emotion.State) {
	s.mu.Lock()
	s.emotions[id] = e
	s.mu.Unlock()
}

// Emotion returns an entity's emotion snapshot.
func (s *Store) Emotion(id string) (emotion.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.emotions[id]
	return e, ok
}

// SetNeeds records an entity's needs snapshot.
func (s *Store) SetNeeds(id string, n needs.State) {
	s.mu.Lock()
	s.needsMap[id] = n
	s.mu.Unlock()
}

// Needs returns an entity's needs snapshot.
func (s *Store) Needs(id string) (needs.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.needsMap[id]
	return n, ok
}

// ── Relationships ─────────────────────────────────────────────────────

// AdjustAffinity applies a clamped delta to the pair's affinity. All writers
// go through here, giving the map single-writer discipline.
func (s *Store) AdjustAffinity(a, b string, delta float64) {
	s.mu.Lock()
	s.rel = s.rel.Adjust(a, b, delta)
	s.mu.Unlock()
}

// Affinity reads the pair's affinity, 0 when unknown.
func (s *Store) Affinity(a, b string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rel.Affinity(a, b)
}

// Relationships returns a snapshot clone of the whole map.
func (s *Store) Relationships() relationship.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rel.Clone()
}

// ── Memories ──────────────────────────────────────────────────────────

// AddMemory appends a record to an entity's stream.
func (s *Store) AddMemory(id string, r memory.Record) {
	s.mu.Lock()
	s.memories[id] = memory.Append(s.memories[id], r)
	s.mu.Unlock()
}

// Memories returns a snapshot copy of an entity's stream.
func (s *Store) Memories(id string) []memory.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.memories[id]
	out := make([]memory.Record, len(src))
	copy(out, src)
	return out
}

// ── Activity log ──────────────────────────────────────────────────────

// AppendLog adds a line to the world activity log (bounded ring).
func (s *Store) AppendLog(e LogEntry) {
	s.mu.Lock()
	s.log = append(s.log, e)
	if len(s.log) > logCapacity {
		s.log = s.log[len(s.log)-logCapacity:]
	}
	s.mu.Unlock()
}

// RecentLog returns up to limit most recent log entries, oldest first.
func (s *Store) RecentLog(limit int) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if len(s.log) > limit {
		start = len(s.log) - limit
	}
	out := make([]LogEntry, len(s.log)-start)
	copy(out, s.log[start:])
	return out
}

// ── Dialogues ─────────────────────────────────────────────────────────

// PostDialogue publishes a directed line, replacing any line already pending
// for the same target.
func (s *Store) PostDialogue(d Dialogue) {
	s.mu.Lock()
	s.dialogues[d.Target] = d
	s.mu.Unlock()
}

// TakeDialogueFor consumes the pending line directed at target, if any.
func (s *Store) TakeDialogueFor(target string) (Dialogue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dialogues[target]
	if ok {
		delete(s.dialogues, target)
	}
	return d, ok
}

// ActiveDialogues returns a snapshot of all pending lines.
func (s *Store) ActiveDialogues() []Dialogue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Dialogue, 0, len(s.dialogues))
	for _, d := range s.dialogues {
		out = append(out, d)
	}
	return out
}

// TryAcquireDialogueLock claims the process-wide busy flag guarding proactive
// dialogue initiation. Exactly one initiated conversation may run at a time;
// reactive replies are not subject to the lock.
func (s *Store) TryAcquireDialogueLock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialogueBusy {
		return false
	}
	s.dialogueBusy = true
	return true
}

// ReleaseDialogueLock clears the busy flag. Safe to call when not held.
func (s *Store) ReleaseDialogueLock() {
	s.mu.Lock()
	s.dialogueBusy = false
	s.mu.Unlock()
}

// DialogueBusy reports the busy flag.
func (s *Store) DialogueBusy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialogueBusy
}

// ── Environment ───────────────────────────────────────────────────────

// SetEnvironment publishes the current world time/weather.
func (s *Store) SetEnvironment(env Environment) {
	s.mu.Lock()
	s.env = env
	s.mu.Unlock()
}

// Environment returns the current world time/weather.
func (s *Store) Environment() Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

// ── Pub/sub ───────────────────────────────────────────────────────────

// Subscribe returns a channel that receives a signal after each committed
// tick. Slow subscribers drop signals rather than block the simulation.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Commit signals all subscribers that a tick's worth of writes is complete.
func (s *Store) Commit() {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
