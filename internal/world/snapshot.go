// Frame snapshots for the renderer feed: a JSON-ready view of every entity,
// resource node, active dialogue line, and the sky.
package world

import (
	"github.com/talgya/critterworld/internal/activity"
	"github.com/talgya/critterworld/internal/entity"
	"github.com/talgya/critterworld/internal/resource"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/vec"
)

// EntityView is one entity as the renderer sees it.
type EntityView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Position   vec.Vec3 `json:"position"`
	Rotation   float64  `json:"rotation"`
	Color      string   `json:"color"`
	Opacity    float64  `json:"opacity"`
	Activity   string   `json:"activity"`
	Mood       string   `json:"mood"`
	Thought    string   `json:"thought,omitempty"`
	InDialogue bool     `json:"in_dialogue"`
	Health     float64  `json:"health"`
	Generation int      `json:"generation"`
}

// Snapshot is one full frame for the feed.
type Snapshot struct {
	Environment store.Environment `json:"environment"`
	Entities    []EntityView      `json:"entities"`
	Resources   []resource.Node   `json:"resources"`
	Dialogues   []store.Dialogue  `json:"dialogues"`
	Log         []store.LogEntry  `json:"log"`
}

// Snapshot builds the current frame view. Safe to call from any goroutine;
// it takes the world mutex and never overlaps a running Tick.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Environment: w.store.Environment(),
		Resources:   w.resources.Snapshot(),
		Dialogues:   w.store.ActiveDialogues(),
		Log:         w.store.RecentLog(30),
	}
	for _, e := range w.entities {
		kind := "critter"
		health := e.Life.Health
		if e.Kind == entity.KindRobot {
			kind = "robot"
			health = e.Robot.Durability
		}
		snap.Entities = append(snap.Entities, EntityView{
			ID:         e.ID,
			Name:       e.Name,
			Kind:       kind,
			Position:   e.Position,
			Rotation:   e.Rotation,
			Color:      e.Color(),
			Opacity:    e.Opacity(),
			Activity:   currentActivity(e),
			Mood:       e.Emotion.Dominant(),
			Thought:    e.CurrentThought,
			InDialogue: e.InDialogue,
			Health:     health,
			Generation: e.Life.Generation,
		})
	}
	return snap
}

func currentActivity(e *entity.Entity) string {
	if e.Activity == nil {
		return string(activity.ActivityIdle)
	}
	return string(e.Activity.Current)
}
