// Emotional event table — fixed per-event delta vectors applied on top of the
// current state, scaled by intensity. Unknown events are a no-op.
package emotion

// Event names a thing that happened to a creature.
type Event string

const (
	EventFriendlyChat Event = "friendly_chat"
	EventQuarrel      Event = "quarrel"
	EventCompliment   Event = "compliment"
	EventInsult       Event = "insult"
	EventRobotChat    Event = "robot_chat"

	EventMeetFriend   Event = "meet_friend"
	EventMeetStranger Event = "meet_stranger"
	EventMeetEnemy    Event = "meet_enemy"

	EventRainStart Event = "rain_start"
	EventStorm     Event = "storm"
	EventNightFall Event = "night_fall"
	EventDawn      Event = "dawn"

	EventHungerLow Event = "hunger_low"
	EventEnergyLow Event = "energy_low"
	EventFed       Event = "fed"
	EventRested    Event = "rested"

	EventNewBirth   Event = "new_birth"
	EventEntityDied Event = "entity_died"
)

// eventDeltas is the contract table: each entry is added componentwise
// (scaled by intensity) when the event fires.
var eventDeltas = map[Event]State{
	EventFriendlyChat: {Happiness: 0.15, Curiosity: 0.05, Energy: 0.05},
	EventQuarrel:      {Happiness: -0.2, Fear: 0.1, Anger: 0.3},
	EventCompliment:   {Happiness: 0.2, Anger: -0.1},
	EventInsult:       {Happiness: -0.15, Anger: 0.25, Fear: 0.05},
	EventRobotChat:    {Happiness: 0.1, Curiosity: 0.2},

	EventMeetFriend:   {Happiness: 0.1, Curiosity: 0.05, Fear: -0.05},
	EventMeetStranger: {Curiosity: 0.15, Fear: 0.05},
	EventMeetEnemy:    {Happiness: -0.1, Fear: 0.2, Anger: 0.15},

	EventRainStart: {Happiness: -0.05, Curiosity: 0.05, Fear: 0.05},
	EventStorm:     {Happiness: -0.1, Fear: 0.3, Energy: -0.05},
	EventNightFall: {Fear: 0.1, Energy: -0.1, Curiosity: -0.05},
	EventDawn:      {Happiness: 0.1, Energy: 0.15, Fear: -0.1},

	EventHungerLow: {Happiness: -0.1, Anger: 0.1, Energy: -0.1},
	EventEnergyLow: {Happiness: -0.05, Energy: -0.15, Curiosity: -0.1},
	EventFed:       {Happiness: 0.15, Energy: 0.1, Anger: -0.05},
	EventRested:    {Happiness: 0.05, Energy: 0.25, Fear: -0.05},

	EventNewBirth:   {Happiness: 0.25, Curiosity: 0.15, Energy: 0.05},
	EventEntityDied: {Happiness: -0.3, Fear: 0.25, Curiosity: -0.1},
}

// ApplyEvent adds the named event's delta vector, scaled by intensity, and
// clamps every field back into range. Unknown events leave the state untouched.
func (s State) ApplyEvent(ev Event, intensity float64) State {
	d, ok := eventDeltas[ev]
	if !ok {
		return s
	}
	s.Happiness += d.Happiness * intensity
	s.Curiosity += d.Curiosity * intensity
	s.Fear += d.Fear * intensity
	s.Anger += d.Anger * intensity
	s.Energy += d.Energy * intensity
	return s.clamped()
}

// KnownEvent reports whether ev has an entry in the delta table.
func KnownEvent(ev Event) bool {
	_, ok := eventDeltas[ev]
	return ok
}
