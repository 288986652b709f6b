// Package weather supplies the sky state for the sandbox: a procedural
// generator drives the simulation by default, and an optional OpenWeatherMap
// client can pin the sim weather to a real location instead.
package weather

import (
	"math/rand"
)

// Condition is the sim-level sky state.
type Condition string

const (
	Clear  Condition = "clear"
	Cloudy Condition = "cloudy"
	Rain   Condition = "rain"
	Storm  Condition = "storm"
)

// Raining reports whether the condition wets the ground (flee-rule input).
func (c Condition) Raining() bool {
	return c == Rain || c == Storm
}

// transition rows: probability of moving to each condition when a change
// rolls. Rain clusters (rain tends to stay rain or worsen); storms are rare
// and short-lived.
var transitions = map[Condition][]struct {
	to Condition
	p  float64
}{
	Clear:  {{Clear, 0.6}, {Cloudy, 0.35}, {Rain, 0.05}},
	Cloudy: {{Clear, 0.35}, {Cloudy, 0.4}, {Rain, 0.22}, {Storm, 0.03}},
	Rain:   {{Cloudy, 0.35}, {Rain, 0.5}, {Storm, 0.1}, {Clear, 0.05}},
	Storm:  {{Rain, 0.5}, {Cloudy, 0.35}, {Storm, 0.15}},
}

// changeInterval is how often the procedural sky re-rolls.
const changeInterval = 90.0 // seconds

// Generator is the procedural weather driver.
type Generator struct {
	rng     *rand.Rand
	current Condition
	elapsed float64
}

// NewGenerator seeds a procedural sky starting clear.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		current: Clear,
	}
}

// Advance moves the sky forward by dt seconds and returns the condition plus
// whether it changed this call.
func (g *Generator) Advance(dt float64) (Condition, bool) {
	g.elapsed += dt
	if g.elapsed < changeInterval {
		return g.current, false
	}
	g.elapsed = 0

	rows := transitions[g.current]
	roll := g.rng.Float64()
	acc := 0.0
	next := g.current
	for _, r := range rows {
		acc += r.p
		if roll < acc {
			next = r.to
			break
		}
	}
	changed := next != g.current
	g.current = next
	return g.current, changed
}

// Current returns the sky state without advancing it.
func (g *Generator) Current() Condition {
	return g.current
}

// Source abstracts where weather comes from so the world loop can run either
// the procedural generator or the live API bridge.
type Source interface {
	// Poll returns the condition and whether it changed since the last poll.
	Poll(dt float64) (Condition, bool)
}

// proceduralSource adapts Generator to Source.
type proceduralSource struct{ g *Generator }

// NewProceduralSource wraps a seeded generator.
func NewProceduralSource(seed int64) Source {
	return &proceduralSource{g: NewGenerator(seed)}
}

func (p *proceduralSource) Poll(dt float64) (Condition, bool) {
	return p.g.Advance(dt)
}

// liveSource bridges the OpenWeatherMap client. API failures fall back to the
// last known condition, so a network blip never flickers the sky.
type liveSource struct {
	client  *Client
	current Condition
	elapsed float64
}

// liveRefresh is how often the live bridge re-checks the API (the client's
// own cache absorbs most of these).
const liveRefresh = 60.0 // seconds

// NewLiveSource wraps a weather API client. Returns nil if client is nil.
func NewLiveSource(client *Client) Source {
	if client == nil {
		return nil
	}
	return &liveSource{client: client, current: Clear}
}

func (l *liveSource) Poll(dt float64) (Condition, bool) {
	l.elapsed += dt
	if l.elapsed < liveRefresh && l.current != "" {
		return l.current, false
	}
	l.elapsed = 0

	cond, err := l.client.Fetch()
	if err != nil {
		return l.current, false
	}
	next := mapConditions(cond)
	changed := next != l.current
	l.current = next
	return l.current, changed
}

// mapConditions folds an API report into the sim's four-state sky.
func mapConditions(c *Conditions) Condition {
	switch {
	case c.IsStorm:
		return Storm
	case c.IsRain || c.IsSnow:
		return Rain
	case c.Cloudy:
		return Cloudy
	default:
		return Clear
	}
}
