// Package resource manages consumable world resource nodes (food plants,
// charge pads, water) with serialized capacity decrements, so two entities
// grazing the same bush in one tick cannot double-spend it.
package resource

import (
	"sort"
	"sync"

	"github.com/talgya/critterworld/internal/vec"
)

// Type classifies what a node replenishes.
type Type string

const (
	TypeFood   Type = "food"
	TypeEnergy Type = "energy"
	TypeWater  Type = "water"
)

// Node is one consumable resource in the world.
type Node struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Position vec.Vec3 `json:"position"`
	Capacity float64  `json:"capacity"`
	MaxCap   float64  `json:"max_capacity"`
}

// Nearby is a node paired with its distance from a query point.
type Nearby struct {
	Node
	Distance float64 `json:"distance"`
}

// regenPerSecond is the trickle rate depleted nodes recover at.
const regenPerSecond = 0.02

// Registry holds all nodes behind one mutex.
type Registry struct {
	mu    sync.Mutex
	nodes map[string]*Node
}

// NewRegistry creates a registry from initial nodes.
func NewRegistry(nodes []Node) *Registry {
	r := &Registry{nodes: make(map[string]*Node, len(nodes))}
	for i := range nodes {
		n := nodes[i]
		if n.MaxCap == 0 {
			n.MaxCap = n.Capacity
		}
		r.nodes[n.ID] = &n
	}
	return r
}

// GetNearby returns nodes of the requested types within radius of (x,z) that
// still hold capacity, sorted by distance ascending.
func (r *Registry) GetNearby(x, z, radius float64, types []Type) []Nearby {
	wanted := make(map[Type]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	at := vec.Vec3{X: x, Z: z}

	r.mu.Lock()
	var out []Nearby
	for _, n := range r.nodes {
		if len(wanted) > 0 && !wanted[n.Type] {
			continue
		}
		if n.Capacity <= 0 {
			continue
		}
		d := n.Position.DistXZ(at)
		if d > radius {
			continue
		}
		out = append(out, Nearby{Node: *n, Distance: d})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Consume atomically decrements a node's capacity and returns the amount
// actually taken, which may be less than requested when the node runs dry.
func (r *Registry) Consume(id string, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok || n.Capacity <= 0 {
		return 0
	}
	taken := amount
	if taken > n.Capacity {
		taken = n.Capacity
	}
	n.Capacity -= taken
	return taken
}

// Regenerate trickles capacity back into every node over dt seconds.
func (r *Registry) Regenerate(dt float64) {
	r.mu.Lock()
	for _, n := range r.nodes {
		if n.Capacity < n.MaxCap {
			n.Capacity += regenPerSecond * dt
			if n.Capacity > n.MaxCap {
				n.Capacity = n.MaxCap
			}
		}
	}
	r.mu.Unlock()
}

// Snapshot returns a copy of all nodes for the renderer feed.
func (r *Registry) Snapshot() []Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, *n)
	}
	return out
}
