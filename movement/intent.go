package movement

import (
	"maps"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Intent is one agent's movement wish for the current tick. At most one
// exists per agent; it is discarded when the tick resolves.
type Intent struct {
	AgentID     string
	Dest        model.Position
	Range       int
	Priority    int
	Tag         Tag
	Order       int    // insertion order, the first tie-break
	OriginZone  string // zone the agent stood in when the intent was first queued
	TargetID    string // optional; a vanished target invalidates the intent
	Flee        bool
	IgnoreUnits bool
	ReusePath   int
	Costs       map[string]int
	Shared      bool // destination may be shared with other agents this tick
	CreatedTick int
}

func (i *Intent) moveOptions() world.MoveOptions {
	return world.MoveOptions{
		Range:       i.Range,
		ReusePath:   i.ReusePath,
		IgnoreUnits: i.IgnoreUnits,
		Flee:        i.Flee,
		Costs:       maps.Clone(i.Costs),
	}
}

// Destination is where a request wants the agent to go: a fixed tile or an
// entity whose current tile is looked up when the request is made.
type Destination struct {
	pos    model.Position
	entity string
}

func To(pos model.Position) Destination { return Destination{pos: pos} }

func ToEntity(id string) Destination { return Destination{entity: id} }

func (d Destination) resolve(dir world.Directory) (model.Position, bool) {
	if d.entity != "" {
		if dir == nil {
			return model.Position{}, false
		}
		pos, ok := dir.Locate(d.entity)
		if !ok || !pos.Valid() {
			return model.Position{}, false
		}
		return pos, true
	}
	return d.pos, d.pos.Valid()
}

// Option tunes a single request.
type Option func(*request)

type request struct {
	priority    *int
	tag         Tag
	rng         *int
	targetID    string
	flee        bool
	ignoreUnits bool
	reusePath   int
	costs       map[string]int
	shared      bool
}

// WithPriority sets the priority explicitly, overriding any tag.
func WithPriority(p int) Option { return func(r *request) { r.priority = &p } }

// WithTag picks the priority from the configured tag table.
func WithTag(t Tag) Option { return func(r *request) { r.tag = t } }

// WithRange sets how close to the destination counts as arrived.
func WithRange(n int) Option {
	return func(r *request) {
		if n < 0 {
			n = 0
		}
		r.rng = &n
	}
}

// WithTarget ties the intent to an entity; if that entity disappears while
// its zone is in vision the intent is dropped.
func WithTarget(id string) Option { return func(r *request) { r.targetID = id } }

// WithFlee asks the pathing engine to move away from the destination until
// the range is reached.
func WithFlee() Option { return func(r *request) { r.flee = true } }

func WithIgnoreUnits() Option { return func(r *request) { r.ignoreUnits = true } }

// WithReusePath lets the pathing engine reuse a cached path for n ticks.
func WithReusePath(n int) Option { return func(r *request) { r.reusePath = n } }

// WithCosts overrides terrain costs by terrain name.
func WithCosts(costs map[string]int) Option {
	return func(r *request) { r.costs = maps.Clone(costs) }
}

// Shared marks the destination as a gathering point. Shared intents neither
// claim their tile nor yield to a claim on it.
func Shared() Option { return func(r *request) { r.shared = true } }
