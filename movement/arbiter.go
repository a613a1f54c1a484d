// Package movement settles every agent's movement wishes once per tick.
//
// Many callers (squad roles, economy roles, idle holding) each think they own
// an agent's motion. They all go through Request, and a single late
// ResolveAndMove decides who actually moves, in a fixed order.
package movement

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/tick"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

var (
	// ErrInvalidDestination means the destination did not resolve to a tile.
	ErrInvalidDestination = errors.New("movement: invalid destination")
	// ErrNoTick means Request was called before StartTick.
	ErrNoTick = errors.New("movement: tick not started")
	// ErrInvalidAgent means the agent id was empty.
	ErrInvalidAgent = errors.New("movement: empty agent id")
)

// Status is the verdict on a request.
type Status int

const (
	StatusAccepted Status = iota
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision reports what happened to a request. Priority is the priority
// now holding the agent: the request's own when accepted, the winner's when
// rejected, so the caller can yield or escalate.
type Decision struct {
	Status   Status
	Priority int
}

func (d Decision) Accepted() bool { return d.Status == StatusAccepted }

// Reason explains how an intent was settled.
type Reason string

const (
	ReasonMoved       Reason = "moved"
	ReasonGone        Reason = "gone"
	ReasonLocked      Reason = "locked"
	ReasonZoneChanged Reason = "zone-changed"
	ReasonTargetLost  Reason = "target-lost"
	ReasonInRange     Reason = "in-range"
	ReasonClaimed     Reason = "claimed"
	ReasonPathError   Reason = "path-error"
)

// Outcome is the settlement of one intent.
type Outcome struct {
	Intent Intent
	Reason Reason
}

func (o Outcome) Executed() bool { return o.Reason == ReasonMoved }

// Recorder observes arbiter activity. metrics.Recorder satisfies it.
type Recorder interface {
	IntentDecided(ctx context.Context, accepted bool)
	IntentResolved(ctx context.Context, reason string)
}

type nopRecorder struct{}

func (nopRecorder) IntentDecided(context.Context, bool)    {}
func (nopRecorder) IntentResolved(context.Context, string) {}

// Arbiter owns the per-tick intent table. It is not safe for concurrent use;
// a tick runs on one goroutine.
type Arbiter struct {
	cfg     Config
	pathing world.Pathing
	rec     Recorder

	frame   *tick.Frame
	intents map[string]*Intent
	next    int
}

func New(cfg Config, pathing world.Pathing) *Arbiter {
	if cfg.Priorities == nil {
		cfg.Priorities = DefaultConfig().Priorities
	}
	return &Arbiter{
		cfg:     cfg,
		pathing: pathing,
		rec:     nopRecorder{},
		intents: make(map[string]*Intent),
	}
}

// SetRecorder installs r; nil restores the no-op recorder.
func (a *Arbiter) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	a.rec = r
}

// StartTick clears every queued intent and binds the frame for this tick.
func (a *Arbiter) StartTick(f *tick.Frame) {
	a.frame = f
	clear(a.intents)
	a.next = 0
}

// Request queues or updates agentID's intent. A request whose priority is
// lower than the existing intent's is rejected; an equal or higher one
// overwrites it in place, keeping its origin zone and insertion order.
func (a *Arbiter) Request(agentID string, dest Destination, opts ...Option) (Decision, error) {
	if a.frame == nil {
		return Decision{}, ErrNoTick
	}
	if agentID == "" {
		return Decision{}, ErrInvalidAgent
	}
	pos, ok := dest.resolve(a.frame.World)
	if !ok {
		return Decision{}, ErrInvalidDestination
	}

	var r request
	for _, opt := range opts {
		opt(&r)
	}
	priority := a.cfg.FloorPriority
	switch {
	case r.priority != nil:
		priority = *r.priority
	case r.tag != "":
		priority = a.cfg.PriorityFor(r.tag)
	}
	rng := a.cfg.DefaultRange
	if r.rng != nil {
		rng = *r.rng
	}
	targetID := r.targetID
	if targetID == "" {
		targetID = dest.entity
	}

	ctx := a.frame.Ctx
	existing, ok := a.intents[agentID]
	if ok && priority < existing.Priority {
		a.rec.IntentDecided(ctx, false)
		slog.Debug("movement request rejected", "agent", agentID, "priority", priority, "holding", existing.Priority)
		return Decision{Status: StatusRejected, Priority: existing.Priority}, nil
	}

	if !ok {
		origin := ""
		if u, found := a.frame.World.Unit(agentID); found {
			origin = u.Pos.Zone
		}
		existing = &Intent{
			AgentID:     agentID,
			Order:       a.next,
			OriginZone:  origin,
			CreatedTick: a.frame.Tick,
		}
		a.next++
		a.intents[agentID] = existing
	}

	existing.Dest = pos
	existing.Range = rng
	existing.Priority = priority
	existing.Tag = r.tag
	existing.TargetID = targetID
	existing.Flee = r.flee
	existing.IgnoreUnits = r.ignoreUnits
	existing.ReusePath = r.reusePath
	existing.Costs = r.costs
	existing.Shared = r.shared

	a.rec.IntentDecided(ctx, true)
	return Decision{Status: StatusAccepted, Priority: priority}, nil
}

// Intent returns a copy of agentID's queued intent.
func (a *Arbiter) Intent(agentID string) (Intent, bool) {
	in, ok := a.intents[agentID]
	if !ok {
		return Intent{}, false
	}
	return *in, true
}

// Len is the number of queued intents.
func (a *Arbiter) Len() int { return len(a.intents) }

// Ordered returns the queued intents in resolution order: priority
// descending, then insertion order, then agent id.
func (a *Arbiter) Ordered() []Intent {
	out := make([]Intent, 0, len(a.intents))
	for _, in := range a.intents {
		out = append(out, *in)
	}
	slices.SortFunc(out, compareIntents)
	return out
}

func compareIntents(x, y Intent) int {
	if x.Priority != y.Priority {
		if x.Priority > y.Priority {
			return -1
		}
		return 1
	}
	if x.Order != y.Order {
		if x.Order < y.Order {
			return -1
		}
		return 1
	}
	return strings.Compare(x.AgentID, y.AgentID)
}

// ResolveAndMove settles every queued intent in order and hands the
// survivors to the pathing engine. Failures skip only the intent that hit
// them. The table is empty afterwards; the returned outcomes are the only
// record of what happened.
func (a *Arbiter) ResolveAndMove() []Outcome {
	if a.frame == nil {
		return nil
	}
	ordered := a.Ordered()
	outcomes := make([]Outcome, 0, len(ordered))
	claimed := make(map[string]string)
	ctx := a.frame.Ctx

	for _, in := range ordered {
		reason := a.settle(ctx, in, claimed)
		outcomes = append(outcomes, Outcome{Intent: in, Reason: reason})
		a.rec.IntentResolved(ctx, string(reason))
		if reason != ReasonMoved {
			slog.Debug("intent skipped", "agent", in.AgentID, "reason", reason, "priority", in.Priority, "dest", in.Dest.String())
		}
	}

	clear(a.intents)
	a.next = 0
	return outcomes
}

func (a *Arbiter) settle(ctx context.Context, in Intent, claimed map[string]string) Reason {
	view := a.frame.World
	unit, ok := view.Unit(in.AgentID)
	if !ok {
		return ReasonGone
	}
	if unit.Locked() {
		return ReasonLocked
	}
	if in.OriginZone != "" && unit.Pos.Zone != in.OriginZone {
		return ReasonZoneChanged
	}
	if in.TargetID != "" && view.Observable(in.Dest.Zone) {
		if _, found := view.Locate(in.TargetID); !found {
			return ReasonTargetLost
		}
	}

	key := in.Dest.Key()
	if !in.Flee && unit.Pos.InRangeTo(in.Dest, in.Range) {
		if !in.Shared {
			if _, taken := claimed[key]; !taken {
				claimed[key] = in.AgentID
			}
		}
		return ReasonInRange
	}
	if in.Flee && unit.Pos.RangeTo(in.Dest) >= in.Range {
		return ReasonInRange
	}
	if !in.Shared {
		if holder, taken := claimed[key]; taken && holder != in.AgentID {
			return ReasonClaimed
		}
		claimed[key] = in.AgentID
	}

	if a.pathing == nil {
		return ReasonPathError
	}
	if err := a.pathing.MoveTo(ctx, unit, in.Dest, in.moveOptions()); err != nil {
		slog.Warn("pathing failed", "agent", in.AgentID, "dest", in.Dest.String(), "error", err)
		return ReasonPathError
	}
	return ReasonMoved
}
