// Package agent runs one host session: it turns each tick snapshot into
// squad decisions and arbitrated movement, and reports back to the host.
package agent

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/intel"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/ipc"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/movement"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/rules"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/tick"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Recorder observes everything a session does. metrics.Recorder satisfies
// it.
type Recorder interface {
	movement.Recorder
	intel.Recorder
	EventDetected(ctx context.Context, kind string)
}

// Options wires a session. Engine may be nil to run without posture rules,
// Store nil to keep state in memory, Recorder nil to record nothing.
type Options struct {
	Movement movement.Config
	Intel    intel.Config
	Squad    squad.Config
	Engine   *rules.Engine
	Store    store.Store
	Recorder Recorder
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	ctx     context.Context
	session string
	player  string
	allies  []string
	terrain map[string]*model.TerrainGrid

	link    *hostLink
	arbiter *movement.Arbiter
	intel   *intel.Cache
	broker  *squad.Broker
	tactics *squad.Tactics
	posture *rules.Orchestrator
	rec     Recorder

	prev *tickState
}

func New(ctx context.Context, out Sender, opts Options) *Agent {
	link := &hostLink{out: out}
	a := &Agent{
		ctx:     ctx,
		session: uuid.NewString(),
		terrain: make(map[string]*model.TerrainGrid),
		link:    link,
		arbiter: movement.New(opts.Movement, link),
		intel:   intel.New(opts.Intel, opts.Store),
		rec:     opts.Recorder,
	}
	a.broker = squad.NewBroker(opts.Squad, a.intel, opts.Store)
	a.tactics = squad.NewTactics(a.broker, a.arbiter, link)
	if opts.Engine != nil {
		a.posture = rules.NewOrchestrator(opts.Engine, a.broker, a.intel)
	}
	if opts.Recorder != nil {
		a.arbiter.SetRecorder(opts.Recorder)
		a.intel.SetRecorder(opts.Recorder)
	}
	return a
}

func (a *Agent) Session() string { return a.session }

// Register installs the agent's handlers on conn.
func (a *Agent) Register(conn *ipc.Connection) {
	conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	conn.RegisterHandler(ipc.TypeTick, a.HandleTick)
}

// HandleHello completes the handshake so the host knows the controller is
// ready, and keeps the static terrain for the rest of the session.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.player = hello.Player
	a.allies = slices.Clone(hello.Allies)
	for _, td := range hello.Terrain {
		if td.Zone == "" || td.Cols*td.Rows != len(td.Grid) {
			slog.Warn("ignoring malformed terrain", "zone", td.Zone, "cols", td.Cols, "rows", td.Rows, "tiles", len(td.Grid))
			continue
		}
		a.terrain[td.Zone] = td.TerrainGrid()
	}
	slog.Info("player identified", "player", a.player, "allies", len(a.allies), "zones", len(a.terrain), "session", a.session)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.session})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs one full controller step for the snapshot in env.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	if snap.Player == "" {
		snap.Player = a.player
	}

	outcomes := a.Step(snap)

	ack := ipc.AckMessage{Status: "ok", Session: a.session, Tick: snap.Tick}
	for _, o := range outcomes {
		if o.Executed() {
			ack.Executed++
			continue
		}
		if ack.Skipped == nil {
			ack.Skipped = make(map[string]int)
		}
		ack.Skipped[string(o.Reason)]++
	}
	resp, err := ipc.NewEnvelope(ipc.TypeAck, ack)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Step processes one snapshot: events first, then every squad in id order,
// then the host's own movement wishes, and finally one arbitration pass.
func (a *Agent) Step(snap model.Snapshot) []movement.Outcome {
	view := world.NewIndex(snap, a.allies, a.terrain)
	f := tick.New(a.ctx, snap.Tick, view)
	a.arbiter.StartTick(f)
	a.intel.StartTick(f)
	a.broker.StartTick(f)

	cur := takeState(snap, view)
	for _, ev := range detectEvents(cur, view, a.prev) {
		a.apply(f, ev)
	}
	a.prev = &cur

	squads := slices.Clone(snap.Squads)
	slices.SortFunc(squads, func(x, y model.SquadRoster) int { return cmp.Compare(x.ID, y.ID) })
	for _, sq := range squads {
		a.broker.AssignFormation(sq.ID, sq.Units)
		if a.posture != nil {
			if fired := a.posture.Run(sq.ID); len(fired) > 0 {
				slog.Debug("posture rules fired", "squad", sq.ID, "rules", fired)
			}
		}
		a.tactics.Run(sq.ID)
	}

	a.submit(snap.Moves)

	sent := a.link.sent
	outcomes := a.arbiter.ResolveAndMove()
	slog.Debug("tick resolved", "tick", snap.Tick, "squads", len(squads), "intents", len(outcomes), "commands", a.link.sent-sent)
	return outcomes
}

func (a *Agent) apply(f *tick.Frame, ev Event) {
	if a.rec != nil {
		a.rec.EventDetected(f.Ctx, string(ev.Kind))
	}
	switch ev.Kind {
	case EventSquadDisbanded:
		slog.Info("squad disbanded", "squad", ev.Subject, "tick", ev.Tick)
		a.broker.Clear(ev.Subject)
	case EventMemberLost:
		slog.Info("squad member lost", "squad", ev.Subject, "detail", ev.Detail)
		a.broker.RequestRescan(ev.Subject)
	case EventFirstContact:
		slog.Info("first contact", "zone", ev.Subject, "tick", ev.Tick)
	case EventDefenseLost:
		slog.Info("defense lost", "zone", ev.Subject, "detail", ev.Detail)
		a.intel.Forget(ev.Subject)
	}
}

// submit queues the host's own movement wishes behind the squads'.
func (a *Agent) submit(orders []model.MoveOrder) {
	for _, o := range orders {
		dest := movement.To(o.Target)
		if !o.Target.Valid() && o.TargetID != "" {
			dest = movement.ToEntity(o.TargetID)
		}
		var opts []movement.Option
		if o.Tag != "" {
			opts = append(opts, movement.WithTag(movement.Tag(o.Tag)))
		}
		if o.Priority != nil {
			opts = append(opts, movement.WithPriority(*o.Priority))
		}
		if o.Range > 0 {
			opts = append(opts, movement.WithRange(o.Range))
		}
		if o.TargetID != "" {
			opts = append(opts, movement.WithTarget(o.TargetID))
		}

		d, err := a.arbiter.Request(o.UnitID, dest, opts...)
		switch {
		case errors.Is(err, movement.ErrInvalidDestination), errors.Is(err, movement.ErrInvalidAgent):
			slog.Debug("host move dropped", "unit", o.UnitID, "error", err)
		case err != nil:
			slog.Warn("host move failed", "unit", o.UnitID, "error", err)
		case !d.Accepted():
			slog.Debug("host move outranked", "unit", o.UnitID, "tag", o.Tag, "holding", d.Priority)
		}
	}
}
