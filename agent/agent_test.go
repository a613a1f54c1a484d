package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/intel"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/ipc"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/movement"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/rules"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
)

type sent struct {
	Type string
	Data any
}

type captureSender struct {
	msgs []sent
	err  error
}

func (c *captureSender) Send(msgType string, data any) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, sent{msgType, data})
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	events map[string]int
}

func (r *countingRecorder) IntentDecided(context.Context, bool)    {}
func (r *countingRecorder) IntentResolved(context.Context, string) {}
func (r *countingRecorder) IntelRefreshed(context.Context, string) {}
func (r *countingRecorder) EventDetected(_ context.Context, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string]int)
	}
	r.events[kind]++
}

func defaultOptions() Options {
	return Options{
		Movement: movement.DefaultConfig(),
		Intel:    intel.DefaultConfig(),
		Squad:    squad.DefaultConfig(),
	}
}

func envelope(t *testing.T, msgType string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	require.NoError(t, err)
	return env
}

func decodeAck(t *testing.T, env *ipc.Envelope) ipc.AckMessage {
	t.Helper()
	require.NotNil(t, env)
	require.Equal(t, ipc.TypeAck, env.Type)
	var ack ipc.AckMessage
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	return ack
}

func melee(id string, p model.Position) model.Unit {
	return model.Unit{ID: id, Owner: "bee", Pos: p, HP: 100, MaxHP: 100,
		Parts: []model.Part{{Type: model.PartAttack, HP: 100}, {Type: model.PartMove, HP: 100}}}
}

// rallyTick is one squad member waiting for its rally marker while the
// host asks for some economy movement of its own.
func rallyTick(tickNo int) model.Snapshot {
	return model.Snapshot{
		Tick:   tickNo,
		Player: "bee",
		Units: []model.Unit{
			melee("m1", pos("W1N1", 10, 10)),
			{ID: "w1", Owner: "bee", Pos: pos("W1N1", 3, 3), Parts: []model.Part{{Type: model.PartWork, HP: 100}}},
		},
		Markers: []model.Marker{{Name: "alpha", Pos: pos("W1N1", 20, 20)}},
		Squads:  []model.SquadRoster{{ID: "alpha", Units: []string{"m1"}}},
		Moves: []model.MoveOrder{
			{UnitID: "m1", Target: pos("W1N1", 5, 5), Tag: "harvest"},
			{UnitID: "w1", Target: pos("W1N1", 5, 5), Tag: "harvest", Range: 1},
			{UnitID: "ghost", Target: pos("W1N1", 1, 1), Tag: "idle"},
		},
	}
}

func TestHandleHello(t *testing.T) {
	a := New(context.Background(), &captureSender{}, defaultOptions())

	resp, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{
		Player: "bee",
		Allies: []string{"hornet"},
		Terrain: []ipc.TerrainData{
			{Zone: "W1N1", Cols: 2, Rows: 1, Grid: []int{int(model.Plain), int(model.Wall)}},
			{Zone: "W9N9", Cols: 5, Rows: 5, Grid: []int{1}},
		},
	}))
	require.NoError(t, err)

	ack := decodeAck(t, resp)
	assert.Equal(t, "ok", ack.Status)
	assert.Equal(t, a.Session(), ack.Session)
	assert.NotEmpty(t, ack.Session)
	assert.Equal(t, "bee", a.player)
	assert.Contains(t, a.terrain, "W1N1")
	assert.NotContains(t, a.terrain, "W9N9", "malformed terrain is dropped")
}

func TestHandleHelloBadPayload(t *testing.T) {
	a := New(context.Background(), &captureSender{}, defaultOptions())
	_, err := a.HandleHello(ipc.Envelope{Type: ipc.TypeHello, Data: json.RawMessage(`"nope"`)})
	assert.Error(t, err)
}

func TestSessionsAreDistinct(t *testing.T) {
	a := New(context.Background(), &captureSender{}, defaultOptions())
	b := New(context.Background(), &captureSender{}, defaultOptions())
	assert.NotEqual(t, a.Session(), b.Session())
}

func TestHandleTickArbitratesSquadAndHostMoves(t *testing.T) {
	out := &captureSender{}
	a := New(context.Background(), out, defaultOptions())

	resp, err := a.HandleTick(envelope(t, ipc.TypeTick, rallyTick(1)))
	require.NoError(t, err)

	ack := decodeAck(t, resp)
	assert.Equal(t, 1, ack.Tick)
	assert.Equal(t, 2, ack.Executed)
	assert.Equal(t, map[string]int{"gone": 1}, ack.Skipped)

	// The squad's combat request outranks the host's harvest wish for m1,
	// and moves go out in priority order.
	require.Len(t, out.msgs, 2)
	assert.Equal(t, sent{ipc.TypeMove, ipc.MoveCommand{UnitID: "m1", Zone: "W1N1", X: 20, Y: 20, Range: 1}}, out.msgs[0])
	assert.Equal(t, sent{ipc.TypeMove, ipc.MoveCommand{UnitID: "w1", Zone: "W1N1", X: 5, Y: 5, Range: 1}}, out.msgs[1])
}

func TestHandleTickSendFailureSkipsIntent(t *testing.T) {
	out := &captureSender{err: errors.New("broken pipe")}
	a := New(context.Background(), out, defaultOptions())

	resp, err := a.HandleTick(envelope(t, ipc.TypeTick, rallyTick(1)))
	require.NoError(t, err)

	ack := decodeAck(t, resp)
	assert.Zero(t, ack.Executed)
	assert.Equal(t, map[string]int{"path-error": 2, "gone": 1}, ack.Skipped)
}

func TestHandleTickBadPayload(t *testing.T) {
	a := New(context.Background(), &captureSender{}, defaultOptions())
	_, err := a.HandleTick(ipc.Envelope{Type: ipc.TypeTick, Data: json.RawMessage(`[1,2]`)})
	assert.Error(t, err)
}

func TestDisbandedSquadIsCleared(t *testing.T) {
	rec := &countingRecorder{}
	opts := defaultOptions()
	opts.Store = store.NewMemory()
	opts.Recorder = rec
	a := New(context.Background(), &captureSender{}, opts)

	a.Step(rallyTick(1))
	require.NoError(t, a.broker.SetState("alpha", squad.StateEngage))

	next := rallyTick(2)
	next.Squads = nil
	a.Step(next)

	assert.Equal(t, squad.StateInit, a.broker.State("alpha"))
	assert.Equal(t, 1, rec.events[string(EventSquadDisbanded)])

	_, err := opts.Store.Get(context.Background(), "squad:alpha")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostureRulesDriveSquad(t *testing.T) {
	rs, err := rules.CompileDoctrine(rules.DefaultDoctrine())
	require.NoError(t, err)
	engine, err := rules.NewEngine(rs)
	require.NoError(t, err)

	opts := defaultOptions()
	opts.Engine = engine
	a := New(context.Background(), &captureSender{}, opts)

	a.Step(rallyTick(1))
	assert.Equal(t, squad.StateForm, a.broker.State("alpha"))
}

// markedAssault is a squad assembled at its rally with an attack marker
// placed on a visible zone next door.
func markedAssault(tickNo int) model.Snapshot {
	return model.Snapshot{
		Tick:   tickNo,
		Player: "bee",
		Units: []model.Unit{
			melee("m1", pos("W1N1", 20, 20)),
			melee("m2", pos("W1N1", 21, 20)),
			{ID: "h1", Owner: "wasp", Pos: pos("W2N1", 25, 25), HP: 100, MaxHP: 100,
				Parts: []model.Part{{Type: model.PartHeal, HP: 100}, {Type: model.PartMove, HP: 100}}},
		},
		Markers: []model.Marker{
			{Name: "alpha", Pos: pos("W1N1", 20, 20)},
			{Name: "alpha:attack", Pos: pos("W2N1", 25, 25)},
		},
		Visible: []string{"W2N1"},
		Squads:  []model.SquadRoster{{ID: "alpha", Units: []string{"m1", "m2"}}},
	}
}

func TestSquadAssaultsMarkedZone(t *testing.T) {
	rs, err := rules.CompileDoctrine(rules.DefaultDoctrine())
	require.NoError(t, err)
	engine, err := rules.NewEngine(rs)
	require.NoError(t, err)

	out := &captureSender{}
	opts := defaultOptions()
	opts.Engine = engine
	a := New(context.Background(), out, opts)

	a.Step(markedAssault(1))
	require.Equal(t, squad.StateForm, a.broker.State("alpha"))
	assert.Empty(t, out.msgs, "both members already stand at the rally")

	resp, err := a.HandleTick(envelope(t, ipc.TypeTick, markedAssault(2)))
	require.NoError(t, err)

	rec := a.broker.Record("alpha")
	assert.Equal(t, squad.StateEngage, rec.State)
	assert.Equal(t, "h1", rec.TargetID)
	assert.Equal(t, "W2N1", rec.Zone)

	assert.Equal(t, 2, decodeAck(t, resp).Executed)
	assert.Equal(t, []sent{
		{ipc.TypeMove, ipc.MoveCommand{UnitID: "m1", Zone: "W2N1", X: 25, Y: 25, Range: 1}},
		{ipc.TypeMove, ipc.MoveCommand{UnitID: "m2", Zone: "W2N1", X: 25, Y: 25, Range: 1}},
	}, out.msgs)
}

func TestSessionOverPipe(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	conn := ipc.NewConnection(server, nil)
	a := New(context.Background(), conn, defaultOptions())
	a.Register(conn)
	done := make(chan error, 1)
	go func() { done <- conn.Serve(context.Background()) }()

	require.NoError(t, ipc.WriteEnvelope(client, envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "bee"})))
	env, err := ipc.ReadEnvelope(client)
	require.NoError(t, err)
	assert.Equal(t, a.Session(), decodeAck(t, &env).Session)

	require.NoError(t, ipc.WriteEnvelope(client, envelope(t, ipc.TypeTick, rallyTick(7))))
	var moves []ipc.MoveCommand
	for {
		env, err := ipc.ReadEnvelope(client)
		require.NoError(t, err)
		if env.Type == ipc.TypeAck {
			ack := decodeAck(t, &env)
			assert.Equal(t, 7, ack.Tick)
			assert.Equal(t, 2, ack.Executed)
			break
		}
		require.Equal(t, ipc.TypeMove, env.Type)
		var m ipc.MoveCommand
		require.NoError(t, json.Unmarshal(env.Data, &m))
		moves = append(moves, m)
	}
	require.Len(t, moves, 2)
	assert.Equal(t, "m1", moves[0].UnitID)
	assert.Equal(t, "w1", moves[1].UnitID)

	client.Close()
	assert.NoError(t, <-done)
}
