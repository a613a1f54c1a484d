package agent

import (
	"testing"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

func pos(zone string, x, y int) model.Position { return model.Position{X: x, Y: y, Zone: zone} }

// baseSnapshot returns a small two-zone tick for testing: one squad of two
// in W1N1 and an enemy tower and scout in W2N1.
func baseSnapshot(tickNo int) model.Snapshot {
	return model.Snapshot{
		Tick:   tickNo,
		Player: "bee",
		Units: []model.Unit{
			{ID: "a1", Owner: "bee", Pos: pos("W1N1", 10, 10)},
			{ID: "a2", Owner: "bee", Pos: pos("W1N1", 11, 10)},
			{ID: "s1", Owner: "bee", Pos: pos("W2N1", 1, 1)},
			{ID: "h1", Owner: "wasp", Pos: pos("W2N1", 20, 20)},
		},
		Structures: []model.Structure{
			{ID: "t1", Type: model.StructureTower, Owner: "wasp", Pos: pos("W2N1", 25, 25), Active: true},
			{ID: "t2", Type: model.StructureTower, Owner: "bee", Pos: pos("W1N1", 5, 5), Active: true},
		},
		Squads: []model.SquadRoster{{ID: "alpha", Units: []string{"a1", "a2"}}},
	}
}

func detect(prev, cur model.Snapshot) []Event {
	pv := world.NewIndex(prev, nil, nil)
	ps := takeState(prev, pv)
	cv := world.NewIndex(cur, nil, nil)
	return detectEvents(takeState(cur, cv), cv, &ps)
}

func hasEvent(events []Event, kind EventKind, subject string) bool {
	for _, e := range events {
		if e.Kind == kind && e.Subject == subject {
			return true
		}
	}
	return false
}

func TestDetectEvents_NoEvents(t *testing.T) {
	events := detect(baseSnapshot(100), baseSnapshot(101))
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	snap := baseSnapshot(100)
	view := world.NewIndex(snap, nil, nil)
	if events := detectEvents(takeState(snap, view), view, nil); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_SquadDisbanded(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Squads = nil

	events := detect(baseSnapshot(100), cur)
	if !hasEvent(events, EventSquadDisbanded, "alpha") {
		t.Errorf("expected squad_disbanded for alpha, got %+v", events)
	}
	if hasEvent(events, EventMemberLost, "alpha") {
		t.Errorf("a disbanded squad should not also report member_lost: %+v", events)
	}
}

func TestDetectEvents_MemberLost(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Units = cur.Units[1:] // a1 died

	events := detect(baseSnapshot(100), cur)
	if !hasEvent(events, EventMemberLost, "alpha") {
		t.Fatalf("expected member_lost for alpha, got %+v", events)
	}
	if events[0].Detail != "lost [a1]" {
		t.Errorf("Detail = %q, want %q", events[0].Detail, "lost [a1]")
	}
}

func TestDetectEvents_MemberReassigned(t *testing.T) {
	// a2 leaves the roster but is still alive: not a loss.
	cur := baseSnapshot(101)
	cur.Squads[0].Units = []string{"a1"}

	if events := detect(baseSnapshot(100), cur); len(events) != 0 {
		t.Errorf("expected 0 events, got %+v", events)
	}
}

func TestDetectEvents_FirstContact(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Units = append(cur.Units, model.Unit{ID: "h2", Owner: "wasp", Pos: pos("W1N1", 30, 30)})

	events := detect(baseSnapshot(100), cur)
	if !hasEvent(events, EventFirstContact, "W1N1") {
		t.Errorf("expected first_contact in W1N1, got %+v", events)
	}
	if hasEvent(events, EventFirstContact, "W2N1") {
		t.Errorf("W2N1 already had hostiles: %+v", events)
	}
}

func TestDetectEvents_AlliesAreNotContact(t *testing.T) {
	prev := baseSnapshot(100)
	cur := baseSnapshot(101)
	cur.Units = append(cur.Units, model.Unit{ID: "f1", Owner: "hornet", Pos: pos("W1N1", 30, 30)})

	pv := world.NewIndex(prev, []string{"hornet"}, nil)
	ps := takeState(prev, pv)
	cv := world.NewIndex(cur, []string{"hornet"}, nil)
	if events := detectEvents(takeState(cur, cv), cv, &ps); len(events) != 0 {
		t.Errorf("expected 0 events for an allied unit, got %+v", events)
	}
}

func TestDetectEvents_NeutralsAreNotContact(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Units = append(cur.Units, model.Unit{ID: "n1", Pos: pos("W1N1", 30, 30)})
	cur.Structures = append(cur.Structures, model.Structure{ID: "t9", Type: model.StructureTower, Pos: pos("W1N1", 40, 40)})

	if events := detect(baseSnapshot(100), cur); len(events) != 0 {
		t.Errorf("expected 0 events for unowned objects, got %+v", events)
	}
}

func TestDetectEvents_DefenseLost(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Structures = cur.Structures[1:] // t1 destroyed, s1 still watching W2N1

	events := detect(baseSnapshot(100), cur)
	if !hasEvent(events, EventDefenseLost, "W2N1") {
		t.Errorf("expected defense_lost in W2N1, got %+v", events)
	}
}

func TestDetectEvents_DefenseOutOfSight(t *testing.T) {
	// The scout left W2N1, taking vision with it; the tower is merely unseen.
	cur := baseSnapshot(101)
	cur.Structures = cur.Structures[1:]
	cur.Units = []model.Unit{cur.Units[0], cur.Units[1]}

	events := detect(baseSnapshot(100), cur)
	if hasEvent(events, EventDefenseLost, "W2N1") {
		t.Errorf("unexpected defense_lost for a zone out of vision: %+v", events)
	}
}

func TestDetectEvents_OwnTowerIgnored(t *testing.T) {
	cur := baseSnapshot(101)
	cur.Structures = cur.Structures[:1] // our t2 destroyed

	if events := detect(baseSnapshot(100), cur); len(events) != 0 {
		t.Errorf("expected 0 events, got %+v", events)
	}
}
