package agent

import (
	"fmt"
	"slices"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// EventKind identifies a change between consecutive ticks that some
// component has to react to.
type EventKind string

const (
	// EventSquadDisbanded: a squad roster present last tick is gone.
	EventSquadDisbanded EventKind = "squad_disbanded"
	// EventMemberLost: a unit listed in a squad last tick no longer exists.
	EventMemberLost EventKind = "member_lost"
	// EventFirstContact: hostile units appear in a zone that had none.
	EventFirstContact EventKind = "first_contact"
	// EventDefenseLost: a hostile tower seen last tick is gone from a zone
	// still in vision.
	EventDefenseLost EventKind = "defense_lost"
)

// Event is one detected change. Subject is the squad id for squad events
// and the zone for zone events.
type Event struct {
	Kind    EventKind
	Tick    int
	Subject string
	Detail  string
}

// tickState captures the diffable fields of one tick. The agent stores one
// and compares against the next tick to detect events.
type tickState struct {
	tick         int
	rosters      map[string][]string // squad id → unit ids
	units        map[string]bool
	hostileZones map[string]bool
	towers       map[string]string // hostile tower id → zone
}

// takeState captures the current diffable state for next tick's comparison.
func takeState(snap model.Snapshot, view *world.Index) tickState {
	st := tickState{
		tick:         snap.Tick,
		rosters:      make(map[string][]string, len(snap.Squads)),
		units:        make(map[string]bool, len(snap.Units)),
		hostileZones: make(map[string]bool),
		towers:       make(map[string]string),
	}
	for _, sq := range snap.Squads {
		st.rosters[sq.ID] = slices.Clone(sq.Units)
	}
	for _, u := range snap.Units {
		st.units[u.ID] = true
		if u.Owner != "" && !view.Friendly(u.Owner) && u.Pos.Zone != "" {
			st.hostileZones[u.Pos.Zone] = true
		}
	}
	for _, s := range snap.Structures {
		if s.Type == model.StructureTower && s.Owner != "" && !view.Friendly(s.Owner) {
			st.towers[s.ID] = s.Pos.Zone
		}
	}
	return st
}

// detectEvents compares the current tick against the previous state and
// returns the triggered events in a stable order. Returns nil if prev is
// nil (first tick of a session).
func detectEvents(cur tickState, view *world.Index, prev *tickState) []Event {
	if prev == nil {
		return nil
	}
	var events []Event

	// 1. squad_disbanded, and member_lost for squads that survive
	for _, id := range sortedKeys(prev.rosters) {
		if _, ok := cur.rosters[id]; !ok {
			events = append(events, Event{
				Kind:    EventSquadDisbanded,
				Tick:    cur.tick,
				Subject: id,
				Detail:  fmt.Sprintf("squad %s no longer listed", id),
			})
			continue
		}
		var lost []string
		for _, uid := range prev.rosters[id] {
			if !cur.units[uid] {
				lost = append(lost, uid)
			}
		}
		if len(lost) > 0 {
			events = append(events, Event{
				Kind:    EventMemberLost,
				Tick:    cur.tick,
				Subject: id,
				Detail:  fmt.Sprintf("lost %v", lost),
			})
		}
	}

	// 2. first_contact
	for _, zone := range sortedKeys(cur.hostileZones) {
		if !prev.hostileZones[zone] {
			events = append(events, Event{
				Kind:    EventFirstContact,
				Tick:    cur.tick,
				Subject: zone,
				Detail:  "hostiles sighted",
			})
		}
	}

	// 3. defense_lost: only trusted while the zone is in vision, otherwise
	// the tower simply dropped out of sight.
	reported := make(map[string]bool)
	for _, id := range sortedKeys(prev.towers) {
		zone := prev.towers[id]
		if _, ok := cur.towers[id]; ok || !view.Observable(zone) || reported[zone] {
			continue
		}
		reported[zone] = true
		events = append(events, Event{
			Kind:    EventDefenseLost,
			Tick:    cur.tick,
			Subject: zone,
			Detail:  fmt.Sprintf("tower %s destroyed", id),
		})
	}

	return events
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
