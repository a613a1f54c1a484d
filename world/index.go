package world

import (
	"slices"
	"strings"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

var _ View = (*Index)(nil)

// Index is a View over one model.Snapshot. Entities live in flat slices and
// are reached through id → slot maps, so nothing outside the index holds a
// pointer into the snapshot.
type Index struct {
	player     string
	allies     map[string]bool
	units      []model.Unit
	structures []model.Structure
	unitSlot   map[string]int
	structSlot map[string]int
	unitsBy    map[string][]int
	structsBy  map[string][]int
	markers    map[string]model.Marker
	visible    map[string]bool
	terrain    map[string]*model.TerrainGrid
}

// NewIndex builds the lookup tables for snap. Zones holding one of the
// player's units or structures count as visible even when the host did not
// list them.
func NewIndex(snap model.Snapshot, allies []string, terrain map[string]*model.TerrainGrid) *Index {
	ix := &Index{
		player:     snap.Player,
		allies:     make(map[string]bool, len(allies)),
		units:      slices.Clone(snap.Units),
		structures: slices.Clone(snap.Structures),
		unitSlot:   make(map[string]int, len(snap.Units)),
		structSlot: make(map[string]int, len(snap.Structures)),
		unitsBy:    make(map[string][]int),
		structsBy:  make(map[string][]int),
		markers:    make(map[string]model.Marker, len(snap.Markers)),
		visible:    make(map[string]bool, len(snap.Visible)),
		terrain:    terrain,
	}
	for _, a := range allies {
		ix.allies[strings.ToLower(a)] = true
	}

	// Stable order makes every per-zone listing deterministic.
	slices.SortFunc(ix.units, func(a, b model.Unit) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(ix.structures, func(a, b model.Structure) int { return strings.Compare(a.ID, b.ID) })

	for i, u := range ix.units {
		ix.unitSlot[u.ID] = i
		ix.unitsBy[u.Pos.Zone] = append(ix.unitsBy[u.Pos.Zone], i)
		if ix.Friendly(u.Owner) && u.Owner != "" {
			ix.visible[u.Pos.Zone] = true
		}
	}
	for i, s := range ix.structures {
		ix.structSlot[s.ID] = i
		ix.structsBy[s.Pos.Zone] = append(ix.structsBy[s.Pos.Zone], i)
		if s.Owner != "" && s.Owner == snap.Player {
			ix.visible[s.Pos.Zone] = true
		}
	}
	for _, m := range snap.Markers {
		ix.markers[m.Name] = m
	}
	for _, z := range snap.Visible {
		ix.visible[z] = true
	}
	return ix
}

func (ix *Index) Unit(id string) (model.Unit, bool) {
	i, ok := ix.unitSlot[id]
	if !ok {
		return model.Unit{}, false
	}
	return ix.units[i], true
}

func (ix *Index) Structure(id string) (model.Structure, bool) {
	i, ok := ix.structSlot[id]
	if !ok {
		return model.Structure{}, false
	}
	return ix.structures[i], true
}

func (ix *Index) Locate(id string) (model.Position, bool) {
	if u, ok := ix.Unit(id); ok {
		return u.Pos, true
	}
	if s, ok := ix.Structure(id); ok {
		return s.Pos, true
	}
	return model.Position{}, false
}

func (ix *Index) UnitsIn(zone string) []model.Unit {
	slots := ix.unitsBy[zone]
	out := make([]model.Unit, len(slots))
	for i, s := range slots {
		out[i] = ix.units[s]
	}
	return out
}

func (ix *Index) StructuresIn(zone string) []model.Structure {
	slots := ix.structsBy[zone]
	out := make([]model.Structure, len(slots))
	for i, s := range slots {
		out[i] = ix.structures[s]
	}
	return out
}

func (ix *Index) Observable(zone string) bool { return ix.visible[zone] }

// Friendly is true for the player and listed allies (case-insensitive).
// Unowned entities are neutral, not friendly.
func (ix *Index) Friendly(owner string) bool {
	if owner == "" {
		return false
	}
	return strings.EqualFold(owner, ix.player) || ix.allies[strings.ToLower(owner)]
}

func (ix *Index) Marker(name string) (model.Marker, bool) {
	m, ok := ix.markers[name]
	return m, ok
}

func (ix *Index) Terrain(zone string) *model.TerrainGrid {
	return ix.terrain[zone]
}
