// Package world defines the collaborators the controller needs from the game
// host and a snapshot-backed implementation of the read side.
package world

import (
	"context"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

// Directory resolves opaque ids to this tick's entity snapshots. Callers
// never hold on to the returned values across ticks.
type Directory interface {
	Unit(id string) (model.Unit, bool)
	Structure(id string) (model.Structure, bool)
	// Locate finds any entity, unit or structure, by id.
	Locate(id string) (model.Position, bool)
	UnitsIn(zone string) []model.Unit
	StructuresIn(zone string) []model.Structure
}

// Observer answers whether a zone is in vision this tick.
type Observer interface {
	Observable(zone string) bool
}

// Roster is the alliance check. Friendly covers the player and allies.
type Roster interface {
	Friendly(owner string) bool
}

// Markers resolves externally placed named positions.
type Markers interface {
	Marker(name string) (model.Marker, bool)
}

// Terrain exposes static zone geometry. It may return nil for unknown zones.
type Terrain interface {
	Terrain(zone string) *model.TerrainGrid
}

// View is the full read side of the world for one tick.
type View interface {
	Directory
	Observer
	Roster
	Markers
	Terrain
}

// MoveOptions are the tuning knobs handed to the pathing engine.
type MoveOptions struct {
	Range       int
	ReusePath   int
	IgnoreUnits bool
	Flee        bool
	Costs       map[string]int
}

// Pathing issues the actual per-tick step toward a destination. It is a
// black box to the controller.
type Pathing interface {
	MoveTo(ctx context.Context, unit model.Unit, dest model.Position, opts MoveOptions) error
}

// Actions applies combat effects for a unit this tick.
type Actions interface {
	Attack(ctx context.Context, unitID, targetID string) error
	RangedAttack(ctx context.Context, unitID, targetID string) error
	Heal(ctx context.Context, unitID, targetID string) error
	RangedHeal(ctx context.Context, unitID, targetID string) error
}
