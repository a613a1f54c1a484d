package model

import (
	"fmt"
	"math"
)

// ZoneSize is the edge length of every zone in tiles.
const ZoneSize = 50

// Unreachable is the range reported between positions in different zones.
const Unreachable = math.MaxInt32

// Position is a tile inside a zone. Shard is optional and only compared when
// both sides carry one.
type Position struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Zone  string `json:"zone"`
	Shard string `json:"shard,omitempty"`
}

// Valid reports whether p names a concrete tile.
func (p Position) Valid() bool {
	return p.Zone != "" && p.X >= 0 && p.X < ZoneSize && p.Y >= 0 && p.Y < ZoneSize
}

// SameZone ignores the shard when either side leaves it blank.
func (p Position) SameZone(o Position) bool {
	if p.Zone != o.Zone {
		return false
	}
	return p.Shard == "" || o.Shard == "" || p.Shard == o.Shard
}

// RangeTo is the Chebyshev distance, so diagonal steps cost the same as
// straight ones. Positions in different zones are Unreachable.
func (p Position) RangeTo(o Position) int {
	if !p.SameZone(o) {
		return Unreachable
	}
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

func (p Position) InRangeTo(o Position, r int) bool {
	return p.RangeTo(o) <= r
}

// Equal compares tiles, treating a blank shard as a wildcard.
func (p Position) Equal(o Position) bool {
	return p.SameZone(o) && p.X == o.X && p.Y == o.Y
}

// Key identifies the tile for map lookups. The shard is left out on purpose
// so a blank shard and an explicit one land on the same key.
func (p Position) Key() string {
	return fmt.Sprintf("%s:%d,%d", p.Zone, p.X, p.Y)
}

func (p Position) String() string {
	if p.Shard != "" {
		return fmt.Sprintf("%s/%s(%d,%d)", p.Shard, p.Zone, p.X, p.Y)
	}
	return fmt.Sprintf("%s(%d,%d)", p.Zone, p.X, p.Y)
}

// StepToward returns the neighbouring tile one step from p in the direction
// of o. It returns p unchanged when the two share a tile.
func (p Position) StepToward(o Position) Position {
	next := p
	next.X += sign(o.X - p.X)
	next.Y += sign(o.Y - p.Y)
	return next
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
