package intel

import (
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

// Role is a hostile unit's tag, derived from which parts it still has.
type Role string

const (
	RoleHealer  Role = "healer"
	RoleRanged  Role = "ranged"
	RoleMelee   Role = "melee"
	RoleSapper  Role = "sapper"
	RoleGeneric Role = "generic"
)

// Classify picks the most dangerous role the unit can play. A unit with
// both heal and attack parts is a healer.
func Classify(u model.Unit) Role {
	switch {
	case u.CanHeal():
		return RoleHealer
	case u.CanRange():
		return RoleRanged
	case u.CanMelee():
		return RoleMelee
	case u.CanDismantle():
		return RoleSapper
	default:
		return RoleGeneric
	}
}

// Defense is a cached static defense (tower).
type Defense struct {
	ID     string         `json:"id"`
	Pos    model.Position `json:"pos"`
	Energy int            `json:"energy"`
	Active bool           `json:"active"`
}

// Hostile is a cached hostile unit.
type Hostile struct {
	ID     string         `json:"id"`
	Owner  string         `json:"owner"`
	Role   Role           `json:"role"`
	Pos    model.Position `json:"pos"`
	HP     int            `json:"hp"`
	MaxHP  int            `json:"maxHp"`
	Heal   int            `json:"heal"`
	Ranged int            `json:"ranged"`
	Attack int            `json:"attack"`
}

// Asset is a hostile structure worth destroying.
type Asset struct {
	ID     string              `json:"id"`
	Type   model.StructureType `json:"type"`
	Pos    model.Position      `json:"pos"`
	HP     int                 `json:"hp"`
	MaxHP  int                 `json:"maxHp"`
	Weight float64             `json:"weight"`
}

// Snapshot is what the cache knows about one zone. CapturedAt drives the
// fresh and retain windows; HostilesAt is bumped by the faster hostile
// recount while a squad is fighting there.
type Snapshot struct {
	Zone       string           `json:"zone"`
	CapturedAt int              `json:"capturedAt"`
	HostilesAt int              `json:"hostilesAt"`
	Defenses   []Defense        `json:"defenses"`
	Hostiles   []Hostile        `json:"hostiles"`
	Assets     []Asset          `json:"assets"`
	Cover      []model.Position `json:"cover"`
	Ramparts   []model.Position `json:"ramparts"`

	cover    map[string]bool
	ramparts map[string]bool
}

// Covered reports whether p is a cataloged cover tile. Cover is all or
// nothing: the tile is either fully shielded or fully exposed.
func (s *Snapshot) Covered(p model.Position) bool {
	if s.cover == nil {
		s.cover = keySet(s.Cover)
	}
	return s.cover[p.Key()]
}

// Sheltered reports whether a hostile at p sits under one of its own
// ramparts.
func (s *Snapshot) Sheltered(p model.Position) bool {
	if s.ramparts == nil {
		s.ramparts = keySet(s.Ramparts)
	}
	return s.ramparts[p.Key()]
}

// ActiveDefenses returns the defenses able to fire.
func (s *Snapshot) ActiveDefenses() []Defense {
	var out []Defense
	for _, d := range s.Defenses {
		if d.Active {
			out = append(out, d)
		}
	}
	return out
}

// Threatless is true when nothing in the zone can hurt us.
func (s *Snapshot) Threatless() bool {
	return len(s.ActiveDefenses()) == 0 && len(s.Hostiles) == 0
}

func keySet(ps []model.Position) map[string]bool {
	m := make(map[string]bool, len(ps))
	for _, p := range ps {
		m[p.Key()] = true
	}
	return m
}
