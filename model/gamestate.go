package model

// Snapshot is everything the host tells the controller about one tick.
type Snapshot struct {
	Tick       int           `json:"tick"`
	Player     string        `json:"player"`
	Units      []Unit        `json:"units"`
	Structures []Structure   `json:"structures"`
	Markers    []Marker      `json:"markers"`
	Visible    []string      `json:"visible"`
	Squads     []SquadRoster `json:"squads"`
	Moves      []MoveOrder   `json:"moves"`
}

// SquadRoster lists the units the host's composition logic has earmarked
// for a squad. The controller picks roles from these candidates.
type SquadRoster struct {
	ID    string   `json:"id"`
	Units []string `json:"units"`
}

// MoveOrder is a movement wish from the host's own roles (harvesters,
// haulers, builders). It competes with squad movement in the arbiter.
type MoveOrder struct {
	UnitID   string   `json:"unitId"`
	Target   Position `json:"target"`
	TargetID string   `json:"targetId,omitempty"`
	Range    int      `json:"range,omitempty"`
	Tag      string   `json:"tag,omitempty"`
	Priority *int     `json:"priority,omitempty"`
}

// PartType is a body part. Capabilities derive from which parts are still
// intact, so a unit that lost its heal parts stops counting as a healer.
type PartType string

const (
	PartMove         PartType = "move"
	PartWork         PartType = "work"
	PartCarry        PartType = "carry"
	PartAttack       PartType = "attack"
	PartRangedAttack PartType = "ranged_attack"
	PartHeal         PartType = "heal"
	PartTough        PartType = "tough"
	PartSnare        PartType = "snare"
)

// Healing output per intact heal part, per tick.
const (
	HealPower       = 12
	RangedHealPower = 4
)

type Part struct {
	Type PartType `json:"type"`
	HP   int      `json:"hp"`
}

type Unit struct {
	ID       string   `json:"id"`
	Owner    string   `json:"owner"`
	Pos      Position `json:"pos"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"maxHp"`
	Fatigue  int      `json:"fatigue"`
	Spawning bool     `json:"spawning,omitempty"`
	Parts    []Part   `json:"parts"`
}

// ActiveParts counts intact parts of type t.
func (u Unit) ActiveParts(t PartType) int {
	n := 0
	for _, p := range u.Parts {
		if p.Type == t && p.HP > 0 {
			n++
		}
	}
	return n
}

func (u Unit) CanHeal() bool       { return u.ActiveParts(PartHeal) > 0 }
func (u Unit) CanMelee() bool      { return u.ActiveParts(PartAttack) > 0 }
func (u Unit) CanRange() bool      { return u.ActiveParts(PartRangedAttack) > 0 }
func (u Unit) CanImmobilize() bool { return u.ActiveParts(PartSnare) > 0 }
func (u Unit) CanDismantle() bool  { return u.ActiveParts(PartWork) > 0 }

// Locked reports whether the unit cannot move this tick.
func (u Unit) Locked() bool { return u.Fatigue > 0 || u.Spawning }

func (u Unit) Injured() bool { return u.MaxHP > 0 && u.HP < u.MaxHP }

// HealthFraction is HP/MaxHP, or 1 for units reporting no MaxHP.
func (u Unit) HealthFraction() float64 {
	if u.MaxHP <= 0 {
		return 1
	}
	return float64(u.HP) / float64(u.MaxHP)
}

// HealOutput is the adjacent-range healing the unit can apply per tick.
func (u Unit) HealOutput() float64 {
	return float64(u.ActiveParts(PartHeal) * HealPower)
}

type StructureType string

const (
	StructureTower     StructureType = "tower"
	StructureSpawn     StructureType = "spawn"
	StructureCore      StructureType = "core"
	StructureWall      StructureType = "wall"
	StructureRampart   StructureType = "rampart"
	StructureExtension StructureType = "extension"
	StructureStorage   StructureType = "storage"
)

type Structure struct {
	ID     string        `json:"id"`
	Type   StructureType `json:"type"`
	Owner  string        `json:"owner,omitempty"`
	Pos    Position      `json:"pos"`
	HP     int           `json:"hp"`
	MaxHP  int           `json:"maxHp"`
	Energy int           `json:"energy"`
	Active bool          `json:"active"`
}

// Marker is an externally placed named position (a flag). Squads use
// markers as rally and attack anchors.
type Marker struct {
	Name string   `json:"name"`
	Pos  Position `json:"pos"`
}
