package ipc

// Command types sent to the host. The host executes them in the order
// received within a tick.
const (
	TypeMove         = "move"
	TypeAttack       = "attack"
	TypeRangedAttack = "ranged_attack"
	TypeHeal         = "heal"
	TypeRangedHeal   = "ranged_heal"
)

// MoveCommand asks the host's pathing engine to step a unit toward (or,
// with Flee, away from) a tile.
type MoveCommand struct {
	UnitID      string         `json:"unit_id"`
	Zone        string         `json:"zone"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Range       int            `json:"range"`
	ReusePath   int            `json:"reuse_path,omitempty"`
	IgnoreUnits bool           `json:"ignore_units,omitempty"`
	Flee        bool           `json:"flee,omitempty"`
	Costs       map[string]int `json:"costs,omitempty"`
}

// TargetCommand is shared by attack, ranged_attack, heal and ranged_heal.
type TargetCommand struct {
	UnitID   string `json:"unit_id"`
	TargetID string `json:"target_id"`
}
