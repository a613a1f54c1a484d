package squad

import "github.com/BenvolioDAT/BeeHiveMind-sub002/model"

// Formation is the role assignment for one squad.
type Formation struct {
	Leader string          `json:"leader,omitempty"`
	Buddy  string          `json:"buddy,omitempty"`
	Medic  string          `json:"medic,omitempty"`
	Rally  *model.Position `json:"rally,omitempty"`
}

// Member returns the unit id holding role r, or "".
func (f Formation) Member(r Role) string {
	switch r {
	case RoleLeader:
		return f.Leader
	case RoleBuddy:
		return f.Buddy
	case RoleMedic:
		return f.Medic
	case RoleNone:
		return ""
	}
	return ""
}

// RoleOf returns the role id holds, RoleNone for plain members.
func (f Formation) RoleOf(id string) Role {
	switch {
	case id == "":
		return RoleNone
	case id == f.Leader:
		return RoleLeader
	case id == f.Medic:
		return RoleMedic
	case id == f.Buddy:
		return RoleBuddy
	}
	return RoleNone
}

// Record is the persistent state of one squad. Members and targets are
// stored by id only and re-resolved every tick.
type Record struct {
	State     State     `json:"state"`
	Formation Formation `json:"formation"`
	Members   []string  `json:"members,omitempty"`
	TargetID  string    `json:"targetId,omitempty"`
	Zone      string    `json:"zone,omitempty"`
	UpdatedAt int       `json:"updatedAt"`
}

func (r Record) clone() Record {
	out := r
	out.Members = append([]string(nil), r.Members...)
	if r.Formation.Rally != nil {
		rally := *r.Formation.Rally
		out.Formation.Rally = &rally
	}
	return out
}
