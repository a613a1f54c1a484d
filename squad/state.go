package squad

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned for a state outside the four defined ones.
var ErrUnknownState = errors.New("squad: unknown state")

// State is the squad's position in its lifecycle. The record's State is the
// only place it lives; everything else reads it.
type State int

const (
	StateInit    State = iota // no roster assembled
	StateForm                 // gathering at the rally point
	StateEngage               // shared target acquired
	StateRetreat              // falling back to rally, no new targets
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateForm:
		return "FORM"
	case StateEngage:
		return "ENGAGE"
	case StateRetreat:
		return "RETREAT"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) Valid() bool {
	return s >= StateInit && s <= StateRetreat
}

// ParseState accepts the names printed by String, in any case.
func ParseState(name string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INIT":
		return StateInit, nil
	case "FORM":
		return StateForm, nil
	case "ENGAGE":
		return StateEngage, nil
	case "RETREAT":
		return StateRetreat, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Role is a squad member's slot in the formation.
type Role int

const (
	RoleNone Role = iota
	RoleLeader
	RoleBuddy
	RoleMedic
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleBuddy:
		return "buddy"
	case RoleMedic:
		return "medic"
	default:
		return "none"
	}
}

// Duty is the behaviour a member runs each tick.
type Duty int

const (
	DutyMelee Duty = iota
	DutyRanged
	DutySupport
)

func (d Duty) String() string {
	switch d {
	case DutyMelee:
		return "melee"
	case DutyRanged:
		return "ranged"
	case DutySupport:
		return "support"
	default:
		return "unknown"
	}
}
