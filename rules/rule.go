package rules

import (
	"github.com/expr-lang/expr/vm"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

// StateSetter is the part of the squad broker rules may drive.
// *squad.Broker satisfies it.
type StateSetter interface {
	SetState(id string, s squad.State) error
	RequestRescan(id string)
}

// ActionFunc changes a squad when its rule's condition holds.
type ActionFunc func(env PostureEnv, s StateSetter) error

// Rule is a condition → action pair evaluated once per squad per tick.
// Within a Category, the first exclusive rule to fire blocks the rest.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}

// SetState is the action of every posture rule: move the squad to s.
func SetState(s squad.State) ActionFunc {
	return func(env PostureEnv, setter StateSetter) error {
		return setter.SetState(env.Squad, s)
	}
}

// Rescan asks the broker to drop the squad's sticky target.
func Rescan(env PostureEnv, setter StateSetter) error {
	setter.RequestRescan(env.Squad)
	return nil
}
