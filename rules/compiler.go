package rules

import (
	"fmt"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

// CategoryPosture groups the rules that pick a squad's state. Only one of
// them fires per squad per tick.
const CategoryPosture = "posture"

// CompileDoctrine generates the posture rule set from a doctrine's
// thresholds and appends its extra rules. Built-in conditions are produced
// with fmt.Sprintf from clamped numbers and always compile; extra rules can
// fail, which is reported here rather than at evaluation time.
func CompileDoctrine(d Doctrine) ([]*Rule, error) {
	d.Validate()
	var rules []*Rule

	// --- Trip conditions ---

	rules = append(rules, &Rule{
		Name:         "disband",
		Priority:     1000,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: `MembersAlive() == 0 && State() != "INIT"`,
		Action:       SetState(squad.StateInit),
	})

	rules = append(rules, &Rule{
		Name:         "retreat-critical",
		Priority:     950,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`State() != "RETREAT" && State() != "INIT" && LowestHealth() < %.2f`, d.RetreatHealth),
		Action:       SetState(squad.StateRetreat),
	})

	rules = append(rules, &Rule{
		Name:         "retreat-overwhelmed",
		Priority:     900,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`State() == "ENGAGE" && ProjectedDamage() > SustainedHealing() * %.2f`, d.DamageTolerance),
		Action:       SetState(squad.StateRetreat),
	})

	// --- Recovery ---

	rules = append(rules, &Rule{
		Name:         "hold-retreat",
		Priority:     850,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`State() == "RETREAT" && LowestHealth() < %.2f`, d.RegroupHealth),
		Action:       SetState(squad.StateRetreat),
	})

	rules = append(rules, &Rule{
		Name:         "regroup",
		Priority:     800,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: `State() == "RETREAT"`,
		Action:       SetState(squad.StateForm),
	})

	// --- Lifecycle ---

	rules = append(rules, &Rule{
		Name:         "engage",
		Priority:     700,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`State() == "FORM" && MembersAlive() >= %d && HasTarget() && CommitAssault()`, d.EngageSize),
		Action:       SetState(squad.StateEngage),
	})

	rules = append(rules, &Rule{
		Name:         "stand-down",
		Priority:     650,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: `State() == "ENGAGE" && !HasTarget() && !ThreatKnown()`,
		Action:       SetState(squad.StateForm),
	})

	rules = append(rules, &Rule{
		Name:         "assemble",
		Priority:     600,
		Category:     CategoryPosture,
		Exclusive:    true,
		ConditionSrc: `State() == "INIT" && MembersAlive() > 0`,
		Action:       SetState(squad.StateForm),
	})

	for _, spec := range d.Rules {
		r, err := compileSpec(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func compileSpec(spec RuleSpec) (*Rule, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("rule with condition %q has no name", spec.When)
	}
	if spec.When == "" {
		return nil, fmt.Errorf("rule %q: empty condition", spec.Name)
	}
	category := spec.Category
	if category == "" {
		category = CategoryPosture
	}
	r := &Rule{
		Name:         spec.Name,
		Priority:     spec.Priority,
		Category:     category,
		Exclusive:    !spec.Inclusive,
		ConditionSrc: spec.When,
	}
	if spec.State == "rescan" {
		r.Action = Rescan
		return r, nil
	}
	s, err := squad.ParseState(spec.State)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
	}
	r.Action = SetState(s)
	return r, nil
}
