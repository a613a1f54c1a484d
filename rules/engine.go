// Package rules decides squad posture. Conditions are expr programs over a
// PostureEnv; actions move the squad's state through the broker.
package rules

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

// Engine runs compiled rules against one squad at a time.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, so a squad changes state at most once per tick.
type Engine struct {
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Names lists the rules in evaluation order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Evaluate runs every rule against env and returns the names of those that
// fired. Condition and action errors are logged and skipped.
func (e *Engine) Evaluate(env PostureEnv, setter StateSetter) []string {
	fired := make(map[string]bool) // category → exclusive rule already fired
	var names []string

	for _, r := range e.rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "squad", env.Squad, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		names = append(names, r.Name)
		slog.Debug("rule fired", "rule", r.Name, "squad", env.Squad, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env, setter); err != nil {
			slog.Error("rule action error", "rule", r.Name, "squad", env.Squad, "error", err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if r.Action == nil {
			return nil, fmt.Errorf("compile rule %q: no action", r.Name)
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(PostureEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	slices.SortStableFunc(rules, func(a, b *Rule) int {
		return b.Priority - a.Priority
	})
	return rules, nil
}

// Orchestrator evaluates the posture rules for each squad, reading the
// broker and the threat cache to build the squad's PostureEnv.
type Orchestrator struct {
	engine   *Engine
	broker   *squad.Broker
	assessor Assessor
}

func NewOrchestrator(engine *Engine, broker *squad.Broker, assessor Assessor) *Orchestrator {
	return &Orchestrator{engine: engine, broker: broker, assessor: assessor}
}

// Env builds the squad's current PostureEnv. The squad's zone is its attack
// anchor's when one is placed, else the zone its target was resolved in,
// else its leader's.
func (o *Orchestrator) Env(id string) PostureEnv {
	f := o.broker.Frame()
	if f == nil {
		return PostureEnv{Squad: id}
	}
	_, hasTarget := o.broker.FocusFireTarget(id)
	rec := o.broker.Record(id)

	var members []model.Unit
	for _, mid := range rec.Members {
		if u, ok := f.World.Unit(mid); ok {
			members = append(members, u)
		}
	}

	zone := rec.Zone
	if p, ok := o.broker.AttackAnchor(id); ok {
		zone = p.Zone
	} else if zone == "" && len(members) > 0 {
		zone = members[0].Pos.Zone
	}
	return newPostureEnv(id, f.Tick, zone, rec.State, members, hasTarget, o.assessor)
}

// Run evaluates the rules for one squad and returns the names that fired.
func (o *Orchestrator) Run(id string) []string {
	return o.engine.Evaluate(o.Env(id), o.broker)
}
