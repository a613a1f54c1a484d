package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/expr-lang/expr"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

func TestCompileDoctrineBalanced(t *testing.T) {
	rules, err := CompileDoctrine(DefaultDoctrine())
	if err != nil {
		t.Fatalf("CompileDoctrine failed: %v", err)
	}

	// Verify all rules compile with expr
	for _, r := range rules {
		_, err := expr.Compile(r.ConditionSrc, expr.Env(PostureEnv{}), expr.AsBool())
		if err != nil {
			t.Errorf("rule %q failed to compile: %v\ncondition: %s", r.Name, err, r.ConditionSrc)
		}
		if r.Category != CategoryPosture || !r.Exclusive {
			t.Errorf("rule %q should be an exclusive posture rule", r.Name)
		}
	}

	names := map[string]bool{
		"disband":             false,
		"retreat-critical":    false,
		"retreat-overwhelmed": false,
		"hold-retreat":        false,
		"regroup":             false,
		"engage":              false,
		"stand-down":          false,
		"assemble":            false,
	}
	for _, r := range rules {
		if _, ok := names[r.Name]; ok {
			names[r.Name] = true
		}
	}
	for name, found := range names {
		if !found {
			t.Errorf("rule %q missing from compiled doctrine", name)
		}
	}
}

func TestCompileDoctrineInterpolatesThresholds(t *testing.T) {
	d := Doctrine{RetreatHealth: 0.25, RegroupHealth: 0.9, DamageTolerance: 2, EngageSize: 4}
	rules, err := CompileDoctrine(d)
	if err != nil {
		t.Fatalf("CompileDoctrine failed: %v", err)
	}
	want := map[string]string{
		"retreat-critical":    "LowestHealth() < 0.25",
		"hold-retreat":        "LowestHealth() < 0.90",
		"retreat-overwhelmed": "SustainedHealing() * 2.00",
		"engage":              "MembersAlive() >= 4",
	}
	for _, r := range rules {
		if frag, ok := want[r.Name]; ok && !strings.Contains(r.ConditionSrc, frag) {
			t.Errorf("rule %q condition %q does not contain %q", r.Name, r.ConditionSrc, frag)
		}
	}
}

func TestCompileDoctrineExtraRules(t *testing.T) {
	d := DefaultDoctrine()
	d.Rules = []RuleSpec{
		{Name: "hold-at-dawn", Priority: 1100, When: `Tick < 100`, State: "form"},
		{Name: "reconsider", Priority: 50, Category: "targeting", When: `HasTarget() && !CommitAssault()`, State: "rescan"},
	}
	rules, err := CompileDoctrine(d)
	if err != nil {
		t.Fatalf("CompileDoctrine failed: %v", err)
	}
	engine, err := NewEngine(rules)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if engine.Names()[0] != "hold-at-dawn" {
		t.Errorf("first rule = %q, want hold-at-dawn", engine.Names()[0])
	}

	setter := newRecordingSetter()
	fired := engine.Evaluate(PostureEnv{Squad: "sq1", Tick: 50, state: squad.StateEngage, alive: 2, lowest: 1, target: true}, setter)
	if len(fired) != 2 || fired[0] != "hold-at-dawn" || fired[1] != "reconsider" {
		t.Errorf("fired %v, want [hold-at-dawn reconsider]", fired)
	}
	if setter.states["sq1"] != squad.StateForm {
		t.Errorf("state = %s, want FORM", setter.states["sq1"])
	}
	if len(setter.rescans) != 1 {
		t.Errorf("rescans = %v, want one", setter.rescans)
	}
}

func TestCompileDoctrineRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec RuleSpec
	}{
		{"unknown state", RuleSpec{Name: "x", When: "true", State: "charge"}},
		{"no name", RuleSpec{When: "true", State: "form"}},
		{"no condition", RuleSpec{Name: "x", State: "form"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := DefaultDoctrine()
			d.Rules = []RuleSpec{tc.spec}
			if _, err := CompileDoctrine(d); err == nil {
				t.Error("expected an error")
			}
		})
	}

	d := DefaultDoctrine()
	d.Rules = []RuleSpec{{Name: "x", When: "true", State: "charge"}}
	_, err := CompileDoctrine(d)
	if !errors.Is(err, squad.ErrUnknownState) {
		t.Errorf("err = %v, want ErrUnknownState", err)
	}
}
