package rules

import (
	"testing"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

type recordingSetter struct {
	states  map[string]squad.State
	rescans []string
}

func newRecordingSetter() *recordingSetter {
	return &recordingSetter{states: make(map[string]squad.State)}
}

func (s *recordingSetter) SetState(id string, st squad.State) error {
	if !st.Valid() {
		return squad.ErrUnknownState
	}
	s.states[id] = st
	return nil
}

func (s *recordingSetter) RequestRescan(id string) { s.rescans = append(s.rescans, id) }

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	rules, err := CompileDoctrine(DefaultDoctrine())
	if err != nil {
		t.Fatalf("CompileDoctrine(DefaultDoctrine()) failed: %v", err)
	}
	engine, err := NewEngine(rules)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestDefaultRulesCompile(t *testing.T) {
	engine := defaultEngine(t)
	if len(engine.rules) != 8 {
		t.Errorf("expected 8 rules, got %d", len(engine.rules))
	}
	// Verify priority ordering (descending).
	for i := 1; i < len(engine.rules); i++ {
		if engine.rules[i].Priority > engine.rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				engine.rules[i].Name, engine.rules[i].Priority,
				engine.rules[i-1].Name, engine.rules[i-1].Priority)
		}
	}
}

func TestEvaluateTransitions(t *testing.T) {
	tests := []struct {
		name      string
		env       PostureEnv
		wantRule  string
		wantState squad.State
	}{
		{"assemble", PostureEnv{state: squad.StateInit, alive: 3, lowest: 1}, "assemble", squad.StateForm},
		{"engage", PostureEnv{state: squad.StateForm, alive: 3, lowest: 1, target: true, commit: true}, "engage", squad.StateEngage},
		{"critical injury", PostureEnv{state: squad.StateEngage, alive: 3, lowest: 0.2, target: true, damage: 660, healing: 120}, "retreat-critical", squad.StateRetreat},
		{"overwhelmed", PostureEnv{state: squad.StateEngage, alive: 3, lowest: 1, target: true, damage: 660, healing: 120}, "retreat-overwhelmed", squad.StateRetreat},
		{"still hurt", PostureEnv{state: squad.StateRetreat, alive: 3, lowest: 0.5}, "hold-retreat", squad.StateRetreat},
		{"healed", PostureEnv{state: squad.StateRetreat, alive: 3, lowest: 0.9}, "regroup", squad.StateForm},
		{"wiped out", PostureEnv{state: squad.StateEngage, alive: 0, lowest: 1}, "disband", squad.StateInit},
		{"nothing left", PostureEnv{state: squad.StateEngage, alive: 2, lowest: 1}, "stand-down", squad.StateForm},
	}

	engine := defaultEngine(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setter := newRecordingSetter()
			tc.env.Squad = "sq1"
			fired := engine.Evaluate(tc.env, setter)
			if len(fired) != 1 || fired[0] != tc.wantRule {
				t.Fatalf("fired %v, want [%s]", fired, tc.wantRule)
			}
			if got := setter.states["sq1"]; got != tc.wantState {
				t.Errorf("state = %s, want %s", got, tc.wantState)
			}
		})
	}
}

func TestEvaluateNoTransition(t *testing.T) {
	tests := []struct {
		name string
		env  PostureEnv
	}{
		{"too few to engage", PostureEnv{state: squad.StateForm, alive: 1, lowest: 1, target: true, commit: true}},
		{"defenses too strong", PostureEnv{state: squad.StateForm, alive: 3, lowest: 1, target: true}},
		{"holding the fight", PostureEnv{state: squad.StateEngage, alive: 3, lowest: 1, target: true, damage: 100, healing: 120}},
		{"empty squad", PostureEnv{state: squad.StateInit, lowest: 1}},
	}

	engine := defaultEngine(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setter := newRecordingSetter()
			if fired := engine.Evaluate(tc.env, setter); len(fired) != 0 {
				t.Errorf("fired %v, want none", fired)
			}
			if len(setter.states) != 0 {
				t.Errorf("states changed: %v", setter.states)
			}
		})
	}
}

func TestEvaluateSkipsConditionErrors(t *testing.T) {
	engine, err := NewEngine([]*Rule{
		{Name: "broken", Priority: 10, Category: "x", Exclusive: true, ConditionSrc: `[1, 2][MembersAlive()] == 1`, Action: SetState(squad.StateRetreat)},
		{Name: "fallback", Priority: 5, Category: "x", Exclusive: true, ConditionSrc: `true`, Action: SetState(squad.StateForm)},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	setter := newRecordingSetter()
	fired := engine.Evaluate(PostureEnv{Squad: "sq1", alive: 7}, setter)
	if len(fired) != 1 || fired[0] != "fallback" {
		t.Errorf("fired %v, want [fallback]", fired)
	}
	if setter.states["sq1"] != squad.StateForm {
		t.Errorf("state = %s, want FORM", setter.states["sq1"])
	}
}

func TestNonExclusiveRulesShareCategory(t *testing.T) {
	engine, err := NewEngine([]*Rule{
		{Name: "a", Priority: 10, Category: "targeting", ConditionSrc: `true`, Action: Rescan},
		{Name: "b", Priority: 5, Category: "targeting", ConditionSrc: `true`, Action: Rescan},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	setter := newRecordingSetter()
	fired := engine.Evaluate(PostureEnv{Squad: "sq1"}, setter)
	if len(fired) != 2 {
		t.Errorf("fired %v, want both", fired)
	}
	if len(setter.rescans) != 2 {
		t.Errorf("rescans = %v, want 2", setter.rescans)
	}
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	if _, err := NewEngine([]*Rule{{Name: "typo", ConditionSrc: `MembersAlive( > 1`, Action: Rescan}}); err == nil {
		t.Error("expected a compile error")
	}
	if _, err := NewEngine([]*Rule{{Name: "not-bool", ConditionSrc: `MembersAlive()`, Action: Rescan}}); err == nil {
		t.Error("expected a non-bool condition to be rejected")
	}
	if _, err := NewEngine([]*Rule{{Name: "no-action", ConditionSrc: `true`}}); err == nil {
		t.Error("expected a rule without action to be rejected")
	}
}
