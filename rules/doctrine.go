package rules

import "cmp"

// Doctrine holds the thresholds the posture rules are compiled from, plus
// any extra rules supplied by configuration.
type Doctrine struct {
	Name string `yaml:"name"`
	// RetreatHealth trips RETREAT when any member drops below it.
	RetreatHealth float64 `yaml:"retreat_health"`
	// RegroupHealth is the lowest member health at which a retreating
	// squad forms up again.
	RegroupHealth float64 `yaml:"regroup_health"`
	// DamageTolerance scales healing before comparing it with projected
	// damage; an engaged squad retreats when damage exceeds the product.
	DamageTolerance float64 `yaml:"damage_tolerance"`
	// EngageSize is the minimum number of live members before engaging.
	EngageSize int `yaml:"engage_size"`

	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec is a user-written posture rule: when When holds, the squad moves
// to State.
type RuleSpec struct {
	Name      string `yaml:"name"`
	Priority  int    `yaml:"priority"`
	Category  string `yaml:"category"`
	When      string `yaml:"when"`
	State     string `yaml:"state"`
	Inclusive bool   `yaml:"inclusive"` // let lower rules in the category fire too
}

func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:            "Balanced",
		RetreatHealth:   0.35,
		RegroupHealth:   0.8,
		DamageTolerance: 1.5,
		EngageSize:      2,
	}
}

// Validate clamps all thresholds to their valid ranges. RegroupHealth
// never sits below RetreatHealth.
func (d *Doctrine) Validate() {
	d.RetreatHealth = clamp(d.RetreatHealth, 0, 1)
	d.RegroupHealth = clamp(d.RegroupHealth, d.RetreatHealth, 1)
	d.DamageTolerance = clamp(d.DamageTolerance, 1, 10)
	d.EngageSize = clamp(d.EngageSize, 1, 50)
}

func clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
