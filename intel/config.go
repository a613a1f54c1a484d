package intel

// Config tunes freshness windows, the tower damage model and target scoring.
// TTLs are in ticks.
type Config struct {
	FreshTTL          int `yaml:"fresh_ttl"`
	RetainTTL         int `yaml:"retain_ttl"`
	EngagedRecountTTL int `yaml:"engaged_recount_ttl"`
	EngagedWindow     int `yaml:"engaged_window"`

	NearRange       int     `yaml:"near_range"`
	FarRange        int     `yaml:"far_range"`
	MaxDamage       float64 `yaml:"max_damage"`
	MinDamage       float64 `yaml:"min_damage"`
	SafetyMargin    float64 `yaml:"safety_margin"`
	TowerEnergyCost int     `yaml:"tower_energy_cost"`

	Scoring Scoring `yaml:"scoring"`
}

// Scoring weights for target selection.
type Scoring struct {
	MinHostileScore float64            `yaml:"min_hostile_score"`
	RoleWeights     map[Role]float64   `yaml:"role_weights"`
	HealBonus       float64            `yaml:"heal_bonus"`
	RangedBonus     float64            `yaml:"ranged_bonus"`
	AttackBonus     float64            `yaml:"attack_bonus"`
	ProximityRange  int                `yaml:"proximity_range"`
	ProximityBonus  float64            `yaml:"proximity_bonus"`
	CoverPenalty    float64            `yaml:"cover_penalty"`
	AssetWeights    map[string]float64 `yaml:"asset_weights"`
	DamageWeight    float64            `yaml:"damage_weight"`
}

// Asset categories used by Scoring.AssetWeights.
const (
	AssetCore  = "core"
	AssetTower = "tower"
	AssetSpawn = "spawn"
	AssetOther = "other"
)

// DefaultConfig models a tower that deals 600 within 5 tiles, falling off
// linearly to 150 at 20 and beyond, with 10% added for safety.
func DefaultConfig() Config {
	return Config{
		FreshTTL:          25,
		RetainTTL:         1500,
		EngagedRecountTTL: 3,
		EngagedWindow:     10,
		NearRange:         5,
		FarRange:          20,
		MaxDamage:         600,
		MinDamage:         150,
		SafetyMargin:      1.1,
		TowerEnergyCost:   10,
		Scoring: Scoring{
			MinHostileScore: 20,
			RoleWeights: map[Role]float64{
				RoleHealer:  50,
				RoleRanged:  40,
				RoleMelee:   30,
				RoleSapper:  20,
				RoleGeneric: 10,
			},
			HealBonus:      2,
			RangedBonus:    1.5,
			AttackBonus:    1,
			ProximityRange: 20,
			ProximityBonus: 1,
			CoverPenalty:   25,
			AssetWeights: map[string]float64{
				AssetCore:  40,
				AssetTower: 30,
				AssetSpawn: 20,
				AssetOther: 5,
			},
			DamageWeight: 20,
		},
	}
}
