package movement

// Tag names the purpose of a movement so callers need not agree on numbers.
type Tag string

const (
	TagEmergency Tag = "emergency"
	TagCombat    Tag = "combat"
	TagPickup    Tag = "pickup"
	TagDelivery  Tag = "delivery"
	TagHarvest   Tag = "harvest"
	TagBuild     Tag = "build"
	TagIdle      Tag = "idle"
)

// Config holds the arbiter's tunables.
type Config struct {
	Priorities    map[Tag]int `yaml:"priorities"`
	FloorPriority int         `yaml:"floor_priority"`
	DefaultRange  int         `yaml:"default_range"`
}

// DefaultConfig orders tags emergency > combat > pickup > delivery > harvest
// > build > idle.
func DefaultConfig() Config {
	return Config{
		Priorities: map[Tag]int{
			TagEmergency: 100,
			TagCombat:    80,
			TagPickup:    60,
			TagDelivery:  50,
			TagHarvest:   40,
			TagBuild:     30,
			TagIdle:      10,
		},
		FloorPriority: 0,
		DefaultRange:  1,
	}
}

// PriorityFor returns the table value for t, or the floor for unknown tags.
func (c Config) PriorityFor(t Tag) int {
	if p, ok := c.Priorities[t]; ok {
		return p
	}
	return c.FloorPriority
}
