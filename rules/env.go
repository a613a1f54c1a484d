package rules

import (
	"math"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/intel"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
)

// PostureEnv is one squad's situation, exposed to expr conditions through
// its exported fields and methods.
type PostureEnv struct {
	Squad string
	Tick  int
	Zone  string

	state   squad.State
	alive   int
	lowest  float64
	target  bool
	threat  bool
	damage  float64
	healing float64
	commit  bool
}

// Assessor is the slice of the threat cache posture rules read.
// *intel.Cache satisfies it.
type Assessor interface {
	GetIntel(zone string) *intel.Snapshot
	WorstCaseDamage(zone string, units []model.Unit) (float64, bool)
	ShouldCommitAssault(zone string, units []model.Unit) bool
}

var _ Assessor = (*intel.Cache)(nil)

func newPostureEnv(id string, tick int, zone string, state squad.State, members []model.Unit, hasTarget bool, a Assessor) PostureEnv {
	env := PostureEnv{
		Squad:   id,
		Tick:    tick,
		Zone:    zone,
		state:   state,
		alive:   len(members),
		lowest:  1,
		target:  hasTarget,
		healing: intel.TotalSustainedHealing(members),
	}
	for _, u := range members {
		env.lowest = math.Min(env.lowest, u.HealthFraction())
	}
	if zone == "" || a == nil {
		return env
	}
	if snap := a.GetIntel(zone); snap != nil {
		env.threat = !snap.Threatless()
	}
	env.damage, _ = a.WorstCaseDamage(zone, members)
	env.commit = a.ShouldCommitAssault(zone, members)
	return env
}

// State is the squad's state name: INIT, FORM, ENGAGE or RETREAT.
func (e PostureEnv) State() string { return e.state.String() }

func (e PostureEnv) MembersAlive() int { return e.alive }

// LowestHealth is the smallest HP fraction among live members, 1 when
// there are none.
func (e PostureEnv) LowestHealth() float64 { return e.lowest }

func (e PostureEnv) HasTarget() bool { return e.target }

// ThreatKnown is true when intel for the squad's zone lists anything able
// to hurt it.
func (e PostureEnv) ThreatKnown() bool { return e.threat }

// ProjectedDamage is the worst per-tick defense damage any member would
// take in the squad's zone.
func (e PostureEnv) ProjectedDamage() float64 { return e.damage }

func (e PostureEnv) SustainedHealing() float64 { return e.healing }

func (e PostureEnv) CommitAssault() bool { return e.commit }
