package squad

import (
	"cmp"
	"errors"
	"log/slog"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/movement"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Mover queues movement intents. *movement.Arbiter satisfies it.
type Mover interface {
	Request(agentID string, dest movement.Destination, opts ...movement.Option) (movement.Decision, error)
}

var _ Mover = (*movement.Arbiter)(nil)

// Tactics turns a squad's record into per-member movement requests and
// combat actions.
type Tactics struct {
	broker  *Broker
	mover   Mover
	actions world.Actions
}

func NewTactics(broker *Broker, mover Mover, actions world.Actions) *Tactics {
	return &Tactics{broker: broker, mover: mover, actions: actions}
}

// Situation is what every member of a squad acts on this tick.
type Situation struct {
	SquadID   string
	State     State
	Formation Formation
	Members   []string
	TargetID  string
	Target    *model.Position // nil when there is no target or it cannot be seen
	Attack    *model.Position
}

func (s Situation) engaged() bool { return s.State == StateEngage && s.TargetID != "" }

// Situation resolves the squad's shared context for this tick.
func (t *Tactics) Situation(squadID string) Situation {
	rec := t.broker.Record(squadID)
	s := Situation{
		SquadID:   squadID,
		State:     rec.State,
		Formation: rec.Formation,
		Members:   rec.Members,
	}
	s.TargetID, _ = t.broker.FocusFireTarget(squadID)
	if f := t.broker.Frame(); f != nil && s.TargetID != "" {
		if p, ok := f.World.Locate(s.TargetID); ok {
			s.Target = &p
		}
	}
	if p, ok := t.broker.AttackAnchor(squadID); ok {
		s.Attack = &p
	}
	return s
}

// DutyFor maps a member to the behaviour it runs. The medic supports when it
// can heal; everyone else fights with what they have.
func DutyFor(r Role, u model.Unit) Duty {
	switch r {
	case RoleMedic:
		if u.CanHeal() {
			return DutySupport
		}
	case RoleLeader, RoleBuddy, RoleNone:
	}
	switch {
	case u.CanMelee():
		return DutyMelee
	case u.CanRange():
		return DutyRanged
	case u.CanHeal():
		return DutySupport
	default:
		return DutyMelee
	}
}

// Run drives every resolvable member of the squad for one tick.
func (t *Tactics) Run(squadID string) {
	f := t.broker.Frame()
	if f == nil {
		return
	}
	s := t.Situation(squadID)
	for _, id := range s.Members {
		u, ok := f.World.Unit(id)
		if !ok {
			continue
		}
		switch DutyFor(s.Formation.RoleOf(id), u) {
		case DutyMelee:
			t.RunMelee(s, u)
		case DutyRanged:
			t.RunRanged(s, u)
		case DutySupport:
			t.RunSupport(s, u)
		}
	}
}

// RunMelee closes on the shared target and strikes once adjacent. The whole
// squad converges on the target, so its tile is never claimed. Without a
// target an engaged member heads for the attack anchor; otherwise it goes
// to rally.
func (t *Tactics) RunMelee(s Situation, u model.Unit) {
	cfg := t.broker.cfg
	if s.engaged() && s.Target != nil {
		t.move(u, movement.ToEntity(s.TargetID), s,
			movement.WithRange(cfg.MeleeRange), movement.WithTarget(s.TargetID), movement.Shared())
		d := u.Pos.RangeTo(*s.Target)
		switch {
		case u.CanMelee() && d <= cfg.MeleeRange:
			t.act(actAttack, u.ID, s.TargetID)
		case u.CanRange() && d <= cfg.RangedAttackRange:
			t.act(actRangedAttack, u.ID, s.TargetID)
		}
		return
	}
	if s.State == StateEngage && s.Attack != nil {
		t.move(u, movement.To(*s.Attack), s, movement.WithRange(1), movement.Shared())
		return
	}
	t.toRally(u, s)
}

// RunRanged holds the standoff band around the target, backing off when
// the target gets closer than that.
func (t *Tactics) RunRanged(s Situation, u model.Unit) {
	cfg := t.broker.cfg
	if s.engaged() && s.Target != nil {
		d := u.Pos.RangeTo(*s.Target)
		if d < cfg.StandoffRange {
			t.move(u, movement.To(*s.Target), s,
				movement.WithFlee(), movement.WithRange(cfg.StandoffRange), movement.Shared())
		} else {
			t.move(u, movement.ToEntity(s.TargetID), s,
				movement.WithRange(cfg.StandoffRange), movement.WithTarget(s.TargetID), movement.Shared())
		}
		if d <= cfg.RangedAttackRange {
			t.act(actRangedAttack, u.ID, s.TargetID)
		}
		return
	}
	if s.State != StateRetreat {
		if leader := s.Formation.Leader; leader != "" && leader != u.ID {
			if _, ok := t.broker.Frame().World.Unit(leader); ok {
				t.move(u, movement.ToEntity(leader), s, movement.WithRange(1), movement.Shared())
				return
			}
		}
	}
	t.toRally(u, s)
}

// RunSupport heals by precedence (self, leader, buddy, nearest injured
// member) and stays close to the group.
func (t *Tactics) RunSupport(s Situation, u model.Unit) {
	cfg := t.broker.cfg
	view := t.broker.Frame().World

	patient, hasPatient := t.healTarget(s, u)
	if hasPatient {
		switch d := u.Pos.RangeTo(patient.Pos); {
		case d <= cfg.HealRange:
			t.act(actHeal, u.ID, patient.ID)
		case d <= cfg.RangedHealRange:
			t.act(actRangedHeal, u.ID, patient.ID)
		}
	}

	if hasPatient && patient.ID != u.ID && u.Pos.RangeTo(patient.Pos) > cfg.GapThreshold {
		t.move(u, movement.ToEntity(patient.ID), s, movement.WithRange(1), movement.Shared())
		return
	}
	if leader := s.Formation.Leader; leader != "" && leader != u.ID {
		if l, ok := view.Unit(leader); ok && u.Pos.RangeTo(l.Pos) > cfg.GapThreshold {
			t.move(u, movement.ToEntity(leader), s, movement.WithRange(1), movement.Shared())
			return
		}
	}
	if s.State == StateEngage && s.Attack != nil {
		t.move(u, movement.To(*s.Attack), s, movement.WithRange(1), movement.Shared())
		return
	}
	t.toRally(u, s)
}

func (t *Tactics) healTarget(s Situation, u model.Unit) (model.Unit, bool) {
	if u.Injured() {
		return u, true
	}
	view := t.broker.Frame().World
	for _, r := range []Role{RoleLeader, RoleBuddy} {
		id := s.Formation.Member(r)
		if id == "" || id == u.ID {
			continue
		}
		if m, ok := view.Unit(id); ok && m.Injured() && m.Pos.SameZone(u.Pos) {
			return m, true
		}
	}

	var best model.Unit
	found := false
	for _, id := range s.Members {
		m, ok := view.Unit(id)
		if !ok || id == u.ID || !m.Injured() || !m.Pos.SameZone(u.Pos) {
			continue
		}
		if !found || closer(u.Pos, m, best) {
			best, found = m, true
		}
	}
	return best, found
}

func closer(from model.Position, a, b model.Unit) bool {
	if c := cmp.Compare(from.RangeTo(a.Pos), from.RangeTo(b.Pos)); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (t *Tactics) toRally(u model.Unit, s Situation) {
	rally := s.Formation.Rally
	if rally == nil {
		slog.Debug("squad has no rally point", "squad", s.SquadID, "unit", u.ID)
		return
	}
	t.move(u, movement.To(*rally), s, movement.WithRange(1), movement.Shared())
}

// move queues a request tagged for the squad's state. Retreat outranks
// everything else an agent might want.
func (t *Tactics) move(u model.Unit, dest movement.Destination, s Situation, opts ...movement.Option) {
	tag := movement.TagCombat
	if s.State == StateRetreat {
		tag = movement.TagEmergency
	}
	opts = append([]movement.Option{movement.WithTag(tag)}, opts...)
	d, err := t.mover.Request(u.ID, dest, opts...)
	switch {
	case errors.Is(err, movement.ErrInvalidDestination):
		slog.Debug("squad move dropped", "squad", s.SquadID, "unit", u.ID, "error", err)
	case err != nil:
		slog.Warn("squad move failed", "squad", s.SquadID, "unit", u.ID, "error", err)
	case !d.Accepted():
		slog.Debug("squad move outranked", "squad", s.SquadID, "unit", u.ID, "priority", d.Priority)
	}
}

type action int

const (
	actAttack action = iota
	actRangedAttack
	actHeal
	actRangedHeal
)

func (a action) String() string {
	switch a {
	case actAttack:
		return "attack"
	case actRangedAttack:
		return "ranged_attack"
	case actHeal:
		return "heal"
	case actRangedHeal:
		return "ranged_heal"
	default:
		return "unknown"
	}
}

func (t *Tactics) act(a action, unitID, targetID string) {
	if t.actions == nil {
		return
	}
	ctx := t.broker.Frame().Ctx
	var err error
	switch a {
	case actAttack:
		err = t.actions.Attack(ctx, unitID, targetID)
	case actRangedAttack:
		err = t.actions.RangedAttack(ctx, unitID, targetID)
	case actHeal:
		err = t.actions.Heal(ctx, unitID, targetID)
	case actRangedHeal:
		err = t.actions.RangedHeal(ctx, unitID, targetID)
	}
	if err != nil {
		slog.Warn("squad action failed", "action", a, "unit", unitID, "target", targetID, "error", err)
	}
}
