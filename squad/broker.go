// Package squad owns squad records: lifecycle state, role assignment and the
// shared focus-fire target, plus the per-member tactics that act on them.
package squad

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/intel"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/tick"
)

// Config tunes squad behaviour. Ranges are in tiles.
type Config struct {
	StandoffRange     int    `yaml:"standoff_range"`
	GapThreshold      int    `yaml:"gap_threshold"`
	MeleeRange        int    `yaml:"melee_range"`
	RangedAttackRange int    `yaml:"ranged_attack_range"`
	HealRange         int    `yaml:"heal_range"`
	RangedHealRange   int    `yaml:"ranged_heal_range"`
	AttackSuffix      string `yaml:"attack_suffix"`
}

func DefaultConfig() Config {
	return Config{
		StandoffRange:     3,
		GapThreshold:      2,
		MeleeRange:        1,
		RangedAttackRange: 3,
		HealRange:         1,
		RangedHealRange:   3,
		AttackSuffix:      ":attack",
	}
}

// Targeter is the slice of the threat cache the broker needs.
// *intel.Cache satisfies it.
type Targeter interface {
	SelectPrimaryTarget(zone string, anchor *model.Position, exclude ...string) *intel.Target
	ScoreTarget(zone, id string, anchor *model.Position) (intel.Target, bool)
	Viable(t intel.Target) bool
	MarkEngaged(zone string)
}

var _ Targeter = (*intel.Cache)(nil)

// Broker is the single writer of squad records.
type Broker struct {
	cfg     Config
	intel   Targeter
	store   store.Store
	frame   *tick.Frame
	records map[string]*Record
	rescan  map[string]bool
}

// NewBroker returns a broker persisting to st. A nil st keeps records in
// memory only.
func NewBroker(cfg Config, targeter Targeter, st store.Store) *Broker {
	return &Broker{
		cfg:     cfg,
		intel:   targeter,
		store:   st,
		records: make(map[string]*Record),
		rescan:  make(map[string]bool),
	}
}

func (b *Broker) StartTick(f *tick.Frame) {
	b.frame = f
}

// Frame is the frame bound by the last StartTick.
func (b *Broker) Frame() *tick.Frame { return b.frame }

// State returns the squad's current state; unknown squads are StateInit.
func (b *Broker) State(id string) State {
	return b.record(id).State
}

// SetState moves the squad to s. An invalid s is rejected and changes
// nothing. The tick's shared target is left alone: RETREAT suppresses it on
// the next lookup, and any other state keeps what was resolved this tick.
func (b *Broker) SetState(id string, s State) error {
	if !s.Valid() {
		return ErrUnknownState
	}
	rec := b.record(id)
	if rec.State == s {
		return nil
	}
	slog.Info("squad state changed", "squad", id, "from", rec.State, "to", s)
	rec.State = s
	if s == StateEngage && rec.TargetID != "" && rec.Zone != "" && b.intel != nil {
		b.intel.MarkEngaged(rec.Zone)
	}
	b.save(id, rec)
	return nil
}

// Record returns a copy of the squad's record.
func (b *Broker) Record(id string) Record {
	return b.record(id).clone()
}

// Clear forgets the squad entirely.
func (b *Broker) Clear(id string) {
	delete(b.records, id)
	delete(b.rescan, id)
	if b.frame != nil {
		b.frame.ForgetFocusTarget(id)
	}
	if b.store == nil {
		return
	}
	if err := b.store.Delete(b.ctx(), storeKey(id)); err != nil {
		slog.Warn("failed to delete squad record", "squad", id, "error", err)
	}
}

// RequestRescan makes the next resolution ignore the previous target and
// pick afresh. A target already resolved this tick stays until the next
// tick.
func (b *Broker) RequestRescan(id string) {
	b.rescan[id] = true
}

// AssignFormation picks the leader, medic and buddy from candidates and
// resolves the rally point. Candidates that no longer resolve are dropped.
// The leader is the first melee-capable candidate, else the first one; the
// medic the first healer other than the leader; the buddy the first ranged
// unit other than those two, else any remaining candidate.
func (b *Broker) AssignFormation(id string, candidates []string) Formation {
	rec := b.record(id)

	var units []model.Unit
	if b.frame != nil {
		for _, cid := range candidates {
			if u, ok := b.frame.World.Unit(cid); ok {
				units = append(units, u)
			}
		}
	}

	pick := func(match func(model.Unit) bool, skip ...string) string {
		for _, u := range units {
			if slices.Contains(skip, u.ID) {
				continue
			}
			if match == nil || match(u) {
				return u.ID
			}
		}
		return ""
	}

	var f Formation
	f.Leader = pick(model.Unit.CanMelee)
	if f.Leader == "" {
		f.Leader = pick(nil)
	}
	f.Medic = pick(model.Unit.CanHeal, f.Leader)
	f.Buddy = pick(model.Unit.CanRange, f.Leader, f.Medic)
	if f.Buddy == "" {
		f.Buddy = pick(nil, f.Leader, f.Medic)
	}
	f.Rally = b.rally(id, rec)

	members := make([]string, len(units))
	for i, u := range units {
		members[i] = u.ID
	}

	if !formationEqual(rec.Formation, f) || !slices.Equal(rec.Members, members) {
		slog.Debug("squad formation assigned", "squad", id, "leader", f.Leader, "buddy", f.Buddy, "medic", f.Medic, "members", len(members))
		rec.Formation = f
		rec.Members = members
		b.save(id, rec)
	}
	return rec.clone().Formation
}

// rally prefers the live marker named after the squad and falls back to
// the last persisted rally point.
func (b *Broker) rally(id string, rec *Record) *model.Position {
	if b.frame != nil {
		if m, ok := b.frame.World.Marker(id); ok && m.Pos.Valid() {
			p := m.Pos
			return &p
		}
	}
	if rec.Formation.Rally != nil {
		p := *rec.Formation.Rally
		return &p
	}
	return nil
}

// AttackAnchor is the squad's attack marker, if placed.
func (b *Broker) AttackAnchor(id string) (model.Position, bool) {
	if b.frame == nil {
		return model.Position{}, false
	}
	m, ok := b.frame.World.Marker(id + b.cfg.AttackSuffix)
	if !ok || !m.Pos.Valid() {
		return model.Position{}, false
	}
	return m.Pos, true
}

// FocusFireTarget returns the squad's shared target for this tick, resolving
// it on the first call. A retreating squad never has one. The previous
// target is kept while it still resolves and scores as viable, unless a
// rescan was requested.
func (b *Broker) FocusFireTarget(id string) (string, bool) {
	if b.frame == nil {
		return "", false
	}
	rec := b.record(id)

	if rec.State == StateRetreat {
		b.frame.SetFocusTarget(id, "")
		if rec.TargetID != "" {
			rec.TargetID = ""
			b.save(id, rec)
		}
		return "", false
	}

	if target, ok := b.frame.FocusTarget(id); ok {
		return target, target != ""
	}

	target := ""
	zone, anchor := b.locate(id, rec)
	if zone != "" && b.intel != nil {
		target = b.resolveTarget(id, rec, zone, anchor)
	}
	delete(b.rescan, id)

	if target != "" && rec.State == StateEngage {
		b.intel.MarkEngaged(zone)
	}
	b.frame.SetFocusTarget(id, target)
	if target != rec.TargetID || zone != rec.Zone {
		if target != rec.TargetID {
			slog.Debug("squad focus target changed", "squad", id, "from", rec.TargetID, "to", target, "zone", zone)
		}
		rec.TargetID = target
		rec.Zone = zone
		b.save(id, rec)
	}
	return target, target != ""
}

func (b *Broker) resolveTarget(id string, rec *Record, zone string, anchor *model.Position) string {
	if prev := rec.TargetID; prev != "" && !b.rescan[id] && b.stillValid(zone, prev, anchor) {
		return prev
	}
	// Cached intel can still list units that left a zone we now see; skip
	// those and take the next best.
	exclude := slices.Clone(rec.Members)
	for {
		picked := b.intel.SelectPrimaryTarget(zone, anchor, exclude...)
		if picked == nil {
			return ""
		}
		if b.resolvable(zone, picked.ID) {
			return picked.ID
		}
		exclude = append(exclude, picked.ID)
	}
}

func (b *Broker) stillValid(zone, id string, anchor *model.Position) bool {
	t, ok := b.intel.ScoreTarget(zone, id, anchor)
	if !ok || !b.intel.Viable(t) {
		return false
	}
	return b.resolvable(zone, id)
}

// resolvable is false only when zone is in vision and id is not in it.
func (b *Broker) resolvable(zone, id string) bool {
	view := b.frame.World
	if !view.Observable(zone) {
		return true
	}
	_, found := view.Locate(id)
	return found
}

// locate finds the zone the squad is fighting in and the position targets
// are scored from. A placed attack marker names the zone; the first
// resolvable member is the anchor when it already stands there, the marker
// otherwise. Without a marker the member's zone is used, then the rally
// point's.
func (b *Broker) locate(id string, rec *Record) (string, *model.Position) {
	view := b.frame.World
	var lead *model.Position
	for _, mid := range append([]string{rec.Formation.Leader}, rec.Members...) {
		if mid == "" {
			continue
		}
		if u, ok := view.Unit(mid); ok && u.Pos.Zone != "" {
			p := u.Pos
			lead = &p
			break
		}
	}
	if p, ok := b.AttackAnchor(id); ok {
		if lead != nil && lead.SameZone(p) {
			return p.Zone, lead
		}
		return p.Zone, &p
	}
	if lead != nil {
		return lead.Zone, lead
	}
	if r := b.rally(id, rec); r != nil {
		return r.Zone, r
	}
	return "", nil
}

func storeKey(id string) string { return "squad:" + id }

func (b *Broker) ctx() context.Context {
	if b.frame != nil {
		return b.frame.Ctx
	}
	return context.Background()
}

// record returns the live record for id, loading it from the store or
// creating a default one.
func (b *Broker) record(id string) *Record {
	if rec, ok := b.records[id]; ok {
		return rec
	}
	rec := &Record{State: StateInit}
	if b.store != nil {
		var stored Record
		found, err := store.GetJSON(b.ctx(), b.store, storeKey(id), &stored)
		switch {
		case err != nil:
			slog.Warn("discarding unreadable squad record", "squad", id, "error", err)
			if errors.Is(err, store.ErrCorrupt) {
				if delErr := b.store.Delete(b.ctx(), storeKey(id)); delErr != nil {
					slog.Warn("failed to delete squad record", "squad", id, "error", delErr)
				}
			}
		case found && stored.State.Valid():
			rec = &stored
		}
	}
	b.records[id] = rec
	return rec
}

func (b *Broker) save(id string, rec *Record) {
	if b.frame != nil {
		rec.UpdatedAt = b.frame.Tick
	}
	if b.store == nil {
		return
	}
	if err := store.PutJSON(b.ctx(), b.store, storeKey(id), rec); err != nil {
		slog.Warn("failed to persist squad record", "squad", id, "error", err)
	}
}

func formationEqual(a, b Formation) bool {
	if a.Leader != b.Leader || a.Buddy != b.Buddy || a.Medic != b.Medic {
		return false
	}
	if (a.Rally == nil) != (b.Rally == nil) {
		return false
	}
	return a.Rally == nil || *a.Rally == *b.Rally
}
