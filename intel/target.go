package intel

import (
	"slices"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

// TargetKind says whether a target is a unit or a structure.
type TargetKind int

const (
	KindHostile TargetKind = iota
	KindAsset
)

func (k TargetKind) String() string {
	switch k {
	case KindHostile:
		return "hostile"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Target is a scored candidate for focus fire.
type Target struct {
	ID    string
	Kind  TargetKind
	Pos   model.Position
	Score float64
}

// SelectPrimaryTarget picks the best target in zone. Hostile units are
// preferred; if none clears MinHostileScore, hostile structures are scored
// too and the better of the two wins. Ids in exclude are never chosen.
// It returns nil when the zone has no known threats.
func (c *Cache) SelectPrimaryTarget(zone string, anchor *model.Position, exclude ...string) *Target {
	snap := c.GetIntel(zone)
	if snap == nil {
		return nil
	}

	var best *Target
	for _, h := range snap.Hostiles {
		if slices.Contains(exclude, h.ID) {
			continue
		}
		best = better(best, &Target{ID: h.ID, Kind: KindHostile, Pos: h.Pos, Score: c.scoreHostile(snap, h, anchor)})
	}
	if best != nil && best.Score >= c.cfg.Scoring.MinHostileScore {
		return best
	}

	for _, a := range snap.Assets {
		if slices.Contains(exclude, a.ID) {
			continue
		}
		best = better(best, &Target{ID: a.ID, Kind: KindAsset, Pos: a.Pos, Score: c.scoreAsset(snap, a, anchor)})
	}
	return best
}

// ScoreTarget rescores a known target by id. ok is false when the zone's
// intel no longer lists it.
func (c *Cache) ScoreTarget(zone, id string, anchor *model.Position) (Target, bool) {
	snap := c.GetIntel(zone)
	if snap == nil {
		return Target{}, false
	}
	for _, h := range snap.Hostiles {
		if h.ID == id {
			return Target{ID: h.ID, Kind: KindHostile, Pos: h.Pos, Score: c.scoreHostile(snap, h, anchor)}, true
		}
	}
	for _, a := range snap.Assets {
		if a.ID == id {
			return Target{ID: a.ID, Kind: KindAsset, Pos: a.Pos, Score: c.scoreAsset(snap, a, anchor)}, true
		}
	}
	return Target{}, false
}

// Viable reports whether t is still worth shooting. Structures always are;
// units must clear MinHostileScore.
func (c *Cache) Viable(t Target) bool {
	if t.Kind == KindAsset {
		return true
	}
	return t.Score >= c.cfg.Scoring.MinHostileScore
}

func (c *Cache) scoreHostile(snap *Snapshot, h Hostile, anchor *model.Position) float64 {
	s := c.cfg.Scoring
	score := s.RoleWeights[h.Role] +
		float64(h.Heal)*s.HealBonus +
		float64(h.Ranged)*s.RangedBonus +
		float64(h.Attack)*s.AttackBonus
	score += c.proximity(h.Pos, anchor)
	if snap.Sheltered(h.Pos) {
		score -= s.CoverPenalty
	}
	return score
}

func (c *Cache) scoreAsset(snap *Snapshot, a Asset, anchor *model.Position) float64 {
	s := c.cfg.Scoring
	score := a.Weight
	if a.MaxHP > 0 {
		// Less left to destroy scores higher.
		remaining := float64(a.HP) / float64(a.MaxHP)
		score += (1 - remaining) * s.DamageWeight
	}
	score += c.proximity(a.Pos, anchor)
	if snap.Sheltered(a.Pos) {
		score -= s.CoverPenalty
	}
	return score
}

func (c *Cache) proximity(p model.Position, anchor *model.Position) float64 {
	if anchor == nil {
		return 0
	}
	d := anchor.RangeTo(p)
	if d >= c.cfg.Scoring.ProximityRange {
		return 0
	}
	return float64(c.cfg.Scoring.ProximityRange-d) * c.cfg.Scoring.ProximityBonus
}

// better keeps the higher score; ties go to the lower id so the choice does
// not depend on scan order.
func better(cur, cand *Target) *Target {
	if cur == nil {
		return cand
	}
	if cand.Score > cur.Score || (cand.Score == cur.Score && cand.ID < cur.ID) {
		return cand
	}
	return cur
}
