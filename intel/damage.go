package intel

import "github.com/BenvolioDAT/BeeHiveMind-sub002/model"

// TowerDamage is one defense's damage at range r before the safety margin:
// MaxDamage up to NearRange, linear down to MinDamage at FarRange, MinDamage
// beyond.
func (c Config) TowerDamage(r int) float64 {
	switch {
	case r <= c.NearRange:
		return c.MaxDamage
	case r >= c.FarRange:
		return c.MinDamage
	}
	span := float64(c.FarRange - c.NearRange)
	t := float64(r-c.NearRange) / span
	return c.MaxDamage - (c.MaxDamage-c.MinDamage)*t
}

// EstimateStaticDefenseDamage sums the damage every active defense in zone
// would deal to a unit standing at pos, with the safety margin applied. A
// cataloged cover tile takes nothing. Unknown zones report 0; callers that
// care must check GetIntel themselves.
func (c *Cache) EstimateStaticDefenseDamage(zone string, pos model.Position) float64 {
	snap := c.GetIntel(zone)
	if snap == nil {
		return 0
	}
	return c.damageAt(snap, pos)
}

func (c *Cache) damageAt(snap *Snapshot, pos model.Position) float64 {
	if snap.Covered(pos) {
		return 0
	}
	total := 0.0
	for _, d := range snap.ActiveDefenses() {
		total += c.cfg.TowerDamage(d.Pos.RangeTo(pos))
	}
	return total * c.cfg.SafetyMargin
}

// edgeDamage is the damage a unit would take at the far edge of every
// defense's falloff, the least it can expect on entering the zone.
func (c *Cache) edgeDamage(snap *Snapshot) float64 {
	return float64(len(snap.ActiveDefenses())) * c.cfg.MinDamage * c.cfg.SafetyMargin
}
