package intel

import "github.com/BenvolioDAT/BeeHiveMind-sub002/model"

// TotalSustainedHealing is the healing the group can put out every tick.
func TotalSustainedHealing(units []model.Unit) float64 {
	total := 0.0
	for _, u := range units {
		total += u.HealOutput()
	}
	return total
}

// WorstCaseDamage is the highest estimated defense damage any unit in the
// group would take in zone. Units outside the zone are valued at the edge
// of the falloff, where they would first come under fire. ok is false for
// an unknown zone.
func (c *Cache) WorstCaseDamage(zone string, units []model.Unit) (worst float64, ok bool) {
	snap := c.GetIntel(zone)
	if snap == nil {
		return 0, false
	}
	for _, u := range units {
		d := c.edgeDamage(snap)
		if u.Pos.Zone == zone {
			d = c.damageAt(snap, u.Pos)
		}
		worst = max(worst, d)
	}
	return worst, true
}

// ShouldCommitAssault is true when the group's healing outlasts the worst
// case defense damage, or when the zone has no defensive threat at all. An
// unknown zone is never safe to commit into.
func (c *Cache) ShouldCommitAssault(zone string, units []model.Unit) bool {
	snap := c.GetIntel(zone)
	if snap == nil {
		return false
	}
	if len(snap.ActiveDefenses()) == 0 {
		return true
	}
	worst, ok := c.WorstCaseDamage(zone, units)
	if !ok {
		return false
	}
	return TotalSustainedHealing(units) > worst
}
