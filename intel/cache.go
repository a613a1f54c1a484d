// Package intel keeps per-zone threat intelligence across ticks.
//
// Vision of a zone comes and goes. The cache trusts a snapshot as-is for a
// short fresh window, keeps serving it as stale intel for a longer retain
// window while the zone is dark, and forgets it after that.
package intel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/tick"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Refresh kinds reported to the Recorder.
const (
	RefreshRebuild = "rebuild"
	RefreshRecount = "recount"
	RefreshStale   = "stale"
	RefreshExpired = "expired"
	RefreshCorrupt = "corrupt"
)

// Recorder observes cache refreshes. metrics.Recorder satisfies it.
type Recorder interface {
	IntelRefreshed(ctx context.Context, kind string)
}

type nopRecorder struct{}

func (nopRecorder) IntelRefreshed(context.Context, string) {}

// Cache is the threat intelligence cache. Snapshots are written through to
// the store so a restarted controller keeps its last-known intel.
type Cache struct {
	cfg   Config
	store store.Store
	rec   Recorder

	frame   *tick.Frame
	entries map[string]*Snapshot
	engaged map[string]int
}

// New returns a cache backed by st. A nil store keeps intel in memory only.
func New(cfg Config, st store.Store) *Cache {
	return &Cache{
		cfg:     cfg,
		store:   st,
		rec:     nopRecorder{},
		entries: make(map[string]*Snapshot),
		engaged: make(map[string]int),
	}
}

func (c *Cache) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	c.rec = r
}

// StartTick binds the frame used for vision and entity lookups.
func (c *Cache) StartTick(f *tick.Frame) {
	c.frame = f
}

// MarkEngaged tells the cache a squad is fighting in zone, which switches on
// the faster hostile recount for the next EngagedWindow ticks.
func (c *Cache) MarkEngaged(zone string) {
	if c.frame == nil || zone == "" {
		return
	}
	c.engaged[zone] = c.frame.Tick
}

func (c *Cache) isEngaged(zone string) bool {
	at, ok := c.engaged[zone]
	if !ok {
		return false
	}
	if c.frame.Tick-at > c.cfg.EngagedWindow {
		delete(c.engaged, zone)
		return false
	}
	return true
}

// GetIntel returns the best available snapshot for zone, or nil when the
// zone is unknown: dark and with no snapshot young enough to retain.
func (c *Cache) GetIntel(zone string) *Snapshot {
	if c.frame == nil || zone == "" {
		return nil
	}
	ctx := c.frame.Ctx
	now := c.frame.Tick
	view := c.frame.World
	observable := view.Observable(zone)

	snap := c.lookup(ctx, zone)
	age := -1
	if snap != nil {
		age = now - snap.CapturedAt
	}

	if snap != nil && age >= 0 && age <= c.cfg.FreshTTL {
		if observable && c.isEngaged(zone) && now-snap.HostilesAt > c.cfg.EngagedRecountTTL {
			snap.Hostiles = c.scanHostiles(view, zone)
			snap.HostilesAt = now
			c.save(ctx, snap)
			c.rec.IntelRefreshed(ctx, RefreshRecount)
		}
		return snap
	}

	if observable {
		snap = c.build(view, zone, now)
		c.entries[zone] = snap
		c.save(ctx, snap)
		c.rec.IntelRefreshed(ctx, RefreshRebuild)
		slog.Debug("threat intel rebuilt", "zone", zone, "tick", now,
			"defenses", len(snap.Defenses), "hostiles", len(snap.Hostiles), "assets", len(snap.Assets), "cover", len(snap.Cover))
		return snap
	}

	if snap != nil && age >= 0 && age <= c.cfg.RetainTTL {
		c.rec.IntelRefreshed(ctx, RefreshStale)
		return snap
	}

	if snap != nil {
		slog.Debug("threat intel expired", "zone", zone, "age", age)
		c.Forget(zone)
		c.rec.IntelRefreshed(ctx, RefreshExpired)
	}
	return nil
}

// Forget drops everything known about zone.
func (c *Cache) Forget(zone string) {
	delete(c.entries, zone)
	if c.store == nil {
		return
	}
	ctx := context.Background()
	if c.frame != nil {
		ctx = c.frame.Ctx
	}
	if err := c.store.Delete(ctx, storeKey(zone)); err != nil {
		slog.Warn("failed to delete threat intel", "zone", zone, "error", err)
	}
}

func storeKey(zone string) string { return "intel:" + zone }

func (c *Cache) lookup(ctx context.Context, zone string) *Snapshot {
	if snap, ok := c.entries[zone]; ok {
		return snap
	}
	if c.store == nil {
		return nil
	}
	var snap Snapshot
	found, err := store.GetJSON(ctx, c.store, storeKey(zone), &snap)
	if err != nil {
		// A record we cannot read is treated as absent and rebuilt.
		slog.Warn("discarding unreadable threat intel", "zone", zone, "error", err)
		if errors.Is(err, store.ErrCorrupt) {
			c.rec.IntelRefreshed(ctx, RefreshCorrupt)
			if delErr := c.store.Delete(ctx, storeKey(zone)); delErr != nil {
				slog.Warn("failed to delete threat intel", "zone", zone, "error", delErr)
			}
		}
		return nil
	}
	if !found || snap.Zone != zone {
		return nil
	}
	c.entries[zone] = &snap
	return &snap
}

func (c *Cache) save(ctx context.Context, snap *Snapshot) {
	if c.store == nil {
		return
	}
	if err := store.PutJSON(ctx, c.store, storeKey(snap.Zone), snap); err != nil {
		slog.Warn("failed to persist threat intel", "zone", snap.Zone, "error", err)
	}
}

// build scans a visible zone from scratch.
func (c *Cache) build(view world.View, zone string, now int) *Snapshot {
	snap := &Snapshot{
		Zone:       zone,
		CapturedAt: now,
		HostilesAt: now,
		Hostiles:   c.scanHostiles(view, zone),
	}

	for _, s := range view.StructuresIn(zone) {
		hostile := s.Owner != "" && !view.Friendly(s.Owner)
		if !hostile {
			continue
		}
		switch s.Type {
		case model.StructureTower:
			snap.Defenses = append(snap.Defenses, Defense{
				ID:     s.ID,
				Pos:    s.Pos,
				Energy: s.Energy,
				Active: s.Active && s.Energy >= c.cfg.TowerEnergyCost,
			})
		case model.StructureRampart:
			snap.Ramparts = append(snap.Ramparts, s.Pos)
			continue
		}
		snap.Assets = append(snap.Assets, Asset{
			ID:     s.ID,
			Type:   s.Type,
			Pos:    s.Pos,
			HP:     s.HP,
			MaxHP:  s.MaxHP,
			Weight: c.assetWeight(s.Type),
		})
	}

	snap.Cover = c.catalogCover(view, zone, snap.ActiveDefenses())
	return snap
}

func (c *Cache) scanHostiles(view world.View, zone string) []Hostile {
	var out []Hostile
	for _, u := range view.UnitsIn(zone) {
		if u.Owner == "" || view.Friendly(u.Owner) {
			continue
		}
		out = append(out, Hostile{
			ID:     u.ID,
			Owner:  u.Owner,
			Role:   Classify(u),
			Pos:    u.Pos,
			HP:     u.HP,
			MaxHP:  u.MaxHP,
			Heal:   u.ActiveParts(model.PartHeal),
			Ranged: u.ActiveParts(model.PartRangedAttack),
			Attack: u.ActiveParts(model.PartAttack),
		})
	}
	return out
}

func (c *Cache) assetWeight(t model.StructureType) float64 {
	w := c.cfg.Scoring.AssetWeights
	switch t {
	case model.StructureCore:
		return w[AssetCore]
	case model.StructureTower:
		return w[AssetTower]
	case model.StructureSpawn:
		return w[AssetSpawn]
	default:
		return w[AssetOther]
	}
}

// catalogCover lists passable tiles whose neighbour toward every active
// defense is a barrier we can hide behind: natural wall, an unowned wall,
// or a friendly or neutral rampart.
func (c *Cache) catalogCover(view world.View, zone string, defenses []Defense) []model.Position {
	if len(defenses) == 0 {
		return nil
	}
	terrain := view.Terrain(zone)
	barriers := make(map[string]bool)
	blocked := make(map[string]bool)
	for _, s := range view.StructuresIn(zone) {
		switch s.Type {
		case model.StructureWall:
			if s.Owner == "" || view.Friendly(s.Owner) {
				barriers[s.Pos.Key()] = true
			}
			blocked[s.Pos.Key()] = true
		case model.StructureRampart:
			if s.Owner == "" || view.Friendly(s.Owner) {
				barriers[s.Pos.Key()] = true
			}
		}
	}
	if !terrain.HasWalls() && len(barriers) == 0 {
		return nil
	}
	isBarrier := func(p model.Position) bool {
		if !p.Valid() {
			return false
		}
		return terrain.At(p.X, p.Y) == model.Wall || barriers[p.Key()]
	}

	var cover []model.Position
	for y := range model.ZoneSize {
		for x := range model.ZoneSize {
			p := model.Position{X: x, Y: y, Zone: zone}
			if !terrain.Passable(x, y) || blocked[p.Key()] {
				continue
			}
			shielded := true
			for _, d := range defenses {
				step := p.StepToward(d.Pos)
				if step.Equal(p) || !isBarrier(step) {
					shielded = false
					break
				}
			}
			if shielded {
				cover = append(cover, p)
			}
		}
	}
	return cover
}
