package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Tick:   10,
		Player: "bee",
		Units: []model.Unit{
			{ID: "u2", Owner: "bee", Pos: model.Position{X: 5, Y: 5, Zone: "W1N1"}},
			{ID: "u1", Owner: "bee", Pos: model.Position{X: 6, Y: 5, Zone: "W1N1"}},
			{ID: "h1", Owner: "raider", Pos: model.Position{X: 30, Y: 30, Zone: "W2N1"}},
			{ID: "a1", Owner: "Wasp", Pos: model.Position{X: 1, Y: 1, Zone: "W3N1"}},
		},
		Structures: []model.Structure{
			{ID: "t1", Type: model.StructureTower, Owner: "raider", Pos: model.Position{X: 25, Y: 25, Zone: "W2N1"}},
			{ID: "s1", Type: model.StructureSpawn, Owner: "bee", Pos: model.Position{X: 20, Y: 20, Zone: "W4N1"}},
		},
		Markers: []model.Marker{{Name: "alpha", Pos: model.Position{X: 10, Y: 10, Zone: "W1N1"}}},
		Visible: []string{"W2N1"},
	}
}

func TestIndexLookups(t *testing.T) {
	ix := NewIndex(testSnapshot(), []string{"wasp"}, nil)

	u, ok := ix.Unit("u1")
	require.True(t, ok)
	assert.Equal(t, 6, u.Pos.X)

	_, ok = ix.Unit("ghost")
	assert.False(t, ok)

	s, ok := ix.Structure("t1")
	require.True(t, ok)
	assert.Equal(t, model.StructureTower, s.Type)

	pos, ok := ix.Locate("t1")
	require.True(t, ok)
	assert.Equal(t, "W2N1", pos.Zone)

	m, ok := ix.Marker("alpha")
	require.True(t, ok)
	assert.Equal(t, 10, m.Pos.X)
}

func TestIndexZoneListingsAreSorted(t *testing.T) {
	ix := NewIndex(testSnapshot(), nil, nil)

	units := ix.UnitsIn("W1N1")
	require.Len(t, units, 2)
	assert.Equal(t, "u1", units[0].ID)
	assert.Equal(t, "u2", units[1].ID)
	assert.Empty(t, ix.UnitsIn("W9N9"))
	assert.Len(t, ix.StructuresIn("W2N1"), 1)
}

func TestIndexVisibilityAndRoster(t *testing.T) {
	ix := NewIndex(testSnapshot(), []string{"Wasp"}, nil)

	assert.True(t, ix.Observable("W1N1"), "own units grant vision")
	assert.True(t, ix.Observable("W2N1"), "listed by host")
	assert.True(t, ix.Observable("W3N1"), "ally units grant vision")
	assert.True(t, ix.Observable("W4N1"), "own structures grant vision")
	assert.False(t, ix.Observable("W5N1"))

	assert.True(t, ix.Friendly("bee"))
	assert.True(t, ix.Friendly("WASP"))
	assert.False(t, ix.Friendly("raider"))
	assert.False(t, ix.Friendly(""), "unowned is neutral")
}

func TestIndexDoesNotAliasSnapshot(t *testing.T) {
	snap := testSnapshot()
	ix := NewIndex(snap, nil, nil)
	snap.Units[0].HP = 999

	u, ok := ix.Unit("u2")
	require.True(t, ok)
	assert.NotEqual(t, 999, u.HP)
}
