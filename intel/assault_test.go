package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
)

func medic(id string, p model.Position, heal int) model.Unit {
	return model.Unit{ID: id, Owner: "bee", Pos: p, HP: 100, MaxHP: 100, Parts: parts(model.PartHeal, heal)}
}

func TestTotalSustainedHealing(t *testing.T) {
	units := []model.Unit{
		medic("a", at(1, 1), 2),
		{ID: "b", Parts: []model.Part{{Type: model.PartHeal, HP: 0}, {Type: model.PartAttack, HP: 100}}},
	}
	assert.InDelta(t, 24, TotalSustainedHealing(units), 1e-9)
	assert.Zero(t, TotalSustainedHealing(nil))
}

func TestShouldCommitAssault(t *testing.T) {
	defended := []model.Structure{tower("t1", at(10, 10))}
	other := model.Position{X: 10, Y: 10, Zone: "W1N2"}

	tests := []struct {
		name       string
		structures []model.Structure
		units      []model.Unit
		want       bool
	}{
		{"no defenses", nil, []model.Unit{{ID: "x", Owner: "bee", Pos: at(1, 1)}}, true},
		{"close to the tower", defended, []model.Unit{medic("m", at(10, 15), 10)}, false},
		{"far edge, too little healing", defended, []model.Unit{medic("m", at(10, 40), 10)}, false},
		{"far edge, enough healing", defended, []model.Unit{medic("m", at(10, 40), 14)}, true},
		{"outside the zone", defended, []model.Unit{medic("m", other, 14)}, true},
		{"worst member decides", defended, []model.Unit{medic("m", at(10, 40), 14), {ID: "x", Owner: "bee", Pos: at(10, 11)}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cacheFor(nil, tc.structures...)
			assert.Equal(t, tc.want, c.ShouldCommitAssault(zone, tc.units))
		})
	}
}

func TestShouldCommitAssaultUnknownZone(t *testing.T) {
	c := cacheFor(nil)
	assert.False(t, c.ShouldCommitAssault("W9N9", []model.Unit{medic("m", at(1, 1), 50)}))
}
