package ipc

import "github.com/BenvolioDAT/BeeHiveMind-sub002/model"

// Message types sent by the host.
const (
	TypeHello = "hello"
	TypeAck   = "ack"
	TypeTick  = "tick"
)

type HelloMessage struct {
	Player  string        `json:"player"`
	Allies  []string      `json:"allies,omitempty"`
	Terrain []TerrainData `json:"terrain,omitempty"`
}

// TerrainData carries one zone's static tile map. Optional: zones without
// terrain read as open ground, so no cover is cataloged there.
type TerrainData struct {
	Zone string `json:"zone"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
	Grid []int  `json:"grid"` // row-major, values are model.TerrainType
}

// TerrainGrid converts the wire form into a model grid. Unknown tile
// values read as plain.
func (t TerrainData) TerrainGrid() *model.TerrainGrid {
	g := &model.TerrainGrid{Zone: t.Zone, Cols: t.Cols, Rows: t.Rows, Tiles: make([]model.TerrainType, len(t.Grid))}
	for i, v := range t.Grid {
		switch tt := model.TerrainType(v); tt {
		case model.Plain, model.Swamp, model.Wall:
			g.Tiles[i] = tt
		}
	}
	return g
}

type AckMessage struct {
	Status   string         `json:"status"`
	Session  string         `json:"session,omitempty"`
	Tick     int            `json:"tick,omitempty"`
	Executed int            `json:"executed,omitempty"`
	Skipped  map[string]int `json:"skipped,omitempty"` // reason → count
}
