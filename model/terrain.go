package model

// TerrainType classifies a single tile.
type TerrainType byte

const (
	Plain TerrainType = 0 // passable, normal cost
	Swamp TerrainType = 1 // passable, slow
	Wall  TerrainType = 2 // impassable natural rock
)

// TerrainGrid is the static tile map of one zone, ZoneSize x ZoneSize tiles
// unless the host says otherwise.
type TerrainGrid struct {
	Zone  string        // zone this grid describes
	Cols  int           // tiles per row (typically ZoneSize)
	Rows  int           // rows (typically ZoneSize)
	Tiles []TerrainType // row-major: Tiles[y*Cols + x]
}

// At returns the terrain at tile (x, y). Out-of-bounds tiles read as Plain
// so a missing or truncated grid never invents barriers.
func (g *TerrainGrid) At(x, y int) TerrainType {
	if g == nil || x < 0 || x >= g.Cols || y < 0 || y >= g.Rows {
		return Plain
	}
	idx := y*g.Cols + x
	if idx >= len(g.Tiles) {
		return Plain
	}
	return g.Tiles[idx]
}

// Passable reports whether a unit could stand on (x, y).
func (g *TerrainGrid) Passable(x, y int) bool {
	return g.At(x, y) != Wall
}

// HasWalls returns true if any tile in the grid is natural wall.
func (g *TerrainGrid) HasWalls() bool {
	if g == nil {
		return false
	}
	for _, t := range g.Tiles {
		if t == Wall {
			return true
		}
	}
	return false
}
