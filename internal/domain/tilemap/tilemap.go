// Package tilemap holds a stage's tile grid.
package tilemap

import "image/color"

// TileType represents the type of a tile
type TileType int

const (
	TileEmpty TileType = iota
	TileWall
	TileSpike
)

// ParseTileType maps a stage file's tile type name. Unknown names are empty.
func ParseTileType(s string) TileType {
	switch s {
	case "wall":
		return TileWall
	case "spike":
		return TileSpike
	default:
		return TileEmpty
	}
}

// Tile represents a single tile in the stage
type Tile struct {
	Type  TileType
	Solid bool
	Layer uint8 // collider layer when Solid
	Color color.RGBA
}

// Stage represents the current stage's tile data
type Stage struct {
	Width    int
	Height   int
	TileSize int
	Tiles    [][]Tile
	SpawnX   int
	SpawnY   int
}

// GetTile returns the tile at the given tile coordinates
func (s *Stage) GetTile(tx, ty int) Tile {
	if tx < 0 || tx >= s.Width || ty < 0 || ty >= s.Height {
		return Tile{Type: TileWall, Solid: true}
	}
	return s.Tiles[ty][tx]
}

// GetTileAtPixel returns the tile at the given pixel coordinates
func (s *Stage) GetTileAtPixel(px, py int) Tile {
	tx := px / s.TileSize
	ty := py / s.TileSize
	return s.GetTile(tx, ty)
}

// IsSolidAt checks if the tile at pixel coordinates is solid
func (s *Stage) IsSolidAt(px, py int) bool {
	return s.GetTileAtPixel(px, py).Solid
}

// Run is a horizontal strip of identical solid tiles.
type Run struct {
	X, Y int // first tile
	Len  int
	Tile Tile
}

// SolidRuns merges each row's adjacent identical solid tiles, row by row
// from the top, left to right.
func (s *Stage) SolidRuns() []Run {
	var runs []Run
	for y := 0; y < s.Height; y++ {
		row := s.Tiles[y]
		for x := 0; x < len(row); {
			t := row[x]
			if !t.Solid {
				x++
				continue
			}
			n := 1
			for x+n < len(row) && row[x+n] == t {
				n++
			}
			runs = append(runs, Run{X: x, Y: y, Len: n, Tile: t})
			x += n
		}
	}
	return runs
}
