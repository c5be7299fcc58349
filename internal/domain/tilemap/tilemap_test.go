package tilemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStage() *Stage {
	wall := Tile{Type: TileWall, Solid: true, Layer: 1}
	spike := Tile{Type: TileSpike, Solid: true, Layer: 3}
	empty := Tile{}
	return &Stage{
		Width:    4,
		Height:   2,
		TileSize: 16,
		Tiles: [][]Tile{
			{wall, wall, spike, wall},
			{empty, wall, wall, empty},
		},
	}
}

func TestStage_GetTile(t *testing.T) {
	s := testStage()

	assert.Equal(t, TileSpike, s.GetTile(2, 0).Type)
	assert.False(t, s.GetTile(0, 1).Solid)

	t.Run("out of bounds is solid wall", func(t *testing.T) {
		for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 2}} {
			tile := s.GetTile(p[0], p[1])
			assert.Equal(t, TileWall, tile.Type)
			assert.True(t, tile.Solid)
		}
	})
}

func TestStage_GetTileAtPixel(t *testing.T) {
	s := testStage()

	assert.Equal(t, TileSpike, s.GetTileAtPixel(40, 5).Type)
	assert.True(t, s.IsSolidAt(17, 17))
	assert.False(t, s.IsSolidAt(5, 20))
}

func TestStage_SolidRuns(t *testing.T) {
	runs := testStage().SolidRuns()

	assert.Equal(t, []Run{
		{X: 0, Y: 0, Len: 2, Tile: Tile{Type: TileWall, Solid: true, Layer: 1}},
		{X: 2, Y: 0, Len: 1, Tile: Tile{Type: TileSpike, Solid: true, Layer: 3}},
		{X: 3, Y: 0, Len: 1, Tile: Tile{Type: TileWall, Solid: true, Layer: 1}},
		{X: 1, Y: 1, Len: 2, Tile: Tile{Type: TileWall, Solid: true, Layer: 1}},
	}, runs)
}

func TestParseTileType(t *testing.T) {
	assert.Equal(t, TileWall, ParseTileType("wall"))
	assert.Equal(t, TileSpike, ParseTileType("spike"))
	assert.Equal(t, TileEmpty, ParseTileType("water"))
}
