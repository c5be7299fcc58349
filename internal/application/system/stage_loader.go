package system

import (
	"fmt"

	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/domain/tilemap"
	"github.com/younwookim/engine2d/internal/ecs"
	"github.com/younwookim/engine2d/internal/infrastructure/config"
)

// tileZ draws tiles under everything spawned from a scene.
const tileZ = -100

// LoadStage converts a StageConfig into a tile grid. Characters without a
// mapping are empty tiles; rows longer than the stage width are cut.
func LoadStage(cfg *config.StageConfig) (*tilemap.Stage, error) {
	if cfg.Size.TileSize <= 0 {
		return nil, fmt.Errorf("stage %q: %w: tile size must be positive", cfg.ID, config.ErrInvalidConfig)
	}
	tileWidth := cfg.Size.Width / cfg.Size.TileSize
	tileHeight := len(cfg.Layers.Collision)

	mapped := make(map[rune]tilemap.Tile, len(cfg.TileMapping))
	for key, m := range cfg.TileMapping {
		r := []rune(key)
		if len(r) != 1 {
			return nil, fmt.Errorf("stage %q: %w: tile key %q must be one character", cfg.ID, config.ErrInvalidConfig, key)
		}
		if m.Layer > collision.MaxLayer {
			return nil, fmt.Errorf("stage %q: %w: tile %q layer %d", cfg.ID, config.ErrInvalidConfig, key, m.Layer)
		}
		tile := tilemap.Tile{Type: tilemap.ParseTileType(m.Type), Solid: m.Solid, Layer: m.Layer}
		if m.Color != "" {
			c, err := config.ParseColor(m.Color)
			if err != nil {
				return nil, fmt.Errorf("stage %q tile %q: %w", cfg.ID, key, err)
			}
			tile.Color = c
		}
		mapped[r[0]] = tile
	}

	tiles := make([][]tilemap.Tile, tileHeight)
	for y, row := range cfg.Layers.Collision {
		tiles[y] = make([]tilemap.Tile, tileWidth)
		x := 0
		for _, char := range row {
			if x >= tileWidth {
				break
			}
			tiles[y][x] = mapped[char]
			x++
		}
	}

	return &tilemap.Stage{
		Width:    tileWidth,
		Height:   tileHeight,
		TileSize: cfg.Size.TileSize,
		Tiles:    tiles,
		SpawnX:   cfg.PlayerSpawn.X,
		SpawnY:   cfg.PlayerSpawn.Y,
	}, nil
}

// SpawnStage creates one static entity per run of identical solid tiles,
// each with a Box collider covering the run and a solid-color sprite. The
// colliders accept no layers: tiles are hit, they never report hits.
func SpawnStage(w *ecs.World, stage *tilemap.Stage) ([]ecs.Entity, error) {
	ts := float64(stage.TileSize)
	runs := stage.SolidRuns()
	out := make([]ecs.Entity, 0, len(runs))
	for _, run := range runs {
		width := float64(run.Len) * ts
		cx := float64(run.X)*ts + width/2
		cy := float64(run.Y)*ts + ts/2

		name := fmt.Sprintf("tile_%d_%d", run.X, run.Y)
		e := w.CreateEntity(name)
		c := collision.NewCollider().Box(width, ts).OnLayer(run.Tile.Layer).WithMask(0)
		sp := &ecs.Sprite{Size: geom.Vec2{X: width, Y: ts}, Color: run.Tile.Color, Z: tileZ}
		if err := attach(w, e, ecs.NewTransform(cx, cy), c, sp); err != nil {
			w.DestroyEntity(e)
			return out, fmt.Errorf("spawn %s: %w", name, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func attach(w *ecs.World, e ecs.Entity, t *ecs.Transform, c *collision.Collider, sp *ecs.Sprite) error {
	if err := ecs.AddComponent(w, e, t); err != nil {
		return err
	}
	if err := ecs.AddComponent(w, e, c); err != nil {
		return err
	}
	if sp.Color.A == 0 {
		return nil
	}
	return ecs.AddComponent(w, e, sp)
}
