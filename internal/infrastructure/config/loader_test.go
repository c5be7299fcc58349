package config

import (
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/engine2d/internal/ecs"
)

func TestLoader_LoadEngine(t *testing.T) {
	loader := NewLoader("../../../cmd/game/configs")

	cfg, err := loader.LoadEngine()
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.ScreenWidth)
	assert.Equal(t, 480, cfg.Window.ScreenHeight)
	assert.Equal(t, 60, cfg.Window.TPS)
	assert.Equal(t, "sandbox", cfg.Game.StartScene)
	assert.True(t, cfg.ECS.EnableParallelExecution)
	assert.Equal(t, 256, cfg.ECS.ParallelEntityThreshold)
	assert.Equal(t, ecs.AllCores, cfg.ECS.MaxDegreeOfParallelism)
	assert.Equal(t, 64.0, cfg.Collision.CellSize)
}

func TestLoader_LoadScene(t *testing.T) {
	loader := NewLoader("../../../cmd/game/configs")

	cfg, err := loader.LoadScene("sandbox")
	require.NoError(t, err)

	assert.Equal(t, "sandbox", cfg.Name)
	assert.Equal(t, "demo", cfg.Stage)
	assert.Equal(t, []string{"crate"}, cfg.Textures)
	require.NotEmpty(t, cfg.Entities)

	player := cfg.Entities[0]
	assert.Equal(t, "player", player.Name)
	require.NotNil(t, player.Player)
	require.NotNil(t, player.Collider)
	assert.Equal(t, "circle", player.Collider.Shape)
	assert.Equal(t, uint32(0b110), player.Collider.MaskBits())
}

func TestLoader_LoadStage(t *testing.T) {
	loader := NewLoader("../../../cmd/game/configs")

	cfg, err := loader.LoadStage("demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.ID)
	assert.Equal(t, 640, cfg.Size.Width)
	assert.Equal(t, 480, cfg.Size.Height)
	assert.Equal(t, 16, cfg.Size.TileSize)
	assert.Equal(t, 48, cfg.PlayerSpawn.X)
	assert.Equal(t, 400, cfg.PlayerSpawn.Y)
	assert.Len(t, cfg.Layers.Collision, 30)

	wall, ok := cfg.TileMapping["#"]
	require.True(t, ok)
	assert.True(t, wall.Solid)
	assert.Equal(t, "wall", wall.Type)
}

func TestLoader_LoadAll(t *testing.T) {
	loader := NewLoader("../../../cmd/game/configs")

	cfg, err := loader.LoadAll()
	require.NoError(t, err)

	assert.NotNil(t, cfg.Engine)
	assert.NotNil(t, cfg.Scene)
	assert.NotNil(t, cfg.Stage)
}

func TestLoader_EngineDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"engine.toml": {Data: []byte("[ecs]\nfault_policy = \"skip\"\n")},
	}

	cfg, err := NewFSLoader(fsys, ".").LoadEngine()
	require.NoError(t, err)

	assert.Equal(t, "skip", cfg.ECS.FaultPolicy)
	assert.Equal(t, Defaults().Window, cfg.Window, "missing sections keep defaults")
	assert.Equal(t, ecs.FaultSkip, cfg.ECS.Options().FaultPolicy)
	assert.InDelta(t, 1.0/60, cfg.Window.DT(), 1e-12)
}

func TestLoader_EngineValidation(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero workers", "[ecs]\nmax_degree_of_parallelism = 0\n"},
		{"negative threshold", "[ecs]\nparallel_entity_threshold = -5\n"},
		{"unknown policy", "[ecs]\nfault_policy = \"retry\"\n"},
		{"zero cell size", "[collision]\ncell_size = 0\n"},
		{"zero tps", "[window]\ntps = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"engine.toml": {Data: []byte(tt.toml)}}
			_, err := NewFSLoader(fsys, ".").LoadEngine()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("malformed toml", func(t *testing.T) {
		fsys := fstest.MapFS{"engine.toml": {Data: []byte("[ecs\n")}}
		_, err := NewFSLoader(fsys, ".").LoadEngine()
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFSLoader(fstest.MapFS{}, ".").LoadEngine()
		assert.Error(t, err)
	})
}

func TestLoader_SceneParentMustComeFirst(t *testing.T) {
	fsys := fstest.MapFS{
		"scenes/bad.yaml": {Data: []byte(`
entities:
  - name: child
    parent: root
  - name: root
`)},
	}

	_, err := NewFSLoader(fsys, ".").LoadScene("bad")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoader_SceneNameDefaultsToFile(t *testing.T) {
	fsys := fstest.MapFS{"scenes/empty.yaml": {Data: []byte("entities: []\n")}}

	cfg, err := NewFSLoader(fsys, ".").LoadScene("empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", cfg.Name)
}

func TestColliderConfig_MaskBits(t *testing.T) {
	assert.Equal(t, ^uint32(0), ColliderConfig{}.MaskBits())
	assert.Equal(t, uint32(0b101), ColliderConfig{Mask: []uint8{0, 2}}.MaskBits())
	assert.Equal(t, uint32(1), ColliderConfig{Mask: []uint8{0, 40}}.MaskBits(), "out of range layers ignored")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#1a1a2e", color.RGBA{0x1a, 0x1a, 0x2e, 0xff}, true},
		{"1a1a2e80", color.RGBA{0x1a, 0x1a, 0x2e, 0x80}, true},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#12345", color.RGBA{}, false},
		{"#zzzzzz", color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
