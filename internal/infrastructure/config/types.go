package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/younwookim/engine2d/internal/ecs"
)

// EngineConfig is the root config for engine.toml
type EngineConfig struct {
	Window    WindowConfig    `toml:"window"`
	Game      GameSettings    `toml:"game"`
	ECS       ECSConfig       `toml:"ecs"`
	Collision CollisionConfig `toml:"collision"`
	Logging   LoggingConfig   `toml:"logging"`
}

type WindowConfig struct {
	Title        string `toml:"title"`
	ScreenWidth  int    `toml:"screen_width"`
	ScreenHeight int    `toml:"screen_height"`
	Scale        int    `toml:"scale"`
	TPS          int    `toml:"tps"` // fixed update rate; dt = 1/TPS
}

type GameSettings struct {
	StartScene string `toml:"start_scene"`
	Seed       int64  `toml:"seed"` // 0 = time-based
}

// ECSConfig is the scheduler's configuration surface.
type ECSConfig struct {
	EnableParallelExecution bool   `toml:"enable_parallel_execution"`
	ParallelEntityThreshold int    `toml:"parallel_entity_threshold"`
	MaxDegreeOfParallelism  int    `toml:"max_degree_of_parallelism"` // -1 = all cores
	FaultPolicy             string `toml:"fault_policy"`              // "propagate" or "skip"
}

type CollisionConfig struct {
	CellSize  float64 `toml:"cell_size"`
	DebugDraw bool    `toml:"debug_draw"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads an engine.toml from disk, filling unset keys with defaults.
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return parseEngine(data, path)
}

func parseEngine(data []byte, name string) (*EngineConfig, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Defaults returns the configuration used for keys absent from engine.toml.
func Defaults() *EngineConfig {
	opts := ecs.DefaultOptions()
	return &EngineConfig{
		Window: WindowConfig{
			Title:        "engine2d",
			ScreenWidth:  640,
			ScreenHeight: 480,
			Scale:        2,
			TPS:          60,
		},
		Game: GameSettings{
			StartScene: "sandbox",
		},
		ECS: ECSConfig{
			EnableParallelExecution: opts.EnableParallelExecution,
			ParallelEntityThreshold: opts.ParallelEntityThreshold,
			MaxDegreeOfParallelism:  opts.MaxDegreeOfParallelism,
			FaultPolicy:             string(opts.FaultPolicy),
		},
		Collision: CollisionConfig{
			CellSize: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the engine cannot run with.
func (c *EngineConfig) Validate() error {
	if c.Window.ScreenWidth <= 0 || c.Window.ScreenHeight <= 0 {
		return fmt.Errorf("window %dx%d: %w", c.Window.ScreenWidth, c.Window.ScreenHeight, ErrInvalidConfig)
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("window.tps %d: %w", c.Window.TPS, ErrInvalidConfig)
	}
	if c.ECS.ParallelEntityThreshold < 0 {
		return fmt.Errorf("ecs.parallel_entity_threshold %d: %w", c.ECS.ParallelEntityThreshold, ErrInvalidConfig)
	}
	if n := c.ECS.MaxDegreeOfParallelism; n != ecs.AllCores && n <= 0 {
		return fmt.Errorf("ecs.max_degree_of_parallelism %d (want -1 or > 0): %w", n, ErrInvalidConfig)
	}
	switch ecs.FaultPolicy(c.ECS.FaultPolicy) {
	case ecs.FaultPropagate, ecs.FaultSkip:
	default:
		return fmt.Errorf("ecs.fault_policy %q: %w", c.ECS.FaultPolicy, ErrInvalidConfig)
	}
	if c.Collision.CellSize <= 0 {
		return fmt.Errorf("collision.cell_size %g: %w", c.Collision.CellSize, ErrInvalidConfig)
	}
	return nil
}

// Options converts the [ecs] section for the scheduler.
func (c ECSConfig) Options() ecs.Options {
	return ecs.Options{
		EnableParallelExecution: c.EnableParallelExecution,
		ParallelEntityThreshold: c.ParallelEntityThreshold,
		MaxDegreeOfParallelism:  c.MaxDegreeOfParallelism,
		FaultPolicy:             ecs.FaultPolicy(c.FaultPolicy),
	}
}

// DT returns the fixed frame step in seconds.
func (w WindowConfig) DT() float64 {
	return 1.0 / float64(w.TPS)
}
