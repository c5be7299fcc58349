package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// GameConfig holds all loaded configurations
type GameConfig struct {
	Engine *EngineConfig
	Scene  *SceneConfig
	Stage  *StageConfig // nil when the scene has no stage
}

// Loader loads game configuration using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// FS returns the loader's filesystem, for sibling loaders such as assets.
func (l *Loader) FS() fs.FS { return l.fsys }

// LoadEngine loads engine.toml
func (l *Loader) LoadEngine() (*EngineConfig, error) {
	data, err := fs.ReadFile(l.fsys, "engine.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to read engine.toml: %w", err)
	}
	return parseEngine(data, "engine.toml")
}

// LoadScene loads scenes/<name>.yaml
func (l *Loader) LoadScene(name string) (*SceneConfig, error) {
	path := "scenes/" + name + ".yaml"
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", name, err)
	}

	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", name, err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}

	seen := make(map[string]bool, len(cfg.Entities))
	for i, e := range cfg.Entities {
		if e.Parent != "" && !seen[e.Parent] {
			return nil, fmt.Errorf("scene %s entity %d (%s): parent %q not defined earlier: %w",
				name, i, e.Name, e.Parent, ErrInvalidConfig)
		}
		if e.Name != "" {
			seen[e.Name] = true
		}
	}

	return &cfg, nil
}

// LoadStage loads a stage JSON file
func (l *Loader) LoadStage(name string) (*StageConfig, error) {
	path := "stages/" + name + ".json"
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage %s: %w", name, err)
	}

	var cfg StageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stage %s: %w", name, err)
	}
	if cfg.Size.TileSize <= 0 {
		return nil, fmt.Errorf("stage %s tile size %d: %w", name, cfg.Size.TileSize, ErrInvalidConfig)
	}

	return &cfg, nil
}

// LoadAll loads engine.toml, the start scene and its stage
func (l *Loader) LoadAll() (*GameConfig, error) {
	engine, err := l.LoadEngine()
	if err != nil {
		return nil, err
	}

	scene, err := l.LoadScene(engine.Game.StartScene)
	if err != nil {
		return nil, err
	}

	gc := &GameConfig{Engine: engine, Scene: scene}
	if scene.Stage != "" {
		if gc.Stage, err = l.LoadStage(scene.Stage); err != nil {
			return nil, err
		}
	}
	return gc, nil
}
