package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// SceneConfig is the root config for scenes/<name>.yaml
type SceneConfig struct {
	Name       string         `yaml:"name"`
	Stage      string         `yaml:"stage"` // optional stages/<stage>.json
	Background string         `yaml:"background"`
	Suppress   []string       `yaml:"suppress"` // global systems disabled while the scene runs
	Textures   []string       `yaml:"textures"` // preloaded before the scene activates
	Entities   []EntityConfig `yaml:"entities"`
}

// EntityConfig is one entity prefab. Every component block is optional.
type EntityConfig struct {
	Name     string          `yaml:"name"`
	Parent   string          `yaml:"parent"` // name of an earlier entity
	Position Vec2Config      `yaml:"position"`
	Rotation float64         `yaml:"rotation"` // degrees
	Velocity *Vec2Config     `yaml:"velocity"`
	Player   *PlayerConfig   `yaml:"player"`
	Sprite   *SpriteConfig   `yaml:"sprite"`
	Collider *ColliderConfig `yaml:"collider"`
	Tween    *TweenConfig    `yaml:"tween"`
	Count    int             `yaml:"count"`  // spawn copies, spread by Spread
	Spread   Vec2Config      `yaml:"spread"` // offset between copies
	Jitter   *Vec2Config     `yaml:"jitter"` // seeded random offset in [-x, x] and [-y, y]
}

type Vec2Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type PlayerConfig struct {
	Speed float64 `yaml:"speed"`
}

type SpriteConfig struct {
	Texture string  `yaml:"texture"`
	Color   string  `yaml:"color"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Z       int     `yaml:"z"`
}

type ColliderConfig struct {
	Shape  string     `yaml:"shape"` // "circle" or "box"
	Radius float64    `yaml:"radius"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Offset Vec2Config `yaml:"offset"`
	Layer  uint8      `yaml:"layer"`
	Mask   []uint8    `yaml:"mask"` // layers to hear about; empty = all
}

// TweenConfig drives an entity's position between its spawn point and To.
type TweenConfig struct {
	To       Vec2Config `yaml:"to"`
	Duration float64    `yaml:"duration"` // seconds
	Ease     string     `yaml:"ease"`
	Loop     string     `yaml:"loop"` // "none", "restart" or "yoyo"
}

// MaskBits folds the layer list into a bitmask; an empty list means all
// layers.
func (c ColliderConfig) MaskBits() uint32 {
	if len(c.Mask) == 0 {
		return ^uint32(0)
	}
	var m uint32
	for _, l := range c.Mask {
		if l < 32 {
			m |= 1 << l
		}
	}
	return m
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, ErrInvalidConfig)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, ErrInvalidConfig)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
