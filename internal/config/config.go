// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/objview/internal/engine/lighting"
	"github.com/Faultbox/objview/internal/engine/scene"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Assets   AssetsConfig   `yaml:"assets"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	Fullscreen bool         `yaml:"fullscreen"`
	VSync      bool         `yaml:"vsync"`
	FOV        float32      `yaml:"fov"` // Vertical field of view in degrees
	Sun        lighting.Sun `yaml:"sun"`

	// ScreenshotFormat is "png" or "webp".
	ScreenshotFormat string `yaml:"screenshot_format"`
}

// AssetsConfig holds file search settings.
type AssetsConfig struct {
	Roots []string `yaml:"roots"` // Directories relative paths are resolved against
}

// SceneConfig holds the models to load and how to load them.
type SceneConfig struct {
	// FlipTextures is the default vertical flip for every texture.
	FlipTextures bool `yaml:"flip_textures"`
	// StaggerLoading loads one model per frame instead of all up front.
	StaggerLoading bool          `yaml:"stagger_loading"`
	Models         []ModelConfig `yaml:"models"`
}

// ModelConfig describes one model instance.
type ModelConfig struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path"`
	Texture   string     `yaml:"texture"`
	Materials bool       `yaml:"materials"`
	Position  [3]float32 `yaml:"position"`
	Rotation  [3]float32 `yaml:"rotation"` // Degrees
	Scale     float32    `yaml:"scale"`
	// FlipTexture overrides scene.flip_textures for this model when set.
	FlipTexture *bool `yaml:"flip_texture,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        45,
			Sun:        lighting.DefaultSun(),

			ScreenshotFormat: "png",
		},
		Assets: AssetsConfig{
			Roots: []string{"."},
		},
		Scene: SceneConfig{
			FlipTextures:   true,
			StaggerLoading: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the model list for missing paths and the screenshot format.
func (c *Config) Validate() error {
	switch c.Graphics.ScreenshotFormat {
	case "", "png", "webp":
	default:
		return fmt.Errorf("graphics.screenshot_format: unknown format %q", c.Graphics.ScreenshotFormat)
	}
	for i, m := range c.Scene.Models {
		if m.Path == "" {
			return fmt.Errorf("scene.models[%d]: path is required", i)
		}
		if m.Scale < 0 {
			return fmt.Errorf("scene.models[%d] (%s): scale must not be negative", i, m.Path)
		}
	}
	return nil
}

// SceneSpecs converts the configured models into scene specs.
func (c *Config) SceneSpecs() []scene.Spec {
	specs := make([]scene.Spec, 0, len(c.Scene.Models))
	for _, m := range c.Scene.Models {
		flip := c.Scene.FlipTextures
		if m.FlipTexture != nil {
			flip = *m.FlipTexture
		}
		specs = append(specs, scene.Spec{
			Name:         m.Name,
			Model:        m.Path,
			Texture:      m.Texture,
			Materials:    m.Materials,
			FlipTextures: flip,
			Position:     m.Position,
			Rotation:     m.Rotation,
			Scale:        m.Scale,
		})
	}
	return specs
}
