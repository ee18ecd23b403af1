package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.FOV != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Graphics.FOV)
	}

	// Test asset and scene defaults
	if len(cfg.Assets.Roots) != 1 || cfg.Assets.Roots[0] != "." {
		t.Errorf("expected roots [.], got %v", cfg.Assets.Roots)
	}
	if !cfg.Scene.FlipTextures {
		t.Error("expected flip_textures to be true by default")
	}
	if !cfg.Scene.StaggerLoading {
		t.Error("expected stagger_loading to be true by default")
	}
	if len(cfg.Scene.Models) != 0 {
		t.Errorf("expected no models, got %d", len(cfg.Scene.Models))
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 60
  sun:
    longitude: 180
    latitude: 30

assets:
  roots: ["assets", "/opt/models"]

scene:
  flip_textures: false
  stagger_loading: false
  models:
    - name: crate
      path: models/crate.obj
      texture: textures/crate.png
      position: [1, 2, 3]
      rotation: [0, 90, 0]
      scale: 2
    - path: models/house.obj
      materials: true
      flip_texture: true

logging:
  level: "debug"
  log_file: "objview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Graphics.FOV)
	}
	if cfg.Graphics.Sun.Longitude != 180 || cfg.Graphics.Sun.Latitude != 30 {
		t.Errorf("unexpected sun %+v", cfg.Graphics.Sun)
	}

	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[1] != "/opt/models" {
		t.Errorf("unexpected roots %v", cfg.Assets.Roots)
	}

	if cfg.Scene.FlipTextures || cfg.Scene.StaggerLoading {
		t.Error("expected flip_textures and stagger_loading to be false")
	}
	if len(cfg.Scene.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(cfg.Scene.Models))
	}
	crate := cfg.Scene.Models[0]
	if crate.Name != "crate" || crate.Texture != "textures/crate.png" || crate.Scale != 2 {
		t.Errorf("unexpected crate model %+v", crate)
	}
	if crate.Position != [3]float32{1, 2, 3} || crate.Rotation != [3]float32{0, 90, 0} {
		t.Errorf("unexpected crate placement %v %v", crate.Position, crate.Rotation)
	}
	if crate.FlipTexture != nil {
		t.Error("expected crate to use the scene flip setting")
	}
	house := cfg.Scene.Models[1]
	if !house.Materials || house.FlipTexture == nil || !*house.FlipTexture {
		t.Errorf("unexpected house model %+v", house)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "objview.log" {
		t.Errorf("expected log file 'objview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		models  []ModelConfig
		wantErr bool
	}{
		{"no models", nil, false},
		{"valid model", []ModelConfig{{Path: "a.obj", Scale: 1}}, false},
		{"zero scale", []ModelConfig{{Path: "a.obj"}}, false},
		{"missing path", []ModelConfig{{Name: "nameless"}}, true},
		{"negative scale", []ModelConfig{{Path: "a.obj", Scale: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Scene.Models = tt.models
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ScreenshotFormat(t *testing.T) {
	for _, format := range []string{"", "png", "webp"} {
		cfg := Default()
		cfg.Graphics.ScreenshotFormat = format
		if err := cfg.Validate(); err != nil {
			t.Errorf("%q: unexpected error %v", format, err)
		}
	}

	cfg := Default()
	cfg.Graphics.ScreenshotFormat = "bmp"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestSceneSpecs(t *testing.T) {
	noFlip := false
	cfg := Default()
	cfg.Scene.Models = []ModelConfig{
		{Name: "a", Path: "a.obj", Texture: "a.png", Position: [3]float32{1, 0, 0}, Scale: 2},
		{Path: "b.obj", Materials: true, FlipTexture: &noFlip},
	}

	specs := cfg.SceneSpecs()
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}

	if specs[0].Name != "a" || specs[0].Model != "a.obj" || specs[0].Texture != "a.png" {
		t.Errorf("unexpected spec %+v", specs[0])
	}
	if !specs[0].FlipTextures {
		t.Error("expected spec a to inherit scene flip_textures")
	}
	if specs[0].Position != [3]float32{1, 0, 0} || specs[0].Scale != 2 {
		t.Errorf("unexpected placement %+v", specs[0])
	}
	if !specs[1].Materials || specs[1].FlipTextures {
		t.Errorf("expected spec b with materials and no flip, got %+v", specs[1])
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "no-flip and root flags",
			setup: func() {
				*flagNoFlip = true
				*flagRoot = "/srv/assets"
			},
			verify: func(cfg *Config) {
				if cfg.Scene.FlipTextures {
					t.Error("expected flip_textures to be false with no-flip flag")
				}
				if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[1] != "/srv/assets" {
					t.Errorf("expected extra root, got %v", cfg.Assets.Roots)
				}
			},
			teardown: func() {
				*flagNoFlip = false
				*flagRoot = ""
			},
		},
		{
			name: "model flags",
			setup: func() {
				flagModels = modelList{"a.obj", "b.obj"}
				*flagMaterials = true
			},
			verify: func(cfg *Config) {
				if len(cfg.Scene.Models) != 2 {
					t.Errorf("expected 2 models, got %d", len(cfg.Scene.Models))
					return
				}
				m := cfg.Scene.Models[1]
				if m.Path != "b.obj" || !m.Materials || m.Scale != 1 {
					t.Errorf("unexpected model %+v", m)
				}
			},
			teardown: func() {
				flagModels = nil
				*flagMaterials = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestModelListFlag(t *testing.T) {
	var m modelList
	if err := m.Set("a.obj"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("b.obj"); err != nil {
		t.Fatal(err)
	}
	if m.String() != "a.obj,b.obj" {
		t.Errorf("unexpected value %q", m.String())
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalidModels(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  models:\n    - name: nameless\n"), 0644); err != nil {
		t.Fatal(err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected an error for a model without a path")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Scene.Models = []ModelConfig{{Path: "a.obj", Scale: 1}}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", loaded.Graphics.Width)
	}
	if len(loaded.Scene.Models) != 1 || loaded.Scene.Models[0].Path != "a.obj" {
		t.Errorf("unexpected models %+v", loaded.Scene.Models)
	}
}

func TestSave(t *testing.T) {
	defer func(prev string) { *flagConfig = prev }(*flagConfig)

	t.Run("explicit path", func(t *testing.T) {
		*flagConfig = filepath.Join(t.TempDir(), "viewer.yaml")

		cfg := Default()
		cfg.Graphics.FOV = 70
		path, err := cfg.Save()
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if path != *flagConfig {
			t.Errorf("expected %s, got %s", *flagConfig, path)
		}

		loaded := Default()
		if err := loadFromFile(loaded, path); err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Graphics.FOV != 70 {
			t.Errorf("expected fov 70, got %f", loaded.Graphics.FOV)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Error("temporary file left behind")
		}
	})

	t.Run("default location", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CONFIG_HOME only applies on linux")
		}
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		*flagConfig = ""

		path, err := Default().Save()
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if path != DefaultPath() {
			t.Errorf("expected %s, got %s", DefaultPath(), path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("config not written: %v", err)
		}
	})
}
