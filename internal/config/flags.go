package config

import (
	"flag"
	"strings"
)

// modelList collects repeated -model flags.
type modelList []string

func (m *modelList) String() string {
	return strings.Join(*m, ",")
}

func (m *modelList) Set(v string) error {
	*m = append(*m, v)
	return nil
}

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagTexture    = flag.String("texture", "", "Texture for models given with -model")
	flagMaterials  = flag.Bool("materials", false, "Use mtllib/usemtl materials for models given with -model")
	flagNoFlip     = flag.Bool("no-flip", false, "Do not flip textures vertically")
	flagRoot       = flag.String("root", "", "Extra asset search root")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the -config path or the default location")
	flagModels     modelList
)

func init() {
	flag.Var(&flagModels, "model", "OBJ model to load (repeatable)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagNoFlip {
		cfg.Scene.FlipTextures = false
	}
	if *flagRoot != "" {
		cfg.Assets.Roots = append(cfg.Assets.Roots, *flagRoot)
	}
	for _, path := range flagModels {
		cfg.Scene.Models = append(cfg.Scene.Models, ModelConfig{
			Path:      path,
			Texture:   *flagTexture,
			Materials: *flagMaterials,
			Scale:     1,
		})
	}
}
