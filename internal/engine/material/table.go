// Package material loads material libraries and owns their textures.
package material

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/gpu"
	"github.com/Faultbox/objview/internal/engine/texture"
	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/pkg/formats"
)

// Material is a parsed library entry plus its resolved diffuse texture.
type Material struct {
	formats.MTLMaterial

	// TexturePath is DiffuseMap resolved against the library directory.
	TexturePath string
	// Texture is the device texture, 0 when there is none or it failed to load.
	Texture gpu.Handle
}

// HasTexture reports whether the material has a usable diffuse texture.
func (m *Material) HasTexture() bool {
	return m.Texture != 0
}

// String returns a short description for logs.
func (m *Material) String() string {
	return fmt.Sprintf("Material[name=%s, diffuseTexPath=%s, texture=%d]", m.Name, m.DiffuseMap, m.Texture)
}

// Options configures a Table.
type Options struct {
	// BaseDir is the directory mtllib names are resolved against
	// (normally the directory of the model file).
	BaseDir string
	// FlipTextures flips diffuse textures vertically on load.
	FlipTextures bool
}

// Table maps material names to materials for one mesh. It implements
// formats.MaterialResolver and owns every texture it loads.
type Table struct {
	src    assets.Source
	loader texture.Loader
	dev    gpu.Device
	opts   Options
	log    *zap.Logger

	byName   map[string]*Material
	order    []string
	textures map[string]gpu.Handle // resolved path -> handle
}

// NewTable creates an empty material table. dev is used to free textures on Release.
func NewTable(src assets.Source, loader texture.Loader, dev gpu.Device, opts Options) *Table {
	return &Table{
		src:      src,
		loader:   loader,
		dev:      dev,
		opts:     opts,
		log:      logger.Named("material"),
		byName:   make(map[string]*Material),
		textures: make(map[string]gpu.Handle),
	}
}

// LoadLibrary reads and parses a material library, then loads the diffuse
// texture of every material that names one. A texture that fails to load is
// logged and left unset; the rest of the library still loads.
func (t *Table) LoadLibrary(name string) error {
	path := name
	if !filepath.IsAbs(path) && t.opts.BaseDir != "" {
		path = filepath.Join(t.opts.BaseDir, name)
	}

	rc, err := t.src.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	lib, err := formats.ParseMTL(rc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	t.log.Info("loading material library",
		zap.String("path", path),
		zap.Int("materials", len(lib.Materials)),
	)

	libDir := filepath.Dir(path)
	for _, parsed := range lib.Materials {
		m := &Material{MTLMaterial: parsed}
		if m.DiffuseMap != "" {
			m.TexturePath = m.DiffuseMap
			if !filepath.IsAbs(m.TexturePath) {
				m.TexturePath = filepath.Join(libDir, m.DiffuseMap)
			}
			m.Texture = t.loadTexture(m.TexturePath)
		}
		t.put(m)
		t.log.Debug("material loaded", zap.Stringer("material", m))
	}
	return nil
}

// loadTexture returns the cached handle for path or loads it once.
func (t *Table) loadTexture(path string) gpu.Handle {
	if tex, ok := t.textures[path]; ok {
		return tex
	}
	tex, err := t.loader.Load(path, t.opts.FlipTextures)
	if err != nil {
		t.log.Warn("failed to load texture", zap.String("path", path), zap.Error(err))
		tex = 0
	}
	t.textures[path] = tex
	return tex
}

func (t *Table) put(m *Material) {
	if _, exists := t.byName[m.Name]; !exists {
		t.order = append(t.order, m.Name)
	}
	t.byName[m.Name] = m
}

// HasMaterial reports whether a loaded library declared name.
func (t *Table) HasMaterial(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Lookup returns the named material. It never invents a default entry.
func (t *Table) Lookup(name string) (*Material, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Texture returns the diffuse texture of the named material, or 0.
func (t *Table) Texture(name string) gpu.Handle {
	if m, ok := t.byName[name]; ok {
		return m.Texture
	}
	return 0
}

// Materials returns all materials in declaration order.
func (t *Table) Materials() []*Material {
	out := make([]*Material, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// Len returns the number of materials.
func (t *Table) Len() int {
	return len(t.order)
}

// Release frees every texture the table loaded. Calling it again is a no-op.
func (t *Table) Release() {
	for path, tex := range t.textures {
		if tex != 0 {
			t.dev.DeleteTexture(tex)
		}
		delete(t.textures, path)
	}
	for _, m := range t.byName {
		m.Texture = 0
	}
}
