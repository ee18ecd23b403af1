// Package mesh loads an OBJ model into a drawable device mesh.
//
// One loader serves every texturing mode. The mode is picked once per mesh
// from the load options and recorded as the mesh Kind.
package mesh

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/gpu"
	"github.com/Faultbox/objview/internal/engine/material"
	"github.com/Faultbox/objview/internal/engine/model"
	"github.com/Faultbox/objview/internal/engine/texture"
	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/pkg/formats"
)

// Kind is the texturing capability of a mesh.
type Kind int

const (
	// Untextured meshes draw with no texture bound.
	Untextured Kind = iota
	// SingleTexture meshes bind one model-level texture for the whole draw.
	SingleTexture
	// PerFaceMaterial meshes draw each material group with its own texture.
	PerFaceMaterial
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Untextured:
		return "Untextured"
	case SingleTexture:
		return "SingleTexture"
	case PerFaceMaterial:
		return "PerFaceMaterial"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Options selects how a model is textured.
type Options struct {
	// Texture is a model-level texture path, used when Materials is false.
	Texture string
	// Materials enables mtllib/usemtl handling.
	Materials bool
	// FlipTextures flips every texture of the mesh vertically on load,
	// the model texture and material textures alike.
	FlipTextures bool
}

// Kind returns the capability the options select.
func (o Options) Kind() Kind {
	switch {
	case o.Materials:
		return PerFaceMaterial
	case o.Texture != "":
		return SingleTexture
	default:
		return Untextured
	}
}

// Deps are the collaborators a mesh is loaded with.
type Deps struct {
	Source assets.Source
	Device gpu.Device
	Loader texture.Loader
}

// Stats summarizes a loaded mesh.
type Stats struct {
	Faces    int
	Vertices int
	Indices  int
	Groups   int
	Bounds   model.Bounds
}

// Mesh is a device-resident model together with the textures it owns.
type Mesh struct {
	path string
	kind Kind
	dev  gpu.Device

	geometry  *gpu.Geometry
	texture   gpu.Handle
	materials *material.Table
	stats     Stats
}

// Load parses the OBJ file at path, deduplicates its vertices and uploads
// the result. Everything allocated is released again if any step fails.
func Load(deps Deps, path string, opts Options) (*Mesh, error) {
	m := &Mesh{
		path: path,
		kind: opts.Kind(),
		dev:  deps.Device,
	}
	log := logger.Named("mesh").With(zap.String("path", path), zap.Stringer("kind", m.kind))

	if err := m.load(deps, opts, log); err != nil {
		m.Release()
		return nil, err
	}

	log.Info("mesh loaded",
		zap.Int("faces", m.stats.Faces),
		zap.Int("vertices", m.stats.Vertices),
		zap.Int("groups", m.stats.Groups),
	)
	return m, nil
}

func (m *Mesh) load(deps Deps, opts Options, log *zap.Logger) error {
	var parseOpts formats.OBJOptions
	if m.kind == PerFaceMaterial {
		m.materials = material.NewTable(deps.Source, deps.Loader, deps.Device, material.Options{
			BaseDir:      filepath.Dir(m.path),
			FlipTextures: opts.FlipTextures,
		})
		parseOpts.Materials = m.materials
	}

	rc, err := deps.Source.Open(m.path)
	if err != nil {
		return err
	}
	obj, err := formats.ParseOBJ(rc, parseOpts)
	rc.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", m.path, err)
	}

	indexed, err := model.Index(obj)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", m.path, err)
	}
	m.stats = Stats{
		Faces:    len(obj.Faces),
		Vertices: len(indexed.Vertices),
		Indices:  len(indexed.Indices),
		Groups:   len(indexed.Groups),
		Bounds:   indexed.Bounds,
	}

	m.geometry = gpu.NewGeometry(deps.Device)
	if err := m.geometry.Upload(indexed); err != nil {
		return fmt.Errorf("uploading %s: %w", m.path, err)
	}

	if m.kind == SingleTexture {
		tex, err := deps.Loader.Load(opts.Texture, opts.FlipTextures)
		if err != nil {
			log.Warn("failed to load model texture", zap.String("texture", opts.Texture), zap.Error(err))
		}
		m.texture = tex
	}
	return nil
}

// Path returns the model file path.
func (m *Mesh) Path() string {
	return m.path
}

// Kind returns the texturing capability chosen at load time.
func (m *Mesh) Kind() Kind {
	return m.kind
}

// Stats returns face, vertex and group counts.
func (m *Mesh) Stats() Stats {
	return m.stats
}

// Texture returns the model-level texture (SingleTexture meshes only).
func (m *Mesh) Texture() gpu.Handle {
	return m.texture
}

// Geometry returns the device geometry.
func (m *Mesh) Geometry() *gpu.Geometry {
	return m.geometry
}

// Materials returns the mesh materials in declaration order.
// Meshes loaded without materials return nil.
func (m *Mesh) Materials() []*material.Material {
	if m.materials == nil {
		return nil
	}
	return m.materials.Materials()
}

// Draw issues the draw calls for the mesh.
// PerFaceMaterial meshes bind each group's texture once and draw that range.
func (m *Mesh) Draw() error {
	if m.geometry == nil {
		return fmt.Errorf("%w: mesh not loaded", gpu.ErrInvalidState)
	}

	switch m.kind {
	case PerFaceMaterial:
		return m.geometry.Draw(func(group model.MaterialGroup) {
			m.dev.BindTexture(m.materials.Texture(group.Material))
		})
	case SingleTexture:
		m.dev.BindTexture(m.texture)
	default:
		m.dev.BindTexture(0)
	}
	return m.geometry.Draw(nil)
}

// Release frees the geometry and every texture owned by the mesh.
// Calling it again is a no-op.
func (m *Mesh) Release() {
	if m.geometry != nil {
		m.geometry.Release()
	}
	if m.texture != 0 {
		m.dev.DeleteTexture(m.texture)
		m.texture = 0
	}
	if m.materials != nil {
		m.materials.Release()
	}
}
