package gpu

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/engine/model"
	"github.com/Faultbox/objview/internal/logger"
)

// State is the lifecycle stage of a Geometry.
type State int

const (
	StateEmpty State = iota
	StateUploaded
	StateReleased
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateUploaded:
		return "Uploaded"
	case StateReleased:
		return "Released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Geometry owns the vertex array, vertex buffer and index buffer of one mesh.
//
// Lifecycle: Empty -> Uploaded -> Released. Release is valid from any state
// and leaves no handle allocated.
type Geometry struct {
	dev Device

	vao Handle
	vbo Handle
	ibo Handle

	indexCount int32
	groups     []model.MaterialGroup
	state      State
}

// NewGeometry creates an empty geometry resource on dev.
func NewGeometry(dev Device) *Geometry {
	return &Geometry{dev: dev}
}

// State returns the current lifecycle state.
func (g *Geometry) State() State {
	return g.state
}

// IndexCount returns the number of indices drawn by Draw.
func (g *Geometry) IndexCount() int32 {
	return g.indexCount
}

// Groups returns the material groups recorded at upload.
func (g *Geometry) Groups() []model.MaterialGroup {
	return g.groups
}

// Handles returns the vertex array, vertex buffer and index buffer names.
func (g *Geometry) Handles() (vao, vbo, ibo Handle) {
	return g.vao, g.vbo, g.ibo
}

// Upload allocates the device buffers and copies mesh into them.
// On failure every handle created so far is freed and the geometry ends
// up Released.
func (g *Geometry) Upload(mesh *model.Mesh) error {
	if g.state != StateEmpty {
		return fmt.Errorf("%w: upload from %s", ErrInvalidState, g.state)
	}
	if mesh == nil || len(mesh.Indices) == 0 || len(mesh.Vertices) == 0 {
		return ErrEmptyMesh
	}

	if err := g.upload(mesh); err != nil {
		g.Release()
		return err
	}

	g.indexCount = int32(len(mesh.Indices))
	g.groups = mesh.Groups
	g.state = StateUploaded

	logger.Debug("geometry uploaded",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("indices", len(mesh.Indices)),
		zap.Int("groups", len(mesh.Groups)),
	)
	return nil
}

func (g *Geometry) upload(mesh *model.Mesh) error {
	vao, err := g.dev.CreateVertexArray()
	if err != nil {
		return fmt.Errorf("vertex array: %w", err)
	}
	g.vao = vao

	vbo, err := g.dev.CreateBuffer()
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	g.vbo = vbo

	ibo, err := g.dev.CreateBuffer()
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	g.ibo = ibo

	if err := g.dev.UploadVertices(vao, vbo, mesh.Vertices); err != nil {
		return fmt.Errorf("uploading vertices: %w", err)
	}
	if err := g.dev.UploadIndices(vao, ibo, mesh.Indices); err != nil {
		return fmt.Errorf("uploading indices: %w", err)
	}
	return nil
}

// Draw issues the indexed triangle draw.
// With a nil bind the whole index buffer is drawn at once. Otherwise bind is
// called before each material group and the group range is drawn.
func (g *Geometry) Draw(bind func(group model.MaterialGroup)) error {
	if g.state != StateUploaded {
		return fmt.Errorf("%w: draw from %s", ErrInvalidState, g.state)
	}

	g.dev.BindVertexArray(g.vao)
	if bind == nil {
		g.dev.DrawIndexed(0, g.indexCount)
	} else {
		for _, group := range g.groups {
			bind(group)
			g.dev.DrawIndexed(group.StartIndex, group.IndexCount)
		}
	}
	g.dev.BindVertexArray(0)
	return nil
}

// Release frees all device handles. Calling it again is a no-op.
func (g *Geometry) Release() {
	if g.vao != 0 {
		g.dev.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		g.dev.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
	if g.ibo != 0 {
		g.dev.DeleteBuffer(g.ibo)
		g.ibo = 0
	}
	g.indexCount = 0
	g.groups = nil
	g.state = StateReleased
}
