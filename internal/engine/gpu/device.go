// Package gpu owns device-side geometry and texture handles.
//
// All calls must be made on the thread that owns the graphics context.
package gpu

import (
	"errors"
	"image"

	"github.com/Faultbox/objview/internal/engine/model"
)

// Device errors.
var (
	ErrAllocation   = errors.New("device allocation failed")
	ErrInvalidState = errors.New("invalid geometry state")
	ErrEmptyMesh    = errors.New("mesh has no triangles")
)

// Handle is a device object name. Zero means "not allocated".
type Handle uint32

// Vertex attribute slots of the interleaved layout.
const (
	AttribPosition = 0
	AttribTexCoord = 1
	AttribNormal   = 2
)

// Device is the graphics API surface used to create, draw and free meshes.
type Device interface {
	CreateVertexArray() (Handle, error)
	CreateBuffer() (Handle, error)

	// UploadVertices fills vbo and records the attribute layout in vao.
	UploadVertices(vao, vbo Handle, vertices []model.Vertex) error
	// UploadIndices fills ibo and attaches it to vao.
	UploadIndices(vao, ibo Handle, indices []uint32) error

	DeleteVertexArray(h Handle)
	DeleteBuffer(h Handle)

	BindVertexArray(vao Handle)
	// DrawIndexed draws count indices starting at index start as triangles.
	DrawIndexed(start, count int32)

	CreateTexture(img *image.RGBA) (Handle, error)
	BindTexture(tex Handle)
	DeleteTexture(tex Handle)
}
