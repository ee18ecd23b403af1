// Package gldevice implements gpu.Device on OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/objview/internal/engine/gpu"
	"github.com/Faultbox/objview/internal/engine/model"
)

// Device implements gpu.Device on an OpenGL 4.1 core context.
// gl.Init must have been called on the current thread.
type Device struct {
	// Anisotropy is the max anisotropic filtering level for textures (0 = off).
	Anisotropy float32
	// Fallback is bound in place of texture 0, so untextured draws sample
	// a plain color instead of an incomplete texture.
	Fallback gpu.Handle
}

// New returns a device bound to the current OpenGL context.
func New() *Device {
	return &Device{Anisotropy: 8.0}
}

var _ gpu.Device = (*Device)(nil)

// CreateVertexArray generates a vertex array object.
func (d *Device) CreateVertexArray() (gpu.Handle, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, fmt.Errorf("%w: glGenVertexArrays", gpu.ErrAllocation)
	}
	return gpu.Handle(vao), nil
}

// CreateBuffer generates a buffer object.
func (d *Device) CreateBuffer() (gpu.Handle, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("%w: glGenBuffers", gpu.ErrAllocation)
	}
	return gpu.Handle(buf), nil
}

// UploadVertices fills vbo with interleaved vertices and records the layout in vao.
func (d *Device) UploadVertices(vao, vbo gpu.Handle, vertices []model.Vertex) error {
	if len(vertices) == 0 {
		return fmt.Errorf("%w: no vertices", gpu.ErrEmptyMesh)
	}

	gl.BindVertexArray(uint32(vao))
	defer gl.BindVertexArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vbo))
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	if err := checkError("vertex buffer"); err != nil {
		return err
	}

	// Position
	gl.VertexAttribPointerWithOffset(gpu.AttribPosition, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(gpu.AttribPosition)
	// TexCoord
	gl.VertexAttribPointerWithOffset(gpu.AttribTexCoord, 2, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(gpu.AttribTexCoord)
	// Normal
	gl.VertexAttribPointerWithOffset(gpu.AttribNormal, 3, gl.FLOAT, false, int32(vertexSize), 5*4)
	gl.EnableVertexAttribArray(gpu.AttribNormal)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// UploadIndices fills ibo and attaches it to vao.
func (d *Device) UploadIndices(vao, ibo gpu.Handle, indices []uint32) error {
	if len(indices) == 0 {
		return fmt.Errorf("%w: no indices", gpu.ErrEmptyMesh)
	}

	gl.BindVertexArray(uint32(vao))
	defer gl.BindVertexArray(0)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(ibo))
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	return checkError("index buffer")
}

// DeleteVertexArray frees a vertex array object.
func (d *Device) DeleteVertexArray(h gpu.Handle) {
	vao := uint32(h)
	gl.DeleteVertexArrays(1, &vao)
}

// DeleteBuffer frees a buffer object.
func (d *Device) DeleteBuffer(h gpu.Handle) {
	buf := uint32(h)
	gl.DeleteBuffers(1, &buf)
}

// BindVertexArray binds vao (0 unbinds).
func (d *Device) BindVertexArray(vao gpu.Handle) {
	gl.BindVertexArray(uint32(vao))
}

// DrawIndexed draws a range of the bound index buffer as triangles.
func (d *Device) DrawIndexed(start, count int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, uintptr(start)*4)
}

// CreateTexture uploads img as a mipmapped, repeating RGBA texture.
func (d *Device) CreateTexture(img *image.RGBA) (gpu.Handle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("%w: empty image", gpu.ErrAllocation)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	if texID == 0 {
		return 0, fmt.Errorf("%w: glGenTextures", gpu.ErrAllocation)
	}

	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	if err := checkError("texture"); err != nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.DeleteTextures(1, &texID)
		return 0, err
	}
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if d.Anisotropy > 0 {
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, d.Anisotropy)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return gpu.Handle(texID), nil
}

// BindTexture binds tex to texture unit 0. Zero binds Fallback.
func (d *Device) BindTexture(tex gpu.Handle) {
	if tex == 0 {
		tex = d.Fallback
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// DeleteTexture frees a texture object.
func (d *Device) DeleteTexture(tex gpu.Handle) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

// checkError drains the GL error queue, reporting out-of-memory as gpu.ErrAllocation.
func checkError(what string) error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	switch first {
	case 0:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("%w: %s: out of memory", gpu.ErrAllocation, what)
	default:
		return fmt.Errorf("%s: GL error 0x%04X", what, first)
	}
}
