package gpu

import (
	"fmt"
	"image"

	"github.com/Faultbox/objview/internal/engine/model"
)

// ObjectKind names the kind of a device object.
type ObjectKind int

const (
	KindVertexArray ObjectKind = iota
	KindBuffer
	KindTexture
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindVertexArray:
		return "VertexArray"
	case KindBuffer:
		return "Buffer"
	case KindTexture:
		return "Texture"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// DrawCall records one DrawIndexed call.
type DrawCall struct {
	VertexArray Handle
	Texture     Handle
	Start       int32
	Count       int32
}

// MemoryDevice is a Device that keeps everything in process memory.
// It tracks live handles so leaks and double frees can be detected, and
// can be told to fail the Nth allocation.
type MemoryDevice struct {
	next  Handle
	live  map[Handle]ObjectKind
	bytes map[Handle]int

	// Allocs counts successful allocations of every kind.
	Allocs int
	// DoubleFrees counts deletes of handles that were not live.
	DoubleFrees int
	// FailAfter makes the allocation after that many successes fail (0 = never).
	FailAfter int

	Vertices map[Handle][]model.Vertex
	Indices  map[Handle][]uint32
	Draws    []DrawCall

	boundVAO Handle
	boundTex Handle
}

// NewMemoryDevice creates an empty in-memory device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{
		live:     make(map[Handle]ObjectKind),
		bytes:    make(map[Handle]int),
		Vertices: make(map[Handle][]model.Vertex),
		Indices:  make(map[Handle][]uint32),
	}
}

func (d *MemoryDevice) alloc(kind ObjectKind) (Handle, error) {
	if d.FailAfter > 0 && d.Allocs >= d.FailAfter {
		return 0, fmt.Errorf("%w: %s (injected)", ErrAllocation, kind)
	}
	d.next++
	d.live[d.next] = kind
	d.Allocs++
	return d.next, nil
}

func (d *MemoryDevice) free(h Handle, kind ObjectKind) {
	if k, ok := d.live[h]; !ok || k != kind {
		d.DoubleFrees++
		return
	}
	delete(d.live, h)
	delete(d.bytes, h)
	delete(d.Vertices, h)
	delete(d.Indices, h)
}

// Live returns the number of allocated objects of the given kind.
func (d *MemoryDevice) Live(kind ObjectKind) int {
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveTotal returns the number of allocated objects of every kind.
func (d *MemoryDevice) LiveTotal() int {
	return len(d.live)
}

// IsLive reports whether h is currently allocated.
func (d *MemoryDevice) IsLive(h Handle) bool {
	_, ok := d.live[h]
	return ok
}

// Bytes returns the total size of uploaded buffer and texture data.
func (d *MemoryDevice) Bytes() int {
	total := 0
	for _, n := range d.bytes {
		total += n
	}
	return total
}

// CreateVertexArray allocates a vertex array name.
func (d *MemoryDevice) CreateVertexArray() (Handle, error) {
	return d.alloc(KindVertexArray)
}

// CreateBuffer allocates a buffer name.
func (d *MemoryDevice) CreateBuffer() (Handle, error) {
	return d.alloc(KindBuffer)
}

// UploadVertices stores a copy of vertices under vbo.
func (d *MemoryDevice) UploadVertices(vao, vbo Handle, vertices []model.Vertex) error {
	if err := d.expect(vao, KindVertexArray); err != nil {
		return err
	}
	if err := d.expect(vbo, KindBuffer); err != nil {
		return err
	}
	d.Vertices[vbo] = append([]model.Vertex(nil), vertices...)
	d.bytes[vbo] = len(vertices) * 32
	return nil
}

// UploadIndices stores a copy of indices under ibo.
func (d *MemoryDevice) UploadIndices(vao, ibo Handle, indices []uint32) error {
	if err := d.expect(vao, KindVertexArray); err != nil {
		return err
	}
	if err := d.expect(ibo, KindBuffer); err != nil {
		return err
	}
	d.Indices[ibo] = append([]uint32(nil), indices...)
	d.bytes[ibo] = len(indices) * 4
	return nil
}

func (d *MemoryDevice) expect(h Handle, kind ObjectKind) error {
	if k, ok := d.live[h]; !ok || k != kind {
		return fmt.Errorf("handle %d is not a live %s", h, kind)
	}
	return nil
}

// DeleteVertexArray frees a vertex array name.
func (d *MemoryDevice) DeleteVertexArray(h Handle) {
	d.free(h, KindVertexArray)
}

// DeleteBuffer frees a buffer name.
func (d *MemoryDevice) DeleteBuffer(h Handle) {
	d.free(h, KindBuffer)
}

// BindVertexArray records the bound vertex array.
func (d *MemoryDevice) BindVertexArray(vao Handle) {
	d.boundVAO = vao
}

// DrawIndexed records a draw call against the current bindings.
func (d *MemoryDevice) DrawIndexed(start, count int32) {
	d.Draws = append(d.Draws, DrawCall{
		VertexArray: d.boundVAO,
		Texture:     d.boundTex,
		Start:       start,
		Count:       count,
	})
}

// CreateTexture allocates a texture name for img.
func (d *MemoryDevice) CreateTexture(img *image.RGBA) (Handle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("%w: empty image", ErrAllocation)
	}
	h, err := d.alloc(KindTexture)
	if err != nil {
		return 0, err
	}
	d.bytes[h] = len(img.Pix)
	return h, nil
}

// BindTexture records the bound texture.
func (d *MemoryDevice) BindTexture(tex Handle) {
	d.boundTex = tex
}

// DeleteTexture frees a texture name.
func (d *MemoryDevice) DeleteTexture(tex Handle) {
	d.free(tex, KindTexture)
}

// ResetDraws clears the recorded draw calls.
func (d *MemoryDevice) ResetDraws() {
	d.Draws = d.Draws[:0]
}

var _ Device = (*MemoryDevice)(nil)
