package model

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/objview/pkg/formats"
)

// ErrTooManyVertices is returned when the unique vertex count overflows uint32 indices.
var ErrTooManyVertices = errors.New("too many unique vertices for 32-bit indices")

// vertexKey is the exact dedup key of a corner: the bit patterns of its
// eight components, with negative zero folded into positive zero.
type vertexKey [8]uint32

func keyOf(v Vertex) vertexKey {
	return vertexKey{
		bits(v.Position[0]), bits(v.Position[1]), bits(v.Position[2]),
		bits(v.TexCoord[0]), bits(v.TexCoord[1]),
		bits(v.Normal[0]), bits(v.Normal[1]), bits(v.Normal[2]),
	}
}

func bits(f float32) uint32 {
	if f == 0 {
		return 0
	}
	return gomath.Float32bits(f)
}

// Index deduplicates the face corners of obj into a unique vertex array and
// a triangle-list index array.
//
// Faces are walked in order and corners 0..2 within each face; the first
// corner to produce a given tuple owns its slot. Indices mirror the face
// order exactly, and runs of faces sharing a material become one group.
func Index(obj *formats.OBJ) (*Mesh, error) {
	mesh := &Mesh{
		Indices: make([]uint32, 0, len(obj.Faces)*3),
	}
	slots := make(map[vertexKey]uint32, len(obj.Faces))

	for fi := range obj.Faces {
		face := &obj.Faces[fi]

		for ci, c := range face.Corners {
			if err := obj.CheckCorner(fi, ci, c, face.Line); err != nil {
				return nil, err
			}

			v := Vertex{
				Position: obj.Positions[c.Position-1],
				TexCoord: obj.TexCoords[c.TexCoord-1],
				Normal:   obj.Normals[c.Normal-1],
			}

			key := keyOf(v)
			slot, seen := slots[key]
			if !seen {
				if uint64(len(mesh.Vertices)) >= gomath.MaxUint32 {
					return nil, fmt.Errorf("%w: face %d", ErrTooManyVertices, fi)
				}
				slot = uint32(len(mesh.Vertices))
				slots[key] = slot
				if len(mesh.Vertices) == 0 {
					mesh.Bounds = Bounds{Min: v.Position, Max: v.Position}
				}
				mesh.Vertices = append(mesh.Vertices, v)
				updateBounds(&mesh.Bounds, v.Position)
			}
			mesh.Indices = append(mesh.Indices, slot)
		}

		mesh.addToGroup(face.Material)
	}

	return mesh, nil
}

// addToGroup extends the last group with one triangle, or opens a new group
// when the material changes.
func (m *Mesh) addToGroup(material string) {
	if n := len(m.Groups); n > 0 && m.Groups[n-1].Material == material {
		m.Groups[n-1].IndexCount += 3
		return
	}
	m.Groups = append(m.Groups, MaterialGroup{
		Material:   material,
		StartIndex: int32(len(m.Indices) - 3),
		IndexCount: 3,
	})
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
