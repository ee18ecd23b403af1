// OBJ (Wavefront geometry) format parser.
package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Attribute identifies which pool a corner index points into.
type Attribute int

const (
	AttrPosition Attribute = iota
	AttrTexCoord
	AttrNormal
)

// String returns the OBJ directive of the attribute pool.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "v"
	case AttrTexCoord:
		return "vt"
	case AttrNormal:
		return "vn"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// Corner is one triangle vertex: 1-based indices into the attribute pools.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// Index returns the 1-based index the corner holds for attribute a.
func (c Corner) Index(a Attribute) int {
	switch a {
	case AttrPosition:
		return c.Position
	case AttrTexCoord:
		return c.TexCoord
	default:
		return c.Normal
	}
}

// Face is a triangle declared by an "f" line.
type Face struct {
	Corners  [3]Corner
	Material string // Material in effect when the face was declared ("" for none)
	Line     int    // Source line number
}

// OBJ holds the attribute pools and face sequence of a parsed model.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	Faces        []Face
	MaterialLibs []string // mtllib names in file order
}

// PoolSize returns the number of entries in the pool for attribute a.
func (o *OBJ) PoolSize(a Attribute) int {
	switch a {
	case AttrPosition:
		return len(o.Positions)
	case AttrTexCoord:
		return len(o.TexCoords)
	default:
		return len(o.Normals)
	}
}

// ReferenceError reports a face corner that points outside its pool.
type ReferenceError struct {
	Face      int // 0-based face ordinal
	Corner    int // 0..2
	Line      int
	Attribute Attribute
	Index     int // 1-based index as written
	PoolSize  int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v: face %d (line %d) corner %d: %s index %d outside [1, %d]",
		ErrDanglingReference, e.Face, e.Line, e.Corner, e.Attribute, e.Index, e.PoolSize)
}

func (e *ReferenceError) Unwrap() error {
	return ErrDanglingReference
}

// CheckCorner validates every index of a corner against the current pools.
func (o *OBJ) CheckCorner(face, corner int, c Corner, line int) error {
	for _, a := range [...]Attribute{AttrPosition, AttrTexCoord, AttrNormal} {
		idx, size := c.Index(a), o.PoolSize(a)
		if idx < 1 || idx > size {
			return &ReferenceError{
				Face:      face,
				Corner:    corner,
				Line:      line,
				Attribute: a,
				Index:     idx,
				PoolSize:  size,
			}
		}
	}
	return nil
}

// MaterialResolver receives material directives while an OBJ file is parsed.
type MaterialResolver interface {
	// LoadLibrary loads the library named by an mtllib line.
	LoadLibrary(name string) error
	// HasMaterial reports whether a loaded library declared name.
	HasMaterial(name string) bool
}

// OBJOptions configures OBJ parsing.
type OBJOptions struct {
	// Materials handles mtllib/usemtl. When nil those lines are ignored.
	Materials MaterialResolver
}

// OpenError maps a failure to open path to ErrFileNotFound, keeping the cause.
func OpenError(path string, err error) error {
	if errors.Is(err, ErrFileNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
}

// LoadOBJ opens and parses the OBJ file at path.
func LoadOBJ(path string, opts OBJOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obj, nil
}

// ParseOBJ parses triangle-only OBJ data from r.
func ParseOBJ(r io.Reader, opts OBJOptions) (*OBJ, error) {
	obj := &OBJ{}
	ls := newLineScanner(r)
	material := ""

	for {
		keyword, fields, ok := ls.next()
		if !ok {
			break
		}

		switch keyword {
		case "v":
			// Optional w, r g b, or w r g b.
			var p [3]float32
			if err := parseFloats(fields, p[:], 1, 3, 4); err != nil {
				return nil, ls.fail(err)
			}
			obj.Positions = append(obj.Positions, p)

		case "vt":
			var t [2]float32
			if err := parseFloats(fields, t[:], 1); err != nil {
				return nil, ls.fail(err)
			}
			obj.TexCoords = append(obj.TexCoords, t)

		case "vn":
			if len(fields) != 3 {
				return nil, ls.fail(fmt.Errorf("%w: normal needs 3 values, got %d", ErrMalformedLine, len(fields)))
			}
			var n [3]float32
			if err := parseFloats(fields, n[:]); err != nil {
				return nil, ls.fail(err)
			}
			obj.Normals = append(obj.Normals, n)

		case "f":
			face, err := parseFace(fields)
			if err != nil {
				return nil, ls.fail(err)
			}
			face.Material = material
			face.Line = ls.line
			for i, c := range face.Corners {
				if err := obj.CheckCorner(len(obj.Faces), i, c, ls.line); err != nil {
					return nil, err
				}
			}
			obj.Faces = append(obj.Faces, face)

		case "mtllib":
			if opts.Materials == nil {
				continue
			}
			// One line may name several libraries, so names cannot contain spaces.
			if len(fields) == 0 {
				return nil, ls.fail(fmt.Errorf("%w: mtllib without a file name", ErrMalformedLine))
			}
			for _, name := range fields {
				if err := opts.Materials.LoadLibrary(name); err != nil {
					return nil, fmt.Errorf("line %d: mtllib %s: %w", ls.line, name, err)
				}
				obj.MaterialLibs = append(obj.MaterialLibs, name)
			}

		case "usemtl":
			if opts.Materials == nil {
				continue
			}
			name := ls.rest(keyword)
			if name == "" {
				return nil, ls.fail(fmt.Errorf("%w: usemtl without a name", ErrMalformedLine))
			}
			if !opts.Materials.HasMaterial(name) {
				return nil, ls.fail(fmt.Errorf("%w: %q", ErrUndeclaredMaterial, name))
			}
			material = name
		}
	}

	if err := ls.err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	return obj, nil
}

// parseFace parses the three "p/t/n" corner fields of an f line.
func parseFace(fields []string) (Face, error) {
	var face Face
	if len(fields) != 3 {
		return face, fmt.Errorf("%w: %d corners, only triangles are supported", ErrUnsupportedFace, len(fields))
	}
	for i, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) != 3 {
			return face, fmt.Errorf("%w: corner %q is not p/t/n", ErrMalformedLine, field)
		}
		var idx [3]int
		for j, part := range parts {
			v, err := strconv.Atoi(part)
			if err != nil {
				return face, fmt.Errorf("%w: corner %q has a bad index", ErrMalformedLine, field)
			}
			idx[j] = v
		}
		face.Corners[i] = Corner{Position: idx[0], TexCoord: idx[1], Normal: idx[2]}
	}
	return face, nil
}
