// MTL (Wavefront material library) format parser.
package formats

import (
	"fmt"
	"io"
)

// MTLMaterial is one newmtl block of a material library.
type MTLMaterial struct {
	Name       string
	Ambient    [3]float32 // Ka
	Diffuse    [3]float32 // Kd
	Specular   [3]float32 // Ks
	Shininess  float32    // Ns
	DiffuseMap string     // map_Kd, as written in the file
}

// MTL holds the materials of a library in declaration order.
type MTL struct {
	Materials []MTLMaterial
}

// Find returns the material with the given name.
func (m *MTL) Find(name string) (*MTLMaterial, bool) {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return &m.Materials[i], true
		}
	}
	return nil, false
}

// ParseMTL parses material library data from r.
// Property lines before the first newmtl have no entry to apply to and are
// skipped. A name declared twice keeps the later block.
func ParseMTL(r io.Reader) (*MTL, error) {
	mtl := &MTL{}
	ls := newLineScanner(r)
	current := -1
	byName := make(map[string]int)

	for {
		keyword, fields, ok := ls.next()
		if !ok {
			break
		}

		if keyword == "newmtl" {
			name := ls.rest(keyword)
			if name == "" {
				return nil, ls.fail(fmt.Errorf("%w: newmtl without a name", ErrMalformedLine))
			}
			if idx, exists := byName[name]; exists {
				mtl.Materials[idx] = MTLMaterial{Name: name}
				current = idx
				continue
			}
			mtl.Materials = append(mtl.Materials, MTLMaterial{Name: name})
			current = len(mtl.Materials) - 1
			byName[name] = current
			continue
		}

		if current < 0 {
			continue
		}
		m := &mtl.Materials[current]

		var err error
		switch keyword {
		case "Ka":
			err = parseFloats(fields, m.Ambient[:])
		case "Kd":
			err = parseFloats(fields, m.Diffuse[:])
		case "Ks":
			err = parseFloats(fields, m.Specular[:])
		case "Ns":
			var ns [1]float32
			err = parseFloats(fields, ns[:])
			m.Shininess = ns[0]
		case "map_Kd":
			m.DiffuseMap = ls.rest(keyword)
			if m.DiffuseMap == "" {
				err = fmt.Errorf("%w: map_Kd without a path", ErrMalformedLine)
			}
		}
		if err != nil {
			return nil, ls.fail(err)
		}
	}

	if err := ls.err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return mtl, nil
}
