// Package shader provides OpenGL shader programs and the embedded GLSL
// sources of the mesh program.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ErrMissingUniform is returned when a required uniform is absent or was
// optimized out of the linked program.
var ErrMissingUniform = errors.New("missing uniform")

// Program is a linked shader program with its resolved uniform locations.
type Program struct {
	ID uint32

	locations map[string]int32
	lookup    func(name string) int32
}

// NewProgram compiles and links a vertex and fragment shader.
func NewProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	vert, err := compile(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compile(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(frag)

	id := gl.CreateProgram()
	gl.AttachShader(id, vert)
	gl.AttachShader(id, frag)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, max(n, 1))
		gl.GetProgramInfoLog(id, n, nil, &buf[0])
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", infoLog(buf))
	}

	return newProgram(id, func(name string) int32 {
		return gl.GetUniformLocation(id, gl.Str(name+"\x00"))
	}), nil
}

func newProgram(id uint32, lookup func(string) int32) *Program {
	return &Program{ID: id, locations: make(map[string]int32), lookup: lookup}
}

func compile(source string, kind uint32, name string) (uint32, error) {
	sh := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csource, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, max(n, 1))
		gl.GetShaderInfoLog(sh, n, nil, &buf[0])
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %s", name, infoLog(buf))
	}
	return sh, nil
}

// infoLog trims the NUL terminator and trailing newlines GL leaves in logs.
func infoLog(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00\r\n ")
}

// Require resolves every named uniform, failing with ErrMissingUniform
// listing all names that are absent.
func (p *Program) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		loc := p.lookup(name)
		if loc < 0 {
			missing = append(missing, name)
			continue
		}
		p.locations[name] = loc
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s in program %d", ErrMissingUniform, strings.Join(missing, ", "), p.ID)
	}
	return nil
}

// Uniform returns the location of name, -1 when it was never resolved.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Delete frees the program. Calling it again is a no-op.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}
