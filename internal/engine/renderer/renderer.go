// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/engine/camera"
	"github.com/Faultbox/objview/internal/engine/gpu/gldevice"
	"github.com/Faultbox/objview/internal/engine/lighting"
	"github.com/Faultbox/objview/internal/engine/scene"
	"github.com/Faultbox/objview/internal/engine/shader"
	"github.com/Faultbox/objview/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	FOV    float32 // Vertical field of view in degrees
	Sun    lighting.Sun
}

// Renderer draws a scene through the mesh shader program.
type Renderer struct {
	config Config
	device *gldevice.Device

	program *shader.Program

	Wireframe bool
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background

	var err error
	r.program, err = shader.NewProgram(shader.MeshVertexShader, shader.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	if err := r.program.Require("uModel", "uView", "uProjection", "uTexture", "uLightDir"); err != nil {
		r.program.Delete()
		return nil, err
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID))

	r.device = gldevice.New()
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	r.device.Fallback, err = r.device.CreateTexture(white)
	if err != nil {
		r.program.Delete()
		return nil, fmt.Errorf("failed to create fallback texture: %w", err)
	}

	return r, nil
}

// Device returns the GL device meshes are uploaded to.
func (r *Renderer) Device() *gldevice.Device {
	return r.device
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.device != nil && r.device.Fallback != 0 {
		r.device.DeleteTexture(r.device.Fallback)
		r.device.Fallback = 0
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}

// DrawScene draws every visible instance of s as seen from cam.
func (r *Renderer) DrawScene(s *scene.Scene, cam *camera.OrbitCamera) error {
	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(r.config.FOV, aspect)
	lightDir := r.config.Sun.Direction()

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, &view[0])
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, &proj[0])
	gl.Uniform1i(r.program.Uniform("uTexture"), 0)
	gl.Uniform3fv(r.program.Uniform("uLightDir"), 1, &lightDir[0])

	locModel := r.program.Uniform("uModel")
	return s.Draw(func(model mgl32.Mat4) {
		gl.UniformMatrix4fv(locModel, 1, false, &model[0])
	})
}
