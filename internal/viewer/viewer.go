// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/config"
	"github.com/Faultbox/objview/internal/engine/camera"
	"github.com/Faultbox/objview/internal/engine/debug"
	"github.com/Faultbox/objview/internal/engine/input"
	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/picking"
	"github.com/Faultbox/objview/internal/engine/renderer"
	"github.com/Faultbox/objview/internal/engine/scene"
	"github.com/Faultbox/objview/internal/engine/texture"
	"github.com/Faultbox/objview/internal/engine/window"
	"github.com/Faultbox/objview/internal/logger"
)

const title = "objview"

// Viewer is the main viewer instance.
type Viewer struct {
	config  *config.Config
	running bool

	window      *window.Window
	renderer    *renderer.Renderer
	input       *input.Input
	assets      *assets.Manager
	scene       *scene.Scene
	camera      *camera.OrbitCamera
	screenshots *debug.Screenshots

	dragging bool
	fitted   int // Instance count the camera was last fitted to
	selected *scene.Instance
}

// New creates the window, renderer and scene for cfg.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("models", len(cfg.Scene.Models)),
	)

	v := &Viewer{
		config:      cfg,
		camera:      camera.NewOrbitCamera(),
		input:       input.New(),
		assets:      assets.NewManager(cfg.Assets.Roots...),
		screenshots: debug.NewScreenshots("screenshots", title),
	}
	v.screenshots.Format = cfg.Graphics.ScreenshotFormat

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		FOV:    cfg.Graphics.FOV,
		Sun:    cfg.Graphics.Sun,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(width, height)

	dev := v.renderer.Device()
	v.scene = scene.New(mesh.Deps{
		Source: v.assets,
		Device: dev,
		Loader: texture.NewFileLoader(v.assets, dev),
	})
	v.scene.Add(cfg.SceneSpecs()...)

	if !cfg.Scene.StaggerLoading {
		if err := v.scene.LoadAll(); err != nil {
			v.Close()
			return nil, fmt.Errorf("loading scene: %w", err)
		}
		v.assets.DropCache()
		v.fitCamera()
	}

	logger.Info("viewer initialized successfully")
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update camera and loading
		if err := v.update(float32(dt)); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		// 3. Render
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases the scene and then the GL context.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.scene != nil {
		v.scene.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	v.assets.Close()
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())

		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F:
				v.fitCamera()
			case sdl.SCANCODE_TAB:
				v.renderer.Wireframe = !v.renderer.Wireframe
			case sdl.SCANCODE_F12:
				v.captureScreenshot()
			case sdl.SCANCODE_H:
				if v.selected != nil {
					v.selected.Visible = false
					v.selected = nil
				}
			case sdl.SCANCODE_U:
				for _, inst := range v.scene.Instances() {
					inst.Visible = true
				}
			}

		case input.EventMouseDown:
			switch event.Button {
			case sdl.BUTTON_LEFT:
				v.dragging = true
			case sdl.BUTTON_RIGHT:
				v.pick(event.MouseX, event.MouseY)
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			}
		case input.EventMouseMove:
			if v.dragging {
				v.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.DeltaY))
		}
	}
}

// update loads one pending model per frame when staggering and moves the
// camera with WASD/QE.
func (v *Viewer) update(dt float32) error {
	if v.scene.Pending() > 0 {
		if _, err := v.scene.LoadNext(); err != nil {
			return err
		}
		v.window.SetTitle(fmt.Sprintf("%s - loading (%d left)", title, v.scene.Pending()))
		if v.scene.Pending() == 0 {
			v.assets.DropCache()
			v.window.SetTitle(fmt.Sprintf("%s - %d models", title, len(v.scene.Instances())))
		}
	}
	if n := len(v.scene.Instances()); n != v.fitted {
		v.fitCamera()
	}

	var forward, right, up float32
	if input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if input.IsKeyHeld(sdl.SCANCODE_E) {
		up++
	}
	if input.IsKeyHeld(sdl.SCANCODE_Q) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		scale := dt * 60 // Per-frame speed tuned at 60 FPS
		v.camera.HandleMovement(forward*scale, right*scale, up*scale)
	}
	return nil
}

// render draws the current frame.
func (v *Viewer) render() error {
	v.renderer.Begin()
	defer v.renderer.End()
	return v.renderer.DrawScene(v.scene, v.camera)
}

// pick selects the instance under the cursor.
func (v *Viewer) pick(x, y int) {
	width, height := v.window.GetSize()
	if width <= 0 || height <= 0 {
		return
	}
	view := v.camera.ViewMatrix()
	proj := v.camera.ProjectionMatrix(v.config.Graphics.FOV, float32(width)/float32(height))
	ray := picking.ScreenToRay(float32(x), float32(y), float32(width), float32(height), proj.Mul4(view).Inv())

	inst, ok := picking.Pick(ray, v.scene.Instances())
	if !ok {
		v.selected = nil
		return
	}
	v.selected = inst
	stats := inst.Mesh.Stats()
	logger.Info("selected model",
		zap.String("name", inst.Spec.Label()),
		zap.Stringer("kind", inst.Mesh.Kind()),
		zap.Int("faces", stats.Faces),
		zap.Int("vertices", stats.Vertices),
		zap.Int("groups", stats.Groups),
	)
	v.window.SetTitle(fmt.Sprintf("%s - %s", title, inst.Spec.Label()))
}

func (v *Viewer) fitCamera() {
	v.fitted = len(v.scene.Instances())
	if b, ok := v.scene.Bounds(); ok {
		v.camera.FitToBounds(b)
	}
}

// captureScreenshot reads back the framebuffer and saves it.
func (v *Viewer) captureScreenshot() {
	width, height := v.window.DrawableSize()
	if width <= 0 || height <= 0 {
		logger.Warn("screenshot failed: invalid viewport")
		return
	}

	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))

	path, err := v.screenshots.SaveFramebuffer(pixels, width, height)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}
