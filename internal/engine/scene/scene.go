// Package scene owns the set of loaded model instances and their placement.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/model"
	"github.com/Faultbox/objview/internal/logger"
)

// ErrClosed is returned when a closed scene is used.
var ErrClosed = errors.New("scene closed")

// Spec describes one model to place in the scene.
type Spec struct {
	Name         string
	Model        string
	Texture      string
	Materials    bool
	FlipTextures bool
	Position     [3]float32
	Rotation     [3]float32 // Euler angles in degrees
	Scale        float32    // Uniform scale, 0 means 1
}

// Options returns the mesh load options for the spec.
func (s Spec) Options() mesh.Options {
	return mesh.Options{
		Texture:      s.Texture,
		Materials:    s.Materials,
		FlipTextures: s.FlipTextures,
	}
}

// Label returns Name, or the model path when no name is set.
func (s Spec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Model
}

// Instance is a loaded mesh placed in the scene.
type Instance struct {
	Spec    Spec
	Mesh    *mesh.Mesh
	Visible bool
}

// Transform returns the model matrix: translate * rotY * rotX * rotZ * scale.
func (i *Instance) Transform() mgl32.Mat4 {
	s := i.Spec
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}

	result := mgl32.Translate3D(s.Position[0], s.Position[1], s.Position[2])
	result = result.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(s.Rotation[1])))
	result = result.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(s.Rotation[0])))
	result = result.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(s.Rotation[2])))
	return result.Mul4(mgl32.Scale3D(scale, scale, scale))
}

// Failure records a model that could not be loaded.
type Failure struct {
	Spec Spec
	Err  error
}

// Scene owns every mesh it loads and frees them on Close.
type Scene struct {
	deps      mesh.Deps
	pending   []Spec
	instances []*Instance
	failures  []Failure
	closed    bool
	log       *zap.Logger
}

// New creates an empty scene that loads meshes with deps.
func New(deps mesh.Deps) *Scene {
	return &Scene{
		deps: deps,
		log:  logger.Named("scene"),
	}
}

// Add queues models for loading.
func (s *Scene) Add(specs ...Spec) {
	s.pending = append(s.pending, specs...)
}

// Pending returns the number of models not yet loaded.
func (s *Scene) Pending() int {
	return len(s.pending)
}

// LoadNext loads one queued model and reports whether the queue is now empty.
// A model that fails to load is logged, recorded in Failures and skipped.
func (s *Scene) LoadNext() (done bool, err error) {
	if s.closed {
		return true, ErrClosed
	}
	if len(s.pending) == 0 {
		return true, nil
	}

	spec := s.pending[0]
	s.pending = s.pending[1:]

	m, loadErr := mesh.Load(s.deps, spec.Model, spec.Options())
	if loadErr != nil {
		s.log.Error("failed to load model", zap.String("model", spec.Label()), zap.Error(loadErr))
		s.failures = append(s.failures, Failure{Spec: spec, Err: loadErr})
	} else {
		s.instances = append(s.instances, &Instance{Spec: spec, Mesh: m, Visible: true})
	}

	if len(s.pending) == 0 {
		s.log.Info("all models loaded",
			zap.Int("loaded", len(s.instances)),
			zap.Int("failed", len(s.failures)),
		)
		return true, nil
	}
	return false, nil
}

// LoadAll loads every queued model.
func (s *Scene) LoadAll() error {
	for {
		done, err := s.LoadNext()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Instances returns the loaded instances in load order.
func (s *Scene) Instances() []*Instance {
	return s.instances
}

// Failures returns the models that failed to load.
func (s *Scene) Failures() []Failure {
	return s.failures
}

// Bounds returns the world-space box around every loaded instance.
// ok is false when nothing is loaded.
func (s *Scene) Bounds() (b model.Bounds, ok bool) {
	for _, inst := range s.instances {
		wb := inst.WorldBounds()
		if !ok {
			b, ok = wb, true
			continue
		}
		b = b.Union(wb)
	}
	return b, ok
}

// WorldBounds returns the mesh bounds after the instance transform.
func (i *Instance) WorldBounds() model.Bounds {
	local := i.Mesh.Stats().Bounds
	m := i.Transform()

	var out model.Bounds
	for c := 0; c < 8; c++ {
		corner := mgl32.Vec3{local.Min[0], local.Min[1], local.Min[2]}
		for axis := 0; axis < 3; axis++ {
			if c&(1<<axis) != 0 {
				corner[axis] = local.Max[axis]
			}
		}
		p := mgl32.TransformCoordinate(corner, m)
		pb := model.Bounds{Min: p, Max: p}
		if c == 0 {
			out = pb
		} else {
			out = out.Union(pb)
		}
	}
	return out
}

// Draw calls setModel with each visible instance's transform, then draws it.
func (s *Scene) Draw(setModel func(mgl32.Mat4)) error {
	if s.closed {
		return ErrClosed
	}
	for _, inst := range s.instances {
		if !inst.Visible {
			continue
		}
		if setModel != nil {
			setModel(inst.Transform())
		}
		if err := inst.Mesh.Draw(); err != nil {
			return fmt.Errorf("drawing %s: %w", inst.Spec.Label(), err)
		}
	}
	return nil
}

// Close releases every loaded mesh. Calling it again is a no-op.
func (s *Scene) Close() {
	if s.closed {
		return
	}
	for _, inst := range s.instances {
		inst.Mesh.Release()
	}
	s.instances = nil
	s.pending = nil
	s.closed = true
}
