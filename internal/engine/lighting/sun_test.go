package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSun_Position(t *testing.T) {
	tests := []struct {
		name string
		sun  Sun
		want mgl32.Vec3
	}{
		{"zenith", Sun{Latitude: 90}, mgl32.Vec3{0, 1, 0}},
		{"horizon front", Sun{}, mgl32.Vec3{0, 0, 1}},
		{"horizon right", Sun{Longitude: 90}, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sun.Position(); !got.ApproxEqualThreshold(tt.want, 1e-5) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSun_Direction(t *testing.T) {
	s := DefaultSun()
	d := s.Direction()
	if !mgl32.FloatEqualThreshold(d.Len(), 1, 1e-5) {
		t.Errorf("expected unit direction, got length %f", d.Len())
	}
	if d[1] >= 0 {
		t.Errorf("expected the default sun to shine downwards, got %v", d)
	}
	if !d.Add(s.Position()).ApproxEqualThreshold(mgl32.Vec3{}, 1e-6) {
		t.Errorf("direction %v is not opposite position %v", d, s.Position())
	}
}
