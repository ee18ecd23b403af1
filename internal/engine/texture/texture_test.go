package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/gpu"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// twoRowPNG encodes a 2x2 image with a red top row and a blue bottom row.
func twoRowPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.Set(x, 0, red)
		img.Set(x, 1, blue)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := twoRowPNG(t)

	tests := []struct {
		name string
		flip bool
		top  color.RGBA
	}{
		{"upright", false, red},
		{"flipped", true, blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode("tex.png", data, tt.flip)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, 2, 2) {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
			if got := img.RGBAAt(0, 0); got != tt.top {
				t.Errorf("top-left: expected %v, got %v", tt.top, got)
			}
			if got := img.RGBAAt(1, 0); got != tt.top {
				t.Errorf("top-right: expected %v, got %v", tt.top, got)
			}
		})
	}
}

func TestDecode_SniffsUnknownExtension(t *testing.T) {
	img, err := Decode("texture.bin", twoRowPNG(t), false)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := img.RGBAAt(0, 1); got != blue {
		t.Errorf("expected blue bottom row, got %v", got)
	}
}

func TestDecode_BadData(t *testing.T) {
	tests := []string{"bad.png", "bad.tga", "bad.bmp", "bad.unknown"}
	for _, name := range tests {
		_, err := Decode(name, []byte("not an image"), true)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", name, err)
		}
	}
}

func TestFlipVertical_OddHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 3))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(0, 1, color.RGBA{G: 255, A: 255})
	img.SetRGBA(0, 2, blue)

	FlipVertical(img)

	if img.RGBAAt(0, 0) != blue || img.RGBAAt(0, 2) != red {
		t.Errorf("rows not swapped: %v %v", img.RGBAAt(0, 0), img.RGBAAt(0, 2))
	}
	if img.RGBAAt(0, 1) != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("middle row moved: %v", img.RGBAAt(0, 1))
	}
}

func TestImageToRGBA_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(5, 5, red)

	out := ImageToRGBA(src)
	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("expected origin at 0,0, got %v", out.Bounds().Min)
	}
	if out.RGBAAt(0, 0) != red {
		t.Errorf("expected red at origin, got %v", out.RGBAAt(0, 0))
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tex.png"), twoRowPNG(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	dev := gpu.NewMemoryDevice()
	loader := NewFileLoader(assets.NewManager(dir), dev)

	tex, err := loader.Load("tex.png", true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tex == 0 || !dev.IsLive(tex) {
		t.Errorf("expected a live texture, got %d", tex)
	}
	if dev.Live(gpu.KindTexture) != 1 {
		t.Errorf("expected 1 texture, got %d", dev.Live(gpu.KindTexture))
	}

	if _, err := loader.Load("broken.png", true); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if _, err := loader.Load("missing.png", true); !assets.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if dev.Live(gpu.KindTexture) != 1 {
		t.Errorf("failed loads allocated textures: %d live", dev.Live(gpu.KindTexture))
	}
}
