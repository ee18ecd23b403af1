// Package debug provides viewer debugging aids.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Faultbox/objview/internal/engine/texture"
)

// Screenshot file formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp" // Lossless
)

// Screenshots writes captured frames as timestamped image files.
type Screenshots struct {
	Dir    string
	Prefix string
	Format string // FormatPNG or FormatWebP, empty means PNG

	now func() time.Time
}

// NewScreenshots creates a capture handler writing into dir.
func NewScreenshots(dir, prefix string) *Screenshots {
	return &Screenshots{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture is written to.
func (s *Screenshots) Filename() string {
	name := fmt.Sprintf("%s_%s.%s", s.Prefix, s.now().Format("2006-01-02_15-04-05.000"), s.format())
	if s.Dir != "" {
		name = filepath.Join(s.Dir, name)
	}
	return name
}

func (s *Screenshots) format() string {
	if strings.EqualFold(s.Format, FormatWebP) {
		return FormatWebP
	}
	return FormatPNG
}

// SaveFramebuffer saves bottom-up RGBA rows as read back from the
// framebuffer. Rows are flipped so the image is upright.
func (s *Screenshots) SaveFramebuffer(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pixels))
	}

	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	texture.FlipVertical(img)
	return s.Save(img)
}

// Save writes img and returns the file path.
func (s *Screenshots) Save(img image.Image) (string, error) {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	switch s.format() {
	case FormatWebP:
		err = nativewebp.Encode(file, img, nil)
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", s.format(), err)
	}
	return filename, nil
}
