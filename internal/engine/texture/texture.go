// Package texture decodes image files and uploads them as device textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/gpu"
	"github.com/Faultbox/objview/internal/logger"
)

// ErrDecode is returned when image bytes cannot be decoded.
var ErrDecode = errors.New("texture decode failed")

// Loader turns an image file into a device texture.
type Loader interface {
	Load(path string, flipVertically bool) (gpu.Handle, error)
}

// FileLoader reads images through an asset source and uploads them to a device.
type FileLoader struct {
	Source assets.Source
	Device gpu.Device
}

// NewFileLoader creates a loader that reads from src and uploads to dev.
func NewFileLoader(src assets.Source, dev gpu.Device) *FileLoader {
	return &FileLoader{Source: src, Device: dev}
}

// Load decodes the image at path and uploads it.
// flipVertically puts the last image row first, matching OpenGL's
// bottom-left texture origin.
func (l *FileLoader) Load(path string, flipVertically bool) (gpu.Handle, error) {
	data, err := l.Source.Load(path)
	if err != nil {
		return 0, err
	}

	img, err := Decode(path, data, flipVertically)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	tex, err := l.Device.CreateTexture(img)
	if err != nil {
		return 0, fmt.Errorf("uploading %s: %w", path, err)
	}

	logger.Debug("texture loaded",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Bool("flipped", flipVertically),
	)
	return tex, nil
}

// decoders maps lower-case file extensions to image decoders. TGA has no
// magic number, so formats are picked by extension rather than sniffed.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
}

// Decode decodes PNG, JPEG, GIF, TGA, BMP, TIFF or WebP data into RGBA.
// The decoder is chosen from the extension of name; unknown extensions fall
// back to content sniffing.
func Decode(name string, data []byte, flipVertically bool) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	if decode, ok := decoders[strings.ToLower(filepath.Ext(name))]; ok {
		img, err = decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	rgba := ImageToRGBA(img)
	if flipVertically {
		FlipVertical(rgba)
	}
	return rgba, nil
}

// ImageToRGBA converts any image.Image to *image.RGBA with its origin at (0, 0).
func ImageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical reverses the row order of img in place.
func FlipVertical(img *image.RGBA) {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[img.PixOffset(b.Min.X, top):][:rowLen]
		u := img.Pix[img.PixOffset(b.Min.X, bottom):][:rowLen]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}
