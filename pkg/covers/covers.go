// Package covers turns a raw cover image stream into an on-disk thumbnail.
// The archive codec hands it whatever bytes the archive entry holds; this
// package owns decoding, scaling, and encoding.
package covers

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"

	_ "image/gif" // Register GIF decoder.

	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// Output formats.
const (
	FormatJpeg = "jpeg"
	FormatPng  = "png"
)

// Encoder is the image collaborator consumed by the archive codec.
type Encoder interface {
	// WriteCoverThumbnail scales the stream to the requested height, encodes
	// it, writes {outDir}/{outName}.{ext}, and returns the final path.
	WriteCoverThumbnail(r io.Reader, outName, outDir, format string, size int) (string, error)
}

// ThumbnailEncoder is the default Encoder over an afero filesystem.
type ThumbnailEncoder struct {
	fs afero.Fs
}

func NewThumbnailEncoder(fs afero.Fs) *ThumbnailEncoder {
	return &ThumbnailEncoder{fs: fs}
}

func (e *ThumbnailEncoder) WriteCoverThumbnail(r io.Reader, outName, outDir, format string, size int) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", errors.WithStack(err)
	}

	scaled := scaleToHeight(src, size)

	ext := ".jpg"
	if format == FormatPng {
		ext = ".png"
	}
	outPath := filepath.Join(outDir, outName+ext)

	if err := e.fs.MkdirAll(outDir, 0755); err != nil {
		return "", errors.WithStack(err)
	}
	out, err := e.fs.Create(outPath)
	if err != nil {
		return "", errors.WithStack(err)
	}

	switch format {
	case FormatPng:
		err = png.Encode(out, scaled)
	default:
		err = jpeg.Encode(out, scaled, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		out.Close()
		return "", errors.WithStack(err)
	}
	if err := out.Close(); err != nil {
		return "", errors.WithStack(err)
	}
	return outPath, nil
}

// scaleToHeight resizes preserving aspect ratio. Images already at or below
// the target height pass through untouched.
func scaleToHeight(src image.Image, height int) image.Image {
	b := src.Bounds()
	if height <= 0 || b.Dy() <= height {
		return src
	}
	width := b.Dx() * height / b.Dy()
	if width < 1 {
		width = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
