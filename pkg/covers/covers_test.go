package covers

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestWriteCoverThumbnail(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := NewThumbnailEncoder(fs)

	path, err := e.WriteCoverThumbnail(bytes.NewReader(pngBytes(t, 100, 400)), "v1", "/covers", FormatPng, 200)
	require.NoError(t, err)
	assert.Equal(t, "/covers/v1.png", path)

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dy())
	assert.Equal(t, 50, img.Bounds().Dx())
}

func TestWriteCoverThumbnailKeepsSmallImages(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := NewThumbnailEncoder(fs)

	path, err := e.WriteCoverThumbnail(bytes.NewReader(pngBytes(t, 10, 20)), "v1", "/covers", FormatJpeg, 200)
	require.NoError(t, err)
	assert.Equal(t, "/covers/v1.jpg", path)
}

func TestWriteCoverThumbnailBadStream(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := NewThumbnailEncoder(fs)

	_, err := e.WriteCoverThumbnail(bytes.NewReader([]byte("not an image")), "v1", "/covers", FormatJpeg, 200)
	assert.Error(t, err)
}
