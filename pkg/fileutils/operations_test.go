package fileutils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMem(t *testing.T) *Directories {
	t.Helper()
	return NewWithFs(afero.NewMemMapFs(), "/tmp")
}

func TestEnsureDirectoryAndExists(t *testing.T) {
	d := newMem(t)
	path := "/library/extract/vol1"
	assert.False(t, d.Exists(path))
	require.NoError(t, d.EnsureDirectory(path))
	assert.True(t, d.Exists(path))
	// Idempotent.
	require.NoError(t, d.EnsureDirectory(path))
}

func TestCopyFile(t *testing.T) {
	d := newMem(t)
	require.NoError(t, afero.WriteFile(d.Fs(), "/src/a.jpg", []byte("jpeg"), 0644))
	require.NoError(t, d.CopyFile("/src/a.jpg", "/dst/deep/a.jpg"))
	b, err := afero.ReadFile(d.Fs(), "/dst/deep/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(b))
}

func TestFlatten(t *testing.T) {
	d := newMem(t)
	require.NoError(t, afero.WriteFile(d.Fs(), "/out/root/001.jpg", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(d.Fs(), "/out/root/sub/002.jpg", []byte("b"), 0644))

	require.NoError(t, d.Flatten("/out"))

	assert.True(t, d.Exists("/out/001.jpg"))
	assert.True(t, d.Exists("/out/sub/002.jpg"))
	assert.False(t, d.Exists("/out/root"))
}

func TestFlattenNoopWhenMultipleChildren(t *testing.T) {
	d := newMem(t)
	require.NoError(t, afero.WriteFile(d.Fs(), "/out/001.jpg", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(d.Fs(), "/out/root/002.jpg", []byte("b"), 0644))

	require.NoError(t, d.Flatten("/out"))

	assert.True(t, d.Exists("/out/001.jpg"))
	assert.True(t, d.Exists("/out/root/002.jpg"))
}

func TestWriteFile(t *testing.T) {
	d := newMem(t)
	require.NoError(t, d.WriteFile("/covers/v1.jpg", strings.NewReader("data")))
	b, err := afero.ReadFile(d.Fs(), filepath.Join("/covers", "v1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestFileSHA256(t *testing.T) {
	d := newMem(t)
	// Binary content with a BOM-like prefix; hashing must stay byte-exact.
	raw := []byte{0xEF, 0xBB, 0xBF, 0x00, 0x01, 0xFF}
	require.NoError(t, afero.WriteFile(d.Fs(), "/a.cbz", raw, 0644))
	sum, err := d.FileSHA256("/a.cbz")
	require.NoError(t, err)
	assert.Len(t, sum, 64)

	require.NoError(t, afero.WriteFile(d.Fs(), "/b.cbz", raw, 0644))
	sum2, err := d.FileSHA256("/b.cbz")
	require.NoError(t, err)
	assert.Equal(t, sum, sum2)
}
