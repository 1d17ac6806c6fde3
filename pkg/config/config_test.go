package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/toshokan.yaml")
	t.Setenv("LIBRARY_DIR", "/library")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/library", cfg.LibraryDir)
	assert.Equal(t, "jpeg", cfg.ThumbnailFormat)
	assert.Equal(t, 330, cfg.ThumbnailHeight)
	assert.Equal(t, 2, cfg.WorkerProcesses)
	assert.Equal(t, 14, cfg.DownloadRetentionDays)
	assert.NotEmpty(t, cfg.Hostname)
}

func TestNewMissingLibraryDir(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/toshokan.yaml")
	t.Setenv("LIBRARY_DIR", "")

	_, err := New()
	assert.Error(t, err)
}

func TestNewInvalidThumbnailFormat(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/toshokan.yaml")
	t.Setenv("LIBRARY_DIR", "/library")
	t.Setenv("THUMBNAIL_FORMAT", "bmp")

	_, err := New()
	assert.Error(t, err)
}
