// Package downloadcache materializes repackaged archives on disk under
// deterministic names so repeated downloads of the same slice cost one
// repack. The cache is content-ignorant: artifacts are addressed purely by
// label and date, and callers invalidate by choosing a fresh label.
package downloadcache

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/spf13/afero"

	"github.com/shishobooks/toshokan/pkg/fileutils"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// Repacker is the slice of the archive codec this cache consumes.
type Repacker interface {
	RepackZipStream(ctx context.Context, meta mediafile.FileMetadata) io.ReadCloser
}

type Cache struct {
	log  logger.Logger
	dirs *fileutils.Directories
}

func New(log logger.Logger, dirs *fileutils.Directories) *Cache {
	return &Cache{log: log, dirs: dirs}
}

// Archive returns the on-disk path of the repacked CBZ for meta under the
// given label, repacking only when no artifact of that name exists yet.
// Partial files are removed on failure or cancellation.
func (c *Cache) Archive(ctx context.Context, codec Repacker, meta mediafile.FileMetadata, label string, now time.Time) (string, error) {
	path := filepath.Join(c.dirs.TempDirectory(), ArchiveFilename(label, now))
	if c.dirs.Exists(path) {
		c.log.Info("reusing cached download archive", logger.Data{"path": path})
		return path, nil
	}

	stream := codec.RepackZipStream(ctx, meta)
	if stream == nil {
		return "", errors.Errorf("unable to repack %s", meta.Path)
	}
	defer stream.Close()

	if err := c.dirs.WriteFile(path, stream); err != nil {
		if cleanupErr := c.dirs.ClearAndDelete(path); cleanupErr != nil {
			c.log.Warn("unable to remove partial download artifact", logger.Data{"path": path})
		}
		return "", err
	}
	return path, nil
}

// ExtractDir returns the deterministic extraction directory for a label.
func (c *Cache) ExtractDir(label string, now time.Time) string {
	return filepath.Join(c.dirs.TempDirectory(), DirName(label, now))
}

// Cleanup deletes cache artifacts older than the retention window and
// returns how many were removed.
func (c *Cache) Cleanup(retention time.Duration, now time.Time) (int, error) {
	infos, err := afero.ReadDir(c.dirs.Fs(), c.dirs.TempDirectory())
	if err != nil {
		return 0, errors.WithStack(err)
	}

	removed := 0
	cutoff := now.Add(-retention)
	for _, info := range infos {
		if !isArtifactName(info.Name()) {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.dirs.TempDirectory(), info.Name())
		if err := c.dirs.ClearAndDelete(path); err != nil {
			c.log.Warn("unable to remove expired artifact", logger.Data{"path": path})
			continue
		}
		removed++
	}
	return removed, nil
}
